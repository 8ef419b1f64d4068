// Package messenger carries token and mint budget transfers between the
// token instances of different chains over a fee-charging transport.
package messenger

import (
	"fmt"
	"math/big"

	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

type MessageID = common.Hash

// Envelope is what the transport carries to the destination chain.
type Envelope struct {
	Receiver  common.Address
	Data      []byte
	ExtraArgs []byte
}

// Delivery is an inbound message handed over by the transport.
type Delivery struct {
	ID          MessageID
	SourceChain uint64
	Sender      common.Address
	Data        []byte
}

// Transport quotes and sends envelopes. The fee model belongs to the
// transport and must be deterministic for a given envelope.
type Transport interface {
	QuoteFee(dstChain uint64, env Envelope) (*big.Int, error)
	Send(dstChain uint64, env Envelope, fee *big.Int) (MessageID, error)
}

// Token is the local token instance the messenger is the messager of.
type Token interface {
	Operator() common.Address
	MsgOfCcSendToken(sender, receiver common.Address, amount *big.Int) ([]byte, error)
	MsgOfCcSendMintBudget(amount *big.Int) ([]byte, error)
	CheckCcSendToken(actor, sender, receiver common.Address, amount *big.Int) error
	CheckCcSendMintBudget(actor common.Address, amount *big.Int) error
	CcSendToken(actor, sender, receiver common.Address, amount *big.Int) ([]byte, error)
	CcSendMintBudget(actor common.Address, amount *big.Int) ([]byte, error)
	RestoreCcSendToken(actor, sender common.Address, amount *big.Int) error
	RestoreCcSendMintBudget(actor common.Address, amount *big.Int) error
	CcReceive(actor common.Address, raw []byte) error
}

// Receipt describes an accepted outbound message.
type Receipt struct {
	ID     MessageID
	Fee    *big.Int
	Refund *big.Int
}

type peer struct {
	chain   uint64
	address common.Address
}

// Messenger is not safe for concurrent use; callers serialize access per
// chain together with the token.
type Messenger struct {
	address   common.Address
	owner     governance.Role
	token     Token
	transport Transport
	allowed   map[peer]bool
	sink      events.Sink
}

func New(address, owner common.Address, tok Token, transport Transport, sink events.Sink) *Messenger {
	if sink == nil {
		sink = events.Discard
	}
	return &Messenger{
		address:   address,
		owner:     governance.AddressRole(governance.RoleOwner, func() common.Address { return owner }),
		token:     tok,
		transport: transport,
		allowed:   make(map[peer]bool),
		sink:      sink,
	}
}

func (m *Messenger) Address() common.Address {
	return m.address
}

func (m *Messenger) AllowedPeer(chain uint64, address common.Address) bool {
	return m.allowed[peer{chain: chain, address: address}]
}

func (m *Messenger) SetAllowedPeer(actor common.Address, chain uint64, address common.Address, allowed bool) error {
	if err := m.owner.Check(actor); err != nil {
		return err
	}
	key := peer{chain: chain, address: address}
	if allowed {
		m.allowed[key] = true
	} else {
		delete(m.allowed, key)
	}
	log.Debugf("[MESSENGER] peer %s on chain %d allowed: %t", address.Hex(), chain, allowed)
	m.sink.Emit(AllowedPeer{Chain: chain, Peer: address, Allowed: allowed})
	return nil
}

func (m *Messenger) checkPeer(chain uint64, address common.Address) error {
	if !m.AllowedPeer(chain, address) {
		return &NotInAllowlistError{Chain: chain, Address: address}
	}
	return nil
}

// CalculateCcSendTokenFeeAndMessage quotes a token transfer without
// changing any state.
func (m *Messenger) CalculateCcSendTokenFeeAndMessage(dstChain uint64, peer, sender, receiver common.Address, amount *big.Int, extraArgs []byte) (*big.Int, Envelope, error) {
	data, err := m.token.MsgOfCcSendToken(sender, receiver, amount)
	if err != nil {
		return nil, Envelope{}, err
	}
	return m.quote(dstChain, Envelope{Receiver: peer, Data: data, ExtraArgs: common.CopyBytes(extraArgs)})
}

// CalculateCcSendMintBudgetFeeAndMessage quotes a mint budget transfer
// without changing any state.
func (m *Messenger) CalculateCcSendMintBudgetFeeAndMessage(dstChain uint64, peer common.Address, amount *big.Int, extraArgs []byte) (*big.Int, Envelope, error) {
	data, err := m.token.MsgOfCcSendMintBudget(amount)
	if err != nil {
		return nil, Envelope{}, err
	}
	return m.quote(dstChain, Envelope{Receiver: peer, Data: data, ExtraArgs: common.CopyBytes(extraArgs)})
}

func (m *Messenger) quote(dstChain uint64, env Envelope) (*big.Int, Envelope, error) {
	fee, err := m.transport.QuoteFee(dstChain, env)
	if err != nil {
		return nil, Envelope{}, fmt.Errorf("quote fee for chain %d: %w", dstChain, err)
	}
	return fee, env, nil
}

func checkFee(required, supplied *big.Int) (*big.Int, error) {
	if supplied == nil {
		supplied = new(big.Int)
	}
	if supplied.Cmp(required) < 0 {
		return nil, &InsufficientFeeError{Required: new(big.Int).Set(required), Supplied: new(big.Int).Set(supplied)}
	}
	return new(big.Int).Sub(supplied, required), nil
}

// SendTokenToChain burns amount from actor on this chain and sends the
// transfer to peer on dstChain. value is the fee supplied; whatever exceeds
// the quoted fee is returned as the receipt's refund.
func (m *Messenger) SendTokenToChain(actor common.Address, dstChain uint64, peer, receiver common.Address, amount *big.Int, extraArgs []byte, value *big.Int) (Receipt, error) {
	if err := m.checkPeer(dstChain, peer); err != nil {
		return Receipt{}, err
	}
	fee, env, err := m.CalculateCcSendTokenFeeAndMessage(dstChain, peer, actor, receiver, amount, extraArgs)
	if err != nil {
		return Receipt{}, err
	}
	refund, err := checkFee(fee, value)
	if err != nil {
		return Receipt{}, err
	}
	if err := m.token.CheckCcSendToken(m.address, actor, receiver, amount); err != nil {
		return Receipt{}, err
	}

	if _, err := m.token.CcSendToken(m.address, actor, receiver, amount); err != nil {
		return Receipt{}, err
	}
	id, err := m.transport.Send(dstChain, env, fee)
	if err != nil {
		if rerr := m.token.RestoreCcSendToken(m.address, actor, amount); rerr != nil {
			log.Error("[MESSENGER] Error restoring burn of unsent token transfer: ", rerr)
		}
		return Receipt{}, fmt.Errorf("send to chain %d: %w", dstChain, err)
	}

	log.Debugf("[MESSENGER] token transfer %s sent to chain %d", id.Hex(), dstChain)
	m.sink.Emit(CCSendToken{
		ID:       id,
		DstChain: dstChain,
		Peer:     peer,
		Sender:   actor,
		Receiver: receiver,
		Amount:   new(big.Int).Set(amount),
		Fee:      fee,
	})
	return Receipt{ID: id, Fee: fee, Refund: refund}, nil
}

// SendMintBudgetToChain moves mint budget to peer on dstChain. Only the
// token operator may send budget.
func (m *Messenger) SendMintBudgetToChain(actor common.Address, dstChain uint64, peer common.Address, amount *big.Int, extraArgs []byte, value *big.Int) (Receipt, error) {
	operator := governance.AddressRole(governance.RoleOperator, m.token.Operator)
	if err := operator.Check(actor); err != nil {
		return Receipt{}, err
	}
	if err := m.checkPeer(dstChain, peer); err != nil {
		return Receipt{}, err
	}
	fee, env, err := m.CalculateCcSendMintBudgetFeeAndMessage(dstChain, peer, amount, extraArgs)
	if err != nil {
		return Receipt{}, err
	}
	refund, err := checkFee(fee, value)
	if err != nil {
		return Receipt{}, err
	}
	if err := m.token.CheckCcSendMintBudget(m.address, amount); err != nil {
		return Receipt{}, err
	}

	if _, err := m.token.CcSendMintBudget(m.address, amount); err != nil {
		return Receipt{}, err
	}
	id, err := m.transport.Send(dstChain, env, fee)
	if err != nil {
		if rerr := m.token.RestoreCcSendMintBudget(m.address, amount); rerr != nil {
			log.Error("[MESSENGER] Error restoring debit of unsent mint budget transfer: ", rerr)
		}
		return Receipt{}, fmt.Errorf("send to chain %d: %w", dstChain, err)
	}

	log.Debugf("[MESSENGER] mint budget transfer %s sent to chain %d", id.Hex(), dstChain)
	m.sink.Emit(CCSendMintBudget{
		ID:       id,
		DstChain: dstChain,
		Peer:     peer,
		Amount:   new(big.Int).Set(amount),
		Fee:      fee,
	})
	return Receipt{ID: id, Fee: fee, Refund: refund}, nil
}

// Receive authenticates the sending peer and hands the message to the
// token.
func (m *Messenger) Receive(d Delivery) error {
	if err := m.checkPeer(d.SourceChain, d.Sender); err != nil {
		return err
	}
	if err := m.token.CcReceive(m.address, d.Data); err != nil {
		return err
	}
	log.Debugf("[MESSENGER] message %s from chain %d applied", d.ID.Hex(), d.SourceChain)
	m.sink.Emit(MessageReceived{ID: d.ID, SourceChain: d.SourceChain, Sender: d.Sender})
	return nil
}
