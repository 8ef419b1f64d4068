package messenger

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	log "github.com/sirupsen/logrus"
)

const DefaultFeePerByte = 10000

// Receiver accepts deliveries on a destination chain.
type Receiver interface {
	Receive(d Delivery) error
}

// Routed is a message accepted by the router.
type Routed struct {
	ID          MessageID
	SourceChain uint64
	DstChain    uint64
	Sender      common.Address
	Envelope    Envelope
	Fee         *big.Int
}

type endpoint struct {
	chain   uint64
	address common.Address
}

// LocalRouter is an in-process transport linking the messengers of several
// chains. Fees are charged per encoded byte. Each message is delivered at
// most once; a failed delivery stays pending and may be retried.
type LocalRouter struct {
	mu         sync.Mutex
	feePerByte *big.Int
	receivers  map[endpoint]Receiver
	nonce      uint64
	messages   map[MessageID]*Routed
	pending    []MessageID
	delivered  map[MessageID]bool
	dropped    map[MessageID]bool
	collected  *big.Int
}

func NewLocalRouter(feePerByte uint64) *LocalRouter {
	return &LocalRouter{
		feePerByte: new(big.Int).SetUint64(feePerByte),
		receivers:  make(map[endpoint]Receiver),
		messages:   make(map[MessageID]*Routed),
		delivered:  make(map[MessageID]bool),
		dropped:    make(map[MessageID]bool),
		collected:  new(big.Int),
	}
}

// Register makes r the receiver for messages addressed to address on chain.
func (r *LocalRouter) Register(chain uint64, address common.Address, receiver Receiver) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receivers[endpoint{chain: chain, address: address}] = receiver
}

// Endpoint returns the transport used by the sender at address on chain.
func (r *LocalRouter) Endpoint(chain uint64, address common.Address) Transport {
	return &routerEndpoint{router: r, chain: chain, address: address}
}

func (r *LocalRouter) quote(env Envelope) *big.Int {
	return new(big.Int).Mul(big.NewInt(int64(len(env.Data))), r.feePerByte)
}

func (r *LocalRouter) send(source uint64, sender common.Address, dstChain uint64, env Envelope, fee *big.Int) (MessageID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fee == nil {
		fee = new(big.Int)
	}
	if required := r.quote(env); fee.Cmp(required) < 0 {
		return MessageID{}, &InsufficientFeeError{Required: required, Supplied: new(big.Int).Set(fee)}
	}

	r.nonce++
	id := messageID(source, dstChain, sender, env.Receiver, r.nonce, env.Data)
	r.messages[id] = &Routed{
		ID:          id,
		SourceChain: source,
		DstChain:    dstChain,
		Sender:      sender,
		Envelope:    env,
		Fee:         new(big.Int).Set(fee),
	}
	r.pending = append(r.pending, id)
	r.collected.Add(r.collected, fee)
	log.Debugf("[ROUTER] message %s queued from chain %d to chain %d", id.Hex(), source, dstChain)
	return id, nil
}

func messageID(source, dst uint64, sender, receiver common.Address, nonce uint64, data []byte) MessageID {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], source)
	binary.BigEndian.PutUint64(buf[8:16], dst)
	binary.BigEndian.PutUint64(buf[16:24], nonce)
	return crypto.Keccak256Hash(buf[:], sender.Bytes(), receiver.Bytes(), data)
}

// Pending lists undelivered messages in the order they were sent.
func (r *LocalRouter) Pending() []Routed {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Routed, 0, len(r.pending))
	for _, id := range r.pending {
		out = append(out, *r.messages[id])
	}
	return out
}

func (r *LocalRouter) Message(id MessageID) (Routed, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.messages[id]
	if !ok {
		return Routed{}, false
	}
	return *m, true
}

func (r *LocalRouter) Delivered(id MessageID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.delivered[id]
}

// Collected is the total of fees charged so far.
func (r *LocalRouter) Collected() *big.Int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return new(big.Int).Set(r.collected)
}

// Deliver hands a message to its receiver. The receiver runs outside the
// router lock so it may send further messages.
func (r *LocalRouter) Deliver(id MessageID) error {
	r.mu.Lock()
	msg, ok := r.messages[id]
	if !ok {
		r.mu.Unlock()
		return ErrUnknownMessage
	}
	if r.delivered[id] {
		r.mu.Unlock()
		return ErrAlreadyDelivered
	}
	if r.dropped[id] {
		r.mu.Unlock()
		return ErrMessageDropped
	}
	receiver, ok := r.receivers[endpoint{chain: msg.DstChain, address: msg.Envelope.Receiver}]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s on chain %d", ErrNoReceiver, msg.Envelope.Receiver.Hex(), msg.DstChain)
	}
	// claimed before the call so a concurrent Deliver cannot run it twice
	r.delivered[id] = true
	d := Delivery{ID: id, SourceChain: msg.SourceChain, Sender: msg.Sender, Data: common.CopyBytes(msg.Envelope.Data)}
	r.mu.Unlock()

	if err := receiver.Receive(d); err != nil {
		r.mu.Lock()
		delete(r.delivered, id)
		r.mu.Unlock()
		log.Error("[ROUTER] Error delivering message ", id.Hex(), ": ", err)
		return err
	}

	r.mu.Lock()
	r.removePending(id)
	r.mu.Unlock()
	log.Debugf("[ROUTER] message %s delivered", id.Hex())
	return nil
}

// Drop gives up on an undelivered message. It leaves the pending queue and
// can no longer be delivered; its fee is not returned.
func (r *LocalRouter) Drop(id MessageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.messages[id]; !ok {
		return ErrUnknownMessage
	}
	if r.delivered[id] {
		return ErrAlreadyDelivered
	}
	r.dropped[id] = true
	r.removePending(id)
	log.Debugf("[ROUTER] message %s dropped", id.Hex())
	return nil
}

func (r *LocalRouter) removePending(id MessageID) {
	for i, p := range r.pending {
		if p == id {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			return
		}
	}
}

type routerEndpoint struct {
	router  *LocalRouter
	chain   uint64
	address common.Address
}

func (e *routerEndpoint) QuoteFee(dstChain uint64, env Envelope) (*big.Int, error) {
	return e.router.quote(env), nil
}

func (e *routerEndpoint) Send(dstChain uint64, env Envelope, fee *big.Int) (MessageID, error) {
	return e.router.send(e.chain, e.address, dstChain, env, fee)
}
