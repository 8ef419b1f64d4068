package token

import (
	"math/big"

	"github.com/dan13ram/mtoken-bridge/codec"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

// MsgOfCcSendToken builds the token transfer message without sending it.
func (t *MToken) MsgOfCcSendToken(sender, receiver common.Address, amount *big.Int) ([]byte, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := t.ledger.CheckNotBlocked(sender, receiver); err != nil {
		return nil, err
	}
	return codec.EncodeTokenTransfer(sender, receiver, amount)
}

// MsgOfCcSendMintBudget builds the budget transfer message without sending it.
func (t *MToken) MsgOfCcSendMintBudget(amount *big.Int) ([]byte, error) {
	if err := checkAmount(amount); err != nil {
		return nil, err
	}
	if err := t.budget.CheckDebit(amount); err != nil {
		return nil, err
	}
	return codec.EncodeMintBudgetTransfer(amount)
}

// CheckCcSendToken reports whether CcSendToken would succeed.
func (t *MToken) CheckCcSendToken(actor, sender, receiver common.Address, amount *big.Int) error {
	if err := t.messagerRole.Check(actor); err != nil {
		return err
	}
	if t.ccSendDisabled {
		return ErrSendDisabled
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return ErrZeroAmount
	}
	if err := t.ledger.CheckNotBlocked(sender, receiver); err != nil {
		return err
	}
	return t.ledger.checkBurn(sender, amount)
}

// CcSendToken burns amount from sender ahead of the outbound message and
// returns the encoded message.
func (t *MToken) CcSendToken(actor, sender, receiver common.Address, amount *big.Int) ([]byte, error) {
	if err := t.CheckCcSendToken(actor, sender, receiver, amount); err != nil {
		return nil, err
	}
	msg, err := codec.EncodeTokenTransfer(sender, receiver, amount)
	if err != nil {
		return nil, err
	}
	t.ledger.burn(sender, amount)
	log.Debugf("[MTOKEN] cross-chain send of %s from %s to %s", amount, sender.Hex(), receiver.Hex())
	t.sink.Emit(CCSendToken{Sender: sender, Receiver: receiver, Amount: copyInt(amount)})
	return msg, nil
}

// CheckCcSendMintBudget reports whether CcSendMintBudget would succeed.
func (t *MToken) CheckCcSendMintBudget(actor common.Address, amount *big.Int) error {
	if err := t.messagerRole.Check(actor); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}
	if amount.Sign() == 0 {
		return ErrZeroAmount
	}
	return t.budget.CheckDebit(amount)
}

// CcSendMintBudget debits the mint budget ahead of the outbound message.
// Used reserve is not released.
func (t *MToken) CcSendMintBudget(actor common.Address, amount *big.Int) ([]byte, error) {
	if err := t.CheckCcSendMintBudget(actor, amount); err != nil {
		return nil, err
	}
	msg, err := codec.EncodeMintBudgetTransfer(amount)
	if err != nil {
		return nil, err
	}
	if err := t.budget.debit(amount); err != nil {
		return nil, err
	}
	log.Debugf("[MTOKEN] cross-chain send of mint budget %s", amount)
	t.sink.Emit(CCSendMintBudget{Amount: copyInt(amount)})
	return msg, nil
}

// RestoreCcSendToken mints back a burn made by CcSendToken whose message
// could not be sent.
func (t *MToken) RestoreCcSendToken(actor, sender common.Address, amount *big.Int) error {
	if err := t.messagerRole.Check(actor); err != nil {
		return err
	}
	if err := t.ledger.checkMint(sender, amount); err != nil {
		return err
	}
	t.ledger.mint(sender, amount)
	log.Debugf("[MTOKEN] cross-chain send of %s from %s restored", amount, sender.Hex())
	return nil
}

// RestoreCcSendMintBudget credits back a debit made by CcSendMintBudget
// whose message could not be sent.
func (t *MToken) RestoreCcSendMintBudget(actor common.Address, amount *big.Int) error {
	if err := t.messagerRole.Check(actor); err != nil {
		return err
	}
	if err := t.budget.credit(amount); err != nil {
		return err
	}
	log.Debugf("[MTOKEN] cross-chain send of mint budget %s restored", amount)
	return nil
}

// CcReceive applies an inbound message. A token transfer mints to the
// receiver; a budget transfer raises the mint budget without a reserve
// check.
func (t *MToken) CcReceive(actor common.Address, raw []byte) error {
	if err := t.messagerRole.Check(actor); err != nil {
		return err
	}
	msg, err := codec.Decode(raw)
	if err != nil {
		return err
	}
	switch m := msg.(type) {
	case codec.TokenTransfer:
		if err := t.ledger.checkMint(m.Receiver, m.Amount); err != nil {
			return err
		}
		t.ledger.mint(m.Receiver, m.Amount)
		log.Debugf("[MTOKEN] cross-chain receive of %s from %s to %s", m.Amount, m.Sender.Hex(), m.Receiver.Hex())
		t.sink.Emit(CCReceiveToken{Sender: m.Sender, Receiver: m.Receiver, Amount: copyInt(m.Amount)})
	case codec.MintBudgetTransfer:
		if err := t.budget.credit(m.Amount); err != nil {
			return err
		}
		log.Debugf("[MTOKEN] cross-chain receive of mint budget %s", m.Amount)
		t.sink.Emit(CCReceiveMintBudget{Amount: copyInt(m.Amount)})
	}
	return nil
}
