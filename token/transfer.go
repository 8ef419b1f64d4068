package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

func (t *MToken) Transfer(actor, to common.Address, amount *big.Int) error {
	if err := t.ledger.checkTransfer(actor, actor, to, amount); err != nil {
		return err
	}
	t.ledger.move(actor, to, amount)
	return nil
}

func (t *MToken) Approve(actor, spender common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := t.ledger.CheckNotBlocked(actor, spender); err != nil {
		return err
	}
	t.ledger.approve(actor, spender, amount)
	return nil
}

func (t *MToken) TransferFrom(actor, from, to common.Address, amount *big.Int) error {
	if err := t.ledger.checkTransfer(actor, from, to, amount); err != nil {
		return err
	}
	allowance := t.ledger.Allowance(from, actor)
	if allowance.Cmp(amount) < 0 {
		return &InsufficientAllowanceError{Spender: actor, Allowance: allowance, Needed: copyInt(amount)}
	}
	t.ledger.approve(from, actor, new(big.Int).Sub(allowance, amount))
	t.ledger.move(from, to, amount)
	return nil
}

// MultiTransfer sends amounts[i] to recipients[i], all or nothing.
func (t *MToken) MultiTransfer(actor common.Address, recipients []common.Address, amounts []*big.Int) error {
	if len(recipients) != len(amounts) {
		return ErrArgsMismatch
	}
	total, err := sum(amounts)
	if err != nil {
		return err
	}
	if err := t.ledger.CheckNotBlocked(actor); err != nil {
		return err
	}
	for _, to := range recipients {
		if err := t.ledger.CheckNotBlocked(to); err != nil {
			return err
		}
		if err := t.ledger.checkRecipient(to); err != nil {
			return err
		}
	}
	if err := t.ledger.checkBalance(actor, total); err != nil {
		return err
	}
	for i, to := range recipients {
		t.ledger.move(actor, to, amounts[i])
	}
	return nil
}
