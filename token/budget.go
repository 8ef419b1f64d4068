package token

import (
	"math/big"
)

// MintBudgetAccount tracks how much may still be minted and how much of
// the attested reserve budget increases have drawn. Redemptions refill the
// budget but never release used reserve.
type MintBudgetAccount struct {
	mintBudget  *big.Int
	usedReserve *big.Int
}

func NewMintBudgetAccount() *MintBudgetAccount {
	return &MintBudgetAccount{
		mintBudget:  new(big.Int),
		usedReserve: new(big.Int),
	}
}

func (b *MintBudgetAccount) MintBudget() *big.Int {
	return copyInt(b.mintBudget)
}

func (b *MintBudgetAccount) UsedReserve() *big.Int {
	return copyInt(b.usedReserve)
}

// CheckDebit fails when amount exceeds the remaining budget.
func (b *MintBudgetAccount) CheckDebit(amount *big.Int) error {
	if b.mintBudget.Cmp(amount) < 0 {
		return &BudgetInsufficientError{Available: copyInt(b.mintBudget), Requested: copyInt(amount)}
	}
	return nil
}

func (b *MintBudgetAccount) debit(amount *big.Int) error {
	if err := b.CheckDebit(amount); err != nil {
		return err
	}
	b.mintBudget = new(big.Int).Sub(b.mintBudget, amount)
	return nil
}

func (b *MintBudgetAccount) credit(amount *big.Int) error {
	next, err := checkedAdd(b.mintBudget, amount)
	if err != nil {
		return err
	}
	b.mintBudget = next
	return nil
}

func (b *MintBudgetAccount) increase(amount, attested *big.Int) error {
	newUsed, err := checkedAdd(b.usedReserve, amount)
	if err != nil {
		return err
	}
	if newUsed.Cmp(attested) > 0 {
		return &ReserveInsufficientError{Attested: copyInt(attested), NewUsed: newUsed}
	}
	budget, err := checkedAdd(b.mintBudget, amount)
	if err != nil {
		return err
	}
	b.usedReserve = newUsed
	b.mintBudget = budget
	return nil
}

func (b *MintBudgetAccount) decrease(amount *big.Int) error {
	used, err := checkedSub(b.usedReserve, amount)
	if err != nil {
		return err
	}
	budget, err := checkedSub(b.mintBudget, amount)
	if err != nil {
		return err
	}
	b.usedReserve = used
	b.mintBudget = budget
	return nil
}
