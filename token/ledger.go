package token

import (
	"math/big"

	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/ethereum/go-ethereum/common"
)

// Ledger holds fungible balances, allowances and the block list of one
// token instance. Check methods never mutate; apply methods assume the
// matching check passed.
type Ledger struct {
	self        common.Address
	sink        events.Sink
	totalSupply *big.Int
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
	blocked     map[common.Address]bool
}

func NewLedger(self common.Address, sink events.Sink) *Ledger {
	if sink == nil {
		sink = events.Discard
	}
	return &Ledger{
		self:        self,
		sink:        sink,
		totalSupply: new(big.Int),
		balances:    make(map[common.Address]*big.Int),
		allowances:  make(map[common.Address]map[common.Address]*big.Int),
		blocked:     make(map[common.Address]bool),
	}
}

func (l *Ledger) TotalSupply() *big.Int {
	return copyInt(l.totalSupply)
}

func (l *Ledger) BalanceOf(account common.Address) *big.Int {
	return copyInt(l.balances[account])
}

func (l *Ledger) Allowance(owner, spender common.Address) *big.Int {
	return copyInt(l.allowances[owner][spender])
}

func (l *Ledger) IsBlocked(account common.Address) bool {
	return l.blocked[account]
}

// CheckNotBlocked fails on the first blocked account.
func (l *Ledger) CheckNotBlocked(accounts ...common.Address) error {
	for _, a := range accounts {
		if l.blocked[a] {
			return &BlockedAccountError{Account: a}
		}
	}
	return nil
}

func (l *Ledger) setBlocked(account common.Address, blocked bool) {
	if blocked {
		l.blocked[account] = true
	} else {
		delete(l.blocked, account)
	}
	l.sink.Emit(BlockedListChanged{Account: account, Blocked: blocked})
}

func (l *Ledger) checkRecipient(to common.Address) error {
	if to == (common.Address{}) {
		return governance.ErrZeroAddress
	}
	if to == l.self {
		return ErrTransferToContract
	}
	return nil
}

func (l *Ledger) checkBalance(from common.Address, amount *big.Int) error {
	if balance := l.balances[from]; balance == nil || balance.Cmp(amount) < 0 {
		return &InsufficientBalanceError{Account: from, Balance: copyInt(balance), Needed: copyInt(amount)}
	}
	return nil
}

// checkTransfer validates a move of amount from -> to started by initiator.
func (l *Ledger) checkTransfer(initiator, from, to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := l.CheckNotBlocked(initiator, from, to); err != nil {
		return err
	}
	if err := l.checkRecipient(to); err != nil {
		return err
	}
	return l.checkBalance(from, amount)
}

func (l *Ledger) checkMint(to common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := l.CheckNotBlocked(to); err != nil {
		return err
	}
	if to == (common.Address{}) {
		return governance.ErrZeroAddress
	}
	_, err := checkedAdd(l.totalSupply, amount)
	return err
}

func (l *Ledger) checkBurn(from common.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := l.CheckNotBlocked(from); err != nil {
		return err
	}
	return l.checkBalance(from, amount)
}

func (l *Ledger) credit(account common.Address, amount *big.Int) {
	l.balances[account] = new(big.Int).Add(l.BalanceOf(account), amount)
}

func (l *Ledger) debit(account common.Address, amount *big.Int) {
	left := new(big.Int).Sub(l.BalanceOf(account), amount)
	if left.Sign() == 0 {
		delete(l.balances, account)
		return
	}
	l.balances[account] = left
}

func (l *Ledger) move(from, to common.Address, amount *big.Int) {
	l.debit(from, amount)
	l.credit(to, amount)
	l.sink.Emit(Transfer{From: from, To: to, Value: copyInt(amount)})
}

func (l *Ledger) mint(to common.Address, amount *big.Int) {
	l.totalSupply = new(big.Int).Add(l.totalSupply, amount)
	l.credit(to, amount)
	l.sink.Emit(Transfer{From: common.Address{}, To: to, Value: copyInt(amount)})
}

func (l *Ledger) burn(from common.Address, amount *big.Int) {
	l.debit(from, amount)
	l.totalSupply = new(big.Int).Sub(l.totalSupply, amount)
	l.sink.Emit(Transfer{From: from, To: common.Address{}, Value: copyInt(amount)})
}

func (l *Ledger) approve(owner, spender common.Address, value *big.Int) {
	if l.allowances[owner] == nil {
		l.allowances[owner] = make(map[common.Address]*big.Int)
	}
	l.allowances[owner][spender] = copyInt(value)
	l.sink.Emit(Approval{Owner: owner, Spender: spender, Value: copyInt(value)})
}
