package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrZeroAmount          = errors.New("zero amount")
	ErrInvalidAmount       = errors.New("amount out of uint256 range")
	ErrSendDisabled        = errors.New("cross-chain send disabled")
	ErrArgsMismatch        = errors.New("argument lengths mismatch")
	ErrTransferToContract  = errors.New("transfer to token contract")
	ErrNoReserveFeed       = errors.New("no reserve feed on this chain")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrArithmeticUnderflow = errors.New("arithmetic underflow")
)

// BlockedAccountError is returned when a blocked account would send,
// receive or initiate a transfer.
type BlockedAccountError struct {
	Account common.Address
}

func (e *BlockedAccountError) Error() string {
	return fmt.Sprintf("account %s is blocked", e.Account.Hex())
}

// MintTooEarlyError is returned when a mint request is resubmitted before
// the delay has passed since its submission.
type MintTooEarlyError struct {
	Receiver common.Address
	Amount   *big.Int
	Nonce    *big.Int
}

func (e *MintTooEarlyError) Error() string {
	return fmt.Sprintf("too early to execute mint of %s to %s (nonce %s)", e.Amount, e.Receiver.Hex(), e.Nonce)
}

type BudgetInsufficientError struct {
	Available *big.Int
	Requested *big.Int
}

func (e *BudgetInsufficientError) Error() string {
	return fmt.Sprintf("mint budget insufficient: available %s, requested %s", e.Available, e.Requested)
}

type ReserveInsufficientError struct {
	Attested *big.Int
	NewUsed  *big.Int
}

func (e *ReserveInsufficientError) Error() string {
	return fmt.Sprintf("reserve insufficient: attested %s, used would be %s", e.Attested, e.NewUsed)
}

type InsufficientBalanceError struct {
	Account common.Address
	Balance *big.Int
	Needed  *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance for %s: %s < %s", e.Account.Hex(), e.Balance, e.Needed)
}

type InsufficientAllowanceError struct {
	Spender   common.Address
	Allowance *big.Int
	Needed    *big.Int
}

func (e *InsufficientAllowanceError) Error() string {
	return fmt.Sprintf("insufficient allowance for %s: %s < %s", e.Spender.Hex(), e.Allowance, e.Needed)
}
