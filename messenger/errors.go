package messenger

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrAlreadyDelivered = errors.New("message already delivered")
	ErrUnknownMessage   = errors.New("unknown message")
	ErrNoReceiver       = errors.New("no receiver registered for destination")
	ErrMessageDropped   = errors.New("message dropped")
)

type NotInAllowlistError struct {
	Chain   uint64
	Address common.Address
}

func (e *NotInAllowlistError) Error() string {
	return fmt.Sprintf("peer %s on chain %d is not allow-listed", e.Address.Hex(), e.Chain)
}

type InsufficientFeeError struct {
	Required *big.Int
	Supplied *big.Int
}

func (e *InsufficientFeeError) Error() string {
	return fmt.Sprintf("insufficient fee: required %s, supplied %s", e.Required, e.Supplied)
}
