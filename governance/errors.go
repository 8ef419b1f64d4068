package governance

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrZeroAddress = errors.New("zero address")
)

type UnauthorizedError struct {
	Role   string
	Caller common.Address
}

func (e *UnauthorizedError) Error() string {
	return fmt.Sprintf("unauthorized: %s required, caller %s", e.Role, e.Caller.Hex())
}

type DelayTooSmallError struct {
	Delay uint64
	Min   uint64
}

func (e *DelayTooSmallError) Error() string {
	return fmt.Sprintf("delay too small: %d < %d", e.Delay, e.Min)
}

type TooEarlyError struct {
	Field       string
	EffectiveAt uint64
	Now         uint64
}

func (e *TooEarlyError) Error() string {
	return fmt.Sprintf("too early to execute %s: effective at %d, now %d", e.Field, e.EffectiveAt, e.Now)
}

type InvalidUpgradeTargetError struct {
	Implementation common.Address
	DataHash       common.Hash
}

func (e *InvalidUpgradeTargetError) Error() string {
	return fmt.Sprintf("invalid upgrade target: implementation %s data hash %s", e.Implementation.Hex(), e.DataHash.Hex())
}
