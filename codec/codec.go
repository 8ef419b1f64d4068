// Package codec encodes the messages exchanged between chain instances.
//
// A message is the ABI encoding of the tuple (uint256 tag, bytes payload),
// where the payload is itself ABI encoded according to the tag.
package codec

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const (
	TagTokenTransfer      uint64 = 2
	TagMintBudgetTransfer uint64 = 3
)

var ErrMalformedMessage = errors.New("malformed message")

type InvalidMessageError struct {
	Tag *big.Int
}

func (e *InvalidMessageError) Error() string {
	return fmt.Sprintf("invalid message tag %s", e.Tag)
}

// Message is either a TokenTransfer or a MintBudgetTransfer.
type Message interface {
	Tag() uint64
}

type TokenTransfer struct {
	Sender   common.Address
	Receiver common.Address
	Amount   *big.Int
}

func (TokenTransfer) Tag() uint64 { return TagTokenTransfer }

type MintBudgetTransfer struct {
	Amount *big.Int
}

func (MintBudgetTransfer) Tag() uint64 { return TagMintBudgetTransfer }

var (
	uint256Type, _ = abi.NewType("uint256", "", nil)
	bytesType, _   = abi.NewType("bytes", "", nil)
	addressType, _ = abi.NewType("address", "", nil)

	envelopeArgs = abi.Arguments{{Type: uint256Type}, {Type: bytesType}}
	tokenArgs    = abi.Arguments{{Type: addressType}, {Type: addressType}, {Type: uint256Type}}
	budgetArgs   = abi.Arguments{{Type: uint256Type}}
)

func Encode(msg Message) ([]byte, error) {
	var payload []byte
	var err error
	switch m := msg.(type) {
	case TokenTransfer:
		payload, err = tokenArgs.Pack(m.Sender, m.Receiver, amountOrZero(m.Amount))
	case MintBudgetTransfer:
		payload, err = budgetArgs.Pack(amountOrZero(m.Amount))
	default:
		return nil, fmt.Errorf("unsupported message type %T", msg)
	}
	if err != nil {
		return nil, err
	}
	return envelopeArgs.Pack(new(big.Int).SetUint64(msg.Tag()), payload)
}

func EncodeTokenTransfer(sender, receiver common.Address, amount *big.Int) ([]byte, error) {
	return Encode(TokenTransfer{Sender: sender, Receiver: receiver, Amount: amount})
}

func EncodeMintBudgetTransfer(amount *big.Int) ([]byte, error) {
	return Encode(MintBudgetTransfer{Amount: amount})
}

// Decode fails with *InvalidMessageError for an unknown tag.
func Decode(data []byte) (Message, error) {
	values, err := envelopeArgs.Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	tag, ok := values[0].(*big.Int)
	if !ok {
		return nil, ErrMalformedMessage
	}
	payload, ok := values[1].([]byte)
	if !ok {
		return nil, ErrMalformedMessage
	}

	if !tag.IsUint64() {
		return nil, &InvalidMessageError{Tag: tag}
	}
	switch tag.Uint64() {
	case TagTokenTransfer:
		fields, err := tokenArgs.Unpack(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		sender, ok1 := fields[0].(common.Address)
		receiver, ok2 := fields[1].(common.Address)
		amount, ok3 := fields[2].(*big.Int)
		if !ok1 || !ok2 || !ok3 {
			return nil, ErrMalformedMessage
		}
		return TokenTransfer{Sender: sender, Receiver: receiver, Amount: amount}, nil
	case TagMintBudgetTransfer:
		fields, err := budgetArgs.Unpack(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		amount, ok := fields[0].(*big.Int)
		if !ok {
			return nil, ErrMalformedMessage
		}
		return MintBudgetTransfer{Amount: amount}, nil
	default:
		return nil, &InvalidMessageError{Tag: tag}
	}
}

func amountOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
