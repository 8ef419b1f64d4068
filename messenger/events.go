package messenger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type AllowedPeer struct {
	Chain   uint64
	Peer    common.Address
	Allowed bool
}

func (AllowedPeer) EventName() string { return "AllowedPeer" }

type CCSendToken struct {
	ID       MessageID
	DstChain uint64
	Peer     common.Address
	Sender   common.Address
	Receiver common.Address
	Amount   *big.Int
	Fee      *big.Int
}

func (CCSendToken) EventName() string { return "CCSendToken" }

type CCSendMintBudget struct {
	ID       MessageID
	DstChain uint64
	Peer     common.Address
	Amount   *big.Int
	Fee      *big.Int
}

func (CCSendMintBudget) EventName() string { return "CCSendMintBudget" }

type MessageReceived struct {
	ID          MessageID
	SourceChain uint64
	Sender      common.Address
}

func (MessageReceived) EventName() string { return "MessageReceived" }
