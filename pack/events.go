package pack

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Transfer records a certificate moving between holders. From is zero on
// pack and To is zero on unpack.
type Transfer struct {
	From common.Address
	To   common.Address
	ID   *big.Int
}

func (Transfer) EventName() string { return "Transfer" }

type Approval struct {
	Owner    common.Address
	Approved common.Address
	ID       *big.Int
}

func (Approval) EventName() string { return "Approval" }

type Packed struct {
	Owner  common.Address
	ID     *big.Int
	Amount *big.Int
}

func (Packed) EventName() string { return "Packed" }

type Unpacked struct {
	Owner  common.Address
	ID     *big.Int
	Amount *big.Int
}

func (Unpacked) EventName() string { return "Unpacked" }

type LockPlaced struct {
	ID   *big.Int
	Memo []byte
}

func (LockPlaced) EventName() string { return "LockPlaced" }

type LockReleased struct {
	ID *big.Int
}

func (LockReleased) EventName() string { return "LockReleased" }
