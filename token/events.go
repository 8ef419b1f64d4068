package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

type Transfer struct {
	From  common.Address
	To    common.Address
	Value *big.Int
}

func (Transfer) EventName() string { return "Transfer" }

type Approval struct {
	Owner   common.Address
	Spender common.Address
	Value   *big.Int
}

func (Approval) EventName() string { return "Approval" }

type MintRequested struct {
	Receiver common.Address
	Amount   *big.Int
	Nonce    *big.Int
}

func (MintRequested) EventName() string { return "MintRequest" }

type Minted struct {
	ID       common.Hash
	Receiver common.Address
	Amount   *big.Int
	Nonce    *big.Int
}

func (Minted) EventName() string { return "Minted" }

type RequestRevoked struct {
	ID common.Hash
}

func (RequestRevoked) EventName() string { return "RequestRevoked" }

type Redeem struct {
	To     common.Address
	Amount *big.Int
	Memo   []byte
}

func (Redeem) EventName() string { return "Redeem" }

type MintBudgetChanged struct {
	MintBudget  *big.Int
	UsedReserve *big.Int
}

func (MintBudgetChanged) EventName() string { return "MintBudgetChanged" }

type BlockedListChanged struct {
	Account common.Address
	Blocked bool
}

func (BlockedListChanged) EventName() string { return "BlockedListChanged" }

type NFTContractSet struct {
	Contract common.Address
}

func (NFTContractSet) EventName() string { return "NFTContractSet" }

type CcSendDisabledSet struct {
	Disabled bool
}

func (CcSendDisabledSet) EventName() string { return "CcSendDisabledSet" }

type CCSendToken struct {
	Sender   common.Address
	Receiver common.Address
	Amount   *big.Int
}

func (CCSendToken) EventName() string { return "CCSendToken" }

type CCSendMintBudget struct {
	Amount *big.Int
}

func (CCSendMintBudget) EventName() string { return "CCSendMintBudget" }

type CCReceiveToken struct {
	Sender   common.Address
	Receiver common.Address
	Amount   *big.Int
}

func (CCReceiveToken) EventName() string { return "CCReceiveToken" }

type CCReceiveMintBudget struct {
	Amount *big.Int
}

func (CCReceiveMintBudget) EventName() string { return "CCReceiveMintBudget" }
