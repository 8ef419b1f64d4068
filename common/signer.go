package common

import (
	"github.com/ethereum/go-ethereum/common"
)

// Signer produces recoverable secp256k1 signatures with v in {27, 28}.
// Data that is not already a 32 byte digest is hashed with keccak256.
type Signer interface {
	EthSign(data []byte) ([]byte, error)
	EthAddress() common.Address
	Destroy()
}
