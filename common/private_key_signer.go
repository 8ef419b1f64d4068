package common

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// PrivateKeySigner signs with a hex encoded private key, as used by local
// deployments.
type PrivateKeySigner struct {
	ethAddress common.Address
	ethPrivKey *ecdsa.PrivateKey
}

var _ Signer = &PrivateKeySigner{}

func NewPrivateKeySigner(hexKey string) (*PrivateKeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return &PrivateKeySigner{
		ethPrivKey: key,
		ethAddress: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *PrivateKeySigner) Destroy() {
	s.ethPrivKey = nil
}

func (s *PrivateKeySigner) EthSign(data []byte) ([]byte, error) {
	if s.ethPrivKey == nil {
		return nil, fmt.Errorf("signer destroyed")
	}
	return ethSignDigest(data, s.ethPrivKey)
}

func (s *PrivateKeySigner) EthAddress() common.Address {
	return s.ethAddress
}
