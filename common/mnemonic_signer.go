package common

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

type MnemonicSigner struct {
	ethAddress common.Address
	ethPrivKey *ecdsa.PrivateKey
}

var _ Signer = &MnemonicSigner{}

func NewMnemonicSigner(mnemonic string) (*MnemonicSigner, error) {
	return NewMnemonicSignerWithPath(mnemonic, DefaultETHHDPath)
}

// NewMnemonicSignerWithPath derives the signing key at an explicit HD path.
func NewMnemonicSignerWithPath(mnemonic string, path string) (*MnemonicSigner, error) {
	ethPrivKey, err := EthereumPrivateKeyFromMnemonicPath(mnemonic, path)
	if err != nil {
		return nil, fmt.Errorf("failed to create ethereum private key: %w", err)
	}

	return &MnemonicSigner{
		ethPrivKey: ethPrivKey,
		ethAddress: crypto.PubkeyToAddress(ethPrivKey.PublicKey),
	}, nil
}

func (s *MnemonicSigner) Destroy() {
	// nothing to do
}

func (s *MnemonicSigner) EthSign(data []byte) ([]byte, error) {
	return ethSignDigest(data, s.ethPrivKey)
}

func (s *MnemonicSigner) EthAddress() common.Address {
	return s.ethAddress
}
