package common

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/cosmos/go-bip39"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
)

// EthereumPrivateKeyFromMnemonic derives the key at DefaultETHHDPath.
func EthereumPrivateKeyFromMnemonic(mnemonic string) (*ecdsa.PrivateKey, error) {
	return EthereumPrivateKeyFromMnemonicPath(mnemonic, DefaultETHHDPath)
}

func EthereumPrivateKeyFromMnemonicPath(mnemonic string, path string) (*ecdsa.PrivateKey, error) {
	mnemonic = strings.TrimSpace(mnemonic)
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	wallet, err := hdwallet.NewFromMnemonic(mnemonic, DefaultBIP39Passphrase)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	derivationPath, err := hdwallet.ParseDerivationPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse derivation path %q: %w", path, err)
	}

	account, err := wallet.Derive(derivationPath, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive account: %w", err)
	}

	return wallet.PrivateKey(account)
}

// ethSignDigest signs with a local key and moves v to {27, 28}.
func ethSignDigest(data []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	digest := data
	if len(digest) != 32 {
		digest = crypto.Keccak256(data)
	}
	hash := common.BytesToHash(digest)
	signature, err := crypto.Sign(hash[:], key)
	if err != nil {
		return nil, err
	}

	if signature[64] == 0 || signature[64] == 1 {
		signature[64] += 27
	}

	return signature, nil
}
