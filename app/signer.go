package app

import (
	"fmt"

	"github.com/dan13ram/mtoken-bridge/common"
	log "github.com/sirupsen/logrus"
)

var (
	newGcpKmsSigner     = func(keyName string) (common.Signer, error) { return common.NewGcpKmsSigner(keyName) }
	newPrivateKeySigner = func(key string) (common.Signer, error) { return common.NewPrivateKeySigner(key) }
	newMnemonicSigner   = func(mnemonic, path string) (common.Signer, error) { return common.NewMnemonicSignerWithPath(mnemonic, path) }
)

// NewSigner builds the configured signer. A KMS key wins over a private key,
// which wins over a mnemonic.
func NewSigner() (common.Signer, error) {
	cfg := Config.Signer
	switch {
	case cfg.GcpKmsKeyName != "":
		log.Debug("[SIGNER] Using GCP KMS key")
		return newGcpKmsSigner(cfg.GcpKmsKeyName)
	case cfg.PrivateKey != "":
		log.Debug("[SIGNER] Using private key")
		return newPrivateKeySigner(cfg.PrivateKey)
	case cfg.Mnemonic != "":
		path := cfg.HDPath
		if path == "" {
			path = common.DefaultETHHDPath
		}
		log.Debug("[SIGNER] Using mnemonic with path ", path)
		return newMnemonicSigner(cfg.Mnemonic, path)
	}
	return nil, fmt.Errorf("no signer configured")
}
