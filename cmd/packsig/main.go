package main

import (
	"flag"
	"fmt"
	"math/big"
	"path/filepath"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/pack"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	log "github.com/sirupsen/logrus"
)

func parseInt(name, value string) *big.Int {
	v, ok := new(big.Int).SetString(value, 10)
	if !ok || v.Sign() < 0 {
		log.Fatalf("[PACKSIG] Invalid %s: %q", name, value)
	}
	return v
}

func main() {
	var configPath, envPath, owner, amount, bullion string
	var deadline uint64
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&envPath, "env", "", "path to env file")
	flag.StringVar(&owner, "owner", "", "address packing the tokens")
	flag.StringVar(&amount, "amount", "", "token amount")
	flag.StringVar(&bullion, "bullion", "", "certificate id")
	flag.Uint64Var(&deadline, "deadline", 0, "unix time after which the authorization expires")
	flag.Parse()

	if configPath != "" {
		configPath, _ = filepath.Abs(configPath)
	}
	if envPath != "" {
		envPath, _ = filepath.Abs(envPath)
	}
	app.ReadConfig(configPath, envPath)

	if !common.IsHexAddress(owner) {
		log.Fatalf("[PACKSIG] Invalid owner: %q", owner)
	}
	if !common.IsHexAddress(app.Config.MainChain.RegistryAddress) {
		log.Fatal("[PACKSIG] MainChain.RegistryAddress is invalid")
	}

	signer, err := app.NewSigner()
	if err != nil {
		log.Fatal("[PACKSIG] Error creating signer: ", err)
	}
	defer signer.Destroy()

	domain := pack.Domain{
		ChainID:           new(big.Int).SetUint64(app.Config.MainChain.ChainID),
		VerifyingContract: common.HexToAddress(app.Config.MainChain.RegistryAddress),
	}
	auth := pack.Authorization{
		Owner:    common.HexToAddress(owner),
		Amount:   parseInt("amount", amount),
		Bullion:  parseInt("bullion", bullion),
		Deadline: deadline,
	}

	digest, err := pack.Digest(domain, auth)
	if err != nil {
		log.Fatal("[PACKSIG] Error hashing authorization: ", err)
	}

	sig, err := signer.EthSign(digest.Bytes())
	if err != nil {
		log.Fatal("[PACKSIG] Error signing authorization: ", err)
	}

	recovered, err := pack.RecoverSigner(digest, sig)
	if err != nil || recovered != signer.EthAddress() {
		log.Fatal("[PACKSIG] Signature does not recover to signer ", signer.EthAddress().Hex())
	}

	fmt.Println("Pack Signer: ", signer.EthAddress().Hex())
	fmt.Println("Digest: ", digest.Hex())
	fmt.Println("Signature: ", hexutil.Encode(sig))
}
