package app

import (
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/models"
)

var (
	Config models.Config
)

func readConfigFromConfigFile(configFile string) bool {
	if configFile == "" {
		log.Debug("[CONFIG] No config file provided")
		return false
	}
	log.Debug("[CONFIG] Reading config file")
	var yamlFile, err = os.ReadFile(configFile)
	if err != nil {
		log.Fatalf("[CONFIG] Error reading config file %q: %s\n", configFile, err.Error())
	}
	err = yaml.Unmarshal(yamlFile, &Config)
	if err != nil {
		log.Fatalf("[CONFIG] Error unmarshalling config file %q: %s\n", configFile, err.Error())
	}
	log.Debug("[CONFIG] Config loaded from file")
	return true
}

// ReadConfig loads the config file, applies env overrides and resolves
// secrets without validating the result.
func ReadConfig(configFile string, envFile string) {
	readConfigFromConfigFile(configFile)
	readConfigFromENV(envFile)
	readKeysFromGSM()
}

// InitConfig reads and validates the config. Any failure terminates the
// process.
func InitConfig(configFile string, envFile string) {
	log.Debug("[CONFIG] Initializing config")
	ReadConfig(configFile, envFile)
	validateConfig()
	log.Info("[CONFIG] Config initialized")
}

func isAddress(s string) bool {
	return common.IsHexAddress(s) && common.HexToAddress(s) != (common.Address{})
}

func isAmount(s string) bool {
	v, ok := new(big.Int).SetString(s, 10)
	return ok && v.Sign() >= 0
}

func validateChain(name string, chain models.ChainConfig) {
	if chain.ChainID == 0 {
		log.Fatalf("[CONFIG] %s.ChainID is required", name)
	}
	if !isAddress(chain.TokenAddress) {
		log.Fatalf("[CONFIG] %s.TokenAddress is invalid", name)
	}
	if !isAddress(chain.MessengerAddress) {
		log.Fatalf("[CONFIG] %s.MessengerAddress is invalid", name)
	}
	if chain.ReserveFeedAddress != "" && !isAddress(chain.ReserveFeedAddress) {
		log.Fatalf("[CONFIG] %s.ReserveFeedAddress is invalid", name)
	}
	if chain.FallbackFeedAddress != "" && !isAddress(chain.FallbackFeedAddress) {
		log.Fatalf("[CONFIG] %s.FallbackFeedAddress is invalid", name)
	}
	if chain.FallbackReserve != "" && !isAmount(chain.FallbackReserve) {
		log.Fatalf("[CONFIG] %s.FallbackReserve is invalid", name)
	}
}

func validateConfig() {
	log.Debug("[CONFIG] Validating config")

	// mongodb
	if Config.MongoDB.URI == "" {
		log.Fatal("[CONFIG] MongoDB.URI is required")
	}
	if Config.MongoDB.Database == "" {
		log.Fatal("[CONFIG] MongoDB.Database is required")
	}
	if Config.MongoDB.TimeoutMillis == 0 {
		log.Fatal("[CONFIG] MongoDB.TimeoutMillis is required")
	}

	// chains
	validateChain("MainChain", Config.MainChain)
	validateChain("SideChain", Config.SideChain)
	if Config.MainChain.ChainID == Config.SideChain.ChainID {
		log.Fatal("[CONFIG] MainChain.ChainID and SideChain.ChainID must differ")
	}
	if !isAddress(Config.MainChain.RegistryAddress) {
		log.Fatal("[CONFIG] MainChain.RegistryAddress is invalid")
	}
	if Config.MainChain.RPCURL != "" && Config.MainChain.RPCTimeoutMillis == 0 {
		log.Fatal("[CONFIG] MainChain.RPCTimeoutMillis is required")
	}

	// engine
	if !isAddress(Config.Engine.Owner) {
		log.Fatal("[CONFIG] Engine.Owner is invalid")
	}
	if !isAddress(Config.Engine.Operator) {
		log.Fatal("[CONFIG] Engine.Operator is invalid")
	}
	if Config.Engine.Revoker != "" && !isAddress(Config.Engine.Revoker) {
		log.Fatal("[CONFIG] Engine.Revoker is invalid")
	}
	if Config.Engine.MintBudget != "" && !isAmount(Config.Engine.MintBudget) {
		log.Fatal("[CONFIG] Engine.MintBudget is invalid")
	}
	if Config.Engine.DelaySeconds != 0 && Config.Engine.DelaySeconds < governance.MinDelay {
		log.Fatalf("[CONFIG] Engine.DelaySeconds must be 0 or at least %d", governance.MinDelay)
	}

	// signer
	if Config.Signer.GcpKmsKeyName == "" && Config.Signer.PrivateKey == "" && Config.Signer.Mnemonic == "" {
		log.Fatal("[CONFIG] Signer.GcpKmsKeyName, Signer.PrivateKey or Signer.Mnemonic is required")
	}

	// services
	if Config.MintExecutor.Enabled && Config.MintExecutor.IntervalMillis == 0 {
		log.Fatal("[CONFIG] MintExecutor.IntervalMillis is required")
	}
	if Config.MessageRelayer.Enabled && Config.MessageRelayer.IntervalMillis == 0 {
		log.Fatal("[CONFIG] MessageRelayer.IntervalMillis is required")
	}
	if Config.ReserveMonitor.Enabled && Config.ReserveMonitor.IntervalMillis == 0 {
		log.Fatal("[CONFIG] ReserveMonitor.IntervalMillis is required")
	}

	// metrics
	if Config.Metrics.Enabled && Config.Metrics.ListenAddr == "" {
		log.Fatal("[CONFIG] Metrics.ListenAddr is required")
	}

	// health check
	if Config.HealthCheck.IntervalMillis == 0 {
		log.Fatal("[CONFIG] HealthCheck.IntervalMillis is required")
	}

	log.Debug("[CONFIG] Config validated")
}
