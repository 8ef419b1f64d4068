package app

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/dan13ram/mtoken-bridge/models"
)

func envString(key string, target *string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}

func envInt64(key string, target *int64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Warn("[ENV] Error parsing ", key, ": ", err.Error())
		return
	}
	*target = parsed
}

func envUint64(key string, target *uint64) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parsed, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Warn("[ENV] Error parsing ", key, ": ", err.Error())
		return
	}
	*target = parsed
}

func envBool(key string, target *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn("[ENV] Error parsing ", key, ": ", err.Error())
		return
	}
	*target = parsed
}

func readChainFromENV(prefix string, chain *models.ChainConfig) {
	envUint64(prefix+"_CHAIN_ID", &chain.ChainID)
	envString(prefix+"_TOKEN_ADDRESS", &chain.TokenAddress)
	envString(prefix+"_MESSENGER_ADDRESS", &chain.MessengerAddress)
	envString(prefix+"_REGISTRY_ADDRESS", &chain.RegistryAddress)
	envString(prefix+"_RPC_URL", &chain.RPCURL)
	envInt64(prefix+"_RPC_TIMEOUT_MS", &chain.RPCTimeoutMillis)
	envString(prefix+"_RESERVE_FEED_ADDRESS", &chain.ReserveFeedAddress)
	envString(prefix+"_FALLBACK_FEED_ADDRESS", &chain.FallbackFeedAddress)
	envString(prefix+"_FALLBACK_RESERVE", &chain.FallbackReserve)
}

func readServiceFromENV(prefix string, service *models.ServiceConfig) {
	envBool(prefix+"_ENABLED", &service.Enabled)
	envInt64(prefix+"_INTERVAL_MS", &service.IntervalMillis)
}

// readConfigFromENV overrides file values with any set environment variable.
func readConfigFromENV(envFile string) {
	if envFile != "" {
		err := godotenv.Load(envFile)
		if err != nil {
			log.Warn("[ENV] Error loading .env file: ", err.Error())
		}
	}

	// mongodb
	envString("MONGODB_URI", &Config.MongoDB.URI)
	envString("MONGODB_DATABASE", &Config.MongoDB.Database)
	envInt64("MONGODB_TIMEOUT_MS", &Config.MongoDB.TimeoutMillis)

	// chains
	readChainFromENV("MAIN", &Config.MainChain)
	readChainFromENV("SIDE", &Config.SideChain)

	// engine
	envString("ENGINE_OWNER", &Config.Engine.Owner)
	envString("ENGINE_OPERATOR", &Config.Engine.Operator)
	envString("ENGINE_REVOKER", &Config.Engine.Revoker)
	envUint64("ENGINE_DELAY_SECS", &Config.Engine.DelaySeconds)
	envUint64("ENGINE_FEE_PER_BYTE", &Config.Engine.FeePerByte)
	envString("ENGINE_MINT_BUDGET", &Config.Engine.MintBudget)

	// signer
	envString("SIGNER_MNEMONIC", &Config.Signer.Mnemonic)
	envString("SIGNER_HD_PATH", &Config.Signer.HDPath)
	envString("SIGNER_PRIVATE_KEY", &Config.Signer.PrivateKey)
	envString("SIGNER_GCP_KMS_KEY_NAME", &Config.Signer.GcpKmsKeyName)

	// services
	readServiceFromENV("MINT_EXECUTOR", &Config.MintExecutor)
	readServiceFromENV("MESSAGE_RELAYER", &Config.MessageRelayer)
	readServiceFromENV("RESERVE_MONITOR", &Config.ReserveMonitor)

	// metrics
	envBool("METRICS_ENABLED", &Config.Metrics.Enabled)
	envString("METRICS_LISTEN_ADDR", &Config.Metrics.ListenAddr)

	// health check
	envInt64("HEALTH_CHECK_INTERVAL_MS", &Config.HealthCheck.IntervalMillis)
	envBool("HEALTH_CHECK_READ_LAST_HEALTH", &Config.HealthCheck.ReadLastHealth)

	// logging
	envString("LOG_LEVEL", &Config.Logger.Level)
	if Config.Logger.Level == "" {
		log.Warn("[ENV] Setting LogLevel to info")
		Config.Logger.Level = "info"
	}

	// google secret manager
	envBool("GOOGLE_SECRET_MANAGER_ENABLED", &Config.GoogleSecretManager.Enabled)
	envString("GOOGLE_PROJECT_ID", &Config.GoogleSecretManager.ProjectID)
	envString("GOOGLE_MONGO_SECRET_NAME", &Config.GoogleSecretManager.MongoSecretName)
	envString("GOOGLE_MNEMONIC_SECRET_NAME", &Config.GoogleSecretManager.MnemonicSecretName)
	envString("GOOGLE_PRIVATE_KEY_SECRET_NAME", &Config.GoogleSecretManager.PrivateKeySecretName)
}
