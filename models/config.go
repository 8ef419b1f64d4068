package models

type Config struct {
	GoogleSecretManager GoogleSecretManagerConfig `yaml:"google_secret_manager" json:"google_secret_manager"`
	HealthCheck         HealthCheckConfig         `yaml:"health_check" json:"health_check"`
	Logger              LoggerConfig              `yaml:"logger" json:"logger"`
	MongoDB             MongoConfig               `yaml:"mongodb" json:"mongo_db"`
	MainChain           ChainConfig               `yaml:"main_chain" json:"main_chain"`
	SideChain           ChainConfig               `yaml:"side_chain" json:"side_chain"`
	Engine              EngineConfig              `yaml:"engine" json:"engine"`
	Signer              SignerConfig              `yaml:"signer" json:"signer"`
	MintExecutor        ServiceConfig             `yaml:"mint_executor" json:"mint_executor"`
	MessageRelayer      ServiceConfig             `yaml:"message_relayer" json:"message_relayer"`
	ReserveMonitor      ServiceConfig             `yaml:"reserve_monitor" json:"reserve_monitor"`
	Metrics             MetricsConfig             `yaml:"metrics" json:"metrics"`
}

type GoogleSecretManagerConfig struct {
	Enabled              bool   `yaml:"enabled" json:"enabled"`
	ProjectID            string `yaml:"project_id" json:"project_id"`
	MongoSecretName      string `yaml:"mongo_secret_name" json:"mongo_secret_name"`
	MnemonicSecretName   string `yaml:"mnemonic_secret_name" json:"mnemonic_secret_name"`
	PrivateKeySecretName string `yaml:"private_key_secret_name" json:"private_key_secret_name"`
}

type HealthCheckConfig struct {
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
	ReadLastHealth bool  `yaml:"read_last_health" json:"read_last_health"`
}

type LoggerConfig struct {
	Level string `yaml:"level" json:"level"`
}

type MongoConfig struct {
	URI           string `yaml:"uri" json:"uri"`
	Database      string `yaml:"database" json:"database"`
	TimeoutMillis int64  `yaml:"timeout_ms" json:"timeout_ms"`
}

// ChainConfig describes one token instance. The RPC and feed settings are
// only read on the main chain. With an RPC the reserve feed is read on
// chain and the owner-settable feed sits at FallbackFeedAddress; without
// one the owner-settable feed is the reserve feed itself.
type ChainConfig struct {
	ChainID             uint64 `yaml:"chain_id" json:"chain_id"`
	TokenAddress        string `yaml:"token_address" json:"token_address"`
	MessengerAddress    string `yaml:"messenger_address" json:"messenger_address"`
	RegistryAddress     string `yaml:"registry_address" json:"registry_address"`
	RPCURL              string `yaml:"rpc_url" json:"rpc_url"`
	RPCTimeoutMillis    int64  `yaml:"rpc_timeout_ms" json:"rpc_timeout_ms"`
	ReserveFeedAddress  string `yaml:"reserve_feed_address" json:"reserve_feed_address"`
	FallbackFeedAddress string `yaml:"fallback_feed_address" json:"fallback_feed_address"`
	FallbackReserve     string `yaml:"fallback_reserve" json:"fallback_reserve"`
}

type EngineConfig struct {
	Owner        string `yaml:"owner" json:"owner"`
	Operator     string `yaml:"operator" json:"operator"`
	Revoker      string `yaml:"revoker" json:"revoker"`
	DelaySeconds uint64 `yaml:"delay_secs" json:"delay_secs"`
	FeePerByte   uint64 `yaml:"fee_per_byte" json:"fee_per_byte"`
	MintBudget   string `yaml:"mint_budget" json:"mint_budget"`
}

// SignerConfig selects the key used for pack authorizations. Exactly one
// of the three sources is used, in the order KMS, private key, mnemonic.
type SignerConfig struct {
	Mnemonic      string `yaml:"mnemonic" json:"mnemonic"`
	HDPath        string `yaml:"hd_path" json:"hd_path"`
	PrivateKey    string `yaml:"private_key" json:"private_key"`
	GcpKmsKeyName string `yaml:"gcp_kms_key_name" json:"gcp_kms_key_name"`
}

type ServiceConfig struct {
	Enabled        bool  `yaml:"enabled" json:"enabled"`
	IntervalMillis int64 `yaml:"interval_ms" json:"interval_ms"`
}

type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`
}
