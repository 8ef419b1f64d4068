package app

import (
	"os"
	"sync"
	"time"

	"github.com/dan13ram/mtoken-bridge/common"
	"github.com/dan13ram/mtoken-bridge/models"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	HealthServiceName = "health"
)

// HealthCheckRunner posts the health of this node and of every registered
// service to the healthchecks collection, one document per node and host.
type HealthCheckRunner struct {
	nodeID           string
	hostname         string
	signerAddress    string
	mainChainID      uint64
	sideChainID      uint64
	mainTokenAddress string
	sideTokenAddress string

	servicesMu sync.RWMutex
	services   []Service
}

func (x *HealthCheckRunner) Run() {
	x.PostHealth()
}

func (x *HealthCheckRunner) Status() models.RunnerStatus {
	return models.RunnerStatus{}
}

func (x *HealthCheckRunner) SetServices(services []Service) {
	x.servicesMu.Lock()
	defer x.servicesMu.Unlock()
	x.services = services
}

// ServiceHealths skips the placeholders of disabled services.
func (x *HealthCheckRunner) ServiceHealths() []models.ServiceHealth {
	x.servicesMu.RLock()
	defer x.servicesMu.RUnlock()

	var serviceHealths []models.ServiceHealth
	for _, service := range x.services {
		if service == nil {
			continue
		}
		health := service.Health()
		if health.Name == EmptyServiceName || health.Name == "" {
			continue
		}
		serviceHealths = append(serviceHealths, health)
	}
	return serviceHealths
}

func (x *HealthCheckRunner) filter() bson.M {
	return bson.M{
		"node_id":  x.nodeID,
		"hostname": x.hostname,
	}
}

func (x *HealthCheckRunner) FindLastHealth() (models.Health, error) {
	var health models.Health
	err := DB.FindOne(models.CollectionHealthChecks, x.filter(), &health)
	return health, err
}

func (x *HealthCheckRunner) PostHealth() bool {
	log.Debug("[HEALTH] Posting health")

	healthy := true
	serviceHealths := x.ServiceHealths()
	for _, health := range serviceHealths {
		healthy = healthy && health.Healthy
	}

	onInsert := bson.M{
		"node_id":            x.nodeID,
		"hostname":           x.hostname,
		"signer_address":     x.signerAddress,
		"main_chain_id":      x.mainChainID,
		"side_chain_id":      x.sideChainID,
		"main_token_address": x.mainTokenAddress,
		"side_token_address": x.sideTokenAddress,
		"created_at":         time.Now(),
	}

	onUpdate := bson.M{
		"healthy":         healthy,
		"service_healths": serviceHealths,
		"updated_at":      time.Now(),
	}

	update := bson.M{"$set": onUpdate, "$setOnInsert": onInsert}

	err := DB.UpsertOne(models.CollectionHealthChecks, x.filter(), update)
	if err != nil {
		log.Error("[HEALTH] Error posting health: ", err)
		return false
	}

	log.Debug("[HEALTH] Posted health")
	return true
}

// NewHealthCheck identifies the node by its signer address.
func NewHealthCheck(signer common.Signer) *HealthCheckRunner {
	log.Debug("[HEALTH] Initializing health")

	if signer == nil {
		log.Fatal("[HEALTH] Signer is required")
	}

	hostname, err := os.Hostname()
	if err != nil {
		log.Fatal("[HEALTH] Error getting hostname: ", err)
	}

	signerAddress := signer.EthAddress().Hex()

	x := &HealthCheckRunner{
		nodeID:           "mtoken-node-" + signerAddress,
		hostname:         hostname,
		signerAddress:    signerAddress,
		mainChainID:      Config.MainChain.ChainID,
		sideChainID:      Config.SideChain.ChainID,
		mainTokenAddress: Config.MainChain.TokenAddress,
		sideTokenAddress: Config.SideChain.TokenAddress,
	}

	log.Info("[HEALTH] Initialized health for node ", x.nodeID)

	return x
}

func NewHealthService(x *HealthCheckRunner, wg *sync.WaitGroup) *RunnerService {
	return NewRunnerService(HealthServiceName, x, wg, time.Duration(Config.HealthCheck.IntervalMillis)*time.Millisecond)
}
