package app

import (
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dan13ram/mtoken-bridge/app/mocks"
	"github.com/dan13ram/mtoken-bridge/common"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func NewTestHealthCheck() *HealthCheckRunner {
	x := &HealthCheckRunner{
		nodeID:   "nodeId",
		hostname: "hostname",
	}
	return x
}

func TestHealthStatus(t *testing.T) {
	x := NewTestHealthCheck()

	status := x.Status()
	assert.Equal(t, status.MainChainTime, "")
	assert.Equal(t, status.SideChainTime, "")
}

func TestFindLastHealth(t *testing.T) {

	t.Run("No Error", func(t *testing.T) {
		mockDB := mocks.NewMockDatabase(t)
		DB = mockDB

		x := NewTestHealthCheck()
		filter := bson.M{
			"node_id":  x.nodeID,
			"hostname": x.hostname,
		}
		var health models.Health
		mockDB.EXPECT().FindOne(models.CollectionHealthChecks, filter, &health).Return(nil)

		_, err := x.FindLastHealth()

		assert.Nil(t, err)
	})

	t.Run("With Error", func(t *testing.T) {
		mockDB := mocks.NewMockDatabase(t)
		DB = mockDB

		x := NewTestHealthCheck()
		mockDB.EXPECT().FindOne(models.CollectionHealthChecks, mock.Anything, mock.Anything).Return(errors.New("error"))

		_, err := x.FindLastHealth()

		assert.NotNil(t, err)
		assert.Equal(t, err.Error(), "error")
	})

}

type MockService struct {
	healthy bool
}

func (e *MockService) Start() {}

func (e *MockService) Stop() {}

const MockServiceName = "mock"

func (e *MockService) Health() models.ServiceHealth {
	return models.ServiceHealth{
		Name:         MockServiceName,
		LastSyncTime: time.Now(),
		NextSyncTime: time.Now(),
		Healthy:      e.healthy,
	}
}

func NewMockService() Service {
	return &MockService{healthy: true}
}

func TestServices(t *testing.T) {
	x := NewTestHealthCheck()
	wg := &sync.WaitGroup{}
	x.SetServices([]Service{
		NewEmptyService(wg),
		NewEmptyService(wg),
		NewMockService(),
	})

	assert.Equal(t, len(x.services), 3)

	assert.Equal(t, x.services[0].Health().Name, EmptyServiceName)
	assert.Equal(t, x.services[1].Health().Name, EmptyServiceName)
	assert.Equal(t, x.services[2].Health().Name, MockServiceName)
}

func TestServiceHealths(t *testing.T) {
	x := NewTestHealthCheck()
	wg := &sync.WaitGroup{}
	x.SetServices([]Service{
		NewEmptyService(wg),
		NewEmptyService(wg),
		NewMockService(),
	})

	healths := x.ServiceHealths()

	assert.Equal(t, len(healths), 1)

	assert.Equal(t, healths[0].Name, MockServiceName)

}

func TestPostHealth(t *testing.T) {
	t.Run("No Error", func(t *testing.T) {
		x := NewTestHealthCheck()
		wg := &sync.WaitGroup{}
		x.SetServices([]Service{
			NewEmptyService(wg),
			NewMockService(),
		})

		mockDB := mocks.NewMockDatabase(t)
		DB = mockDB

		filter := bson.M{
			"node_id":  x.nodeID,
			"hostname": x.hostname,
		}

		onInsert := bson.M{
			"node_id":            x.nodeID,
			"hostname":           x.hostname,
			"signer_address":     x.signerAddress,
			"main_chain_id":      x.mainChainID,
			"side_chain_id":      x.sideChainID,
			"main_token_address": x.mainTokenAddress,
			"side_token_address": x.sideTokenAddress,
			"created_at":         nil,
		}

		onUpdate := bson.M{
			"healthy":         true,
			"service_healths": []models.ServiceHealth{},
			"updated_at":      nil,
		}

		update := bson.M{"$set": onUpdate, "$setOnInsert": onInsert}

		call := mockDB.EXPECT().UpsertOne(models.CollectionHealthChecks, filter, mock.Anything)
		call.Run(func(_ string, _ interface{}, arg interface{}) {
			updateArg := arg.(bson.M)

			healths := updateArg["$set"].(bson.M)["service_healths"].([]models.ServiceHealth)
			assert.Len(t, healths, 1)

			updateArg["$setOnInsert"].(bson.M)["created_at"] = nil
			updateArg["$set"].(bson.M)["updated_at"] = nil
			updateArg["$set"].(bson.M)["service_healths"] = []models.ServiceHealth{}

			assert.Equal(t, update, updateArg)
		})
		call.Return(nil)

		success := x.PostHealth()
		assert.True(t, success)
	})

	t.Run("Unhealthy Service", func(t *testing.T) {
		x := NewTestHealthCheck()
		x.SetServices([]Service{NewMockService(), &MockService{healthy: false}})

		mockDB := mocks.NewMockDatabase(t)
		DB = mockDB

		call := mockDB.EXPECT().UpsertOne(models.CollectionHealthChecks, mock.Anything, mock.Anything)
		call.Run(func(_ string, _ interface{}, arg interface{}) {
			assert.Equal(t, false, arg.(bson.M)["$set"].(bson.M)["healthy"])
		})
		call.Return(nil)

		assert.True(t, x.PostHealth())
	})

	t.Run("With Error", func(t *testing.T) {
		x := NewTestHealthCheck()
		wg := &sync.WaitGroup{}
		x.SetServices([]Service{
			NewEmptyService(wg),
			NewMockService(),
		})

		mockDB := mocks.NewMockDatabase(t)
		DB = mockDB

		mockDB.EXPECT().UpsertOne(mock.Anything, mock.Anything, mock.Anything).Return(errors.New("error"))

		success := x.PostHealth()
		assert.False(t, success)
	})

	t.Run("Via Run", func(t *testing.T) {
		x := NewTestHealthCheck()

		mockDB := mocks.NewMockDatabase(t)
		DB = mockDB

		mockDB.EXPECT().UpsertOne(mock.Anything, mock.Anything, mock.Anything).Return(errors.New("error"))

		x.Run()
	})

}

func TestNewHealthCheck(t *testing.T) {
	t.Run("Without Signer", func(t *testing.T) {
		expectFatal(t, func() { NewHealthCheck(nil) })
	})

	t.Run("With Signer", func(t *testing.T) {
		Config = models.Config{}
		Config.MainChain.ChainID = 1
		Config.SideChain.ChainID = 56
		Config.MainChain.TokenAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
		Config.HealthCheck.IntervalMillis = 1000

		signer, err := common.NewPrivateKeySigner("ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80")
		require.NoError(t, err)

		x := NewHealthCheck(signer)

		hostname, _ := os.Hostname()

		assert.NotNil(t, x)
		assert.Equal(t, "mtoken-node-0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", x.nodeID)
		assert.Equal(t, hostname, x.hostname)
		assert.Equal(t, uint64(56), x.sideChainID)
		assert.Equal(t, Config.MainChain.TokenAddress, x.mainTokenAddress)

		service := NewHealthService(x, &sync.WaitGroup{})
		assert.Equal(t, HealthServiceName, service.name)
		assert.Equal(t, time.Second, service.interval)
	})
}
