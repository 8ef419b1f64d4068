package node

import (
	"sync"
	"testing"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/app/mocks"
	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetServiceFactories(t *testing.T) {
	factories := GetServiceFactories()

	assert.Len(t, factories, 4)
	for _, name := range []string{MainMintExecutorName, SideMintExecutorName, MessageRelayerName, ReserveMonitorName} {
		assert.Contains(t, factories, name)
	}
}

func TestCreateService(t *testing.T) {
	chains, _ := newTestChains(t)
	wg := &sync.WaitGroup{}

	var received models.ServiceHealth
	factory := func(c *Chains, w *sync.WaitGroup, h models.ServiceHealth) app.Service {
		received = h
		return app.NewEmptyService(w)
	}

	healthMap := map[string]models.ServiceHealth{
		"known": {Name: "known", MainChainTime: "42"},
	}

	CreateService(chains, wg, "known", healthMap, factory)
	assert.Equal(t, "42", received.MainChainTime)

	CreateService(chains, wg, "unknown", healthMap, factory)
	assert.Equal(t, models.ServiceHealth{Name: "unknown"}, received)
}

func TestCreateServices(t *testing.T) {
	chains, _ := newTestChains(t)
	wg := &sync.WaitGroup{}

	app.Config.MintExecutor = models.ServiceConfig{Enabled: true, IntervalMillis: 1000}
	app.Config.MessageRelayer = models.ServiceConfig{}
	app.Config.ReserveMonitor = models.ServiceConfig{Enabled: true, IntervalMillis: 1000}
	defer func() {
		app.Config.MintExecutor = models.ServiceConfig{}
		app.Config.ReserveMonitor = models.ServiceConfig{}
	}()

	lastHealth := models.Health{
		ServiceHealths: []models.ServiceHealth{
			{Name: ReserveMonitorName, MainChainTime: "42"},
		},
	}

	services := CreateServices(chains, wg, lastHealth)
	require.Len(t, services, 4)

	var empty, running int
	for _, service := range services {
		switch s := service.(type) {
		case *app.EmptyService:
			empty++
		case *app.RunnerService:
			running++
			s.UpdateHealth()
			if s.Health().Name == ReserveMonitorName {
				assert.Equal(t, "42", s.Health().MainChainTime)
			}
		}
	}
	assert.Equal(t, 1, empty)
	assert.Equal(t, 3, running)
}

func TestJournalSinks(t *testing.T) {
	cfg := testConfig()
	sinks := JournalSinks(cfg, governance.NewManualClock(startTime))

	_, ok := sinks(mainChainID, "messenger").(*app.EventJournal)
	assert.True(t, ok)

	multi, ok := sinks(sideChainID, "token").(events.Multi)
	require.True(t, ok)
	require.Len(t, multi, 2)
	tracker, ok := multi[1].(*MintTracker)
	require.True(t, ok)
	assert.Equal(t, sideChainID, tracker.chainID)
	assert.Equal(t, sideToken.Hex(), tracker.tokenAddress)
}

func TestJournalSinksEndToEnd(t *testing.T) {
	mockDB := mocks.NewMockDatabase(t)
	app.DB = mockDB

	mockDB.EXPECT().InsertOne(models.CollectionEvents, mock.Anything).Return(nil)
	mockDB.EXPECT().InsertOne(models.CollectionMintRequests, mock.Anything).Return(nil).Once()

	clock := governance.NewManualClock(startTime)
	chains, err := NewChains(testConfig(), clock, packSigner, JournalSinks(testConfig(), clock))
	require.NoError(t, err)

	submitRequest(t, chains, 1000, 1)
}
