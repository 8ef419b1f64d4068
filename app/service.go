package app

import (
	"sync"
	"time"

	"github.com/dan13ram/mtoken-bridge/models"
)

type Service interface {
	Start()
	Health() models.ServiceHealth
	Stop()
}

// EmptyService stands in for a disabled service.
type EmptyService struct {
	wg *sync.WaitGroup
}

func (e *EmptyService) Start() {}

func (e *EmptyService) Stop() {
	e.wg.Done()
}

const EmptyServiceName = "empty"

func (e *EmptyService) Health() models.ServiceHealth {
	return models.ServiceHealth{
		Name:          EmptyServiceName,
		LastSyncTime:  time.Now(),
		NextSyncTime:  time.Now(),
		MainChainTime: "",
		SideChainTime: "",
		Healthy:       true,
	}
}

func NewEmptyService(wg *sync.WaitGroup) *EmptyService {
	return &EmptyService{
		wg: wg,
	}
}
