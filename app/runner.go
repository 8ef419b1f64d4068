package app

import (
	"strings"
	"sync"
	"time"

	"github.com/dan13ram/mtoken-bridge/metrics"
	"github.com/dan13ram/mtoken-bridge/models"
	log "github.com/sirupsen/logrus"
)

// Runner is one unit of periodic work.
type Runner interface {
	Run()
	Status() models.RunnerStatus
}

// RunnerService calls its runner every interval until stopped and publishes
// the runner status as service health.
type RunnerService struct {
	name     string
	runner   Runner
	wg       *sync.WaitGroup
	interval time.Duration
	stop     chan bool

	healthMu sync.RWMutex
	health   models.ServiceHealth
}

func (x *RunnerService) logPrefix() string {
	return "[" + strings.ToUpper(x.name) + "]"
}

func (x *RunnerService) Start() {
	log.Info(x.logPrefix(), " Starting service")
	stop := false
	for !stop {
		log.Debug(x.logPrefix(), " Starting run")

		start := time.Now()
		x.runner.Run()

		x.UpdateHealth()
		metrics.RecordRun(x.name, time.Since(start), x.Health().Healthy)

		log.Debug(x.logPrefix(), " Finished run, sleeping for ", x.interval)

		select {
		case <-x.stop:
			stop = true
			log.Info(x.logPrefix(), " Stopped service")
		case <-time.After(x.interval):
		}
	}
	x.wg.Done()
}

func (x *RunnerService) Health() models.ServiceHealth {
	x.healthMu.RLock()
	defer x.healthMu.RUnlock()

	return x.health
}

func (x *RunnerService) UpdateHealth() {
	status := x.runner.Status()

	x.healthMu.Lock()
	defer x.healthMu.Unlock()

	lastSyncTime := time.Now()

	x.health = models.ServiceHealth{
		Name:          x.name,
		LastSyncTime:  lastSyncTime,
		NextSyncTime:  lastSyncTime.Add(x.interval),
		MainChainTime: status.MainChainTime,
		SideChainTime: status.SideChainTime,
		Healthy:       !status.Unhealthy,
	}
}

// Stop signals a running service to exit. It does not block when the
// service was never started.
func (x *RunnerService) Stop() {
	log.Debug(x.logPrefix(), " Stopping service")
	select {
	case x.stop <- true:
	default:
	}
}

// NewRunnerService returns nil when any parameter is missing.
func NewRunnerService(
	name string,
	runner Runner,
	wg *sync.WaitGroup,
	interval time.Duration,
) *RunnerService {
	if name == "" || runner == nil || wg == nil || interval <= 0 {
		log.Debug("[RUNNER] Invalid parameters for runner service ", name)
		return nil
	}

	return &RunnerService{
		name:     name,
		runner:   runner,
		wg:       wg,
		interval: interval,
		stop:     make(chan bool, 1),
	}
}
