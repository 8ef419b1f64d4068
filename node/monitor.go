package node

import (
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/metrics"
	"github.com/dan13ram/mtoken-bridge/models"
	log "github.com/sirupsen/logrus"
)

const (
	ReserveMonitorName = "reserve monitor"
)

// ReserveMonitorRunner samples the attested reserve of the main chain
// token and compares it with the reserve already backing mint budget.
type ReserveMonitorRunner struct {
	chain *Chain

	mu          sync.RWMutex
	lastReserve *big.Int
	lastUsed    *big.Int
	lastError   error
	lastRunTime uint64
}

func (x *ReserveMonitorRunner) Run() {
	x.SampleReserve()
}

func (x *ReserveMonitorRunner) Status() models.RunnerStatus {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return models.RunnerStatus{
		MainChainTime: strconv.FormatUint(x.lastRunTime, 10),
		Unhealthy:     x.lastError != nil,
	}
}

// Reserve returns the last sampled reserve and the last sampling error.
func (x *ReserveMonitorRunner) Reserve() (*big.Int, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.lastReserve == nil {
		return nil, x.lastError
	}
	return new(big.Int).Set(x.lastReserve), x.lastError
}

// Headroom is the reserve not yet used to back mint budget. It is negative
// when the attested reserve dropped below the used reserve.
func (x *ReserveMonitorRunner) Headroom() *big.Int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	if x.lastReserve == nil || x.lastUsed == nil {
		return nil
	}
	return new(big.Int).Sub(x.lastReserve, x.lastUsed)
}

func (x *ReserveMonitorRunner) SampleReserve() bool {
	var reserve, used *big.Int
	var now uint64
	err := x.chain.Do(func() error {
		now = x.chain.Token.Governor().Now()
		used = x.chain.Token.UsedReserve()
		var err error
		reserve, err = x.chain.Token.AttestedReserve()
		return err
	})

	x.mu.Lock()
	defer x.mu.Unlock()
	x.lastRunTime = now
	x.lastUsed = used

	if err != nil {
		log.Warn("[RESERVE MONITOR] Reserve unavailable: ", err)
		x.lastError = err
		metrics.SetReserve(nil, used)
		return false
	}

	x.lastError = nil
	x.lastReserve = reserve
	metrics.SetReserve(reserve, used)
	if reserve.Cmp(used) < 0 {
		log.Warn("[RESERVE MONITOR] Attested reserve ", reserve, " is below used reserve ", used)
	} else {
		log.Info("[RESERVE MONITOR] Attested reserve ", reserve, ", used reserve ", used)
	}
	return true
}

func NewReserveMonitor(chains *Chains, wg *sync.WaitGroup, lastHealth models.ServiceHealth) app.Service {
	if !app.Config.ReserveMonitor.Enabled {
		log.Debug("[RESERVE MONITOR] Reserve monitor disabled")
		return app.NewEmptyService(wg)
	}

	log.Debug("[RESERVE MONITOR] Initializing reserve monitor")

	x := &ReserveMonitorRunner{
		chain: chains.Main,
	}

	if lastRunTime, err := strconv.ParseUint(lastHealth.MainChainTime, 10, 64); err == nil {
		x.lastRunTime = lastRunTime
	}

	log.Info("[RESERVE MONITOR] Initialized reserve monitor")

	return app.NewRunnerService(ReserveMonitorName, x, wg, time.Duration(app.Config.ReserveMonitor.IntervalMillis)*time.Millisecond)
}
