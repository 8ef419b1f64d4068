package oracle

import (
	"math/big"
	"sync"

	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
)

const (
	FeedDecimals    = 18
	FeedDescription = "MatrixDock Bullion Reserve"
	FeedVersion     = 1
)

type ReserveSet struct {
	RoundID uint64
	Value   *big.Int
}

func (ReserveSet) EventName() string { return "ReserveSet" }

// FallbackReserveFeed is an owner-operated feed used when the primary
// attestation goes stale.
type FallbackReserveFeed struct {
	mu     sync.RWMutex
	owner  common.Address
	clock  governance.Clock
	sink   events.Sink
	rounds []Reading
}

var _ Feed = &FallbackReserveFeed{}

func NewFallbackReserveFeed(owner common.Address, clock governance.Clock, sink events.Sink) *FallbackReserveFeed {
	if sink == nil {
		sink = events.Discard
	}
	return &FallbackReserveFeed{
		owner: owner,
		clock: clock,
		sink:  sink,
	}
}

func (f *FallbackReserveFeed) Owner() common.Address { return f.owner }
func (f *FallbackReserveFeed) Decimals() uint8       { return FeedDecimals }
func (f *FallbackReserveFeed) Description() string   { return FeedDescription }
func (f *FallbackReserveFeed) Version() uint64       { return FeedVersion }

func (f *FallbackReserveFeed) SetReserve(actor common.Address, value *big.Int) error {
	if actor != f.owner {
		return &governance.UnauthorizedError{Role: governance.RoleOwner, Caller: actor}
	}
	f.mu.Lock()
	round := Reading{
		RoundID:   uint64(len(f.rounds)) + 1,
		Value:     new(big.Int).Set(value),
		UpdatedAt: f.clock.Now(),
	}
	f.rounds = append(f.rounds, round)
	f.mu.Unlock()

	log.Debugf("[RESERVE FEED] round %d reserve set to %s", round.RoundID, value)
	f.sink.Emit(ReserveSet{RoundID: round.RoundID, Value: new(big.Int).Set(value)})
	return nil
}

func (f *FallbackReserveFeed) RoundID() (uint64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return uint64(len(f.rounds)), nil
}

// LatestRoundData returns a zero reading before the first round is set.
func (f *FallbackReserveFeed) LatestRoundData() (Reading, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if len(f.rounds) == 0 {
		return Reading{Value: new(big.Int)}, nil
	}
	return copyReading(f.rounds[len(f.rounds)-1]), nil
}

func (f *FallbackReserveFeed) GetRoundData(roundID uint64) (Reading, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if roundID == 0 || roundID > uint64(len(f.rounds)) {
		return Reading{}, ErrNoData
	}
	return copyReading(f.rounds[roundID-1]), nil
}

func copyReading(r Reading) Reading {
	return Reading{RoundID: r.RoundID, Value: new(big.Int).Set(r.Value), UpdatedAt: r.UpdatedAt}
}
