package oracle

import (
	"fmt"
	"math/big"

	"github.com/dan13ram/mtoken-bridge/governance"
	log "github.com/sirupsen/logrus"
)

// StalenessWindow is how old, in seconds, a reading may be and still count.
const StalenessWindow uint64 = 48 * 3600

// ReserveOracle picks the attested reserve from a primary feed, falling
// back to a secondary feed when the primary is stale or missing.
type ReserveOracle struct {
	clock governance.Clock
}

func NewReserveOracle(clock governance.Clock) *ReserveOracle {
	return &ReserveOracle{clock: clock}
}

// IsFresh reports whether the reading is usable at now.
func IsFresh(r Reading, now uint64) bool {
	if r.UpdatedAt == 0 || r.Value == nil {
		return false
	}
	if r.UpdatedAt > now {
		return true
	}
	return now-r.UpdatedAt <= StalenessWindow
}

func (o *ReserveOracle) read(feed Feed, now uint64) (Reading, bool) {
	if feed == nil {
		return Reading{}, false
	}
	r, err := feed.LatestRoundData()
	if err != nil {
		log.Warn("[RESERVE ORACLE] Error reading feed: ", err)
		return Reading{}, false
	}
	return r, IsFresh(r, now)
}

// AttestedReserve returns the reserve from primary, or from fallback when
// primary is stale, unset or failing.
func (o *ReserveOracle) AttestedReserve(primary Feed, fallback Feed) (*big.Int, error) {
	now := o.clock.Now()
	if r, ok := o.read(primary, now); ok {
		return new(big.Int).Set(r.Value), nil
	}
	if fallback == nil {
		return nil, fmt.Errorf("%w: primary feed stale and no fallback feed", ErrReserveUnavailable)
	}
	log.Debug("[RESERVE ORACLE] Primary feed stale, using fallback feed")
	if r, ok := o.read(fallback, now); ok {
		return new(big.Int).Set(r.Value), nil
	}
	return nil, fmt.Errorf("%w: primary and fallback feeds stale", ErrReserveUnavailable)
}
