package oracle

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrNoData             = errors.New("NO_DATA")
	ErrReserveUnavailable = errors.New("reserve unavailable")
)

// Reading is one attestation round of a reserve feed.
type Reading struct {
	RoundID   uint64
	Value     *big.Int
	UpdatedAt uint64
}

// Feed is a read-only reserve attestation source.
type Feed interface {
	RoundID() (uint64, error)
	LatestRoundData() (Reading, error)
	GetRoundData(roundID uint64) (Reading, error)
}

// Resolver maps a configured feed address to a readable feed.
type Resolver interface {
	Resolve(address common.Address) (Feed, bool)
}

// Directory is an address-keyed set of feeds.
type Directory struct {
	mu    sync.RWMutex
	feeds map[common.Address]Feed
}

func NewDirectory() *Directory {
	return &Directory{feeds: make(map[common.Address]Feed)}
}

func (d *Directory) Register(address common.Address, feed Feed) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.feeds[address] = feed
}

func (d *Directory) Resolve(address common.Address) (Feed, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if address == (common.Address{}) {
		return nil, false
	}
	feed, ok := d.feeds[address]
	return feed, ok
}
