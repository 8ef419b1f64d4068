package oracle

import (
	"errors"
	"io"
	"math/big"
	"testing"

	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(io.Discard)
}

var (
	owner = common.HexToAddress("0x00000000000000000000000000000000000000a0")
	alice = common.HexToAddress("0x00000000000000000000000000000000000000c0")
)

func TestFallbackReserveFeed(t *testing.T) {
	clock := governance.NewManualClock(1_700_000_000)
	rec := events.NewRecorder()
	feed := NewFallbackReserveFeed(owner, clock, rec)

	t.Run("init", func(t *testing.T) {
		assert.Equal(t, owner, feed.Owner())
		assert.Equal(t, uint8(18), feed.Decimals())
		assert.Equal(t, "MatrixDock Bullion Reserve", feed.Description())
		assert.Equal(t, uint64(1), feed.Version())

		round, err := feed.RoundID()
		require.NoError(t, err)
		assert.Equal(t, uint64(0), round)
		latest, err := feed.LatestRoundData()
		require.NoError(t, err)
		assert.Equal(t, 0, latest.Value.Sign())
		assert.Equal(t, uint64(0), latest.UpdatedAt)
	})

	t.Run("set reserve", func(t *testing.T) {
		err := feed.SetReserve(alice, big.NewInt(123))
		var unauthorized *governance.UnauthorizedError
		require.True(t, errors.As(err, &unauthorized))
		assert.Equal(t, alice, unauthorized.Caller)

		require.NoError(t, feed.SetReserve(owner, big.NewInt(10000)))
		assert.Equal(t, ReserveSet{RoundID: 1, Value: big.NewInt(10000)}, rec.Last())

		ts := clock.Advance(12)
		require.NoError(t, feed.SetReserve(owner, big.NewInt(20000)))
		round, _ := feed.RoundID()
		assert.Equal(t, uint64(2), round)

		latest, err := feed.LatestRoundData()
		require.NoError(t, err)
		assert.Equal(t, Reading{RoundID: 2, Value: big.NewInt(20000), UpdatedAt: ts}, latest)

		byID, err := feed.GetRoundData(2)
		require.NoError(t, err)
		assert.Equal(t, latest, byID)

		_, err = feed.GetRoundData(3)
		assert.ErrorIs(t, err, ErrNoData)
		_, err = feed.GetRoundData(0)
		assert.ErrorIs(t, err, ErrNoData)
	})
}

func TestAttestedReserve(t *testing.T) {
	clock := governance.NewManualClock(1_700_000_000)
	primary := NewFallbackReserveFeed(owner, clock, nil)
	fallback := NewFallbackReserveFeed(owner, clock, nil)
	o := NewReserveOracle(clock)

	require.NoError(t, primary.SetReserve(owner, big.NewInt(50000)))

	t.Run("fresh primary", func(t *testing.T) {
		v, err := o.AttestedReserve(primary, nil)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(50000), v)
	})

	t.Run("boundary is still fresh", func(t *testing.T) {
		clock.Advance(StalenessWindow)
		v, err := o.AttestedReserve(primary, nil)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(50000), v)
	})

	t.Run("stale primary without fallback", func(t *testing.T) {
		clock.Advance(1)
		_, err := o.AttestedReserve(primary, nil)
		assert.ErrorIs(t, err, ErrReserveUnavailable)
	})

	t.Run("stale primary with unset fallback", func(t *testing.T) {
		_, err := o.AttestedReserve(primary, fallback)
		assert.ErrorIs(t, err, ErrReserveUnavailable)
	})

	t.Run("stale primary uses fallback", func(t *testing.T) {
		require.NoError(t, fallback.SetReserve(owner, big.NewInt(70000)))
		v, err := o.AttestedReserve(primary, fallback)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(70000), v)
	})

	t.Run("missing primary uses fallback", func(t *testing.T) {
		v, err := o.AttestedReserve(nil, fallback)
		require.NoError(t, err)
		assert.Equal(t, big.NewInt(70000), v)
	})

	t.Run("both stale", func(t *testing.T) {
		clock.Advance(StalenessWindow + 1)
		_, err := o.AttestedReserve(primary, fallback)
		assert.ErrorIs(t, err, ErrReserveUnavailable)
	})
}

func TestParseRoundData(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r, err := parseRoundData([]interface{}{big.NewInt(7), big.NewInt(900), big.NewInt(1), big.NewInt(1234), big.NewInt(7)})
		require.NoError(t, err)
		assert.Equal(t, Reading{RoundID: 7, Value: big.NewInt(900), UpdatedAt: 1234}, r)
	})

	t.Run("negative answer", func(t *testing.T) {
		_, err := parseRoundData([]interface{}{big.NewInt(7), big.NewInt(-1), big.NewInt(1), big.NewInt(1234), big.NewInt(7)})
		assert.Error(t, err)
	})

	t.Run("no data", func(t *testing.T) {
		_, err := parseRoundData([]interface{}{big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0), big.NewInt(0)})
		assert.ErrorIs(t, err, ErrNoData)
	})

	t.Run("wrong shape", func(t *testing.T) {
		_, err := parseRoundData([]interface{}{big.NewInt(0)})
		assert.Error(t, err)
	})
}

func TestDirectory(t *testing.T) {
	d := NewDirectory()
	feed := NewFallbackReserveFeed(owner, governance.NewManualClock(1), nil)
	addr := common.HexToAddress("0xfeed")
	d.Register(addr, feed)

	got, ok := d.Resolve(addr)
	assert.True(t, ok)
	assert.Equal(t, feed, got)

	_, ok = d.Resolve(common.Address{})
	assert.False(t, ok)
	_, ok = d.Resolve(alice)
	assert.False(t, ok)
}
