package governance

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgradeRequestRevoke(t *testing.T) {
	g, clock, rec := newTestGovernor(t)
	setDelay(t, g, 100000)
	u := NewUpgrader(g, AddressRole(RoleOwner, func() common.Address { return owner }), common.HexToAddress("0x1111"))

	bob := common.HexToAddress("0x0b0b")

	var unauthorized *UnauthorizedError
	require.True(t, errors.As(u.RequestUpgrade(alice, bob, []byte{0xb0, 0xb0}), &unauthorized))
	require.True(t, errors.As(u.RevokeUpgrade(alice), &unauthorized))

	require.NoError(t, u.RequestUpgrade(owner, bob, []byte{0xb0, 0xb0}))
	ev, ok := rec.Last().(UpgradeRequested)
	require.True(t, ok)
	assert.Equal(t, bob, ev.Implementation)
	assert.Equal(t, []byte{0xb0, 0xb0}, ev.Data)
	assert.Equal(t, bob, u.NextImplementation())
	assert.Equal(t, crypto.Keccak256Hash([]byte{0xb0, 0xb0}), u.NextDataHash())
	assert.Greater(t, u.EffectiveAt(), uint64(0))

	ts := clock.Advance(10)
	require.NoError(t, u.RequestUpgrade(owner, alice, []byte{0xa1, 0xce}))
	assert.Equal(t, alice, u.NextImplementation())
	assert.Equal(t, crypto.Keccak256Hash([]byte{0xa1, 0xce}), u.NextDataHash())
	assert.Equal(t, ts+100000, u.EffectiveAt())

	require.NoError(t, u.RevokeUpgrade(revoker))
	assert.Equal(t, uint64(0), u.EffectiveAt())
}

func TestUpgradeExecute(t *testing.T) {
	g, clock, _ := newTestGovernor(t)
	setDelay(t, g, 100000)
	u := NewUpgrader(g, AddressRole(RoleOwner, func() common.Address { return owner }), common.HexToAddress("0x1111"))

	impl := common.HexToAddress("0x2222")
	bob := common.HexToAddress("0x0b0b")
	require.NoError(t, u.RequestUpgrade(owner, impl, nil))

	var invalid *InvalidUpgradeTargetError
	assert.True(t, errors.As(u.Upgrade(owner, bob, nil), &invalid))
	assert.True(t, errors.As(u.Upgrade(owner, impl, []byte{0x12, 0x34}), &invalid))

	var tooEarly *TooEarlyError
	assert.True(t, errors.As(u.Upgrade(owner, impl, nil), &tooEarly))

	clock.Advance(100000)
	var unauthorized *UnauthorizedError
	assert.True(t, errors.As(u.Upgrade(alice, impl, nil), &unauthorized))

	require.NoError(t, u.RevokeUpgrade(revoker))
	assert.True(t, errors.As(u.Upgrade(owner, impl, nil), &tooEarly))
	assert.Equal(t, uint64(1), u.Version())

	require.NoError(t, u.RequestUpgrade(owner, common.Address{}, nil))
	clock.Advance(100000)
	assert.ErrorIs(t, u.Upgrade(owner, common.Address{}, nil), ErrZeroAddress)

	require.NoError(t, u.RequestUpgrade(owner, impl, nil))
	clock.Advance(100000)
	require.NoError(t, u.Upgrade(owner, impl, nil))
	assert.Equal(t, impl, u.Implementation())
	assert.Equal(t, uint64(2), u.Version())
}

func TestUpgradeIsNotReplayed(t *testing.T) {
	g, clock, _ := newTestGovernor(t)
	setDelay(t, g, 3600)
	u := NewUpgrader(g, AddressRole(RoleOwner, func() common.Address { return owner }), common.HexToAddress("0x01"))

	impl := common.HexToAddress("0x02")
	require.NoError(t, u.RequestUpgrade(owner, impl, nil))
	clock.Advance(3600)
	require.NoError(t, u.Upgrade(owner, impl, nil))
	assert.Equal(t, uint64(2), u.Version())
	assert.Equal(t, uint64(0), u.EffectiveAt())

	var tooEarly *TooEarlyError
	assert.True(t, errors.As(u.Upgrade(owner, impl, nil), &tooEarly))
	assert.Equal(t, uint64(2), u.Version())
	assert.Equal(t, impl, u.Implementation())
}
