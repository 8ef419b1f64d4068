package token

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/dan13ram/mtoken-bridge/codec"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(hex string) string {
	return strings.Repeat("0", 64-len(hex)) + hex
}

func withMessager(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.mt.SetMessager(owner, messager))
	require.NoError(t, f.mt.SetMessager(owner, messager))
}

func TestMsgOfCcSendToken(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mt.AddToBlockedList(operator, alice))

	var blocked *BlockedAccountError
	_, err := f.mt.MsgOfCcSendToken(alice, bob, big.NewInt(123))
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, alice, blocked.Account)
	_, err = f.mt.MsgOfCcSendToken(bob, alice, big.NewInt(123))
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, alice, blocked.Account)

	require.NoError(t, f.mt.RemoveFromBlockedList(operator, alice))
	msg, err := f.mt.MsgOfCcSendToken(bob, alice, big.NewInt(0x123))
	require.NoError(t, err)
	expected := word("2") + word("40") + word("60") +
		word(strings.TrimPrefix(strings.ToLower(bob.Hex()), "0x")) +
		word(strings.TrimPrefix(strings.ToLower(alice.Hex()), "0x")) +
		word("123")
	assert.Equal(t, expected, common.Bytes2Hex(msg))
}

func TestMsgOfCcSendMintBudget(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mt.IncreaseMintBudget(operator, big.NewInt(50000)))

	_, err := f.mt.MsgOfCcSendMintBudget(big.NewInt(50001))
	var budgetErr *BudgetInsufficientError
	require.True(t, errors.As(err, &budgetErr))
	assert.Equal(t, "50000", budgetErr.Available.String())
	assert.Equal(t, "50001", budgetErr.Requested.String())

	msg, err := f.mt.MsgOfCcSendMintBudget(big.NewInt(49999))
	require.NoError(t, err)
	assert.Equal(t, word("3")+word("40")+word("20")+word("c34f"), common.Bytes2Hex(msg))
}

func TestCcSendToken(t *testing.T) {
	f := fundedFixture(t)
	withMessager(t, f)

	require.NoError(t, f.mt.SetDisableCcSend(owner, true))
	_, err := f.mt.CcSendToken(messager, alice, bob, big.NewInt(123))
	assert.ErrorIs(t, err, ErrSendDisabled)

	require.NoError(t, f.mt.SetDisableCcSend(owner, false))
	_, err = f.mt.CcSendToken(messager, alice, bob, big.NewInt(0))
	assert.ErrorIs(t, err, ErrZeroAmount)

	msg, err := f.mt.CcSendToken(messager, alice, bob, big.NewInt(123))
	require.NoError(t, err)
	assert.Equal(t, CCSendToken{Sender: alice, Receiver: bob, Amount: big.NewInt(123)}, f.rec.Last())
	decoded, err := codec.Decode(msg)
	require.NoError(t, err)
	assert.Equal(t, codec.TokenTransfer{Sender: alice, Receiver: bob, Amount: big.NewInt(123)}, decoded)

	_, err = f.mt.CcSendToken(messager, alice, bob, big.NewInt(456))
	require.NoError(t, err)
	assert.Equal(t, "19421", f.mt.BalanceOf(alice).String())
	assert.Equal(t, "19421", f.mt.TotalSupply().String())

	var balanceErr *InsufficientBalanceError
	_, err = f.mt.CcSendToken(messager, alice, bob, big.NewInt(19422))
	require.True(t, errors.As(err, &balanceErr))

	require.NoError(t, f.mt.AddToBlockedList(operator, bob))
	var blocked *BlockedAccountError
	_, err = f.mt.CcSendToken(messager, alice, bob, big.NewInt(1))
	require.True(t, errors.As(err, &blocked))
	assert.Equal(t, "19421", f.mt.BalanceOf(alice).String())
}

func TestCcSendMintBudget(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.mt.IncreaseMintBudget(operator, big.NewInt(50000)))
	withMessager(t, f)

	_, err := f.mt.CcSendMintBudget(messager, big.NewInt(0))
	assert.ErrorIs(t, err, ErrZeroAmount)

	_, err = f.mt.CcSendMintBudget(messager, big.NewInt(10000))
	require.NoError(t, err)
	assert.Equal(t, CCSendMintBudget{Amount: big.NewInt(10000)}, f.rec.Last())
	assert.Equal(t, "40000", f.mt.MintBudget().String())

	_, err = f.mt.CcSendMintBudget(messager, big.NewInt(30000))
	require.NoError(t, err)
	assert.Equal(t, "10000", f.mt.MintBudget().String())
	assert.Equal(t, "50000", f.mt.UsedReserve().String())

	var budgetErr *BudgetInsufficientError
	_, err = f.mt.CcSendMintBudget(messager, big.NewInt(10001))
	require.True(t, errors.As(err, &budgetErr))
}

func TestCcReceive(t *testing.T) {
	t.Run("token", func(t *testing.T) {
		f := newSideFixture(t)
		msg := common.Hex2Bytes(word("2") + word("40") + word("60") +
			word(strings.TrimPrefix(strings.ToLower(alice.Hex()), "0x")) +
			word(strings.TrimPrefix(strings.ToLower(bob.Hex()), "0x")) +
			word("123"))

		require.NoError(t, f.mt.CcReceive(messager, msg))
		evs := f.rec.Events()
		require.GreaterOrEqual(t, len(evs), 2)
		assert.Equal(t, Transfer{From: common.Address{}, To: bob, Value: big.NewInt(0x123)}, evs[len(evs)-2])
		assert.Equal(t, CCReceiveToken{Sender: alice, Receiver: bob, Amount: big.NewInt(0x123)}, evs[len(evs)-1])
		assert.Equal(t, "291", f.mt.BalanceOf(bob).String())
		assert.Equal(t, "0", f.mt.MintBudget().String())
	})

	t.Run("mint budget", func(t *testing.T) {
		f := newSideFixture(t)
		msg := common.Hex2Bytes(word("3") + word("40") + word("20") + word("c34f"))

		require.NoError(t, f.mt.CcReceive(messager, msg))
		assert.Equal(t, CCReceiveMintBudget{Amount: big.NewInt(0xc34f)}, f.rec.Last())
		assert.Equal(t, "49999", f.mt.MintBudget().String())
		assert.Equal(t, "0", f.mt.UsedReserve().String())
	})

	t.Run("invalid tag", func(t *testing.T) {
		f := newSideFixture(t)
		msg := common.Hex2Bytes(word("4") + word("40") + word("20") + word("c34f"))
		before := len(f.rec.Events())

		err := f.mt.CcReceive(messager, msg)
		var invalid *codec.InvalidMessageError
		require.True(t, errors.As(err, &invalid))
		assert.Equal(t, "4", invalid.Tag.String())
		assert.Equal(t, "0", f.mt.MintBudget().String())
		assert.Equal(t, "0", f.mt.TotalSupply().String())
		assert.Len(t, f.rec.Events(), before)
	})

	t.Run("blocked receiver", func(t *testing.T) {
		f := newSideFixture(t)
		require.NoError(t, f.mt.AddToBlockedList(operator, bob))
		msg, err := codec.EncodeTokenTransfer(alice, bob, big.NewInt(5))
		require.NoError(t, err)

		var blocked *BlockedAccountError
		require.True(t, errors.As(f.mt.CcReceive(messager, msg), &blocked))
		assert.Equal(t, "0", f.mt.BalanceOf(bob).String())
	})
}
