package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fundedFixture(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	require.NoError(t, f.mt.IncreaseMintBudget(operator, big.NewInt(50000)))
	f.mint(t, alice, 20000, 0)
	return f
}

func TestTransfer(t *testing.T) {
	f := fundedFixture(t)

	require.NoError(t, f.mt.AddToBlockedList(operator, alice))
	var blocked *BlockedAccountError
	require.True(t, errors.As(f.mt.Transfer(alice, bob, big.NewInt(123)), &blocked))
	assert.Equal(t, alice, blocked.Account)
	require.NoError(t, f.mt.RemoveFromBlockedList(operator, alice))

	require.NoError(t, f.mt.AddToBlockedList(operator, bob))
	require.True(t, errors.As(f.mt.Transfer(alice, bob, big.NewInt(123)), &blocked))
	assert.Equal(t, bob, blocked.Account)
	require.NoError(t, f.mt.RemoveFromBlockedList(operator, bob))

	assert.ErrorIs(t, f.mt.Transfer(alice, tokenAddr, big.NewInt(123)), ErrTransferToContract)
	assert.ErrorIs(t, f.mt.Transfer(alice, common.Address{}, big.NewInt(123)), governance.ErrZeroAddress)
	assert.ErrorIs(t, f.mt.Transfer(alice, bob, big.NewInt(-1)), ErrInvalidAmount)

	var balanceErr *InsufficientBalanceError
	require.True(t, errors.As(f.mt.Transfer(alice, bob, big.NewInt(20001)), &balanceErr))

	require.NoError(t, f.mt.Transfer(alice, bob, big.NewInt(1234)))
	assert.Equal(t, Transfer{From: alice, To: bob, Value: big.NewInt(1234)}, f.rec.Last())
	assert.Equal(t, "18766", f.mt.BalanceOf(alice).String())
	assert.Equal(t, "1234", f.mt.BalanceOf(bob).String())
}

func TestTransferFrom(t *testing.T) {
	f := fundedFixture(t)
	require.NoError(t, f.mt.Approve(alice, bob, big.NewInt(2000)))
	assert.Equal(t, "2000", f.mt.Allowance(alice, bob).String())

	require.NoError(t, f.mt.AddToBlockedList(operator, alice))
	var blocked *BlockedAccountError
	require.True(t, errors.As(f.mt.TransferFrom(bob, alice, owner, big.NewInt(123)), &blocked))
	assert.Equal(t, alice, blocked.Account)
	require.NoError(t, f.mt.RemoveFromBlockedList(operator, alice))

	require.NoError(t, f.mt.AddToBlockedList(operator, bob))
	require.True(t, errors.As(f.mt.TransferFrom(bob, alice, owner, big.NewInt(123)), &blocked))
	assert.Equal(t, bob, blocked.Account)
	require.NoError(t, f.mt.RemoveFromBlockedList(operator, bob))

	assert.ErrorIs(t, f.mt.TransferFrom(bob, alice, tokenAddr, big.NewInt(123)), ErrTransferToContract)

	var allowanceErr *InsufficientAllowanceError
	require.True(t, errors.As(f.mt.TransferFrom(bob, alice, owner, big.NewInt(2001)), &allowanceErr))
	assert.Equal(t, "2000", allowanceErr.Allowance.String())

	require.NoError(t, f.mt.TransferFrom(bob, alice, owner, big.NewInt(1234)))
	assert.Equal(t, Transfer{From: alice, To: owner, Value: big.NewInt(1234)}, f.rec.Last())
	assert.Equal(t, "766", f.mt.Allowance(alice, bob).String())
	assert.Equal(t, "1234", f.mt.BalanceOf(owner).String())
}

func TestMultiTransfer(t *testing.T) {
	f := fundedFixture(t)
	a1 := common.HexToAddress("0x00000000000000000000000000000000000000e1")
	a2 := common.HexToAddress("0x00000000000000000000000000000000000000e2")
	a3 := common.HexToAddress("0x00000000000000000000000000000000000000e3")

	err := f.mt.MultiTransfer(alice, []common.Address{a1, a2, a3}, []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3), big.NewInt(4)})
	assert.ErrorIs(t, err, ErrArgsMismatch)

	t.Run("atomic on blocked recipient", func(t *testing.T) {
		require.NoError(t, f.mt.AddToBlockedList(operator, a3))
		err := f.mt.MultiTransfer(alice, []common.Address{a1, a2, a3}, []*big.Int{big.NewInt(123), big.NewInt(234), big.NewInt(345)})
		var blocked *BlockedAccountError
		require.True(t, errors.As(err, &blocked))
		assert.Equal(t, "0", f.mt.BalanceOf(a1).String())
		assert.Equal(t, "20000", f.mt.BalanceOf(alice).String())
		require.NoError(t, f.mt.RemoveFromBlockedList(operator, a3))
	})

	t.Run("atomic on insufficient total", func(t *testing.T) {
		err := f.mt.MultiTransfer(alice, []common.Address{a1, a2}, []*big.Int{big.NewInt(10000), big.NewInt(10001)})
		var balanceErr *InsufficientBalanceError
		require.True(t, errors.As(err, &balanceErr))
		assert.Equal(t, "20001", balanceErr.Needed.String())
		assert.Equal(t, "0", f.mt.BalanceOf(a1).String())
	})

	require.NoError(t, f.mt.MultiTransfer(alice, []common.Address{a1, a2, a3}, []*big.Int{big.NewInt(123), big.NewInt(234), big.NewInt(345)}))
	assert.Equal(t, "19298", f.mt.BalanceOf(alice).String())
	assert.Equal(t, "123", f.mt.BalanceOf(a1).String())
	assert.Equal(t, "234", f.mt.BalanceOf(a2).String())
	assert.Equal(t, "345", f.mt.BalanceOf(a3).String())
}

func TestPackUnpack(t *testing.T) {
	f := fundedFixture(t)
	require.NoError(t, f.mt.SetNFTContract(owner, nftAddr))

	require.NoError(t, f.mt.Pack(nftAddr, alice, big.NewInt(12345)))
	assert.Equal(t, Transfer{From: alice, To: nftAddr, Value: big.NewInt(12345)}, f.rec.Last())

	require.NoError(t, f.mt.Unpack(nftAddr, alice, big.NewInt(11223)))
	assert.Equal(t, Transfer{From: nftAddr, To: alice, Value: big.NewInt(11223)}, f.rec.Last())
	assert.Equal(t, "18878", f.mt.BalanceOf(alice).String())
	assert.Equal(t, "1122", f.mt.BalanceOf(nftAddr).String())

	require.NoError(t, f.mt.AddToBlockedList(operator, alice))
	var blocked *BlockedAccountError
	require.True(t, errors.As(f.mt.Pack(nftAddr, alice, big.NewInt(1)), &blocked))
	require.True(t, errors.As(f.mt.Unpack(nftAddr, alice, big.NewInt(1)), &blocked))
}

func TestRedeemFrom(t *testing.T) {
	f := fundedFixture(t)
	require.NoError(t, f.mt.SetNFTContract(owner, nftAddr))

	require.NoError(t, f.mt.RedeemFrom(nftAddr, alice, big.NewInt(5000), bob, []byte{0xda, 0x7a}))
	assert.Equal(t, "15000", f.mt.BalanceOf(alice).String())
	assert.Equal(t, "35000", f.mt.MintBudget().String())
	assert.Equal(t, Redeem{To: bob, Amount: big.NewInt(5000), Memo: []byte{0xda, 0x7a}}, f.rec.Last())
}
