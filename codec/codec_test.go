package codec

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func word(hex string) string {
	return strings.Repeat("0", 64-len(hex)) + hex
}

func TestEncodeTokenTransfer(t *testing.T) {
	sender := common.HexToAddress("0x9965507d1a55bcc2695c58ba16fb37d819b0a4dc")
	receiver := common.HexToAddress("0x15d34aaf54267db7d7c367839aaf71a00a2c6a65")

	data, err := EncodeTokenTransfer(sender, receiver, big.NewInt(0x123))
	require.NoError(t, err)

	expected := word("2") + word("40") + word("60") +
		word("9965507d1a55bcc2695c58ba16fb37d819b0a4dc") +
		word("15d34aaf54267db7d7c367839aaf71a00a2c6a65") +
		word("123")
	assert.Equal(t, expected, common.Bytes2Hex(data))
	assert.Len(t, data, 192)

	msg, err := Decode(data)
	require.NoError(t, err)
	transfer, ok := msg.(TokenTransfer)
	require.True(t, ok)
	assert.Equal(t, sender, transfer.Sender)
	assert.Equal(t, receiver, transfer.Receiver)
	assert.Equal(t, "291", transfer.Amount.String())
}

func TestEncodeMintBudgetTransfer(t *testing.T) {
	data, err := EncodeMintBudgetTransfer(big.NewInt(49999))
	require.NoError(t, err)

	expected := word("3") + word("40") + word("20") + word("c34f")
	assert.Equal(t, expected, common.Bytes2Hex(data))
	assert.Len(t, data, 128)

	msg, err := Decode(data)
	require.NoError(t, err)
	budget, ok := msg.(MintBudgetTransfer)
	require.True(t, ok)
	assert.Equal(t, "49999", budget.Amount.String())
}

func TestDecodeInvalidTag(t *testing.T) {
	data := common.Hex2Bytes(word("4") + word("40") + word("20") + word("c34f"))

	_, err := Decode(data)
	var invalid *InvalidMessageError
	require.True(t, errors.As(err, &invalid))
	assert.Equal(t, "4", invalid.Tag.String())
}

func TestDecodeMalformed(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "short", data: common.Hex2Bytes("1234")},
		{name: "truncated payload", data: common.Hex2Bytes(word("2") + word("40") + word("60") + word("01"))},
		{name: "short token payload", data: common.Hex2Bytes(word("2") + word("40") + word("20") + word("01"))},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.data)
			assert.ErrorIs(t, err, ErrMalformedMessage)
		})
	}
}
