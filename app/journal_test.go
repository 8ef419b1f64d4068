package app

import (
	"errors"
	"math/big"
	"testing"

	"github.com/dan13ram/mtoken-bridge/app/mocks"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type journalEvent struct {
	Account common.Address
	Amount  *big.Int
}

func (journalEvent) EventName() string { return "JournalEvent" }

func TestEventJournal(t *testing.T) {
	t.Run("Stores Event", func(t *testing.T) {
		mockDB := mocks.NewMockDatabase(t)
		DB = mockDB

		j := NewEventJournal(56, "token")
		amount, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)

		call := mockDB.EXPECT().InsertOne(models.CollectionEvents, mock.Anything)
		call.Run(func(_ string, data interface{}) {
			doc := data.(models.Event)
			assert.Equal(t, uint64(56), doc.ChainID)
			assert.Equal(t, "token", doc.Source)
			assert.Equal(t, "JournalEvent", doc.Name)
			assert.JSONEq(t, `{"Account":"0x00000000000000000000000000000000000000aa","Amount":115792089237316195423570985008687907853269984665640564039457584007913129639935}`, doc.Data)
		})
		call.Return(nil)

		j.Emit(journalEvent{Account: common.HexToAddress("0xaa"), Amount: amount})
	})

	t.Run("Write Error Is Swallowed", func(t *testing.T) {
		mockDB := mocks.NewMockDatabase(t)
		DB = mockDB

		mockDB.EXPECT().InsertOne(models.CollectionEvents, mock.Anything).Return(errors.New("error"))

		assert.NotPanics(t, func() {
			NewEventJournal(1, "pack").Emit(journalEvent{Amount: big.NewInt(1)})
		})
	})
}
