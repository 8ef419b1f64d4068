package node

import (
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/app/mocks"
	"github.com/dan13ram/mtoken-bridge/messenger"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func newTestRelayer(chains *Chains) *MessageRelayerRunner {
	return &MessageRelayerRunner{
		router: chains.Router,
		clock:  chains.Clock,
	}
}

func sendBudget(t *testing.T, chains *Chains, amount int64) messenger.Routed {
	t.Helper()
	var receipt messenger.Receipt
	require.NoError(t, chains.Main.Do(func() error {
		var err error
		receipt, err = chains.Main.Messenger.SendMintBudgetToChain(operator, sideChainID, sideMsgr, big.NewInt(amount), nil, big.NewInt(1_000_000_000))
		return err
	}))
	msg, ok := chains.Router.Message(receipt.ID)
	require.True(t, ok)
	return msg
}

func expectStored(mockDB *mocks.MockDatabase, msg messenger.Routed, stored models.Message) {
	filter := bson.M{"message_id": msg.ID.Hex()}
	mockDB.EXPECT().UpsertOne(models.CollectionMessages, filter, mock.Anything).Return(nil)
	mockDB.EXPECT().FindOne(models.CollectionMessages, filter, mock.Anything).
		RunAndReturn(func(collection string, filter interface{}, result interface{}) error {
			*result.(*models.Message) = stored
			return nil
		})
}

func TestRelayerStatus(t *testing.T) {
	x := &MessageRelayerRunner{lastRunTime: 100}
	status := x.Status()
	assert.Equal(t, "100", status.MainChainTime)
	assert.Equal(t, "100", status.SideChainTime)
}

func TestRelayerStoreMessage(t *testing.T) {
	chains, _ := newTestChains(t)
	mockDB := mocks.NewMockDatabase(t)
	app.DB = mockDB
	x := newTestRelayer(chains)

	msg := sendBudget(t, chains, 1000)

	mockDB.EXPECT().UpsertOne(models.CollectionMessages, bson.M{"message_id": msg.ID.Hex()}, mock.Anything).
		Run(func(collection string, filter interface{}, update interface{}) {
			insert := update.(bson.M)["$setOnInsert"].(bson.M)
			assert.Equal(t, mainChainID, insert["source_chain"])
			assert.Equal(t, sideChainID, insert["dst_chain"])
			assert.Equal(t, mainMsgr.Hex(), insert["sender"])
			assert.Equal(t, sideMsgr.Hex(), insert["receiver"])
			assert.Equal(t, msg.Fee.String(), insert["fee"])
			assert.Equal(t, models.MessageStatusPending, insert["status"])
		}).Return(nil)

	assert.NoError(t, x.StoreMessage(msg))
}

func TestRelayerHandleMessage(t *testing.T) {
	t.Run("Delivered", func(t *testing.T) {
		chains, _ := newTestChains(t)
		mockDB := mocks.NewMockDatabase(t)
		app.DB = mockDB
		x := newTestRelayer(chains)

		msg := sendBudget(t, chains, 1000)
		expectStored(mockDB, msg, models.Message{Status: models.MessageStatusPending})
		mockDB.EXPECT().XLock(models.CollectionMessages + "/" + msg.ID.Hex()).Return("lockId", nil)
		mockDB.EXPECT().Unlock("lockId").Return(nil)
		mockDB.EXPECT().UpdateOne(models.CollectionMessages, bson.M{"message_id": msg.ID.Hex()}, mock.Anything).
			Run(func(collection string, filter interface{}, update interface{}) {
				set := update.(bson.M)["$set"].(bson.M)
				assert.Equal(t, models.MessageStatusDelivered, set["status"])
				assert.Equal(t, bson.M{"attempts": 1}, update.(bson.M)["$inc"])
			}).Return(nil)

		assert.True(t, x.HandleMessage(msg))
		assert.Equal(t, "1000", chains.Side.Token.MintBudget().String())
		assert.Equal(t, "499000", chains.Main.Token.MintBudget().String())
		assert.True(t, chains.Router.Delivered(msg.ID))
		assert.Empty(t, chains.Router.Pending())
	})

	t.Run("Already handled", func(t *testing.T) {
		chains, _ := newTestChains(t)
		mockDB := mocks.NewMockDatabase(t)
		app.DB = mockDB
		x := newTestRelayer(chains)

		msg := sendBudget(t, chains, 1000)
		expectStored(mockDB, msg, models.Message{Status: models.MessageStatusFailed})

		assert.True(t, x.HandleMessage(msg))
		assert.Equal(t, "0", chains.Side.Token.MintBudget().String())
		assert.Empty(t, chains.Router.Pending())
	})

	t.Run("Delivery error", func(t *testing.T) {
		chains, _ := newTestChains(t)
		mockDB := mocks.NewMockDatabase(t)
		app.DB = mockDB
		x := newTestRelayer(chains)

		msg := sendBudget(t, chains, 1000)
		require.NoError(t, chains.Side.Messenger.SetAllowedPeer(owner, mainChainID, mainMsgr, false))

		expectStored(mockDB, msg, models.Message{Status: models.MessageStatusPending, Attempts: 1})
		mockDB.EXPECT().XLock(mock.Anything).Return("lockId", nil)
		mockDB.EXPECT().Unlock("lockId").Return(nil)
		mockDB.EXPECT().UpdateOne(models.CollectionMessages, mock.Anything, mock.Anything).
			Run(func(collection string, filter interface{}, update interface{}) {
				set := update.(bson.M)["$set"].(bson.M)
				assert.NotContains(t, set, "status")
				assert.NotEmpty(t, set["error"])
			}).Return(nil)

		assert.False(t, x.HandleMessage(msg))
		assert.Equal(t, "0", chains.Side.Token.MintBudget().String())
		assert.False(t, chains.Router.Delivered(msg.ID))
		assert.Len(t, chains.Router.Pending(), 1)
	})

	t.Run("Gives up after max attempts", func(t *testing.T) {
		chains, _ := newTestChains(t)
		mockDB := mocks.NewMockDatabase(t)
		app.DB = mockDB
		x := newTestRelayer(chains)

		msg := sendBudget(t, chains, 1000)
		require.NoError(t, chains.Side.Messenger.SetAllowedPeer(owner, mainChainID, mainMsgr, false))

		expectStored(mockDB, msg, models.Message{Status: models.MessageStatusPending, Attempts: MaxDeliveryAttempts - 1})
		mockDB.EXPECT().XLock(mock.Anything).Return("lockId", nil)
		mockDB.EXPECT().Unlock("lockId").Return(nil)
		mockDB.EXPECT().UpdateOne(models.CollectionMessages, mock.Anything, mock.Anything).
			Run(func(collection string, filter interface{}, update interface{}) {
				set := update.(bson.M)["$set"].(bson.M)
				assert.Equal(t, models.MessageStatusFailed, set["status"])
			}).Return(nil)

		assert.False(t, x.HandleMessage(msg))
		assert.Empty(t, chains.Router.Pending())
		assert.ErrorIs(t, chains.Router.Deliver(msg.ID), messenger.ErrMessageDropped)
	})

	t.Run("Store error", func(t *testing.T) {
		chains, _ := newTestChains(t)
		mockDB := mocks.NewMockDatabase(t)
		app.DB = mockDB
		x := newTestRelayer(chains)

		msg := sendBudget(t, chains, 1000)
		mockDB.EXPECT().UpsertOne(models.CollectionMessages, mock.Anything, mock.Anything).Return(errors.New("error"))

		assert.False(t, x.HandleMessage(msg))
		assert.Len(t, chains.Router.Pending(), 1)
	})

	t.Run("Lock error", func(t *testing.T) {
		chains, _ := newTestChains(t)
		mockDB := mocks.NewMockDatabase(t)
		app.DB = mockDB
		x := newTestRelayer(chains)

		msg := sendBudget(t, chains, 1000)
		expectStored(mockDB, msg, models.Message{Status: models.MessageStatusPending})
		mockDB.EXPECT().XLock(mock.Anything).Return("", errors.New("locked"))

		assert.False(t, x.HandleMessage(msg))
		assert.Len(t, chains.Router.Pending(), 1)
	})
}

func TestRelayerSyncMessages(t *testing.T) {
	chains, clock := newTestChains(t)
	mockDB := mocks.NewMockDatabase(t)
	app.DB = mockDB
	x := newTestRelayer(chains)

	first := sendBudget(t, chains, 1000)
	second := sendBudget(t, chains, 2000)
	now := clock.Advance(10)

	for _, msg := range []messenger.Routed{first, second} {
		expectStored(mockDB, msg, models.Message{Status: models.MessageStatusPending})
	}
	mockDB.EXPECT().XLock(mock.Anything).Return("lockId", nil)
	mockDB.EXPECT().Unlock("lockId").Return(nil)
	mockDB.EXPECT().UpdateOne(models.CollectionMessages, mock.Anything, mock.Anything).Return(nil)

	x.Run()

	assert.Equal(t, "3000", chains.Side.Token.MintBudget().String())
	assert.Empty(t, chains.Router.Pending())
	assert.Equal(t, now, x.lastRunTime)
}

func TestNewMessageRelayer(t *testing.T) {
	chains, _ := newTestChains(t)
	wg := &sync.WaitGroup{}

	app.Config.MessageRelayer.Enabled = false
	_, ok := NewMessageRelayer(chains, wg, models.ServiceHealth{}).(*app.EmptyService)
	assert.True(t, ok)

	app.Config.MessageRelayer.Enabled = true
	app.Config.MessageRelayer.IntervalMillis = 1000
	runner, ok := NewMessageRelayer(chains, wg, models.ServiceHealth{MainChainTime: "42"}).(*app.RunnerService)
	require.True(t, ok)
	runner.UpdateHealth()
	assert.Equal(t, MessageRelayerName, runner.Health().Name)
	assert.Equal(t, "42", runner.Health().MainChainTime)

	app.Config.MessageRelayer = models.ServiceConfig{}
}
