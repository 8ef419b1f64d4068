package node

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/messenger"
	"github.com/dan13ram/mtoken-bridge/metrics"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/ethereum/go-ethereum/common/hexutil"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
)

const (
	MessageRelayerName = "message relayer"

	MaxDeliveryAttempts int64 = 5
)

// Router is the part of the in-process transport the relayer drives.
type Router interface {
	Pending() []messenger.Routed
	Deliver(id messenger.MessageID) error
	Drop(id messenger.MessageID) error
}

// MessageRelayerRunner persists every queued cross-chain message and
// delivers it to the destination messenger.
type MessageRelayerRunner struct {
	router Router
	clock  governance.Clock

	lastRunTime uint64
}

func (x *MessageRelayerRunner) Run() {
	x.SyncMessages()
}

func (x *MessageRelayerRunner) Status() models.RunnerStatus {
	return models.RunnerStatus{
		MainChainTime: strconv.FormatUint(x.lastRunTime, 10),
		SideChainTime: strconv.FormatUint(x.lastRunTime, 10),
	}
}

func messageFilter(id messenger.MessageID) bson.M {
	return bson.M{"message_id": id.Hex()}
}

// StoreMessage records msg as pending unless it is already known.
func (x *MessageRelayerRunner) StoreMessage(msg messenger.Routed) error {
	now := time.Now()
	update := bson.M{
		"$setOnInsert": bson.M{
			"message_id":   msg.ID.Hex(),
			"source_chain": msg.SourceChain,
			"dst_chain":    msg.DstChain,
			"sender":       msg.Sender.Hex(),
			"receiver":     msg.Envelope.Receiver.Hex(),
			"data":         hexutil.Encode(msg.Envelope.Data),
			"fee":          msg.Fee.String(),
			"status":       models.MessageStatusPending,
			"attempts":     int64(0),
			"created_at":   now,
			"updated_at":   now,
		},
	}
	return app.DB.UpsertOne(models.CollectionMessages, messageFilter(msg.ID), update)
}

func (x *MessageRelayerRunner) UpdateMessage(id messenger.MessageID, set bson.M, inc bson.M) bool {
	set["updated_at"] = time.Now()
	update := bson.M{"$set": set}
	if inc != nil {
		update["$inc"] = inc
	}
	err := app.DB.UpdateOne(models.CollectionMessages, messageFilter(id), update)
	if err != nil {
		log.Error("[MESSAGE RELAYER] Error updating message ", id.Hex(), ": ", err)
		return false
	}
	return true
}

func (x *MessageRelayerRunner) HandleMessage(msg messenger.Routed) bool {
	log.Debug("[MESSAGE RELAYER] Handling message: ", msg.ID.Hex())

	if err := x.StoreMessage(msg); err != nil {
		log.Error("[MESSAGE RELAYER] Error storing message: ", err)
		return false
	}

	var doc models.Message
	if err := app.DB.FindOne(models.CollectionMessages, messageFilter(msg.ID), &doc); err != nil {
		log.Error("[MESSAGE RELAYER] Error fetching message: ", err)
		return false
	}
	if doc.Status != models.MessageStatusPending {
		log.Debug("[MESSAGE RELAYER] Message ", msg.ID.Hex(), " is ", doc.Status)
		if doc.Status == models.MessageStatusFailed {
			x.dropMessage(msg.ID)
		}
		return true
	}

	resourceId := models.CollectionMessages + "/" + msg.ID.Hex()
	lockId, err := app.DB.XLock(resourceId)
	if err != nil {
		log.Error("[MESSAGE RELAYER] Error locking message: ", err)
		return false
	}
	defer func() {
		if err := app.DB.Unlock(lockId); err != nil {
			log.Error("[MESSAGE RELAYER] Error unlocking message: ", err)
		}
	}()

	dstChain := strconv.FormatUint(msg.DstChain, 10)
	err = x.router.Deliver(msg.ID)
	if err == nil || errors.Is(err, messenger.ErrAlreadyDelivered) {
		log.Info("[MESSAGE RELAYER] Delivered message ", msg.ID.Hex(), " to chain ", msg.DstChain)
		metrics.RecordMessage(dstChain, "delivered")
		return x.UpdateMessage(msg.ID, bson.M{"status": models.MessageStatusDelivered}, bson.M{"attempts": 1})
	}

	log.Error("[MESSAGE RELAYER] Error delivering message ", msg.ID.Hex(), ": ", err)
	set := bson.M{"error": err.Error()}
	outcome := "retry"
	giveUp := errors.Is(err, messenger.ErrUnknownMessage) ||
		errors.Is(err, messenger.ErrMessageDropped) ||
		doc.Attempts+1 >= MaxDeliveryAttempts
	if giveUp {
		log.Warn("[MESSAGE RELAYER] Giving up on message ", msg.ID.Hex())
		set["status"] = models.MessageStatusFailed
		outcome = "failed"
	}
	metrics.RecordMessage(dstChain, outcome)
	if x.UpdateMessage(msg.ID, set, bson.M{"attempts": 1}) && giveUp {
		x.dropMessage(msg.ID)
	}
	return false
}

func (x *MessageRelayerRunner) dropMessage(id messenger.MessageID) {
	if err := x.router.Drop(id); err != nil && !errors.Is(err, messenger.ErrUnknownMessage) {
		log.Error("[MESSAGE RELAYER] Error dropping message ", id.Hex(), ": ", err)
	}
}

func (x *MessageRelayerRunner) SyncMessages() bool {
	pending := x.router.Pending()
	log.Info("[MESSAGE RELAYER] Found ", len(pending), " pending messages")

	success := true
	for _, msg := range pending {
		success = x.HandleMessage(msg) && success
	}

	x.lastRunTime = x.clock.Now()
	return success
}

func NewMessageRelayer(chains *Chains, wg *sync.WaitGroup, lastHealth models.ServiceHealth) app.Service {
	if !app.Config.MessageRelayer.Enabled {
		log.Debug("[MESSAGE RELAYER] Message relayer disabled")
		return app.NewEmptyService(wg)
	}

	log.Debug("[MESSAGE RELAYER] Initializing message relayer")

	x := &MessageRelayerRunner{
		router: chains.Router,
		clock:  chains.Clock,
	}

	if lastRunTime, err := strconv.ParseUint(lastHealth.MainChainTime, 10, 64); err == nil {
		x.lastRunTime = lastRunTime
	}

	log.Info("[MESSAGE RELAYER] Initialized message relayer")

	return app.NewRunnerService(MessageRelayerName, x, wg, time.Duration(app.Config.MessageRelayer.IntervalMillis)*time.Millisecond)
}
