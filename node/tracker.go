package node

import (
	"time"

	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/dan13ram/mtoken-bridge/token"
	"github.com/ethereum/go-ethereum/common"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MintTracker journals the life cycle of delayed mint requests into the
// mint_requests collection, where the mint executor picks them up.
type MintTracker struct {
	chainID      uint64
	tokenAddress string
	clock        governance.Clock
}

var _ events.Sink = &MintTracker{}

func NewMintTracker(chainID uint64, tokenAddress common.Address, clock governance.Clock) *MintTracker {
	return &MintTracker{chainID: chainID, tokenAddress: tokenAddress.Hex(), clock: clock}
}

func (x *MintTracker) Emit(e events.Event) {
	switch ev := e.(type) {
	case token.MintRequested:
		x.HandleMintRequested(ev)
	case token.Minted:
		x.UpdateStatus(ev.ID, models.MintStatusSuccess, "")
	case token.RequestRevoked:
		x.UpdateStatus(ev.ID, models.MintStatusRevoked, "")
	}
}

func (x *MintTracker) HandleMintRequested(ev token.MintRequested) bool {
	id := token.RequestID(ev.Receiver, ev.Amount, ev.Nonce)
	log.Debug("[MINT TRACKER] Handling mint request: ", id.Hex())

	now := time.Now()
	doc := models.MintRequest{
		ChainID:      x.chainID,
		TokenAddress: x.tokenAddress,
		RequestID:    id.Hex(),
		Receiver:     ev.Receiver.Hex(),
		Amount:       ev.Amount.String(),
		Nonce:        ev.Nonce.String(),
		SubmittedAt:  x.clock.Now(),
		Status:       models.MintStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := app.DB.InsertOne(models.CollectionMintRequests, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			log.Info("[MINT TRACKER] Mint request already exists: ", id.Hex())
			return true
		}
		log.Error("[MINT TRACKER] Error storing mint request: ", err)
		return false
	}

	log.Info("[MINT TRACKER] Stored mint request: ", id.Hex())
	return true
}

func (x *MintTracker) UpdateStatus(id common.Hash, status string, reason string) bool {
	filter := bson.M{
		"chain_id":   x.chainID,
		"request_id": id.Hex(),
	}
	set := bson.M{
		"status":     status,
		"updated_at": time.Now(),
	}
	if reason != "" {
		set["error"] = reason
	}

	err := app.DB.UpdateOne(models.CollectionMintRequests, filter, bson.M{"$set": set})
	if err != nil {
		log.Error("[MINT TRACKER] Error updating mint request ", id.Hex(), ": ", err)
		return false
	}
	log.Debug("[MINT TRACKER] Mint request ", id.Hex(), " is ", status)
	return true
}
