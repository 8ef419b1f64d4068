package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionEvents = "events"
)

// Event is a journaled engine event. Data holds the event fields as JSON so
// that u256 values survive without loss.
type Event struct {
	Id        *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ChainID   uint64              `bson:"chain_id" json:"chain_id"`
	Source    string              `bson:"source" json:"source"`
	Name      string              `bson:"name" json:"name"`
	Data      string              `bson:"data" json:"data"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}
