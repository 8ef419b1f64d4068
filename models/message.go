package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionMessages = "messages"
)

// types of message status
const (
	MessageStatusPending   = "pending"
	MessageStatusDelivered = "delivered"
	MessageStatusFailed    = "failed"
)

type Message struct {
	Id          *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	MessageID   string              `bson:"message_id" json:"message_id"`
	SourceChain uint64              `bson:"source_chain" json:"source_chain"`
	DstChain    uint64              `bson:"dst_chain" json:"dst_chain"`
	Sender      string              `bson:"sender" json:"sender"`
	Receiver    string              `bson:"receiver" json:"receiver"`
	Data        string              `bson:"data" json:"data"`
	Fee         string              `bson:"fee" json:"fee"`
	Status      string              `bson:"status" json:"status"`
	Attempts    int64               `bson:"attempts" json:"attempts"`
	Error       string              `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
