package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionMintRequests = "mint_requests"
)

// types of mint request status
const (
	MintStatusPending = "pending"
	MintStatusSuccess = "success"
	MintStatusFailed  = "failed"
	MintStatusRevoked = "revoked"
)

// MintRequest tracks one delayed mint from submission to execution. Amounts
// are base-10 strings; request_id is unique per chain.
type MintRequest struct {
	Id           *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	ChainID      uint64              `bson:"chain_id" json:"chain_id"`
	TokenAddress string              `bson:"token_address" json:"token_address"`
	RequestID    string              `bson:"request_id" json:"request_id"`
	Receiver     string              `bson:"receiver" json:"receiver"`
	Amount       string              `bson:"amount" json:"amount"`
	Nonce        string              `bson:"nonce" json:"nonce"`
	SubmittedAt  uint64              `bson:"submitted_at" json:"submitted_at"`
	Status       string              `bson:"status" json:"status"`
	Error        string              `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt    time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time           `bson:"updated_at" json:"updated_at"`
}
