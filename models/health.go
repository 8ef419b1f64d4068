package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CollectionHealthChecks = "healthchecks"
)

// RunnerStatus is the progress a runner reports after each run. Chain
// times are block timestamps in seconds, formatted in base 10.
type RunnerStatus struct {
	MainChainTime string
	SideChainTime string
	Unhealthy     bool
}

type ServiceHealth struct {
	Name          string    `bson:"name" json:"name"`
	LastSyncTime  time.Time `bson:"last_sync_time" json:"last_sync_time"`
	NextSyncTime  time.Time `bson:"next_sync_time" json:"next_sync_time"`
	MainChainTime string    `bson:"main_chain_time" json:"main_chain_time"`
	SideChainTime string    `bson:"side_chain_time" json:"side_chain_time"`
	Healthy       bool      `bson:"healthy" json:"healthy"`
}

type Health struct {
	Id               *primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	NodeID           string              `bson:"node_id" json:"node_id"`
	Hostname         string              `bson:"hostname" json:"hostname"`
	SignerAddress    string              `bson:"signer_address" json:"signer_address"`
	MainChainID      uint64              `bson:"main_chain_id" json:"main_chain_id"`
	SideChainID      uint64              `bson:"side_chain_id" json:"side_chain_id"`
	MainTokenAddress string              `bson:"main_token_address" json:"main_token_address"`
	SideTokenAddress string              `bson:"side_token_address" json:"side_token_address"`
	Healthy          bool                `bson:"healthy" json:"healthy"`
	ServiceHealths   []ServiceHealth     `bson:"service_healths" json:"service_healths"`
	CreatedAt        time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time           `bson:"updated_at" json:"updated_at"`
}
