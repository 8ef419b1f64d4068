package node

import (
	"github.com/dan13ram/mtoken-bridge/app"
	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/governance"
	"github.com/dan13ram/mtoken-bridge/models"
	"github.com/ethereum/go-ethereum/common"
)

// JournalSinks journals every event in the database. Token events also
// feed the mint tracker of their chain.
func JournalSinks(cfg models.Config, clock governance.Clock) SinkFactory {
	tokens := map[uint64]common.Address{
		cfg.MainChain.ChainID: common.HexToAddress(cfg.MainChain.TokenAddress),
		cfg.SideChain.ChainID: common.HexToAddress(cfg.SideChain.TokenAddress),
	}
	return func(chainID uint64, source string) events.Sink {
		journal := app.NewEventJournal(chainID, source)
		if source != "token" {
			return journal
		}
		return events.Multi{journal, NewMintTracker(chainID, tokens[chainID], clock)}
	}
}
