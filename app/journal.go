package app

import (
	"encoding/json"
	"time"

	"github.com/dan13ram/mtoken-bridge/events"
	"github.com/dan13ram/mtoken-bridge/models"
	log "github.com/sirupsen/logrus"
)

// EventJournal is an event sink that stores every event in the events
// collection. A failed write is logged and does not affect the engine.
type EventJournal struct {
	chainID uint64
	source  string
}

var _ events.Sink = &EventJournal{}

func NewEventJournal(chainID uint64, source string) *EventJournal {
	return &EventJournal{chainID: chainID, source: source}
}

func (j *EventJournal) Emit(e events.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		log.Error("[JOURNAL] Error encoding event ", e.EventName(), ": ", err)
		return
	}

	doc := models.Event{
		ChainID:   j.chainID,
		Source:    j.source,
		Name:      e.EventName(),
		Data:      string(data),
		CreatedAt: time.Now(),
	}

	if err := DB.InsertOne(models.CollectionEvents, doc); err != nil {
		log.Error("[JOURNAL] Error storing event ", e.EventName(), ": ", err)
		return
	}
	log.Debugf("[JOURNAL] %s on chain %d from %s", doc.Name, j.chainID, j.source)
}
