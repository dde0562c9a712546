package journal

import (
	"sync"

	"github.com/canlink-project/canlink/build"
)

// MemJournal keeps events in memory. The devnet uses it when no journal
// path is configured, and tests use it to observe recorded events.
type MemJournal struct {
	EventTypeRegistry

	lk     sync.Mutex
	events []Event
	limit  int
}

var _ Journal = (*MemJournal)(nil)

// NewMemJournal keeps at most limit events, dropping the oldest. A limit of
// zero keeps everything.
func NewMemJournal(disabled DisabledEvents, limit int) *MemJournal {
	return &MemJournal{
		EventTypeRegistry: NewEventTypeRegistry(disabled),
		limit:             limit,
	}
}

func (m *MemJournal) RecordEvent(evtType EventType, supplier func() interface{}) {
	defer func() {
		if r := recover(); r != nil {
			log.Warnf("recovered from panic while recording journal event; type=%s, err=%v", evtType, r)
		}
	}()

	if !evtType.Enabled() {
		return
	}

	evt := Event{
		EventType: evtType,
		Timestamp: build.Clock.Now(),
		Data:      supplier(),
	}

	m.lk.Lock()
	defer m.lk.Unlock()
	m.events = append(m.events, evt)
	if m.limit > 0 && len(m.events) > m.limit {
		m.events = append(m.events[:0:0], m.events[len(m.events)-m.limit:]...)
	}
}

// Events returns a copy of the recorded events, oldest first.
func (m *MemJournal) Events() []Event {
	m.lk.Lock()
	defer m.lk.Unlock()
	return append([]Event(nil), m.events...)
}

func (m *MemJournal) Close() error { return nil }
