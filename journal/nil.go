package journal

type nilJournal struct{}

// nilj is a singleton nil journal.
var nilj Journal = &nilJournal{}

// NilJournal discards everything. Event types it hands out are disabled.
func NilJournal() Journal {
	return nilj
}

func (n *nilJournal) RegisterEventType(system, event string) EventType {
	return EventType{System: system, Event: event}
}

func (n *nilJournal) RecordEvent(_ EventType, _ func() interface{}) {}

func (n *nilJournal) Close() error { return nil }
