package journal

import (
	"strings"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"
)

var log = logging.Logger("journal")

// DefaultDisabledEvents is used when the environment does not override the
// set. Per-call query records are too noisy to keep by default.
var DefaultDisabledEvents = DisabledEvents{
	EventType{System: "replica", Event: "query"},
}

type DisabledEvents []EventType

// ParseDisabledEvents parses "system:event[,system:event...]". Surrounding
// whitespace is ignored.
func ParseDisabledEvents(s string) (DisabledEvents, error) {
	s = strings.TrimSpace(s)
	ret := DisabledEvents{}
	if s == "" {
		return ret, nil
	}
	for _, evt := range strings.Split(s, ",") {
		parts := strings.Split(strings.TrimSpace(evt), ":")
		if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
			return nil, xerrors.Errorf("invalid event type: %q", evt)
		}
		ret = append(ret, EventType{System: parts[0], Event: parts[1]})
	}
	return ret, nil
}

// EventType names a kind of journal entry. Only values returned by
// RegisterEventType can be enabled.
type EventType struct {
	System string
	Event  string

	enabled bool
	safe    bool
}

func (et EventType) String() string {
	return et.System + ":" + et.Event
}

// Enabled reports whether entries of this type are recorded. Check it before
// building an expensive payload.
func (et EventType) Enabled() bool {
	return et.safe && et.enabled
}

type EventTypeRegistry interface {
	RegisterEventType(system, event string) EventType
}

// Journal is an audit trail of connection changes and state-changing calls.
// Payloads must be JSON serializable.
type Journal interface {
	EventTypeRegistry

	// RecordEvent calls supplier and records its result if evtType is
	// enabled. Panics in supplier are recovered.
	RecordEvent(evtType EventType, supplier func() interface{})

	Close() error
}

type Event struct {
	EventType

	Timestamp time.Time
	Data      interface{}
}
