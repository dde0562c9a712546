package journal

import (
	"os"
	"strconv"
)

// envDisabledEvents is the environment variable through which disabled
// journal events can be customized.
const envDisabledEvents = "CANLINK_JOURNAL_DISABLED_EVENTS"

var (
	EnvMaxBackups = envIntParser("CANLINK_JOURNAL_MAX_BACKUPS", 3)
	EnvMaxSize    = envIntParser("CANLINK_JOURNAL_MAX_SIZE", 64<<20)
)

func EnvDisabledEvents() DisabledEvents {
	if env, ok := os.LookupEnv(envDisabledEvents); ok {
		if ret, err := ParseDisabledEvents(env); err == nil {
			return ret
		}
		log.Warnf("ignoring unparsable %s", envDisabledEvents)
	}
	return DefaultDisabledEvents
}

func envIntParser(env string, withDefault int64) int64 {
	e, ok := os.LookupEnv(env)
	if !ok {
		return withDefault
	}
	i, err := strconv.ParseInt(e, 10, 64)
	if err != nil {
		return withDefault
	}
	return i
}
