package journal

// MaybeRecordEvent records through j, which may be nil.
func MaybeRecordEvent(j Journal, evtType EventType, supplier func() interface{}) {
	if j == nil || j == nilj {
		return
	}
	j.RecordEvent(evtType, supplier)
}
