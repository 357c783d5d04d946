package domain

// derivedIndexStride separates derived log indices from primary event
// indices. A base event at index N owns the derived index range
// [N*100+1, N*100+99]; sub index 0 is the base event itself.
//
// This is a stable collision-avoidance contract: re-processing the same base
// event always reproduces identical derived indices, which is what makes
// append-only log writes idempotent under redelivery.
const derivedIndexStride = 100

// MaxLogSubIndex is the largest sub index a derived entry may carry.
const MaxLogSubIndex = derivedIndexStride - 1

// LogIndex identifies a log entry within its block: the index of the raw
// event it was derived from, plus a sub index distinguishing the entries
// synthesized from that one event.
type LogIndex struct {
	Base uint32
	Sub  uint32
}

// PrimaryLogIndex is the index of an entry recorded directly for a raw
// event rather than derived from one.
func PrimaryLogIndex(eventIndex uint32) LogIndex {
	return LogIndex{Base: eventIndex}
}

// DerivedLogIndex builds the index for the sub'th entry derived from the
// event at base. Sub must stay below MaxLogSubIndex; values beyond it would
// collide with the next event's range.
func DerivedLogIndex(base uint32, sub uint32) LogIndex {
	return LogIndex{Base: base, Sub: sub}
}

// Value flattens the composite index into the single integer persisted in
// the event_index column.
func (i LogIndex) Value() int64 {
	return int64(i.Base)*derivedIndexStride + int64(i.Sub)
}
