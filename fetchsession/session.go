package fetchsession

import (
	"math"
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/google/uuid"
)

const (
	// InitialEpoch is sent by a client to open a new session.
	InitialEpoch = int32(0)
	// FinalEpoch is the terminal sentinel: it closes the session after this request.
	FinalEpoch = int32(-1)
	// InvalidSessionID means the request is not part of a session.
	InvalidSessionID = int32(0)
)

// NextEpoch returns the epoch the client must send on its next request, wrapping around the
// sentinel values.
func NextEpoch(prev int32) int32 {
	if prev < 0 {
		return InitialEpoch
	}
	if prev == math.MaxInt32 {
		return 1
	}
	return prev + 1
}

// PartitionKey identifies a partition within a session. The handler resolves both the topic
// name and the topic id before touching the session, so a topic addressed by name on one
// protocol version and by id on another maps to the same entry.
type PartitionKey struct {
	Topic     string
	TopicId   uuid.UUID
	Partition int32
}

// RequestPartition is the per-partition fetch state a request establishes or updates.
type RequestPartition struct {
	MaxBytes         int32
	FetchOffset      int64
	LeaderEpoch      int32
	LastFetchedEpoch int32
	LogStartOffset   int64
}

// PartitionResponse is the subset of a fetch partition response the session caches to decide
// whether the partition changed since the last response.
type PartitionResponse struct {
	ErrorCode            int16
	HighWatermark        int64
	LogStartOffset       int64
	RecordsSize          int
	DivergingEpoch       bool
	PreferredReadReplica bool
}

type cachedPartition struct {
	req RequestPartition

	// last response state, valid once responded is true
	responded      bool
	errorCode      int16
	highWatermark  int64
	logStartOffset int64
}

// mustRespond reports whether the partition's fetchable state changed since the previous
// response, updating the cached state when it did. Partitions carrying records always respond
// and are never treated as cached.
func (c *cachedPartition) mustRespond(resp PartitionResponse) bool {
	mustRespond := false
	if resp.RecordsSize > 0 || resp.DivergingEpoch || resp.PreferredReadReplica {
		// Record data and attached markers are never considered cached
		mustRespond = true
	}
	if !c.responded ||
		resp.ErrorCode != c.errorCode ||
		resp.HighWatermark != c.highWatermark ||
		resp.LogStartOffset != c.logStartOffset {
		mustRespond = true
	}
	c.responded = true
	c.errorCode = resp.ErrorCode
	c.highWatermark = resp.HighWatermark
	c.logStartOffset = resp.LogStartOffset
	return mustRespond
}

// Session is the state of one incremental fetch session. All access goes through the session
// lock: at most one diff computation is in flight per session at any moment.
type Session struct {
	mu         sync.Mutex
	id         int32
	epoch      int32
	follower   bool
	partitions *linkedhashmap.Map // PartitionKey -> *cachedPartition, in insertion order
	created    time.Time
	lastUsed   time.Time
	closed     bool
	// pending is set while a request holds an uncommitted diff against this session
	pending bool
}

func newSession(id int32, follower bool, now time.Time) *Session {
	return &Session{
		id:         id,
		epoch:      InitialEpoch,
		follower:   follower,
		partitions: linkedhashmap.New(),
		created:    now,
		lastUsed:   now,
	}
}

func (s *Session) ID() int32 {
	return s.id
}

func (s *Session) IsFollower() bool {
	return s.follower
}

// update applies the request's partition additions/updates and removals to the session's
// partition cache. Caller holds the session lock.
func (s *Session) update(added []PartitionKey, updated map[PartitionKey]RequestPartition, removed []PartitionKey) {
	for _, key := range added {
		req := updated[key]
		s.partitions.Put(key, &cachedPartition{req: req})
	}
	for key, req := range updated {
		if v, ok := s.partitions.Get(key); ok {
			v.(*cachedPartition).req = req
		}
	}
	for _, key := range removed {
		s.partitions.Remove(key)
	}
}

// partitionKeys returns the session's partitions in insertion order. Caller holds the session
// lock.
func (s *Session) partitionKeys() []PartitionKey {
	keys := make([]PartitionKey, 0, s.partitions.Size())
	s.partitions.Each(func(key interface{}, _ interface{}) {
		keys = append(keys, key.(PartitionKey))
	})
	return keys
}

func (s *Session) touch(now time.Time) {
	s.lastUsed = now
}
