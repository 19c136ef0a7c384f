package fetchsession

import (
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
)

type Conf struct {
	MaxSessions    int           `help:"Maximum number of incremental fetch sessions tracked" default:"1000"`
	IdleTimeout    time.Duration `help:"Idle time after which a fetch session is released" default:"2m"`
	ExpiryInterval time.Duration `help:"Interval between idle session sweeps" default:"30s"`
}

func NewConf() Conf {
	return Conf{
		MaxSessions:    1000,
		IdleTimeout:    2 * time.Minute,
		ExpiryInterval: 30 * time.Second,
	}
}

func (c *Conf) Validate() error {
	if c.MaxSessions < 1 {
		return common.NewBrokerErrorf(common.InvalidConfiguration, "invalid max-sessions %d", c.MaxSessions)
	}
	return nil
}

// PartitionEntry is one partition named in a fetch request, in request order.
type PartitionEntry struct {
	Key  PartitionKey
	Data RequestPartition
}

// PartitionResult pairs a partition with the response state the backend produced for it.
type PartitionResult struct {
	Key  PartitionKey
	Resp PartitionResponse
}

// ResponseDisposition tells the handler how to shape the final response: the session id to
// stamp on it, the partitions to include (nil means all), and a session-level error code.
type ResponseDisposition struct {
	ErrorCode int16
	SessionID int32
	// Include is the set of partitions whose results go into the response. nil includes every
	// result.
	Include map[PartitionKey]bool
}

// Context is the per-request view of the session state machine, computed from the request's
// session id and epoch.
type Context interface {
	// Partitions enumerates every partition this request covers, in order.
	Partitions() []PartitionEntry

	// SessionError returns a non-zero error code when the request named an unknown session or
	// an unexpected epoch. No other Context method may be used in that case.
	SessionError() int16

	// IsFollower reports whether the context belongs to a follower (replica) session.
	IsFollower() bool

	// UpdateAndGenerateResponseData folds the backend results into the session (if any) and
	// returns the response disposition. It must be called exactly once per request, after all
	// results arrived.
	UpdateAndGenerateResponseData(results []PartitionResult) ResponseDisposition

	// Discard releases the request's hold on the session without applying its diff, used when
	// the request is answered without data. Exactly one of Discard and
	// UpdateAndGenerateResponseData is called per request.
	Discard()
}

// Registry owns all incremental fetch sessions on this broker. Sessions are created on an
// initial-epoch request, diffed on each follow-up, and released on the terminal epoch, idle
// expiry or LRU eviction when the cap is hit.
type Registry struct {
	lock        sync.Mutex
	cfg         Conf
	sessions    *lru.Cache // int32 session id -> *Session
	expiryTimer *common.TimerHandle
	stopped     bool
}

func NewRegistry(cfg Conf) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Registry{cfg: cfg}
	cache, err := lru.NewWithEvict(cfg.MaxSessions, func(key interface{}, value interface{}) {
		sess := value.(*Session)
		sess.mu.Lock()
		sess.closed = true
		sess.mu.Unlock()
		log.Debugf("evicted fetch session %d", key.(int32))
	})
	if err != nil {
		return nil, err
	}
	r.sessions = cache
	r.scheduleExpiry()
	return r, nil
}

func (r *Registry) Stop() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.stopped = true
	if r.expiryTimer != nil {
		r.expiryTimer.Stop()
	}
}

func (r *Registry) scheduleExpiry() {
	r.expiryTimer = common.ScheduleTimer(r.cfg.ExpiryInterval, false, func() {
		r.expireIdleSessions(time.Now())
		r.lock.Lock()
		defer r.lock.Unlock()
		if !r.stopped {
			r.scheduleExpiry()
		}
	})
}

func (r *Registry) expireIdleSessions(now time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, key := range r.sessions.Keys() {
		v, ok := r.sessions.Peek(key)
		if !ok {
			continue
		}
		sess := v.(*Session)
		sess.mu.Lock()
		idle := now.Sub(sess.lastUsed) >= r.cfg.IdleTimeout
		sess.mu.Unlock()
		if idle {
			log.Debugf("expiring idle fetch session %d", key.(int32))
			r.sessions.Remove(key)
		}
	}
}

// NumSessions returns the number of live sessions, for tests and metrics.
func (r *Registry) NumSessions() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.sessions.Len()
}

// NewContext computes the session context for a request carrying the given session id and
// epoch, with the request's partition entries (in order) and the partitions it asks to forget.
func (r *Registry) NewContext(sessionID int32, epoch int32, follower bool,
	fetchData []PartitionEntry, toForget []PartitionKey) Context {
	if epoch == FinalEpoch {
		return r.finalContext(sessionID, follower, fetchData)
	}
	if epoch == InitialEpoch {
		if sessionID != InvalidSessionID {
			// A new-session request naming an old session releases it first
			r.releaseSession(sessionID)
		}
		return &fullContext{registry: r, follower: follower, fetchData: fetchData}
	}
	return r.incrementalContext(sessionID, epoch, follower, fetchData, toForget)
}

func (r *Registry) finalContext(sessionID int32, follower bool, fetchData []PartitionEntry) Context {
	if sessionID != InvalidSessionID {
		if !r.releaseSession(sessionID) {
			return &errorContext{errorCode: kafkaprotocol.ErrorCodeFetchSessionIDNotFound}
		}
	}
	// The terminal request is answered like a sessionless one: a full response, no session left
	return &sessionlessContext{follower: follower, fetchData: fetchData}
}

func (r *Registry) incrementalContext(sessionID int32, epoch int32, follower bool,
	fetchData []PartitionEntry, toForget []PartitionKey) Context {
	r.lock.Lock()
	v, ok := r.sessions.Get(sessionID)
	r.lock.Unlock()
	if !ok {
		return &errorContext{errorCode: kafkaprotocol.ErrorCodeFetchSessionIDNotFound}
	}
	sess := v.(*Session)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return &errorContext{errorCode: kafkaprotocol.ErrorCodeFetchSessionIDNotFound}
	}
	if epoch != NextEpoch(sess.epoch) {
		log.Debugf("fetch session %d expected epoch %d but got %d", sessionID, NextEpoch(sess.epoch), epoch)
		return &errorContext{errorCode: kafkaprotocol.ErrorCodeInvalidFetchSessionEpoch}
	}
	if sess.pending {
		// The session already has an uncommitted request in flight. A second request naming
		// the same epoch is a replay, not a retry: a client only retries after seeing the
		// previous response.
		return &errorContext{errorCode: kafkaprotocol.ErrorCodeInvalidFetchSessionEpoch}
	}
	sess.pending = true
	sess.touch(time.Now())
	// The request's diff and the epoch advance are committed in UpdateAndGenerateResponseData,
	// not here: a request answered without data (throttled) must leave the session as it was so
	// the client can retry at the same epoch.
	return &incrementalContext{
		registry:  r,
		session:   sess,
		epoch:     epoch,
		fetchData: fetchData,
		toForget:  toForget,
	}
}

func (r *Registry) releaseSession(sessionID int32) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, ok := r.sessions.Peek(sessionID)
	if ok {
		r.sessions.Remove(sessionID)
	}
	return ok
}

// createSession registers a new session seeded with the request's partitions and the response
// state just sent, returning its id.
func (r *Registry) createSession(follower bool, fetchData []PartitionEntry, results []PartitionResult) int32 {
	now := time.Now()
	r.lock.Lock()
	defer r.lock.Unlock()
	id := r.newSessionID()
	sess := newSession(id, follower, now)
	for _, entry := range fetchData {
		sess.partitions.Put(entry.Key, &cachedPartition{req: entry.Data})
	}
	for _, result := range results {
		if v, ok := sess.partitions.Get(result.Key); ok {
			v.(*cachedPartition).mustRespond(result.Resp)
		}
	}
	r.sessions.Add(id, sess)
	return id
}

// newSessionID allocates a random positive session id not currently in use. Caller holds the
// registry lock.
func (r *Registry) newSessionID() int32 {
	for {
		u := uuid.New()
		id := int32(binary.BigEndian.Uint32(u[:4]) & 0x7fffffff)
		if id == InvalidSessionID {
			continue
		}
		if _, exists := r.sessions.Peek(id); exists {
			continue
		}
		return id
	}
}

// sessionlessContext answers a request that is not part of any session: the full result set is
// returned and nothing is tracked.
type sessionlessContext struct {
	follower  bool
	fetchData []PartitionEntry
}

func (c *sessionlessContext) Partitions() []PartitionEntry {
	return c.fetchData
}

func (c *sessionlessContext) SessionError() int16 {
	return kafkaprotocol.ErrorCodeNone
}

func (c *sessionlessContext) IsFollower() bool {
	return c.follower
}

func (c *sessionlessContext) UpdateAndGenerateResponseData([]PartitionResult) ResponseDisposition {
	return ResponseDisposition{SessionID: InvalidSessionID}
}

func (c *sessionlessContext) Discard() {}

// fullContext answers an initial-epoch request: the full result set is returned and a new
// session is created, seeded with the response just generated.
type fullContext struct {
	registry  *Registry
	follower  bool
	fetchData []PartitionEntry
}

func (c *fullContext) Partitions() []PartitionEntry {
	return c.fetchData
}

func (c *fullContext) SessionError() int16 {
	return kafkaprotocol.ErrorCodeNone
}

func (c *fullContext) IsFollower() bool {
	return c.follower
}

func (c *fullContext) UpdateAndGenerateResponseData(results []PartitionResult) ResponseDisposition {
	id := c.registry.createSession(c.follower, c.fetchData, results)
	return ResponseDisposition{SessionID: id}
}

func (c *fullContext) Discard() {}

// incrementalContext answers a follow-up request on an established session: only partitions
// whose fetchable state changed since the previous response are returned. The request's diff
// is held pending until UpdateAndGenerateResponseData commits it.
type incrementalContext struct {
	registry  *Registry
	session   *Session
	epoch     int32
	fetchData []PartitionEntry
	toForget  []PartitionKey
}

// pendingDiff splits the request's partitions into additions and updates against the session's
// current cache. Caller holds the session lock.
func (c *incrementalContext) pendingDiff() ([]PartitionKey, map[PartitionKey]RequestPartition) {
	var added []PartitionKey
	updated := make(map[PartitionKey]RequestPartition, len(c.fetchData))
	for _, entry := range c.fetchData {
		if _, pending := updated[entry.Key]; !pending {
			if _, exists := c.session.partitions.Get(entry.Key); !exists {
				added = append(added, entry.Key)
			}
		}
		updated[entry.Key] = entry.Data
	}
	return added, updated
}

// Partitions returns the session's partitions with this request's pending diff applied on top:
// retained partitions first in session order, newly named partitions after, forgotten ones
// gone. The session itself is not modified.
func (c *incrementalContext) Partitions() []PartitionEntry {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	added, updated := c.pendingDiff()
	forgotten := make(map[PartitionKey]bool, len(c.toForget))
	for _, key := range c.toForget {
		forgotten[key] = true
	}
	entries := make([]PartitionEntry, 0, c.session.partitions.Size()+len(added))
	c.session.partitions.Each(func(k interface{}, v interface{}) {
		key := k.(PartitionKey)
		if forgotten[key] {
			return
		}
		data := v.(*cachedPartition).req
		if req, ok := updated[key]; ok {
			data = req
		}
		entries = append(entries, PartitionEntry{Key: key, Data: data})
	})
	for _, key := range added {
		if forgotten[key] {
			continue
		}
		entries = append(entries, PartitionEntry{Key: key, Data: updated[key]})
	}
	return entries
}

func (c *incrementalContext) SessionError() int16 {
	return kafkaprotocol.ErrorCodeNone
}

func (c *incrementalContext) IsFollower() bool {
	return c.session.IsFollower()
}

func (c *incrementalContext) Discard() {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.session.pending = false
}

func (c *incrementalContext) UpdateAndGenerateResponseData(results []PartitionResult) ResponseDisposition {
	c.session.mu.Lock()
	defer c.session.mu.Unlock()
	c.session.pending = false
	added, updated := c.pendingDiff()
	c.session.update(added, updated, c.toForget)
	c.session.epoch = c.epoch
	include := make(map[PartitionKey]bool, len(results))
	for _, result := range results {
		v, ok := c.session.partitions.Get(result.Key)
		if !ok {
			// Not tracked (e.g. errored before reaching the session) - always respond
			include[result.Key] = true
			continue
		}
		if v.(*cachedPartition).mustRespond(result.Resp) {
			include[result.Key] = true
		}
	}
	return ResponseDisposition{SessionID: c.session.id, Include: include}
}

// errorContext answers a request naming an unknown session or an unexpected epoch. This is not
// a state transition: the session (if any) is left untouched.
type errorContext struct {
	errorCode int16
}

func (c *errorContext) Partitions() []PartitionEntry {
	return nil
}

func (c *errorContext) SessionError() int16 {
	return c.errorCode
}

func (c *errorContext) IsFollower() bool {
	return false
}

func (c *errorContext) UpdateAndGenerateResponseData([]PartitionResult) ResponseDisposition {
	return ResponseDisposition{ErrorCode: c.errorCode}
}

func (c *errorContext) Discard() {}
