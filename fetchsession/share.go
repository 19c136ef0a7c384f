package fetchsession

import (
	"sync"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"

	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
)

// ShareSessionKey identifies a share-group session: unlike ordinary fetch sessions there is at
// most one per (group, member).
type ShareSessionKey struct {
	GroupID  string
	MemberID uuid.UUID
}

// SharePartition is the per-partition state a share session tracks.
type SharePartition struct {
	MaxBytes int32
}

// ShareSession is the state of one share-group fetch session.
type ShareSession struct {
	mu         sync.Mutex
	key        ShareSessionKey
	epoch      int32
	partitions *linkedhashmap.Map // PartitionKey -> SharePartition, in insertion order
	created    time.Time
	lastUsed   time.Time
	closed     bool
}

func (s *ShareSession) Key() ShareSessionKey {
	return s.key
}

// Epoch returns the epoch of the last accepted request on this session.
func (s *ShareSession) Epoch() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// Partitions returns the session's partitions in insertion order.
func (s *ShareSession) Partitions() []PartitionKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]PartitionKey, 0, s.partitions.Size())
	s.partitions.Each(func(key interface{}, _ interface{}) {
		keys = append(keys, key.(PartitionKey))
	})
	return keys
}

// ShareContext is the per-request view of the share session state machine.
type ShareContext struct {
	// ErrorCode is non-zero when the request named an unknown session or an unexpected epoch.
	ErrorCode int16
	// Session is the established session, nil for an errored context.
	Session *ShareSession
	// Final is set when the request carried the terminal epoch: the caller must release the
	// session once its response has been computed.
	Final bool
}

// ShareRegistry owns all share-group fetch sessions on this broker.
type ShareRegistry struct {
	lock        sync.Mutex
	cfg         Conf
	sessions    *lru.Cache // ShareSessionKey -> *ShareSession
	expiryTimer *common.TimerHandle
	stopped     bool
}

func NewShareRegistry(cfg Conf) (*ShareRegistry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &ShareRegistry{cfg: cfg}
	cache, err := lru.NewWithEvict(cfg.MaxSessions, func(key interface{}, value interface{}) {
		sess := value.(*ShareSession)
		sess.mu.Lock()
		sess.closed = true
		sess.mu.Unlock()
		log.Debugf("evicted share session %v", key)
	})
	if err != nil {
		return nil, err
	}
	r.sessions = cache
	r.scheduleExpiry()
	return r, nil
}

func (r *ShareRegistry) Stop() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.stopped = true
	if r.expiryTimer != nil {
		r.expiryTimer.Stop()
	}
}

func (r *ShareRegistry) scheduleExpiry() {
	r.expiryTimer = common.ScheduleTimer(r.cfg.ExpiryInterval, false, func() {
		r.expireIdleSessions(time.Now())
		r.lock.Lock()
		defer r.lock.Unlock()
		if !r.stopped {
			r.scheduleExpiry()
		}
	})
}

func (r *ShareRegistry) expireIdleSessions(now time.Time) {
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, key := range r.sessions.Keys() {
		v, ok := r.sessions.Peek(key)
		if !ok {
			continue
		}
		sess := v.(*ShareSession)
		sess.mu.Lock()
		idle := now.Sub(sess.lastUsed) >= r.cfg.IdleTimeout
		sess.mu.Unlock()
		if idle {
			log.Debugf("expiring idle share session %v", key)
			r.sessions.Remove(key)
		}
	}
}

func (r *ShareRegistry) NumSessions() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.sessions.Len()
}

// NewContext computes the share session context for a request. An initial-epoch request always
// creates a fresh session (releasing any previous session for the key); a follow-up must carry
// the expected next epoch; the terminal epoch marks the session for release after the response.
func (r *ShareRegistry) NewContext(key ShareSessionKey, epoch int32,
	fetchData []PartitionEntry, toForget []PartitionKey) ShareContext {
	if epoch == InitialEpoch {
		return ShareContext{Session: r.createSession(key, fetchData)}
	}
	r.lock.Lock()
	v, ok := r.sessions.Get(key)
	r.lock.Unlock()
	if !ok {
		return ShareContext{ErrorCode: kafkaprotocol.ErrorCodeShareSessionNotFound}
	}
	sess := v.(*ShareSession)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return ShareContext{ErrorCode: kafkaprotocol.ErrorCodeShareSessionNotFound}
	}
	if epoch == FinalEpoch {
		sess.touch(time.Now())
		return ShareContext{Session: sess, Final: true}
	}
	if epoch != NextEpoch(sess.epoch) {
		log.Debugf("share session %v expected epoch %d but got %d", key, NextEpoch(sess.epoch), epoch)
		return ShareContext{ErrorCode: kafkaprotocol.ErrorCodeInvalidShareSessionEpoch}
	}
	// Unlike consumer fetch sessions the diff is applied up front. A share fetch always takes
	// effect on the backend (acknowledgements settle even when the data portion of the response
	// is throttled away), so the epoch advances with the request.
	for _, entry := range fetchData {
		sess.partitions.Put(entry.Key, SharePartition{MaxBytes: entry.Data.MaxBytes})
	}
	for _, k := range toForget {
		sess.partitions.Remove(k)
	}
	sess.epoch = epoch
	sess.touch(time.Now())
	return ShareContext{Session: sess}
}

func (r *ShareRegistry) createSession(key ShareSessionKey, fetchData []PartitionEntry) *ShareSession {
	now := time.Now()
	sess := &ShareSession{
		key:        key,
		epoch:      InitialEpoch,
		partitions: linkedhashmap.New(),
		created:    now,
		lastUsed:   now,
	}
	for _, entry := range fetchData {
		sess.partitions.Put(entry.Key, SharePartition{MaxBytes: entry.Data.MaxBytes})
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.sessions.Add(key, sess)
	return sess
}

// Release removes the session for the key, reporting whether it existed.
func (r *ShareRegistry) Release(key ShareSessionKey) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, ok := r.sessions.Peek(key)
	if ok {
		r.sessions.Remove(key)
	}
	return ok
}

func (s *ShareSession) touch(now time.Time) {
	s.lastUsed = now
}
