package fetchsession

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/josefk31/kafka/kafkaprotocol"
)

func TestNextEpoch(t *testing.T) {
	require.Equal(t, int32(1), NextEpoch(InitialEpoch))
	require.Equal(t, int32(2), NextEpoch(1))
	require.Equal(t, InitialEpoch, NextEpoch(FinalEpoch))
	// wraps past the sentinel values
	require.Equal(t, int32(1), NextEpoch(math.MaxInt32))
}

func TestSessionlessRequest(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0, 1)
	ctx := r.NewContext(InvalidSessionID, FinalEpoch, false, entries, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), ctx.SessionError())
	require.Equal(t, entries, ctx.Partitions())

	disp := ctx.UpdateAndGenerateResponseData(resultsFor(entries))
	require.Equal(t, InvalidSessionID, disp.SessionID)
	require.Nil(t, disp.Include)
	require.Equal(t, 0, r.NumSessions())
}

func TestInitialEpochCreatesSession(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0, 1)
	ctx := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), ctx.SessionError())

	disp := ctx.UpdateAndGenerateResponseData(resultsFor(entries))
	require.NotEqual(t, InvalidSessionID, disp.SessionID)
	require.True(t, disp.SessionID > 0)
	require.Nil(t, disp.Include)
	require.Equal(t, 1, r.NumSessions())
}

func TestIncrementalExcludesUnchangedPartitions(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0, 1)
	full := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	results := resultsFor(entries)
	sessionID := full.UpdateAndGenerateResponseData(results).SessionID

	// same response state for both partitions, records only on the first
	results[0].Resp.RecordsSize = 100
	inc := r.NewContext(sessionID, 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), inc.SessionError())
	require.Equal(t, entries, inc.Partitions())

	disp := inc.UpdateAndGenerateResponseData(results)
	require.Equal(t, sessionID, disp.SessionID)
	require.True(t, disp.Include[entries[0].Key])
	require.False(t, disp.Include[entries[1].Key])
}

func TestIncrementalIncludesChangedPartitions(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0, 1)
	full := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	results := resultsFor(entries)
	sessionID := full.UpdateAndGenerateResponseData(results).SessionID

	results[1].Resp.HighWatermark = 42
	inc := r.NewContext(sessionID, 1, false, nil, nil)
	disp := inc.UpdateAndGenerateResponseData(results)
	require.False(t, disp.Include[entries[0].Key])
	require.True(t, disp.Include[entries[1].Key])
}

func TestIncrementalAddAndForget(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0, 1)
	full := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	sessionID := full.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID

	added := testEntries("topic2", 5)
	inc := r.NewContext(sessionID, 1, false, added, []PartitionKey{entries[0].Key})
	got := inc.Partitions()
	require.Equal(t, []PartitionEntry{entries[1], added[0]}, got)
}

func TestWrongEpochDoesNotAdvanceSession(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0)
	full := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	sessionID := full.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID

	bad := r.NewContext(sessionID, 7, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidFetchSessionEpoch), bad.SessionError())
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidFetchSessionEpoch),
		bad.UpdateAndGenerateResponseData(nil).ErrorCode)

	// the session is untouched: the expected epoch still works
	good := r.NewContext(sessionID, 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), good.SessionError())
}

func TestSecondRequestAtSameEpochRejected(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0)
	full := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	sessionID := full.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID

	first := r.NewContext(sessionID, 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), first.SessionError())

	// a second request naming the same epoch while the first is uncommitted is a replay
	replay := r.NewContext(sessionID, 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidFetchSessionEpoch), replay.SessionError())

	// committing the first unblocks the session at the next epoch
	first.UpdateAndGenerateResponseData(resultsFor(entries))
	next := r.NewContext(sessionID, 2, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), next.SessionError())
}

func TestDiscardLeavesSessionRetryable(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0)
	full := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	sessionID := full.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID

	// answered without data: the diff is dropped and the epoch stays put
	abandoned := r.NewContext(sessionID, 1, false, testEntries("topic2", 3), nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), abandoned.SessionError())
	abandoned.Discard()

	retry := r.NewContext(sessionID, 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), retry.SessionError())
	require.Equal(t, entries, retry.Partitions())
}

func TestUnknownSession(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	ctx := r.NewContext(12345, 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeFetchSessionIDNotFound), ctx.SessionError())
}

func TestFinalEpochReleasesSession(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0)
	full := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	sessionID := full.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID
	require.Equal(t, 1, r.NumSessions())

	ctx := r.NewContext(sessionID, FinalEpoch, false, entries, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), ctx.SessionError())
	require.Equal(t, 0, r.NumSessions())
	// answered like a sessionless request
	disp := ctx.UpdateAndGenerateResponseData(resultsFor(entries))
	require.Equal(t, InvalidSessionID, disp.SessionID)
}

func TestFinalEpochUnknownSession(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	ctx := r.NewContext(999, FinalEpoch, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeFetchSessionIDNotFound), ctx.SessionError())
}

func TestInitialEpochReleasesNamedSession(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0)
	full := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	sessionID := full.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID

	// a new-session request naming the old session replaces it
	replacement := r.NewContext(sessionID, InitialEpoch, false, entries, nil)
	newID := replacement.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID
	require.NotEqual(t, sessionID, newID)
	require.Equal(t, 1, r.NumSessions())
	stale := r.NewContext(sessionID, 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeFetchSessionIDNotFound), stale.SessionError())
}

func TestFollowerFlagPreserved(t *testing.T) {
	r := newTestRegistry(t, NewConf())
	entries := testEntries("topic1", 0)
	full := r.NewContext(InvalidSessionID, InitialEpoch, true, entries, nil)
	require.True(t, full.IsFollower())
	sessionID := full.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID

	inc := r.NewContext(sessionID, 1, false, nil, nil)
	require.True(t, inc.IsFollower())
}

func TestSessionCapEvictsLRU(t *testing.T) {
	cfg := NewConf()
	cfg.MaxSessions = 2
	r := newTestRegistry(t, cfg)
	var ids []int32
	for i := 0; i < 3; i++ {
		entries := testEntries("topic1", int32(i))
		ctx := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
		ids = append(ids, ctx.UpdateAndGenerateResponseData(resultsFor(entries)).SessionID)
	}
	require.Equal(t, 2, r.NumSessions())
	evicted := r.NewContext(ids[0], 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeFetchSessionIDNotFound), evicted.SessionError())
	kept := r.NewContext(ids[2], 1, false, nil, nil)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), kept.SessionError())
}

func TestExpireIdleSessions(t *testing.T) {
	cfg := NewConf()
	cfg.IdleTimeout = time.Minute
	r := newTestRegistry(t, cfg)
	entries := testEntries("topic1", 0)
	ctx := r.NewContext(InvalidSessionID, InitialEpoch, false, entries, nil)
	ctx.UpdateAndGenerateResponseData(resultsFor(entries))
	require.Equal(t, 1, r.NumSessions())

	r.expireIdleSessions(time.Now().Add(30 * time.Second))
	require.Equal(t, 1, r.NumSessions())
	r.expireIdleSessions(time.Now().Add(2 * time.Minute))
	require.Equal(t, 0, r.NumSessions())
}

func newTestRegistry(t *testing.T, cfg Conf) *Registry {
	t.Helper()
	r, err := NewRegistry(cfg)
	require.NoError(t, err)
	t.Cleanup(r.Stop)
	return r
}

func testEntries(topic string, partitions ...int32) []PartitionEntry {
	id := uuid.NewSHA1(uuid.NameSpaceOID, []byte(topic))
	entries := make([]PartitionEntry, 0, len(partitions))
	for _, partition := range partitions {
		entries = append(entries, PartitionEntry{
			Key:  PartitionKey{Topic: topic, TopicId: id, Partition: partition},
			Data: RequestPartition{MaxBytes: 1048576, FetchOffset: 0},
		})
	}
	return entries
}

func resultsFor(entries []PartitionEntry) []PartitionResult {
	results := make([]PartitionResult, 0, len(entries))
	for _, entry := range entries {
		results = append(results, PartitionResult{Key: entry.Key, Resp: PartitionResponse{HighWatermark: 10}})
	}
	return results
}
