package txnmarkers

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/josefk31/kafka/kafkaprotocol"
)

func TestWriteMarkersSingleProducer(t *testing.T) {
	backend := newTestBackend()
	tracker := NewTracker(backend, backend, backend)

	partitions := []TopicPartition{{Topic: "topic1", Partition: 0}, {Topic: "topic1", Partition: 1}}
	marker := Marker{ProducerID: 100, ProducerEpoch: 1, Commit: true, Partitions: partitions}

	results := writeMarkersSync(t, tracker, []Marker{marker})
	require.Len(t, results, 1)
	require.Equal(t, int64(100), results[0].ProducerID)
	require.Equal(t, partitions, results[0].Partitions)
	require.Equal(t, map[TopicPartition]int16{
		{Topic: "topic1", Partition: 0}: kafkaprotocol.ErrorCodeNone,
		{Topic: "topic1", Partition: 1}: kafkaprotocol.ErrorCodeNone,
	}, results[0].Errors)
	require.Len(t, backend.appendCalls, 1)
	require.Equal(t, partitions, backend.appendCalls[0])
}

func TestWriteMarkersMultipleProducersOrdered(t *testing.T) {
	backend := newTestBackend()
	tracker := NewTracker(backend, backend, backend)

	markers := []Marker{
		{ProducerID: 300, Commit: true, Partitions: []TopicPartition{{Topic: "topic1", Partition: 0}}},
		{ProducerID: 100, Commit: false, Partitions: []TopicPartition{{Topic: "topic2", Partition: 0}}},
		{ProducerID: 200, Commit: true, Partitions: []TopicPartition{{Topic: "topic3", Partition: 0}}},
	}
	results := writeMarkersSync(t, tracker, markers)
	require.Len(t, results, 3)
	// first-appearance order of producer ids, regardless of completion order
	require.Equal(t, int64(300), results[0].ProducerID)
	require.Equal(t, int64(100), results[1].ProducerID)
	require.Equal(t, int64(200), results[2].ProducerID)
}

func TestWriteMarkersSkipsIncompatiblePartitionsUpFront(t *testing.T) {
	backend := newTestBackend()
	backend.checkCodes[TopicPartition{Topic: "gone", Partition: 0}] = kafkaprotocol.ErrorCodeUnknownTopicOrPartition
	tracker := NewTracker(backend, backend, backend)

	marker := Marker{ProducerID: 100, Commit: true, Partitions: []TopicPartition{
		{Topic: "gone", Partition: 0},
		{Topic: "topic1", Partition: 0},
	}}
	results := writeMarkersSync(t, tracker, []Marker{marker})
	require.Equal(t, map[TopicPartition]int16{
		{Topic: "gone", Partition: 0}:   kafkaprotocol.ErrorCodeUnknownTopicOrPartition,
		{Topic: "topic1", Partition: 0}: kafkaprotocol.ErrorCodeNone,
	}, results[0].Errors)
	// the skipped partition never reached the appender
	require.Equal(t, [][]TopicPartition{{{Topic: "topic1", Partition: 0}}}, backend.appendCalls)
}

func TestWriteMarkersAllSkippedCompletesImmediately(t *testing.T) {
	backend := newTestBackend()
	backend.checkCodes[TopicPartition{Topic: "gone", Partition: 0}] = kafkaprotocol.ErrorCodeNotLeaderOrFollower
	tracker := NewTracker(backend, backend, backend)

	marker := Marker{ProducerID: 100, Commit: true, Partitions: []TopicPartition{{Topic: "gone", Partition: 0}}}
	var results []ProducerResult
	// completion must fire synchronously from the caller: no backend round trip happens
	tracker.WriteMarkers([]Marker{marker}, func(r []ProducerResult) {
		results = r
	})
	require.Len(t, results, 1)
	require.Equal(t, map[TopicPartition]int16{
		{Topic: "gone", Partition: 0}: kafkaprotocol.ErrorCodeNotLeaderOrFollower,
	}, results[0].Errors)
	require.Empty(t, backend.appendCalls)
}

func TestWriteMarkersEmptyRequestCompletesImmediately(t *testing.T) {
	backend := newTestBackend()
	tracker := NewTracker(backend, backend, backend)

	// A request naming no markers still gets its completion, synchronously from the caller.
	completed := false
	tracker.WriteMarkers(nil, func(results []ProducerResult) {
		completed = true
		require.Empty(t, results)
	})
	require.True(t, completed)
	require.Empty(t, backend.appendCalls)
}

func TestWriteMarkersDelegatesOffsetsPartitions(t *testing.T) {
	backend := newTestBackend()
	offsets := TopicPartition{Topic: "__consumer_offsets", Partition: 3}
	backend.groupPartitions[offsets] = true
	backend.groupCodes[offsets] = kafkaprotocol.ErrorCodeNone
	tracker := NewTracker(backend, backend, backend)

	marker := Marker{ProducerID: 100, ProducerEpoch: 2, CoordinatorEpoch: 9, Commit: true,
		Partitions: []TopicPartition{offsets, {Topic: "topic1", Partition: 0}}}
	results := writeMarkersSync(t, tracker, []Marker{marker})
	require.Equal(t, map[TopicPartition]int16{
		offsets:                         kafkaprotocol.ErrorCodeNone,
		{Topic: "topic1", Partition: 0}: kafkaprotocol.ErrorCodeNone,
	}, results[0].Errors)

	require.Len(t, backend.completeCalls, 1)
	require.Equal(t, completeCall{
		tp: offsets, producerID: 100, producerEpoch: 2, coordinatorEpoch: 9, commit: true,
	}, backend.completeCalls[0])
	// only the non-offsets partition hit the appender
	require.Equal(t, [][]TopicPartition{{{Topic: "topic1", Partition: 0}}}, backend.appendCalls)
}

func TestWriteMarkersAccumulatesAppendErrors(t *testing.T) {
	backend := newTestBackend()
	failed := TopicPartition{Topic: "topic1", Partition: 1}
	backend.appendCodes[failed] = kafkaprotocol.ErrorCodeKafkaStorageError
	tracker := NewTracker(backend, backend, backend)

	marker := Marker{ProducerID: 100, Commit: false, Partitions: []TopicPartition{
		{Topic: "topic1", Partition: 0}, failed,
	}}
	results := writeMarkersSync(t, tracker, []Marker{marker})
	require.Equal(t, map[TopicPartition]int16{
		{Topic: "topic1", Partition: 0}: kafkaprotocol.ErrorCodeNone,
		failed:                          kafkaprotocol.ErrorCodeKafkaStorageError,
	}, results[0].Errors)
}

func writeMarkersSync(t *testing.T, tracker *Tracker, markers []Marker) []ProducerResult {
	t.Helper()
	ch := make(chan []ProducerResult, 1)
	tracker.WriteMarkers(markers, func(results []ProducerResult) {
		ch <- results
	})
	select {
	case results := <-ch:
		return results
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for marker completion")
		return nil
	}
}

type completeCall struct {
	tp               TopicPartition
	producerID       int64
	producerEpoch    int16
	coordinatorEpoch int32
	commit           bool
}

// testBackend plays all three collaborator roles, completing appends and group completions on
// a spawned goroutine the way the real backends do.
type testBackend struct {
	lock            sync.Mutex
	checkCodes      map[TopicPartition]int16
	groupPartitions map[TopicPartition]bool
	appendCodes     map[TopicPartition]int16
	groupCodes      map[TopicPartition]int16
	appendCalls     [][]TopicPartition
	completeCalls   []completeCall
}

func newTestBackend() *testBackend {
	return &testBackend{
		checkCodes:      map[TopicPartition]int16{},
		groupPartitions: map[TopicPartition]bool{},
		appendCodes:     map[TopicPartition]int16{},
		groupCodes:      map[TopicPartition]int16{},
	}
}

func (b *testBackend) CheckPartition(tp TopicPartition) int16 {
	return b.checkCodes[tp]
}

func (b *testBackend) IsGroupMetadataPartition(tp TopicPartition) bool {
	return b.groupPartitions[tp]
}

func (b *testBackend) AppendMarker(_ Marker, partitions []TopicPartition, completion func(results map[TopicPartition]int16)) {
	b.lock.Lock()
	b.appendCalls = append(b.appendCalls, partitions)
	results := make(map[TopicPartition]int16, len(partitions))
	for _, tp := range partitions {
		results[tp] = b.appendCodes[tp]
	}
	b.lock.Unlock()
	go completion(results)
}

func (b *testBackend) CompleteTransaction(tp TopicPartition, producerID int64, producerEpoch int16,
	coordinatorEpoch int32, commit bool, completion func(errorCode int16)) {
	b.lock.Lock()
	b.completeCalls = append(b.completeCalls, completeCall{
		tp: tp, producerID: producerID, producerEpoch: producerEpoch,
		coordinatorEpoch: coordinatorEpoch, commit: commit,
	})
	code := b.groupCodes[tp]
	b.lock.Unlock()
	go completion(code)
}
