package txnmarkers

import (
	"sync"
	"sync/atomic"

	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
)

// TopicPartition identifies a partition hosted by this broker.
type TopicPartition struct {
	Topic     string
	Partition int32
}

// Marker is one transaction marker to be written: a commit or abort control record for every
// partition the producer touched.
type Marker struct {
	ProducerID       int64
	ProducerEpoch    int16
	CoordinatorEpoch int32
	Commit           bool
	Partitions       []TopicPartition
}

// PartitionChecker is the local view of partition placement consulted before any append is
// attempted.
type PartitionChecker interface {
	// CheckPartition returns ErrorCodeNone when the local host has a marker-compatible
	// partition, or the error code to answer with otherwise.
	CheckPartition(tp TopicPartition) int16

	// IsGroupMetadataPartition reports whether tp belongs to the consumer-offsets topic, whose
	// markers are completed through the group coordinator rather than direct append.
	IsGroupMetadataPartition(tp TopicPartition) bool
}

// Appender appends marker control records to partition logs. The completion is invoked exactly
// once, from an arbitrary backend thread, with a result for every partition passed in.
type Appender interface {
	AppendMarker(marker Marker, partitions []TopicPartition, completion func(results map[TopicPartition]int16))
}

// GroupCompleter materializes transaction completion for offsets-topic partitions in the group
// coordinator.
type GroupCompleter interface {
	CompleteTransaction(tp TopicPartition, producerID int64, producerEpoch int16, coordinatorEpoch int32,
		commit bool, completion func(errorCode int16))
}

// Tracker fans a WriteTxnMarkers request out across (producerId x partition) pairs and sends
// the composed response exactly once, after every sub-write finished. Completion callbacks
// arrive on arbitrary backend threads.
type Tracker struct {
	checker  PartitionChecker
	appender Appender
	groups   GroupCompleter
}

func NewTracker(checker PartitionChecker, appender Appender, groups GroupCompleter) *Tracker {
	return &Tracker{checker: checker, appender: appender, groups: groups}
}

// producerErrors accumulates per-partition error codes for one producer id. Appends merge
// non-destructively under the lock; the map is frozen into the response only after the
// producer's countdown reaches zero.
type producerErrors struct {
	lock   sync.Mutex
	codes  map[TopicPartition]int16
	frozen bool
}

func (p *producerErrors) record(tp TopicPartition, code int16) {
	p.lock.Lock()
	defer p.lock.Unlock()
	if p.frozen {
		// A completion arriving after freeze indicates a backend double-complete
		log.Errorf("txn marker result for %v arrived after response for producer was frozen", tp)
		return
	}
	p.codes[tp] = code
}

func (p *producerErrors) freeze() map[TopicPartition]int16 {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.frozen = true
	return p.codes
}

type producerWork struct {
	producerID int64
	marker     Marker
	// partition order as named in the request, covering skipped and attempted alike
	partitions []TopicPartition
	errors     *producerErrors
	// attempted partitions get a backend round-trip; the rest errored up front
	appendPartitions []TopicPartition
	groupPartitions  []TopicPartition
}

// WriteMarkers drives the whole request. The completion receives producer-id keyed partition
// error maps, in order of first appearance in the request, and is invoked exactly once - from
// the caller when every marker is skipped up front, from a backend thread otherwise.
func (t *Tracker) WriteMarkers(markers []Marker, completion func(results []ProducerResult)) {
	works, order := t.groupByProducer(markers)
	if len(order) == 0 {
		completion(nil)
		return
	}

	var results []ProducerResult
	var resultsLock sync.Mutex
	outstanding := int64(len(order))

	producerDone := func(work *producerWork) {
		frozen := work.errors.freeze()
		resultsLock.Lock()
		results = append(results, ProducerResult{
			ProducerID: work.producerID,
			Partitions: work.partitions,
			Errors:     frozen,
		})
		resultsLock.Unlock()
		if atomic.AddInt64(&outstanding, -1) == 0 {
			ordered := orderResults(results, order)
			completion(ordered)
		}
	}

	for _, producerID := range order {
		work := works[producerID]
		attempted := len(work.appendPartitions) + len(work.groupPartitions)
		if attempted == 0 {
			// Every partition for this producer was skipped up front
			producerDone(work)
			continue
		}
		fut := common.NewCountDownFuture(attempted, func(_ error) {
			producerDone(work)
		})
		for _, tp := range work.groupPartitions {
			tp := tp
			t.groups.CompleteTransaction(tp, work.marker.ProducerID, work.marker.ProducerEpoch,
				work.marker.CoordinatorEpoch, work.marker.Commit, func(errorCode int16) {
					work.errors.record(tp, errorCode)
					fut.CountDown(nil)
				})
		}
		if len(work.appendPartitions) > 0 {
			t.appender.AppendMarker(work.marker, work.appendPartitions, func(appendResults map[TopicPartition]int16) {
				for tp, code := range appendResults {
					work.errors.record(tp, code)
					fut.CountDown(nil)
				}
			})
		}
	}
}

// ProducerResult is one producer id's slice of the response: every partition the request named
// for it, each mapped to an error code.
type ProducerResult struct {
	ProducerID int64
	Partitions []TopicPartition
	Errors     map[TopicPartition]int16
}

func (t *Tracker) groupByProducer(markers []Marker) (map[int64]*producerWork, []int64) {
	works := make(map[int64]*producerWork, len(markers))
	var order []int64
	for _, marker := range markers {
		work, ok := works[marker.ProducerID]
		if !ok {
			work = &producerWork{
				producerID: marker.ProducerID,
				marker:     marker,
				errors:     &producerErrors{codes: make(map[TopicPartition]int16)},
			}
			works[marker.ProducerID] = work
			order = append(order, marker.ProducerID)
		}
		for _, tp := range marker.Partitions {
			work.partitions = append(work.partitions, tp)
			code := t.checker.CheckPartition(tp)
			if code != kafkaprotocol.ErrorCodeNone {
				work.errors.record(tp, code)
				continue
			}
			if t.checker.IsGroupMetadataPartition(tp) {
				work.groupPartitions = append(work.groupPartitions, tp)
			} else {
				work.appendPartitions = append(work.appendPartitions, tp)
			}
		}
	}
	return works, order
}

func orderResults(results []ProducerResult, order []int64) []ProducerResult {
	byProducer := make(map[int64]ProducerResult, len(results))
	for _, result := range results {
		byProducer[result.ProducerID] = result
	}
	ordered := make([]ProducerResult, 0, len(order))
	for _, producerID := range order {
		ordered = append(ordered, byProducer[producerID])
	}
	return ordered
}
