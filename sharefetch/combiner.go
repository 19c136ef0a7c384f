package sharefetch

import (
	"sync"

	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
)

// FetchResult is one partition's share-fetch result.
type FetchResult struct {
	Key  fetchsession.PartitionKey
	Data kafkaprotocol.ShareFetchResponsePartitionData
}

// AckResult is one partition's piggy-backed acknowledge result.
type AckResult struct {
	Key       fetchsession.PartitionKey
	ErrorCode int16
}

// Combine merges the results of a share fetch and its piggy-backed acknowledge into one result
// set. Partitions present in both get the acknowledge error attached to their fetch result;
// acknowledge-only partitions get a synthesized fetch entry with no fetch error. No partition
// present in either input is dropped. The merge is commutative with respect to which operation
// finished first.
func Combine(fetchResults []FetchResult, ackResults []AckResult) []FetchResult {
	ackByKey := make(map[fetchsession.PartitionKey]int16, len(ackResults))
	for _, ack := range ackResults {
		ackByKey[ack.Key] = ack.ErrorCode
	}
	combined := make([]FetchResult, 0, len(fetchResults))
	seen := make(map[fetchsession.PartitionKey]bool, len(fetchResults))
	for _, fetch := range fetchResults {
		if ackCode, ok := ackByKey[fetch.Key]; ok {
			fetch.Data.AcknowledgeErrorCode = ackCode
		}
		combined = append(combined, fetch)
		seen[fetch.Key] = true
	}
	for _, ack := range ackResults {
		if seen[ack.Key] {
			continue
		}
		seen[ack.Key] = true
		combined = append(combined, FetchResult{
			Key: ack.Key,
			Data: kafkaprotocol.ShareFetchResponsePartitionData{
				PartitionIndex:       ack.Key.Partition,
				ErrorCode:            kafkaprotocol.ErrorCodeNone,
				AcknowledgeErrorCode: ack.ErrorCode,
			},
		})
	}
	return combined
}

// Combiner joins the two concurrent halves of a share-fetch request: the fetch and the
// piggy-backed acknowledge run as independent futures, and the combined result is delivered
// exactly once after both have completed, whichever order they arrive in.
type Combiner struct {
	lock         sync.Mutex
	fetchResults []FetchResult
	ackResults   []AckResult
	fut          *common.CountDownFuture
}

func NewCombiner(completion func(results []FetchResult)) *Combiner {
	c := &Combiner{}
	c.fut = common.NewCountDownFuture(2, func(_ error) {
		c.lock.Lock()
		fetchResults := c.fetchResults
		ackResults := c.ackResults
		c.lock.Unlock()
		completion(Combine(fetchResults, ackResults))
	})
	return c
}

// CompleteFetch delivers the fetch half. Must be called exactly once.
func (c *Combiner) CompleteFetch(results []FetchResult) {
	c.lock.Lock()
	c.fetchResults = results
	c.lock.Unlock()
	c.fut.CountDown(nil)
}

// CompleteAcknowledge delivers the acknowledge half. Must be called exactly once, even when
// the request carried no acknowledgements (with nil results).
func (c *Combiner) CompleteAcknowledge(results []AckResult) {
	c.lock.Lock()
	c.ackResults = results
	c.lock.Unlock()
	c.fut.CountDown(nil)
}
