package apis

import (
	"github.com/josefk31/kafka/fetchsession"
)

// aggregator collects per-partition outcomes for one request. Partitions are registered in
// request order; pre-flight failures (authorization, unknown topic, validation) are settled
// before the backend is called and only unsettled partitions go to the backend. Every
// registered partition appears exactly once in the final collection, duplicates in the
// request collapse onto the first occurrence, and late settles for an already settled
// partition are ignored.
type aggregator[R any] struct {
	order   []fetchsession.PartitionKey
	entries map[fetchsession.PartitionKey]*aggEntry[R]
}

type aggEntry[R any] struct {
	result  R
	settled bool
}

func newAggregator[R any]() *aggregator[R] {
	return &aggregator[R]{entries: map[fetchsession.PartitionKey]*aggEntry[R]{}}
}

// register adds a partition in request order, reporting whether it was newly seen.
func (a *aggregator[R]) register(key fetchsession.PartitionKey) bool {
	if _, ok := a.entries[key]; ok {
		return false
	}
	a.order = append(a.order, key)
	a.entries[key] = &aggEntry[R]{}
	return true
}

// settle records the outcome for a partition. Unregistered partitions are registered on the
// fly so backend results for partitions the request never named still surface.
func (a *aggregator[R]) settle(key fetchsession.PartitionKey, result R) {
	entry, ok := a.entries[key]
	if !ok {
		a.order = append(a.order, key)
		a.entries[key] = &aggEntry[R]{result: result, settled: true}
		return
	}
	if entry.settled {
		return
	}
	entry.result = result
	entry.settled = true
}

// settled reports whether the partition already has an outcome.
func (a *aggregator[R]) isSettled(key fetchsession.PartitionKey) bool {
	entry, ok := a.entries[key]
	return ok && entry.settled
}

// pending returns the registered partitions with no outcome yet, in request order.
func (a *aggregator[R]) pending() []fetchsession.PartitionKey {
	var keys []fetchsession.PartitionKey
	for _, key := range a.order {
		if !a.entries[key].settled {
			keys = append(keys, key)
		}
	}
	return keys
}

// keyedResult pairs a partition with its settled outcome.
type keyedResult[R any] struct {
	key    fetchsession.PartitionKey
	result R
}

// collect returns every registered partition exactly once, in request order. Partitions still
// unsettled get the outcome produced by fill, so a backend that dropped a partition cannot
// make the response drop it too.
func (a *aggregator[R]) collect(fill func(key fetchsession.PartitionKey) R) []keyedResult[R] {
	results := make([]keyedResult[R], 0, len(a.order))
	for _, key := range a.order {
		entry := a.entries[key]
		if !entry.settled {
			entry.result = fill(key)
			entry.settled = true
		}
		results = append(results, keyedResult[R]{key: key, result: entry.result})
	}
	return results
}

// groupByTopic folds an ordered result collection into per-topic groups, preserving the order
// topics and partitions first appeared.
func groupByTopic[R any](results []keyedResult[R]) [][]keyedResult[R] {
	var groups [][]keyedResult[R]
	index := map[string]int{}
	for _, res := range results {
		topic := res.key.Topic
		i, ok := index[topic]
		if !ok {
			i = len(groups)
			index[topic] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], res)
	}
	return groups
}
