package apis

import (
	"github.com/josefk31/kafka/kafkaprotocol"
)

// Older protocol versions predate some error codes. The backend always reports the modern
// code; the remapping to what the client's version understands happens here, once, instead of
// being scattered through the handlers.
const (
	// KAFKA_STORAGE_ERROR exists from these versions on; older clients get
	// NOT_LEADER_OR_FOLLOWER, which triggers the same metadata refresh.
	produceStorageErrorMinVersion = int16(4)
	fetchStorageErrorMinVersion   = int16(6)

	// PRODUCER_FENCED exists from these versions on; older clients get
	// INVALID_PRODUCER_EPOCH.
	initProducerIdFencedMinVersion = int16(4)
	txnFencedMinVersion            = int16(2)

	// Versions from which responses carry current-leader hints and node endpoints alongside
	// wrong-leader errors.
	produceLeaderHintMinVersion = int16(10)
	fetchLeaderHintMinVersion   = int16(12)
)

func remapStorageError(errorCode int16, apiVersion int16, minVersion int16) int16 {
	if errorCode == kafkaprotocol.ErrorCodeKafkaStorageError && apiVersion < minVersion {
		return kafkaprotocol.ErrorCodeNotLeaderOrFollower
	}
	return errorCode
}

func remapProducerFenced(errorCode int16, apiVersion int16, minVersion int16) int16 {
	if errorCode == kafkaprotocol.ErrorCodeProducerFenced && apiVersion < minVersion {
		return kafkaprotocol.ErrorCodeInvalidProducerEpoch
	}
	return errorCode
}

// isWrongLeaderError reports whether the error tells the client it addressed the wrong broker,
// which is when leader hints are attached.
func isWrongLeaderError(errorCode int16) bool {
	return errorCode == kafkaprotocol.ErrorCodeNotLeaderOrFollower ||
		errorCode == kafkaprotocol.ErrorCodeFencedLeaderEpoch
}

// endpointSet accumulates the distinct leader endpoints referenced by a response's partition
// errors. Endpoints are deduplicated by node id, keeping first-seen order.
type endpointSet struct {
	nodes []Node
	seen  map[int32]bool
}

func (e *endpointSet) add(node *Node) {
	if node == nil {
		return
	}
	if e.seen == nil {
		e.seen = map[int32]bool{}
	}
	if e.seen[node.NodeID] {
		return
	}
	e.seen[node.NodeID] = true
	e.nodes = append(e.nodes, *node)
}
