package apis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/josefk31/kafka/kafkaprotocol"
)

func TestRemapStorageError(t *testing.T) {
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNotLeaderOrFollower),
		remapStorageError(kafkaprotocol.ErrorCodeKafkaStorageError, 3, produceStorageErrorMinVersion))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeKafkaStorageError),
		remapStorageError(kafkaprotocol.ErrorCodeKafkaStorageError, 4, produceStorageErrorMinVersion))

	require.Equal(t, int16(kafkaprotocol.ErrorCodeNotLeaderOrFollower),
		remapStorageError(kafkaprotocol.ErrorCodeKafkaStorageError, 5, fetchStorageErrorMinVersion))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeKafkaStorageError),
		remapStorageError(kafkaprotocol.ErrorCodeKafkaStorageError, 6, fetchStorageErrorMinVersion))

	// Other codes pass through untouched at any version.
	require.Equal(t, int16(kafkaprotocol.ErrorCodeUnknownTopicOrPartition),
		remapStorageError(kafkaprotocol.ErrorCodeUnknownTopicOrPartition, 3, produceStorageErrorMinVersion))
}

func TestRemapProducerFenced(t *testing.T) {
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidProducerEpoch),
		remapProducerFenced(kafkaprotocol.ErrorCodeProducerFenced, 1, txnFencedMinVersion))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeProducerFenced),
		remapProducerFenced(kafkaprotocol.ErrorCodeProducerFenced, 2, txnFencedMinVersion))

	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidProducerEpoch),
		remapProducerFenced(kafkaprotocol.ErrorCodeProducerFenced, 3, initProducerIdFencedMinVersion))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeProducerFenced),
		remapProducerFenced(kafkaprotocol.ErrorCodeProducerFenced, 4, initProducerIdFencedMinVersion))

	require.Equal(t, int16(kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed),
		remapProducerFenced(kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed, 1, txnFencedMinVersion))
}

func TestIsWrongLeaderError(t *testing.T) {
	require.True(t, isWrongLeaderError(kafkaprotocol.ErrorCodeNotLeaderOrFollower))
	require.True(t, isWrongLeaderError(kafkaprotocol.ErrorCodeFencedLeaderEpoch))
	require.False(t, isWrongLeaderError(kafkaprotocol.ErrorCodeNone))
	require.False(t, isWrongLeaderError(kafkaprotocol.ErrorCodeKafkaStorageError))
}

func TestEndpointSetDedupesByNodeID(t *testing.T) {
	var set endpointSet
	set.add(nil)
	set.add(&Node{NodeID: 2, Host: "b2", Port: 9092})
	set.add(&Node{NodeID: 1, Host: "b1", Port: 9092})
	set.add(&Node{NodeID: 2, Host: "b2-other", Port: 9093})

	require.Len(t, set.nodes, 2)
	require.Equal(t, int32(2), set.nodes[0].NodeID)
	require.Equal(t, "b2", set.nodes[0].Host)
	require.Equal(t, int32(1), set.nodes[1].NodeID)
}
