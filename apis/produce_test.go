package apis

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/kafkaprotocol"
	"github.com/josefk31/kafka/quotas"
)

func produceRequest(acks int16, topic string, partitions ...int32) *kafkaprotocol.ProduceRequest {
	topicData := kafkaprotocol.ProduceRequestTopicProduceData{Name: common.StrPtr(topic)}
	for _, index := range partitions {
		topicData.PartitionData = append(topicData.PartitionData,
			kafkaprotocol.ProduceRequestPartitionProduceData{Index: index, Records: []byte("batch")})
	}
	return &kafkaprotocol.ProduceRequest{Acks: acks, TopicData: []kafkaprotocol.ProduceRequestTopicProduceData{topicData}}
}

func dispatchProduce(t *testing.T, env *testEnv, apiVersion int16,
	req *kafkaprotocol.ProduceRequest) (*fakeConnection, *kafkaprotocol.ProduceResponse) {
	t.Helper()
	ctx, conn := env.newContext(kafkaprotocol.APIKeyProduce, apiVersion)
	require.NoError(t, env.dispatcher.Dispatch(ctx, req))
	if conn.sentCount() == 0 {
		return conn, nil
	}
	resp, ok := conn.lastSent(t).(*kafkaprotocol.ProduceResponse)
	require.True(t, ok)
	return conn, resp
}

func TestProduceAppendsAndResponds(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)
	env.replication.setAppendResult(partKey("orders", 1), AppendResult{BaseOffset: 42, LogAppendTimeMs: 1234})

	_, resp := dispatchProduce(t, env, 9, produceRequest(1, "orders", 1))
	require.NotNil(t, resp)
	require.Len(t, resp.Responses, 1)
	require.Equal(t, "orders", common.SafeDerefStringPtr(resp.Responses[0].Name))
	require.Len(t, resp.Responses[0].PartitionResponses, 1)
	part := resp.Responses[0].PartitionResponses[0]
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), part.ErrorCode)
	require.Equal(t, int64(42), part.BaseOffset)

	require.Len(t, env.replication.appendEntries, 1)
	require.Equal(t, []byte("batch"), env.replication.appendEntries[0].Records)
	require.Equal(t, int16(1), env.replication.appendEntries[0].Acks)
}

func TestProduceUnauthorizedTopicHidesExistence(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)
	env.authorizer.deny(acls.ResourceTypeTopic, "orders", acls.OperationWrite)
	env.authorizer.deny(acls.ResourceTypeTopic, "ghost", acls.OperationWrite)

	// Existing and non-existing topics answer identically when the principal lacks write.
	_, resp := dispatchProduce(t, env, 9, produceRequest(1, "orders", 0))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeTopicAuthorizationFailed),
		resp.Responses[0].PartitionResponses[0].ErrorCode)

	_, resp = dispatchProduce(t, env, 9, produceRequest(1, "ghost", 0))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeTopicAuthorizationFailed),
		resp.Responses[0].PartitionResponses[0].ErrorCode)
	require.Empty(t, env.replication.appendEntries)
}

func TestProduceUnknownTopic(t *testing.T) {
	env := newTestEnv(t)
	_, resp := dispatchProduce(t, env, 9, produceRequest(1, "ghost", 0))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeUnknownTopicOrPartition),
		resp.Responses[0].PartitionResponses[0].ErrorCode)
	require.Equal(t, int64(-1), resp.Responses[0].PartitionResponses[0].BaseOffset)
}

func TestProducePartitionOutOfRange(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 2)
	_, resp := dispatchProduce(t, env, 9, produceRequest(1, "orders", 7))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeUnknownTopicOrPartition),
		resp.Responses[0].PartitionResponses[0].ErrorCode)
}

func TestProduceInvalidAcks(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)
	_, resp := dispatchProduce(t, env, 9, produceRequest(5, "orders", 0, 1))
	for _, part := range resp.Responses[0].PartitionResponses {
		require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRequiredAcks), part.ErrorCode)
	}
	require.Empty(t, env.replication.appendEntries)
}

func TestProduceAcksZero(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)

	// Success: no response and the connection stays up.
	conn, _ := dispatchProduce(t, env, 9, produceRequest(0, "orders", 0))
	require.Equal(t, 0, conn.sentCount())
	require.False(t, conn.isClosed())
	require.Len(t, env.replication.appendEntries, 1)

	// Failure: still no response, the connection is dropped instead.
	conn, _ = dispatchProduce(t, env, 9, produceRequest(0, "ghost", 0))
	require.Equal(t, 0, conn.sentCount())
	require.True(t, conn.isClosed())
}

func TestProduceStorageErrorRemap(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)
	env.replication.setAppendResult(partKey("orders", 0),
		AppendResult{ErrorCode: kafkaprotocol.ErrorCodeKafkaStorageError})

	_, resp := dispatchProduce(t, env, 3, produceRequest(1, "orders", 0))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNotLeaderOrFollower),
		resp.Responses[0].PartitionResponses[0].ErrorCode)

	_, resp = dispatchProduce(t, env, 4, produceRequest(1, "orders", 0))
	require.Equal(t, int16(kafkaprotocol.ErrorCodeKafkaStorageError),
		resp.Responses[0].PartitionResponses[0].ErrorCode)
}

func TestProduceLeaderHints(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)
	leader := &CurrentLeader{
		LeaderID:    2,
		LeaderEpoch: 5,
		Node:        &Node{NodeID: 2, Host: "broker2", Port: 9092},
	}
	env.replication.setAppendResult(partKey("orders", 0),
		AppendResult{ErrorCode: kafkaprotocol.ErrorCodeNotLeaderOrFollower, CurrentLeader: leader})
	env.replication.setAppendResult(partKey("orders", 1),
		AppendResult{ErrorCode: kafkaprotocol.ErrorCodeNotLeaderOrFollower, CurrentLeader: leader})

	_, resp := dispatchProduce(t, env, 10, produceRequest(1, "orders", 0, 1))
	for _, part := range resp.Responses[0].PartitionResponses {
		require.Equal(t, int32(2), part.CurrentLeader.LeaderId)
		require.Equal(t, int32(5), part.CurrentLeader.LeaderEpoch)
	}
	// Both partitions point at the same node, advertised once.
	require.Len(t, resp.NodeEndpoints, 1)
	require.Equal(t, int32(2), resp.NodeEndpoints[0].NodeId)
	require.Equal(t, "broker2", common.SafeDerefStringPtr(resp.NodeEndpoints[0].Host))

	// Below the hint version no endpoints travel.
	_, resp = dispatchProduce(t, env, 9, produceRequest(1, "orders", 0))
	require.Empty(t, resp.NodeEndpoints)
	require.Equal(t, int32(0), resp.Responses[0].PartitionResponses[0].CurrentLeader.LeaderId)
}

func TestProduceTransactionalIDUnauthorized(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)
	env.authorizer.deny(acls.ResourceTypeTransactionalID, "txn-1", acls.OperationWrite)

	req := produceRequest(1, "orders", 0, 1)
	req.TransactionalId = common.StrPtr("txn-1")
	_, resp := dispatchProduce(t, env, 9, req)
	for _, part := range resp.Responses[0].PartitionResponses {
		require.Equal(t, int16(kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed), part.ErrorCode)
	}
	require.Empty(t, env.replication.appendEntries)
}

func TestProduceDuplicatePartitionCollapses(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)
	_, resp := dispatchProduce(t, env, 9, produceRequest(1, "orders", 3, 3))
	require.Len(t, resp.Responses[0].PartitionResponses, 1)
	require.Len(t, env.replication.appendEntries, 1)
}

func TestProduceThrottleStamped(t *testing.T) {
	env := newTestEnv(t)
	env.resolver.addTopic("orders", 4)
	env.quotas.setDelay(quotas.DimensionProduce, 150)

	_, resp := dispatchProduce(t, env, 9, produceRequest(1, "orders", 0))
	require.Equal(t, int32(150), resp.ThrottleTimeMs)
}
