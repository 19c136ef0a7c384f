package apis

import (
	"github.com/google/uuid"

	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
	"github.com/josefk31/kafka/sharefetch"
	"github.com/josefk31/kafka/txnmarkers"
)

// Node is a broker endpoint as advertised on the listener the request arrived on.
type Node struct {
	NodeID int32
	Host   string
	Port   int32
	Rack   *string
}

// CurrentLeader is the leadership hint attached to per-partition errors that indicate the
// client talked to the wrong broker.
type CurrentLeader struct {
	LeaderID    int32
	LeaderEpoch int32
	// Node is the endpoint of the leader, or nil when it is not known on this listener.
	Node *Node
}

// AppendEntry is one partition's record data to append.
type AppendEntry struct {
	Key             fetchsession.PartitionKey
	Records         []byte
	TransactionalID *string
	Acks            int16
}

// AppendResult is the outcome of appending one partition's batch.
type AppendResult struct {
	Key             fetchsession.PartitionKey
	ErrorCode       int16
	ErrorMessage    *string
	BaseOffset      int64
	LogAppendTimeMs int64
	LogStartOffset  int64
	RecordErrors    []kafkaprotocol.ProduceResponseBatchIndexAndErrorMessage
	CurrentLeader   *CurrentLeader
}

// FetchEntry is one partition to read records from.
type FetchEntry struct {
	Key                fetchsession.PartitionKey
	FetchOffset        int64
	CurrentLeaderEpoch int32
	LastFetchedEpoch   int32
	LogStartOffset     int64
	MaxBytes           int32
}

// FetchParams carries the request-level knobs for a batch of partition reads.
type FetchParams struct {
	ReplicaID      int32
	MaxWaitMs      int32
	MinBytes       int32
	MaxBytes       int32
	IsolationLevel int8
	Partitions     []FetchEntry
}

// FetchPartitionResult is the outcome of reading one partition.
type FetchPartitionResult struct {
	Key                  fetchsession.PartitionKey
	ErrorCode            int16
	HighWatermark        int64
	LastStableOffset     int64
	LogStartOffset       int64
	DivergingEpoch       *kafkaprotocol.FetchResponseEpochEndOffset
	AbortedTransactions  []kafkaprotocol.FetchResponseAbortedTransaction
	PreferredReadReplica int32
	Records              []byte
	CurrentLeader        *CurrentLeader
}

// ListOffsetsEntry asks for the offset at a timestamp in one partition.
type ListOffsetsEntry struct {
	Key                fetchsession.PartitionKey
	CurrentLeaderEpoch int32
	Timestamp          int64
}

// ListOffsetsResult is the outcome of one partition's offset lookup.
type ListOffsetsResult struct {
	Key         fetchsession.PartitionKey
	ErrorCode   int16
	Timestamp   int64
	Offset      int64
	LeaderEpoch int32
}

// DeleteRecordsEntry truncates one partition's log up to an offset.
type DeleteRecordsEntry struct {
	Key    fetchsession.PartitionKey
	Offset int64
}

// DeleteRecordsResult is the outcome of one partition's truncation.
type DeleteRecordsResult struct {
	Key           fetchsession.PartitionKey
	ErrorCode     int16
	LowWatermark  int64
	CurrentLeader *CurrentLeader
}

// EpochEndOffsetEntry asks for the end offset of a leader epoch in one partition.
type EpochEndOffsetEntry struct {
	Key                fetchsession.PartitionKey
	CurrentLeaderEpoch int32
	LeaderEpoch        int32
}

// EpochEndOffsetResult is the outcome of one partition's epoch end offset lookup.
type EpochEndOffsetResult struct {
	Key         fetchsession.PartitionKey
	ErrorCode   int16
	LeaderEpoch int32
	EndOffset   int64
}

// ProducerStateResult describes the active idempotent producers on one partition.
type ProducerStateResult struct {
	Key             fetchsession.PartitionKey
	ErrorCode       int16
	ErrorMessage    *string
	ActiveProducers []kafkaprotocol.DescribeProducersResponseProducerState
}

// ReplicationGateway is the local replication subsystem: it owns the partition logs this
// broker leads or follows. Completion callbacks are invoked exactly once, from an arbitrary
// backend thread, with a result for every entry passed in.
type ReplicationGateway interface {
	AppendRecords(entries []AppendEntry, completion func(results []AppendResult))

	FetchRecords(params FetchParams, completion func(results []FetchPartitionResult))

	ListOffsets(isolationLevel int8, entries []ListOffsetsEntry, completion func(results []ListOffsetsResult))

	DeleteRecords(entries []DeleteRecordsEntry, completion func(results []DeleteRecordsResult))

	LastOffsetForLeaderEpoch(entries []EpochEndOffsetEntry, completion func(results []EpochEndOffsetResult))

	DescribeProducerState(partitions []fetchsession.PartitionKey, completion func(results []ProducerStateResult))

	DescribeLogDirs(topics []kafkaprotocol.DescribeLogDirsRequestDescribableLogDirTopic) ([]kafkaprotocol.DescribeLogDirsResponseDescribeLogDirsResult, error)

	AlterReplicaLogDirs(req *kafkaprotocol.AlterReplicaLogDirsRequest) (*kafkaprotocol.AlterReplicaLogDirsResponse, error)

	// TryCompleteDelayedActions kicks purgatory: appends and reads parked waiting for
	// acknowledgement or data may have become completable by the request just processed.
	TryCompleteDelayedActions()
}

// GroupGateway is the group coordinator. Rebalance-protocol operations complete
// asynchronously; metadata operations answer inline.
type GroupGateway interface {
	FindCoordinator(keyType int8, key string) (Node, int16)

	JoinGroup(hdr *kafkaprotocol.RequestHeader, req *kafkaprotocol.JoinGroupRequest, completion func(resp *kafkaprotocol.JoinGroupResponse))
	SyncGroup(req *kafkaprotocol.SyncGroupRequest, completion func(resp *kafkaprotocol.SyncGroupResponse))
	Heartbeat(req *kafkaprotocol.HeartbeatRequest, completion func(resp *kafkaprotocol.HeartbeatResponse))
	LeaveGroup(req *kafkaprotocol.LeaveGroupRequest, completion func(resp *kafkaprotocol.LeaveGroupResponse))

	OffsetCommit(req *kafkaprotocol.OffsetCommitRequest) (*kafkaprotocol.OffsetCommitResponse, error)
	OffsetCommitTransactional(req *kafkaprotocol.TxnOffsetCommitRequest) (*kafkaprotocol.TxnOffsetCommitResponse, error)
	OffsetFetch(req *kafkaprotocol.OffsetFetchRequestOffsetFetchRequestGroup, requireStable bool) (*kafkaprotocol.OffsetFetchResponseOffsetFetchResponseGroup, error)
	OffsetDelete(req *kafkaprotocol.OffsetDeleteRequest) (*kafkaprotocol.OffsetDeleteResponse, error)

	ListGroups(statesFilter []string, typesFilter []string) ([]kafkaprotocol.ListGroupsResponseListedGroup, int16)
	DescribeGroups(groupIDs []string) []kafkaprotocol.DescribeGroupsResponseDescribedGroup
	DeleteGroups(groupIDs []string) []kafkaprotocol.DeleteGroupsResponseDeletableGroupResult

	ConsumerGroupHeartbeat(req *kafkaprotocol.ConsumerGroupHeartbeatRequest) (*kafkaprotocol.ConsumerGroupHeartbeatResponse, error)
	ConsumerGroupDescribe(groupIDs []string) []kafkaprotocol.ConsumerGroupDescribeResponseDescribedGroup
	ShareGroupHeartbeat(req *kafkaprotocol.ShareGroupHeartbeatRequest) (*kafkaprotocol.ShareGroupHeartbeatResponse, error)
	ShareGroupDescribe(groupIDs []string) []kafkaprotocol.ShareGroupDescribeResponseDescribedGroup

	// CompleteTransaction applies a transaction marker to an offsets-topic partition.
	CompleteTransaction(tp txnmarkers.TopicPartition, producerID int64, producerEpoch int16,
		coordinatorEpoch int32, commit bool, completion func(errorCode int16))
}

// TxnGateway is the transaction coordinator.
type TxnGateway interface {
	InitProducerID(req *kafkaprotocol.InitProducerIdRequest, completion func(resp *kafkaprotocol.InitProducerIdResponse))
	AddPartitionsToTxn(req *kafkaprotocol.AddPartitionsToTxnRequest) *kafkaprotocol.AddPartitionsToTxnResponse
	AddOffsetsToTxn(req *kafkaprotocol.AddOffsetsToTxnRequest) *kafkaprotocol.AddOffsetsToTxnResponse
	EndTxn(req *kafkaprotocol.EndTxnRequest, completion func(resp *kafkaprotocol.EndTxnResponse))
	DescribeTransactions(transactionalIDs []string) []kafkaprotocol.DescribeTransactionsResponseTransactionState
	ListTransactions(req *kafkaprotocol.ListTransactionsRequest) (*kafkaprotocol.ListTransactionsResponse, error)
}

// ShareFetchParams carries the request-level knobs for a share fetch.
type ShareFetchParams struct {
	MaxWaitMs  int32
	MinBytes   int32
	MaxBytes   int32
	Partitions []fetchsession.PartitionKey
	// MaxBytesByPartition holds the per-partition byte caps from the share session.
	MaxBytesByPartition map[fetchsession.PartitionKey]int32
}

// ShareAckEntry is one partition's acknowledgement batches.
type ShareAckEntry struct {
	Key     fetchsession.PartitionKey
	Batches []sharefetch.AcknowledgementBatch
}

// ShareGateway is the share-partition leader: it acquires records for share-group members and
// applies their acknowledgements.
type ShareGateway interface {
	FetchRecords(groupID string, memberID uuid.UUID, params ShareFetchParams, completion func(results []sharefetch.FetchResult))
	Acknowledge(groupID string, memberID uuid.UUID, entries []ShareAckEntry, completion func(results []sharefetch.AckResult))
	// AcquisitionLockTimeoutMs is the group's record lock duration, stamped on responses.
	AcquisitionLockTimeoutMs(groupID string) int32
}

// MarkerGateway is the replication-side surface transaction marker writes need: leadership
// checks before any append is attempted, and the marker append itself.
type MarkerGateway interface {
	txnmarkers.PartitionChecker
	txnmarkers.Appender
}

// TopicInfo is the resolved identity of a topic.
type TopicInfo struct {
	Name           string
	ID             uuid.UUID
	PartitionCount int32
}

// TopicResolver maps between topic names and topic ids, and bounds partition indexes.
type TopicResolver interface {
	ResolveName(name string) (TopicInfo, bool)
	ResolveID(id uuid.UUID) (TopicInfo, bool)
}

// Forwarder relays requests this broker does not serve locally to the cluster controller. The
// body is the raw request frame minus the header; the completion receives the raw response
// body. The codec stays with the transport on both legs.
type Forwarder interface {
	Forward(hdr *kafkaprotocol.RequestHeader, body []byte, completion func(respBody []byte, err error))
}
