package kafkaprotocol

type FetchRequestReplicaState struct {
	// The replica ID of the follower, or -1 if this request is from a consumer.
	ReplicaId int32
	// The epoch of this follower, or -1 if not available.
	ReplicaEpoch int64
}

type FetchRequestFetchPartition struct {
	// The partition index.
	Partition int32
	// The current leader epoch of the partition.
	CurrentLeaderEpoch int32
	// The message offset.
	FetchOffset int64
	// The epoch of the last fetched record or -1 if there is none.
	LastFetchedEpoch int32
	// The earliest available offset of the follower replica. The field is only used when the
	// request is sent by the follower.
	LogStartOffset int64
	// The maximum bytes to fetch from this partition.
	PartitionMaxBytes int32
}

type FetchRequestFetchTopic struct {
	// The name of the topic to fetch.
	Topic *string
	// The unique topic ID.
	TopicId []byte
	// The partitions to fetch.
	Partitions []FetchRequestFetchPartition
}

type FetchRequestForgottenTopic struct {
	// The topic name.
	Topic *string
	// The unique topic ID.
	TopicId []byte
	// The partitions indexes to forget.
	Partitions []int32
}

type FetchRequest struct {
	// The clusterId if known.
	ClusterId *string
	// The broker ID of the follower, or -1 if this request is from a consumer.
	ReplicaId    int32
	ReplicaState FetchRequestReplicaState
	// The maximum time in milliseconds to wait for the response.
	MaxWaitMs int32
	// The minimum bytes to accumulate in the response.
	MinBytes int32
	// The maximum bytes to fetch.
	MaxBytes int32
	// This setting controls the visibility of transactional records. With READ_COMMITTED
	// (isolation_level = 1) only data below the current LSO is returned.
	IsolationLevel int8
	// The fetch session ID.
	SessionId int32
	// The fetch session epoch, which is used for ordering requests in a session.
	SessionEpoch int32
	// The topics to fetch.
	Topics []FetchRequestFetchTopic
	// In an incremental fetch request, the partitions to remove.
	ForgottenTopicsData []FetchRequestForgottenTopic
	// Rack ID of the consumer making this request.
	RackId *string
}

type FetchResponseEpochEndOffset struct {
	Epoch     int32
	EndOffset int64
}

type FetchResponseLeaderIdAndEpoch struct {
	// The ID of the current leader or -1 if the leader is unknown.
	LeaderId int32
	// The latest known leader epoch.
	LeaderEpoch int32
}

type FetchResponseAbortedTransaction struct {
	// The producer id associated with the aborted transaction.
	ProducerId int64
	// The first offset in the aborted transaction.
	FirstOffset int64
}

type FetchResponsePartitionData struct {
	// The partition index.
	PartitionIndex int32
	// The error code, or 0 if there was no fetch error.
	ErrorCode int16
	// The current high water mark.
	HighWatermark int64
	// The last stable offset (or LSO) of the partition. This is the last offset such that the
	// state of all transactional records prior to this offset have been decided (ABORTED or
	// COMMITTED).
	LastStableOffset int64
	// The current log start offset.
	LogStartOffset int64
	// In case divergence is detected based on the LastFetchedEpoch and FetchOffset in the
	// request, this field indicates the largest epoch and its end offset such that subsequent
	// records are known to diverge.
	DivergingEpoch FetchResponseEpochEndOffset
	CurrentLeader  FetchResponseLeaderIdAndEpoch
	// The aborted transactions.
	AbortedTransactions []FetchResponseAbortedTransaction
	// The preferred read replica for the consumer to use on its next fetch request.
	PreferredReadReplica int32
	// The record data.
	Records []byte
}

type FetchResponseFetchableTopicResponse struct {
	// The topic name.
	Topic *string
	// The unique topic ID.
	TopicId []byte
	// The topic partitions.
	Partitions []FetchResponsePartitionData
}

type FetchResponseNodeEndpoint struct {
	// The ID of the associated node.
	NodeId int32
	// The node's hostname.
	Host *string
	// The node's port.
	Port int32
	// The rack of the node, or null if it has not been assigned to a rack.
	Rack *string
}

type FetchResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The top level response error code.
	ErrorCode int16
	// The fetch session ID, or 0 if this is not part of a fetch session.
	SessionId int32
	// The response topics.
	Responses []FetchResponseFetchableTopicResponse
	// Endpoints for all current leaders enumerated in PartitionData, with errors
	// NOT_LEADER_OR_FOLLOWER and FENCED_LEADER_EPOCH.
	NodeEndpoints []FetchResponseNodeEndpoint
}
