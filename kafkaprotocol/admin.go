package kafkaprotocol

type ListOffsetsRequestListOffsetsPartition struct {
	// The partition index.
	PartitionIndex int32
	// The current leader epoch.
	CurrentLeaderEpoch int32
	// The current timestamp.
	Timestamp int64
}

type ListOffsetsRequestListOffsetsTopic struct {
	// The topic name.
	Name *string
	// Each partition in the request.
	Partitions []ListOffsetsRequestListOffsetsPartition
}

type ListOffsetsRequest struct {
	// The broker ID of the requester, or -1 if this request is being made by a normal consumer.
	ReplicaId int32
	// This setting controls the visibility of transactional records. With READ_COMMITTED
	// (isolation_level = 1), only offsets below the current LSO are visible.
	IsolationLevel int8
	// Each topic in the request.
	Topics []ListOffsetsRequestListOffsetsTopic
}

type ListOffsetsResponseListOffsetsPartitionResponse struct {
	// The partition index.
	PartitionIndex int32
	// The partition error code, or 0 if there was no error.
	ErrorCode int16
	// The timestamp associated with the returned offset.
	Timestamp int64
	// The returned offset.
	Offset int64
	// The leader epoch of the partition.
	LeaderEpoch int32
}

type ListOffsetsResponseListOffsetsTopicResponse struct {
	// The topic name.
	Name *string
	// Each partition in the response.
	Partitions []ListOffsetsResponseListOffsetsPartitionResponse
}

type ListOffsetsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// Each topic in the response.
	Topics []ListOffsetsResponseListOffsetsTopicResponse
}

type DeleteRecordsRequestDeleteRecordsPartition struct {
	// The partition index.
	PartitionIndex int32
	// The deletion offset.
	Offset int64
}

type DeleteRecordsRequestDeleteRecordsTopic struct {
	// The topic name.
	Name *string
	// Each partition that we want to delete records from.
	Partitions []DeleteRecordsRequestDeleteRecordsPartition
}

type DeleteRecordsRequest struct {
	// Each topic that we want to delete records from.
	Topics []DeleteRecordsRequestDeleteRecordsTopic
	// How long to wait for the deletion to complete, in milliseconds.
	TimeoutMs int32
}

type DeleteRecordsResponseDeleteRecordsPartitionResult struct {
	// The partition index.
	PartitionIndex int32
	// The partition low water mark.
	LowWatermark int64
	// The deletion error code, or 0 if the deletion succeeded.
	ErrorCode int16
}

type DeleteRecordsResponseDeleteRecordsTopicResult struct {
	// The topic name.
	Name *string
	// Each partition that we wanted to delete records from.
	Partitions []DeleteRecordsResponseDeleteRecordsPartitionResult
}

type DeleteRecordsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// Each topic that we wanted to delete records from.
	Topics []DeleteRecordsResponseDeleteRecordsTopicResult
}

type OffsetForLeaderEpochRequestOffsetForLeaderPartition struct {
	// The partition index.
	Partition int32
	// An epoch used to fence consumers/replicas with old metadata. If the epoch provided by the
	// client is larger than the current epoch known to the broker, then the UNKNOWN_LEADER_EPOCH
	// error code will be returned. If the provided epoch is smaller, then the FENCED_LEADER_EPOCH
	// error code will be returned.
	CurrentLeaderEpoch int32
	// The epoch to look up an offset for.
	LeaderEpoch int32
}

type OffsetForLeaderEpochRequestOffsetForLeaderTopic struct {
	// The topic name.
	Topic *string
	// Each partition to get offsets for.
	Partitions []OffsetForLeaderEpochRequestOffsetForLeaderPartition
}

type OffsetForLeaderEpochRequest struct {
	// The broker ID of the follower, of -1 if this request is from a consumer.
	ReplicaId int32
	// Each topic to get offsets for.
	Topics []OffsetForLeaderEpochRequestOffsetForLeaderTopic
}

type OffsetForLeaderEpochResponseEpochEndOffset struct {
	// The error code 0, or if there was no error.
	ErrorCode int16
	// The partition index.
	Partition int32
	// The leader epoch of the partition.
	LeaderEpoch int32
	// The end offset of the epoch.
	EndOffset int64
}

type OffsetForLeaderEpochResponseOffsetForLeaderTopicResult struct {
	// The topic name.
	Topic *string
	// Each partition in the topic we fetched offsets for.
	Partitions []OffsetForLeaderEpochResponseEpochEndOffset
}

type OffsetForLeaderEpochResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// Each topic we fetched offsets for.
	Topics []OffsetForLeaderEpochResponseOffsetForLeaderTopicResult
}

type DescribeProducersRequestTopicRequest struct {
	// The topic name.
	Name *string
	// The indexes of the partitions to list producers for.
	PartitionIndexes []int32
}

type DescribeProducersRequest struct {
	// The topics to list producers for.
	Topics []DescribeProducersRequestTopicRequest
}

type DescribeProducersResponseProducerState struct {
	// The producer id.
	ProducerId int64
	// The producer epoch.
	ProducerEpoch int32
	// The last sequence number sent by the producer.
	LastSequence int32
	// The last timestamp sent by the producer.
	LastTimestamp int64
	// The current epoch of the producer group.
	CoordinatorEpoch int32
	// The current transaction start offset of the producer.
	CurrentTxnStartOffset int64
}

type DescribeProducersResponsePartitionResponse struct {
	// The partition index.
	PartitionIndex int32
	// The partition error code, or 0 if there was no error.
	ErrorCode int16
	// The partition error message, which may be null if no additional details are available.
	ErrorMessage *string
	// The active producers for the partition.
	ActiveProducers []DescribeProducersResponseProducerState
}

type DescribeProducersResponseTopicResponse struct {
	// The topic name.
	Name *string
	// Each partition in the response.
	Partitions []DescribeProducersResponsePartitionResponse
}

type DescribeProducersResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// Each topic in the response.
	Topics []DescribeProducersResponseTopicResponse
}

type DescribeLogDirsRequestDescribableLogDirTopic struct {
	// The topic name.
	Topic *string
	// The partition indexes.
	Partitions []int32
}

type DescribeLogDirsRequest struct {
	// Each topic that we want to describe log directories for, or null for all topics.
	Topics []DescribeLogDirsRequestDescribableLogDirTopic
}

type DescribeLogDirsResponseDescribeLogDirsPartition struct {
	// The partition index.
	PartitionIndex int32
	// The size of the log segments in this partition in bytes.
	PartitionSize int64
	// The lag of the log's LEO w.r.t. partition's HW (if it is the current log for the
	// partition) or current replica's LEO (if it is the future log for the partition).
	OffsetLag int64
	// True if this log is created by AlterReplicaLogDirsRequest and will replace the current
	// log of the replica in the future.
	IsFutureKey bool
}

type DescribeLogDirsResponseDescribeLogDirsTopic struct {
	// The topic name.
	Name *string
	// The partitions.
	Partitions []DescribeLogDirsResponseDescribeLogDirsPartition
}

type DescribeLogDirsResponseDescribeLogDirsResult struct {
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The absolute log directory path.
	LogDir *string
	// The topics.
	Topics []DescribeLogDirsResponseDescribeLogDirsTopic
	// The total size in bytes of the volume the log directory is in.
	TotalBytes int64
	// The usable size in bytes of the volume the log directory is in.
	UsableBytes int64
}

type DescribeLogDirsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The log directories.
	Results []DescribeLogDirsResponseDescribeLogDirsResult
}

type AlterReplicaLogDirsRequestAlterReplicaLogDirTopic struct {
	// The topic name.
	Name *string
	// The partition indexes.
	Partitions []int32
}

type AlterReplicaLogDirsRequestAlterReplicaLogDir struct {
	// The absolute directory path.
	Path *string
	// The topics to add to the directory.
	Topics []AlterReplicaLogDirsRequestAlterReplicaLogDirTopic
}

type AlterReplicaLogDirsRequest struct {
	// The alterations to make for each directory.
	Dirs []AlterReplicaLogDirsRequestAlterReplicaLogDir
}

type AlterReplicaLogDirsResponseAlterReplicaLogDirPartitionResult struct {
	// The partition index.
	PartitionIndex int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
}

type AlterReplicaLogDirsResponseAlterReplicaLogDirTopicResult struct {
	// The name of the topic.
	TopicName *string
	// The results for each partition.
	Partitions []AlterReplicaLogDirsResponseAlterReplicaLogDirPartitionResult
}

type AlterReplicaLogDirsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The results for each topic.
	Results []AlterReplicaLogDirsResponseAlterReplicaLogDirTopicResult
}

type ApiVersionsRequest struct {
	// The name of the client.
	ClientSoftwareName *string
	// The version of the client.
	ClientSoftwareVersion *string
}

type ApiVersionsResponse struct {
	// The top-level error code.
	ErrorCode int16
	// The APIs supported by the broker.
	ApiKeys []ApiVersionsResponseApiVersion
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
}
