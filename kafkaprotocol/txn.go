package kafkaprotocol

type InitProducerIdRequest struct {
	// The transactional id, or null if the producer is not transactional.
	TransactionalId *string
	// The time in ms to wait before aborting idle transactions sent by this producer.
	TransactionTimeoutMs int32
	// The producer id. This is used to disambiguate requests if a transactional id is reused
	// following its expiration.
	ProducerId int64
	// The producer's current epoch. This will be checked against the producer epoch on the
	// broker, and the request will return an error if they do not match.
	ProducerEpoch int16
}

type InitProducerIdResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The current producer id.
	ProducerId int64
	// The current epoch associated with the producer id.
	ProducerEpoch int16
}

type AddPartitionsToTxnRequestTopic struct {
	// The name of the topic.
	Name *string
	// The partition indexes to add to the transaction.
	Partitions []int32
}

type AddPartitionsToTxnRequest struct {
	// The transactional id corresponding to the transaction.
	TransactionalId *string
	// Current producer id in use by the transactional id.
	ProducerId int64
	// Current epoch associated with the producer id.
	ProducerEpoch int16
	// The partitions to add to the transaction.
	Topics []AddPartitionsToTxnRequestTopic
}

type AddPartitionsToTxnResponsePartitionResult struct {
	// The partition indexes.
	PartitionIndex int32
	// The response error code.
	PartitionErrorCode int16
}

type AddPartitionsToTxnResponseTopicResult struct {
	// The topic name.
	Name *string
	// The results for each partition.
	ResultsByPartition []AddPartitionsToTxnResponsePartitionResult
}

type AddPartitionsToTxnResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The results for each topic.
	ResultsByTopic []AddPartitionsToTxnResponseTopicResult
}

type AddOffsetsToTxnRequest struct {
	// The transactional id corresponding to the transaction.
	TransactionalId *string
	// Current producer id in use by the transactional id.
	ProducerId int64
	// Current epoch associated with the producer id.
	ProducerEpoch int16
	// The unique group identifier.
	GroupId *string
}

type AddOffsetsToTxnResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The response error code, or 0 if there was no error.
	ErrorCode int16
}

type EndTxnRequest struct {
	// The ID of the transaction to end.
	TransactionalId *string
	// The producer ID.
	ProducerId int64
	// The current epoch associated with the producer.
	ProducerEpoch int16
	// True if the transaction was committed, false if it was aborted.
	Committed bool
}

type EndTxnResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
}

type WriteTxnMarkersRequestWritableTxnMarkerTopic struct {
	// The topic name.
	Name *string
	// The indexes of the partitions to write transaction markers for.
	PartitionIndexes []int32
}

type WriteTxnMarkersRequestWritableTxnMarker struct {
	// The current producer ID.
	ProducerId int64
	// The current epoch associated with the producer ID.
	ProducerEpoch int16
	// The result of the transaction to write to the partitions (false = ABORT, true = COMMIT).
	TransactionResult bool
	// The topics to write markers for.
	Topics []WriteTxnMarkersRequestWritableTxnMarkerTopic
	// Epoch associated with the transaction state partition hosted by this transaction coordinator.
	CoordinatorEpoch int32
}

type WriteTxnMarkersRequest struct {
	// The transaction markers to be written.
	Markers []WriteTxnMarkersRequestWritableTxnMarker
}

type WriteTxnMarkersResponseWritableTxnMarkerPartitionResult struct {
	// The partition index.
	PartitionIndex int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
}

type WriteTxnMarkersResponseWritableTxnMarkerTopicResult struct {
	// The topic name.
	Name *string
	// The results by partition.
	Partitions []WriteTxnMarkersResponseWritableTxnMarkerPartitionResult
}

type WriteTxnMarkersResponseWritableTxnMarkerResult struct {
	// The current producer ID in use by the transactional ID.
	ProducerId int64
	// The results by topic.
	Topics []WriteTxnMarkersResponseWritableTxnMarkerTopicResult
}

type WriteTxnMarkersResponse struct {
	// The results for writing makers.
	Markers []WriteTxnMarkersResponseWritableTxnMarkerResult
}

type TxnOffsetCommitRequestTxnOffsetCommitRequestPartition struct {
	// The index of the partition within the topic.
	PartitionIndex int32
	// The message offset to be committed.
	CommittedOffset int64
	// The leader epoch of the last consumed record.
	CommittedLeaderEpoch int32
	// Any associated metadata the client wants to keep.
	CommittedMetadata *string
}

type TxnOffsetCommitRequestTxnOffsetCommitRequestTopic struct {
	// The topic name.
	Name *string
	// The partitions inside the topic that we want to commit offsets for.
	Partitions []TxnOffsetCommitRequestTxnOffsetCommitRequestPartition
}

type TxnOffsetCommitRequest struct {
	// The ID of the transaction.
	TransactionalId *string
	// The ID of the group.
	GroupId *string
	// The current producer ID in use by the transactional ID.
	ProducerId int64
	// The current epoch associated with the producer ID.
	ProducerEpoch int16
	// The generation of the consumer.
	GenerationId int32
	// The member ID assigned by the group coordinator.
	MemberId *string
	// The unique identifier of the consumer instance provided by end user.
	GroupInstanceId *string
	// Each topic that we want to commit offsets for.
	Topics []TxnOffsetCommitRequestTxnOffsetCommitRequestTopic
}

type TxnOffsetCommitResponseTxnOffsetCommitResponsePartition struct {
	// The partition index.
	PartitionIndex int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
}

type TxnOffsetCommitResponseTxnOffsetCommitResponseTopic struct {
	// The topic name.
	Name *string
	// The responses for each partition in the topic.
	Partitions []TxnOffsetCommitResponseTxnOffsetCommitResponsePartition
}

type TxnOffsetCommitResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The responses for each topic.
	Topics []TxnOffsetCommitResponseTxnOffsetCommitResponseTopic
}

type DescribeTransactionsRequest struct {
	// Array of transactionalIds to include in describe results. If empty, then no results will
	// be returned.
	TransactionalIds []*string
}

type DescribeTransactionsResponseTopicData struct {
	// The topic name.
	Topic *string
	// The partition indexes.
	Partitions []int32
}

type DescribeTransactionsResponseTransactionState struct {
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The transactional id.
	TransactionalId *string
	// The current transaction state of the producer.
	TransactionState *string
	// The timeout in milliseconds for the transaction.
	TransactionTimeoutMs int32
	// The start time of the transaction in milliseconds.
	TransactionStartTimeMs int64
	// The current producer id associated with the transaction.
	ProducerId int64
	// The current epoch associated with the producer id.
	ProducerEpoch int16
	// The set of partitions included in the current transaction (if active).
	Topics []DescribeTransactionsResponseTopicData
}

type DescribeTransactionsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The current state of each transaction.
	TransactionStates []DescribeTransactionsResponseTransactionState
}

type ListTransactionsRequest struct {
	// The transaction states to filter by: if empty, all transactions are returned.
	StateFilters []*string
	// The producerIds to filter by: if empty, all transactions will be returned.
	ProducerIdFilters []int64
	// Duration (in millis) to filter by: if < 0, all transactions will be returned;
	// otherwise, only transactions running longer than this duration will be returned.
	DurationFilterMs int64
}

type ListTransactionsResponseTransactionState struct {
	// The transactional id.
	TransactionalId *string
	// The producer id.
	ProducerId int64
	// The current transaction state of the producer.
	TransactionState *string
}

type ListTransactionsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// Set of state filters provided in the request which were unknown to the transaction coordinator.
	UnknownStateFilters []*string
	// The current state of each transaction.
	TransactionStates []ListTransactionsResponseTransactionState
}
