package kafkaprotocol

type ProduceRequestPartitionProduceData struct {
	// The partition index.
	Index int32
	// The record data to be produced.
	Records []byte
}

type ProduceRequestTopicProduceData struct {
	// The topic name.
	Name *string
	// The unique topic ID.
	TopicId []byte
	// Each partition to produce to.
	PartitionData []ProduceRequestPartitionProduceData
}

type ProduceRequest struct {
	// The transactional ID, or null if the producer is not transactional.
	TransactionalId *string
	// The number of acknowledgments the producer requires the leader to have received before
	// considering a request complete. Allowed values: 0 for no acknowledgments, 1 for only the
	// leader and -1 for the full ISR.
	Acks int16
	// The timeout to await a response in milliseconds.
	TimeoutMs int32
	// Each topic to produce to.
	TopicData []ProduceRequestTopicProduceData
}

type ProduceResponseBatchIndexAndErrorMessage struct {
	// The batch index of the record that caused the batch to be dropped.
	BatchIndex int32
	// The error message of the record that caused the batch to be dropped.
	BatchIndexErrorMessage *string
}

type ProduceResponseLeaderIdAndEpoch struct {
	// The ID of the current leader or -1 if the leader is unknown.
	LeaderId int32
	// The latest known leader epoch.
	LeaderEpoch int32
}

type ProduceResponsePartitionProduceResponse struct {
	// The partition index.
	Index int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The base offset.
	BaseOffset int64
	// The timestamp returned by broker after appending the messages, or -1 if LogAppendTime
	// is not used for the topic.
	LogAppendTimeMs int64
	// The log start offset.
	LogStartOffset int64
	// The batch indices of records that caused the batch to be dropped.
	RecordErrors []ProduceResponseBatchIndexAndErrorMessage
	// The global error message summarizing the common root cause of the records that caused
	// the batch to be dropped.
	ErrorMessage *string
	CurrentLeader ProduceResponseLeaderIdAndEpoch
}

type ProduceResponseTopicProduceResponse struct {
	// The topic name.
	Name *string
	// The unique topic ID.
	TopicId []byte
	// Each partition that we produced to within the topic.
	PartitionResponses []ProduceResponsePartitionProduceResponse
}

type ProduceResponseNodeEndpoint struct {
	// The ID of the associated node.
	NodeId int32
	// The node's hostname.
	Host *string
	// The node's port.
	Port int32
	// The rack of the node, or null if it has not been assigned to a rack.
	Rack *string
}

type ProduceResponse struct {
	// Each produce response.
	Responses []ProduceResponseTopicProduceResponse
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// Endpoints for all current leaders enumerated in PartitionProduceResponses, with errors
	// NOT_LEADER_OR_FOLLOWER and FENCED_LEADER_EPOCH.
	NodeEndpoints []ProduceResponseNodeEndpoint
}
