package kafkaprotocol

type ShareFetchRequestAcknowledgementBatch struct {
	// First offset of batch of records to acknowledge.
	FirstOffset int64
	// Last offset (inclusive) of batch of records to acknowledge.
	LastOffset int64
	// Array of acknowledge types - 0:Gap, 1:Accept, 2:Release, 3:Reject.
	AcknowledgeTypes []int8
}

type ShareFetchRequestFetchPartition struct {
	// The partition index.
	PartitionIndex int32
	// The maximum bytes to fetch from this partition. 0 when only acknowledgement with no fetching.
	PartitionMaxBytes int32
	// Record batches to acknowledge.
	AcknowledgementBatches []ShareFetchRequestAcknowledgementBatch
}

type ShareFetchRequestFetchTopic struct {
	// The unique topic ID.
	TopicId []byte
	// The partitions to fetch.
	Partitions []ShareFetchRequestFetchPartition
}

type ShareFetchRequestForgottenTopic struct {
	// The unique topic ID.
	TopicId []byte
	// The partitions indexes to forget.
	Partitions []int32
}

type ShareFetchRequest struct {
	// The group identifier.
	GroupId *string
	// The member ID.
	MemberId *string
	// The current share session epoch: 0 to open a share session; -1 to close it; otherwise
	// increments for consecutive requests.
	ShareSessionEpoch int32
	// The maximum time in milliseconds to wait for the response.
	MaxWaitMs int32
	// The minimum bytes to accumulate in the response.
	MinBytes int32
	// The maximum bytes to fetch.
	MaxBytes int32
	// The topics to fetch.
	Topics []ShareFetchRequestFetchTopic
	// The partitions to remove from this share session.
	ForgottenTopicsData []ShareFetchRequestForgottenTopic
}

type ShareFetchResponseAcquiredRecords struct {
	// The earliest offset in this batch of acquired records.
	FirstOffset int64
	// The last offset of this batch of acquired records.
	LastOffset int64
	// The delivery count of this batch of acquired records.
	DeliveryCount int16
}

type ShareFetchResponseLeaderIdAndEpoch struct {
	// The ID of the current leader or -1 if the leader is unknown.
	LeaderId int32
	// The latest known leader epoch.
	LeaderEpoch int32
}

type ShareFetchResponsePartitionData struct {
	// The partition index.
	PartitionIndex int32
	// The fetch error code, or 0 if there was no fetch error.
	ErrorCode int16
	// The fetch error message, or null if there was no fetch error.
	ErrorMessage *string
	// The acknowledge error code, or 0 if there was no acknowledge error.
	AcknowledgeErrorCode int16
	// The acknowledge error message, or null if there was no acknowledge error.
	AcknowledgeErrorMessage *string
	CurrentLeader           ShareFetchResponseLeaderIdAndEpoch
	// The record data.
	Records []byte
	// The acquired records.
	AcquiredRecords []ShareFetchResponseAcquiredRecords
}

type ShareFetchResponseShareFetchableTopicResponse struct {
	// The unique topic ID.
	TopicId []byte
	// The topic partitions.
	Partitions []ShareFetchResponsePartitionData
}

type ShareFetchResponseNodeEndpoint struct {
	// The ID of the associated node.
	NodeId int32
	// The node's hostname.
	Host *string
	// The node's port.
	Port int32
	// The rack of the node, or null if it has not been assigned to a rack.
	Rack *string
}

type ShareFetchResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The top level response error code.
	ErrorCode int16
	// The top-level error message, or null if there was no error.
	ErrorMessage *string
	// The time in milliseconds for which the acquired records are locked.
	AcquisitionLockTimeoutMs int32
	// The response topics.
	Responses []ShareFetchResponseShareFetchableTopicResponse
	// Endpoints for all current leaders enumerated in PartitionData with error
	// NOT_LEADER_OR_FOLLOWER.
	NodeEndpoints []ShareFetchResponseNodeEndpoint
}

type ShareAcknowledgeRequestAcknowledgePartition struct {
	// The partition index.
	PartitionIndex int32
	// Record batches to acknowledge.
	AcknowledgementBatches []ShareFetchRequestAcknowledgementBatch
}

type ShareAcknowledgeRequestAcknowledgeTopic struct {
	// The unique topic ID.
	TopicId []byte
	// The partitions containing records to acknowledge.
	Partitions []ShareAcknowledgeRequestAcknowledgePartition
}

type ShareAcknowledgeRequest struct {
	// The group identifier.
	GroupId *string
	// The member ID.
	MemberId *string
	// The current share session epoch: 0 to open a share session; -1 to close it; otherwise
	// increments for consecutive requests.
	ShareSessionEpoch int32
	// The topics containing records to acknowledge.
	Topics []ShareAcknowledgeRequestAcknowledgeTopic
}

type ShareAcknowledgeResponsePartitionData struct {
	// The partition index.
	PartitionIndex int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The error message, or null if there was no error.
	ErrorMessage *string
	CurrentLeader ShareFetchResponseLeaderIdAndEpoch
}

type ShareAcknowledgeResponseShareAcknowledgeTopicResponse struct {
	// The unique topic ID.
	TopicId []byte
	// The topic partitions.
	Partitions []ShareAcknowledgeResponsePartitionData
}

type ShareAcknowledgeResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The top level response error code.
	ErrorCode int16
	// The top-level error message, or null if there was no error.
	ErrorMessage *string
	// The response topics.
	Responses []ShareAcknowledgeResponseShareAcknowledgeTopicResponse
	// Endpoints for all current leaders enumerated in PartitionData with error
	// NOT_LEADER_OR_FOLLOWER.
	NodeEndpoints []ShareFetchResponseNodeEndpoint
}
