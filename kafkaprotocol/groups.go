package kafkaprotocol

type OffsetCommitRequestOffsetCommitRequestPartition struct {
	// The partition index.
	PartitionIndex int32
	// The message offset to be committed.
	CommittedOffset int64
	// The leader epoch of this partition.
	CommittedLeaderEpoch int32
	// Any associated metadata the client wants to keep.
	CommittedMetadata *string
}

type OffsetCommitRequestOffsetCommitRequestTopic struct {
	// The topic name.
	Name *string
	// Each partition to commit offsets for.
	Partitions []OffsetCommitRequestOffsetCommitRequestPartition
}

type OffsetCommitRequest struct {
	// The unique group identifier.
	GroupId *string
	// The generation of the group if using the classic group protocol or the member epoch if
	// using the consumer protocol.
	GenerationIdOrMemberEpoch int32
	// The member ID assigned by the group coordinator.
	MemberId *string
	// The unique identifier of the consumer instance provided by end user.
	GroupInstanceId *string
	// The topics to commit offsets for.
	Topics []OffsetCommitRequestOffsetCommitRequestTopic
}

type OffsetCommitResponseOffsetCommitResponsePartition struct {
	// The partition index.
	PartitionIndex int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
}

type OffsetCommitResponseOffsetCommitResponseTopic struct {
	// The topic name.
	Name *string
	// The responses for each partition in the topic.
	Partitions []OffsetCommitResponseOffsetCommitResponsePartition
}

type OffsetCommitResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The responses for each topic.
	Topics []OffsetCommitResponseOffsetCommitResponseTopic
}

type OffsetFetchRequestOffsetFetchRequestTopics struct {
	// The topic name.
	Name *string
	// The partition indexes we would like to fetch offsets for.
	PartitionIndexes []int32
}

type OffsetFetchRequestOffsetFetchRequestGroup struct {
	// The group ID.
	GroupId *string
	// The member id.
	MemberId *string
	// The member epoch if using the new consumer protocol (KIP-848).
	MemberEpoch int32
	// Each topic we would like to fetch offsets for, or null to fetch offsets for all topics.
	Topics []OffsetFetchRequestOffsetFetchRequestTopics
}

type OffsetFetchRequest struct {
	// Each group we would like to fetch offsets for.
	Groups []OffsetFetchRequestOffsetFetchRequestGroup
	// Whether broker should hold on returning unstable offsets but set a retriable error code
	// for the partitions.
	RequireStable bool
}

type OffsetFetchResponseOffsetFetchResponsePartitions struct {
	// The partition index.
	PartitionIndex int32
	// The committed message offset.
	CommittedOffset int64
	// The leader epoch.
	CommittedLeaderEpoch int32
	// The partition metadata.
	Metadata *string
	// The partition-level error code, or 0 if there was no error.
	ErrorCode int16
}

type OffsetFetchResponseOffsetFetchResponseTopics struct {
	// The topic name.
	Name *string
	// The responses per partition.
	Partitions []OffsetFetchResponseOffsetFetchResponsePartitions
}

type OffsetFetchResponseOffsetFetchResponseGroup struct {
	// The group ID.
	GroupId *string
	// The responses per topic.
	Topics []OffsetFetchResponseOffsetFetchResponseTopics
	// The group-level error code, or 0 if there was no error.
	ErrorCode int16
}

type OffsetFetchResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The responses per group id.
	Groups []OffsetFetchResponseOffsetFetchResponseGroup
}

type OffsetDeleteRequestOffsetDeleteRequestPartition struct {
	// The partition index.
	PartitionIndex int32
}

type OffsetDeleteRequestOffsetDeleteRequestTopic struct {
	// The topic name.
	Name *string
	// Each partition to delete offsets for.
	Partitions []OffsetDeleteRequestOffsetDeleteRequestPartition
}

type OffsetDeleteRequest struct {
	// The unique group identifier.
	GroupId *string
	// The topics to delete offsets for.
	Topics []OffsetDeleteRequestOffsetDeleteRequestTopic
}

type OffsetDeleteResponseOffsetDeleteResponsePartition struct {
	// The partition index.
	PartitionIndex int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
}

type OffsetDeleteResponseOffsetDeleteResponseTopic struct {
	// The topic name.
	Name *string
	// The responses for each partition in the topic.
	Partitions []OffsetDeleteResponseOffsetDeleteResponsePartition
}

type OffsetDeleteResponse struct {
	// The top-level error code, or 0 if there was no error.
	ErrorCode int16
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The responses for each topic.
	Topics []OffsetDeleteResponseOffsetDeleteResponseTopic
}

type FindCoordinatorRequest struct {
	// The coordinator key.
	Key *string
	// The coordinator key type. (group, transaction, share).
	KeyType int8
	// The coordinator keys.
	CoordinatorKeys []*string
}

type FindCoordinatorResponseCoordinator struct {
	// The coordinator key.
	Key *string
	// The node id.
	NodeId int32
	// The host name.
	Host *string
	// The port.
	Port int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The error message, or null if there was no error.
	ErrorMessage *string
}

type FindCoordinatorResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The error message, or null if there was no error.
	ErrorMessage *string
	// The node id.
	NodeId int32
	// The host name.
	Host *string
	// The port.
	Port int32
	// Each coordinator result in the response.
	Coordinators []FindCoordinatorResponseCoordinator
}

type JoinGroupRequestJoinGroupRequestProtocol struct {
	// The protocol name.
	Name *string
	// The protocol metadata.
	Metadata []byte
}

type JoinGroupRequest struct {
	// The group identifier.
	GroupId *string
	// The coordinator considers the consumer dead if it receives no heartbeat after this
	// timeout in milliseconds.
	SessionTimeoutMs int32
	// The maximum time in milliseconds that the coordinator will wait for each member to rejoin
	// when rebalancing the group.
	RebalanceTimeoutMs int32
	// The member id assigned by the group coordinator.
	MemberId *string
	// The unique identifier of the consumer instance provided by end user.
	GroupInstanceId *string
	// The unique name the for class of protocols implemented by the group we want to join.
	ProtocolType *string
	// The list of protocols that the member supports.
	Protocols []JoinGroupRequestJoinGroupRequestProtocol
}

type JoinGroupResponseJoinGroupResponseMember struct {
	// The group member ID.
	MemberId *string
	// The unique identifier of the consumer instance provided by end user.
	GroupInstanceId *string
	// The group member metadata.
	Metadata []byte
}

type JoinGroupResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The generation ID of the group.
	GenerationId int32
	// The group protocol name.
	ProtocolName *string
	// The leader of the group.
	Leader *string
	// The member ID assigned by the group coordinator.
	MemberId *string
	// The group members.
	Members []JoinGroupResponseJoinGroupResponseMember
}

type SyncGroupRequestSyncGroupRequestAssignment struct {
	// The ID of the member to assign.
	MemberId *string
	// The member assignment.
	Assignment []byte
}

type SyncGroupRequest struct {
	// The unique group identifier.
	GroupId *string
	// The generation of the group.
	GenerationId int32
	// The member ID assigned by the group.
	MemberId *string
	// The unique identifier of the consumer instance provided by end user.
	GroupInstanceId *string
	// Each assignment provided by the leader.
	Assignments []SyncGroupRequestSyncGroupRequestAssignment
}

type SyncGroupResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// The member assignment.
	Assignment []byte
}

type HeartbeatRequest struct {
	// The group id.
	GroupId *string
	// The generation of the group.
	GenerationId int32
	// The member ID.
	MemberId *string
	// The unique identifier of the consumer instance provided by end user.
	GroupInstanceId *string
}

type HeartbeatResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
}

type LeaveGroupRequestMemberIdentity struct {
	// The member ID to remove from the group.
	MemberId *string
	// The group instance ID to remove from the group.
	GroupInstanceId *string
	// The reason why the member left the group.
	Reason *string
}

type LeaveGroupRequest struct {
	// The ID of the group to leave.
	GroupId *string
	// The member ID to remove from the group.
	MemberId *string
	// List of leaving member identities.
	Members []LeaveGroupRequestMemberIdentity
}

type LeaveGroupResponseMemberResponse struct {
	// The member ID to remove from the group.
	MemberId *string
	// The group instance ID to remove from the group.
	GroupInstanceId *string
	// The error code, or 0 if there was no error.
	ErrorCode int16
}

type LeaveGroupResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// List of leaving member responses.
	Members []LeaveGroupResponseMemberResponse
}

type DescribeGroupsRequest struct {
	// The names of the groups to describe.
	Groups []*string
	// Whether to include authorized operations.
	IncludeAuthorizedOperations bool
}

type DescribeGroupsResponseDescribedGroupMember struct {
	// The member id.
	MemberId *string
	// The unique identifier of the consumer instance provided by end user.
	GroupInstanceId *string
	// The client ID used in the member's latest join group request.
	ClientId *string
	// The client host.
	ClientHost *string
	// The metadata corresponding to the current group protocol in use.
	MemberMetadata []byte
	// The current assignment provided by the group leader.
	MemberAssignment []byte
}

type DescribeGroupsResponseDescribedGroup struct {
	// The describe error, or 0 if there was no error.
	ErrorCode int16
	// The group ID string.
	GroupId *string
	// The group state string, or the empty string.
	GroupState *string
	// The group protocol type, or the empty string.
	ProtocolType *string
	// The group protocol data, or the empty string.
	ProtocolData *string
	// The group members.
	Members []DescribeGroupsResponseDescribedGroupMember
	// 32-bit bitfield to represent authorized operations for this group.
	AuthorizedOperations int32
}

type DescribeGroupsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// Each described group.
	Groups []DescribeGroupsResponseDescribedGroup
}

type ListGroupsRequest struct {
	// The states of the groups we want to list. If empty, all groups are returned with their state.
	StatesFilter []*string
	// The types of the groups we want to list. If empty, all groups are returned with their type.
	TypesFilter []*string
}

type ListGroupsResponseListedGroup struct {
	// The group ID.
	GroupId *string
	// The group protocol type.
	ProtocolType *string
	// The group state name.
	GroupState *string
	// The group type name.
	GroupType *string
}

type ListGroupsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The error code, or 0 if there was no error.
	ErrorCode int16
	// Each group in the response.
	Groups []ListGroupsResponseListedGroup
}

type DeleteGroupsRequest struct {
	// The group names to delete.
	GroupsNames []*string
}

type DeleteGroupsResponseDeletableGroupResult struct {
	// The group id.
	GroupId *string
	// The deletion error, or 0 if the deletion succeeded.
	ErrorCode int16
}

type DeleteGroupsResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The deletion results.
	Results []DeleteGroupsResponseDeletableGroupResult
}
