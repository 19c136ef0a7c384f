package kafkaprotocol

type ConsumerGroupHeartbeatRequestTopicPartitions struct {
	// The unique topic ID.
	TopicId []byte
	// The partitions.
	Partitions []int32
}

type ConsumerGroupHeartbeatRequest struct {
	// The group identifier.
	GroupId *string
	// The member id generated by the coordinator. The member id must be kept during the entire
	// lifetime of the member.
	MemberId *string
	// The current member epoch; 0 to join the group; -1 to leave the group; -2 to indicate that
	// the static member will rejoin.
	MemberEpoch int32
	// null if not provided or if it didn't change since the last heartbeat; the instance Id
	// otherwise.
	InstanceId *string
	// null if not provided or if it didn't change since the last heartbeat; the rack ID of
	// consumer otherwise.
	RackId *string
	// -1 if it didn't change since the last heartbeat; the maximum time in milliseconds that
	// the coordinator will wait on the member to revoke its partitions otherwise.
	RebalanceTimeoutMs int32
	// null if it didn't change since the last heartbeat; the subscribed topic names otherwise.
	SubscribedTopicNames []*string
	// null if not used or if it didn't change since the last heartbeat; the server side
	// assignor to use otherwise.
	ServerAssignor *string
	// null if it didn't change since the last heartbeat; the partitions owned by the member.
	TopicPartitions []ConsumerGroupHeartbeatRequestTopicPartitions
}

type ConsumerGroupHeartbeatResponseTopicPartitions struct {
	// The unique topic ID.
	TopicId []byte
	// The partitions.
	Partitions []int32
}

type ConsumerGroupHeartbeatResponseAssignment struct {
	// The partitions assigned to the member.
	TopicPartitions []ConsumerGroupHeartbeatResponseTopicPartitions
}

type ConsumerGroupHeartbeatResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The top-level error code, or 0 if there was no error.
	ErrorCode int16
	// The top-level error message, or null if there was no error.
	ErrorMessage *string
	// The member id generated by the coordinator. Only provided when the member joins with
	// MemberEpoch == 0.
	MemberId *string
	// The member epoch.
	MemberEpoch int32
	// The heartbeat interval in milliseconds.
	HeartbeatIntervalMs int32
	// null if not provided; the assignment otherwise.
	Assignment *ConsumerGroupHeartbeatResponseAssignment
}

type ConsumerGroupDescribeRequest struct {
	// The ids of the groups to describe.
	GroupIds []*string
	// Whether to include authorized operations.
	IncludeAuthorizedOperations bool
}

type ConsumerGroupDescribeResponseTopicPartitions struct {
	// The topic ID.
	TopicId []byte
	// The topic name.
	TopicName *string
	// The partitions.
	Partitions []int32
}

type ConsumerGroupDescribeResponseAssignment struct {
	// The assigned topic-partitions to the member.
	TopicPartitions []ConsumerGroupDescribeResponseTopicPartitions
}

type ConsumerGroupDescribeResponseMember struct {
	// The member ID.
	MemberId *string
	// The member instance ID.
	InstanceId *string
	// The member rack ID.
	RackId *string
	// The current member epoch.
	MemberEpoch int32
	// The client ID.
	ClientId *string
	// The client host.
	ClientHost *string
	// The subscribed topic names.
	SubscribedTopicNames []*string
	// The server assignor.
	Assignor *string
	// The current assignment.
	Assignment ConsumerGroupDescribeResponseAssignment
	// The target assignment.
	TargetAssignment ConsumerGroupDescribeResponseAssignment
}

type ConsumerGroupDescribeResponseDescribedGroup struct {
	// The describe error, or 0 if there was no error.
	ErrorCode int16
	// The top-level error message, or null if there was no error.
	ErrorMessage *string
	// The group ID string.
	GroupId *string
	// The group state string, or the empty string.
	GroupState *string
	// The group epoch.
	GroupEpoch int32
	// The assignment epoch.
	AssignmentEpoch int32
	// The selected assignor.
	AssignorName *string
	// The members.
	Members []ConsumerGroupDescribeResponseMember
	// 32-bit bitfield to represent authorized operations for this group.
	AuthorizedOperations int32
}

type ConsumerGroupDescribeResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// Each described group.
	Groups []ConsumerGroupDescribeResponseDescribedGroup
}

type ShareGroupHeartbeatRequest struct {
	// The group identifier.
	GroupId *string
	// The member id generated by the coordinator. The member id must be kept during the entire
	// lifetime of the member.
	MemberId *string
	// The current member epoch; 0 to join the group; -1 to leave the group.
	MemberEpoch int32
	// null if not provided or if it didn't change since the last heartbeat; the rack ID of the
	// member otherwise.
	RackId *string
	// null if it didn't change since the last heartbeat; the subscribed topic names otherwise.
	SubscribedTopicNames []*string
}

type ShareGroupHeartbeatResponseTopicPartitions struct {
	// The unique topic ID.
	TopicId []byte
	// The partitions.
	Partitions []int32
}

type ShareGroupHeartbeatResponseAssignment struct {
	// The partitions assigned to the member.
	TopicPartitions []ShareGroupHeartbeatResponseTopicPartitions
}

type ShareGroupHeartbeatResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// The top-level error code, or 0 if there was no error.
	ErrorCode int16
	// The top-level error message, or null if there was no error.
	ErrorMessage *string
	// The member id generated by the coordinator. Only provided when the member joins with
	// MemberEpoch == 0.
	MemberId *string
	// The member epoch.
	MemberEpoch int32
	// The heartbeat interval in milliseconds.
	HeartbeatIntervalMs int32
	// null if not provided; the assignment otherwise.
	Assignment *ShareGroupHeartbeatResponseAssignment
}

type ShareGroupDescribeRequest struct {
	// The ids of the groups to describe.
	GroupIds []*string
	// Whether to include authorized operations.
	IncludeAuthorizedOperations bool
}

type ShareGroupDescribeResponseTopicPartitions struct {
	// The topic ID.
	TopicId []byte
	// The topic name.
	TopicName *string
	// The partitions.
	Partitions []int32
}

type ShareGroupDescribeResponseAssignment struct {
	// The assigned topic-partitions to the member.
	TopicPartitions []ShareGroupDescribeResponseTopicPartitions
}

type ShareGroupDescribeResponseMember struct {
	// The member ID.
	MemberId *string
	// The member rack ID.
	RackId *string
	// The current member epoch.
	MemberEpoch int32
	// The client ID.
	ClientId *string
	// The client host.
	ClientHost *string
	// The subscribed topic names.
	SubscribedTopicNames []*string
	// The current assignment.
	Assignment ShareGroupDescribeResponseAssignment
}

type ShareGroupDescribeResponseDescribedGroup struct {
	// The describe error, or 0 if there was no error.
	ErrorCode int16
	// The top-level error message, or null if there was no error.
	ErrorMessage *string
	// The group ID string.
	GroupId *string
	// The group state string, or the empty string.
	GroupState *string
	// The group epoch.
	GroupEpoch int32
	// The assignment epoch.
	AssignmentEpoch int32
	// The selected assignor.
	AssignorName *string
	// The members.
	Members []ShareGroupDescribeResponseMember
	// 32-bit bitfield to represent authorized operations for this group.
	AuthorizedOperations int32
}

type ShareGroupDescribeResponse struct {
	// The duration in milliseconds for which the request was throttled due to a quota violation,
	// or zero if the request did not violate any quota.
	ThrottleTimeMs int32
	// Each described group.
	Groups []ShareGroupDescribeResponseDescribedGroup
}
