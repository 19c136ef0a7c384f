package apis

import (
	"time"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
)

const (
	coordinatorKeyTypeGroup       = int8(0)
	coordinatorKeyTypeTransaction = int8(1)
	coordinatorKeyTypeShare       = int8(2)
)

func (d *Dispatcher) handleFindCoordinator(ctx *RequestContext, req *kafkaprotocol.FindCoordinatorRequest) error {
	lookup := func(key string) kafkaprotocol.FindCoordinatorResponseCoordinator {
		coordinator := kafkaprotocol.FindCoordinatorResponseCoordinator{
			Key:    common.StrPtr(key),
			NodeId: -1,
		}
		var authorized bool
		switch req.KeyType {
		case coordinatorKeyTypeGroup, coordinatorKeyTypeShare:
			authorized = d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup, key, acls.OperationDescribe)
			if !authorized {
				coordinator.ErrorCode = kafkaprotocol.ErrorCodeGroupAuthorizationFailed
			}
		case coordinatorKeyTypeTransaction:
			authorized = d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTransactionalID, key, acls.OperationDescribe)
			if !authorized {
				coordinator.ErrorCode = kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed
			}
		default:
			coordinator.ErrorCode = kafkaprotocol.ErrorCodeInvalidRequest
		}
		if coordinator.ErrorCode != kafkaprotocol.ErrorCodeNone {
			return coordinator
		}
		node, errCode := d.groups.FindCoordinator(req.KeyType, key)
		coordinator.ErrorCode = errCode
		if errCode == kafkaprotocol.ErrorCodeNone {
			coordinator.NodeId = node.NodeID
			coordinator.Host = common.StrPtr(node.Host)
			coordinator.Port = node.Port
		}
		return coordinator
	}

	resp := &kafkaprotocol.FindCoordinatorResponse{}
	if ctx.Header.ApiVersion >= 4 {
		for _, key := range req.CoordinatorKeys {
			resp.Coordinators = append(resp.Coordinators, lookup(common.SafeDerefStringPtr(key)))
		}
		return ctx.SendResponse(resp)
	}
	coordinator := lookup(common.SafeDerefStringPtr(req.Key))
	resp.ErrorCode = coordinator.ErrorCode
	resp.ErrorMessage = coordinator.ErrorMessage
	resp.NodeId = coordinator.NodeId
	resp.Host = coordinator.Host
	resp.Port = coordinator.Port
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleJoinGroup(ctx *RequestContext, req *kafkaprotocol.JoinGroupRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.JoinGroupResponse{
			ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
			MemberId:  req.MemberId,
		})
	}
	hdr := ctx.Header
	d.groups.JoinGroup(&hdr, req, func(resp *kafkaprotocol.JoinGroupResponse) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		if err := ctx.SendResponse(resp); err != nil {
			log.Warnf("failed to send join group response: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) handleSyncGroup(ctx *RequestContext, req *kafkaprotocol.SyncGroupRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.SyncGroupResponse{
			ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
		})
	}
	d.groups.SyncGroup(req, func(resp *kafkaprotocol.SyncGroupResponse) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		if err := ctx.SendResponse(resp); err != nil {
			log.Warnf("failed to send sync group response: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) handleHeartbeat(ctx *RequestContext, req *kafkaprotocol.HeartbeatRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.HeartbeatResponse{
			ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
		})
	}
	d.groups.Heartbeat(req, func(resp *kafkaprotocol.HeartbeatResponse) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		if err := ctx.SendResponse(resp); err != nil {
			log.Warnf("failed to send heartbeat response: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) handleLeaveGroup(ctx *RequestContext, req *kafkaprotocol.LeaveGroupRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.LeaveGroupResponse{
			ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
		})
	}
	d.groups.LeaveGroup(req, func(resp *kafkaprotocol.LeaveGroupResponse) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		if err := ctx.SendResponse(resp); err != nil {
			log.Warnf("failed to send leave group response: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) handleOffsetCommit(ctx *RequestContext, req *kafkaprotocol.OffsetCommitRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(offsetCommitErrorResponse(req, kafkaprotocol.ErrorCodeGroupAuthorizationFailed))
	}
	preflight := map[string]int16{}
	filtered := *req
	filtered.Topics = nil
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, name, acls.OperationRead) {
			preflight[name] = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			continue
		}
		if _, ok := d.resolver.ResolveName(name); !ok {
			preflight[name] = kafkaprotocol.ErrorCodeUnknownTopicOrPartition
			continue
		}
		filtered.Topics = append(filtered.Topics, topic)
	}
	byTopic := map[string][]kafkaprotocol.OffsetCommitResponseOffsetCommitResponsePartition{}
	if len(filtered.Topics) > 0 {
		coordResp, err := d.groups.OffsetCommit(&filtered)
		if err != nil {
			log.Warnf("offset commit failed: %v", err)
			return ctx.SendResponse(offsetCommitErrorResponse(req, errorCodeForGroupFailure(err)))
		}
		for _, topicResp := range coordResp.Topics {
			byTopic[common.SafeDerefStringPtr(topicResp.Name)] = topicResp.Partitions
		}
	}
	resp := &kafkaprotocol.OffsetCommitResponse{}
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		topicResp := kafkaprotocol.OffsetCommitResponseOffsetCommitResponseTopic{Name: topic.Name}
		if errCode, failed := preflight[name]; failed {
			for _, partition := range topic.Partitions {
				topicResp.Partitions = append(topicResp.Partitions,
					kafkaprotocol.OffsetCommitResponseOffsetCommitResponsePartition{
						PartitionIndex: partition.PartitionIndex,
						ErrorCode:      errCode,
					})
			}
		} else {
			topicResp.Partitions = byTopic[name]
		}
		resp.Topics = append(resp.Topics, topicResp)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleOffsetFetch(ctx *RequestContext, req *kafkaprotocol.OffsetFetchRequest) error {
	resp := &kafkaprotocol.OffsetFetchResponse{}
	for i := range req.Groups {
		group := &req.Groups[i]
		groupID := common.SafeDerefStringPtr(group.GroupId)
		if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup, groupID, acls.OperationDescribe) {
			resp.Groups = append(resp.Groups, kafkaprotocol.OffsetFetchResponseOffsetFetchResponseGroup{
				GroupId:   group.GroupId,
				ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
			})
			continue
		}
		groupResp, err := d.groups.OffsetFetch(group, req.RequireStable)
		if err != nil {
			log.Warnf("offset fetch for group %s failed: %v", groupID, err)
			resp.Groups = append(resp.Groups, kafkaprotocol.OffsetFetchResponseOffsetFetchResponseGroup{
				GroupId:   group.GroupId,
				ErrorCode: errorCodeForGroupFailure(err),
			})
			continue
		}
		// Topics the principal cannot describe are dropped from the response, not errored,
		// so their existence is not revealed.
		var visible []kafkaprotocol.OffsetFetchResponseOffsetFetchResponseTopics
		for _, topicResp := range groupResp.Topics {
			if d.authFilter.AuthorizeNoAudit(ctx.Principal, acls.ResourceTypeTopic,
				common.SafeDerefStringPtr(topicResp.Name), acls.OperationDescribe) {
				visible = append(visible, topicResp)
			}
		}
		groupResp.Topics = visible
		resp.Groups = append(resp.Groups, *groupResp)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleOffsetDelete(ctx *RequestContext, req *kafkaprotocol.OffsetDeleteRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationDelete) {
		return ctx.SendResponse(&kafkaprotocol.OffsetDeleteResponse{
			ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
		})
	}
	preflight := map[string]int16{}
	filtered := *req
	filtered.Topics = nil
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, name, acls.OperationRead) {
			preflight[name] = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			continue
		}
		filtered.Topics = append(filtered.Topics, topic)
	}
	var coordResp *kafkaprotocol.OffsetDeleteResponse
	if len(filtered.Topics) > 0 {
		var err error
		coordResp, err = d.groups.OffsetDelete(&filtered)
		if err != nil {
			log.Warnf("offset delete failed: %v", err)
			return ctx.SendResponse(&kafkaprotocol.OffsetDeleteResponse{
				ErrorCode: errorCodeForGroupFailure(err),
			})
		}
		if coordResp.ErrorCode != kafkaprotocol.ErrorCodeNone {
			return ctx.SendResponse(&kafkaprotocol.OffsetDeleteResponse{ErrorCode: coordResp.ErrorCode})
		}
	}
	byTopic := map[string][]kafkaprotocol.OffsetDeleteResponseOffsetDeleteResponsePartition{}
	if coordResp != nil {
		for _, topicResp := range coordResp.Topics {
			byTopic[common.SafeDerefStringPtr(topicResp.Name)] = topicResp.Partitions
		}
	}
	resp := &kafkaprotocol.OffsetDeleteResponse{}
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		topicResp := kafkaprotocol.OffsetDeleteResponseOffsetDeleteResponseTopic{Name: topic.Name}
		if errCode, failed := preflight[name]; failed {
			for _, partition := range topic.Partitions {
				topicResp.Partitions = append(topicResp.Partitions,
					kafkaprotocol.OffsetDeleteResponseOffsetDeleteResponsePartition{
						PartitionIndex: partition.PartitionIndex,
						ErrorCode:      errCode,
					})
			}
		} else {
			topicResp.Partitions = byTopic[name]
		}
		resp.Topics = append(resp.Topics, topicResp)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleListGroups(ctx *RequestContext, req *kafkaprotocol.ListGroupsRequest) error {
	groups, errCode := d.groups.ListGroups(derefStrings(req.StatesFilter), derefStrings(req.TypesFilter))
	resp := &kafkaprotocol.ListGroupsResponse{ErrorCode: errCode}
	// Groups the principal cannot describe are filtered out rather than errored; listing is
	// a visibility operation.
	for _, group := range groups {
		if d.authFilter.AuthorizeNoAudit(ctx.Principal, acls.ResourceTypeGroup,
			common.SafeDerefStringPtr(group.GroupId), acls.OperationDescribe) {
			resp.Groups = append(resp.Groups, group)
		}
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleDescribeGroups(ctx *RequestContext, req *kafkaprotocol.DescribeGroupsRequest) error {
	authorized, unauthorized := d.authFilter.PartitionByAuthorized(ctx.Principal, acls.ResourceTypeGroup,
		acls.OperationDescribe, derefStrings(req.Groups))
	described := d.groups.DescribeGroups(authorized)
	byID := map[string]kafkaprotocol.DescribeGroupsResponseDescribedGroup{}
	for _, group := range described {
		byID[common.SafeDerefStringPtr(group.GroupId)] = group
	}
	deniedSet := map[string]bool{}
	for _, groupID := range unauthorized {
		deniedSet[groupID] = true
	}
	resp := &kafkaprotocol.DescribeGroupsResponse{}
	for _, groupID := range req.Groups {
		id := common.SafeDerefStringPtr(groupID)
		if deniedSet[id] {
			resp.Groups = append(resp.Groups, kafkaprotocol.DescribeGroupsResponseDescribedGroup{
				ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
				GroupId:   groupID,
			})
			continue
		}
		group, ok := byID[id]
		if !ok {
			group = kafkaprotocol.DescribeGroupsResponseDescribedGroup{
				ErrorCode: kafkaprotocol.ErrorCodeGroupIDNotFound,
				GroupId:   groupID,
			}
		}
		resp.Groups = append(resp.Groups, group)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleDeleteGroups(ctx *RequestContext, req *kafkaprotocol.DeleteGroupsRequest) error {
	authorized, unauthorized := d.authFilter.PartitionByAuthorized(ctx.Principal, acls.ResourceTypeGroup,
		acls.OperationDelete, derefStrings(req.GroupsNames))
	results := d.groups.DeleteGroups(authorized)
	byID := map[string]kafkaprotocol.DeleteGroupsResponseDeletableGroupResult{}
	for _, result := range results {
		byID[common.SafeDerefStringPtr(result.GroupId)] = result
	}
	deniedSet := map[string]bool{}
	for _, groupID := range unauthorized {
		deniedSet[groupID] = true
	}
	resp := &kafkaprotocol.DeleteGroupsResponse{}
	for _, groupID := range req.GroupsNames {
		id := common.SafeDerefStringPtr(groupID)
		if deniedSet[id] {
			resp.Results = append(resp.Results, kafkaprotocol.DeleteGroupsResponseDeletableGroupResult{
				GroupId:   groupID,
				ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
			})
			continue
		}
		result, ok := byID[id]
		if !ok {
			result = kafkaprotocol.DeleteGroupsResponseDeletableGroupResult{
				GroupId:   groupID,
				ErrorCode: kafkaprotocol.ErrorCodeGroupIDNotFound,
			}
		}
		resp.Results = append(resp.Results, result)
	}
	return ctx.SendResponse(resp)
}

func offsetCommitErrorResponse(req *kafkaprotocol.OffsetCommitRequest, errCode int16) *kafkaprotocol.OffsetCommitResponse {
	resp := &kafkaprotocol.OffsetCommitResponse{}
	for _, topic := range req.Topics {
		topicResp := kafkaprotocol.OffsetCommitResponseOffsetCommitResponseTopic{Name: topic.Name}
		for _, partition := range topic.Partitions {
			topicResp.Partitions = append(topicResp.Partitions,
				kafkaprotocol.OffsetCommitResponseOffsetCommitResponsePartition{
					PartitionIndex: partition.PartitionIndex,
					ErrorCode:      errCode,
				})
		}
		resp.Topics = append(resp.Topics, topicResp)
	}
	return resp
}

// errorCodeForGroupFailure maps a coordinator failure to the protocol error the client should
// retry on. Unavailability is retriable; anything else is surfaced as a coordinator problem.
func errorCodeForGroupFailure(err error) int16 {
	if common.IsUnavailableError(err) {
		return kafkaprotocol.ErrorCodeCoordinatorNotAvailable
	}
	return kafkaprotocol.ErrorCodeCoordinatorLoadInProgress
}

func derefStrings(ptrs []*string) []string {
	var out []string
	for _, p := range ptrs {
		out = append(out, common.SafeDerefStringPtr(p))
	}
	return out
}
