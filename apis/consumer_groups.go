package apis

import (
	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
)

func (d *Dispatcher) handleConsumerGroupHeartbeat(ctx *RequestContext, req *kafkaprotocol.ConsumerGroupHeartbeatRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.ConsumerGroupHeartbeatResponse{
			ErrorCode:    kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
			ErrorMessage: common.StrPtr("group authorization failed"),
		})
	}
	resp, err := d.groups.ConsumerGroupHeartbeat(req)
	if err != nil {
		log.Warnf("consumer group heartbeat failed: %v", err)
		return ctx.SendResponse(&kafkaprotocol.ConsumerGroupHeartbeatResponse{
			ErrorCode: errorCodeForGroupFailure(err),
		})
	}
	resp.ThrottleTimeMs = ctx.ThrottleTime()
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleConsumerGroupDescribe(ctx *RequestContext, req *kafkaprotocol.ConsumerGroupDescribeRequest) error {
	authorized, unauthorized := d.authFilter.PartitionByAuthorized(ctx.Principal, acls.ResourceTypeGroup,
		acls.OperationDescribe, derefStrings(req.GroupIds))
	described := d.groups.ConsumerGroupDescribe(authorized)
	byID := map[string]kafkaprotocol.ConsumerGroupDescribeResponseDescribedGroup{}
	for _, group := range described {
		byID[common.SafeDerefStringPtr(group.GroupId)] = group
	}
	deniedSet := map[string]bool{}
	for _, groupID := range unauthorized {
		deniedSet[groupID] = true
	}
	resp := &kafkaprotocol.ConsumerGroupDescribeResponse{}
	for _, groupID := range req.GroupIds {
		id := common.SafeDerefStringPtr(groupID)
		if deniedSet[id] {
			resp.Groups = append(resp.Groups, kafkaprotocol.ConsumerGroupDescribeResponseDescribedGroup{
				ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
				GroupId:   groupID,
			})
			continue
		}
		group, ok := byID[id]
		if !ok {
			resp.Groups = append(resp.Groups, kafkaprotocol.ConsumerGroupDescribeResponseDescribedGroup{
				ErrorCode: kafkaprotocol.ErrorCodeGroupIDNotFound,
				GroupId:   groupID,
			})
			continue
		}
		// A group whose assignments reference topics the principal cannot describe is
		// errored wholesale rather than partially revealed.
		if !d.consumerAssignmentsDescribable(ctx, group.Members) {
			resp.Groups = append(resp.Groups, kafkaprotocol.ConsumerGroupDescribeResponseDescribedGroup{
				ErrorCode: kafkaprotocol.ErrorCodeTopicAuthorizationFailed,
				GroupId:   groupID,
			})
			continue
		}
		resp.Groups = append(resp.Groups, group)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) consumerAssignmentsDescribable(ctx *RequestContext,
	members []kafkaprotocol.ConsumerGroupDescribeResponseMember) bool {
	for _, member := range members {
		for _, assignment := range [][]kafkaprotocol.ConsumerGroupDescribeResponseTopicPartitions{
			member.Assignment.TopicPartitions, member.TargetAssignment.TopicPartitions} {
			for _, tp := range assignment {
				if !d.authFilter.AuthorizeNoAudit(ctx.Principal, acls.ResourceTypeTopic,
					common.SafeDerefStringPtr(tp.TopicName), acls.OperationDescribe) {
					return false
				}
			}
		}
	}
	return true
}

func (d *Dispatcher) handleShareGroupHeartbeat(ctx *RequestContext, req *kafkaprotocol.ShareGroupHeartbeatRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.ShareGroupHeartbeatResponse{
			ErrorCode:    kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
			ErrorMessage: common.StrPtr("group authorization failed"),
		})
	}
	resp, err := d.groups.ShareGroupHeartbeat(req)
	if err != nil {
		log.Warnf("share group heartbeat failed: %v", err)
		return ctx.SendResponse(&kafkaprotocol.ShareGroupHeartbeatResponse{
			ErrorCode: errorCodeForGroupFailure(err),
		})
	}
	resp.ThrottleTimeMs = ctx.ThrottleTime()
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleShareGroupDescribe(ctx *RequestContext, req *kafkaprotocol.ShareGroupDescribeRequest) error {
	authorized, unauthorized := d.authFilter.PartitionByAuthorized(ctx.Principal, acls.ResourceTypeGroup,
		acls.OperationDescribe, derefStrings(req.GroupIds))
	described := d.groups.ShareGroupDescribe(authorized)
	byID := map[string]kafkaprotocol.ShareGroupDescribeResponseDescribedGroup{}
	for _, group := range described {
		byID[common.SafeDerefStringPtr(group.GroupId)] = group
	}
	deniedSet := map[string]bool{}
	for _, groupID := range unauthorized {
		deniedSet[groupID] = true
	}
	resp := &kafkaprotocol.ShareGroupDescribeResponse{}
	for _, groupID := range req.GroupIds {
		id := common.SafeDerefStringPtr(groupID)
		if deniedSet[id] {
			resp.Groups = append(resp.Groups, kafkaprotocol.ShareGroupDescribeResponseDescribedGroup{
				ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
				GroupId:   groupID,
			})
			continue
		}
		group, ok := byID[id]
		if !ok {
			resp.Groups = append(resp.Groups, kafkaprotocol.ShareGroupDescribeResponseDescribedGroup{
				ErrorCode: kafkaprotocol.ErrorCodeGroupIDNotFound,
				GroupId:   groupID,
			})
			continue
		}
		if !d.shareAssignmentsDescribable(ctx, group.Members) {
			resp.Groups = append(resp.Groups, kafkaprotocol.ShareGroupDescribeResponseDescribedGroup{
				ErrorCode: kafkaprotocol.ErrorCodeTopicAuthorizationFailed,
				GroupId:   groupID,
			})
			continue
		}
		resp.Groups = append(resp.Groups, group)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) shareAssignmentsDescribable(ctx *RequestContext,
	members []kafkaprotocol.ShareGroupDescribeResponseMember) bool {
	for _, member := range members {
		for _, tp := range member.Assignment.TopicPartitions {
			if !d.authFilter.AuthorizeNoAudit(ctx.Principal, acls.ResourceTypeTopic,
				common.SafeDerefStringPtr(tp.TopicName), acls.OperationDescribe) {
				return false
			}
		}
	}
	return true
}
