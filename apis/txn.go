package apis

import (
	"time"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
)

func (d *Dispatcher) handleInitProducerID(ctx *RequestContext, req *kafkaprotocol.InitProducerIdRequest) error {
	apiVersion := ctx.Header.ApiVersion
	if req.TransactionalId != nil {
		if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTransactionalID,
			common.SafeDerefStringPtr(req.TransactionalId), acls.OperationWrite) {
			return ctx.SendResponse(&kafkaprotocol.InitProducerIdResponse{
				ErrorCode:     kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed,
				ProducerId:    -1,
				ProducerEpoch: -1,
			})
		}
	} else if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeCluster,
		acls.ClusterResourceName, acls.OperationIdempotentWrite) {
		return ctx.SendResponse(&kafkaprotocol.InitProducerIdResponse{
			ErrorCode:     kafkaprotocol.ErrorCodeClusterAuthorizationFailed,
			ProducerId:    -1,
			ProducerEpoch: -1,
		})
	}
	d.txns.InitProducerID(req, func(resp *kafkaprotocol.InitProducerIdResponse) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		resp.ErrorCode = remapProducerFenced(resp.ErrorCode, apiVersion, initProducerIdFencedMinVersion)
		if err := ctx.SendResponse(resp); err != nil {
			log.Warnf("failed to send init producer id response: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) handleAddPartitionsToTxn(ctx *RequestContext, req *kafkaprotocol.AddPartitionsToTxnRequest) error {
	apiVersion := ctx.Header.ApiVersion
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTransactionalID,
		common.SafeDerefStringPtr(req.TransactionalId), acls.OperationWrite) {
		return ctx.SendResponse(addPartitionsErrorResponse(req, kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed))
	}
	// Unauthorized or unknown topics fail up front; only the remainder reaches the
	// coordinator, and the response is the ordered union of both.
	preflight := map[string]int16{}
	filtered := &kafkaprotocol.AddPartitionsToTxnRequest{
		TransactionalId: req.TransactionalId,
		ProducerId:      req.ProducerId,
		ProducerEpoch:   req.ProducerEpoch,
	}
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, name, acls.OperationWrite) {
			preflight[name] = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			continue
		}
		if _, ok := d.resolver.ResolveName(name); !ok {
			preflight[name] = kafkaprotocol.ErrorCodeUnknownTopicOrPartition
			continue
		}
		filtered.Topics = append(filtered.Topics, topic)
	}
	var coordResp *kafkaprotocol.AddPartitionsToTxnResponse
	if len(filtered.Topics) > 0 {
		coordResp = d.txns.AddPartitionsToTxn(filtered)
	}
	byTopic := map[string][]kafkaprotocol.AddPartitionsToTxnResponsePartitionResult{}
	if coordResp != nil {
		for _, topicResult := range coordResp.ResultsByTopic {
			byTopic[common.SafeDerefStringPtr(topicResult.Name)] = topicResult.ResultsByPartition
		}
	}
	resp := &kafkaprotocol.AddPartitionsToTxnResponse{}
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		topicResult := kafkaprotocol.AddPartitionsToTxnResponseTopicResult{Name: topic.Name}
		if errCode, failed := preflight[name]; failed {
			for _, partition := range topic.Partitions {
				topicResult.ResultsByPartition = append(topicResult.ResultsByPartition,
					kafkaprotocol.AddPartitionsToTxnResponsePartitionResult{
						PartitionIndex:     partition,
						PartitionErrorCode: errCode,
					})
			}
		} else {
			for _, partResult := range byTopic[name] {
				partResult.PartitionErrorCode = remapProducerFenced(partResult.PartitionErrorCode,
					apiVersion, txnFencedMinVersion)
				topicResult.ResultsByPartition = append(topicResult.ResultsByPartition, partResult)
			}
		}
		resp.ResultsByTopic = append(resp.ResultsByTopic, topicResult)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleAddOffsetsToTxn(ctx *RequestContext, req *kafkaprotocol.AddOffsetsToTxnRequest) error {
	apiVersion := ctx.Header.ApiVersion
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTransactionalID,
		common.SafeDerefStringPtr(req.TransactionalId), acls.OperationWrite) {
		return ctx.SendResponse(&kafkaprotocol.AddOffsetsToTxnResponse{
			ErrorCode: kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed,
		})
	}
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.AddOffsetsToTxnResponse{
			ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
		})
	}
	resp := d.txns.AddOffsetsToTxn(req)
	resp.ErrorCode = remapProducerFenced(resp.ErrorCode, apiVersion, txnFencedMinVersion)
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleEndTxn(ctx *RequestContext, req *kafkaprotocol.EndTxnRequest) error {
	apiVersion := ctx.Header.ApiVersion
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTransactionalID,
		common.SafeDerefStringPtr(req.TransactionalId), acls.OperationWrite) {
		return ctx.SendResponse(&kafkaprotocol.EndTxnResponse{
			ErrorCode: kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed,
		})
	}
	d.txns.EndTxn(req, func(resp *kafkaprotocol.EndTxnResponse) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		resp.ErrorCode = remapProducerFenced(resp.ErrorCode, apiVersion, txnFencedMinVersion)
		if err := ctx.SendResponse(resp); err != nil {
			log.Warnf("failed to send end txn response: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) handleTxnOffsetCommit(ctx *RequestContext, req *kafkaprotocol.TxnOffsetCommitRequest) error {
	apiVersion := ctx.Header.ApiVersion
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTransactionalID,
		common.SafeDerefStringPtr(req.TransactionalId), acls.OperationWrite) {
		return ctx.SendResponse(txnOffsetCommitErrorResponse(req, kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed))
	}
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup,
		common.SafeDerefStringPtr(req.GroupId), acls.OperationRead) {
		return ctx.SendResponse(txnOffsetCommitErrorResponse(req, kafkaprotocol.ErrorCodeGroupAuthorizationFailed))
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
	byTopic := map[string][]kafkaprotocol.TxnOffsetCommitResponseTxnOffsetCommitResponsePartition{}
	if len(filtered.Topics) > 0 {
		coordResp, err := d.groups.OffsetCommitTransactional(&filtered)
		if err != nil {
			log.Warnf("transactional offset commit failed: %v", err)
			return ctx.SendResponse(txnOffsetCommitErrorResponse(req, kafkaprotocol.ErrorCodeUnknownServerError))
		}
		for _, topicResp := range coordResp.Topics {
			byTopic[common.SafeDerefStringPtr(topicResp.Name)] = topicResp.Partitions
		}
	}
	resp := &kafkaprotocol.TxnOffsetCommitResponse{}
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		topicResp := kafkaprotocol.TxnOffsetCommitResponseTxnOffsetCommitResponseTopic{Name: topic.Name}
		if errCode, failed := preflight[name]; failed {
			for _, partition := range topic.Partitions {
				topicResp.Partitions = append(topicResp.Partitions,
					kafkaprotocol.TxnOffsetCommitResponseTxnOffsetCommitResponsePartition{
						PartitionIndex: partition.PartitionIndex,
						ErrorCode:      errCode,
					})
			}
		} else {
			for _, partResp := range byTopic[name] {
				partResp.ErrorCode = remapProducerFenced(partResp.ErrorCode, apiVersion, txnFencedMinVersion)
				topicResp.Partitions = append(topicResp.Partitions, partResp)
			}
		}
		resp.Topics = append(resp.Topics, topicResp)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleDescribeTransactions(ctx *RequestContext, req *kafkaprotocol.DescribeTransactionsRequest) error {
	var authorized []string
	resp := &kafkaprotocol.DescribeTransactionsResponse{}
	denied := map[string]bool{}
	for _, txnID := range req.TransactionalIds {
		id := common.SafeDerefStringPtr(txnID)
		if d.authFilter.AuthorizeNoAudit(ctx.Principal, acls.ResourceTypeTransactionalID, id, acls.OperationDescribe) {
			authorized = append(authorized, id)
		} else {
			denied[id] = true
		}
	}
	states := d.txns.DescribeTransactions(authorized)
	byID := map[string]kafkaprotocol.DescribeTransactionsResponseTransactionState{}
	for _, state := range states {
		byID[common.SafeDerefStringPtr(state.TransactionalId)] = state
	}
	for _, txnID := range req.TransactionalIds {
		id := common.SafeDerefStringPtr(txnID)
		if denied[id] {
			resp.TransactionStates = append(resp.TransactionStates,
				kafkaprotocol.DescribeTransactionsResponseTransactionState{
					ErrorCode:       kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed,
					TransactionalId: txnID,
				})
			continue
		}
		state, ok := byID[id]
		if !ok {
			state = kafkaprotocol.DescribeTransactionsResponseTransactionState{
				ErrorCode:       kafkaprotocol.ErrorCodeTransactionalIDNotFound,
				TransactionalId: txnID,
			}
		}
		// Listing the partitions of someone else's transaction would leak topics the
		// principal cannot describe.
		var visibleTopics []kafkaprotocol.DescribeTransactionsResponseTopicData
		for _, topic := range state.Topics {
			if d.authFilter.AuthorizeNoAudit(ctx.Principal, acls.ResourceTypeTopic,
				common.SafeDerefStringPtr(topic.Topic), acls.OperationDescribe) {
				visibleTopics = append(visibleTopics, topic)
			}
		}
		state.Topics = visibleTopics
		resp.TransactionStates = append(resp.TransactionStates, state)
	}
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleListTransactions(ctx *RequestContext, req *kafkaprotocol.ListTransactionsRequest) error {
	resp, err := d.txns.ListTransactions(req)
	if err != nil {
		log.Warnf("list transactions failed: %v", err)
		return ctx.SendResponse(&kafkaprotocol.ListTransactionsResponse{
			ErrorCode: kafkaprotocol.ErrorCodeCoordinatorLoadInProgress,
		})
	}
	// Only transactions whose transactional id the principal can describe are listed.
	var visible []kafkaprotocol.ListTransactionsResponseTransactionState
	for _, state := range resp.TransactionStates {
		if d.authFilter.AuthorizeNoAudit(ctx.Principal, acls.ResourceTypeTransactionalID,
			common.SafeDerefStringPtr(state.TransactionalId), acls.OperationDescribe) {
			visible = append(visible, state)
		}
	}
	resp.TransactionStates = visible
	return ctx.SendResponse(resp)
}

func addPartitionsErrorResponse(req *kafkaprotocol.AddPartitionsToTxnRequest, errCode int16) *kafkaprotocol.AddPartitionsToTxnResponse {
	resp := &kafkaprotocol.AddPartitionsToTxnResponse{}
	for _, topic := range req.Topics {
		topicResult := kafkaprotocol.AddPartitionsToTxnResponseTopicResult{Name: topic.Name}
		for _, partition := range topic.Partitions {
			topicResult.ResultsByPartition = append(topicResult.ResultsByPartition,
				kafkaprotocol.AddPartitionsToTxnResponsePartitionResult{
					PartitionIndex:     partition,
					PartitionErrorCode: errCode,
				})
		}
		resp.ResultsByTopic = append(resp.ResultsByTopic, topicResult)
	}
	return resp
}

func txnOffsetCommitErrorResponse(req *kafkaprotocol.TxnOffsetCommitRequest, errCode int16) *kafkaprotocol.TxnOffsetCommitResponse {
	resp := &kafkaprotocol.TxnOffsetCommitResponse{}
	for _, topic := range req.Topics {
		topicResp := kafkaprotocol.TxnOffsetCommitResponseTxnOffsetCommitResponseTopic{Name: topic.Name}
		for _, partition := range topic.Partitions {
			topicResp.Partitions = append(topicResp.Partitions,
				kafkaprotocol.TxnOffsetCommitResponseTxnOffsetCommitResponsePartition{
					PartitionIndex: partition.PartitionIndex,
					ErrorCode:      errCode,
				})
		}
		resp.Topics = append(resp.Topics, topicResp)
	}
	return resp
}
