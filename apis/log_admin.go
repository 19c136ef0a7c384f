package apis

import (
	"time"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
)

func (d *Dispatcher) handleListOffsets(ctx *RequestContext, req *kafkaprotocol.ListOffsetsRequest) error {
	// ReplicaId -1 is a consumer; anything else is a replica and needs cluster action rights.
	follower := req.ReplicaId != -1
	clusterAuthorized := true
	if follower {
		clusterAuthorized = d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeCluster,
			acls.ClusterResourceName, acls.OperationClusterAction)
	}
	agg := newAggregator[kafkaprotocol.ListOffsetsResponseListOffsetsPartitionResponse]()
	var entries []ListOffsetsEntry
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		authorized := clusterAuthorized
		if !follower {
			authorized = d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, name,
				acls.OperationDescribe)
		}
		info, topicErr := d.resolveTopic(topic.Name, nil)
		for _, part := range topic.Partitions {
			key := partitionKey(info, part.PartitionIndex)
			if !agg.register(key) {
				continue
			}
			var errCode int16
			switch {
			case follower && !clusterAuthorized:
				errCode = kafkaprotocol.ErrorCodeClusterAuthorizationFailed
			case !authorized:
				errCode = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			case topicErr != kafkaprotocol.ErrorCodeNone:
				errCode = topicErr
			default:
				errCode = checkPartitionIndex(info, part.PartitionIndex)
			}
			if errCode != kafkaprotocol.ErrorCodeNone {
				agg.settle(key, errorListOffsetsPartition(part.PartitionIndex, errCode))
				continue
			}
			entries = append(entries, ListOffsetsEntry{
				Key:                key,
				CurrentLeaderEpoch: part.CurrentLeaderEpoch,
				Timestamp:          part.Timestamp,
			})
		}
	}

	complete := func() error {
		results := agg.collect(func(key fetchsession.PartitionKey) kafkaprotocol.ListOffsetsResponseListOffsetsPartitionResponse {
			return errorListOffsetsPartition(key.Partition, kafkaprotocol.ErrorCodeUnknownServerError)
		})
		byKey := make(map[fetchsession.PartitionKey]kafkaprotocol.ListOffsetsResponseListOffsetsPartitionResponse, len(results))
		for _, res := range results {
			byKey[res.key] = res.result
		}
		resp := &kafkaprotocol.ListOffsetsResponse{ThrottleTimeMs: ctx.ThrottleTime()}
		for _, topic := range req.Topics {
			info, _ := d.resolveTopic(topic.Name, nil)
			topicResp := kafkaprotocol.ListOffsetsResponseListOffsetsTopicResponse{Name: topic.Name}
			seen := map[int32]bool{}
			for _, part := range topic.Partitions {
				if seen[part.PartitionIndex] {
					continue
				}
				seen[part.PartitionIndex] = true
				topicResp.Partitions = append(topicResp.Partitions, byKey[partitionKey(info, part.PartitionIndex)])
			}
			resp.Topics = append(resp.Topics, topicResp)
		}
		return ctx.SendResponse(resp)
	}

	if len(entries) == 0 {
		return complete()
	}
	d.replication.ListOffsets(req.IsolationLevel, entries, func(results []ListOffsetsResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		for _, res := range results {
			agg.settle(res.Key, kafkaprotocol.ListOffsetsResponseListOffsetsPartitionResponse{
				PartitionIndex: res.Key.Partition,
				ErrorCode:      res.ErrorCode,
				Timestamp:      res.Timestamp,
				Offset:         res.Offset,
				LeaderEpoch:    res.LeaderEpoch,
			})
		}
		if err := complete(); err != nil {
			log.Warnf("failed to complete list offsets request: %v", err)
		}
	})
	return nil
}

func errorListOffsetsPartition(index int32, errCode int16) kafkaprotocol.ListOffsetsResponseListOffsetsPartitionResponse {
	return kafkaprotocol.ListOffsetsResponseListOffsetsPartitionResponse{
		PartitionIndex: index,
		ErrorCode:      errCode,
		Timestamp:      -1,
		Offset:         -1,
		LeaderEpoch:    -1,
	}
}

func (d *Dispatcher) handleDeleteRecords(ctx *RequestContext, req *kafkaprotocol.DeleteRecordsRequest) error {
	agg := newAggregator[kafkaprotocol.DeleteRecordsResponseDeleteRecordsPartitionResult]()
	var entries []DeleteRecordsEntry
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		authorized := d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, name, acls.OperationDelete)
		info, topicErr := d.resolveTopic(topic.Name, nil)
		for _, part := range topic.Partitions {
			key := partitionKey(info, part.PartitionIndex)
			if !agg.register(key) {
				continue
			}
			var errCode int16
			switch {
			case !authorized:
				errCode = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			case topicErr != kafkaprotocol.ErrorCodeNone:
				errCode = topicErr
			default:
				errCode = checkPartitionIndex(info, part.PartitionIndex)
			}
			if errCode != kafkaprotocol.ErrorCodeNone {
				agg.settle(key, kafkaprotocol.DeleteRecordsResponseDeleteRecordsPartitionResult{
					PartitionIndex: part.PartitionIndex,
					LowWatermark:   -1,
					ErrorCode:      errCode,
				})
				continue
			}
			entries = append(entries, DeleteRecordsEntry{Key: key, Offset: part.Offset})
		}
	}

	complete := func() error {
		results := agg.collect(func(key fetchsession.PartitionKey) kafkaprotocol.DeleteRecordsResponseDeleteRecordsPartitionResult {
			return kafkaprotocol.DeleteRecordsResponseDeleteRecordsPartitionResult{
				PartitionIndex: key.Partition,
				LowWatermark:   -1,
				ErrorCode:      kafkaprotocol.ErrorCodeUnknownServerError,
			}
		})
		resp := &kafkaprotocol.DeleteRecordsResponse{ThrottleTimeMs: ctx.ThrottleTime()}
		for _, group := range groupByTopic(results) {
			topicResp := kafkaprotocol.DeleteRecordsResponseDeleteRecordsTopicResult{
				Name: common.StrPtr(group[0].key.Topic),
			}
			for _, res := range group {
				topicResp.Partitions = append(topicResp.Partitions, res.result)
			}
			resp.Topics = append(resp.Topics, topicResp)
		}
		return ctx.SendResponse(resp)
	}

	if len(entries) == 0 {
		return complete()
	}
	d.replication.DeleteRecords(entries, func(results []DeleteRecordsResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		for _, res := range results {
			agg.settle(res.Key, kafkaprotocol.DeleteRecordsResponseDeleteRecordsPartitionResult{
				PartitionIndex: res.Key.Partition,
				LowWatermark:   res.LowWatermark,
				ErrorCode:      res.ErrorCode,
			})
		}
		if err := complete(); err != nil {
			log.Warnf("failed to complete delete records request: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) handleOffsetForLeaderEpoch(ctx *RequestContext, req *kafkaprotocol.OffsetForLeaderEpochRequest) error {
	// Replicas hold cluster action rights and see every topic; consumers fall back to
	// per-topic describe rights.
	clusterAuthorized := d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeCluster,
		acls.ClusterResourceName, acls.OperationClusterAction)
	agg := newAggregator[kafkaprotocol.OffsetForLeaderEpochResponseEpochEndOffset]()
	var entries []EpochEndOffsetEntry
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Topic)
		authorized := clusterAuthorized ||
			d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, name, acls.OperationDescribe)
		info, topicErr := d.resolveTopic(topic.Topic, nil)
		for _, part := range topic.Partitions {
			key := partitionKey(info, part.Partition)
			if !agg.register(key) {
				continue
			}
			var errCode int16
			switch {
			case !authorized:
				errCode = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			case topicErr != kafkaprotocol.ErrorCodeNone:
				errCode = topicErr
			default:
				errCode = checkPartitionIndex(info, part.Partition)
			}
			if errCode != kafkaprotocol.ErrorCodeNone {
				agg.settle(key, errorEpochEndOffset(part.Partition, errCode))
				continue
			}
			entries = append(entries, EpochEndOffsetEntry{
				Key:                key,
				CurrentLeaderEpoch: part.CurrentLeaderEpoch,
				LeaderEpoch:        part.LeaderEpoch,
			})
		}
	}

	complete := func() error {
		results := agg.collect(func(key fetchsession.PartitionKey) kafkaprotocol.OffsetForLeaderEpochResponseEpochEndOffset {
			return errorEpochEndOffset(key.Partition, kafkaprotocol.ErrorCodeUnknownServerError)
		})
		resp := &kafkaprotocol.OffsetForLeaderEpochResponse{ThrottleTimeMs: ctx.ThrottleTime()}
		for _, group := range groupByTopic(results) {
			topicResp := kafkaprotocol.OffsetForLeaderEpochResponseOffsetForLeaderTopicResult{
				Topic: common.StrPtr(group[0].key.Topic),
			}
			for _, res := range group {
				topicResp.Partitions = append(topicResp.Partitions, res.result)
			}
			resp.Topics = append(resp.Topics, topicResp)
		}
		return ctx.SendResponse(resp)
	}

	if len(entries) == 0 {
		return complete()
	}
	d.replication.LastOffsetForLeaderEpoch(entries, func(results []EpochEndOffsetResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		for _, res := range results {
			agg.settle(res.Key, kafkaprotocol.OffsetForLeaderEpochResponseEpochEndOffset{
				ErrorCode:   res.ErrorCode,
				Partition:   res.Key.Partition,
				LeaderEpoch: res.LeaderEpoch,
				EndOffset:   res.EndOffset,
			})
		}
		if err := complete(); err != nil {
			log.Warnf("failed to complete offset for leader epoch request: %v", err)
		}
	})
	return nil
}

func errorEpochEndOffset(partition int32, errCode int16) kafkaprotocol.OffsetForLeaderEpochResponseEpochEndOffset {
	return kafkaprotocol.OffsetForLeaderEpochResponseEpochEndOffset{
		ErrorCode:   errCode,
		Partition:   partition,
		LeaderEpoch: -1,
		EndOffset:   -1,
	}
}

func (d *Dispatcher) handleDescribeProducers(ctx *RequestContext, req *kafkaprotocol.DescribeProducersRequest) error {
	agg := newAggregator[kafkaprotocol.DescribeProducersResponsePartitionResponse]()
	var partitions []fetchsession.PartitionKey
	for _, topic := range req.Topics {
		name := common.SafeDerefStringPtr(topic.Name)
		authorized := d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, name, acls.OperationRead)
		info, topicErr := d.resolveTopic(topic.Name, nil)
		for _, index := range topic.PartitionIndexes {
			key := partitionKey(info, index)
			if !agg.register(key) {
				continue
			}
			var errCode int16
			switch {
			case !authorized:
				errCode = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			case topicErr != kafkaprotocol.ErrorCodeNone:
				errCode = topicErr
			default:
				errCode = checkPartitionIndex(info, index)
			}
			if errCode != kafkaprotocol.ErrorCodeNone {
				agg.settle(key, kafkaprotocol.DescribeProducersResponsePartitionResponse{
					PartitionIndex: index,
					ErrorCode:      errCode,
				})
				continue
			}
			partitions = append(partitions, key)
		}
	}

	complete := func() error {
		results := agg.collect(func(key fetchsession.PartitionKey) kafkaprotocol.DescribeProducersResponsePartitionResponse {
			return kafkaprotocol.DescribeProducersResponsePartitionResponse{
				PartitionIndex: key.Partition,
				ErrorCode:      kafkaprotocol.ErrorCodeUnknownServerError,
			}
		})
		resp := &kafkaprotocol.DescribeProducersResponse{ThrottleTimeMs: ctx.ThrottleTime()}
		for _, group := range groupByTopic(results) {
			topicResp := kafkaprotocol.DescribeProducersResponseTopicResponse{
				Name: common.StrPtr(group[0].key.Topic),
			}
			for _, res := range group {
				topicResp.Partitions = append(topicResp.Partitions, res.result)
			}
			resp.Topics = append(resp.Topics, topicResp)
		}
		return ctx.SendResponse(resp)
	}

	if len(partitions) == 0 {
		return complete()
	}
	d.replication.DescribeProducerState(partitions, func(results []ProducerStateResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		for _, res := range results {
			agg.settle(res.Key, kafkaprotocol.DescribeProducersResponsePartitionResponse{
				PartitionIndex:  res.Key.Partition,
				ErrorCode:       res.ErrorCode,
				ErrorMessage:    res.ErrorMessage,
				ActiveProducers: res.ActiveProducers,
			})
		}
		if err := complete(); err != nil {
			log.Warnf("failed to complete describe producers request: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) handleDescribeLogDirs(ctx *RequestContext, req *kafkaprotocol.DescribeLogDirsRequest) error {
	resp := &kafkaprotocol.DescribeLogDirsResponse{ThrottleTimeMs: ctx.ThrottleTime()}
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeCluster, acls.ClusterResourceName,
		acls.OperationDescribe) {
		resp.ErrorCode = kafkaprotocol.ErrorCodeClusterAuthorizationFailed
		return ctx.SendResponse(resp)
	}
	results, err := d.replication.DescribeLogDirs(req.Topics)
	if err != nil {
		log.Warnf("describe log dirs failed: %v", err)
		resp.ErrorCode = kafkaprotocol.ErrorCodeUnknownServerError
		return ctx.SendResponse(resp)
	}
	resp.Results = results
	return ctx.SendResponse(resp)
}

func (d *Dispatcher) handleAlterReplicaLogDirs(ctx *RequestContext, req *kafkaprotocol.AlterReplicaLogDirsRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeCluster, acls.ClusterResourceName,
		acls.OperationAlter) {
		return ctx.SendResponse(alterReplicaLogDirsErrorResponse(req,
			kafkaprotocol.ErrorCodeClusterAuthorizationFailed))
	}
	resp, err := d.replication.AlterReplicaLogDirs(req)
	if err != nil {
		log.Warnf("alter replica log dirs failed: %v", err)
		return ctx.SendResponse(alterReplicaLogDirsErrorResponse(req,
			kafkaprotocol.ErrorCodeUnknownServerError))
	}
	resp.ThrottleTimeMs = ctx.ThrottleTime()
	return ctx.SendResponse(resp)
}

// alterReplicaLogDirsErrorResponse answers every partition named by any directory with the
// same error code, collapsing duplicates onto their first occurrence.
func alterReplicaLogDirsErrorResponse(req *kafkaprotocol.AlterReplicaLogDirsRequest,
	errCode int16) *kafkaprotocol.AlterReplicaLogDirsResponse {
	resp := &kafkaprotocol.AlterReplicaLogDirsResponse{}
	index := map[string]int{}
	seen := map[string]map[int32]bool{}
	for _, dir := range req.Dirs {
		for _, topic := range dir.Topics {
			name := common.SafeDerefStringPtr(topic.Name)
			i, ok := index[name]
			if !ok {
				i = len(resp.Results)
				index[name] = i
				seen[name] = map[int32]bool{}
				resp.Results = append(resp.Results,
					kafkaprotocol.AlterReplicaLogDirsResponseAlterReplicaLogDirTopicResult{TopicName: topic.Name})
			}
			for _, partition := range topic.Partitions {
				if seen[name][partition] {
					continue
				}
				seen[name][partition] = true
				resp.Results[i].Partitions = append(resp.Results[i].Partitions,
					kafkaprotocol.AlterReplicaLogDirsResponseAlterReplicaLogDirPartitionResult{
						PartitionIndex: partition,
						ErrorCode:      errCode,
					})
			}
		}
	}
	return resp
}
