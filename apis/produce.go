package apis

import (
	"time"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
)

// respTopic remembers how one topic was addressed in the request so the response can echo it
// back the same way.
type respTopic struct {
	name    *string
	topicID []byte
	keys    []fetchsession.PartitionKey
}

func (d *Dispatcher) handleProduce(ctx *RequestContext, req *kafkaprotocol.ProduceRequest) error {
	apiVersion := ctx.Header.ApiVersion
	acks := req.Acks
	agg := newAggregator[kafkaprotocol.ProduceResponsePartitionProduceResponse]()
	leaders := map[fetchsession.PartitionKey]*CurrentLeader{}
	var respTopics []respTopic
	var entries []AppendEntry
	var totalBytes int

	validAcks := acks == 0 || acks == 1 || acks == -1
	if req.TransactionalId != nil &&
		!d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTransactionalID,
			common.SafeDerefStringPtr(req.TransactionalId), acls.OperationWrite) {
		return d.sendProduceError(ctx, req, kafkaprotocol.ErrorCodeTransactionalIDAuthorizationFailed)
	}

	for _, topicData := range req.TopicData {
		info, topicErr := d.resolveTopic(topicData.Name, topicData.TopicId)
		// Authorization is checked on the name the client used, before existence, so an
		// unauthorized principal cannot probe which topics exist.
		byName := topicData.Name != nil && *topicData.Name != ""
		authorized := info.Name != "" &&
			d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, info.Name, acls.OperationWrite)
		rt := respTopic{name: topicData.Name, topicID: topicData.TopicId}
		for _, partData := range topicData.PartitionData {
			key := partitionKey(info, partData.Index)
			rt.keys = append(rt.keys, key)
			if !agg.register(key) {
				continue
			}
			var errCode int16
			switch {
			case !validAcks:
				errCode = kafkaprotocol.ErrorCodeInvalidRequiredAcks
			case byName && !authorized:
				errCode = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			case topicErr != kafkaprotocol.ErrorCodeNone:
				errCode = topicErr
			case !authorized:
				errCode = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			default:
				errCode = checkPartitionIndex(info, partData.Index)
			}
			if errCode != kafkaprotocol.ErrorCodeNone {
				agg.settle(key, errorProducePartition(partData.Index, errCode))
				continue
			}
			totalBytes += len(partData.Records)
			entries = append(entries, AppendEntry{
				Key:             key,
				Records:         partData.Records,
				TransactionalID: req.TransactionalId,
				Acks:            acks,
			})
		}
		respTopics = append(respTopics, rt)
	}

	decision := d.throttles.RecordProduce(ctx.ClientID(), acks, totalBytes, 0, time.Now().UnixMilli())
	throttleTimeMs := d.recordThrottle(ctx, decision)

	if len(entries) == 0 {
		return d.completeProduce(ctx, req, agg, leaders, respTopics, throttleTimeMs)
	}
	d.replication.AppendRecords(entries, func(results []AppendResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		for _, res := range results {
			errCode := remapStorageError(res.ErrorCode, apiVersion, produceStorageErrorMinVersion)
			part := kafkaprotocol.ProduceResponsePartitionProduceResponse{
				Index:           res.Key.Partition,
				ErrorCode:       errCode,
				BaseOffset:      res.BaseOffset,
				LogAppendTimeMs: res.LogAppendTimeMs,
				LogStartOffset:  res.LogStartOffset,
				RecordErrors:    res.RecordErrors,
				ErrorMessage:    res.ErrorMessage,
			}
			if res.CurrentLeader != nil {
				leaders[res.Key] = res.CurrentLeader
			}
			agg.settle(res.Key, part)
		}
		if err := d.completeProduce(ctx, req, agg, leaders, respTopics, throttleTimeMs); err != nil {
			log.Warnf("failed to complete produce request: %v", err)
		}
	})
	return nil
}

func (d *Dispatcher) completeProduce(ctx *RequestContext, req *kafkaprotocol.ProduceRequest,
	agg *aggregator[kafkaprotocol.ProduceResponsePartitionProduceResponse],
	leaders map[fetchsession.PartitionKey]*CurrentLeader, respTopics []respTopic, throttleTimeMs int32) error {
	results := agg.collect(func(key fetchsession.PartitionKey) kafkaprotocol.ProduceResponsePartitionProduceResponse {
		return errorProducePartition(key.Partition, kafkaprotocol.ErrorCodeUnknownServerError)
	})
	byKey := make(map[fetchsession.PartitionKey]kafkaprotocol.ProduceResponsePartitionProduceResponse, len(results))
	errorInResponse := false
	for _, res := range results {
		byKey[res.key] = res.result
		if res.result.ErrorCode != kafkaprotocol.ErrorCodeNone {
			errorInResponse = true
		}
	}

	if req.Acks == 0 {
		// No response travels for acks=0. A failed produce still has to reach the producer
		// somehow, so the connection is dropped to force a reconnect and metadata refresh.
		if errorInResponse {
			log.Debugf("closing connection to %s: produce with acks=0 failed", ctx.ClientHost)
			ctx.CloseConnection()
		}
		return nil
	}

	var endpoints endpointSet
	resp := &kafkaprotocol.ProduceResponse{ThrottleTimeMs: throttleTimeMs}
	for _, rt := range respTopics {
		topicResp := kafkaprotocol.ProduceResponseTopicProduceResponse{Name: rt.name, TopicId: rt.topicID}
		seen := map[fetchsession.PartitionKey]bool{}
		for _, key := range rt.keys {
			if seen[key] {
				continue
			}
			seen[key] = true
			part := byKey[key]
			if ctx.Header.ApiVersion >= produceLeaderHintMinVersion && isWrongLeaderError(part.ErrorCode) {
				if leader := leaders[key]; leader != nil {
					part.CurrentLeader = kafkaprotocol.ProduceResponseLeaderIdAndEpoch{
						LeaderId:    leader.LeaderID,
						LeaderEpoch: leader.LeaderEpoch,
					}
					endpoints.add(leader.Node)
				}
			}
			topicResp.PartitionResponses = append(topicResp.PartitionResponses, part)
		}
		resp.Responses = append(resp.Responses, topicResp)
	}
	if ctx.Header.ApiVersion >= produceLeaderHintMinVersion {
		for _, node := range endpoints.nodes {
			resp.NodeEndpoints = append(resp.NodeEndpoints, kafkaprotocol.ProduceResponseNodeEndpoint{
				NodeId: node.NodeID,
				Host:   common.StrPtr(node.Host),
				Port:   node.Port,
				Rack:   node.Rack,
			})
		}
	}
	return ctx.SendResponse(resp)
}

// sendProduceError answers every partition in the request with the same error code.
func (d *Dispatcher) sendProduceError(ctx *RequestContext, req *kafkaprotocol.ProduceRequest, errCode int16) error {
	if req.Acks == 0 {
		ctx.CloseConnection()
		return nil
	}
	resp := &kafkaprotocol.ProduceResponse{}
	for _, topicData := range req.TopicData {
		topicResp := kafkaprotocol.ProduceResponseTopicProduceResponse{
			Name:    topicData.Name,
			TopicId: topicData.TopicId,
		}
		for _, partData := range topicData.PartitionData {
			topicResp.PartitionResponses = append(topicResp.PartitionResponses,
				errorProducePartition(partData.Index, errCode))
		}
		resp.Responses = append(resp.Responses, topicResp)
	}
	return ctx.SendResponse(resp)
}

func errorProducePartition(index int32, errCode int16) kafkaprotocol.ProduceResponsePartitionProduceResponse {
	return kafkaprotocol.ProduceResponsePartitionProduceResponse{
		Index:      index,
		ErrorCode:  errCode,
		BaseOffset: -1,
	}
}
