package apis

import (
	"time"

	"github.com/google/uuid"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
	"github.com/josefk31/kafka/metrics"
	"github.com/josefk31/kafka/sharefetch"
)

func (d *Dispatcher) handleShareFetch(ctx *RequestContext, req *kafkaprotocol.ShareFetchRequest) error {
	groupID := common.SafeDerefStringPtr(req.GroupId)
	memberID, err := uuid.Parse(common.SafeDerefStringPtr(req.MemberId))
	if err != nil {
		return ctx.SendResponse(&kafkaprotocol.ShareFetchResponse{
			ErrorCode:    kafkaprotocol.ErrorCodeInvalidRequest,
			ErrorMessage: common.StrPtr("member id is not a valid uuid"),
		})
	}
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup, groupID, acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.ShareFetchResponse{
			ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
		})
	}

	// Acknowledgements ride on an established session; the opening request cannot carry any.
	if req.ShareSessionEpoch == fetchsession.InitialEpoch && shareFetchHasAcks(req) {
		return ctx.SendResponse(&kafkaprotocol.ShareFetchResponse{
			ErrorCode:    kafkaprotocol.ErrorCodeInvalidRequest,
			ErrorMessage: common.StrPtr("acknowledgements are not allowed on the initial share fetch"),
		})
	}

	var entries []fetchsession.PartitionEntry
	preflight := map[fetchsession.PartitionKey]int16{}
	var ackEntries []ShareAckEntry
	var invalidAcks []sharefetch.AckResult
	for _, topic := range req.Topics {
		info, topicErr := d.resolveTopic(nil, topic.TopicId)
		for _, part := range topic.Partitions {
			key := partitionKey(info, part.PartitionIndex)
			entries = append(entries, fetchsession.PartitionEntry{
				Key:  key,
				Data: fetchsession.RequestPartition{MaxBytes: part.PartitionMaxBytes},
			})
			if topicErr != kafkaprotocol.ErrorCodeNone {
				preflight[key] = topicErr
			} else if errCode := checkPartitionIndex(info, part.PartitionIndex); errCode != kafkaprotocol.ErrorCodeNone {
				preflight[key] = errCode
			}
			if len(part.AcknowledgementBatches) == 0 {
				continue
			}
			batches := ackBatches(part.AcknowledgementBatches)
			if errCode := sharefetch.ValidateBatches(batches); errCode != kafkaprotocol.ErrorCodeNone {
				invalidAcks = append(invalidAcks, sharefetch.AckResult{Key: key, ErrorCode: errCode})
			} else if errCode, failed := preflight[key]; failed {
				invalidAcks = append(invalidAcks, sharefetch.AckResult{Key: key, ErrorCode: errCode})
			} else {
				ackEntries = append(ackEntries, ShareAckEntry{Key: key, Batches: batches})
			}
		}
	}
	var toForget []fetchsession.PartitionKey
	for _, topic := range req.ForgottenTopicsData {
		info, _ := d.resolveTopic(nil, topic.TopicId)
		for _, part := range topic.Partitions {
			toForget = append(toForget, partitionKey(info, part))
		}
	}

	sessionKey := fetchsession.ShareSessionKey{GroupID: groupID, MemberID: memberID}
	shareCtx := d.shareSessions.NewContext(sessionKey, req.ShareSessionEpoch, entries, toForget)
	metrics.ShareSessions.Set(float64(d.shareSessions.NumSessions()))
	if shareCtx.ErrorCode != kafkaprotocol.ErrorCodeNone {
		return ctx.SendResponse(&kafkaprotocol.ShareFetchResponse{ErrorCode: shareCtx.ErrorCode})
	}

	sessionPartitions := shareCtx.Session.Partitions()
	readable := d.authFilter.AuthorizedSet(ctx.Principal, acls.ResourceTypeTopic,
		acls.OperationRead, shareTopicNames(sessionPartitions))
	var preflightFetch []sharefetch.FetchResult
	var fetchKeys []fetchsession.PartitionKey
	for _, key := range sessionPartitions {
		errCode, failed := preflight[key]
		if !failed && key.Topic != "" && !readable[key.Topic] {
			errCode, failed = kafkaprotocol.ErrorCodeTopicAuthorizationFailed, true
		}
		if failed {
			preflightFetch = append(preflightFetch, sharefetch.FetchResult{
				Key: key,
				Data: kafkaprotocol.ShareFetchResponsePartitionData{
					PartitionIndex: key.Partition,
					ErrorCode:      errCode,
				},
			})
			continue
		}
		fetchKeys = append(fetchKeys, key)
	}

	// The terminal request only settles acknowledgements; no records are fetched for a
	// session that is closing.
	final := shareCtx.Final
	if final {
		fetchKeys = nil
	}

	comb := sharefetch.NewCombiner(func(results []sharefetch.FetchResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		d.completeShareFetch(ctx, groupID, sessionKey, final, results)
	})
	if len(fetchKeys) == 0 {
		comb.CompleteFetch(preflightFetch)
	} else {
		maxBytesByPartition := make(map[fetchsession.PartitionKey]int32, len(fetchKeys))
		for _, entry := range entries {
			maxBytesByPartition[entry.Key] = entry.Data.MaxBytes
		}
		params := ShareFetchParams{
			MaxWaitMs:           req.MaxWaitMs,
			MinBytes:            req.MinBytes,
			MaxBytes:            d.throttles.MaxFetchBytes(ctx.ClientID(), req.MaxBytes),
			Partitions:          fetchKeys,
			MaxBytesByPartition: maxBytesByPartition,
		}
		d.shares.FetchRecords(groupID, memberID, params, func(results []sharefetch.FetchResult) {
			comb.CompleteFetch(append(preflightFetch, results...))
		})
	}
	if len(ackEntries) == 0 {
		comb.CompleteAcknowledge(invalidAcks)
	} else {
		d.shares.Acknowledge(groupID, memberID, ackEntries, func(results []sharefetch.AckResult) {
			comb.CompleteAcknowledge(append(invalidAcks, results...))
		})
	}
	return nil
}

func (d *Dispatcher) completeShareFetch(ctx *RequestContext, groupID string,
	sessionKey fetchsession.ShareSessionKey, final bool, results []sharefetch.FetchResult) {
	nowMs := time.Now().UnixMilli()
	totalBytes := 0
	for i := range results {
		totalBytes += len(results[i].Data.Records)
	}
	resp := &kafkaprotocol.ShareFetchResponse{
		AcquisitionLockTimeoutMs: d.shares.AcquisitionLockTimeoutMs(groupID),
	}
	decision := d.throttles.RecordFetch(ctx.ClientID(), totalBytes, 0, nowMs)
	if delay := d.recordThrottle(ctx, decision); delay > 0 {
		d.throttles.UnrecordThrottled(ctx.ClientID(), decision, float64(totalBytes), nowMs)
		resp.ThrottleTimeMs = delay
	} else {
		topicIdx := map[uuid.UUID]int{}
		for _, res := range results {
			data := res.Data
			data.PartitionIndex = res.Key.Partition
			ti, ok := topicIdx[res.Key.TopicId]
			if !ok {
				ti = len(resp.Responses)
				topicIdx[res.Key.TopicId] = ti
				resp.Responses = append(resp.Responses, kafkaprotocol.ShareFetchResponseShareFetchableTopicResponse{
					TopicId: res.Key.TopicId[:],
				})
			}
			resp.Responses[ti].Partitions = append(resp.Responses[ti].Partitions, data)
		}
	}
	if err := ctx.SendResponse(resp); err != nil {
		log.Warnf("failed to send share fetch response: %v", err)
	}
	if final {
		common.Go(func() {
			if !d.shareSessions.Release(sessionKey) {
				log.Warnf("share session %v already released", sessionKey)
			}
			metrics.ShareSessions.Set(float64(d.shareSessions.NumSessions()))
		})
	}
}

func (d *Dispatcher) handleShareAcknowledge(ctx *RequestContext, req *kafkaprotocol.ShareAcknowledgeRequest) error {
	groupID := common.SafeDerefStringPtr(req.GroupId)
	memberID, err := uuid.Parse(common.SafeDerefStringPtr(req.MemberId))
	if err != nil {
		return ctx.SendResponse(&kafkaprotocol.ShareAcknowledgeResponse{
			ErrorCode:    kafkaprotocol.ErrorCodeInvalidRequest,
			ErrorMessage: common.StrPtr("member id is not a valid uuid"),
		})
	}
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeGroup, groupID, acls.OperationRead) {
		return ctx.SendResponse(&kafkaprotocol.ShareAcknowledgeResponse{
			ErrorCode: kafkaprotocol.ErrorCodeGroupAuthorizationFailed,
		})
	}
	// Acknowledging cannot open a session.
	if req.ShareSessionEpoch == fetchsession.InitialEpoch {
		return ctx.SendResponse(&kafkaprotocol.ShareAcknowledgeResponse{
			ErrorCode: kafkaprotocol.ErrorCodeInvalidShareSessionEpoch,
		})
	}
	sessionKey := fetchsession.ShareSessionKey{GroupID: groupID, MemberID: memberID}
	shareCtx := d.shareSessions.NewContext(sessionKey, req.ShareSessionEpoch, nil, nil)
	if shareCtx.ErrorCode != kafkaprotocol.ErrorCodeNone {
		return ctx.SendResponse(&kafkaprotocol.ShareAcknowledgeResponse{ErrorCode: shareCtx.ErrorCode})
	}

	var preflightAcks []sharefetch.AckResult
	var ackEntries []ShareAckEntry
	for _, topic := range req.Topics {
		info, topicErr := d.resolveTopic(nil, topic.TopicId)
		authorized := topicErr != kafkaprotocol.ErrorCodeNone ||
			d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeTopic, info.Name, acls.OperationRead)
		for _, part := range topic.Partitions {
			key := partitionKey(info, part.PartitionIndex)
			errCode := topicErr
			if errCode == kafkaprotocol.ErrorCodeNone && !authorized {
				errCode = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			}
			if errCode == kafkaprotocol.ErrorCodeNone {
				errCode = sharefetch.ValidateBatches(ackBatches(part.AcknowledgementBatches))
			}
			if errCode != kafkaprotocol.ErrorCodeNone {
				preflightAcks = append(preflightAcks, sharefetch.AckResult{Key: key, ErrorCode: errCode})
				continue
			}
			ackEntries = append(ackEntries, ShareAckEntry{Key: key, Batches: ackBatches(part.AcknowledgementBatches)})
		}
	}

	final := shareCtx.Final
	complete := func(results []sharefetch.AckResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		resp := &kafkaprotocol.ShareAcknowledgeResponse{}
		topicIdx := map[uuid.UUID]int{}
		for _, res := range results {
			ti, ok := topicIdx[res.Key.TopicId]
			if !ok {
				ti = len(resp.Responses)
				topicIdx[res.Key.TopicId] = ti
				resp.Responses = append(resp.Responses, kafkaprotocol.ShareAcknowledgeResponseShareAcknowledgeTopicResponse{
					TopicId: res.Key.TopicId[:],
				})
			}
			resp.Responses[ti].Partitions = append(resp.Responses[ti].Partitions,
				kafkaprotocol.ShareAcknowledgeResponsePartitionData{
					PartitionIndex: res.Key.Partition,
					ErrorCode:      res.ErrorCode,
				})
		}
		if err := ctx.SendResponse(resp); err != nil {
			log.Warnf("failed to send share acknowledge response: %v", err)
		}
		if final {
			common.Go(func() {
				if !d.shareSessions.Release(sessionKey) {
					log.Warnf("share session %v already released", sessionKey)
				}
				metrics.ShareSessions.Set(float64(d.shareSessions.NumSessions()))
			})
		}
	}
	if len(ackEntries) == 0 {
		complete(preflightAcks)
		return nil
	}
	d.shares.Acknowledge(groupID, memberID, ackEntries, func(results []sharefetch.AckResult) {
		complete(append(preflightAcks, results...))
	})
	return nil
}

func shareTopicNames(keys []fetchsession.PartitionKey) []string {
	var names []string
	for _, key := range keys {
		if key.Topic != "" {
			names = append(names, key.Topic)
		}
	}
	return names
}

func shareFetchHasAcks(req *kafkaprotocol.ShareFetchRequest) bool {
	for _, topic := range req.Topics {
		for _, part := range topic.Partitions {
			if len(part.AcknowledgementBatches) > 0 {
				return true
			}
		}
	}
	return false
}

func ackBatches(batches []kafkaprotocol.ShareFetchRequestAcknowledgementBatch) []sharefetch.AcknowledgementBatch {
	out := make([]sharefetch.AcknowledgementBatch, 0, len(batches))
	for _, b := range batches {
		out = append(out, sharefetch.AcknowledgementBatch{
			FirstOffset: b.FirstOffset,
			LastOffset:  b.LastOffset,
			AckTypes:    b.AcknowledgeTypes,
		})
	}
	return out
}
