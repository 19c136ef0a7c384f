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
)

// fetchReplicaID returns the follower id the request carries, or -1 for a consumer. Newer
// versions moved the field into ReplicaState.
func fetchReplicaID(apiVersion int16, req *kafkaprotocol.FetchRequest) int32 {
	if apiVersion >= 15 {
		return req.ReplicaState.ReplicaId
	}
	return req.ReplicaId
}

type topicIdentity struct {
	Topic   string
	TopicId uuid.UUID
}

func (d *Dispatcher) handleFetch(ctx *RequestContext, req *kafkaprotocol.FetchRequest) error {
	apiVersion := ctx.Header.ApiVersion
	replicaID := fetchReplicaID(apiVersion, req)
	follower := replicaID >= 0

	var entries []fetchsession.PartitionEntry
	// Per-partition errors detected before the backend is involved, keyed the same way the
	// session keys partitions.
	preflight := map[fetchsession.PartitionKey]int16{}
	for _, topic := range req.Topics {
		info, topicErr := d.resolveTopic(topic.Topic, topic.TopicId)
		for _, part := range topic.Partitions {
			key := partitionKey(info, part.Partition)
			entries = append(entries, fetchsession.PartitionEntry{
				Key: key,
				Data: fetchsession.RequestPartition{
					MaxBytes:         part.PartitionMaxBytes,
					FetchOffset:      part.FetchOffset,
					LeaderEpoch:      part.CurrentLeaderEpoch,
					LastFetchedEpoch: part.LastFetchedEpoch,
					LogStartOffset:   part.LogStartOffset,
				},
			})
			if topicErr != kafkaprotocol.ErrorCodeNone {
				preflight[key] = topicErr
			} else if errCode := checkPartitionIndex(info, part.Partition); errCode != kafkaprotocol.ErrorCodeNone {
				preflight[key] = errCode
			}
		}
	}
	var toForget []fetchsession.PartitionKey
	for _, topic := range req.ForgottenTopicsData {
		info, _ := d.resolveTopic(topic.Topic, topic.TopicId)
		for _, part := range topic.Partitions {
			toForget = append(toForget, partitionKey(info, part))
		}
	}

	sessionCtx := d.fetchSessions.NewContext(req.SessionId, req.SessionEpoch, follower, entries, toForget)
	metrics.FetchSessions.Set(float64(d.fetchSessions.NumSessions()))
	if errCode := sessionCtx.SessionError(); errCode != kafkaprotocol.ErrorCodeNone {
		return ctx.SendResponse(&kafkaprotocol.FetchResponse{
			ErrorCode: errCode,
			SessionId: req.SessionId,
		})
	}

	// The session may carry partitions this request did not name, so authorization and error
	// enumeration work over the session's view, not the request's.
	sessionPartitions := sessionCtx.Partitions()
	if follower && !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeCluster,
		acls.ClusterResourceName, acls.OperationClusterAction) {
		for _, entry := range sessionPartitions {
			preflight[entry.Key] = kafkaprotocol.ErrorCodeClusterAuthorizationFailed
		}
	} else if !follower {
		readable := d.authFilter.AuthorizedSet(ctx.Principal, acls.ResourceTypeTopic,
			acls.OperationRead, sessionTopicNames(sessionPartitions))
		for _, entry := range sessionPartitions {
			// The auth failure overrides any resolution error so an unauthorized principal
			// cannot probe which topics exist.
			if entry.Key.Topic != "" && !readable[entry.Key.Topic] {
				preflight[entry.Key] = kafkaprotocol.ErrorCodeTopicAuthorizationFailed
			}
		}
	}

	var fetchEntries []FetchEntry
	results := make([]fetchResultHolder, 0, len(sessionPartitions))
	resultIdx := map[fetchsession.PartitionKey]int{}
	for _, entry := range sessionPartitions {
		if _, dup := resultIdx[entry.Key]; dup {
			continue
		}
		resultIdx[entry.Key] = len(results)
		holder := fetchResultHolder{key: entry.Key}
		if errCode, failed := preflight[entry.Key]; failed {
			holder.result = FetchPartitionResult{Key: entry.Key, ErrorCode: errCode}
			holder.settled = true
		} else {
			fetchEntries = append(fetchEntries, FetchEntry{
				Key:                entry.Key,
				FetchOffset:        entry.Data.FetchOffset,
				CurrentLeaderEpoch: entry.Data.LeaderEpoch,
				LastFetchedEpoch:   entry.Data.LastFetchedEpoch,
				LogStartOffset:     entry.Data.LogStartOffset,
				MaxBytes:           entry.Data.MaxBytes,
			})
		}
		results = append(results, holder)
	}

	maxBytes := req.MaxBytes
	if !follower {
		maxBytes = d.throttles.MaxFetchBytes(ctx.ClientID(), maxBytes)
	}

	complete := func(backendResults []FetchPartitionResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		for _, res := range backendResults {
			i, ok := resultIdx[res.Key]
			if !ok || results[i].settled {
				continue
			}
			res.ErrorCode = remapStorageError(res.ErrorCode, apiVersion, fetchStorageErrorMinVersion)
			results[i].result = res
			results[i].settled = true
		}
		for i := range results {
			if !results[i].settled {
				results[i].result = FetchPartitionResult{
					Key:       results[i].key,
					ErrorCode: kafkaprotocol.ErrorCodeUnknownServerError,
				}
				results[i].settled = true
			}
		}
		if err := d.completeFetch(ctx, req, sessionCtx, follower, results); err != nil {
			log.Warnf("failed to complete fetch request: %v", err)
		}
	}

	if len(fetchEntries) == 0 {
		complete(nil)
		return nil
	}
	d.replication.FetchRecords(FetchParams{
		ReplicaID:      replicaID,
		MaxWaitMs:      req.MaxWaitMs,
		MinBytes:       req.MinBytes,
		MaxBytes:       maxBytes,
		IsolationLevel: req.IsolationLevel,
		Partitions:     fetchEntries,
	}, complete)
	return nil
}

type fetchResultHolder struct {
	key     fetchsession.PartitionKey
	result  FetchPartitionResult
	settled bool
}

func (d *Dispatcher) completeFetch(ctx *RequestContext, req *kafkaprotocol.FetchRequest,
	sessionCtx fetchsession.Context, follower bool, results []fetchResultHolder) error {
	apiVersion := ctx.Header.ApiVersion
	nowMs := time.Now().UnixMilli()
	totalBytes := 0
	for i := range results {
		totalBytes += len(results[i].result.Records)
	}

	// The quota check happens before the session is updated: a throttled response carries no
	// data and leaves the session epoch where it was, so the client's retry is not treated as
	// an out-of-order request.
	if follower {
		d.throttles.RecordFollowerFetch(ctx.ClientID(), totalBytes, nowMs)
	} else {
		decision := d.throttles.RecordFetch(ctx.ClientID(), totalBytes, 0, nowMs)
		if delay := d.recordThrottle(ctx, decision); delay > 0 {
			d.throttles.UnrecordThrottled(ctx.ClientID(), decision, float64(totalBytes), nowMs)
			sessionCtx.Discard()
			return ctx.SendResponse(&kafkaprotocol.FetchResponse{
				ThrottleTimeMs: delay,
				SessionId:      req.SessionId,
			})
		}
	}

	sessionResults := make([]fetchsession.PartitionResult, 0, len(results))
	for i := range results {
		res := results[i].result
		sessionResults = append(sessionResults, fetchsession.PartitionResult{
			Key: results[i].key,
			Resp: fetchsession.PartitionResponse{
				ErrorCode:            res.ErrorCode,
				HighWatermark:        res.HighWatermark,
				LogStartOffset:       res.LogStartOffset,
				RecordsSize:          len(res.Records),
				DivergingEpoch:       res.DivergingEpoch != nil,
				PreferredReadReplica: res.PreferredReadReplica > 0,
			},
		})
	}
	disposition := sessionCtx.UpdateAndGenerateResponseData(sessionResults)
	if disposition.ErrorCode != kafkaprotocol.ErrorCodeNone {
		return ctx.SendResponse(&kafkaprotocol.FetchResponse{
			ErrorCode: disposition.ErrorCode,
			SessionId: disposition.SessionID,
		})
	}

	resp := &kafkaprotocol.FetchResponse{SessionId: disposition.SessionID}
	var endpoints endpointSet
	topicIdx := map[topicIdentity]int{}
	for i := range results {
		key := results[i].key
		if disposition.Include != nil && !disposition.Include[key] {
			continue
		}
		res := results[i].result
		part := kafkaprotocol.FetchResponsePartitionData{
			PartitionIndex:       key.Partition,
			ErrorCode:            res.ErrorCode,
			HighWatermark:        res.HighWatermark,
			LastStableOffset:     res.LastStableOffset,
			LogStartOffset:       res.LogStartOffset,
			AbortedTransactions:  res.AbortedTransactions,
			PreferredReadReplica: res.PreferredReadReplica,
			Records:              res.Records,
		}
		if res.DivergingEpoch != nil {
			part.DivergingEpoch = *res.DivergingEpoch
		}
		if apiVersion >= fetchLeaderHintMinVersion && isWrongLeaderError(res.ErrorCode) && res.CurrentLeader != nil {
			part.CurrentLeader = kafkaprotocol.FetchResponseLeaderIdAndEpoch{
				LeaderId:    res.CurrentLeader.LeaderID,
				LeaderEpoch: res.CurrentLeader.LeaderEpoch,
			}
			endpoints.add(res.CurrentLeader.Node)
		}
		ident := topicIdentity{Topic: key.Topic, TopicId: key.TopicId}
		ti, ok := topicIdx[ident]
		if !ok {
			ti = len(resp.Responses)
			topicIdx[ident] = ti
			resp.Responses = append(resp.Responses, kafkaprotocol.FetchResponseFetchableTopicResponse{
				Topic:   common.StrPtr(key.Topic),
				TopicId: key.TopicId[:],
			})
		}
		resp.Responses[ti].Partitions = append(resp.Responses[ti].Partitions, part)
	}
	if apiVersion >= fetchLeaderHintMinVersion {
		for _, node := range endpoints.nodes {
			resp.NodeEndpoints = append(resp.NodeEndpoints, kafkaprotocol.FetchResponseNodeEndpoint{
				NodeId: node.NodeID,
				Host:   common.StrPtr(node.Host),
				Port:   node.Port,
				Rack:   node.Rack,
			})
		}
	}
	return ctx.SendResponse(resp)
}

func sessionTopicNames(entries []fetchsession.PartitionEntry) []string {
	var names []string
	for _, entry := range entries {
		if entry.Key.Topic != "" {
			names = append(names, entry.Key.Topic)
		}
	}
	return names
}
