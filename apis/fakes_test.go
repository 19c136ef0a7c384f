package apis

import (
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
	"github.com/josefk31/kafka/quotas"
	"github.com/josefk31/kafka/sharefetch"
	"github.com/josefk31/kafka/txnmarkers"
)

// testEnv wires a dispatcher to fully faked collaborators. All fakes complete synchronously on
// the calling goroutine unless a test overrides a completion func.
type testEnv struct {
	dispatcher  *Dispatcher
	authorizer  *fakeAuthorizer
	quotas      *fakeQuotaManager
	replication *fakeReplication
	groups      *fakeGroups
	txns        *fakeTxns
	shares      *fakeShares
	resolver    *fakeResolver
	forwarder   *fakeForwarder
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		authorizer:  &fakeAuthorizer{},
		quotas:      &fakeQuotaManager{},
		replication: &fakeReplication{},
		groups:      &fakeGroups{},
		txns:        &fakeTxns{},
		shares:      &fakeShares{},
		resolver:    newFakeResolver(),
		forwarder:   &fakeForwarder{},
	}
	d, err := NewDispatcher(NewConf(), fetchsession.NewConf(), Gateways{
		Replication: env.replication,
		Groups:      env.groups,
		Txns:        env.txns,
		Shares:      env.shares,
		Markers:     env.replication,
		Resolver:    env.resolver,
		Forwarder:   env.forwarder,
		Authorizer:  env.authorizer,
		Quotas:      env.quotas,
	})
	require.NoError(t, err)
	t.Cleanup(d.Stop)
	env.dispatcher = d
	return env
}

func (e *testEnv) newContext(apiKey int16, apiVersion int16) (*RequestContext, *fakeConnection) {
	conn := &fakeConnection{}
	hdr := kafkaprotocol.RequestHeader{
		ApiKey:        apiKey,
		ApiVersion:    apiVersion,
		CorrelationId: 1,
	}
	return NewRequestContext(hdr, "alice", "plaintext", "10.0.0.1:51234", 1, conn), conn
}

type fakeConnection struct {
	lock   sync.Mutex
	sent   []interface{}
	closed bool
}

func (c *fakeConnection) Send(resp interface{}) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.sent = append(c.sent, resp)
	return nil
}

func (c *fakeConnection) Close() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.closed = true
}

func (c *fakeConnection) sentCount() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.sent)
}

func (c *fakeConnection) lastSent(t *testing.T) interface{} {
	t.Helper()
	c.lock.Lock()
	defer c.lock.Unlock()
	require.NotEmpty(t, c.sent)
	return c.sent[len(c.sent)-1]
}

func (c *fakeConnection) isClosed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.closed
}

// fakeAuthorizer allows everything not explicitly denied.
type fakeAuthorizer struct {
	lock   sync.Mutex
	denied map[deniedKey]bool
}

type deniedKey struct {
	resourceType acls.ResourceType
	resourceName string
	operation    acls.Operation
}

func (a *fakeAuthorizer) deny(resourceType acls.ResourceType, resourceName string, operation acls.Operation) {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.denied == nil {
		a.denied = map[deniedKey]bool{}
	}
	a.denied[deniedKey{resourceType, resourceName, operation}] = true
}

func (a *fakeAuthorizer) Authorize(_ string, resourceType acls.ResourceType, resourceName string,
	operation acls.Operation) (bool, error) {
	a.lock.Lock()
	defer a.lock.Unlock()
	return !a.denied[deniedKey{resourceType, resourceName, operation}], nil
}

func (a *fakeAuthorizer) AuthorizeNoAudit(principal string, resourceType acls.ResourceType,
	resourceName string, operation acls.Operation) (bool, error) {
	return a.Authorize(principal, resourceType, resourceName, operation)
}

type fakeQuotaManager struct {
	lock       sync.Mutex
	delays     map[quotas.Dimension]int32
	windowMax  float64
	recorded   []quotas.Usage
	unrecorded []quotas.Usage
}

func (m *fakeQuotaManager) setDelay(dim quotas.Dimension, delayMs int32) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.delays == nil {
		m.delays = map[quotas.Dimension]int32{}
	}
	m.delays[dim] = delayMs
}

func (m *fakeQuotaManager) RecordAndGetDelayMs(dimension quotas.Dimension, _ string, value float64, _ int64) int32 {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.recorded = append(m.recorded, quotas.Usage{Dimension: dimension, Value: value})
	return m.delays[dimension]
}

func (m *fakeQuotaManager) Unrecord(dimension quotas.Dimension, _ string, value float64, _ int64) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.unrecorded = append(m.unrecorded, quotas.Usage{Dimension: dimension, Value: value})
}

func (m *fakeQuotaManager) MaxValueInWindow(quotas.Dimension, string) float64 {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.windowMax
}

// fakeReplication answers appends and fetches from programmable per-partition results and also
// serves as the marker gateway.
type fakeReplication struct {
	lock            sync.Mutex
	appendResults   map[fetchsession.PartitionKey]AppendResult
	fetchResults    map[fetchsession.PartitionKey]FetchPartitionResult
	appendEntries   []AppendEntry
	fetchParams     []FetchParams
	drainCalls      int
	markerCodes     map[txnmarkers.TopicPartition]int16
	offsetsTopic    string
	listResults     map[fetchsession.PartitionKey]ListOffsetsResult
	deleteResults   map[fetchsession.PartitionKey]DeleteRecordsResult
	epochResults    map[fetchsession.PartitionKey]EpochEndOffsetResult
	producerResults map[fetchsession.PartitionKey]ProducerStateResult
}

func (r *fakeReplication) setAppendResult(key fetchsession.PartitionKey, res AppendResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.appendResults == nil {
		r.appendResults = map[fetchsession.PartitionKey]AppendResult{}
	}
	res.Key = key
	r.appendResults[key] = res
}

func (r *fakeReplication) setFetchResult(key fetchsession.PartitionKey, res FetchPartitionResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.fetchResults == nil {
		r.fetchResults = map[fetchsession.PartitionKey]FetchPartitionResult{}
	}
	res.Key = key
	r.fetchResults[key] = res
}

func (r *fakeReplication) AppendRecords(entries []AppendEntry, completion func(results []AppendResult)) {
	r.lock.Lock()
	r.appendEntries = append(r.appendEntries, entries...)
	results := make([]AppendResult, 0, len(entries))
	for _, entry := range entries {
		if res, ok := r.appendResults[entry.Key]; ok {
			results = append(results, res)
		} else {
			results = append(results, AppendResult{Key: entry.Key, BaseOffset: 0})
		}
	}
	r.lock.Unlock()
	completion(results)
}

func (r *fakeReplication) FetchRecords(params FetchParams, completion func(results []FetchPartitionResult)) {
	r.lock.Lock()
	r.fetchParams = append(r.fetchParams, params)
	results := make([]FetchPartitionResult, 0, len(params.Partitions))
	for _, entry := range params.Partitions {
		if res, ok := r.fetchResults[entry.Key]; ok {
			results = append(results, res)
		} else {
			results = append(results, FetchPartitionResult{Key: entry.Key, HighWatermark: 10})
		}
	}
	r.lock.Unlock()
	completion(results)
}

func (r *fakeReplication) ListOffsets(_ int8, entries []ListOffsetsEntry, completion func(results []ListOffsetsResult)) {
	r.lock.Lock()
	results := make([]ListOffsetsResult, 0, len(entries))
	for _, entry := range entries {
		if res, ok := r.listResults[entry.Key]; ok {
			results = append(results, res)
		} else {
			results = append(results, ListOffsetsResult{Key: entry.Key, Offset: 100, Timestamp: entry.Timestamp})
		}
	}
	r.lock.Unlock()
	completion(results)
}

func (r *fakeReplication) DeleteRecords(entries []DeleteRecordsEntry, completion func(results []DeleteRecordsResult)) {
	r.lock.Lock()
	results := make([]DeleteRecordsResult, 0, len(entries))
	for _, entry := range entries {
		if res, ok := r.deleteResults[entry.Key]; ok {
			results = append(results, res)
		} else {
			results = append(results, DeleteRecordsResult{Key: entry.Key, LowWatermark: entry.Offset})
		}
	}
	r.lock.Unlock()
	completion(results)
}

func (r *fakeReplication) LastOffsetForLeaderEpoch(entries []EpochEndOffsetEntry, completion func(results []EpochEndOffsetResult)) {
	r.lock.Lock()
	results := make([]EpochEndOffsetResult, 0, len(entries))
	for _, entry := range entries {
		if res, ok := r.epochResults[entry.Key]; ok {
			results = append(results, res)
		} else {
			results = append(results, EpochEndOffsetResult{Key: entry.Key, LeaderEpoch: entry.LeaderEpoch, EndOffset: 50})
		}
	}
	r.lock.Unlock()
	completion(results)
}

func (r *fakeReplication) DescribeProducerState(partitions []fetchsession.PartitionKey, completion func(results []ProducerStateResult)) {
	r.lock.Lock()
	results := make([]ProducerStateResult, 0, len(partitions))
	for _, key := range partitions {
		if res, ok := r.producerResults[key]; ok {
			results = append(results, res)
		} else {
			results = append(results, ProducerStateResult{Key: key})
		}
	}
	r.lock.Unlock()
	completion(results)
}

func (r *fakeReplication) DescribeLogDirs([]kafkaprotocol.DescribeLogDirsRequestDescribableLogDirTopic) ([]kafkaprotocol.DescribeLogDirsResponseDescribeLogDirsResult, error) {
	return nil, nil
}

func (r *fakeReplication) AlterReplicaLogDirs(req *kafkaprotocol.AlterReplicaLogDirsRequest) (*kafkaprotocol.AlterReplicaLogDirsResponse, error) {
	return &kafkaprotocol.AlterReplicaLogDirsResponse{}, nil
}

func (r *fakeReplication) TryCompleteDelayedActions() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.drainCalls++
}

func (r *fakeReplication) CheckPartition(tp txnmarkers.TopicPartition) int16 {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.markerCodes[tp]
}

func (r *fakeReplication) IsGroupMetadataPartition(tp txnmarkers.TopicPartition) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return tp.Topic == r.offsetsTopic
}

func (r *fakeReplication) AppendMarker(_ txnmarkers.Marker, partitions []txnmarkers.TopicPartition,
	completion func(results map[txnmarkers.TopicPartition]int16)) {
	results := make(map[txnmarkers.TopicPartition]int16, len(partitions))
	for _, tp := range partitions {
		results[tp] = kafkaprotocol.ErrorCodeNone
	}
	completion(results)
}

type fakeGroups struct {
	coordinator     Node
	coordinatorCode int16
}

func (g *fakeGroups) FindCoordinator(int8, string) (Node, int16) {
	return g.coordinator, g.coordinatorCode
}

func (g *fakeGroups) JoinGroup(_ *kafkaprotocol.RequestHeader, _ *kafkaprotocol.JoinGroupRequest,
	completion func(resp *kafkaprotocol.JoinGroupResponse)) {
	completion(&kafkaprotocol.JoinGroupResponse{})
}

func (g *fakeGroups) SyncGroup(_ *kafkaprotocol.SyncGroupRequest, completion func(resp *kafkaprotocol.SyncGroupResponse)) {
	completion(&kafkaprotocol.SyncGroupResponse{})
}

func (g *fakeGroups) Heartbeat(_ *kafkaprotocol.HeartbeatRequest, completion func(resp *kafkaprotocol.HeartbeatResponse)) {
	completion(&kafkaprotocol.HeartbeatResponse{})
}

func (g *fakeGroups) LeaveGroup(_ *kafkaprotocol.LeaveGroupRequest, completion func(resp *kafkaprotocol.LeaveGroupResponse)) {
	completion(&kafkaprotocol.LeaveGroupResponse{})
}

func (g *fakeGroups) OffsetCommit(req *kafkaprotocol.OffsetCommitRequest) (*kafkaprotocol.OffsetCommitResponse, error) {
	resp := &kafkaprotocol.OffsetCommitResponse{}
	for _, topic := range req.Topics {
		topicResp := kafkaprotocol.OffsetCommitResponseOffsetCommitResponseTopic{Name: topic.Name}
		for _, partition := range topic.Partitions {
			topicResp.Partitions = append(topicResp.Partitions,
				kafkaprotocol.OffsetCommitResponseOffsetCommitResponsePartition{PartitionIndex: partition.PartitionIndex})
		}
		resp.Topics = append(resp.Topics, topicResp)
	}
	return resp, nil
}

func (g *fakeGroups) OffsetCommitTransactional(req *kafkaprotocol.TxnOffsetCommitRequest) (*kafkaprotocol.TxnOffsetCommitResponse, error) {
	resp := &kafkaprotocol.TxnOffsetCommitResponse{}
	for _, topic := range req.Topics {
		topicResp := kafkaprotocol.TxnOffsetCommitResponseTxnOffsetCommitResponseTopic{Name: topic.Name}
		for _, partition := range topic.Partitions {
			topicResp.Partitions = append(topicResp.Partitions,
				kafkaprotocol.TxnOffsetCommitResponseTxnOffsetCommitResponsePartition{PartitionIndex: partition.PartitionIndex})
		}
		resp.Topics = append(resp.Topics, topicResp)
	}
	return resp, nil
}

func (g *fakeGroups) OffsetFetch(req *kafkaprotocol.OffsetFetchRequestOffsetFetchRequestGroup, _ bool) (*kafkaprotocol.OffsetFetchResponseOffsetFetchResponseGroup, error) {
	return &kafkaprotocol.OffsetFetchResponseOffsetFetchResponseGroup{GroupId: req.GroupId}, nil
}

func (g *fakeGroups) OffsetDelete(*kafkaprotocol.OffsetDeleteRequest) (*kafkaprotocol.OffsetDeleteResponse, error) {
	return &kafkaprotocol.OffsetDeleteResponse{}, nil
}

func (g *fakeGroups) ListGroups([]string, []string) ([]kafkaprotocol.ListGroupsResponseListedGroup, int16) {
	return nil, kafkaprotocol.ErrorCodeNone
}

func (g *fakeGroups) DescribeGroups([]string) []kafkaprotocol.DescribeGroupsResponseDescribedGroup {
	return nil
}

func (g *fakeGroups) DeleteGroups([]string) []kafkaprotocol.DeleteGroupsResponseDeletableGroupResult {
	return nil
}

func (g *fakeGroups) ConsumerGroupHeartbeat(*kafkaprotocol.ConsumerGroupHeartbeatRequest) (*kafkaprotocol.ConsumerGroupHeartbeatResponse, error) {
	return &kafkaprotocol.ConsumerGroupHeartbeatResponse{}, nil
}

func (g *fakeGroups) ConsumerGroupDescribe([]string) []kafkaprotocol.ConsumerGroupDescribeResponseDescribedGroup {
	return nil
}

func (g *fakeGroups) ShareGroupHeartbeat(*kafkaprotocol.ShareGroupHeartbeatRequest) (*kafkaprotocol.ShareGroupHeartbeatResponse, error) {
	return &kafkaprotocol.ShareGroupHeartbeatResponse{}, nil
}

func (g *fakeGroups) ShareGroupDescribe([]string) []kafkaprotocol.ShareGroupDescribeResponseDescribedGroup {
	return nil
}

func (g *fakeGroups) CompleteTransaction(_ txnmarkers.TopicPartition, _ int64, _ int16, _ int32, _ bool,
	completion func(errorCode int16)) {
	completion(kafkaprotocol.ErrorCodeNone)
}

type fakeTxns struct {
	initProducerResp *kafkaprotocol.InitProducerIdResponse
	endTxnResp       *kafkaprotocol.EndTxnResponse
}

func (x *fakeTxns) InitProducerID(_ *kafkaprotocol.InitProducerIdRequest, completion func(resp *kafkaprotocol.InitProducerIdResponse)) {
	resp := x.initProducerResp
	if resp == nil {
		resp = &kafkaprotocol.InitProducerIdResponse{ProducerId: 1000}
	}
	completion(resp)
}

func (x *fakeTxns) AddPartitionsToTxn(req *kafkaprotocol.AddPartitionsToTxnRequest) *kafkaprotocol.AddPartitionsToTxnResponse {
	return &kafkaprotocol.AddPartitionsToTxnResponse{}
}

func (x *fakeTxns) AddOffsetsToTxn(*kafkaprotocol.AddOffsetsToTxnRequest) *kafkaprotocol.AddOffsetsToTxnResponse {
	return &kafkaprotocol.AddOffsetsToTxnResponse{}
}

func (x *fakeTxns) EndTxn(_ *kafkaprotocol.EndTxnRequest, completion func(resp *kafkaprotocol.EndTxnResponse)) {
	resp := x.endTxnResp
	if resp == nil {
		resp = &kafkaprotocol.EndTxnResponse{}
	}
	completion(resp)
}

func (x *fakeTxns) DescribeTransactions([]string) []kafkaprotocol.DescribeTransactionsResponseTransactionState {
	return nil
}

func (x *fakeTxns) ListTransactions(*kafkaprotocol.ListTransactionsRequest) (*kafkaprotocol.ListTransactionsResponse, error) {
	return &kafkaprotocol.ListTransactionsResponse{}, nil
}

type fakeShares struct {
	lock         sync.Mutex
	fetchResults []sharefetch.FetchResult
	ackResults   []sharefetch.AckResult
	fetchCalls   []ShareFetchParams
	ackCalls     [][]ShareAckEntry
}

func (s *fakeShares) FetchRecords(_ string, _ uuid.UUID, params ShareFetchParams,
	completion func(results []sharefetch.FetchResult)) {
	s.lock.Lock()
	s.fetchCalls = append(s.fetchCalls, params)
	results := s.fetchResults
	if results == nil {
		for _, key := range params.Partitions {
			results = append(results, sharefetch.FetchResult{
				Key:  key,
				Data: kafkaprotocol.ShareFetchResponsePartitionData{PartitionIndex: key.Partition},
			})
		}
	}
	s.lock.Unlock()
	completion(results)
}

func (s *fakeShares) Acknowledge(_ string, _ uuid.UUID, entries []ShareAckEntry,
	completion func(results []sharefetch.AckResult)) {
	s.lock.Lock()
	s.ackCalls = append(s.ackCalls, entries)
	results := s.ackResults
	if results == nil {
		for _, entry := range entries {
			results = append(results, sharefetch.AckResult{Key: entry.Key})
		}
	}
	s.lock.Unlock()
	completion(results)
}

func (s *fakeShares) AcquisitionLockTimeoutMs(string) int32 {
	return 30000
}

type fakeResolver struct {
	lock   sync.Mutex
	byName map[string]TopicInfo
	byID   map[uuid.UUID]TopicInfo
}

func newFakeResolver() *fakeResolver {
	return &fakeResolver{byName: map[string]TopicInfo{}, byID: map[uuid.UUID]TopicInfo{}}
}

func (r *fakeResolver) addTopic(name string, partitions int32) TopicInfo {
	r.lock.Lock()
	defer r.lock.Unlock()
	info := TopicInfo{Name: name, ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)), PartitionCount: partitions}
	r.byName[name] = info
	r.byID[info.ID] = info
	return info
}

func (r *fakeResolver) ResolveName(name string) (TopicInfo, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	info, ok := r.byName[name]
	return info, ok
}

func (r *fakeResolver) ResolveID(id uuid.UUID) (TopicInfo, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	info, ok := r.byID[id]
	return info, ok
}

type fakeForwarder struct {
	lock     sync.Mutex
	respBody []byte
	err      error
	calls    int
}

func (f *fakeForwarder) Forward(_ *kafkaprotocol.RequestHeader, _ []byte, completion func(respBody []byte, err error)) {
	f.lock.Lock()
	f.calls++
	respBody, err := f.respBody, f.err
	f.lock.Unlock()
	completion(respBody, err)
}
