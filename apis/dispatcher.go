package apis

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
	"github.com/josefk31/kafka/metrics"
	"github.com/josefk31/kafka/quotas"
	"github.com/josefk31/kafka/txnmarkers"
)

// Gateways collects the subsystems the dispatcher composes responses from. The dispatcher
// owns none of them; it orchestrates.
type Gateways struct {
	Replication ReplicationGateway
	Groups      GroupGateway
	Txns        TxnGateway
	Shares      ShareGateway
	Markers     MarkerGateway
	Resolver    TopicResolver
	Forwarder   Forwarder
	Authorizer  acls.Authorizer
	Quotas      quotas.Manager
}

// ForwardedRequest is the undecoded body of a request served by the cluster controller rather
// than this broker. The transport hands it over verbatim.
type ForwardedRequest struct {
	Body []byte
}

// RawResponse is an already-encoded response body, sent back verbatim.
type RawResponse struct {
	Body []byte
}

type handlerFunc func(d *Dispatcher, ctx *RequestContext, req interface{}) error

type apiHandler struct {
	name string
	fn   handlerFunc
}

// Dispatcher routes every decoded request to its handler and owns the cross-cutting sequence
// around it: authorization filtering, quota accounting, session bookkeeping, response
// aggregation and the delayed-action drain after each request.
type Dispatcher struct {
	cfg           Conf
	authFilter    *acls.Filter
	throttles     *quotas.ThrottleCoordinator
	replication   ReplicationGateway
	groups        GroupGateway
	txns          TxnGateway
	shares        ShareGateway
	resolver      TopicResolver
	forwarder     Forwarder
	fetchSessions *fetchsession.Registry
	shareSessions *fetchsession.ShareRegistry
	markerTracker *txnmarkers.Tracker
	drainSem      *semaphore.Weighted
	handlers      map[int16]apiHandler
}

func NewDispatcher(cfg Conf, sessionCfg fetchsession.Conf, gw Gateways) (*Dispatcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	fetchSessions, err := fetchsession.NewRegistry(sessionCfg)
	if err != nil {
		return nil, err
	}
	shareSessions, err := fetchsession.NewShareRegistry(sessionCfg)
	if err != nil {
		return nil, err
	}
	d := &Dispatcher{
		cfg:           cfg,
		authFilter:    acls.NewFilter(gw.Authorizer),
		throttles:     quotas.NewThrottleCoordinator(gw.Quotas),
		replication:   gw.Replication,
		groups:        gw.Groups,
		txns:          gw.Txns,
		shares:        gw.Shares,
		resolver:      gw.Resolver,
		forwarder:     gw.Forwarder,
		fetchSessions: fetchSessions,
		shareSessions: shareSessions,
		markerTracker: txnmarkers.NewTracker(gw.Markers, gw.Markers, gw.Groups),
		drainSem:      semaphore.NewWeighted(cfg.DrainConcurrency),
	}
	d.handlers = newHandlerTable()
	return d, nil
}

func (d *Dispatcher) Stop() {
	d.fetchSessions.Stop()
	d.shareSessions.Stop()
}

// Dispatch routes one decoded request. It returns an error only when the request cannot be
// served at all; per-partition failures travel inside the response.
func (d *Dispatcher) Dispatch(ctx *RequestContext, req interface{}) error {
	apiKey := ctx.Header.ApiKey
	handler, ok := d.handlers[apiKey]
	if !ok {
		// The transport only decodes apis this broker advertises, so an unknown key here is
		// a broker bug, not a client error.
		log.Errorf("no handler for api key %d (correlationId %d from %s)", apiKey,
			ctx.Header.CorrelationId, ctx.ClientHost)
		ctx.CloseConnection()
		return errors.Errorf("unsupported api key %d", apiKey)
	}
	if err := d.checkVersion(ctx); err != nil {
		if apiKey == kafkaprotocol.APIKeyAPIVersions {
			// ApiVersions with an unknown version still gets a response, at version 0, so the
			// client can discover what the broker speaks.
			return d.sendApiVersionsError(ctx)
		}
		metrics.RequestErrorsTotal.WithLabelValues(handler.name).Inc()
		ctx.CloseConnection()
		return err
	}
	metrics.RequestsTotal.WithLabelValues(handler.name).Inc()
	defer d.afterRequest(ctx, handler.name)
	if err := handler.fn(d, ctx, req); err != nil {
		metrics.RequestErrorsTotal.WithLabelValues(handler.name).Inc()
		return err
	}
	return nil
}

func (d *Dispatcher) checkVersion(ctx *RequestContext) error {
	minVer, maxVer, ok := kafkaprotocol.SupportedVersionRange(ctx.Header.ApiKey)
	if !ok {
		return errors.Errorf("api key %d has no supported version range", ctx.Header.ApiKey)
	}
	if ctx.Header.ApiVersion < minVer || ctx.Header.ApiVersion > maxVer {
		return common.NewBrokerErrorf(common.UnsupportedVersion,
			"version %d for apiKey %d is unsupported. supported versions are %d to %d",
			ctx.Header.ApiVersion, ctx.Header.ApiKey, minVer, maxVer)
	}
	return nil
}

// afterRequest runs once the handler returned: it stamps local completion for requests whose
// backend already finished inline, observes the local time, and kicks the delayed-action
// drain. The drain is bounded; when every slot is busy the running drains pick up whatever
// this request made completable.
func (d *Dispatcher) afterRequest(ctx *RequestContext, apiName string) {
	ctx.StampLocalComplete(time.Now().UnixNano())
	localNanos := ctx.LocalCompleteNanos() - ctx.ReceivedNanos()
	if localNanos > 0 {
		metrics.RequestLocalTimeSeconds.WithLabelValues(apiName).Observe(float64(localNanos) / 1e9)
	}
	if d.replication == nil {
		return
	}
	if !d.drainSem.TryAcquire(1) {
		return
	}
	common.Go(func() {
		defer d.drainSem.Release(1)
		d.replication.TryCompleteDelayedActions()
	})
}

// recordThrottle folds a throttle decision into the context and metrics, returning the delay
// to stamp on the response, capped at the configured maximum.
func (d *Dispatcher) recordThrottle(ctx *RequestContext, decision quotas.ThrottleDecision) int32 {
	if !decision.Throttled() {
		return 0
	}
	delay := decision.DelayMs
	if delay > d.cfg.MaxThrottleTimeMs {
		delay = d.cfg.MaxThrottleTimeMs
	}
	ctx.SetThrottleTime(delay)
	metrics.ThrottledRequestsTotal.WithLabelValues(decision.Dimension.String()).Inc()
	return delay
}

func typed[Q any](fn func(d *Dispatcher, ctx *RequestContext, req *Q) error) handlerFunc {
	return func(d *Dispatcher, ctx *RequestContext, req interface{}) error {
		typedReq, ok := req.(*Q)
		if !ok {
			return errors.Errorf("wrong request type %T for api key %d", req, ctx.Header.ApiKey)
		}
		return fn(d, ctx, typedReq)
	}
}

func forwarded(name string) apiHandler {
	return apiHandler{name: name, fn: typed((*Dispatcher).handleForwarded)}
}

func newHandlerTable() map[int16]apiHandler {
	return map[int16]apiHandler{
		kafkaprotocol.APIKeyProduce:                 {name: "Produce", fn: typed((*Dispatcher).handleProduce)},
		kafkaprotocol.APIKeyFetch:                   {name: "Fetch", fn: typed((*Dispatcher).handleFetch)},
		kafkaprotocol.APIKeyListOffsets:             {name: "ListOffsets", fn: typed((*Dispatcher).handleListOffsets)},
		kafkaprotocol.APIKeyOffsetCommit:            {name: "OffsetCommit", fn: typed((*Dispatcher).handleOffsetCommit)},
		kafkaprotocol.APIKeyOffsetFetch:             {name: "OffsetFetch", fn: typed((*Dispatcher).handleOffsetFetch)},
		kafkaprotocol.APIKeyFindCoordinator:         {name: "FindCoordinator", fn: typed((*Dispatcher).handleFindCoordinator)},
		kafkaprotocol.APIKeyJoinGroup:               {name: "JoinGroup", fn: typed((*Dispatcher).handleJoinGroup)},
		kafkaprotocol.APIKeyHeartbeat:               {name: "Heartbeat", fn: typed((*Dispatcher).handleHeartbeat)},
		kafkaprotocol.APIKeyLeaveGroup:              {name: "LeaveGroup", fn: typed((*Dispatcher).handleLeaveGroup)},
		kafkaprotocol.APIKeySyncGroup:               {name: "SyncGroup", fn: typed((*Dispatcher).handleSyncGroup)},
		kafkaprotocol.APIKeyDescribeGroups:          {name: "DescribeGroups", fn: typed((*Dispatcher).handleDescribeGroups)},
		kafkaprotocol.APIKeyListGroups:              {name: "ListGroups", fn: typed((*Dispatcher).handleListGroups)},
		kafkaprotocol.APIKeyAPIVersions:             {name: "ApiVersions", fn: typed((*Dispatcher).handleApiVersions)},
		kafkaprotocol.APIKeyCreateTopics:            forwarded("CreateTopics"),
		kafkaprotocol.APIKeyDeleteTopics:            forwarded("DeleteTopics"),
		kafkaprotocol.APIKeyDeleteRecords:           {name: "DeleteRecords", fn: typed((*Dispatcher).handleDeleteRecords)},
		kafkaprotocol.APIKeyInitProducerId:          {name: "InitProducerId", fn: typed((*Dispatcher).handleInitProducerID)},
		kafkaprotocol.APIKeyOffsetForLeaderEpoch:    {name: "OffsetForLeaderEpoch", fn: typed((*Dispatcher).handleOffsetForLeaderEpoch)},
		kafkaprotocol.APIKeyAddPartitionsToTxn:      {name: "AddPartitionsToTxn", fn: typed((*Dispatcher).handleAddPartitionsToTxn)},
		kafkaprotocol.APIKeyAddOffsetsToTxn:         {name: "AddOffsetsToTxn", fn: typed((*Dispatcher).handleAddOffsetsToTxn)},
		kafkaprotocol.APIKeyEndTxn:                  {name: "EndTxn", fn: typed((*Dispatcher).handleEndTxn)},
		kafkaprotocol.APIKeyWriteTxnMarkers:         {name: "WriteTxnMarkers", fn: typed((*Dispatcher).handleWriteTxnMarkers)},
		kafkaprotocol.APIKeyTxnOffsetCommit:         {name: "TxnOffsetCommit", fn: typed((*Dispatcher).handleTxnOffsetCommit)},
		kafkaprotocol.APIKeyDescribeAcls:            forwarded("DescribeAcls"),
		kafkaprotocol.APIKeyCreateAcls:              forwarded("CreateAcls"),
		kafkaprotocol.APIKeyDeleteAcls:              forwarded("DeleteAcls"),
		kafkaprotocol.APIKeyDescribeConfigs:         forwarded("DescribeConfigs"),
		kafkaprotocol.APIKeyAlterConfigs:            forwarded("AlterConfigs"),
		kafkaprotocol.APIKeyAlterReplicaLogDirs:     {name: "AlterReplicaLogDirs", fn: typed((*Dispatcher).handleAlterReplicaLogDirs)},
		kafkaprotocol.APIKeyDescribeLogDirs:         {name: "DescribeLogDirs", fn: typed((*Dispatcher).handleDescribeLogDirs)},
		kafkaprotocol.APIKeyCreatePartitions:        forwarded("CreatePartitions"),
		kafkaprotocol.APIKeyDeleteGroups:            {name: "DeleteGroups", fn: typed((*Dispatcher).handleDeleteGroups)},
		kafkaprotocol.APIKeyIncrementalAlterConfigs: forwarded("IncrementalAlterConfigs"),
		kafkaprotocol.APIKeyUpdateFeatures:          forwarded("UpdateFeatures"),
		kafkaprotocol.APIKeyOffsetDelete:            {name: "OffsetDelete", fn: typed((*Dispatcher).handleOffsetDelete)},
		kafkaprotocol.APIKeyDescribeProducers:       {name: "DescribeProducers", fn: typed((*Dispatcher).handleDescribeProducers)},
		kafkaprotocol.APIKeyDescribeTransactions:    {name: "DescribeTransactions", fn: typed((*Dispatcher).handleDescribeTransactions)},
		kafkaprotocol.APIKeyListTransactions:        {name: "ListTransactions", fn: typed((*Dispatcher).handleListTransactions)},
		kafkaprotocol.APIKeyConsumerGroupHeartbeat:  {name: "ConsumerGroupHeartbeat", fn: typed((*Dispatcher).handleConsumerGroupHeartbeat)},
		kafkaprotocol.APIKeyConsumerGroupDescribe:   {name: "ConsumerGroupDescribe", fn: typed((*Dispatcher).handleConsumerGroupDescribe)},
		kafkaprotocol.APIKeyShareGroupHeartbeat:     {name: "ShareGroupHeartbeat", fn: typed((*Dispatcher).handleShareGroupHeartbeat)},
		kafkaprotocol.APIKeyShareGroupDescribe:      {name: "ShareGroupDescribe", fn: typed((*Dispatcher).handleShareGroupDescribe)},
		kafkaprotocol.APIKeyShareFetch:              {name: "ShareFetch", fn: typed((*Dispatcher).handleShareFetch)},
		kafkaprotocol.APIKeyShareAcknowledge:        {name: "ShareAcknowledge", fn: typed((*Dispatcher).handleShareAcknowledge)},
		kafkaprotocol.APIKeyAlterShareGroupOffsets:  forwarded("AlterShareGroupOffsets"),
	}
}
