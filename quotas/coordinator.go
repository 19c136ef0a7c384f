package quotas

import (
	log "github.com/josefk31/kafka/logger"
)

// ThrottleCoordinator computes the response-level throttle for a request. Each applicable
// dimension is recorded exactly once, delays are computed independently, and only the maximum
// delay is applied to the channel.
type ThrottleCoordinator struct {
	manager Manager
}

func NewThrottleCoordinator(manager Manager) *ThrottleCoordinator {
	return &ThrottleCoordinator{manager: manager}
}

// RecordAndMaybeThrottle records every usage exactly once and returns the max-delay decision.
func (tc *ThrottleCoordinator) RecordAndMaybeThrottle(clientID string, nowMs int64, usages ...Usage) ThrottleDecision {
	var decision ThrottleDecision
	for _, usage := range usages {
		delayMs := tc.manager.RecordAndGetDelayMs(usage.Dimension, clientID, usage.Value, nowMs)
		if delayMs > decision.DelayMs {
			decision.DelayMs = delayMs
			decision.Dimension = usage.Dimension
		}
	}
	if decision.Throttled() && log.DebugEnabled {
		log.Debugf("throttling client %s for %d ms on %s quota", clientID, decision.DelayMs, decision.Dimension)
	}
	return decision
}

// RecordProduce charges a produce request against the produce bandwidth and request-rate
// dimensions. acks=0 requests are exempt from request-rate throttling but not from bandwidth
// throttling: the request-rate usage is still recorded, its delay is just never applied.
func (tc *ThrottleCoordinator) RecordProduce(clientID string, acks int16, sizeBytes int, requestTimeMs float64, nowMs int64) ThrottleDecision {
	bandwidthDelay := tc.manager.RecordAndGetDelayMs(DimensionProduce, clientID, float64(sizeBytes), nowMs)
	requestDelay := tc.manager.RecordAndGetDelayMs(DimensionRequest, clientID, requestTimeMs, nowMs)
	if acks == 0 {
		requestDelay = 0
	}
	if requestDelay > bandwidthDelay {
		return ThrottleDecision{DelayMs: requestDelay, Dimension: DimensionRequest}
	}
	return ThrottleDecision{DelayMs: bandwidthDelay, Dimension: DimensionProduce}
}

// RecordFetch charges a consumer fetch against the fetch bandwidth and request-rate dimensions.
func (tc *ThrottleCoordinator) RecordFetch(clientID string, sizeBytes int, requestTimeMs float64, nowMs int64) ThrottleDecision {
	return tc.RecordAndMaybeThrottle(clientID, nowMs,
		Usage{Dimension: DimensionFetch, Value: float64(sizeBytes)},
		Usage{Dimension: DimensionRequest, Value: requestTimeMs})
}

// RecordFollowerFetch charges replication traffic. The replication quota is recorded so it can
// be observed, but follower fetches are never delayed the way consumer fetches are.
func (tc *ThrottleCoordinator) RecordFollowerFetch(clientID string, sizeBytes int, nowMs int64) {
	tc.manager.RecordAndGetDelayMs(DimensionFollowerReplication, clientID, float64(sizeBytes), nowMs)
}

// RecordRequest charges a request that only participates in the request-rate dimension.
func (tc *ThrottleCoordinator) RecordRequest(clientID string, requestTimeMs float64, nowMs int64) ThrottleDecision {
	delayMs := tc.manager.RecordAndGetDelayMs(DimensionRequest, clientID, requestTimeMs, nowMs)
	return ThrottleDecision{DelayMs: delayMs, Dimension: DimensionRequest}
}

// UnrecordThrottled rolls back the winning dimension's speculative usage when the response it
// was charged for is being replaced by an empty, throttled one. Usage recorded against the
// other dimensions reflects work that actually happened and stays recorded.
func (tc *ThrottleCoordinator) UnrecordThrottled(clientID string, decision ThrottleDecision, value float64, nowMs int64) {
	if !decision.Throttled() {
		return
	}
	tc.manager.Unrecord(decision.Dimension, clientID, value, nowMs)
}

// MaxFetchBytes caps a fetch's max-bytes to what the client can consume in the current fetch
// quota window, so a single response cannot blow through the whole window.
func (tc *ThrottleCoordinator) MaxFetchBytes(clientID string, requested int32) int32 {
	windowMax := tc.manager.MaxValueInWindow(DimensionFetch, clientID)
	if windowMax <= 0 || float64(requested) <= windowMax {
		return requested
	}
	return int32(windowMax)
}
