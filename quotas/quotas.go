package quotas

// Dimension is an independently metered resource axis. Each dimension has its own windows,
// limits and throttling decision in the quota engine.
type Dimension int

const (
	DimensionProduce Dimension = iota
	DimensionFetch
	DimensionRequest
	DimensionLeaderReplication
	DimensionFollowerReplication
)

func (d Dimension) String() string {
	switch d {
	case DimensionProduce:
		return "produce"
	case DimensionFetch:
		return "fetch"
	case DimensionRequest:
		return "request"
	case DimensionLeaderReplication:
		return "leader-replication"
	case DimensionFollowerReplication:
		return "follower-replication"
	default:
		return "unknown"
	}
}

// Manager is the gateway to the token-bucket quota engine. Implementations own window and
// bucket state; this layer only records usage and applies the returned delays.
type Manager interface {
	// RecordAndGetDelayMs records value against the client's quota on the dimension and returns
	// the delay in ms the response should be held for, or 0 if the quota is not violated.
	RecordAndGetDelayMs(dimension Dimension, clientID string, value float64, nowMs int64) int32

	// Unrecord rolls back a speculative charge, so accounting only reflects bytes actually
	// answered.
	Unrecord(dimension Dimension, clientID string, value float64, nowMs int64)

	// MaxValueInWindow returns the largest value the client could consume in the current quota
	// window without violating the quota on the dimension.
	MaxValueInWindow(dimension Dimension, clientID string) float64
}

// Usage is one measured value to be charged against one dimension.
type Usage struct {
	Dimension Dimension
	Value     float64
}

// ThrottleDecision is the response-level throttle for one request: the maximum delay across all
// dimensions evaluated, and the dimension that produced it.
type ThrottleDecision struct {
	DelayMs   int32
	Dimension Dimension
}

func (t ThrottleDecision) Throttled() bool {
	return t.DelayMs > 0
}
