package quotas

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordAndMaybeThrottleTakesMaxDelay(t *testing.T) {
	manager := &testManager{delays: map[Dimension]int32{
		DimensionFetch:   50,
		DimensionRequest: 200,
	}}
	tc := NewThrottleCoordinator(manager)
	decision := tc.RecordAndMaybeThrottle("client1", 1000,
		Usage{Dimension: DimensionFetch, Value: 1024},
		Usage{Dimension: DimensionRequest, Value: 1.5})
	require.Equal(t, int32(200), decision.DelayMs)
	require.Equal(t, DimensionRequest, decision.Dimension)
	require.True(t, decision.Throttled())
	// both usages recorded exactly once
	require.Equal(t, []recordedUsage{
		{dim: DimensionFetch, clientID: "client1", value: 1024},
		{dim: DimensionRequest, clientID: "client1", value: 1.5},
	}, manager.recorded)
}

func TestRecordAndMaybeThrottleNoViolation(t *testing.T) {
	manager := &testManager{}
	tc := NewThrottleCoordinator(manager)
	decision := tc.RecordAndMaybeThrottle("client1", 1000,
		Usage{Dimension: DimensionProduce, Value: 100})
	require.False(t, decision.Throttled())
	require.Equal(t, int32(0), decision.DelayMs)
}

func TestRecordProduceAcksZeroExemptFromRequestRate(t *testing.T) {
	manager := &testManager{delays: map[Dimension]int32{DimensionRequest: 500}}
	tc := NewThrottleCoordinator(manager)

	decision := tc.RecordProduce("client1", 0, 2048, 3, 1000)
	require.False(t, decision.Throttled())
	// the request-rate usage was still recorded even though its delay was not applied
	require.Len(t, manager.recorded, 2)
	require.Equal(t, DimensionRequest, manager.recorded[1].dim)

	decision = tc.RecordProduce("client1", 1, 2048, 3, 1000)
	require.True(t, decision.Throttled())
	require.Equal(t, int32(500), decision.DelayMs)
	require.Equal(t, DimensionRequest, decision.Dimension)
}

func TestRecordProduceBandwidthThrottlesAcksZero(t *testing.T) {
	manager := &testManager{delays: map[Dimension]int32{DimensionProduce: 120}}
	tc := NewThrottleCoordinator(manager)
	decision := tc.RecordProduce("client1", 0, 4096, 0, 1000)
	require.Equal(t, int32(120), decision.DelayMs)
	require.Equal(t, DimensionProduce, decision.Dimension)
}

func TestRecordFollowerFetchNeverDelays(t *testing.T) {
	manager := &testManager{delays: map[Dimension]int32{DimensionFollowerReplication: 999}}
	tc := NewThrottleCoordinator(manager)
	tc.RecordFollowerFetch("broker-2", 1 << 20, 1000)
	require.Equal(t, []recordedUsage{
		{dim: DimensionFollowerReplication, clientID: "broker-2", value: 1 << 20},
	}, manager.recorded)
}

func TestUnrecordThrottledRollsBackWinningDimensionOnly(t *testing.T) {
	manager := &testManager{delays: map[Dimension]int32{DimensionFetch: 100}}
	tc := NewThrottleCoordinator(manager)
	decision := tc.RecordFetch("client1", 8192, 2, 1000)
	require.True(t, decision.Throttled())

	tc.UnrecordThrottled("client1", decision, 8192, 1000)
	require.Equal(t, []recordedUsage{
		{dim: DimensionFetch, clientID: "client1", value: 8192},
	}, manager.unrecorded)
}

func TestUnrecordThrottledNoopWhenNotThrottled(t *testing.T) {
	manager := &testManager{}
	tc := NewThrottleCoordinator(manager)
	tc.UnrecordThrottled("client1", ThrottleDecision{}, 100, 1000)
	require.Empty(t, manager.unrecorded)
}

func TestMaxFetchBytes(t *testing.T) {
	manager := &testManager{windowMax: map[Dimension]float64{DimensionFetch: 1024}}
	tc := NewThrottleCoordinator(manager)
	require.Equal(t, int32(512), tc.MaxFetchBytes("client1", 512))
	require.Equal(t, int32(1024), tc.MaxFetchBytes("client1", 1 << 20))

	// no window configured - requested value passes through
	manager.windowMax = nil
	require.Equal(t, int32(1 << 20), tc.MaxFetchBytes("client1", 1 << 20))
}

type recordedUsage struct {
	dim      Dimension
	clientID string
	value    float64
}

type testManager struct {
	delays     map[Dimension]int32
	windowMax  map[Dimension]float64
	recorded   []recordedUsage
	unrecorded []recordedUsage
}

func (m *testManager) RecordAndGetDelayMs(dimension Dimension, clientID string, value float64, _ int64) int32 {
	m.recorded = append(m.recorded, recordedUsage{dim: dimension, clientID: clientID, value: value})
	return m.delays[dimension]
}

func (m *testManager) Unrecord(dimension Dimension, clientID string, value float64, _ int64) {
	m.unrecorded = append(m.unrecorded, recordedUsage{dim: dimension, clientID: clientID, value: value})
}

func (m *testManager) MaxValueInWindow(dimension Dimension, _ string) float64 {
	return m.windowMax[dimension]
}
