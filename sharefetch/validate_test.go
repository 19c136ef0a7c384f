package sharefetch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/josefk31/kafka/kafkaprotocol"
)

func TestValidateBatchesAccepts(t *testing.T) {
	batches := []AcknowledgementBatch{
		{FirstOffset: 0, LastOffset: 9, AckTypes: []int8{AckTypeAccept}},
		{FirstOffset: 10, LastOffset: 12, AckTypes: []int8{AckTypeAccept, AckTypeRelease, AckTypeReject}},
		{FirstOffset: 20, LastOffset: 20, AckTypes: []int8{AckTypeReject}},
	}
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), ValidateBatches(batches))
}

func TestValidateBatchesEmptyIsValid(t *testing.T) {
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), ValidateBatches(nil))
}

func TestValidateBatchesInvertedRange(t *testing.T) {
	batches := []AcknowledgementBatch{{FirstOffset: 10, LastOffset: 5, AckTypes: []int8{AckTypeAccept}}}
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRequest), ValidateBatches(batches))
}

func TestValidateBatchesNoAckTypes(t *testing.T) {
	batches := []AcknowledgementBatch{{FirstOffset: 0, LastOffset: 5}}
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRequest), ValidateBatches(batches))
}

func TestValidateBatchesAckTypeCountMismatch(t *testing.T) {
	// two ack types for a three-offset range
	batches := []AcknowledgementBatch{{FirstOffset: 0, LastOffset: 2, AckTypes: []int8{AckTypeAccept, AckTypeReject}}}
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRequest), ValidateBatches(batches))
}

func TestValidateBatchesUnknownAckType(t *testing.T) {
	batches := []AcknowledgementBatch{{FirstOffset: 0, LastOffset: 0, AckTypes: []int8{4}}}
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRequest), ValidateBatches(batches))
}

func TestValidateBatchesOverlapping(t *testing.T) {
	batches := []AcknowledgementBatch{
		{FirstOffset: 0, LastOffset: 10, AckTypes: []int8{AckTypeAccept}},
		{FirstOffset: 10, LastOffset: 20, AckTypes: []int8{AckTypeAccept}},
	}
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRequest), ValidateBatches(batches))
}

func TestValidateBatchesOutOfOrder(t *testing.T) {
	batches := []AcknowledgementBatch{
		{FirstOffset: 20, LastOffset: 30, AckTypes: []int8{AckTypeAccept}},
		{FirstOffset: 0, LastOffset: 10, AckTypes: []int8{AckTypeAccept}},
	}
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRequest), ValidateBatches(batches))
}
