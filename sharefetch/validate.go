package sharefetch

import (
	"github.com/josefk31/kafka/kafkaprotocol"
)

// Acknowledge types for share-group record batches.
const (
	AckTypeGap     = int8(0)
	AckTypeAccept  = int8(1)
	AckTypeRelease = int8(2)
	AckTypeReject  = int8(3)
)

// AcknowledgementBatch is one offset range being acknowledged within a partition.
type AcknowledgementBatch struct {
	FirstOffset int64
	LastOffset  int64
	AckTypes    []int8
}

// ValidateBatches checks a partition's acknowledgement batches: each batch must be a valid
// offset range with a matching ack-type sequence, and the batches must be offset-ordered and
// non-overlapping. Returns the error code to answer with, or ErrorCodeNone.
func ValidateBatches(batches []AcknowledgementBatch) int16 {
	var prevLast int64
	for i, batch := range batches {
		if code := validateBatch(batch); code != kafkaprotocol.ErrorCodeNone {
			return code
		}
		if i > 0 && batch.FirstOffset <= prevLast {
			return kafkaprotocol.ErrorCodeInvalidRequest
		}
		prevLast = batch.LastOffset
	}
	return kafkaprotocol.ErrorCodeNone
}

func validateBatch(batch AcknowledgementBatch) int16 {
	if batch.FirstOffset > batch.LastOffset {
		return kafkaprotocol.ErrorCodeInvalidRequest
	}
	if len(batch.AckTypes) == 0 {
		return kafkaprotocol.ErrorCodeInvalidRequest
	}
	// A batch with more than one ack-type entry maps entries to offsets one to one
	if len(batch.AckTypes) > 1 && batch.LastOffset-batch.FirstOffset != int64(len(batch.AckTypes))-1 {
		return kafkaprotocol.ErrorCodeInvalidRequest
	}
	for _, ackType := range batch.AckTypes {
		if ackType < AckTypeGap || ackType > AckTypeReject {
			return kafkaprotocol.ErrorCodeInvalidRequest
		}
	}
	return kafkaprotocol.ErrorCodeNone
}
