package apis

import (
	"time"

	"github.com/josefk31/kafka/acls"
	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/kafkaprotocol"
	log "github.com/josefk31/kafka/logger"
	"github.com/josefk31/kafka/txnmarkers"
)

// handleWriteTxnMarkers serves the transaction coordinator's marker fan-out. Only brokers may
// call it; the tracker fans each (producerId, partition) pair out and the response is composed
// once every sub-write settled.
func (d *Dispatcher) handleWriteTxnMarkers(ctx *RequestContext, req *kafkaprotocol.WriteTxnMarkersRequest) error {
	if !d.authFilter.Authorize(ctx.Principal, acls.ResourceTypeCluster,
		acls.ClusterResourceName, acls.OperationClusterAction) {
		return ctx.SendResponse(markersErrorResponse(req, kafkaprotocol.ErrorCodeClusterAuthorizationFailed))
	}
	markers := make([]txnmarkers.Marker, 0, len(req.Markers))
	for _, m := range req.Markers {
		marker := txnmarkers.Marker{
			ProducerID:       m.ProducerId,
			ProducerEpoch:    m.ProducerEpoch,
			CoordinatorEpoch: m.CoordinatorEpoch,
			Commit:           m.TransactionResult,
		}
		for _, topic := range m.Topics {
			name := common.SafeDerefStringPtr(topic.Name)
			for _, partition := range topic.PartitionIndexes {
				marker.Partitions = append(marker.Partitions, txnmarkers.TopicPartition{
					Topic:     name,
					Partition: partition,
				})
			}
		}
		markers = append(markers, marker)
	}
	d.markerTracker.WriteMarkers(markers, func(results []txnmarkers.ProducerResult) {
		ctx.StampLocalComplete(time.Now().UnixNano())
		resp := &kafkaprotocol.WriteTxnMarkersResponse{}
		for _, result := range results {
			markerResult := kafkaprotocol.WriteTxnMarkersResponseWritableTxnMarkerResult{
				ProducerId: result.ProducerID,
			}
			topicIdx := map[string]int{}
			for _, tp := range result.Partitions {
				ti, ok := topicIdx[tp.Topic]
				if !ok {
					ti = len(markerResult.Topics)
					topicIdx[tp.Topic] = ti
					markerResult.Topics = append(markerResult.Topics,
						kafkaprotocol.WriteTxnMarkersResponseWritableTxnMarkerTopicResult{
							Name: common.StrPtr(tp.Topic),
						})
				}
				markerResult.Topics[ti].Partitions = append(markerResult.Topics[ti].Partitions,
					kafkaprotocol.WriteTxnMarkersResponseWritableTxnMarkerPartitionResult{
						PartitionIndex: tp.Partition,
						ErrorCode:      result.Errors[tp],
					})
			}
			resp.Markers = append(resp.Markers, markerResult)
		}
		if err := ctx.SendResponse(resp); err != nil {
			log.Warnf("failed to send write txn markers response: %v", err)
		}
	})
	return nil
}

// markersErrorResponse answers every partition of every marker with the same error code.
func markersErrorResponse(req *kafkaprotocol.WriteTxnMarkersRequest, errCode int16) *kafkaprotocol.WriteTxnMarkersResponse {
	resp := &kafkaprotocol.WriteTxnMarkersResponse{}
	for _, m := range req.Markers {
		markerResult := kafkaprotocol.WriteTxnMarkersResponseWritableTxnMarkerResult{ProducerId: m.ProducerId}
		for _, topic := range m.Topics {
			topicResult := kafkaprotocol.WriteTxnMarkersResponseWritableTxnMarkerTopicResult{Name: topic.Name}
			for _, partition := range topic.PartitionIndexes {
				topicResult.Partitions = append(topicResult.Partitions,
					kafkaprotocol.WriteTxnMarkersResponseWritableTxnMarkerPartitionResult{
						PartitionIndex: partition,
						ErrorCode:      errCode,
					})
			}
			markerResult.Topics = append(markerResult.Topics, topicResult)
		}
		resp.Markers = append(resp.Markers, markerResult)
	}
	return resp
}
