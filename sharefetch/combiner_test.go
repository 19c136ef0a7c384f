package sharefetch

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
)

func TestCombineAttachesAckErrors(t *testing.T) {
	key0 := sharePartitionKey("topic1", 0)
	key1 := sharePartitionKey("topic1", 1)
	fetchResults := []FetchResult{
		{Key: key0, Data: kafkaprotocol.ShareFetchResponsePartitionData{PartitionIndex: 0}},
		{Key: key1, Data: kafkaprotocol.ShareFetchResponsePartitionData{PartitionIndex: 1}},
	}
	ackResults := []AckResult{{Key: key1, ErrorCode: kafkaprotocol.ErrorCodeInvalidRecordState}}

	combined := Combine(fetchResults, ackResults)
	require.Len(t, combined, 2)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), combined[0].Data.AcknowledgeErrorCode)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRecordState), combined[1].Data.AcknowledgeErrorCode)
}

func TestCombineSynthesizesAckOnlyPartitions(t *testing.T) {
	fetched := sharePartitionKey("topic1", 0)
	ackOnly := sharePartitionKey("topic2", 4)
	fetchResults := []FetchResult{{Key: fetched, Data: kafkaprotocol.ShareFetchResponsePartitionData{PartitionIndex: 0}}}
	ackResults := []AckResult{{Key: ackOnly, ErrorCode: kafkaprotocol.ErrorCodeInvalidRequest}}

	combined := Combine(fetchResults, ackResults)
	require.Len(t, combined, 2)
	require.Equal(t, fetched, combined[0].Key)
	require.Equal(t, ackOnly, combined[1].Key)
	require.Equal(t, int32(4), combined[1].Data.PartitionIndex)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeNone), combined[1].Data.ErrorCode)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRequest), combined[1].Data.AcknowledgeErrorCode)
}

func TestCombineEmptyInputs(t *testing.T) {
	require.Empty(t, Combine(nil, nil))
}

func TestCombinerDeliversOnceBothHalvesArrive(t *testing.T) {
	key := sharePartitionKey("topic1", 0)
	var delivered [][]FetchResult
	c := NewCombiner(func(results []FetchResult) {
		delivered = append(delivered, results)
	})

	c.CompleteFetch([]FetchResult{{Key: key, Data: kafkaprotocol.ShareFetchResponsePartitionData{PartitionIndex: 0}}})
	require.Empty(t, delivered)
	c.CompleteAcknowledge([]AckResult{{Key: key, ErrorCode: kafkaprotocol.ErrorCodeNone}})
	require.Len(t, delivered, 1)
	require.Len(t, delivered[0], 1)
}

func TestCombinerAcknowledgeFirst(t *testing.T) {
	key := sharePartitionKey("topic1", 0)
	var delivered []FetchResult
	c := NewCombiner(func(results []FetchResult) {
		delivered = results
	})

	c.CompleteAcknowledge([]AckResult{{Key: key, ErrorCode: kafkaprotocol.ErrorCodeInvalidRecordState}})
	require.Nil(t, delivered)
	c.CompleteFetch(nil)
	require.Len(t, delivered, 1)
	require.Equal(t, int16(kafkaprotocol.ErrorCodeInvalidRecordState), delivered[0].Data.AcknowledgeErrorCode)
}

func sharePartitionKey(topic string, partition int32) fetchsession.PartitionKey {
	return fetchsession.PartitionKey{
		Topic:     topic,
		TopicId:   uuid.NewSHA1(uuid.NameSpaceOID, []byte(topic)),
		Partition: partition,
	}
}
