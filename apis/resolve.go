package apis

import (
	"github.com/google/uuid"

	"github.com/josefk31/kafka/common"
	"github.com/josefk31/kafka/fetchsession"
	"github.com/josefk31/kafka/kafkaprotocol"
)

// topicUUID parses the wire form of a topic id. Anything malformed collapses to the nil uuid,
// which is how the protocol spells "not set".
func topicUUID(b []byte) uuid.UUID {
	if len(b) != 16 {
		return uuid.Nil
	}
	id, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// resolveTopic maps a request topic, addressed by name or by id, to its resolved identity.
// The error code distinguishes the two addressing modes: an unknown name is
// UNKNOWN_TOPIC_OR_PARTITION, an unknown id UNKNOWN_TOPIC_ID.
func (d *Dispatcher) resolveTopic(name *string, topicID []byte) (TopicInfo, int16) {
	topicName := common.SafeDerefStringPtr(name)
	if topicName != "" {
		info, ok := d.resolver.ResolveName(topicName)
		if !ok {
			return TopicInfo{Name: topicName}, kafkaprotocol.ErrorCodeUnknownTopicOrPartition
		}
		return info, kafkaprotocol.ErrorCodeNone
	}
	id := topicUUID(topicID)
	if id == uuid.Nil {
		return TopicInfo{}, kafkaprotocol.ErrorCodeUnknownTopicID
	}
	info, ok := d.resolver.ResolveID(id)
	if !ok {
		return TopicInfo{ID: id}, kafkaprotocol.ErrorCodeUnknownTopicID
	}
	return info, kafkaprotocol.ErrorCodeNone
}

// partitionKey builds the session-stable identity for a partition of a resolved topic.
func partitionKey(info TopicInfo, partition int32) fetchsession.PartitionKey {
	return fetchsession.PartitionKey{Topic: info.Name, TopicId: info.ID, Partition: partition}
}

// checkPartitionIndex validates a partition index against the resolved partition count.
func checkPartitionIndex(info TopicInfo, partition int32) int16 {
	if partition < 0 || partition >= info.PartitionCount {
		return kafkaprotocol.ErrorCodeUnknownTopicOrPartition
	}
	return kafkaprotocol.ErrorCodeNone
}
