package kafkaprotocol

const (
	APIKeyProduce                 = 0
	APIKeyFetch                   = 1
	APIKeyListOffsets             = 2
	APIKeyMetadata                = 3
	APIKeyOffsetCommit            = 8
	APIKeyOffsetFetch             = 9
	APIKeyFindCoordinator         = 10
	APIKeyJoinGroup               = 11
	APIKeyHeartbeat               = 12
	APIKeyLeaveGroup              = 13
	APIKeySyncGroup               = 14
	APIKeyDescribeGroups          = 15
	APIKeyListGroups              = 16
	APIKeySaslHandshake           = 17
	APIKeyAPIVersions             = 18
	APIKeyCreateTopics            = 19
	APIKeyDeleteTopics            = 20
	APIKeyDeleteRecords           = 21
	APIKeyInitProducerId          = 22
	APIKeyOffsetForLeaderEpoch    = 23
	APIKeyAddPartitionsToTxn      = 24
	APIKeyAddOffsetsToTxn         = 25
	APIKeyEndTxn                  = 26
	APIKeyWriteTxnMarkers         = 27
	APIKeyTxnOffsetCommit         = 28
	APIKeyDescribeAcls            = 29
	APIKeyCreateAcls              = 30
	APIKeyDeleteAcls              = 31
	APIKeyDescribeConfigs         = 32
	APIKeyAlterConfigs            = 33
	APIKeyAlterReplicaLogDirs     = 34
	APIKeyDescribeLogDirs         = 35
	APIKeySaslAuthenticate        = 36
	APIKeyCreatePartitions        = 37
	APIKeyDeleteGroups            = 42
	APIKeyIncrementalAlterConfigs = 44
	APIKeyOffsetDelete            = 47
	APIKeyUpdateFeatures          = 57
	APIKeyDescribeProducers       = 61
	APIKeyDescribeTransactions    = 65
	APIKeyListTransactions        = 66
	APIKeyConsumerGroupHeartbeat  = 68
	APIKeyConsumerGroupDescribe   = 69
	APIKeyShareGroupHeartbeat     = 76
	APIKeyShareGroupDescribe      = 77
	APIKeyShareFetch              = 78
	APIKeyShareAcknowledge        = 79
	APIKeyAlterShareGroupOffsets  = 91
)

const (
	ErrorCodeUnknownServerError                 = -1
	ErrorCodeNone                               = 0
	ErrorCodeOffsetOutOfRange                   = 1
	ErrorCodeCorruptMessage                     = 2
	ErrorCodeUnknownTopicOrPartition            = 3
	ErrorCodeInvalidFetchSize                   = 4
	ErrorCodeLeaderNotAvailable                 = 5
	ErrorCodeNotLeaderOrFollower                = 6
	ErrorCodeRequestTimedOut                    = 7
	ErrorCodeBrokerNotAvailable                 = 8
	ErrorCodeReplicaNotAvailable                = 9
	ErrorCodeMessageTooLarge                    = 10
	ErrorCodeStaleControllerEpoch               = 11
	ErrorCodeOffsetMetadataTooLarge             = 12
	ErrorCodeNetworkException                   = 13
	ErrorCodeCoordinatorLoadInProgress          = 14
	ErrorCodeCoordinatorNotAvailable            = 15
	ErrorCodeNotCoordinator                     = 16
	ErrorCodeInvalidTopicException              = 17
	ErrorCodeRecordListTooLarge                 = 18
	ErrorCodeNotEnoughReplicas                  = 19
	ErrorCodeNotEnoughReplicasAfterAppend       = 20
	ErrorCodeInvalidRequiredAcks                = 21
	ErrorCodeIllegalGeneration                  = 22
	ErrorCodeInconsistentGroupProtocol          = 23
	ErrorCodeInvalidGroupID                     = 24
	ErrorCodeUnknownMemberID                    = 25
	ErrorCodeInvalidSessionTimeout              = 26
	ErrorCodeRebalanceInProgress                = 27
	ErrorCodeInvalidCommitOffsetSize            = 28
	ErrorCodeTopicAuthorizationFailed           = 29
	ErrorCodeGroupAuthorizationFailed           = 30
	ErrorCodeClusterAuthorizationFailed         = 31
	ErrorCodeInvalidTimestamp                   = 32
	ErrorCodeUnsupportedSaslMechanism           = 33
	ErrorCodeIllegalSaslState                   = 34
	ErrorCodeUnsupportedVersion                 = 35
	ErrorCodeTopicAlreadyExists                 = 36
	ErrorCodeInvalidPartitions                  = 37
	ErrorCodeInvalidReplicationFactor           = 38
	ErrorCodeInvalidReplicaAssignment           = 39
	ErrorCodeInvalidConfig                      = 40
	ErrorCodeNotController                      = 41
	ErrorCodeInvalidRequest                     = 42
	ErrorCodeUnsupportedForMessageFormat        = 43
	ErrorCodePolicyViolation                    = 44
	ErrorCodeOutOfOrderSequenceNumber           = 45
	ErrorCodeDuplicateSequenceNumber            = 46
	ErrorCodeInvalidProducerEpoch               = 47
	ErrorCodeInvalidTxnState                    = 48
	ErrorCodeInvalidProducerIDMapping           = 49
	ErrorCodeInvalidTransactionTimeout          = 50
	ErrorCodeConcurrentTransactions             = 51
	ErrorCodeTransactionCoordinatorFenced       = 52
	ErrorCodeTransactionalIDAuthorizationFailed = 53
	ErrorCodeSecurityDisabled                   = 54
	ErrorCodeOperationNotAttempted              = 55
	ErrorCodeKafkaStorageError                  = 56
	ErrorCodeLogDirNotFound                     = 57
	ErrorCodeSaslAuthenticationFailed           = 58
	ErrorCodeUnknownProducerID                  = 59
	ErrorCodeReassignmentInProgress             = 60
	ErrorCodeDelegationTokenAuthDisabled        = 61
	ErrorCodeDelegationTokenNotFound            = 62
	ErrorCodeDelegationTokenOwnerMismatch       = 63
	ErrorCodeDelegationTokenRequestNotAllowed   = 64
	ErrorCodeDelegationTokenAuthorizationFailed = 65
	ErrorCodeDelegationTokenExpired             = 66
	ErrorCodeInvalidPrincipalType               = 67
	ErrorCodeNonEmptyGroup                      = 68
	ErrorCodeGroupIDNotFound                    = 69
	ErrorCodeFetchSessionIDNotFound             = 70
	ErrorCodeInvalidFetchSessionEpoch           = 71
	ErrorCodeListenerNotFound                   = 72
	ErrorCodeTopicDeletionDisabled              = 73
	ErrorCodeFencedLeaderEpoch                  = 74
	ErrorCodeUnknownLeaderEpoch                 = 75
	ErrorCodeUnsupportedCompressionType         = 76
	ErrorCodeStaleBrokerEpoch                   = 77
	ErrorCodeOffsetNotAvailable                 = 78
	ErrorCodeMemberIDRequired                   = 79
	ErrorCodePreferredLeaderNotAvailable        = 80
	ErrorCodeGroupMaxSizeReached                = 81
	ErrorCodeFencedInstanceID                   = 82
	ErrorCodeUnstableOffsetCommit               = 88
	ErrorCodeThrottlingQuotaExceeded            = 89
	ErrorCodeProducerFenced                     = 90
	ErrorCodeResourceNotFound                   = 91
	ErrorCodeUnknownTopicID                     = 100
	ErrorCodeInconsistentTopicID                = 103
	ErrorCodeTransactionalIDNotFound            = 105
	ErrorCodeFetchSessionTopicIDError           = 106
	ErrorCodeOffsetMovedToTieredStorage         = 109
	ErrorCodeFencedMemberEpoch                  = 110
	ErrorCodeUnsupportedAssignor                = 112
	ErrorCodeStaleMemberEpoch                   = 113
	ErrorCodeInvalidRecordState                 = 121
	ErrorCodeShareSessionNotFound               = 122
	ErrorCodeInvalidShareSessionEpoch           = 123
	ErrorCodeFencedStateEpoch                   = 124
)

// ApiVersionsResponseApiVersion describes the version range the broker accepts for one api key.
type ApiVersionsResponseApiVersion struct {
	ApiKey     int16
	MinVersion int16
	MaxVersion int16
}

var SupportedAPIVersions = []ApiVersionsResponseApiVersion{
	{ApiKey: APIKeyProduce, MinVersion: 3, MaxVersion: 11},
	{ApiKey: APIKeyFetch, MinVersion: 4, MaxVersion: 16},
	{ApiKey: APIKeyListOffsets, MinVersion: 1, MaxVersion: 8},
	{ApiKey: APIKeyOffsetCommit, MinVersion: 2, MaxVersion: 9},
	{ApiKey: APIKeyOffsetFetch, MinVersion: 1, MaxVersion: 9},
	{ApiKey: APIKeyFindCoordinator, MinVersion: 0, MaxVersion: 5},
	{ApiKey: APIKeyJoinGroup, MinVersion: 0, MaxVersion: 9},
	{ApiKey: APIKeyHeartbeat, MinVersion: 0, MaxVersion: 4},
	{ApiKey: APIKeyLeaveGroup, MinVersion: 0, MaxVersion: 5},
	{ApiKey: APIKeySyncGroup, MinVersion: 0, MaxVersion: 5},
	{ApiKey: APIKeyDescribeGroups, MinVersion: 0, MaxVersion: 5},
	{ApiKey: APIKeyListGroups, MinVersion: 0, MaxVersion: 5},
	{ApiKey: APIKeyAPIVersions, MinVersion: 0, MaxVersion: 3},
	{ApiKey: APIKeyCreateTopics, MinVersion: 0, MaxVersion: 7},
	{ApiKey: APIKeyDeleteTopics, MinVersion: 0, MaxVersion: 6},
	{ApiKey: APIKeyDeleteRecords, MinVersion: 0, MaxVersion: 2},
	{ApiKey: APIKeyInitProducerId, MinVersion: 0, MaxVersion: 5},
	{ApiKey: APIKeyOffsetForLeaderEpoch, MinVersion: 2, MaxVersion: 4},
	{ApiKey: APIKeyAddPartitionsToTxn, MinVersion: 0, MaxVersion: 5},
	{ApiKey: APIKeyAddOffsetsToTxn, MinVersion: 0, MaxVersion: 4},
	{ApiKey: APIKeyEndTxn, MinVersion: 0, MaxVersion: 4},
	{ApiKey: APIKeyWriteTxnMarkers, MinVersion: 0, MaxVersion: 1},
	{ApiKey: APIKeyTxnOffsetCommit, MinVersion: 0, MaxVersion: 4},
	{ApiKey: APIKeyDescribeAcls, MinVersion: 0, MaxVersion: 3},
	{ApiKey: APIKeyCreateAcls, MinVersion: 0, MaxVersion: 3},
	{ApiKey: APIKeyDeleteAcls, MinVersion: 0, MaxVersion: 3},
	{ApiKey: APIKeyDescribeConfigs, MinVersion: 0, MaxVersion: 4},
	{ApiKey: APIKeyAlterConfigs, MinVersion: 0, MaxVersion: 2},
	{ApiKey: APIKeyAlterReplicaLogDirs, MinVersion: 0, MaxVersion: 2},
	{ApiKey: APIKeyDescribeLogDirs, MinVersion: 0, MaxVersion: 4},
	{ApiKey: APIKeyCreatePartitions, MinVersion: 0, MaxVersion: 3},
	{ApiKey: APIKeyDeleteGroups, MinVersion: 0, MaxVersion: 2},
	{ApiKey: APIKeyIncrementalAlterConfigs, MinVersion: 0, MaxVersion: 1},
	{ApiKey: APIKeyOffsetDelete, MinVersion: 0, MaxVersion: 0},
	{ApiKey: APIKeyUpdateFeatures, MinVersion: 0, MaxVersion: 1},
	{ApiKey: APIKeyDescribeProducers, MinVersion: 0, MaxVersion: 0},
	{ApiKey: APIKeyDescribeTransactions, MinVersion: 0, MaxVersion: 0},
	{ApiKey: APIKeyListTransactions, MinVersion: 0, MaxVersion: 1},
	{ApiKey: APIKeyConsumerGroupHeartbeat, MinVersion: 0, MaxVersion: 1},
	{ApiKey: APIKeyConsumerGroupDescribe, MinVersion: 0, MaxVersion: 1},
	{ApiKey: APIKeyShareGroupHeartbeat, MinVersion: 0, MaxVersion: 0},
	{ApiKey: APIKeyShareGroupDescribe, MinVersion: 0, MaxVersion: 0},
	{ApiKey: APIKeyShareFetch, MinVersion: 0, MaxVersion: 0},
	{ApiKey: APIKeyShareAcknowledge, MinVersion: 0, MaxVersion: 0},
	{ApiKey: APIKeyAlterShareGroupOffsets, MinVersion: 0, MaxVersion: 0},
}

// SupportedVersionRange returns the enabled version range for an api key.
func SupportedVersionRange(apiKey int16) (minVer int16, maxVer int16, ok bool) {
	for _, v := range SupportedAPIVersions {
		if v.ApiKey == apiKey {
			return v.MinVersion, v.MaxVersion, true
		}
	}
	return 0, 0, false
}

type RequestHeader struct {
	ApiKey        int16
	ApiVersion    int16
	CorrelationId int32
	ClientId      *string
}
