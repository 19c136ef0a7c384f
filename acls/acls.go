package acls

// Authorizer is the gateway to the ACL decision engine. Implementations own ACL storage and
// matching; this layer only consumes allow/deny decisions.
type Authorizer interface {
	Authorize(principal string, resourceType ResourceType, resourceName string, operation Operation) (bool, error)

	// AuthorizeNoAudit is the same decision without emitting an audit record for denials. It is
	// used when probing whether a resource would be visible to the principal, where logging a
	// denial would be noise.
	AuthorizeNoAudit(principal string, resourceType ResourceType, resourceName string, operation Operation) (bool, error)
}

type ResourceType int8

const (
	ResourceTypeUnknown         = ResourceType(0)
	ResourceTypeAny             = ResourceType(1)
	ResourceTypeTopic           = ResourceType(2)
	ResourceTypeGroup           = ResourceType(3)
	ResourceTypeCluster         = ResourceType(4)
	ResourceTypeTransactionalID = ResourceType(5)
	ResourceTypeDelegationToken = ResourceType(6)
)

type Operation int8

const (
	OperationUnknown         = Operation(0)
	OperationAny             = Operation(1) // Only used in filters when listing
	OperationAll             = Operation(2) // Only used in stored ACLs - represents access to all operations
	OperationRead            = Operation(3)
	OperationWrite           = Operation(4)
	OperationCreate          = Operation(5)
	OperationDelete          = Operation(6)
	OperationAlter           = Operation(7)
	OperationDescribe        = Operation(8)
	OperationClusterAction   = Operation(9)
	OperationDescribeConfigs = Operation(10)
	OperationAlterConfigs    = Operation(11)
	OperationIdempotentWrite = Operation(12)
)

func (o Operation) String() string {
	switch o {
	case OperationAny:
		return "Any"
	case OperationAll:
		return "All"
	case OperationRead:
		return "Read"
	case OperationWrite:
		return "Write"
	case OperationCreate:
		return "Create"
	case OperationDelete:
		return "Delete"
	case OperationAlter:
		return "Alter"
	case OperationDescribe:
		return "Describe"
	case OperationClusterAction:
		return "ClusterAction"
	case OperationDescribeConfigs:
		return "DescribeConfigs"
	case OperationAlterConfigs:
		return "AlterConfigs"
	case OperationIdempotentWrite:
		return "IdempotentWrite"
	default:
		return "Unknown"
	}
}

// ClusterResourceName is the resource name used for cluster-level authorization checks.
const ClusterResourceName = "kafka-cluster"
