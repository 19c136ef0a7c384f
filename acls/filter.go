package acls

import (
	log "github.com/josefk31/kafka/logger"
)

// Filter partitions request resources into authorized and unauthorized subsets for a principal.
// A denial is never an error - it becomes a per-resource error code in the response. Authorizer
// failures are treated as denials so an unavailable ACL store never grants access.
type Filter struct {
	authorizer Authorizer
}

func NewFilter(authorizer Authorizer) *Filter {
	return &Filter{authorizer: authorizer}
}

// Authorize performs a single resource check.
func (f *Filter) Authorize(principal string, resourceType ResourceType, resourceName string, operation Operation) bool {
	return f.authorize(principal, resourceType, resourceName, operation, true)
}

// AuthorizeNoAudit performs a single resource check without emitting an audit record for a
// denial. Used when probing existence without revealing it.
func (f *Filter) AuthorizeNoAudit(principal string, resourceType ResourceType, resourceName string, operation Operation) bool {
	return f.authorize(principal, resourceType, resourceName, operation, false)
}

func (f *Filter) authorize(principal string, resourceType ResourceType, resourceName string, operation Operation, audit bool) bool {
	var authorised bool
	var err error
	if audit {
		authorised, err = f.authorizer.Authorize(principal, resourceType, resourceName, operation)
	} else {
		authorised, err = f.authorizer.AuthorizeNoAudit(principal, resourceType, resourceName, operation)
	}
	if err != nil {
		log.Warnf("failed to authorize principal %s for %s on %s: %v", principal, operation, resourceName, err)
		return false
	}
	return authorised
}

// PartitionByAuthorized splits resources into authorized and unauthorized subsets, preserving
// input order. A resource occurring more than once is checked once, with the decision memoized
// for the remaining occurrences.
func (f *Filter) PartitionByAuthorized(principal string, resourceType ResourceType, operation Operation,
	resources []string) (authorized []string, unauthorized []string) {
	return f.partitionByAuthorized(principal, resourceType, operation, resources, true)
}

// PartitionByAuthorizedNoAudit is PartitionByAuthorized with denial audit records suppressed.
func (f *Filter) PartitionByAuthorizedNoAudit(principal string, resourceType ResourceType, operation Operation,
	resources []string) (authorized []string, unauthorized []string) {
	return f.partitionByAuthorized(principal, resourceType, operation, resources, false)
}

func (f *Filter) partitionByAuthorized(principal string, resourceType ResourceType, operation Operation,
	resources []string, audit bool) (authorized []string, unauthorized []string) {
	var decisions map[string]bool
	for _, resource := range resources {
		decision, seen := decisions[resource]
		if !seen {
			decision = f.authorize(principal, resourceType, resource, operation, audit)
			if decisions == nil {
				decisions = make(map[string]bool)
			}
			decisions[resource] = decision
		}
		if decision {
			authorized = append(authorized, resource)
		} else {
			unauthorized = append(unauthorized, resource)
		}
	}
	return authorized, unauthorized
}

// AuthorizedSet returns the authorized resources as a set, for callers that branch per
// resource rather than iterating the split slices.
func (f *Filter) AuthorizedSet(principal string, resourceType ResourceType, operation Operation,
	resources []string) map[string]bool {
	authorized, _ := f.PartitionByAuthorized(principal, resourceType, operation, resources)
	set := make(map[string]bool, len(authorized))
	for _, resource := range authorized {
		set[resource] = true
	}
	return set
}
