package apis

import (
	"github.com/josefk31/kafka/kafkaprotocol"
)

func (d *Dispatcher) handleApiVersions(ctx *RequestContext, _ *kafkaprotocol.ApiVersionsRequest) error {
	resp := &kafkaprotocol.ApiVersionsResponse{
		ApiKeys: kafkaprotocol.SupportedAPIVersions,
	}
	return ctx.SendResponse(resp)
}

// sendApiVersionsError answers an ApiVersions request whose version the broker does not
// speak. The response still carries the supported ranges so the client can downgrade.
func (d *Dispatcher) sendApiVersionsError(ctx *RequestContext) error {
	resp := &kafkaprotocol.ApiVersionsResponse{
		ErrorCode: kafkaprotocol.ErrorCodeUnsupportedVersion,
		ApiKeys:   kafkaprotocol.SupportedAPIVersions,
	}
	return ctx.SendResponse(resp)
}
