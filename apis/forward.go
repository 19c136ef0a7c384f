package apis

import (
	"github.com/josefk31/kafka/common"
	log "github.com/josefk31/kafka/logger"
)

// handleForwarded relays a controller-served request and passes the raw response body back
// without decoding it. When the controller rejects the version the connection is closed, the
// same as a locally detected unsupported version.
func (d *Dispatcher) handleForwarded(ctx *RequestContext, req *ForwardedRequest) error {
	if d.forwarder == nil {
		log.Errorf("no forwarder configured for api key %d", ctx.Header.ApiKey)
		ctx.CloseConnection()
		return common.NewBrokerErrorf(common.InternalError, "no forwarder for api key %d", ctx.Header.ApiKey)
	}
	hdr := ctx.Header
	d.forwarder.Forward(&hdr, req.Body, func(respBody []byte, err error) {
		if err != nil {
			if common.IsUnsupportedVersionError(err) {
				ctx.CloseConnection()
				return
			}
			log.Warnf("failed to forward request with api key %d to controller: %v", hdr.ApiKey, err)
			ctx.CloseConnection()
			return
		}
		if err := ctx.SendResponse(&RawResponse{Body: respBody}); err != nil {
			log.Warnf("failed to send forwarded response: %v", err)
		}
	})
	return nil
}
