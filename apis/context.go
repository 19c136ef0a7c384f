package apis

import (
	"sync/atomic"

	log "github.com/josefk31/kafka/logger"

	"github.com/josefk31/kafka/kafkaprotocol"
)

// Connection is the transport-side view of the client connection a request arrived on. Send
// encodes and writes a typed response; the codec lives with the transport.
type Connection interface {
	Send(resp interface{}) error
	Close()
}

// RequestContext carries one request through the dispatcher: who sent it, where it arrived,
// and how to answer. The response is sent at most once; the completion paths of concurrent
// sub-operations race to stamp completion, and only the first writer wins.
type RequestContext struct {
	Header       kafkaprotocol.RequestHeader
	Principal    string
	ListenerName string
	ClientHost   string

	conn      Connection
	responded atomic.Bool

	throttleTimeMs     atomic.Int32
	receivedNanos      int64
	localCompleteNanos atomic.Int64
}

func NewRequestContext(hdr kafkaprotocol.RequestHeader, principal string, listenerName string,
	clientHost string, receivedNanos int64, conn Connection) *RequestContext {
	return &RequestContext{
		Header:        hdr,
		Principal:     principal,
		ListenerName:  listenerName,
		ClientHost:    clientHost,
		receivedNanos: receivedNanos,
		conn:          conn,
	}
}

// ClientID returns the client id from the request header, or empty if the client sent none.
func (c *RequestContext) ClientID() string {
	if c.Header.ClientId == nil {
		return ""
	}
	return *c.Header.ClientId
}

// SendResponse writes the response to the connection. A second send for the same request is a
// broker bug: it is logged and dropped.
func (c *RequestContext) SendResponse(resp interface{}) error {
	if !c.responded.CompareAndSwap(false, true) {
		log.Errorf("duplicate response for apiKey %d correlationId %d from %s",
			c.Header.ApiKey, c.Header.CorrelationId, c.ClientHost)
		return nil
	}
	return c.conn.Send(resp)
}

// CloseConnection tears the connection down without responding, for protocol violations that
// leave the stream unparseable or for acks=0 produce failures.
func (c *RequestContext) CloseConnection() {
	c.responded.Store(true)
	c.conn.Close()
}

// Responded reports whether a response was sent or the connection closed.
func (c *RequestContext) Responded() bool {
	return c.responded.Load()
}

// SetThrottleTime records the throttle delay applied to this request, for metrics.
func (c *RequestContext) SetThrottleTime(ms int32) {
	c.throttleTimeMs.Store(ms)
}

// ThrottleTime returns the throttle delay applied to this request.
func (c *RequestContext) ThrottleTime() int32 {
	return c.throttleTimeMs.Load()
}

// StampLocalComplete records when the local portion of the request finished. Sub-operation
// completion paths race to call it; the first caller wins and later stamps are ignored.
func (c *RequestContext) StampLocalComplete(nanos int64) {
	c.localCompleteNanos.CompareAndSwap(0, nanos)
}

// LocalCompleteNanos returns the stamped local completion time, or 0 when not stamped yet.
func (c *RequestContext) LocalCompleteNanos() int64 {
	return c.localCompleteNanos.Load()
}

// ReceivedNanos returns when the transport handed the request to the dispatcher.
func (c *RequestContext) ReceivedNanos() int64 {
	return c.receivedNanos
}
