package apis

import (
	"github.com/josefk31/kafka/common"
)

type Conf struct {
	NodeID            int32 `help:"Unique id of this broker within the cluster" default:"0"`
	DrainConcurrency  int64 `help:"Maximum concurrent delayed-action drains triggered by request completion" default:"8"`
	MaxThrottleTimeMs int32 `help:"Upper bound on the throttle delay reported to clients, in milliseconds" default:"30000"`
}

func NewConf() Conf {
	return Conf{
		DrainConcurrency:  8,
		MaxThrottleTimeMs: 30000,
	}
}

func (c *Conf) Validate() error {
	if c.NodeID < 0 {
		return common.NewBrokerErrorf(common.InvalidConfiguration, "invalid node-id %d", c.NodeID)
	}
	if c.DrainConcurrency < 1 {
		return common.NewBrokerErrorf(common.InvalidConfiguration, "invalid drain-concurrency %d", c.DrainConcurrency)
	}
	if c.MaxThrottleTimeMs < 0 {
		return common.NewBrokerErrorf(common.InvalidConfiguration, "invalid max-throttle-time-ms %d", c.MaxThrottleTimeMs)
	}
	return nil
}
