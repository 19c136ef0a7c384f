package common

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	log "github.com/josefk31/kafka/logger"
)

type ErrCode int

const (
	Unavailable ErrCode = iota + 2000
	ConnectionError
	ShutdownError
	UnsupportedVersion
	InvalidConfiguration ErrCode = iota + 3000
	InternalError        ErrCode = iota + 5000
)

type BrokerError struct {
	Code ErrCode
	Msg  string
}

func (b BrokerError) Error() string {
	return b.Msg
}

func NewBrokerError(errorCode ErrCode, msg string) BrokerError {
	return BrokerError{Code: errorCode, Msg: msg}
}

func NewBrokerErrorf(errorCode ErrCode, msgFormat string, args ...interface{}) BrokerError {
	return BrokerError{Code: errorCode, Msg: fmt.Sprintf(msgFormat, args...)}
}

func IsBrokerErrorWithCode(err error, code ErrCode) bool {
	var berr BrokerError
	if errors.As(err, &berr) {
		return berr.Code == code
	}
	return false
}

func IsUnavailableError(err error) bool {
	return IsBrokerErrorWithCode(err, Unavailable)
}

func IsUnsupportedVersionError(err error) bool {
	return IsBrokerErrorWithCode(err, UnsupportedVersion)
}

// LogInternalError logs the real error server-side and returns an opaque error carrying only a
// random reference, so server internals never leak to clients
func LogInternalError(err error) BrokerError {
	ref := uuid.New().String()
	log.Errorf("internal error (reference %s) occurred %+v", ref, err)
	return NewBrokerErrorf(InternalError,
		"an internal error has occurred - please search server logs for reference: %s", ref)
}
