package constants

import (
	"errors"
	"net/http"
)

// CodedError ошибка с HTTP кодом, разбирается в httpErrorHandler.
type CodedError struct {
	code int
	msg  string
}

func NewCodedError(code int, msg string) *CodedError {
	return &CodedError{code: code, msg: msg}
}

func (e *CodedError) Error() string {
	return e.msg
}

func (e *CodedError) Code() int {
	return e.code
}

var (
	ErrDBNotFound         = NewCodedError(http.StatusNotFound, "not found")
	ErrStoreUnavailable   = NewCodedError(http.StatusServiceUnavailable, "store unavailable")
	ErrInvalidVisitorName = NewCodedError(http.StatusBadRequest, "invalid visitor name")
	ErrBadRequest         = NewCodedError(http.StatusBadRequest, "bad request")
)

var (
	ErrMissingFile      = errors.New("missing file")
	ErrNoRawFiles       = errors.New("no raw csv files")
	ErrNoData           = errors.New("no data")
	ErrUnknownPollutant = errors.New("unknown pollutant")
	ErrUnknownCommune   = errors.New("unknown commune")
	ErrUnknownDriver    = errors.New("unknown database driver")
)
