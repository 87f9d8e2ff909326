package errno

import (
	"errors"
	"net/http"
)

// Errno defines the error code logic
// 1xxxx: 通用错误, 2xxxx: 调用方输入错误 (Validation), 3xxxx: 上游错误 (节点 / Gas 预言机)
type Errno struct {
	Code    int
	Message string

	cause error
}

func (e Errno) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e Errno) Unwrap() error {
	return e.cause
}

// Is 按错误码比较，这样 errors.Is(err, errno.ErrEstimateGas) 对 Wrap 过的错误同样成立
func (e Errno) Is(target error) bool {
	var t Errno
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

// Wrap 附带底层原因，返回新值，不修改全局变量
func (e Errno) Wrap(cause error) Errno {
	e.cause = cause
	return e
}

// WithMessage 替换对外的错误描述
func (e Errno) WithMessage(msg string) Errno {
	e.Message = msg
	return e
}

func (e Errno) IsValidation() bool {
	return e.Code >= 20000 && e.Code < 30000
}

func (e Errno) IsUpstream() bool {
	return e.Code >= 30000 && e.Code < 40000
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var typed Errno
	if errors.As(err, &typed) {
		return typed.Code, typed.Error()
	}
	return InternalServerError.Code, err.Error()
}

// IsValidation reports whether err is a caller input error
func IsValidation(err error) bool {
	var typed Errno
	return errors.As(err, &typed) && typed.IsValidation()
}

// IsUpstream reports whether err came from the node or the gas oracle
func IsUpstream(err error) bool {
	var typed Errno
	return errors.As(err, &typed) && typed.IsUpstream()
}

// HTTPStatus 将错误类型映射为 HTTP 状态码
func HTTPStatus(err error) int {
	var typed Errno
	if !errors.As(err, &typed) {
		return http.StatusInternalServerError
	}
	switch {
	case typed.Code == OK.Code:
		return http.StatusOK
	case typed.Code == ErrBind.Code, typed.IsValidation():
		return http.StatusBadRequest
	case typed.Code == ErrTooManyRequests.Code:
		return http.StatusTooManyRequests
	case typed.IsUpstream():
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrTooManyRequests  = Errno{Code: 10003, Message: "Too many requests"}
)

// Validation Errors (20000+)
var (
	ErrInvalidValue        = Errno{Code: 20101, Message: "invalid value"}
	ErrInvalidGasPriceTier = Errno{Code: 20102, Message: "invalid gas price tier"}
	ErrGasBelowEstimate    = Errno{Code: 20103, Message: "gas below estimate"}
	ErrGasNotNumber        = Errno{Code: 20104, Message: "gas not a number"}
	ErrInvalidAddress      = Errno{Code: 20201, Message: "invalid address"}
	ErrInvalidTxHash       = Errno{Code: 20202, Message: "invalid transaction hash"}
	ErrInvalidBlockNumber  = Errno{Code: 20203, Message: "invalid block number"}
	ErrInvalidBlockTag     = Errno{Code: 20204, Message: "invalid block tag"}
	ErrInvalidTxIndex      = Errno{Code: 20205, Message: "invalid transaction index"}
	ErrSenderBusy          = Errno{Code: 20301, Message: "sender has a transaction in flight"}
)

// Upstream Errors (30000+)
var (
	ErrGasOracle       = Errno{Code: 30101, Message: "failed to fetch gas prices"}
	ErrEstimateGas     = Errno{Code: 30102, Message: "failed to estimate gas"}
	ErrNode            = Errno{Code: 30201, Message: "node request failed"}
	ErrSendTransaction = Errno{Code: 30202, Message: "failed to send transaction"}
	ErrImportAccount   = Errno{Code: 30203, Message: "failed to import account into node"}
	ErrLock            = Errno{Code: 30301, Message: "lock backend failure"}
)
