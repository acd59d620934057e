package lib

import (
	"errors"
	"fmt"
	"math"
)

type ErrorI interface {
	Code() ErrorCode     // Returns the error code
	Module() ErrorModule // Returns the error module
	error                // Implements the built-in error interface
}

var _ ErrorI = &Error{} // Ensures *Error implements ErrorI

type ErrorCode uint32 // Defines a type for error codes

type ErrorModule string // Defines a type for error modules

type Error struct {
	ECode   ErrorCode   `json:"code"`   // Error code
	EModule ErrorModule `json:"module"` // Error module
	Msg     string      `json:"msg"`    // Error message
}

func NewError(code ErrorCode, module ErrorModule, msg string) *Error {
	// Constructs a new Error instance
	return &Error{ECode: code, EModule: module, Msg: msg}
}

// Code() returns the associated error code
func (p *Error) Code() ErrorCode { return p.ECode }

// Module() returns module field
func (p *Error) Module() ErrorModule { return p.EModule }

// String() calls Error()
func (p *Error) String() string { return p.Error() }

// Error() returns a formatted string including module, code and message
func (p *Error) Error() string {
	return fmt.Sprintf("\nModule:  %s\nCode:    %d\nMessage: %s", p.EModule, p.ECode, p.Msg)
}

// IsKind() returns true if err (or anything it wraps) is an ErrorI of the given code and module
func IsKind(err error, code ErrorCode, module ErrorModule) bool {
	var e ErrorI
	if !errors.As(err, &e) {
		return false
	}
	return e.Code() == code && e.Module() == module
}

const (
	NoCode ErrorCode = math.MaxUint32

	// Main Module
	MainModule ErrorModule = "main"

	// Main Module Error Codes
	CodeInvalidAddress  ErrorCode = 1
	CodeJSONMarshal     ErrorCode = 2
	CodeJSONUnmarshal   ErrorCode = 3
	CodeUnmarshal       ErrorCode = 4
	CodeMarshal         ErrorCode = 5
	CodeStringToBytes   ErrorCode = 6
	CodeWriteFile       ErrorCode = 7
	CodeReadFile        ErrorCode = 8
	CodeInvalidArgument ErrorCode = 9
	CodeNewPubKey       ErrorCode = 10
	CodeNewPrivateKey   ErrorCode = 11
	CodeSign            ErrorCode = 12
	CodeKeystore        ErrorCode = 13
	CodePanic           ErrorCode = 14

	// State Machine Module
	StateMachineModule ErrorModule = "state_machine"

	// State Machine Module Error Codes
	CodeInsufficientContribution ErrorCode = 1
	CodeUnauthorized             ErrorCode = 2
	CodeNotFound                 ErrorCode = 3
	CodeAlreadyApproved          ErrorCode = 4
	CodeAlreadyCompleted         ErrorCode = 5
	CodeInsufficientApprovals    ErrorCode = 6
	CodeDisbursementFailed       ErrorCode = 7
	CodeCommitteeNotFound        ErrorCode = 8
	CodeBalanceOverflow          ErrorCode = 9
	CodeDuplicateTransaction     ErrorCode = 10
	CodeUnknownMsg               ErrorCode = 11
	CodeInvalidTxMessage         ErrorCode = 12
	CodeInvalidSignature         ErrorCode = 13
	CodeEmptySignature           ErrorCode = 14
	CodeAddressEmpty             ErrorCode = 15
	CodeAddressSize              ErrorCode = 16
	CodeRecipientAddressSize     ErrorCode = 17
	CodeEmptyDescription         ErrorCode = 18
	CodeDescriptionTooLong       ErrorCode = 19
	CodeCommitteeExists          ErrorCode = 20
	CodeInvalidKey               ErrorCode = 21

	// Storage Module
	StorageModule ErrorModule = "store"

	// Storage Module Error Codes
	CodeOpenDB       ErrorCode = 1
	CodeCloseDB      ErrorCode = 2
	CodeStoreSet     ErrorCode = 3
	CodeStoreGet     ErrorCode = 4
	CodeStoreDelete  ErrorCode = 5
	CodeCommitDB     ErrorCode = 6
	CodeTxnConflict  ErrorCode = 7
	CodeTxnDiscarded ErrorCode = 8

	// RPC Module
	RPCModule ErrorModule = "rpc"

	// RPC Module Error Codes
	CodeRPCTimeout    ErrorCode = 1
	CodeInvalidParams ErrorCode = 2
	CodePostRequest   ErrorCode = 3
	CodeGetRequest    ErrorCode = 4
	CodeHttpStatus    ErrorCode = 5
	CodeReadBody      ErrorCode = 6
	CodeResourceUsage ErrorCode = 7
)

func newLogError(err error) ErrorI {
	return NewError(NoCode, MainModule, err.Error())
}

func ErrUnmarshal(err error) ErrorI {
	return NewError(CodeUnmarshal, MainModule, fmt.Sprintf("unmarshal() failed with err: %s", err.Error()))
}

func ErrMarshal(err error) ErrorI {
	return NewError(CodeMarshal, MainModule, fmt.Sprintf("marshal() failed with err: %s", err.Error()))
}

func ErrJSONUnmarshal(err error) ErrorI {
	return NewError(CodeJSONUnmarshal, MainModule, fmt.Sprintf("json.unmarshal() failed with err: %s", err.Error()))
}

func ErrJSONMarshal(err error) ErrorI {
	return NewError(CodeJSONMarshal, MainModule, fmt.Sprintf("json.marshal() failed with err: %s", err.Error()))
}

func ErrStringToBytes(err error) ErrorI {
	return NewError(CodeStringToBytes, MainModule, fmt.Sprintf("stringToBytes() failed with err: %s", err.Error()))
}

func ErrInvalidAddress() ErrorI {
	return NewError(CodeInvalidAddress, MainModule, "address is invalid")
}

func ErrWriteFile(err error) ErrorI {
	return NewError(CodeWriteFile, MainModule, fmt.Sprintf("os.WriteFile() failed with err: %s", err.Error()))
}

func ErrReadFile(err error) ErrorI {
	return NewError(CodeReadFile, MainModule, fmt.Sprintf("os.ReadFile() failed with err: %s", err.Error()))
}

func ErrInvalidArgument() ErrorI {
	return NewError(CodeInvalidArgument, MainModule, "the argument is invalid")
}

func ErrNewPublicKey(err error) ErrorI {
	return NewError(CodeNewPubKey, MainModule, fmt.Sprintf("newPublicKey() failed with err: %s", err.Error()))
}

func ErrNewPrivateKey(err error) ErrorI {
	return NewError(CodeNewPrivateKey, MainModule, fmt.Sprintf("newPrivateKey() failed with err: %s", err.Error()))
}

func ErrSign(err error) ErrorI {
	return NewError(CodeSign, MainModule, fmt.Sprintf("sign() failed with err: %s", err.Error()))
}

func ErrKeystore(err error) ErrorI {
	return NewError(CodeKeystore, MainModule, fmt.Sprintf("keystore failed with err: %s", err.Error()))
}

func ErrPanic() ErrorI {
	return NewError(CodePanic, MainModule, "panic recovery")
}

func ErrServerTimeout() ErrorI {
	return NewError(CodeRPCTimeout, RPCModule, "server timeout")
}

func ErrPostRequest(err error) ErrorI {
	return NewError(CodePostRequest, RPCModule, fmt.Sprintf("http.Post() failed with err: %s", err.Error()))
}

func ErrGetRequest(err error) ErrorI {
	return NewError(CodeGetRequest, RPCModule, fmt.Sprintf("http.Get() failed with err: %s", err.Error()))
}

func ErrHttpStatus(status string, statusCode int, body []byte) ErrorI {
	return NewError(CodeHttpStatus, RPCModule, fmt.Sprintf("http response bad status %s with code %d and body %s", status, statusCode, body))
}

func ErrReadBody(err error) ErrorI {
	return NewError(CodeReadBody, RPCModule, fmt.Sprintf("io.ReadAll(http.ResponseBody) failed with err: %s", err.Error()))
}
