// nolint:all
package main

import (
	"fmt"

	"github.com/canopy-network/committee/lib"
)

const (
	CodeExpectedInvalidTransaction = 1
	CodeUnexpectedState            = 2
)

func ErrExpectedInvalid(txType, reason string) lib.ErrorI {
	return lib.NewError(CodeExpectedInvalidTransaction, lib.MainModule, fmt.Sprintf("expected invalid %s transaction due to %s but got no error", txType, reason))
}

func ErrUnexpectedState(msg string) lib.ErrorI {
	return lib.NewError(CodeUnexpectedState, lib.MainModule, fmt.Sprintf("unexpected node state: %s", msg))
}
