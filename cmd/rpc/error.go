package rpc

import (
	"fmt"
	"net/http"

	"github.com/canopy-network/committee/lib"
)

func ErrInvalidParams(err error) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidParams, lib.RPCModule, fmt.Sprintf("invalid params: %s", err.Error()))
}

func ErrResourceUsage(err error) lib.ErrorI {
	return lib.NewError(lib.CodeResourceUsage, lib.RPCModule, fmt.Sprintf("resource usage failed with err: %s", err.Error()))
}

// StatusCode maps an error kind to the http status the server responds with
func StatusCode(err lib.ErrorI) int {
	switch err.Module() {
	case lib.StateMachineModule:
		switch err.Code() {
		case lib.CodeNotFound, lib.CodeCommitteeNotFound:
			return http.StatusNotFound
		case lib.CodeUnauthorized:
			return http.StatusUnauthorized
		}
	case lib.StorageModule:
		return http.StatusInternalServerError
	case lib.MainModule:
		if err.Code() == lib.CodePanic {
			return http.StatusInternalServerError
		}
	}
	return http.StatusBadRequest
}
