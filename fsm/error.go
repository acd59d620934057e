package fsm

import (
	"fmt"

	"github.com/canopy-network/committee/lib"
)

// This file defines error objects for the State Machine module

func ErrInsufficientContribution(amount, minimum uint64) lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientContribution, lib.StateMachineModule,
		fmt.Sprintf("contribution too small: %d is below the minimum contribution of %d", amount, minimum))
}

func ErrUnauthorized(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeUnauthorized, lib.StateMachineModule, fmt.Sprintf("unauthorized: %s", reason))
}

func ErrNotManager() lib.ErrorI {
	return ErrUnauthorized("only the manager can call this")
}

func ErrNotApprover() lib.ErrorI {
	return ErrUnauthorized("not a member")
}

func ErrNotFound(index uint64) lib.ErrorI {
	return lib.NewError(lib.CodeNotFound, lib.StateMachineModule, fmt.Sprintf("request %d not found", index))
}

func ErrAlreadyApproved() lib.ErrorI {
	return lib.NewError(lib.CodeAlreadyApproved, lib.StateMachineModule, "already approved")
}

func ErrAlreadyCompleted() lib.ErrorI {
	return lib.NewError(lib.CodeAlreadyCompleted, lib.StateMachineModule, "request already completed")
}

func ErrInsufficientApprovals(approvals, approvers uint64) lib.ErrorI {
	return lib.NewError(lib.CodeInsufficientApprovals, lib.StateMachineModule,
		fmt.Sprintf("not enough approvals: %d of %d approvers is not a strict majority", approvals, approvers))
}

func ErrDisbursementFailed(reason string) lib.ErrorI {
	return lib.NewError(lib.CodeDisbursementFailed, lib.StateMachineModule, fmt.Sprintf("disbursement failed: %s", reason))
}

func ErrCommitteeNotFound(address fmt.Stringer) lib.ErrorI {
	return lib.NewError(lib.CodeCommitteeNotFound, lib.StateMachineModule, fmt.Sprintf("committee %s not found", address))
}

func ErrCommitteeExists(address fmt.Stringer) lib.ErrorI {
	return lib.NewError(lib.CodeCommitteeExists, lib.StateMachineModule, fmt.Sprintf("committee %s already exists", address))
}

func ErrBalanceOverflow() lib.ErrorI {
	return lib.NewError(lib.CodeBalanceOverflow, lib.StateMachineModule, "committee balance would overflow")
}

func ErrDuplicateTransaction(hash string) lib.ErrorI {
	return lib.NewError(lib.CodeDuplicateTransaction, lib.StateMachineModule, fmt.Sprintf("transaction %s was already applied", hash))
}

func ErrUnknownMessage(name string) lib.ErrorI {
	return lib.NewError(lib.CodeUnknownMsg, lib.StateMachineModule, fmt.Sprintf("message %q is unknown", name))
}

func ErrInvalidTxMessage() lib.ErrorI {
	return lib.NewError(lib.CodeInvalidTxMessage, lib.StateMachineModule, "invalid transaction message")
}

func ErrAddressEmpty() lib.ErrorI {
	return lib.NewError(lib.CodeAddressEmpty, lib.StateMachineModule, "address is empty")
}

func ErrAddressSize() lib.ErrorI {
	return lib.NewError(lib.CodeAddressSize, lib.StateMachineModule, "address size is invalid")
}

func ErrRecipientAddressSize() lib.ErrorI {
	return lib.NewError(lib.CodeRecipientAddressSize, lib.StateMachineModule, "recipient address size is invalid")
}

func ErrEmptyDescription() lib.ErrorI {
	return lib.NewError(lib.CodeEmptyDescription, lib.StateMachineModule, "description is empty")
}

func ErrDescriptionTooLong() lib.ErrorI {
	return lib.NewError(lib.CodeDescriptionTooLong, lib.StateMachineModule, fmt.Sprintf("description exceeds %d bytes", MaxDescriptionLength))
}

func ErrInvalidKey(k []byte) lib.ErrorI {
	return lib.NewError(lib.CodeInvalidKey, lib.StateMachineModule, fmt.Sprintf("key %s is invalid", lib.BytesToString(k)))
}
