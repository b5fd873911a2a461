// Package ledger models the delegate-action ledger this system settles
// against: signed, pre-authorized instruction sets that a relaying identity
// submits on the signer's behalf.
package ledger

import (
	"encoding/json"
	"fmt"
)

// Action kinds.
const (
	ActionFunctionCall = "FunctionCall"
)

// Recognized fungible-token transfer method names. The _call variant
// attaches a receiver-side callback; both move tokens the same way.
const (
	MethodTransfer     = "ft_transfer"
	MethodTransferCall = "ft_transfer_call"
)

// Action is one sub-action of a delegate action. Function-call actions
// carry the called method name and its JSON arguments.
type Action struct {
	Type       string          `json:"type"`
	MethodName string          `json:"methodName,omitempty"`
	Args       json.RawMessage `json:"args,omitempty"`
	Gas        uint64          `json:"gas,omitempty"`
	Deposit    string          `json:"deposit,omitempty"`
}

// TransferArgs are the arguments of a token transfer call.
type TransferArgs struct {
	ReceiverID string `json:"receiver_id"`
	Amount     string `json:"amount"`
	Memo       string `json:"memo,omitempty"`
	Msg        string `json:"msg,omitempty"`
}

// IsTokenTransfer reports whether the action is one of the recognized
// transfer calls.
func (a Action) IsTokenTransfer() bool {
	return a.Type == ActionFunctionCall &&
		(a.MethodName == MethodTransfer || a.MethodName == MethodTransferCall)
}

// TransferArgs parses the action arguments as transfer arguments.
func (a Action) TransferArgs() (TransferArgs, error) {
	var args TransferArgs
	if err := json.Unmarshal(a.Args, &args); err != nil {
		return args, fmt.Errorf("failed to unmarshal transfer args: %w", err)
	}
	return args, nil
}

// TransferAction builds a token transfer call action.
func TransferAction(method string, args TransferArgs, gas uint64) (Action, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Action{}, fmt.Errorf("failed to marshal transfer args: %w", err)
	}
	return Action{
		Type:       ActionFunctionCall,
		MethodName: method,
		Args:       raw,
		Gas:        gas,
		Deposit:    "1",
	}, nil
}
