//
// Copyright 2019 Insolar Technologies GmbH
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package ledger

import (
	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

// MaxInvokeDepth bounds nested invocations, the top-level instruction included.
const MaxInvokeDepth = 4

var (
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrMissingRequiredSignature = errors.New("missing required signature for instruction")
	ErrInsufficientFunds        = errors.New("insufficient funds for instruction")
	ErrInvalidArgument          = errors.New("invalid program argument")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrNotEnoughAccountKeys     = errors.New("insufficient account keys for instruction")
	ErrProgramNotFound          = errors.New("attempt to load a program that does not exist")
	ErrMissingAccount           = errors.New("an account required by the instruction is missing")
	ErrPrivilegeEscalation      = errors.New("cross-program invocation with unauthorized signer or writable account")
	ErrReadonlyDataModified     = errors.New("instruction modified data of a read-only account")
	ErrExternalDataModified     = errors.New("instruction modified data of an account it does not own")
	ErrExternalLamportSpend     = errors.New("instruction spent from the balance of an account it does not own")
	ErrModifiedProgramID        = errors.New("instruction illegally modified the program id of an account")
	ErrUnbalancedInstruction    = errors.New("sum of account balances before and after instruction do not match")
	ErrCallDepth                = errors.New("cross-program invocation call depth too deep")
)

// Host is the runtime surface available to a program while it executes.
type Host interface {
	Rent() Rent
	// Log appends a "Program log:" line to the transaction log.
	Log(format string, args ...interface{})
	// LogData appends a "Program data:" line with each chunk base64 encoded.
	LogData(data ...[]byte)
	// InvokeSigned runs a nested instruction. Each seed set signs for the address it
	// derives under the calling program.
	InvokeSigned(ix Instruction, accounts []*AccountInfo, signerSeeds ...[][]byte) error
}

// Program is an on-ledger entry point: it receives its own identity, the accounts
// in instruction order and the raw instruction payload.
type Program interface {
	Process(host Host, programID pubkey.PublicKey, accounts []*AccountInfo, data []byte) error
}

type ProgramFunc func(host Host, programID pubkey.PublicKey, accounts []*AccountInfo, data []byte) error

func (f ProgramFunc) Process(host Host, programID pubkey.PublicKey, accounts []*AccountInfo, data []byte) error {
	return f(host, programID, accounts, data)
}
