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

package hook

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/app/ledger"
)

var (
	ErrInvalidInstructionData       = ledger.ErrInvalidInstructionData
	ErrNotEnoughAccountKeys         = ledger.ErrNotEnoughAccountKeys
	ErrArithmeticOverflow           = errors.New("arithmetic overflow")
	ErrDeclaredProgramIDMismatch    = errors.New("the declared program id does not match the actual program id")
	ErrInstructionDidNotDeserialize = errors.New("the program could not deserialize the given instruction")
	ErrAccountDidNotDeserialize     = errors.New("failed to deserialize the account")
	ErrAccountDiscriminatorMismatch = errors.New("account discriminator did not match what was expected")
)

// Names of the account constraints checked before any instruction logic runs.
const (
	ConstraintTokenMint      = "token::mint"
	ConstraintTokenAuthority = "token::authority"
	ConstraintTokenProgram   = "token::program"
	ConstraintSeeds          = "seeds"
	ConstraintMut            = "mut"
	ConstraintSigner         = "signer"
	ConstraintOwner          = "owner"
	ConstraintInitialized    = "initialized"
	ConstraintAddress        = "address"
)

// ConstraintError reports an account that does not satisfy the relationship the
// instruction requires of it.
type ConstraintError struct {
	Account    string
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	msg := fmt.Sprintf("constraint %s was violated by account %s", e.Constraint, e.Account)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func violation(account, constraint string) error {
	return &ConstraintError{Account: account, Constraint: constraint}
}

// IsConstraintViolation reports whether err, or its cause, is a ConstraintError.
func IsConstraintViolation(err error) bool {
	_, ok := errors.Cause(err).(*ConstraintError)
	return ok
}

// Constraint returns the violated constraint name, or "" when err is not a
// ConstraintError.
func Constraint(err error) string {
	if ce, ok := errors.Cause(err).(*ConstraintError); ok {
		return ce.Constraint
	}
	return ""
}
