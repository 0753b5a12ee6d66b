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

package token

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidAccountData   = errors.New("invalid token account data")
	ErrUninitializedState   = errors.New("state is uninitialized")
	ErrAlreadyInUse         = errors.New("account or token already in use")
	ErrMintMismatch         = errors.New("account not associated with this mint")
	ErrOwnerMismatch        = errors.New("owner does not match")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrMintDecimalsMismatch = errors.New("the provided decimals value different from the mint decimals")
	ErrOverflow             = errors.New("operation overflowed")
	ErrIncorrectProgramID   = errors.New("incorrect program id for instruction")
	ErrInvalidInstruction   = errors.New("invalid instruction")
	ErrMissingHookAccount   = errors.New("transfer hook account was not provided")
	ErrAccountFrozen        = errors.New("account is frozen")
)
