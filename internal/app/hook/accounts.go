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
	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/token"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

func tokenAccount(name string, info *ledger.AccountInfo) (*token.Account, error) {
	if !token.IsTokenProgram(info.Owner) {
		return nil, violation(name, ConstraintTokenProgram)
	}
	acc, err := token.UnpackAccount(info.Data)
	if err != nil {
		return nil, &ConstraintError{Account: name, Constraint: ConstraintInitialized, Err: err}
	}
	if acc.State == token.AccountUninitialized {
		return nil, violation(name, ConstraintInitialized)
	}
	return acc, nil
}

func mintAccount(name string, info *ledger.AccountInfo) (*token.Mint, error) {
	if !token.IsTokenProgram(info.Owner) {
		return nil, violation(name, ConstraintTokenProgram)
	}
	mint, err := token.UnpackMint(info.Data)
	if err != nil {
		return nil, &ConstraintError{Account: name, Constraint: ConstraintInitialized, Err: err}
	}
	if !mint.IsInitialized {
		return nil, violation(name, ConstraintInitialized)
	}
	return mint, nil
}

func checkAddress(name string, info *ledger.AccountInfo, derive func() (pubkey.PublicKey, uint8, error)) (uint8, error) {
	want, bump, err := derive()
	if err != nil {
		return 0, errors.Wrapf(err, "failed to derive %s", name)
	}
	if info.Key != want {
		return 0, violation(name, ConstraintSeeds)
	}
	return bump, nil
}

// whaleAccount checks an existing observation account owned by program.
func whaleAccount(name string, program pubkey.PublicKey, info *ledger.AccountInfo) (*WhaleAccount, error) {
	if !info.IsWritable {
		return nil, violation(name, ConstraintMut)
	}
	if info.Owner != program {
		return nil, violation(name, ConstraintOwner)
	}
	state, err := DecodeWhaleAccount(info.Data)
	if err != nil {
		return nil, &ConstraintError{Account: name, Constraint: ConstraintInitialized, Err: err}
	}
	return state, nil
}
