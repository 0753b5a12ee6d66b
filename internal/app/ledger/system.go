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
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

// SystemProgramID owns every account that has not been assigned to a program.
var SystemProgramID = pubkey.Zero

// MaxPermittedDataLength caps the size of a single account.
const MaxPermittedDataLength = 10 * 1024 * 1024

const (
	systemCreateAccount uint32 = 0
	systemTransfer      uint32 = 2

	createAccountDataLen = 4 + 8 + 8 + pubkey.Size
	transferDataLen      = 4 + 8
)

// CreateAccount builds the system instruction that funds, allocates and assigns a
// fresh account. Both accounts must sign.
func CreateAccount(from, to pubkey.PublicKey, lamports, space uint64, owner pubkey.PublicKey) Instruction {
	data := make([]byte, createAccountDataLen)
	binary.LittleEndian.PutUint32(data[0:4], systemCreateAccount)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	binary.LittleEndian.PutUint64(data[12:20], space)
	copy(data[20:], owner[:])
	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			Writable(from, true),
			Writable(to, true),
		},
		Data: data,
	}
}

func Transfer(from, to pubkey.PublicKey, lamports uint64) Instruction {
	data := make([]byte, transferDataLen)
	binary.LittleEndian.PutUint32(data[0:4], systemTransfer)
	binary.LittleEndian.PutUint64(data[4:12], lamports)
	return Instruction{
		ProgramID: SystemProgramID,
		Accounts: []AccountMeta{
			Writable(from, true),
			Writable(to, false),
		},
		Data: data,
	}
}

type systemProgram struct{}

func (systemProgram) Process(_ Host, _ pubkey.PublicKey, accounts []*AccountInfo, data []byte) error {
	if len(data) < 4 {
		return ErrInvalidInstructionData
	}
	if len(accounts) < 2 {
		return ErrNotEnoughAccountKeys
	}
	from, to := accounts[0], accounts[1]

	switch binary.LittleEndian.Uint32(data[0:4]) {
	case systemCreateAccount:
		if len(data) != createAccountDataLen {
			return ErrInvalidInstructionData
		}
		lamports := binary.LittleEndian.Uint64(data[4:12])
		space := binary.LittleEndian.Uint64(data[12:20])
		owner, _ := pubkey.New(data[20:])
		return createAccount(from, to, lamports, space, owner)
	case systemTransfer:
		if len(data) != transferDataLen {
			return ErrInvalidInstructionData
		}
		return transfer(from, to, binary.LittleEndian.Uint64(data[4:12]))
	default:
		return ErrInvalidInstructionData
	}
}

func createAccount(from, to *AccountInfo, lamports, space uint64, owner pubkey.PublicKey) error {
	if !from.IsSigner || !to.IsSigner {
		return ErrMissingRequiredSignature
	}
	existing := Account{Lamports: to.Lamports, Data: to.Data, Owner: to.Owner}
	if existing.InUse() {
		return errors.Wrapf(ErrAccountAlreadyInUse, "create account %s", to.Key)
	}
	if space > MaxPermittedDataLength {
		return errors.Wrapf(ErrInvalidArgument, "space %d exceeds limit", space)
	}
	if err := transfer(from, to, lamports); err != nil {
		return err
	}
	to.Data = make([]byte, space)
	to.Owner = owner
	return nil
}

func transfer(from, to *AccountInfo, lamports uint64) error {
	if !from.IsSigner {
		return ErrMissingRequiredSignature
	}
	if from.Lamports < lamports {
		return errors.Wrapf(ErrInsufficientFunds, "need %d lamports, have %d", lamports, from.Lamports)
	}
	from.Lamports -= lamports
	to.Lamports += lamports
	return nil
}
