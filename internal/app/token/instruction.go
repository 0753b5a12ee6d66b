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
	"encoding/binary"

	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

const (
	tagMintTo                uint8 = 7
	tagTransferChecked       uint8 = 12
	tagInitializeAccount3    uint8 = 18
	tagInitializeMint2       uint8 = 20
	tagTransferHookExtension uint8 = 36

	transferHookInitialize uint8 = 0
)

// InitializeTransferHook must run before InitializeMint2, on an account sized
// MintWithHookSize.
func InitializeTransferHook(program, mint, authority, hookProgram pubkey.PublicKey) ledger.Instruction {
	data := make([]byte, 2+2*pubkey.Size)
	data[0] = tagTransferHookExtension
	data[1] = transferHookInitialize
	copy(data[2:34], authority[:])
	copy(data[34:66], hookProgram[:])
	return ledger.Instruction{
		ProgramID: program,
		Accounts:  []ledger.AccountMeta{ledger.Writable(mint, false)},
		Data:      data,
	}
}

func InitializeMint2(program, mint pubkey.PublicKey, decimals uint8, mintAuthority, freezeAuthority pubkey.PublicKey) ledger.Instruction {
	data := make([]byte, 2+pubkey.Size+1, 2+2*pubkey.Size+1)
	data[0] = tagInitializeMint2
	data[1] = decimals
	copy(data[2:34], mintAuthority[:])
	if !freezeAuthority.IsZero() {
		data[34] = 1
		data = append(data, freezeAuthority[:]...)
	}
	return ledger.Instruction{
		ProgramID: program,
		Accounts:  []ledger.AccountMeta{ledger.Writable(mint, false)},
		Data:      data,
	}
}

func InitializeAccount3(program, account, mint, owner pubkey.PublicKey) ledger.Instruction {
	data := make([]byte, 1+pubkey.Size)
	data[0] = tagInitializeAccount3
	copy(data[1:], owner[:])
	return ledger.Instruction{
		ProgramID: program,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(account, false),
			ledger.ReadOnly(mint, false),
		},
		Data: data,
	}
}

func MintTo(program, mint, destination, authority pubkey.PublicKey, amount uint64) ledger.Instruction {
	data := make([]byte, 9)
	data[0] = tagMintTo
	binary.LittleEndian.PutUint64(data[1:], amount)
	return ledger.Instruction{
		ProgramID: program,
		Accounts: []ledger.AccountMeta{
			ledger.Writable(mint, false),
			ledger.Writable(destination, false),
			ledger.ReadOnly(authority, true),
		},
		Data: data,
	}
}

// TransferChecked moves amount from source to destination. For a hooked mint the
// extras must hold the hook program, its registry and every account the registry
// resolves to.
func TransferChecked(
	program, source, mint, destination, authority pubkey.PublicKey,
	amount uint64,
	decimals uint8,
	extras ...ledger.AccountMeta,
) ledger.Instruction {
	data := make([]byte, 10)
	data[0] = tagTransferChecked
	binary.LittleEndian.PutUint64(data[1:9], amount)
	data[9] = decimals
	accounts := []ledger.AccountMeta{
		ledger.Writable(source, false),
		ledger.ReadOnly(mint, false),
		ledger.Writable(destination, false),
		ledger.ReadOnly(authority, true),
	}
	return ledger.Instruction{
		ProgramID: program,
		Accounts:  append(accounts, extras...),
		Data:      data,
	}
}
