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
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

type Account struct {
	Lamports   uint64
	Data       []byte
	Owner      pubkey.PublicKey
	Executable bool
}

// InUse reports whether the address already holds an account. Creating an account
// over one that is in use is refused.
func (a *Account) InUse() bool {
	return a.Lamports > 0 || len(a.Data) > 0 || a.Owner != SystemProgramID
}

func (a *Account) clone() *Account {
	c := *a
	c.Data = append([]byte(nil), a.Data...)
	return &c
}

type AccountMeta struct {
	Key        pubkey.PublicKey
	IsSigner   bool
	IsWritable bool
}

func Writable(key pubkey.PublicKey, signer bool) AccountMeta {
	return AccountMeta{Key: key, IsSigner: signer, IsWritable: true}
}

func ReadOnly(key pubkey.PublicKey, signer bool) AccountMeta {
	return AccountMeta{Key: key, IsSigner: signer}
}

type Instruction struct {
	ProgramID pubkey.PublicKey
	Accounts  []AccountMeta
	Data      []byte
}

// AccountInfo is what a program sees of one account during a single invocation.
// Changes are applied to the transaction's working set when the program returns
// successfully, or when it hands the accounts to a nested invocation.
type AccountInfo struct {
	Key        pubkey.PublicKey
	IsSigner   bool
	IsWritable bool
	Lamports   uint64
	Data       []byte
	Owner      pubkey.PublicKey
	Executable bool
}

func (i *AccountInfo) Meta() AccountMeta {
	return AccountMeta{Key: i.Key, IsSigner: i.IsSigner, IsWritable: i.IsWritable}
}

func newAccountInfo(meta AccountMeta, acc *Account) *AccountInfo {
	return &AccountInfo{
		Key:        meta.Key,
		IsSigner:   meta.IsSigner,
		IsWritable: meta.IsWritable,
		Lamports:   acc.Lamports,
		Data:       append([]byte(nil), acc.Data...),
		Owner:      acc.Owner,
		Executable: acc.Executable,
	}
}
