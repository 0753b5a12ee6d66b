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
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

func randomKey(t *testing.T) pubkey.PublicKey {
	k, err := pubkey.NewRandom()
	require.NoError(t, err)
	return k
}

func newTestBank() *Bank {
	return NewBank(logrus.New(), DefaultRent())
}

func TestRent_MinimumBalance(t *testing.T) {
	rent := DefaultRent()
	require.Equal(t, uint64(890880), rent.MinimumBalance(0))
	require.Equal(t, uint64((128+51)*3480*2), rent.MinimumBalance(51))
}

func TestBank_CreateAccount(t *testing.T) {
	ctx := context.Background()
	owner := randomKey(t)

	t.Run("created", func(t *testing.T) {
		bank := newTestBank()
		payer, fresh := randomKey(t), randomKey(t)
		bank.Airdrop(payer, 10000000)

		tx := NewTransaction([]pubkey.PublicKey{payer, fresh}, CreateAccount(payer, fresh, 2000000, 48, owner))
		receipt, err := bank.Process(ctx, tx)
		require.NoError(t, err)
		require.True(t, receipt.Success())
		require.Equal(t, uint64(1), receipt.Slot)

		acc, ok := bank.Account(fresh)
		require.True(t, ok)
		assert.Equal(t, uint64(2000000), acc.Lamports)
		assert.Equal(t, owner, acc.Owner)
		assert.Len(t, acc.Data, 48)

		payerAcc, ok := bank.Account(payer)
		require.True(t, ok)
		assert.Equal(t, uint64(8000000), payerAcc.Lamports)
	})

	t.Run("already_in_use", func(t *testing.T) {
		bank := newTestBank()
		payer, fresh := randomKey(t), randomKey(t)
		bank.Airdrop(payer, 10000000)
		bank.SetAccount(fresh, &Account{Lamports: 5, Data: []byte{1, 2, 3}, Owner: owner})

		tx := NewTransaction([]pubkey.PublicKey{payer, fresh}, CreateAccount(payer, fresh, 100, 8, owner))
		receipt, err := bank.Process(ctx, tx)
		require.Error(t, err)
		require.Equal(t, ErrAccountAlreadyInUse, errors.Cause(err))
		require.False(t, receipt.Success())

		acc, _ := bank.Account(fresh)
		assert.Equal(t, []byte{1, 2, 3}, acc.Data)
		payerAcc, _ := bank.Account(payer)
		assert.Equal(t, uint64(10000000), payerAcc.Lamports)
	})

	t.Run("missing_signature", func(t *testing.T) {
		bank := newTestBank()
		payer, fresh := randomKey(t), randomKey(t)
		bank.Airdrop(payer, 10000000)

		tx := NewTransaction([]pubkey.PublicKey{payer}, CreateAccount(payer, fresh, 100, 8, owner))
		_, err := bank.Process(ctx, tx)
		require.Equal(t, ErrMissingRequiredSignature, errors.Cause(err))
	})

	t.Run("insufficient_funds", func(t *testing.T) {
		bank := newTestBank()
		payer, fresh := randomKey(t), randomKey(t)
		bank.Airdrop(payer, 10)

		tx := NewTransaction([]pubkey.PublicKey{payer, fresh}, CreateAccount(payer, fresh, 100, 8, owner))
		_, err := bank.Process(ctx, tx)
		require.Equal(t, ErrInsufficientFunds, errors.Cause(err))
	})
}

func TestBank_Process_Atomic(t *testing.T) {
	ctx := context.Background()
	bank := newTestBank()
	payer, receiver := randomKey(t), randomKey(t)
	bank.Airdrop(payer, 1000)

	failing := randomKey(t)
	bank.RegisterProgram(failing, ProgramFunc(func(Host, pubkey.PublicKey, []*AccountInfo, []byte) error {
		return ErrInvalidArgument
	}))

	tx := NewTransaction(
		[]pubkey.PublicKey{payer},
		Transfer(payer, receiver, 400),
		Instruction{ProgramID: failing},
	)
	receipt, err := bank.Process(ctx, tx)
	require.Equal(t, ErrInvalidArgument, errors.Cause(err))
	require.False(t, receipt.Success())

	payerAcc, _ := bank.Account(payer)
	require.Equal(t, uint64(1000), payerAcc.Lamports)
	_, ok := bank.Account(receiver)
	require.False(t, ok)

	require.Contains(t, receipt.Logs, "Program "+failing.String()+" failed: invalid program argument")
}

func TestBank_Process_AccountRules(t *testing.T) {
	ctx := context.Background()
	program := randomKey(t)
	target := randomKey(t)

	scribble := ProgramFunc(func(_ Host, _ pubkey.PublicKey, accounts []*AccountInfo, _ []byte) error {
		accounts[0].Data[0] = 0xff
		return nil
	})

	t.Run("read_only", func(t *testing.T) {
		bank := newTestBank()
		bank.RegisterProgram(program, scribble)
		bank.SetAccount(target, &Account{Lamports: 1, Data: []byte{0}, Owner: program})

		tx := NewTransaction(nil, Instruction{ProgramID: program, Accounts: []AccountMeta{ReadOnly(target, false)}})
		_, err := bank.Process(ctx, tx)
		require.Equal(t, ErrReadonlyDataModified, errors.Cause(err))
	})

	t.Run("foreign_owner", func(t *testing.T) {
		bank := newTestBank()
		bank.RegisterProgram(program, scribble)
		bank.SetAccount(target, &Account{Lamports: 1, Data: []byte{0}, Owner: randomKey(t)})

		tx := NewTransaction(nil, Instruction{ProgramID: program, Accounts: []AccountMeta{Writable(target, false)}})
		_, err := bank.Process(ctx, tx)
		require.Equal(t, ErrExternalDataModified, errors.Cause(err))
	})

	t.Run("owned_and_writable", func(t *testing.T) {
		bank := newTestBank()
		bank.RegisterProgram(program, scribble)
		bank.SetAccount(target, &Account{Lamports: 1, Data: []byte{0}, Owner: program})

		tx := NewTransaction(nil, Instruction{ProgramID: program, Accounts: []AccountMeta{Writable(target, false)}})
		_, err := bank.Process(ctx, tx)
		require.NoError(t, err)

		acc, _ := bank.Account(target)
		require.Equal(t, []byte{0xff}, acc.Data)
	})

	t.Run("unknown_program", func(t *testing.T) {
		bank := newTestBank()
		_, err := bank.Process(ctx, NewTransaction(nil, Instruction{ProgramID: randomKey(t)}))
		require.Equal(t, ErrProgramNotFound, errors.Cause(err))
	})
}

func TestInvocation_InvokeSigned(t *testing.T) {
	ctx := context.Background()
	program := randomKey(t)
	seeds := [][]byte{[]byte("vault")}
	vault, bump, err := pubkey.FindProgramAddress(seeds, program)
	require.NoError(t, err)

	creator := func(signed bool) ProgramFunc {
		return func(host Host, _ pubkey.PublicKey, accounts []*AccountInfo, _ []byte) error {
			ix := CreateAccount(accounts[0].Key, accounts[1].Key, host.Rent().MinimumBalance(8), 8, program)
			if signed {
				return host.InvokeSigned(ix, accounts, append(seeds, []byte{bump}))
			}
			return host.InvokeSigned(ix, accounts)
		}
	}

	t.Run("derived_signer", func(t *testing.T) {
		bank := newTestBank()
		payer := randomKey(t)
		bank.Airdrop(payer, 10000000)
		bank.RegisterProgram(program, creator(true))

		tx := NewTransaction([]pubkey.PublicKey{payer}, Instruction{
			ProgramID: program,
			Accounts:  []AccountMeta{Writable(payer, true), Writable(vault, false)},
		})
		receipt, err := bank.Process(ctx, tx)
		require.NoError(t, err)

		acc, ok := bank.Account(vault)
		require.True(t, ok)
		require.Equal(t, program, acc.Owner)
		require.Len(t, acc.Data, 8)
		require.Equal(t, []string{
			"Program " + program.String() + " invoke [1]",
			"Program " + SystemProgramID.String() + " invoke [2]",
			"Program " + SystemProgramID.String() + " success",
			"Program " + program.String() + " success",
		}, receipt.Logs)
	})

	t.Run("unsigned", func(t *testing.T) {
		bank := newTestBank()
		payer := randomKey(t)
		bank.Airdrop(payer, 10000000)
		bank.RegisterProgram(program, creator(false))

		tx := NewTransaction([]pubkey.PublicKey{payer}, Instruction{
			ProgramID: program,
			Accounts:  []AccountMeta{Writable(payer, true), Writable(vault, false)},
		})
		_, err := bank.Process(ctx, tx)
		require.Equal(t, ErrPrivilegeEscalation, errors.Cause(err))
		_, ok := bank.Account(vault)
		require.False(t, ok)
	})
}

func TestProgramData(t *testing.T) {
	ctx := context.Background()
	bank := newTestBank()
	outer, inner := randomKey(t), randomKey(t)

	bank.RegisterProgram(inner, ProgramFunc(func(host Host, _ pubkey.PublicKey, _ []*AccountInfo, _ []byte) error {
		host.LogData([]byte("inner"))
		return nil
	}))
	bank.RegisterProgram(outer, ProgramFunc(func(host Host, _ pubkey.PublicKey, accounts []*AccountInfo, _ []byte) error {
		host.Log("success")
		host.LogData([]byte("before"))
		if err := host.InvokeSigned(Instruction{ProgramID: inner}, accounts); err != nil {
			return err
		}
		host.LogData([]byte("af"), []byte("ter"))
		return nil
	}))

	receipt, err := bank.Process(ctx, NewTransaction(nil, Instruction{ProgramID: outer}))
	require.NoError(t, err)

	data, err := ProgramData(receipt.Logs, outer)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("before"), []byte("after")}, data)

	data, err = ProgramData(receipt.Logs, inner)
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("inner")}, data)

	_, err = ProgramData([]string{"Program " + outer.String() + " invoke [1]", "Program data: !!!"}, outer)
	require.Error(t, err)
}

func TestBank_Receipts(t *testing.T) {
	ctx := context.Background()
	bank := newTestBank()
	noop := randomKey(t)
	bank.RegisterProgram(noop, ProgramFunc(func(Host, pubkey.PublicKey, []*AccountInfo, []byte) error { return nil }))

	for i := 0; i < 5; i++ {
		_, err := bank.Process(ctx, NewTransaction(nil, Instruction{ProgramID: noop}))
		require.NoError(t, err)
	}
	require.Equal(t, uint64(5), bank.Slot())

	receipts := bank.Receipts(2, 2)
	require.Len(t, receipts, 2)
	require.Equal(t, uint64(3), receipts[0].Slot)
	require.Equal(t, uint64(4), receipts[1].Slot)

	require.Len(t, bank.Receipts(0, 0), 5)
	require.Empty(t, bank.Receipts(5, 10))
}

func TestBank_Process_SkipsEmptyAccounts(t *testing.T) {
	ctx := context.Background()
	bank := newTestBank()
	noop := randomKey(t)
	bank.RegisterProgram(noop, ProgramFunc(func(Host, pubkey.PublicKey, []*AccountInfo, []byte) error { return nil }))

	untouched := randomKey(t)
	_, err := bank.Process(ctx, NewTransaction(nil, Instruction{
		ProgramID: noop,
		Accounts:  []AccountMeta{ReadOnly(untouched, false)},
	}))
	require.NoError(t, err)
	_, ok := bank.Account(untouched)
	require.False(t, ok)
}
