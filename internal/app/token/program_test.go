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
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/transferhook/internal/app/instruction"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

func randomKey(t *testing.T) pubkey.PublicKey {
	k, err := pubkey.NewRandom()
	require.NoError(t, err)
	return k
}

type env struct {
	t         *testing.T
	ctx       context.Context
	bank      *ledger.Bank
	payer     pubkey.PublicKey
	authority pubkey.PublicKey
}

func newEnv(t *testing.T) *env {
	bank := ledger.NewBank(logrus.New(), ledger.DefaultRent())
	bank.RegisterProgram(ProgramID, NewProgram(resolution.FinderFunc(pubkey.FindProgramAddress)))
	e := &env{t: t, ctx: context.Background(), bank: bank, payer: randomKey(t), authority: randomKey(t)}
	bank.Airdrop(e.payer, 1000000000)
	return e
}

func (e *env) process(signers []pubkey.PublicKey, ixs ...ledger.Instruction) error {
	_, err := e.bank.Process(e.ctx, ledger.NewTransaction(append(signers, e.payer), ixs...))
	return err
}

func (e *env) createMint(decimals uint8, hookProgram pubkey.PublicKey) pubkey.PublicKey {
	mint := randomKey(e.t)
	size := MintSize
	var ixs []ledger.Instruction
	if !hookProgram.IsZero() {
		size = MintWithHookSize
	}
	ixs = append(ixs, ledger.CreateAccount(e.payer, mint, e.bank.Rent().MinimumBalance(size), uint64(size), ProgramID))
	if !hookProgram.IsZero() {
		ixs = append(ixs, InitializeTransferHook(ProgramID, mint, e.authority, hookProgram))
	}
	ixs = append(ixs, InitializeMint2(ProgramID, mint, decimals, e.authority, pubkey.Zero))
	require.NoError(e.t, e.process([]pubkey.PublicKey{mint}, ixs...))
	return mint
}

func (e *env) createAccount(mint, owner pubkey.PublicKey) pubkey.PublicKey {
	acc := randomKey(e.t)
	require.NoError(e.t, e.process(
		[]pubkey.PublicKey{acc},
		ledger.CreateAccount(e.payer, acc, e.bank.Rent().MinimumBalance(AccountSize), AccountSize, ProgramID),
		InitializeAccount3(ProgramID, acc, mint, owner),
	))
	return acc
}

func (e *env) tokenAccount(key pubkey.PublicKey) *Account {
	raw, ok := e.bank.Account(key)
	require.True(e.t, ok)
	acc, err := UnpackAccount(raw.Data)
	require.NoError(e.t, err)
	return acc
}

func TestLayout(t *testing.T) {
	require.Equal(t, 234, MintWithHookSize)

	t.Run("hooked_mint", func(t *testing.T) {
		m := &Mint{
			MintAuthority:         randomKey(t),
			Supply:                77,
			Decimals:              6,
			IsInitialized:         true,
			TransferHookAuthority: randomKey(t),
			TransferHookProgram:   randomKey(t),
		}
		data := make([]byte, MintWithHookSize)
		require.NoError(t, m.Pack(data))
		require.Equal(t, byte(AccountTypeMint), data[165])
		require.Equal(t, []byte{14, 0, 64, 0}, data[166:170])

		got, err := UnpackMint(data)
		require.NoError(t, err)
		require.Equal(t, m, got)
		require.True(t, got.HasTransferHook())
	})

	t.Run("plain_mint", func(t *testing.T) {
		m := &Mint{Decimals: 9, IsInitialized: true, FreezeAuthority: randomKey(t)}
		data := make([]byte, MintSize)
		require.NoError(t, m.Pack(data))
		got, err := UnpackMint(data)
		require.NoError(t, err)
		require.Equal(t, m, got)
		require.False(t, got.HasTransferHook())
	})

	t.Run("account", func(t *testing.T) {
		a := &Account{Mint: randomKey(t), Owner: randomKey(t), Amount: 5, State: AccountInitialized}
		data := make([]byte, AccountSize)
		require.NoError(t, a.Pack(data))
		got, err := UnpackAccount(data)
		require.NoError(t, err)
		require.Equal(t, a, got)
	})

	t.Run("bad_sizes", func(t *testing.T) {
		_, err := UnpackMint(make([]byte, 100))
		require.Equal(t, ErrInvalidAccountData, err)
		_, err = UnpackAccount(make([]byte, 100))
		require.Equal(t, ErrInvalidAccountData, err)
		require.Equal(t, ErrInvalidAccountData, (&Mint{}).Pack(make([]byte, 100)))
	})
}

func TestProgram_PlainTransfer(t *testing.T) {
	e := newEnv(t)
	owner, receiver := randomKey(t), randomKey(t)
	mint := e.createMint(2, pubkey.Zero)
	src := e.createAccount(mint, owner)
	dst := e.createAccount(mint, receiver)

	require.NoError(t, e.process([]pubkey.PublicKey{e.authority}, MintTo(ProgramID, mint, src, e.authority, 500)))
	require.NoError(t, e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, src, mint, dst, owner, 200, 2)))

	assert.Equal(t, uint64(300), e.tokenAccount(src).Amount)
	assert.Equal(t, uint64(200), e.tokenAccount(dst).Amount)

	raw, _ := e.bank.Account(mint)
	m, err := UnpackMint(raw.Data)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), m.Supply)

	t.Run("insufficient_funds", func(t *testing.T) {
		err := e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, src, mint, dst, owner, 301, 2))
		require.Equal(t, ErrInsufficientFunds, errors.Cause(err))
	})

	t.Run("decimals_mismatch", func(t *testing.T) {
		err := e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, src, mint, dst, owner, 1, 6))
		require.Equal(t, ErrMintDecimalsMismatch, errors.Cause(err))
	})

	t.Run("owner_mismatch", func(t *testing.T) {
		err := e.process([]pubkey.PublicKey{receiver}, TransferChecked(ProgramID, src, mint, dst, receiver, 1, 2))
		require.Equal(t, ErrOwnerMismatch, errors.Cause(err))
	})

	t.Run("mint_mismatch", func(t *testing.T) {
		other := e.createMint(2, pubkey.Zero)
		foreign := e.createAccount(other, receiver)
		err := e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, src, mint, foreign, owner, 1, 2))
		require.Equal(t, ErrMintMismatch, errors.Cause(err))
	})

	t.Run("mint_authority", func(t *testing.T) {
		err := e.process([]pubkey.PublicKey{owner}, MintTo(ProgramID, mint, src, owner, 1))
		require.Equal(t, ErrOwnerMismatch, errors.Cause(err))
	})

	t.Run("double_init", func(t *testing.T) {
		err := e.process(nil, InitializeAccount3(ProgramID, src, mint, owner))
		require.Equal(t, ErrAlreadyInUse, errors.Cause(err))
	})
}

func TestProgram_HookedTransfer(t *testing.T) {
	e := newEnv(t)
	hookProgram := randomKey(t)

	var (
		calls    int
		received []ledger.AccountMeta
		payload  []byte
	)
	e.bank.RegisterProgram(hookProgram, ledger.ProgramFunc(func(_ ledger.Host, _ pubkey.PublicKey, accounts []*ledger.AccountInfo, data []byte) error {
		calls++
		received = received[:0]
		for _, info := range accounts {
			received = append(received, info.Meta())
		}
		payload = data
		return nil
	}))

	owner, receiver := randomKey(t), randomKey(t)
	mint := e.createMint(6, hookProgram)
	src := e.createAccount(mint, owner)
	dst := e.createAccount(mint, receiver)
	require.NoError(t, e.process([]pubkey.PublicKey{e.authority}, MintTo(ProgramID, mint, src, e.authority, 5000000000)))

	registry, _, err := pubkey.FindProgramAddress(instruction.RegistrySeeds(mint), hookProgram)
	require.NoError(t, err)
	whale, _, err := pubkey.FindProgramAddress([][]byte{[]byte("whale_account")}, hookProgram)
	require.NoError(t, err)

	meta, err := resolution.NewWithSeeds([]resolution.Seed{resolution.LiteralSeed{Bytes: []byte("whale_account")}}, false, true)
	require.NoError(t, err)
	data := make([]byte, resolution.SizeOf(1))
	require.NoError(t, resolution.Init(data, instruction.ExecuteDiscriminator, []resolution.ExtraAccountMeta{meta}))
	e.bank.SetAccount(registry, &ledger.Account{Lamports: 1, Data: data, Owner: hookProgram})

	extras := []ledger.AccountMeta{
		ledger.ReadOnly(hookProgram, false),
		ledger.ReadOnly(registry, false),
		ledger.Writable(whale, false),
	}

	t.Run("executes_hook", func(t *testing.T) {
		err := e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, src, mint, dst, owner, 1000000000, 6, extras...))
		require.NoError(t, err)
		require.Equal(t, 1, calls)
		require.Equal(t, []ledger.AccountMeta{
			ledger.ReadOnly(src, false),
			ledger.ReadOnly(mint, false),
			ledger.ReadOnly(dst, false),
			ledger.ReadOnly(owner, false),
			ledger.ReadOnly(registry, false),
			ledger.Writable(whale, false),
		}, received)
		require.Equal(t, instruction.Execute{Amount: 1000000000}.Pack(), payload)
		require.Equal(t, uint64(1000000000), e.tokenAccount(dst).Amount)
	})

	t.Run("read_only_extra_is_de_escalated", func(t *testing.T) {
		readOnly := []ledger.AccountMeta{extras[0], extras[1], ledger.ReadOnly(whale, false)}
		err := e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, src, mint, dst, owner, 1, 6, readOnly...))
		require.NoError(t, err)
		require.Equal(t, ledger.ReadOnly(whale, false), received[5])
	})

	t.Run("missing_extra", func(t *testing.T) {
		before := calls
		err := e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, src, mint, dst, owner, 1, 6, extras[:2]...))
		require.Equal(t, ErrMissingHookAccount, errors.Cause(err))
		require.Equal(t, before, calls)
	})

	t.Run("missing_hook_program", func(t *testing.T) {
		err := e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, src, mint, dst, owner, 1, 6, extras[1:]...))
		require.Equal(t, ErrMissingHookAccount, errors.Cause(err))
	})

	t.Run("hook_failure_rolls_back", func(t *testing.T) {
		failing := randomKey(t)
		e.bank.RegisterProgram(failing, ledger.ProgramFunc(func(ledger.Host, pubkey.PublicKey, []*ledger.AccountInfo, []byte) error {
			return ledger.ErrInvalidArgument
		}))
		failMint := e.createMint(0, failing)
		from := e.createAccount(failMint, owner)
		to := e.createAccount(failMint, receiver)
		require.NoError(t, e.process([]pubkey.PublicKey{e.authority}, MintTo(ProgramID, failMint, from, e.authority, 10)))

		failRegistry, _, err := pubkey.FindProgramAddress(instruction.RegistrySeeds(failMint), failing)
		require.NoError(t, err)
		err = e.process([]pubkey.PublicKey{owner}, TransferChecked(ProgramID, from, failMint, to, owner, 10, 0,
			ledger.ReadOnly(failing, false), ledger.ReadOnly(failRegistry, false)))
		require.Equal(t, ledger.ErrInvalidArgument, errors.Cause(err))
		require.Equal(t, uint64(10), e.tokenAccount(from).Amount)
		require.Equal(t, uint64(0), e.tokenAccount(to).Amount)
	})
}
