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

package sandbox

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/app/hook"
	"github.com/insolar/transferhook/internal/app/instruction"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/app/token"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

var ErrAccountNotFound = errors.New("account not found")

// Client builds and submits transactions against a bank on behalf of key holders.
// It does not sign anything: every key it is asked to act for counts as signed.
type Client struct {
	bank   *ledger.Bank
	hook   *hook.Program
	finder resolution.AddressFinder
	log    *logrus.Entry
}

func NewClient(bank *ledger.Bank, program *hook.Program, finder resolution.AddressFinder, log *logrus.Logger) *Client {
	return &Client{
		bank:   bank,
		hook:   program,
		finder: finder,
		log:    log.WithField("component", "sandbox"),
	}
}

func (c *Client) submit(ctx context.Context, signers []pubkey.PublicKey, ixs ...ledger.Instruction) (*ledger.Receipt, error) {
	tx := ledger.NewTransaction(signers, ixs...)
	receipt, err := c.bank.Process(ctx, tx)
	if err != nil {
		return receipt, err
	}
	c.log.WithField("slot", receipt.Slot).Debugf("submitted transaction %s", tx.ID)
	return receipt, nil
}

// CreateMint creates a mint whose transfers call the hook program.
func (c *Client) CreateMint(ctx context.Context, payer, authority pubkey.PublicKey, decimals uint8) (pubkey.PublicKey, error) {
	mint, err := pubkey.NewRandom()
	if err != nil {
		return pubkey.Zero, err
	}
	rent := c.bank.Rent().MinimumBalance(token.MintWithHookSize)
	_, err = c.submit(ctx, []pubkey.PublicKey{payer, mint},
		ledger.CreateAccount(payer, mint, rent, token.MintWithHookSize, token.ProgramID),
		token.InitializeTransferHook(token.ProgramID, mint, authority, c.hook.ID()),
		token.InitializeMint2(token.ProgramID, mint, decimals, authority, pubkey.Zero),
	)
	if err != nil {
		return pubkey.Zero, errors.Wrap(err, "failed to create mint")
	}
	return mint, nil
}

// InitializeHook creates the extra account metas of mint.
func (c *Client) InitializeHook(ctx context.Context, payer, mint pubkey.PublicKey) (*ledger.Receipt, error) {
	ix, err := c.hook.InitializeInstruction(payer, mint)
	if err != nil {
		return nil, err
	}
	return c.submit(ctx, []pubkey.PublicKey{payer}, ix)
}

func (c *Client) CreateHolding(ctx context.Context, payer, mint, owner pubkey.PublicKey) (pubkey.PublicKey, error) {
	holding, err := pubkey.NewRandom()
	if err != nil {
		return pubkey.Zero, err
	}
	rent := c.bank.Rent().MinimumBalance(token.AccountSize)
	_, err = c.submit(ctx, []pubkey.PublicKey{payer, holding},
		ledger.CreateAccount(payer, holding, rent, token.AccountSize, token.ProgramID),
		token.InitializeAccount3(token.ProgramID, holding, mint, owner),
	)
	if err != nil {
		return pubkey.Zero, errors.Wrap(err, "failed to create holding account")
	}
	return holding, nil
}

func (c *Client) MintTo(ctx context.Context, mint, destination, authority pubkey.PublicKey, amount uint64) error {
	_, err := c.submit(ctx, []pubkey.PublicKey{authority}, token.MintTo(token.ProgramID, mint, destination, authority, amount))
	return errors.Wrap(err, "failed to mint")
}

// Transfer moves amount between two holding accounts of the same mint. The extra
// accounts the hook needs are resolved from its registry before submission.
func (c *Client) Transfer(ctx context.Context, source, destination, owner pubkey.PublicKey, amount uint64) (*ledger.Receipt, error) {
	holding, err := c.Holding(source)
	if err != nil {
		return nil, err
	}
	mint, err := c.Mint(holding.Mint)
	if err != nil {
		return nil, err
	}
	var extras []ledger.AccountMeta
	if mint.HasTransferHook() {
		extras, err = c.ExtraAccounts(source, holding.Mint, destination, owner, mint.TransferHookProgram, amount)
		if err != nil {
			return nil, err
		}
	}
	ix := token.TransferChecked(token.ProgramID, source, holding.Mint, destination, owner, amount, mint.Decimals, extras...)
	return c.submit(ctx, []pubkey.PublicKey{owner}, ix)
}

// ExtraAccounts lists what a transfer must pass beyond its four fixed accounts:
// the hook program, its registry and every account the registry resolves to.
func (c *Client) ExtraAccounts(source, mint, destination, owner, hookProgram pubkey.PublicKey, amount uint64) ([]ledger.AccountMeta, error) {
	registry, _, err := c.finder.Find(instruction.RegistrySeeds(mint), hookProgram)
	if err != nil {
		return nil, err
	}
	extras := []ledger.AccountMeta{
		ledger.ReadOnly(hookProgram, false),
		ledger.ReadOnly(registry, false),
	}
	acc, ok := c.bank.Account(registry)
	if !ok {
		return extras, nil
	}
	metas, err := resolution.Unpack(acc.Data, instruction.ExecuteDiscriminator)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read registry %s", registry)
	}
	execute := instruction.NewExecute(hookProgram, source, mint, destination, owner, registry, amount)
	resolved, err := resolution.NewResolver(c.finder, c.accountData).Resolve(metas, execute.Data, hookProgram, execute.Accounts)
	if err != nil {
		return nil, err
	}
	return append(extras, resolved...), nil
}

func (c *Client) accountData(key pubkey.PublicKey) ([]byte, bool) {
	acc, ok := c.bank.Account(key)
	if !ok {
		return nil, false
	}
	return acc.Data, true
}

func (c *Client) Mint(key pubkey.PublicKey) (*token.Mint, error) {
	acc, ok := c.bank.Account(key)
	if !ok {
		return nil, errors.Wrapf(ErrAccountNotFound, "mint %s", key)
	}
	if !token.IsTokenProgram(acc.Owner) {
		return nil, errors.Wrapf(token.ErrInvalidAccountData, "mint %s is owned by %s", key, acc.Owner)
	}
	m, err := token.UnpackMint(acc.Data)
	return m, errors.Wrapf(err, "mint %s", key)
}

func (c *Client) Holding(key pubkey.PublicKey) (*token.Account, error) {
	acc, ok := c.bank.Account(key)
	if !ok {
		return nil, errors.Wrapf(ErrAccountNotFound, "holding %s", key)
	}
	if !token.IsTokenProgram(acc.Owner) {
		return nil, errors.Wrapf(token.ErrInvalidAccountData, "holding %s is owned by %s", key, acc.Owner)
	}
	a, err := token.UnpackAccount(acc.Data)
	return a, errors.Wrapf(err, "holding %s", key)
}

// Registry returns the extra account metas stored for mint.
func (c *Client) Registry(mint pubkey.PublicKey) (pubkey.PublicKey, []resolution.ExtraAccountMeta, error) {
	key, _, err := c.hook.Addresses().Registry(mint)
	if err != nil {
		return pubkey.Zero, nil, err
	}
	acc, ok := c.bank.Account(key)
	if !ok {
		return key, nil, errors.Wrapf(ErrAccountNotFound, "registry %s", key)
	}
	metas, err := resolution.Unpack(acc.Data, instruction.ExecuteDiscriminator)
	return key, metas, err
}

// Observation reads the whale account that tracks mint. The mint is ignored when
// the program keeps a single global observation.
func (c *Client) Observation(mint pubkey.PublicKey) (pubkey.PublicKey, *hook.WhaleAccount, error) {
	key, _, err := c.hook.Addresses().Observation(c.hook.Options().Scope, mint)
	if err != nil {
		return pubkey.Zero, nil, err
	}
	acc, ok := c.bank.Account(key)
	if !ok {
		return key, nil, errors.Wrapf(ErrAccountNotFound, "whale account %s", key)
	}
	state, err := hook.DecodeWhaleAccount(acc.Data)
	return key, state, err
}

func (c *Client) Program() *hook.Program {
	return c.hook
}
