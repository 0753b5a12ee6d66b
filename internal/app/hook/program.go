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
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/pkg/discriminator"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

var (
	initializeExtraAccountDiscriminator = discriminator.Global("initialize_extra_account")
	// The pass-through program keeps the misspelled instruction name it was
	// deployed with, so its discriminator differs from the threshold one.
	initializeMetaListDiscriminator = discriminator.Global("intialize_extra_account_meta_list")
	transferHookDiscriminator       = discriminator.Global("transfer_hook")
)

// InitializeDiscriminator tags the instruction that creates the registry of a
// program running policy p.
func (p Policy) InitializeDiscriminator() discriminator.Discriminator {
	if p == PassThrough {
		return initializeMetaListDiscriminator
	}
	return initializeExtraAccountDiscriminator
}

type Options struct {
	Policy Policy
	Scope  Scope
	// WhaleUnits is the threshold in whole tokens.
	WhaleUnits uint64
}

func DefaultOptions() Options {
	return Options{
		Policy:     Threshold,
		Scope:      GlobalScope,
		WhaleUnits: DefaultWhaleUnits,
	}
}

func (o Options) Validate() error {
	if o.Policy != Threshold && o.Policy != PassThrough {
		return errors.Errorf("unknown hook policy %d", o.Policy)
	}
	if o.Scope != GlobalScope && o.Scope != AssetScope {
		return errors.Errorf("unknown observation scope %d", o.Scope)
	}
	if o.Policy == Threshold && o.WhaleUnits == 0 {
		return errors.New("whale units must be positive")
	}
	return nil
}

// ExtraAccountMetas lists the accounts every Execute call needs beyond the fixed
// five.
func (o Options) ExtraAccountMetas() ([]resolution.ExtraAccountMeta, error) {
	if o.Policy != Threshold {
		return nil, nil
	}
	seeds := []resolution.Seed{resolution.LiteralSeed{Bytes: []byte(WhaleAccountSeed)}}
	if o.Scope == AssetScope {
		seeds = append(seeds, resolution.AccountKeySeed{Index: mintIndex})
	}
	meta, err := resolution.NewWithSeeds(seeds, false, true)
	if err != nil {
		return nil, err
	}
	return []resolution.ExtraAccountMeta{meta}, nil
}

// Program is the transfer hook program. Its own instructions are matched first.
// Anything else goes to the Dispatcher.
type Program struct {
	id          pubkey.PublicKey
	opts        Options
	addresses   *Addresses
	initializer *Initializer
	executor    *Executor
	dispatcher  *Dispatcher
}

func NewProgram(id pubkey.PublicKey, opts Options, finder resolution.AddressFinder) (*Program, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	addresses := NewAddresses(id, finder)
	p := &Program{
		id:          id,
		opts:        opts,
		addresses:   addresses,
		initializer: NewInitializer(opts, addresses),
		executor:    NewExecutor(opts, addresses),
	}
	p.dispatcher = NewDispatcher(p.transferHook)
	return p, nil
}

func (p *Program) ID() pubkey.PublicKey {
	return p.id
}

func (p *Program) Options() Options {
	return p.opts
}

func (p *Program) Addresses() *Addresses {
	return p.addresses
}

func (p *Program) Process(host ledger.Host, programID pubkey.PublicKey, accounts []*ledger.AccountInfo, data []byte) error {
	if programID != p.id {
		return ErrDeclaredProgramIDMismatch
	}
	if tag, args, err := discriminator.Split(data); err == nil {
		switch tag {
		case p.opts.Policy.InitializeDiscriminator():
			return p.initializer.Initialize(host, programID, accounts)
		case transferHookDiscriminator:
			return p.transferHook(host, programID, accounts, args)
		}
	}
	return p.dispatcher.Dispatch(host, programID, accounts, data)
}

func (p *Program) transferHook(host ledger.Host, programID pubkey.PublicKey, accounts []*ledger.AccountInfo, args []byte) error {
	if len(args) != 8 {
		return ErrInstructionDidNotDeserialize
	}
	return p.executor.Execute(host, programID, accounts, binary.LittleEndian.Uint64(args))
}

// InitializeInstruction builds the call that sets mint up for the hook.
func (p *Program) InitializeInstruction(payer, mint pubkey.PublicKey) (ledger.Instruction, error) {
	registry, _, err := p.addresses.Registry(mint)
	if err != nil {
		return ledger.Instruction{}, err
	}
	accounts := []ledger.AccountMeta{
		ledger.Writable(payer, true),
		ledger.Writable(registry, false),
		ledger.ReadOnly(mint, false),
		ledger.ReadOnly(ledger.SystemProgramID, false),
	}
	if p.opts.Policy == Threshold {
		observation, _, err := p.addresses.Observation(p.opts.Scope, mint)
		if err != nil {
			return ledger.Instruction{}, err
		}
		accounts = append(accounts, ledger.Writable(observation, false))
	}
	return ledger.Instruction{
		ProgramID: p.id,
		Accounts:  accounts,
		Data:      p.opts.Policy.InitializeDiscriminator().Bytes(),
	}, nil
}

// TransferHookInstruction builds a direct call of the transfer hook handler, the
// way a client of the program itself would.
func (p *Program) TransferHookInstruction(source, mint, destination, owner pubkey.PublicKey, amount uint64) (ledger.Instruction, error) {
	registry, _, err := p.addresses.Registry(mint)
	if err != nil {
		return ledger.Instruction{}, err
	}
	accounts := []ledger.AccountMeta{
		ledger.ReadOnly(source, false),
		ledger.ReadOnly(mint, false),
		ledger.ReadOnly(destination, false),
		ledger.ReadOnly(owner, false),
		ledger.ReadOnly(registry, false),
	}
	if p.opts.Policy == Threshold {
		observation, _, err := p.addresses.Observation(p.opts.Scope, mint)
		if err != nil {
			return ledger.Instruction{}, err
		}
		accounts = append(accounts, ledger.Writable(observation, false))
	}
	data := make([]byte, discriminator.Size+8)
	copy(data, transferHookDiscriminator[:])
	binary.LittleEndian.PutUint64(data[discriminator.Size:], amount)
	return ledger.Instruction{ProgramID: p.id, Accounts: accounts, Data: data}, nil
}
