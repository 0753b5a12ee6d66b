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

// Account positions of an Execute call.
const (
	sourceIndex = iota
	mintIndex
	destinationIndex
	ownerIndex
	registryIndex
	observationIndex
)

type transfer struct {
	source      *ledger.AccountInfo
	mint        *ledger.AccountInfo
	destination *ledger.AccountInfo
	owner       *ledger.AccountInfo
	registry    *ledger.AccountInfo
	observation *ledger.AccountInfo

	mintState *token.Mint
}

// Executor runs the transfer hook proper.
type Executor struct {
	policy    Policy
	scope     Scope
	units     uint64
	addresses *Addresses
}

func NewExecutor(opts Options, addresses *Addresses) *Executor {
	return &Executor{
		policy:    opts.Policy,
		scope:     opts.Scope,
		units:     opts.WhaleUnits,
		addresses: addresses,
	}
}

func (e *Executor) Execute(host ledger.Host, programID pubkey.PublicKey, accounts []*ledger.AccountInfo, amount uint64) error {
	t, err := e.load(programID, accounts)
	if err != nil {
		return err
	}

	if e.policy == PassThrough {
		host.Log("Hook called with amount: %d", amount)
		return nil
	}

	threshold, err := WhaleThreshold(e.units, t.mintState.Decimals)
	if err != nil {
		return err
	}
	if amount < threshold {
		return nil
	}

	host.Log("Whale with amount: %d", amount)
	state := &WhaleAccount{WhaleAddress: t.owner.Key, TransferAmount: amount}
	copy(t.observation.Data, state.Encode())
	event := &WhaleTransferEvent{WhaleAddress: t.owner.Key, TransferAmount: amount}
	host.LogData(event.Encode())
	return nil
}

// load checks every account relationship of the call. Nothing is written before
// it succeeds.
func (e *Executor) load(programID pubkey.PublicKey, accounts []*ledger.AccountInfo) (*transfer, error) {
	need := registryIndex + 1
	if e.policy == Threshold {
		need = observationIndex + 1
	}
	if len(accounts) < need {
		return nil, errors.Wrapf(ErrNotEnoughAccountKeys, "expected %d accounts, got %d", need, len(accounts))
	}
	t := &transfer{
		source:      accounts[sourceIndex],
		mint:        accounts[mintIndex],
		destination: accounts[destinationIndex],
		owner:       accounts[ownerIndex],
		registry:    accounts[registryIndex],
	}

	source, err := tokenAccount("source_token", t.source)
	if err != nil {
		return nil, err
	}
	if t.mintState, err = mintAccount("mint", t.mint); err != nil {
		return nil, err
	}
	destination, err := tokenAccount("destination_token", t.destination)
	if err != nil {
		return nil, err
	}
	if source.Mint != t.mint.Key {
		return nil, violation("source_token", ConstraintTokenMint)
	}
	if source.Owner != t.owner.Key {
		return nil, violation("source_token", ConstraintTokenAuthority)
	}
	if destination.Mint != t.mint.Key {
		return nil, violation("destination_token", ConstraintTokenMint)
	}

	_, err = checkAddress("extra_account_meta_list", t.registry, func() (pubkey.PublicKey, uint8, error) {
		return e.addresses.Registry(t.mint.Key)
	})
	if err != nil {
		return nil, err
	}

	if e.policy != Threshold {
		return t, nil
	}
	t.observation = accounts[observationIndex]
	_, err = checkAddress("latest_whale_account", t.observation, func() (pubkey.PublicKey, uint8, error) {
		return e.addresses.Observation(e.scope, t.mint.Key)
	})
	if err != nil {
		return nil, err
	}
	if _, err := whaleAccount("latest_whale_account", programID, t.observation); err != nil {
		return nil, err
	}
	return t, nil
}
