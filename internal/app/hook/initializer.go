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

	"github.com/insolar/transferhook/internal/app/instruction"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

// Account positions of the initialization call.
const (
	initPayerIndex = iota
	initRegistryIndex
	initMintIndex
	initSystemProgramIndex
	initObservationIndex
)

// Initializer creates the extra account metas of a mint. With the threshold
// policy it also creates the observation account unless it already exists.
type Initializer struct {
	opts      Options
	addresses *Addresses
}

func NewInitializer(opts Options, addresses *Addresses) *Initializer {
	return &Initializer{opts: opts, addresses: addresses}
}

func (i *Initializer) Initialize(host ledger.Host, programID pubkey.PublicKey, accounts []*ledger.AccountInfo) error {
	need := initSystemProgramIndex + 1
	if i.opts.Policy == Threshold {
		need = initObservationIndex + 1
	}
	if len(accounts) < need {
		return errors.Wrapf(ErrNotEnoughAccountKeys, "expected %d accounts, got %d", need, len(accounts))
	}
	payer := accounts[initPayerIndex]
	registry := accounts[initRegistryIndex]
	mint := accounts[initMintIndex]
	system := accounts[initSystemProgramIndex]

	if !payer.IsSigner {
		return violation("payer", ConstraintSigner)
	}
	if !payer.IsWritable {
		return violation("payer", ConstraintMut)
	}
	if !registry.IsWritable {
		return violation("extra_account_meta_list", ConstraintMut)
	}
	if _, err := mintAccount("mint", mint); err != nil {
		return err
	}
	bump, err := checkAddress("extra_account_meta_list", registry, func() (pubkey.PublicKey, uint8, error) {
		return i.addresses.Registry(mint.Key)
	})
	if err != nil {
		return err
	}
	if system.Key != ledger.SystemProgramID {
		return violation("system_program", ConstraintAddress)
	}

	if i.opts.Policy == Threshold {
		if err := i.ensureObservation(host, programID, accounts, mint.Key); err != nil {
			return err
		}
	}

	metas, err := i.opts.ExtraAccountMetas()
	if err != nil {
		return err
	}
	size := resolution.SizeOf(len(metas))
	create := ledger.CreateAccount(payer.Key, registry.Key, host.Rent().MinimumBalance(size), uint64(size), programID)
	seeds := append(instruction.RegistrySeeds(mint.Key), []byte{bump})
	if err := host.InvokeSigned(create, accounts, seeds); err != nil {
		return errors.Wrap(err, "failed to create extra account metas")
	}
	return resolution.Init(registry.Data, instruction.ExecuteDiscriminator, metas)
}

// ensureObservation creates the whale account with zeroed fields. An existing,
// valid whale account is left as it is, so that a program serving several mints
// can initialize each of them.
func (i *Initializer) ensureObservation(host ledger.Host, programID pubkey.PublicKey, accounts []*ledger.AccountInfo, mint pubkey.PublicKey) error {
	const name = "latest_whale_account"
	payer := accounts[initPayerIndex]
	observation := accounts[initObservationIndex]

	bump, err := checkAddress(name, observation, func() (pubkey.PublicKey, uint8, error) {
		return i.addresses.Observation(i.opts.Scope, mint)
	})
	if err != nil {
		return err
	}
	existing := &ledger.Account{Lamports: observation.Lamports, Data: observation.Data, Owner: observation.Owner}
	if existing.InUse() {
		_, err := whaleAccount(name, programID, observation)
		return err
	}
	if !observation.IsWritable {
		return violation(name, ConstraintMut)
	}

	create := ledger.CreateAccount(payer.Key, observation.Key, host.Rent().MinimumBalance(WhaleAccountSize), WhaleAccountSize, programID)
	seeds := append(ObservationSeeds(i.opts.Scope, mint), []byte{bump})
	if err := host.InvokeSigned(create, accounts, seeds); err != nil {
		return errors.Wrap(err, "failed to create whale account")
	}
	copy(observation.Data, (&WhaleAccount{}).Encode())
	return nil
}
