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

package resolution

import (
	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

// AddressFinder derives the canonical address and bump for seeds under program.
// *pubkey.Deriver satisfies it.
type AddressFinder interface {
	Find(seeds [][]byte, program pubkey.PublicKey) (pubkey.PublicKey, uint8, error)
}

type FinderFunc func(seeds [][]byte, program pubkey.PublicKey) (pubkey.PublicKey, uint8, error)

func (f FinderFunc) Find(seeds [][]byte, program pubkey.PublicKey) (pubkey.PublicKey, uint8, error) {
	return f(seeds, program)
}

// AccountDataFunc returns the current data of an account, if it is known.
type AccountDataFunc func(key pubkey.PublicKey) ([]byte, bool)

type Resolver struct {
	finder AddressFinder
	data   AccountDataFunc
}

func NewResolver(finder AddressFinder, data AccountDataFunc) *Resolver {
	return &Resolver{finder: finder, data: data}
}

// Resolve turns metas into concrete account metas, in order. Seeds may refer to
// the given accounts and to any account resolved before them. Only the resolved
// accounts are returned.
func (r *Resolver) Resolve(
	metas []ExtraAccountMeta,
	instructionData []byte,
	program pubkey.PublicKey,
	accounts []ledger.AccountMeta,
) ([]ledger.AccountMeta, error) {
	all := make([]ledger.AccountMeta, len(accounts), len(accounts)+len(metas))
	copy(all, accounts)
	for i, meta := range metas {
		key, err := r.resolveKey(meta, instructionData, program, all)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve extra account %d", i)
		}
		all = append(all, ledger.AccountMeta{
			Key:        key,
			IsSigner:   meta.IsSigner,
			IsWritable: meta.IsWritable,
		})
	}
	return all[len(accounts):], nil
}

func (r *Resolver) resolveKey(
	meta ExtraAccountMeta,
	instructionData []byte,
	program pubkey.PublicKey,
	accounts []ledger.AccountMeta,
) (pubkey.PublicKey, error) {
	switch {
	case meta.Discriminator == FixedDiscriminator:
		return pubkey.PublicKey(meta.AddressConfig), nil
	case meta.Discriminator == PDADiscriminator:
	case meta.Discriminator >= ExternalPDAOffset:
		idx := int(meta.Discriminator - ExternalPDAOffset)
		if idx >= len(accounts) {
			return pubkey.Zero, errors.Wrapf(ErrAccountNotFound, "program index %d", idx)
		}
		program = accounts[idx].Key
	default:
		return pubkey.Zero, errors.Wrapf(ErrInvalidDiscriminator, "discriminator %d", meta.Discriminator)
	}

	seeds, err := UnpackSeeds(meta.AddressConfig)
	if err != nil {
		return pubkey.Zero, err
	}
	raw := make([][]byte, 0, len(seeds))
	for _, seed := range seeds {
		b, err := r.seedBytes(seed, instructionData, accounts)
		if err != nil {
			return pubkey.Zero, errors.Wrapf(err, "seed %s", seed)
		}
		raw = append(raw, b)
	}
	addr, _, err := r.finder.Find(raw, program)
	if err != nil {
		return pubkey.Zero, err
	}
	return addr, nil
}

func (r *Resolver) seedBytes(seed Seed, instructionData []byte, accounts []ledger.AccountMeta) ([]byte, error) {
	switch s := seed.(type) {
	case LiteralSeed:
		return s.Bytes, nil
	case InstructionDataSeed:
		end := int(s.Index) + int(s.Length)
		if end > len(instructionData) {
			return nil, ErrInstructionDataTooSmall
		}
		return instructionData[s.Index:end], nil
	case AccountKeySeed:
		if int(s.Index) >= len(accounts) {
			return nil, ErrAccountNotFound
		}
		return accounts[s.Index].Key.Bytes(), nil
	case AccountDataSeed:
		if int(s.AccountIndex) >= len(accounts) {
			return nil, ErrAccountNotFound
		}
		if r.data == nil {
			return nil, ErrAccountDataUnavailable
		}
		data, ok := r.data(accounts[s.AccountIndex].Key)
		if !ok {
			return nil, ErrAccountDataUnavailable
		}
		end := int(s.DataIndex) + int(s.Length)
		if end > len(data) {
			return nil, ErrAccountDataTooSmall
		}
		return data[s.DataIndex:end], nil
	default:
		return nil, ErrInvalidSeedConfig
	}
}

// InfoData looks account data up among the accounts of a running instruction.
func InfoData(infos []*ledger.AccountInfo) AccountDataFunc {
	return func(key pubkey.PublicKey) ([]byte, bool) {
		for _, info := range infos {
			if info.Key == key {
				return info.Data, true
			}
		}
		return nil, false
	}
}
