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

package instruction

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/pkg/discriminator"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

var (
	ExecuteDiscriminator                        = discriminator.FromHash("spl-transfer-hook-interface:execute")
	InitializeExtraAccountMetaListDiscriminator = discriminator.FromHash("spl-transfer-hook-interface:initialize-extra-account-metas")
	UpdateExtraAccountMetaListDiscriminator     = discriminator.FromHash("spl-transfer-hook-interface:update-extra-account-metas")
)

// ExtraAccountMetasSeed prefixes the seeds of the account holding a mint's extra
// account metas.
const ExtraAccountMetasSeed = "extra-account-metas"

func RegistrySeeds(mint pubkey.PublicKey) [][]byte {
	return [][]byte{[]byte(ExtraAccountMetasSeed), mint.Bytes()}
}

// ErrInvalidInstructionData is the ledger error, so that callers can match the
// cause without importing this package.
var ErrInvalidInstructionData = ledger.ErrInvalidInstructionData

// Instruction is one of Execute, InitializeExtraAccountMetaList,
// UpdateExtraAccountMetaList or Unknown.
type Instruction interface {
	Discriminator() discriminator.Discriminator
	Pack() []byte
	isInstruction()
}

// Execute is sent by the token program on every transfer of a hooked mint.
type Execute struct {
	Amount uint64
}

type InitializeExtraAccountMetaList struct {
	Metas []resolution.ExtraAccountMeta
}

type UpdateExtraAccountMetaList struct {
	Metas []resolution.ExtraAccountMeta
}

// Unknown carries any payload whose discriminator is not part of the interface.
type Unknown struct {
	Tag     discriminator.Discriminator
	Payload []byte
}

func (Execute) Discriminator() discriminator.Discriminator { return ExecuteDiscriminator }

func (InitializeExtraAccountMetaList) Discriminator() discriminator.Discriminator {
	return InitializeExtraAccountMetaListDiscriminator
}

func (UpdateExtraAccountMetaList) Discriminator() discriminator.Discriminator {
	return UpdateExtraAccountMetaListDiscriminator
}

func (u Unknown) Discriminator() discriminator.Discriminator { return u.Tag }

func (i Execute) Pack() []byte {
	out := make([]byte, discriminator.Size+8)
	copy(out, ExecuteDiscriminator[:])
	binary.LittleEndian.PutUint64(out[discriminator.Size:], i.Amount)
	return out
}

func (i InitializeExtraAccountMetaList) Pack() []byte {
	return append(InitializeExtraAccountMetaListDiscriminator.Bytes(), resolution.PackMetas(i.Metas)...)
}

func (i UpdateExtraAccountMetaList) Pack() []byte {
	return append(UpdateExtraAccountMetaListDiscriminator.Bytes(), resolution.PackMetas(i.Metas)...)
}

func (u Unknown) Pack() []byte {
	return append(u.Tag.Bytes(), u.Payload...)
}

func (Execute) isInstruction()                        {}
func (InitializeExtraAccountMetaList) isInstruction() {}
func (UpdateExtraAccountMetaList) isInstruction()     {}
func (Unknown) isInstruction()                        {}

// Unpack decodes a transfer hook instruction. Payloads with an unrecognised
// discriminator decode to Unknown. Known variants with a malformed body, and
// payloads too short to carry a discriminator, are rejected.
func Unpack(data []byte) (Instruction, error) {
	tag, rest, err := discriminator.Split(data)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}

	switch tag {
	case ExecuteDiscriminator:
		if len(rest) < 8 {
			return nil, errors.Wrap(ErrInvalidInstructionData, "execute amount is truncated")
		}
		return Execute{Amount: binary.LittleEndian.Uint64(rest[:8])}, nil
	case InitializeExtraAccountMetaListDiscriminator:
		metas, err := resolution.UnpackMetas(rest)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
		}
		return InitializeExtraAccountMetaList{Metas: metas}, nil
	case UpdateExtraAccountMetaListDiscriminator:
		metas, err := resolution.UnpackMetas(rest)
		if err != nil {
			return nil, errors.Wrap(ErrInvalidInstructionData, err.Error())
		}
		return UpdateExtraAccountMetaList{Metas: metas}, nil
	default:
		return Unknown{Tag: tag, Payload: append([]byte(nil), rest...)}, nil
	}
}

// NewExecute builds the Execute call with the fixed accounts only. Resolved extra
// accounts are appended by the caller.
func NewExecute(
	program, source, mint, destination, authority, registry pubkey.PublicKey,
	amount uint64,
) ledger.Instruction {
	return ledger.Instruction{
		ProgramID: program,
		Accounts: []ledger.AccountMeta{
			ledger.ReadOnly(source, false),
			ledger.ReadOnly(mint, false),
			ledger.ReadOnly(destination, false),
			ledger.ReadOnly(authority, false),
			ledger.ReadOnly(registry, false),
		},
		Data: Execute{Amount: amount}.Pack(),
	}
}
