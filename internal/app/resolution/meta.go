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
	"encoding/binary"

	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

const (
	AddressConfigSize = 32
	// MetaSize is the packed size of one ExtraAccountMeta record.
	MetaSize = 1 + AddressConfigSize + 1 + 1

	FixedDiscriminator = 0
	PDADiscriminator   = 1
	// ExternalPDAOffset is added to the index of the account holding the program
	// an external address is derived under.
	ExternalPDAOffset = 128
)

// ExtraAccountMeta describes one account a transfer must pass to the hook.
// Depending on Discriminator, AddressConfig holds either a literal key or packed
// seeds.
type ExtraAccountMeta struct {
	Discriminator uint8
	AddressConfig [AddressConfigSize]byte
	IsSigner      bool
	IsWritable    bool
}

func NewFixed(key pubkey.PublicKey, signer, writable bool) ExtraAccountMeta {
	return ExtraAccountMeta{
		Discriminator: FixedDiscriminator,
		AddressConfig: key,
		IsSigner:      signer,
		IsWritable:    writable,
	}
}

// NewWithSeeds describes an address derived under the hook program itself.
func NewWithSeeds(seeds []Seed, signer, writable bool) (ExtraAccountMeta, error) {
	config, err := PackSeeds(seeds)
	if err != nil {
		return ExtraAccountMeta{}, err
	}
	return ExtraAccountMeta{
		Discriminator: PDADiscriminator,
		AddressConfig: config,
		IsSigner:      signer,
		IsWritable:    writable,
	}, nil
}

// NewExternalWithSeeds describes an address derived under the program found at
// programIndex in the account list.
func NewExternalWithSeeds(programIndex uint8, seeds []Seed, signer, writable bool) (ExtraAccountMeta, error) {
	if programIndex >= ExternalPDAOffset {
		return ExtraAccountMeta{}, ErrInvalidProgramIndex
	}
	config, err := PackSeeds(seeds)
	if err != nil {
		return ExtraAccountMeta{}, err
	}
	return ExtraAccountMeta{
		Discriminator: ExternalPDAOffset + programIndex,
		AddressConfig: config,
		IsSigner:      signer,
		IsWritable:    writable,
	}, nil
}

func (m ExtraAccountMeta) Seeds() ([]Seed, error) {
	if m.Discriminator == FixedDiscriminator {
		return nil, nil
	}
	return UnpackSeeds(m.AddressConfig)
}

func (m ExtraAccountMeta) pack(dst []byte) {
	dst[0] = m.Discriminator
	copy(dst[1:1+AddressConfigSize], m.AddressConfig[:])
	dst[1+AddressConfigSize] = boolByte(m.IsSigner)
	dst[2+AddressConfigSize] = boolByte(m.IsWritable)
}

func unpackMeta(src []byte) ExtraAccountMeta {
	var m ExtraAccountMeta
	m.Discriminator = src[0]
	copy(m.AddressConfig[:], src[1:1+AddressConfigSize])
	m.IsSigner = src[1+AddressConfigSize] != 0
	m.IsWritable = src[2+AddressConfigSize] != 0
	return m
}

// PackMetas encodes metas as a length-prefixed slice: a little-endian u32 count
// followed by the records.
func PackMetas(metas []ExtraAccountMeta) []byte {
	out := make([]byte, 4+MetaSize*len(metas))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(metas)))
	for i, m := range metas {
		m.pack(out[4+i*MetaSize:])
	}
	return out
}

// UnpackMetas is the inverse of PackMetas. The input must hold exactly the
// declared number of records.
func UnpackMetas(data []byte) ([]ExtraAccountMeta, error) {
	if len(data) < 4 {
		return nil, ErrInvalidLength
	}
	count := binary.LittleEndian.Uint32(data[:4])
	body := data[4:]
	if uint64(len(body)) != uint64(count)*MetaSize {
		return nil, ErrInvalidLength
	}
	metas := make([]ExtraAccountMeta, count)
	for i := range metas {
		metas[i] = unpackMeta(body[i*MetaSize:])
	}
	return metas, nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
