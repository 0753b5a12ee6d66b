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
	"fmt"
)

const (
	seedUninitialized   = 0
	seedLiteral         = 1
	seedInstructionData = 2
	seedAccountKey      = 3
	seedAccountData     = 4
)

// Seed is one component of a derived address, packed into the 32-byte address
// config of an ExtraAccountMeta.
type Seed interface {
	packedLen() int
	pack(dst []byte)
	fmt.Stringer
}

// LiteralSeed is a constant byte string.
type LiteralSeed struct {
	Bytes []byte
}

// InstructionDataSeed takes Length bytes of the Execute payload starting at Index.
type InstructionDataSeed struct {
	Index  uint8
	Length uint8
}

// AccountKeySeed takes the key of the account at Index.
type AccountKeySeed struct {
	Index uint8
}

// AccountDataSeed takes Length bytes of the data of the account at AccountIndex,
// starting at DataIndex.
type AccountDataSeed struct {
	AccountIndex uint8
	DataIndex    uint8
	Length       uint8
}

func (s LiteralSeed) packedLen() int { return 2 + len(s.Bytes) }

func (s LiteralSeed) pack(dst []byte) {
	dst[0] = seedLiteral
	dst[1] = uint8(len(s.Bytes))
	copy(dst[2:], s.Bytes)
}

func (s LiteralSeed) String() string { return fmt.Sprintf("literal(%q)", s.Bytes) }

func (s InstructionDataSeed) packedLen() int { return 3 }

func (s InstructionDataSeed) pack(dst []byte) {
	dst[0] = seedInstructionData
	dst[1] = s.Index
	dst[2] = s.Length
}

func (s InstructionDataSeed) String() string {
	return fmt.Sprintf("instruction_data[%d:%d]", s.Index, int(s.Index)+int(s.Length))
}

func (s AccountKeySeed) packedLen() int { return 2 }

func (s AccountKeySeed) pack(dst []byte) {
	dst[0] = seedAccountKey
	dst[1] = s.Index
}

func (s AccountKeySeed) String() string { return fmt.Sprintf("account_key[%d]", s.Index) }

func (s AccountDataSeed) packedLen() int { return 4 }

func (s AccountDataSeed) pack(dst []byte) {
	dst[0] = seedAccountData
	dst[1] = s.AccountIndex
	dst[2] = s.DataIndex
	dst[3] = s.Length
}

func (s AccountDataSeed) String() string {
	return fmt.Sprintf("account_data[%d][%d:%d]", s.AccountIndex, s.DataIndex, int(s.DataIndex)+int(s.Length))
}

// PackSeeds lays the seeds out back to back. Unused trailing bytes stay zero, which
// reads back as the end of the list.
func PackSeeds(seeds []Seed) ([AddressConfigSize]byte, error) {
	var config [AddressConfigSize]byte
	offset := 0
	for _, s := range seeds {
		n := s.packedLen()
		if offset+n > AddressConfigSize {
			return config, ErrSeedConfigsTooLarge
		}
		s.pack(config[offset : offset+n])
		offset += n
	}
	return config, nil
}

func UnpackSeeds(config [AddressConfigSize]byte) ([]Seed, error) {
	var seeds []Seed
	for offset := 0; offset < AddressConfigSize; {
		rest := config[offset:]
		switch rest[0] {
		case seedUninitialized:
			return seeds, nil
		case seedLiteral:
			if len(rest) < 2 || len(rest) < 2+int(rest[1]) {
				return nil, ErrInvalidSeedConfig
			}
			n := int(rest[1])
			seeds = append(seeds, LiteralSeed{Bytes: append([]byte(nil), rest[2:2+n]...)})
			offset += 2 + n
		case seedInstructionData:
			if len(rest) < 3 {
				return nil, ErrInvalidSeedConfig
			}
			seeds = append(seeds, InstructionDataSeed{Index: rest[1], Length: rest[2]})
			offset += 3
		case seedAccountKey:
			if len(rest) < 2 {
				return nil, ErrInvalidSeedConfig
			}
			seeds = append(seeds, AccountKeySeed{Index: rest[1]})
			offset += 2
		case seedAccountData:
			if len(rest) < 4 {
				return nil, ErrInvalidSeedConfig
			}
			seeds = append(seeds, AccountDataSeed{AccountIndex: rest[1], DataIndex: rest[2], Length: rest[3]})
			offset += 4
		default:
			return nil, ErrInvalidSeedConfig
		}
	}
	return seeds, nil
}
