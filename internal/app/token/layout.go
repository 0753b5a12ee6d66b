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
	"encoding/binary"

	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

var (
	// ProgramID is the token program with extensions.
	ProgramID = pubkey.MustFromString("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	// LegacyProgramID is accepted as an owner of token accounts too.
	LegacyProgramID = pubkey.MustFromString("TokenkegQfeZyiNwAJbNbGhPfUsxDY7eZsVVenE4wp2")
)

const (
	MintSize    = 82
	AccountSize = 165

	accountTypeOffset = AccountSize
	tlvOffset         = AccountSize + 1

	AccountTypeMint    = 1
	AccountTypeAccount = 2

	extensionTransferHook   uint16 = 14
	transferHookExtensionSz        = 2 * pubkey.Size

	// MintWithHookSize fits the base mint, the account type and a TransferHook
	// extension entry.
	MintWithHookSize = tlvOffset + 4 + transferHookExtensionSz
)

type AccountState uint8

const (
	AccountUninitialized AccountState = iota
	AccountInitialized
	AccountFrozen
)

// Mint is the asset descriptor. A zero key in an optional field means none.
type Mint struct {
	MintAuthority   pubkey.PublicKey
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority pubkey.PublicKey

	TransferHookAuthority pubkey.PublicKey
	TransferHookProgram   pubkey.PublicKey
}

func (m *Mint) HasTransferHook() bool {
	return !m.TransferHookProgram.IsZero()
}

func UnpackMint(data []byte) (*Mint, error) {
	if len(data) < MintSize || (len(data) > MintSize && len(data) <= AccountSize) {
		return nil, ErrInvalidAccountData
	}
	m := &Mint{
		MintAuthority:   readOption(data[0:36]),
		Supply:          binary.LittleEndian.Uint64(data[36:44]),
		Decimals:        data[44],
		IsInitialized:   data[45] == 1,
		FreezeAuthority: readOption(data[46:82]),
	}
	if len(data) > AccountSize {
		if t := data[accountTypeOffset]; t != 0 && t != AccountTypeMint {
			return nil, ErrInvalidAccountData
		}
		readExtensions(data[tlvOffset:], m)
	}
	return m, nil
}

// Pack writes m into data, which must be sized for a plain or hooked mint.
func (m *Mint) Pack(data []byte) error {
	if len(data) != MintSize && len(data) != MintWithHookSize {
		return ErrInvalidAccountData
	}
	writeOption(data[0:36], m.MintAuthority)
	binary.LittleEndian.PutUint64(data[36:44], m.Supply)
	data[44] = m.Decimals
	data[45] = boolByte(m.IsInitialized)
	writeOption(data[46:82], m.FreezeAuthority)
	if len(data) == MintWithHookSize {
		data[accountTypeOffset] = AccountTypeMint
		if m.HasTransferHook() {
			ext := data[tlvOffset:]
			binary.LittleEndian.PutUint16(ext[0:2], extensionTransferHook)
			binary.LittleEndian.PutUint16(ext[2:4], transferHookExtensionSz)
			copy(ext[4:36], m.TransferHookAuthority[:])
			copy(ext[36:68], m.TransferHookProgram[:])
		}
	}
	return nil
}

func readExtensions(tlv []byte, m *Mint) {
	for len(tlv) >= 4 {
		typ := binary.LittleEndian.Uint16(tlv[0:2])
		length := int(binary.LittleEndian.Uint16(tlv[2:4]))
		if typ == 0 || 4+length > len(tlv) {
			return
		}
		if typ == extensionTransferHook && length == transferHookExtensionSz {
			copy(m.TransferHookAuthority[:], tlv[4:36])
			copy(m.TransferHookProgram[:], tlv[36:68])
		}
		tlv = tlv[4+length:]
	}
}

// Account is a holding account: a balance of one mint for one owner.
type Account struct {
	Mint            pubkey.PublicKey
	Owner           pubkey.PublicKey
	Amount          uint64
	Delegate        pubkey.PublicKey
	State           AccountState
	IsNative        bool
	NativeReserve   uint64
	DelegatedAmount uint64
	CloseAuthority  pubkey.PublicKey
}

func UnpackAccount(data []byte) (*Account, error) {
	if len(data) < AccountSize {
		return nil, ErrInvalidAccountData
	}
	if len(data) > AccountSize && data[accountTypeOffset] != 0 && data[accountTypeOffset] != AccountTypeAccount {
		return nil, ErrInvalidAccountData
	}
	a := &Account{
		Amount:          binary.LittleEndian.Uint64(data[64:72]),
		Delegate:        readOption(data[72:108]),
		State:           AccountState(data[108]),
		IsNative:        binary.LittleEndian.Uint32(data[109:113]) == 1,
		NativeReserve:   binary.LittleEndian.Uint64(data[113:121]),
		DelegatedAmount: binary.LittleEndian.Uint64(data[121:129]),
		CloseAuthority:  readOption(data[129:165]),
	}
	copy(a.Mint[:], data[0:32])
	copy(a.Owner[:], data[32:64])
	return a, nil
}

func (a *Account) Pack(data []byte) error {
	if len(data) != AccountSize {
		return ErrInvalidAccountData
	}
	copy(data[0:32], a.Mint[:])
	copy(data[32:64], a.Owner[:])
	binary.LittleEndian.PutUint64(data[64:72], a.Amount)
	writeOption(data[72:108], a.Delegate)
	data[108] = uint8(a.State)
	var native uint32
	if a.IsNative {
		native = 1
	}
	binary.LittleEndian.PutUint32(data[109:113], native)
	binary.LittleEndian.PutUint64(data[113:121], a.NativeReserve)
	binary.LittleEndian.PutUint64(data[121:129], a.DelegatedAmount)
	writeOption(data[129:165], a.CloseAuthority)
	return nil
}

// Optional keys are a little-endian u32 tag followed by the key.
func readOption(b []byte) pubkey.PublicKey {
	var k pubkey.PublicKey
	if binary.LittleEndian.Uint32(b[0:4]) == 1 {
		copy(k[:], b[4:36])
	}
	return k
}

func writeOption(b []byte, k pubkey.PublicKey) {
	if k.IsZero() {
		for i := range b[:36] {
			b[i] = 0
		}
		return
	}
	binary.LittleEndian.PutUint32(b[0:4], 1)
	copy(b[4:36], k[:])
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// IsTokenProgram reports whether key is one of the token programs.
func IsTokenProgram(key pubkey.PublicKey) bool {
	return key == ProgramID || key == LegacyProgramID
}
