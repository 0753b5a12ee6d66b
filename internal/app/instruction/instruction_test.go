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
	"crypto/sha256"
	"encoding/binary"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

func TestDiscriminators(t *testing.T) {
	sum := sha256.Sum256([]byte("spl-transfer-hook-interface:execute"))
	require.Equal(t, sum[:8], ExecuteDiscriminator[:])
	require.NotEqual(t, ExecuteDiscriminator, InitializeExtraAccountMetaListDiscriminator)
	require.NotEqual(t, InitializeExtraAccountMetaListDiscriminator, UpdateExtraAccountMetaListDiscriminator)
}

func TestUnpack(t *testing.T) {
	meta, err := resolution.NewWithSeeds([]resolution.Seed{resolution.LiteralSeed{Bytes: []byte("whale_account")}}, false, true)
	require.NoError(t, err)

	t.Run("execute", func(t *testing.T) {
		data := Execute{Amount: 1000000000}.Pack()
		require.Len(t, data, 16)
		require.Equal(t, uint64(1000000000), binary.LittleEndian.Uint64(data[8:]))

		ix, err := Unpack(data)
		require.NoError(t, err)
		require.Equal(t, Execute{Amount: 1000000000}, ix)
	})

	t.Run("execute_trailing_bytes", func(t *testing.T) {
		ix, err := Unpack(append(Execute{Amount: 5}.Pack(), 1, 2))
		require.NoError(t, err)
		require.Equal(t, Execute{Amount: 5}, ix)
	})

	t.Run("execute_truncated", func(t *testing.T) {
		_, err := Unpack(Execute{Amount: 5}.Pack()[:12])
		require.Equal(t, ErrInvalidInstructionData, errors.Cause(err))
	})

	t.Run("initialize", func(t *testing.T) {
		want := InitializeExtraAccountMetaList{Metas: []resolution.ExtraAccountMeta{meta}}
		ix, err := Unpack(want.Pack())
		require.NoError(t, err)
		require.Equal(t, want, ix)
	})

	t.Run("update", func(t *testing.T) {
		want := UpdateExtraAccountMetaList{Metas: []resolution.ExtraAccountMeta{meta}}
		ix, err := Unpack(want.Pack())
		require.NoError(t, err)
		require.Equal(t, want, ix)
	})

	t.Run("initialize_malformed", func(t *testing.T) {
		data := InitializeExtraAccountMetaList{Metas: []resolution.ExtraAccountMeta{meta}}.Pack()
		_, err := Unpack(data[:len(data)-1])
		require.Equal(t, ErrInvalidInstructionData, errors.Cause(err))
	})

	t.Run("unknown", func(t *testing.T) {
		data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}
		ix, err := Unpack(data)
		require.NoError(t, err)
		unknown, ok := ix.(Unknown)
		require.True(t, ok)
		require.Equal(t, []byte{9}, unknown.Payload)
		require.Equal(t, data, unknown.Pack())
	})

	t.Run("short", func(t *testing.T) {
		_, err := Unpack([]byte{1, 2, 3})
		require.Equal(t, ErrInvalidInstructionData, errors.Cause(err))
	})
}

func TestNewExecute(t *testing.T) {
	keys := make([]pubkey.PublicKey, 6)
	for i := range keys {
		k, err := pubkey.NewRandom()
		require.NoError(t, err)
		keys[i] = k
	}
	ix := NewExecute(keys[0], keys[1], keys[2], keys[3], keys[4], keys[5], 42)

	require.Equal(t, keys[0], ix.ProgramID)
	require.Len(t, ix.Accounts, 5)
	for i, meta := range ix.Accounts {
		require.Equal(t, ledger.ReadOnly(keys[i+1], false), meta)
	}
	decoded, err := Unpack(ix.Data)
	require.NoError(t, err)
	require.Equal(t, Execute{Amount: 42}, decoded)
}
