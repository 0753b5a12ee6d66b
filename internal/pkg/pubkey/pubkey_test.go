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

package pubkey

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicKey_String(t *testing.T) {
	t.Run("round_trip", func(t *testing.T) {
		key, err := NewRandom()
		require.NoError(t, err)

		parsed, err := FromString(key.String())
		require.NoError(t, err)
		require.Equal(t, key, parsed)
	})

	t.Run("zero_key", func(t *testing.T) {
		require.Equal(t, "11111111111111111111111111111111", Zero.String())
		parsed, err := FromString("11111111111111111111111111111111")
		require.NoError(t, err)
		require.True(t, parsed.IsZero())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := FromString("0OIl")
		require.Error(t, err)
		require.Equal(t, ErrInvalidKey, errors.Cause(err))
	})

	t.Run("wrong_length", func(t *testing.T) {
		_, err := FromString("3mJr7AoUXx2Wqd")
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := FromString("")
		require.Error(t, err)
	})
}

func TestPublicKey_JSON(t *testing.T) {
	key, err := NewRandom()
	require.NoError(t, err)

	raw, err := json.Marshal(struct {
		Key PublicKey `json:"key"`
	}{Key: key})
	require.NoError(t, err)
	require.Equal(t, `{"key":"`+key.String()+`"}`, string(raw))

	var decoded struct {
		Key PublicKey `json:"key"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Equal(t, key, decoded.Key)
}

func TestPublicKey_IsOnCurve(t *testing.T) {
	key, err := NewRandom()
	require.NoError(t, err)
	assert.True(t, key.IsOnCurve())

	program, err := NewRandom()
	require.NoError(t, err)
	derived, _, err := FindProgramAddress([][]byte{[]byte("whale_account")}, program)
	require.NoError(t, err)
	assert.False(t, derived.IsOnCurve())
}

func TestFindProgramAddress(t *testing.T) {
	program, err := NewRandom()
	require.NoError(t, err)
	mint, err := NewRandom()
	require.NoError(t, err)
	seeds := [][]byte{[]byte("extra-account-metas"), mint.Bytes()}

	t.Run("matches_create_with_bump", func(t *testing.T) {
		addr, bump, err := FindProgramAddress(seeds, program)
		require.NoError(t, err)

		created, err := CreateProgramAddress(append(seeds, []byte{bump}), program)
		require.NoError(t, err)
		require.Equal(t, addr, created)
	})

	t.Run("deterministic", func(t *testing.T) {
		first, firstBump, err := FindProgramAddress(seeds, program)
		require.NoError(t, err)
		second, secondBump, err := FindProgramAddress(seeds, program)
		require.NoError(t, err)
		require.Equal(t, first, second)
		require.Equal(t, firstBump, secondBump)
	})

	t.Run("depends_on_seeds", func(t *testing.T) {
		other, err := NewRandom()
		require.NoError(t, err)
		a, _, err := FindProgramAddress(seeds, program)
		require.NoError(t, err)
		b, _, err := FindProgramAddress([][]byte{[]byte("extra-account-metas"), other.Bytes()}, program)
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("seed_too_long", func(t *testing.T) {
		_, _, err := FindProgramAddress([][]byte{make([]byte, MaxSeedLen+1)}, program)
		require.Equal(t, ErrMaxSeedLengthExceeded, errors.Cause(err))
	})

	t.Run("too_many_seeds", func(t *testing.T) {
		many := make([][]byte, MaxSeeds)
		for i := range many {
			many[i] = []byte{byte(i)}
		}
		_, _, err := FindProgramAddress(many, program)
		require.Equal(t, ErrMaxSeedLengthExceeded, errors.Cause(err))
	})
}

func TestDeriver_Find(t *testing.T) {
	program, err := NewRandom()
	require.NoError(t, err)
	d, err := NewDeriver(2)
	require.NoError(t, err)

	seeds := [][]byte{[]byte("whale_account")}
	expected, expectedBump, err := FindProgramAddress(seeds, program)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		addr, bump, err := d.Find(seeds, program)
		require.NoError(t, err)
		require.Equal(t, expected, addr)
		require.Equal(t, expectedBump, bump)
	}
	require.Equal(t, 1, d.cache.Len())

	// Seed boundaries are part of the key: ("ab","c") and ("a","bc") differ.
	require.NotEqual(t,
		cacheKey([][]byte{[]byte("ab"), []byte("c")}, program),
		cacheKey([][]byte{[]byte("a"), []byte("bc")}, program),
	)
}
