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

package discriminator

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromHash(t *testing.T) {
	sum := sha256.Sum256([]byte("spl-transfer-hook-interface:execute"))
	d := FromHash("spl-transfer-hook-interface:execute")
	require.Equal(t, sum[:Size], d[:])

	require.Equal(t, FromHash("global:transfer_hook"), Global("transfer_hook"))
	require.Equal(t, FromHash("account:WhaleAccount"), Account("WhaleAccount"))
	require.Equal(t, FromHash("event:WhaleTransferEvent"), Event("WhaleTransferEvent"))
	require.NotEqual(t, Global("transfer_hook"), Account("transfer_hook"))
}

func TestSplit(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		d := Global("transfer_hook")
		data := append(d.Bytes(), 1, 2, 3)
		got, rest, err := Split(data)
		require.NoError(t, err)
		require.Equal(t, d, got)
		require.Equal(t, []byte{1, 2, 3}, rest)
	})

	t.Run("exact", func(t *testing.T) {
		got, rest, err := Split(make([]byte, Size))
		require.NoError(t, err)
		require.Equal(t, Uninitialized, got)
		require.Empty(t, rest)
	})

	t.Run("short", func(t *testing.T) {
		_, _, err := Split([]byte{1, 2, 3})
		require.Equal(t, ErrTooShort, err)
	})
}
