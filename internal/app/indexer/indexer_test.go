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

package indexer

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/transferhook/internal/app/hook"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

func randomKey(t *testing.T) pubkey.PublicKey {
	k, err := pubkey.NewRandom()
	require.NoError(t, err)
	return k
}

func dataLine(ev *hook.WhaleTransferEvent) string {
	return ledger.DataLogPrefix + base64.StdEncoding.EncodeToString(ev.Encode())
}

func TestWhaleTransferCollector_Collect(t *testing.T) {
	program := randomKey(t)
	token := randomKey(t)
	whale := randomKey(t)
	now := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	collector := NewWhaleTransferCollector(logrus.New(), program)
	collector.now = func() time.Time { return now }

	first := &hook.WhaleTransferEvent{WhaleAddress: whale, TransferAmount: 1000000000000}
	second := &hook.WhaleTransferEvent{WhaleAddress: whale, TransferAmount: 5000000000000}

	t.Run("nil", func(t *testing.T) {
		require.Empty(t, collector.Collect(nil))
	})

	t.Run("events_in_order", func(t *testing.T) {
		receipt := &ledger.Receipt{
			Slot: 7,
			TxID: uuid.New(),
			Logs: []string{
				"Program " + token.String() + " invoke [1]",
				"Program " + program.String() + " invoke [2]",
				ledger.LogPrefix + "Whale with amount: 1000000000000",
				dataLine(first),
				dataLine(second),
				"Program " + program.String() + " success",
				"Program " + token.String() + " success",
			},
		}
		transfers := collector.Collect(receipt)
		require.Len(t, transfers, 2)

		assert.Equal(t, uint64(7), transfers[0].Slot)
		assert.Equal(t, receipt.TxID, transfers[0].TxID)
		assert.Equal(t, 0, transfers[0].Index)
		assert.Equal(t, program, transfers[0].ProgramID)
		assert.Equal(t, whale, transfers[0].OriginatingAddress)
		assert.Equal(t, uint64(1000000000000), transfers[0].TransferAmount)
		assert.Equal(t, now, transfers[0].ObservedAt)

		assert.Equal(t, 1, transfers[1].Index)
		assert.Equal(t, uint64(5000000000000), transfers[1].TransferAmount)
		assert.NotEqual(t, transfers[0].ID, transfers[1].ID)

		again := collector.Collect(receipt)
		require.Equal(t, transfers[0].ID, again[0].ID)
	})

	t.Run("foreign_program", func(t *testing.T) {
		other := randomKey(t)
		receipt := &ledger.Receipt{
			Slot: 8,
			TxID: uuid.New(),
			Logs: []string{
				"Program " + other.String() + " invoke [1]",
				dataLine(first),
				"Program " + other.String() + " success",
			},
		}
		require.Empty(t, collector.Collect(receipt))
	})

	t.Run("failed_transaction", func(t *testing.T) {
		receipt := &ledger.Receipt{
			Slot: 9,
			TxID: uuid.New(),
			Logs: []string{
				"Program " + program.String() + " invoke [1]",
				dataLine(first),
				"Program " + program.String() + " failed: custom program error",
			},
			Err: ledger.ErrInvalidArgument,
		}
		require.Empty(t, collector.Collect(receipt))
	})

	t.Run("malformed_data", func(t *testing.T) {
		receipt := &ledger.Receipt{
			Slot: 10,
			TxID: uuid.New(),
			Logs: []string{
				"Program " + program.String() + " invoke [1]",
				ledger.DataLogPrefix + "***",
				"Program " + program.String() + " success",
			},
		}
		require.Empty(t, collector.Collect(receipt))
	})
}

func TestBankFetcher_Fetch(t *testing.T) {
	bank := ledger.NewBank(logrus.New(), ledger.DefaultRent())
	noop := randomKey(t)
	bank.RegisterProgram(noop, ledger.ProgramFunc(func(ledger.Host, pubkey.PublicKey, []*ledger.AccountInfo, []byte) error {
		return nil
	}))
	for i := 0; i < 3; i++ {
		_, err := bank.Process(context.Background(), ledger.NewTransaction(nil, ledger.Instruction{ProgramID: noop}))
		require.NoError(t, err)
	}
	fetcher := NewBankFetcher(bank)

	t.Run("after", func(t *testing.T) {
		receipts, err := fetcher.Fetch(context.Background(), 1, 10)
		require.NoError(t, err)
		require.Len(t, receipts, 2)
		require.Equal(t, uint64(2), receipts[0].Slot)
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := fetcher.Fetch(ctx, 0, 10)
		require.Equal(t, context.Canceled, err)
	})
}
