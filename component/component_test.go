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

package component

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gojuno/minimock/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insolar/transferhook/configuration"
	"github.com/insolar/transferhook/internal/app/hook"
	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
	"github.com/insolar/transferhook/observability"
)

func newObs() *observability.Observability {
	return observability.Make(configuration.Log{Level: "error"})
}

func randomKey(t *testing.T) pubkey.PublicKey {
	k, err := pubkey.NewRandom()
	require.NoError(t, err)
	return k
}

func Test_makeFetcher(t *testing.T) {
	mc := minimock.NewController(t)
	ctx := context.Background()
	cfg := configuration.Hook{}.Default()

	t.Run("happy_path", func(t *testing.T) {
		defer mc.Finish()
		receipts := indexer.NewReceiptFetcherMock(mc)
		expected := []*ledger.Receipt{{Slot: 11}, {Slot: 12}}
		receipts.FetchMock.Inspect(func(ctx context.Context, after uint64, limit int) {
			assert.Equal(t, uint64(10), after)
			assert.Equal(t, cfg.Indexer.BatchSize, limit)
		}).Return(expected, nil)

		r := makeFetcher(cfg, newObs(), receipts)(ctx, &state{last: 10})
		require.NotNil(t, r)
		require.Equal(t, expected, r.receipts)
	})

	t.Run("nothing_new", func(t *testing.T) {
		defer mc.Finish()
		receipts := indexer.NewReceiptFetcherMock(mc)
		receipts.FetchMock.Return(nil, nil)

		require.Nil(t, makeFetcher(cfg, newObs(), receipts)(ctx, &state{last: 10}))
	})

	t.Run("fetch_error", func(t *testing.T) {
		defer mc.Finish()
		receipts := indexer.NewReceiptFetcherMock(mc)
		receipts.FetchMock.Return(nil, errors.New("ledger is gone"))

		require.Nil(t, makeFetcher(cfg, newObs(), receipts)(ctx, &state{}))
	})
}

func Test_makeCollector(t *testing.T) {
	program := randomKey(t)
	whale := randomKey(t)
	event := &hook.WhaleTransferEvent{WhaleAddress: whale, TransferAmount: 2000000000000}

	collect := makeCollector(newObs(), program)
	require.Nil(t, collect(nil))

	r := &raw{receipts: []*ledger.Receipt{
		{Slot: 1, TxID: uuid.New()},
		{Slot: 2, TxID: uuid.New(), Logs: []string{
			"Program " + program.String() + " invoke [2]",
			ledger.DataLogPrefix + base64.StdEncoding.EncodeToString(event.Encode()),
			"Program " + program.String() + " success",
		}},
		{Slot: 3, TxID: uuid.New(), Err: ledger.ErrInvalidArgument},
	}}
	b := collect(r)
	require.Len(t, b.slots, 3)
	require.Len(t, b.transfers, 1)

	assert.Equal(t, 0, b.slots[0].Events)
	assert.Equal(t, 1, b.slots[1].Events)
	assert.True(t, b.slots[1].Success)
	assert.False(t, b.slots[2].Success)
	assert.Equal(t, uint64(2), b.transfers[0].Slot)
	assert.Equal(t, whale, b.transfers[0].OriginatingAddress)
}

func Test_makePublisher(t *testing.T) {
	mc := minimock.NewController(t)
	ctx := context.Background()
	transfers := []*indexer.WhaleTransfer{{ID: uuid.New()}}

	t.Run("published", func(t *testing.T) {
		defer mc.Finish()
		publisher := indexer.NewPublisherMock(mc)
		publisher.PublishMock.Expect(ctx, transfers).Return(nil)

		makePublisher(newObs(), publisher)(ctx, &batch{transfers: transfers})
	})

	t.Run("empty_batch_is_skipped", func(t *testing.T) {
		defer mc.Finish()
		publisher := indexer.NewPublisherMock(mc)

		publish := makePublisher(newObs(), publisher)
		publish(ctx, nil)
		publish(ctx, &batch{})
		require.Equal(t, uint64(0), publisher.PublishBeforeCounter())
	})

	t.Run("failure_is_dropped", func(t *testing.T) {
		defer mc.Finish()
		publisher := indexer.NewPublisherMock(mc)
		publisher.PublishMock.Return(errors.New("channel closed"))

		makePublisher(newObs(), publisher)(ctx, &batch{transfers: transfers})
		require.Equal(t, uint64(1), publisher.PublishAfterCounter())
	})
}

func TestSleepManager_Count(t *testing.T) {
	cfg := configuration.Hook{}.Default()
	sm := NewSleepManager(cfg)

	t.Run("nothing_fetched", func(t *testing.T) {
		require.Equal(t, cfg.Indexer.AttemptInterval, sm.Count(nil, time.Millisecond))
	})

	t.Run("regular", func(t *testing.T) {
		r := &raw{receipts: make([]*ledger.Receipt, 1)}
		require.Equal(t, cfg.Indexer.AttemptInterval-100*time.Millisecond, sm.Count(r, 100*time.Millisecond))
	})

	t.Run("slow_batch", func(t *testing.T) {
		r := &raw{receipts: make([]*ledger.Receipt, 1)}
		require.Equal(t, time.Duration(0), sm.Count(r, cfg.Indexer.AttemptInterval+time.Second))
	})

	t.Run("fast_forwarding", func(t *testing.T) {
		r := &raw{receipts: make([]*ledger.Receipt, cfg.Indexer.BatchSize)}
		require.Equal(t, cfg.Indexer.FastForwardInterval, sm.Count(r, time.Millisecond))
	})
}

func TestRouter(t *testing.T) {
	router := NewRouter(":0", newObs())

	t.Run("healthcheck", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "OK", rec.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		fetchingMetrics(router.obs)
		rec := httptest.NewRecorder()
		router.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "hook_fetched_receipt_total")
	})
}

func TestManager_run(t *testing.T) {
	ctx := context.Background()
	calls := []string{}
	stored := true
	m := &Manager{
		log: newObs().Log(),
		fetch: func(context.Context, *state) *raw {
			calls = append(calls, "fetch")
			return &raw{}
		},
		collect: func(*raw) *batch {
			calls = append(calls, "collect")
			return &batch{}
		},
		store: func(*batch, *state) bool {
			calls = append(calls, "store")
			return stored
		},
		publish: func(context.Context, *batch) {
			calls = append(calls, "publish")
		},
		sleep: sleepFunc(func(*raw, time.Duration) time.Duration { return 0 }),
	}

	m.run(ctx, &state{})
	require.Equal(t, []string{"fetch", "collect", "store", "publish"}, calls)

	calls = calls[:0]
	stored = false
	m.run(ctx, &state{})
	require.Equal(t, []string{"fetch", "collect", "store"}, calls)
}

type sleepFunc func(*raw, time.Duration) time.Duration

func (f sleepFunc) Count(r *raw, executed time.Duration) time.Duration {
	return f(r, executed)
}
