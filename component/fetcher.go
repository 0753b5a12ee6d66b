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

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/insolar/transferhook/configuration"
	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/observability"
)

func makeFetcher(
	cfg *configuration.Hook,
	obs *observability.Observability,
	receipts indexer.ReceiptFetcher,
) func(context.Context, *state) *raw {
	log := obs.Log()
	lastSlotMetric, receiptCounterMetric := fetchingMetrics(obs)

	return func(ctx context.Context, s *state) *raw {
		batch, err := receipts.Fetch(ctx, s.last, cfg.Indexer.BatchSize)
		if err != nil {
			log.Error(errors.Wrapf(err, "failed to fetch receipts after slot %d", s.last))
			return nil
		}
		if len(batch) == 0 {
			return nil
		}
		lastSlotMetric.Set(float64(batch[len(batch)-1].Slot))
		receiptCounterMetric.Add(float64(len(batch)))
		log.WithField("batch_size", len(batch)).
			WithField("after", s.last).
			Debug("fetched receipts")
		return &raw{receipts: batch}
	}
}

func fetchingMetrics(obs *observability.Observability) (prometheus.Gauge, prometheus.Counter) {
	lastSlot := obs.Gauge(prometheus.GaugeOpts{
		Name: "hook_last_fetched_slot",
		Help: "Last slot that was fetched from the ledger.",
	})
	receiptCounter := obs.Counter(prometheus.CounterOpts{
		Name: "hook_fetched_receipt_total",
		Help: "Number of receipts fetched from the ledger.",
	})
	return lastSlot, receiptCounter
}
