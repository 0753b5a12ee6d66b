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
	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
	"github.com/insolar/transferhook/observability"
)

func makeCollector(obs *observability.Observability, program pubkey.PublicKey) func(*raw) *batch {
	log := obs.Log()
	metrics := observability.MakeIndexerMetrics(obs, "collected")
	collector := indexer.NewWhaleTransferCollector(log, program)

	return func(r *raw) *batch {
		if r == nil {
			return nil
		}
		b := &batch{}
		for _, receipt := range r.receipts {
			transfers := collector.Collect(receipt)
			b.transfers = append(b.transfers, transfers...)
			b.slots = append(b.slots, &indexer.Slot{
				Number:  receipt.Slot,
				TxID:    receipt.TxID,
				Success: receipt.Success(),
				Events:  len(transfers),
			})
		}
		metrics.Receipts.Add(float64(len(r.receipts)))
		metrics.WhaleTransfers.Add(float64(len(b.transfers)))
		if len(b.transfers) > 0 {
			log.WithField("whale_transfers", len(b.transfers)).Info("collected whale transfers")
		}
		return b
	}
}
