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
	"github.com/go-pg/pg"
	"github.com/pkg/errors"

	"github.com/insolar/transferhook/configuration"
	"github.com/insolar/transferhook/internal/app/indexer/postgres"
	"github.com/insolar/transferhook/internal/pkg/cycle"
	"github.com/insolar/transferhook/observability"
)

type Transactor interface {
	RunInTransaction(fn func(*pg.Tx) error) error
}

// makeStorer writes a batch in one transaction. The state only moves forward
// once the batch is committed.
func makeStorer(
	cfg *configuration.Hook,
	obs *observability.Observability,
	db Transactor,
) func(*batch, *state) bool {
	log := obs.Log()
	metrics := observability.MakeIndexerMetrics(obs, "stored")
	common := observability.MakeCommonMetrics(obs)

	return func(b *batch, s *state) bool {
		if b == nil || len(b.slots) == 0 {
			return false
		}

		err := cycle.UntilConnectionError(func() error {
			return db.RunInTransaction(func(tx *pg.Tx) error {
				transfers := postgres.NewWhaleTransferStorage(log, tx)
				for _, t := range b.transfers {
					if err := transfers.Insert(t); err != nil {
						return err
					}
				}
				slots := postgres.NewSlotStorage(log, tx)
				for _, sl := range b.slots {
					if err := slots.Insert(sl); err != nil {
						return err
					}
				}
				return nil
			})
		}, cfg.DB.AttemptInterval, cfg.DB.Attempts, log)
		if err != nil {
			log.Error(errors.Wrap(err, "failed to store batch"))
			return false
		}

		last := b.slots[len(b.slots)-1].Number
		s.last = last
		metrics.Slots.Add(float64(len(b.slots)))
		metrics.WhaleTransfers.Add(float64(len(b.transfers)))
		common.LastSlot.Set(float64(last))
		log.WithField("slot", last).Debug("batch stored")
		return true
	}
}
