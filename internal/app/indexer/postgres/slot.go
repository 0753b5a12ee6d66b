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

package postgres

import (
	"github.com/go-pg/pg"
	"github.com/go-pg/pg/orm"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/models"
)

type SlotStorage struct {
	log *logrus.Logger
	db  orm.DB
}

func NewSlotStorage(log *logrus.Logger, db orm.DB) *SlotStorage {
	return &SlotStorage{
		log: log,
		db:  db,
	}
}

func (s *SlotStorage) Insert(model *indexer.Slot) error {
	if model == nil {
		s.log.Warnf("trying to insert nil slot model")
		return nil
	}
	row := slotSchema(model)
	res, err := s.db.Model(row).
		OnConflict("DO NOTHING").
		Insert()

	if err != nil {
		return errors.Wrapf(err, "failed to insert slot %v", row.Slot)
	}

	if res.RowsAffected() == 0 {
		s.log.WithField("slot_row", row).
			Warn("slot is already stored")
	}
	return nil
}

func (s *SlotStorage) Last() (*indexer.Slot, error) {
	row := &models.Slot{}
	err := s.db.Model(row).
		Order("slot DESC").
		Limit(1).
		Select()
	if err == pg.ErrNoRows {
		s.log.Warn("no slots in db")
		return nil, indexer.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed request to db")
	}

	model := &indexer.Slot{
		Number:  uint64(row.Slot),
		Success: row.Success,
		Events:  row.Events,
	}
	model.TxID, err = uuid.Parse(row.TxID)
	if err != nil {
		s.log.WithField("tx_id", row.TxID).
			Error("failed to parse transaction id from db schema")
	}
	return model, nil
}

func slotSchema(model *indexer.Slot) *models.Slot {
	return &models.Slot{
		Slot:    int64(model.Number),
		TxID:    model.TxID.String(),
		Success: model.Success,
		Events:  model.Events,
	}
}

// Reset forgets the indexing progress. Stored whale transfers stay.
func (s *SlotStorage) Reset() error {
	_, err := s.db.Model((*models.Slot)(nil)).Exec("TRUNCATE TABLE ?TableName")
	return errors.Wrap(err, "failed to truncate slots")
}
