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
	"math/big"

	"github.com/go-pg/pg/orm"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/app/indexer"
	"github.com/insolar/transferhook/internal/models"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

type WhaleTransferStorage struct {
	log *logrus.Logger
	db  orm.DB
}

func NewWhaleTransferStorage(log *logrus.Logger, db orm.DB) *WhaleTransferStorage {
	return &WhaleTransferStorage{
		log: log,
		db:  db,
	}
}

// Insert stores the transfer once. A transaction's event is identified by the
// transaction id and the event position, so replays are no-ops.
func (s *WhaleTransferStorage) Insert(model *indexer.WhaleTransfer) error {
	if model == nil {
		s.log.Warnf("trying to insert nil whale transfer model")
		return nil
	}
	row := whaleTransferSchema(model)
	res, err := s.db.Model(row).
		OnConflict("(tx_id, event_index) DO NOTHING").
		Insert()

	if err != nil {
		return errors.Wrapf(err, "failed to insert whale transfer %v", row.ID)
	}

	if res.RowsAffected() == 0 {
		s.log.WithField("whale_transfer_row", row).
			Warn("whale transfer is already stored")
	}
	return nil
}

// List returns the latest stored transfers, newest first. Slots restart at 1
// together with the ledger, so observation time orders transfers across runs.
func (s *WhaleTransferStorage) List(limit int) ([]*indexer.WhaleTransfer, error) {
	var rows []models.WhaleTransfer
	err := s.db.Model(&rows).
		Order("observed_at DESC", "slot DESC", "event_index DESC").
		Limit(limit).
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed request to db")
	}

	out := make([]*indexer.WhaleTransfer, 0, len(rows))
	for i := range rows {
		model, err := whaleTransferModel(&rows[i])
		if err != nil {
			s.log.WithField("whale_transfer_row", rows[i]).
				Error(errors.Wrap(err, "failed to convert db schema to model"))
			continue
		}
		out = append(out, model)
	}
	return out, nil
}

func whaleTransferSchema(model *indexer.WhaleTransfer) *models.WhaleTransfer {
	return &models.WhaleTransfer{
		ID:                 model.ID,
		Slot:               int64(model.Slot),
		TxID:               model.TxID.String(),
		EventIndex:         model.Index,
		ProgramID:          model.ProgramID.String(),
		OriginatingAddress: model.OriginatingAddress.String(),
		TransferAmount:     decimal.NewFromBigInt(new(big.Int).SetUint64(model.TransferAmount), 0),
		ObservedAt:         model.ObservedAt,
	}
}

func whaleTransferModel(row *models.WhaleTransfer) (*indexer.WhaleTransfer, error) {
	txID, err := uuid.Parse(row.TxID)
	if err != nil {
		return nil, errors.Wrap(err, "bad transaction id")
	}
	program, err := pubkey.FromString(row.ProgramID)
	if err != nil {
		return nil, errors.Wrap(err, "bad program id")
	}
	whale, err := pubkey.FromString(row.OriginatingAddress)
	if err != nil {
		return nil, errors.Wrap(err, "bad originating address")
	}
	amount := row.TransferAmount.BigInt()
	if amount.Sign() < 0 || !amount.IsUint64() {
		return nil, errors.Errorf("transfer amount %s is out of range", row.TransferAmount)
	}
	return &indexer.WhaleTransfer{
		ID:                 row.ID,
		Slot:               uint64(row.Slot),
		TxID:               txID,
		Index:              row.EventIndex,
		ProgramID:          program,
		OriginatingAddress: whale,
		TransferAmount:     amount.Uint64(),
		ObservedAt:         row.ObservedAt,
	}, nil
}
