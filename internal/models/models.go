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

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Slot struct {
	tableName struct{} `sql:"slots"` //nolint: unused,structcheck

	Slot    int64  `sql:"slot,pk"`
	TxID    string `sql:"tx_id"`
	Success bool   `sql:"success,notnull"`
	Events  int    `sql:"events,notnull"`
}

type WhaleTransfer struct {
	tableName struct{} `sql:"whale_transfers"` //nolint: unused,structcheck

	ID   uuid.UUID `sql:"id,pk,type:uuid"`
	Slot int64     `sql:"slot"`
	TxID string    `sql:"tx_id"`
	// Position of the event among the events of one transaction.
	EventIndex int `sql:"event_index,notnull"`

	ProgramID          string          `sql:"program_id"`
	OriginatingAddress string          `sql:"originating_address"`
	TransferAmount     decimal.Decimal `sql:"transfer_amount,type:numeric"`
	ObservedAt         time.Time       `sql:"observed_at"`
}
