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
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

var ErrNotFound = errors.New("not found")

// Slot is the indexing progress marker: one row per committed receipt.
type Slot struct {
	Number  uint64
	TxID    uuid.UUID
	Success bool
	Events  int
}

// WhaleTransfer is a whale transfer event as observed in a committed transaction.
type WhaleTransfer struct {
	ID                 uuid.UUID        `json:"id"`
	Slot               uint64           `json:"slot"`
	TxID               uuid.UUID        `json:"tx_id"`
	Index              int              `json:"index"`
	ProgramID          pubkey.PublicKey `json:"program_id"`
	OriginatingAddress pubkey.PublicKey `json:"originating_address"`
	TransferAmount     uint64           `json:"transfer_amount"`
	ObservedAt         time.Time        `json:"observed_at"`
}

//go:generate minimock -i github.com/insolar/transferhook/internal/app/indexer.ReceiptFetcher -o ./ -s _mock.go -g
type ReceiptFetcher interface {
	// Fetch returns up to limit receipts with slots greater than after.
	Fetch(ctx context.Context, after uint64, limit int) ([]*ledger.Receipt, error)
}

type SlotStorage interface {
	Insert(*Slot) error
	Last() (*Slot, error)
}

type WhaleTransferStorage interface {
	Insert(*WhaleTransfer) error
	List(limit int) ([]*WhaleTransfer, error)
}

//go:generate minimock -i github.com/insolar/transferhook/internal/app/indexer.Publisher -o ./ -s _mock.go -g
type Publisher interface {
	Publish(ctx context.Context, transfers []*WhaleTransfer) error
}

type BankFetcher struct {
	bank *ledger.Bank
}

func NewBankFetcher(bank *ledger.Bank) *BankFetcher {
	return &BankFetcher{bank: bank}
}

func (f *BankFetcher) Fetch(ctx context.Context, after uint64, limit int) ([]*ledger.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.bank.Receipts(after, limit), nil
}
