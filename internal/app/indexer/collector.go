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
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/insolar/transferhook/internal/app/hook"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

type WhaleTransferCollector struct {
	log     *logrus.Entry
	program pubkey.PublicKey
	now     func() time.Time
}

func NewWhaleTransferCollector(log *logrus.Logger, program pubkey.PublicKey) *WhaleTransferCollector {
	return &WhaleTransferCollector{
		log:     log.WithField("collector", "whale_transfer"),
		program: program,
		now:     time.Now,
	}
}

// Collect returns the whale transfers recorded by receipt. Failed transactions
// committed nothing, so their events are ignored.
func (c *WhaleTransferCollector) Collect(receipt *ledger.Receipt) []*WhaleTransfer {
	if receipt == nil || !receipt.Success() {
		return nil
	}
	events, err := hook.ParseEvents(receipt.Logs, c.program)
	if err != nil {
		c.log.WithError(err).
			WithField("slot", receipt.Slot).
			Error("failed to parse program events")
		return nil
	}
	observed := c.now().UTC()
	transfers := make([]*WhaleTransfer, 0, len(events))
	for i, ev := range events {
		transfers = append(transfers, &WhaleTransfer{
			ID:                 uuid.NewSHA1(receipt.TxID, []byte{byte(i >> 8), byte(i)}),
			Slot:               receipt.Slot,
			TxID:               receipt.TxID,
			Index:              i,
			ProgramID:          c.program,
			OriginatingAddress: ev.WhaleAddress,
			TransferAmount:     ev.TransferAmount,
			ObservedAt:         observed,
		})
	}
	return transfers
}
