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

package hook

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/discriminator"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

const whaleTransferEventSize = discriminator.Size + pubkey.Size + 8

var whaleTransferEventDiscriminator = discriminator.Event("WhaleTransferEvent")

// WhaleTransferEvent is written to the transaction log each time the threshold
// is reached.
type WhaleTransferEvent struct {
	WhaleAddress   pubkey.PublicKey `json:"originating_address"`
	TransferAmount uint64           `json:"transfer_amount"`
}

func (e *WhaleTransferEvent) Encode() []byte {
	out := make([]byte, whaleTransferEventSize)
	copy(out, whaleTransferEventDiscriminator[:])
	copy(out[discriminator.Size:], e.WhaleAddress[:])
	binary.LittleEndian.PutUint64(out[discriminator.Size+pubkey.Size:], e.TransferAmount)
	return out
}

// DecodeWhaleTransferEvent returns false for payloads that are not whale
// transfer events.
func DecodeWhaleTransferEvent(data []byte) (*WhaleTransferEvent, bool, error) {
	tag, body, err := discriminator.Split(data)
	if err != nil || tag != whaleTransferEventDiscriminator {
		return nil, false, nil
	}
	if len(body) != pubkey.Size+8 {
		return nil, true, errors.Errorf("whale transfer event has %d bytes, expected %d", len(data), whaleTransferEventSize)
	}
	e := &WhaleTransferEvent{TransferAmount: binary.LittleEndian.Uint64(body[pubkey.Size:])}
	copy(e.WhaleAddress[:], body[:pubkey.Size])
	return e, true, nil
}

// ParseEvents extracts the whale transfer events emitted by program from a
// transaction log.
func ParseEvents(logs []string, program pubkey.PublicKey) ([]*WhaleTransferEvent, error) {
	payloads, err := ledger.ProgramData(logs, program)
	if err != nil {
		return nil, err
	}
	var events []*WhaleTransferEvent
	for _, payload := range payloads {
		ev, ok, err := DecodeWhaleTransferEvent(payload)
		if err != nil {
			return nil, err
		}
		if ok {
			events = append(events, ev)
		}
	}
	return events, nil
}
