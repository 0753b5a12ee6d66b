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

	"github.com/insolar/transferhook/internal/pkg/discriminator"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

// WhaleAccountSize is the discriminator followed by the two fields.
const WhaleAccountSize = discriminator.Size + pubkey.Size + 8

var whaleAccountDiscriminator = discriminator.Account("WhaleAccount")

// WhaleAccount is the observation state: the latest transfer that reached the
// threshold. A zero amount means no transfer has qualified yet.
type WhaleAccount struct {
	WhaleAddress   pubkey.PublicKey `json:"originating_address"`
	TransferAmount uint64           `json:"transfer_amount"`
}

func (w *WhaleAccount) Encode() []byte {
	out := make([]byte, WhaleAccountSize)
	copy(out, whaleAccountDiscriminator[:])
	copy(out[discriminator.Size:], w.WhaleAddress[:])
	binary.LittleEndian.PutUint64(out[discriminator.Size+pubkey.Size:], w.TransferAmount)
	return out
}

func DecodeWhaleAccount(data []byte) (*WhaleAccount, error) {
	tag, body, err := discriminator.Split(data)
	if err != nil {
		return nil, ErrAccountDidNotDeserialize
	}
	if tag != whaleAccountDiscriminator {
		return nil, ErrAccountDiscriminatorMismatch
	}
	if len(body) < pubkey.Size+8 {
		return nil, ErrAccountDidNotDeserialize
	}
	w := &WhaleAccount{TransferAmount: binary.LittleEndian.Uint64(body[pubkey.Size:])}
	copy(w.WhaleAddress[:], body[:pubkey.Size])
	return w, nil
}
