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

	"github.com/insolar/transferhook/internal/app/instruction"
	"github.com/insolar/transferhook/internal/app/ledger"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

// EntryFunc is an instruction handler that takes its arguments still encoded.
type EntryFunc func(host ledger.Host, programID pubkey.PublicKey, accounts []*ledger.AccountInfo, args []byte) error

// Dispatcher handles payloads in the transfer hook interface format. Only
// Execute is served. It is forwarded to the transfer hook handler with the amount
// as 8 little-endian bytes.
type Dispatcher struct {
	execute EntryFunc
}

func NewDispatcher(execute EntryFunc) *Dispatcher {
	return &Dispatcher{execute: execute}
}

func (d *Dispatcher) Dispatch(host ledger.Host, programID pubkey.PublicKey, accounts []*ledger.AccountInfo, data []byte) error {
	ix, err := instruction.Unpack(data)
	if err != nil {
		return err
	}
	switch ix := ix.(type) {
	case instruction.Execute:
		args := make([]byte, 8)
		binary.LittleEndian.PutUint64(args, ix.Amount)
		return d.execute(host, programID, accounts, args)
	default:
		return errors.Wrapf(ErrInvalidInstructionData, "unsupported instruction %s", ix.Discriminator())
	}
}
