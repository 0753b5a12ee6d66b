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
	"github.com/insolar/transferhook/internal/app/instruction"
	"github.com/insolar/transferhook/internal/app/resolution"
	"github.com/insolar/transferhook/internal/pkg/pubkey"
)

const WhaleAccountSeed = "whale_account"

func ObservationSeeds(scope Scope, mint pubkey.PublicKey) [][]byte {
	if scope == AssetScope {
		return [][]byte{[]byte(WhaleAccountSeed), mint.Bytes()}
	}
	return [][]byte{[]byte(WhaleAccountSeed)}
}

// Addresses derives the program-owned addresses of the hook.
type Addresses struct {
	program pubkey.PublicKey
	finder  resolution.AddressFinder
}

func NewAddresses(program pubkey.PublicKey, finder resolution.AddressFinder) *Addresses {
	return &Addresses{program: program, finder: finder}
}

func (a *Addresses) Program() pubkey.PublicKey {
	return a.program
}

// Registry returns the address holding the extra account metas of mint.
func (a *Addresses) Registry(mint pubkey.PublicKey) (pubkey.PublicKey, uint8, error) {
	return a.finder.Find(instruction.RegistrySeeds(mint), a.program)
}

// Observation returns the address of the whale account. The mint is ignored for
// GlobalScope.
func (a *Addresses) Observation(scope Scope, mint pubkey.PublicKey) (pubkey.PublicKey, uint8, error) {
	return a.finder.Find(ObservationSeeds(scope, mint), a.program)
}
