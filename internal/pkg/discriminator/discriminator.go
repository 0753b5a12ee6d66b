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

package discriminator

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/pkg/errors"
)

const Size = 8

var ErrTooShort = errors.New("data is shorter than a discriminator")

// Discriminator is the 8-byte tag that prefixes instructions, accounts, events and
// TLV entries. It is the head of the SHA-256 digest of a namespaced name.
type Discriminator [Size]byte

// Uninitialized marks free TLV space.
var Uninitialized Discriminator

func FromHash(preimage string) Discriminator {
	sum := sha256.Sum256([]byte(preimage))
	var d Discriminator
	copy(d[:], sum[:Size])
	return d
}

func Global(name string) Discriminator {
	return FromHash("global:" + name)
}

func Account(name string) Discriminator {
	return FromHash("account:" + name)
}

func Event(name string) Discriminator {
	return FromHash("event:" + name)
}

// Split cuts the leading discriminator off data.
func Split(data []byte) (Discriminator, []byte, error) {
	var d Discriminator
	if len(data) < Size {
		return d, nil, ErrTooShort
	}
	copy(d[:], data[:Size])
	return d, data[Size:], nil
}

func (d Discriminator) Bytes() []byte {
	return append([]byte(nil), d[:]...)
}

func (d Discriminator) String() string {
	return hex.EncodeToString(d[:])
}
