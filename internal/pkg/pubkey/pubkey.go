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

package pubkey

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"

	"filippo.io/edwards25519"
	"github.com/jbenet/go-base58"
	"github.com/pkg/errors"
)

// Size is the length of a public key in bytes.
const Size = 32

var ErrInvalidKey = errors.New("invalid public key")

// PublicKey identifies an account on the ledger. Its textual form is base58.
type PublicKey [Size]byte

var Zero PublicKey

func New(b []byte) (PublicKey, error) {
	var k PublicKey
	if len(b) != Size {
		return k, errors.Wrapf(ErrInvalidKey, "expected %d bytes, got %d", Size, len(b))
	}
	copy(k[:], b)
	return k, nil
}

func FromString(s string) (PublicKey, error) {
	if s == "" {
		return Zero, errors.Wrap(ErrInvalidKey, "empty string")
	}
	raw := base58.Decode(s)
	if len(raw) == 0 {
		return Zero, errors.Wrapf(ErrInvalidKey, "malformed base58 %q", s)
	}
	return New(raw)
}

// MustFromString is FromString for well-known constants. Panics on error.
func MustFromString(s string) PublicKey {
	k, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return k
}

// NewRandom returns the public half of a fresh ed25519 key pair.
func NewRandom() (PublicKey, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return Zero, errors.Wrap(err, "failed to generate key pair")
	}
	return New(pub)
}

func (k PublicKey) String() string {
	return base58.Encode(k[:])
}

func (k PublicKey) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, k[:])
	return b
}

func (k PublicKey) IsZero() bool {
	return k == Zero
}

func (k PublicKey) Equal(other PublicKey) bool {
	return bytes.Equal(k[:], other[:])
}

// IsOnCurve reports whether the key decodes to a point on the ed25519 curve.
// Derived addresses must not be on the curve so that no private key exists for them.
func (k PublicKey) IsOnCurve() bool {
	_, err := new(edwards25519.Point).SetBytes(k[:])
	return err == nil
}

func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := FromString(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
