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
	"crypto/sha256"
	"encoding/binary"
	"math"

	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
)

const (
	MaxSeeds   = 16
	MaxSeedLen = 32

	derivedAddressMarker = "ProgramDerivedAddress"
)

var (
	ErrMaxSeedLengthExceeded = errors.New("length of the seed is too long for address generation")
	ErrInvalidSeeds          = errors.New("provided seeds do not result in a valid address")
	ErrNoViableBump          = errors.New("unable to find a viable program address bump seed")
)

// CreateProgramAddress hashes the seeds together with the program key. The result
// is rejected when it lands on the ed25519 curve.
func CreateProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, error) {
	if len(seeds) > MaxSeeds {
		return Zero, ErrMaxSeedLengthExceeded
	}
	h := sha256.New()
	for _, seed := range seeds {
		if len(seed) > MaxSeedLen {
			return Zero, ErrMaxSeedLengthExceeded
		}
		h.Write(seed)
	}
	h.Write(program[:])
	h.Write([]byte(derivedAddressMarker))

	var addr PublicKey
	copy(addr[:], h.Sum(nil))
	if addr.IsOnCurve() {
		return Zero, ErrInvalidSeeds
	}
	return addr, nil
}

// FindProgramAddress searches bump seeds from 255 downwards and returns the first
// address that is off the curve together with its bump.
func FindProgramAddress(seeds [][]byte, program PublicKey) (PublicKey, uint8, error) {
	withBump := make([][]byte, len(seeds)+1)
	copy(withBump, seeds)
	for bump := math.MaxUint8; bump > 0; bump-- {
		withBump[len(seeds)] = []byte{uint8(bump)}
		addr, err := CreateProgramAddress(withBump, program)
		switch errors.Cause(err) {
		case nil:
			return addr, uint8(bump), nil
		case ErrInvalidSeeds:
			continue
		default:
			return Zero, 0, err
		}
	}
	return Zero, 0, ErrNoViableBump
}

type derived struct {
	address PublicKey
	bump    uint8
}

// Deriver memoizes FindProgramAddress. The search may hash up to 255 times, and the
// same handful of addresses is derived on every hook invocation.
type Deriver struct {
	cache *lru.Cache
}

func NewDeriver(size int) (*Deriver, error) {
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to init derivation cache")
	}
	return &Deriver{cache: cache}, nil
}

func (d *Deriver) Find(seeds [][]byte, program PublicKey) (PublicKey, uint8, error) {
	key := cacheKey(seeds, program)
	if val, ok := d.cache.Get(key); ok {
		if res, ok := val.(derived); ok {
			return res.address, res.bump, nil
		}
	}
	addr, bump, err := FindProgramAddress(seeds, program)
	if err != nil {
		return Zero, 0, err
	}
	d.cache.Add(key, derived{address: addr, bump: bump})
	return addr, bump, nil
}

func cacheKey(seeds [][]byte, program PublicKey) string {
	size := Size
	for _, s := range seeds {
		size += 2 + len(s)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, program[:]...)
	for _, s := range seeds {
		var l [2]byte
		binary.LittleEndian.PutUint16(l[:], uint16(len(s)))
		buf = append(buf, l[:]...)
		buf = append(buf, s...)
	}
	return string(buf)
}
