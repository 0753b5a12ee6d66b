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
	"math/bits"
	"strings"

	"github.com/pkg/errors"
)

// DefaultWhaleUnits is the threshold in whole tokens.
const DefaultWhaleUnits = 1000

// Policy decides what Execute does once the accounts check out.
type Policy int

const (
	// Threshold records and reports transfers of at least the whale threshold.
	Threshold Policy = iota + 1
	// PassThrough acknowledges every transfer and records nothing.
	PassThrough
)

func (p Policy) String() string {
	switch p {
	case Threshold:
		return "threshold"
	case PassThrough:
		return "pass-through"
	default:
		return "unknown"
	}
}

func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "threshold":
		return Threshold, nil
	case "pass-through", "passthrough":
		return PassThrough, nil
	default:
		return 0, errors.Errorf("unknown hook policy %q", s)
	}
}

// Scope decides where the observation state lives.
type Scope int

const (
	// GlobalScope keeps a single observation shared by every mint.
	GlobalScope Scope = iota + 1
	// AssetScope keeps one observation per mint.
	AssetScope
)

func (s Scope) String() string {
	switch s {
	case GlobalScope:
		return "global"
	case AssetScope:
		return "asset"
	default:
		return "unknown"
	}
}

func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(s) {
	case "global":
		return GlobalScope, nil
	case "asset", "per-asset":
		return AssetScope, nil
	default:
		return 0, errors.Errorf("unknown observation scope %q", s)
	}
}

// WhaleThreshold returns units × 10^decimals, failing instead of wrapping around.
func WhaleThreshold(units uint64, decimals uint8) (uint64, error) {
	scale := uint64(1)
	for i := uint8(0); i < decimals; i++ {
		hi, lo := bits.Mul64(scale, 10)
		if hi != 0 {
			return 0, errors.Wrapf(ErrArithmeticOverflow, "10^%d", decimals)
		}
		scale = lo
	}
	hi, lo := bits.Mul64(units, scale)
	if hi != 0 {
		return 0, errors.Wrapf(ErrArithmeticOverflow, "%d × 10^%d", units, decimals)
	}
	return lo, nil
}
