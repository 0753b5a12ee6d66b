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

package resolution

import (
	"github.com/pkg/errors"
)

var (
	ErrSeedConfigsTooLarge        = errors.New("seed configurations do not fit into the address config")
	ErrInvalidSeedConfig          = errors.New("malformed seed configuration")
	ErrInvalidDiscriminator       = errors.New("unknown account meta discriminator")
	ErrInvalidProgramIndex        = errors.New("program index does not fit into a discriminator")
	ErrInstructionDataTooSmall    = errors.New("instruction data is too small for the seed")
	ErrAccountNotFound            = errors.New("seed refers to an account that is not present")
	ErrAccountDataTooSmall        = errors.New("account data is too small for the seed")
	ErrAccountDataUnavailable     = errors.New("account data could not be fetched")
	ErrTypeAlreadyExists          = errors.New("type already exists in the tlv data")
	ErrTypeNotFound               = errors.New("type not found in tlv data")
	ErrInvalidLength              = errors.New("tlv entry length does not match its contents")
	ErrTlvDataTooSmall            = errors.New("not enough free space in the tlv data")
	ErrUninitializedDiscriminator = errors.New("tlv entries cannot use the uninitialized discriminator")
)
