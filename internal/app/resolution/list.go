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
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/insolar/transferhook/internal/pkg/discriminator"
)

// tlvHeaderSize covers the entry discriminator and its little-endian u32 length.
const tlvHeaderSize = discriminator.Size + 4

// SizeOf returns the exact account size of a list holding count metas.
func SizeOf(count int) int {
	return tlvHeaderSize + 4 + MetaSize*count
}

type entry struct {
	offset int
	length int
}

// scan walks the TLV entries in data. It stops at the first uninitialized
// discriminator, or when the remaining space cannot hold a header.
func scan(data []byte) (map[discriminator.Discriminator]entry, int, error) {
	found := make(map[discriminator.Discriminator]entry)
	offset := 0
	for len(data)-offset >= tlvHeaderSize {
		var d discriminator.Discriminator
		copy(d[:], data[offset:offset+discriminator.Size])
		if d == discriminator.Uninitialized {
			break
		}
		length := int(binary.LittleEndian.Uint32(data[offset+discriminator.Size : offset+tlvHeaderSize]))
		end := offset + tlvHeaderSize + length
		if end > len(data) {
			return nil, 0, ErrInvalidLength
		}
		found[d] = entry{offset: offset + tlvHeaderSize, length: length}
		offset = end
	}
	return found, offset, nil
}

// Init writes metas into the first free TLV slot of data under the given type. It
// refuses to touch data that already holds an entry of that type.
func Init(data []byte, typ discriminator.Discriminator, metas []ExtraAccountMeta) error {
	if typ == discriminator.Uninitialized {
		return ErrUninitializedDiscriminator
	}
	found, free, err := scan(data)
	if err != nil {
		return err
	}
	if _, ok := found[typ]; ok {
		return errors.Wrapf(ErrTypeAlreadyExists, "type %s", typ)
	}

	value := PackMetas(metas)
	if free+tlvHeaderSize+len(value) > len(data) {
		return errors.Wrapf(ErrTlvDataTooSmall, "need %d bytes, have %d", free+tlvHeaderSize+len(value), len(data))
	}
	copy(data[free:], typ[:])
	binary.LittleEndian.PutUint32(data[free+discriminator.Size:], uint32(len(value)))
	copy(data[free+tlvHeaderSize:], value)
	return nil
}

// Unpack reads the metas stored under the given type.
func Unpack(data []byte, typ discriminator.Discriminator) ([]ExtraAccountMeta, error) {
	found, _, err := scan(data)
	if err != nil {
		return nil, err
	}
	e, ok := found[typ]
	if !ok {
		return nil, errors.Wrapf(ErrTypeNotFound, "type %s", typ)
	}
	return UnpackMetas(data[e.offset : e.offset+e.length])
}
