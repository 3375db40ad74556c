/*
 * Copyright (c) Overlaykit contributors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package ishield

import "encoding/binary"

const (
	attrSize12 = 24
	attrSize30 = 48

	legacyNameSize   = 260
	legacyRecordSize = legacyNameSize + 4 + 4 + 4 + 40
)

// Attribute is the per-entry record preceding stream payloads. The 30.x
// layout is the 12.x layout with the 2-byte slot reinterpreted as X2 and
// three FILETIME fields appended. Timestamps stay opaque; nothing here needs
// to interpret them.
type Attribute struct {
	NameLen  uint32
	Flags    uint32
	FileLen  uint32
	X2       uint16
	Unknown8 [8]byte
	Launcher uint16
	Times    [3][8]byte
}

// attrSize returns the attribute record size for the variant, or the full
// fixed record size for legacy entries where the filename is inline.
func (v Variant) attrSize() int {
	switch v {
	case Stream12:
		return attrSize12
	case Stream30:
		return attrSize30
	}
	return legacyRecordSize
}

// decodeAttribute parses an attribute record from b, which must be at least
// attrSize bytes. Values are little-endian throughout.
func decodeAttribute(v Variant, b []byte) Attribute {
	a := Attribute{
		NameLen:  binary.LittleEndian.Uint32(b[0:4]),
		Flags:    binary.LittleEndian.Uint32(b[4:8]),
		FileLen:  binary.LittleEndian.Uint32(b[8:12]),
		X2:       binary.LittleEndian.Uint16(b[12:14]),
		Launcher: binary.LittleEndian.Uint16(b[22:24]),
	}
	copy(a.Unknown8[:], b[14:22])
	if v == Stream30 {
		copy(a.Times[0][:], b[24:32])
		copy(a.Times[1][:], b[32:40])
		copy(a.Times[2][:], b[40:48])
	}
	return a
}

// validAttribute is the heuristic predicate the resync scan leans on: does
// this byte window look like a genuine attribute record? It never reads past
// b and allocates nothing.
//
// The filename length must be an even count of UTF-16 bytes in a plausible
// range, and the flag byte must be neither cleared nor saturated. The 30.x
// X2 field is nearly always 6; small values are tolerated since samples with
// other constants exist.
func validAttribute(v Variant, b []byte) bool {
	if len(b) < v.attrSize() {
		return false
	}
	if v == Legacy {
		return validLegacyName(b[:legacyNameSize])
	}
	nameLen := binary.LittleEndian.Uint32(b[0:4])
	if nameLen%2 != 0 || nameLen < 10 || nameLen > 200 {
		return false
	}
	flags := binary.LittleEndian.Uint32(b[4:8])
	flagByte := byte(flags)
	if v == Stream30 {
		flagByte = byte(flags >> 8)
		x2 := binary.LittleEndian.Uint16(b[12:14])
		if x2 != 6 && (x2 < 1 || x2 > 10) {
			return false
		}
	}
	return flagByte != 0x00 && flagByte != 0xff
}

// validLegacyName accepts a fixed filename field iff it is NUL-terminated
// within 260 bytes and reasonably printable ANSI up to the terminator.
func validLegacyName(b []byte) bool {
	for i, c := range b {
		if c == 0 {
			return i > 0
		}
		if c < 0x20 || c == 0x7f {
			return false
		}
	}
	return false
}
