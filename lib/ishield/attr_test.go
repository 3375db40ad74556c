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

import (
	"encoding/binary"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeAttr(nameLen, flags uint32, x2 uint16, size int) []byte {
	b := make([]byte, size)
	binary.LittleEndian.PutUint32(b[0:4], nameLen)
	binary.LittleEndian.PutUint32(b[4:8], flags)
	binary.LittleEndian.PutUint16(b[12:14], x2)
	return b
}

func TestValidAttribute(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		window  []byte
		want    bool
	}{
		{"stream12 ok", Stream12, makeAttr(10, 0x02, 0, attrSize12), true},
		{"stream12 odd name length", Stream12, makeAttr(11, 0x02, 0, attrSize12), false},
		{"stream12 name too short", Stream12, makeAttr(8, 0x02, 0, attrSize12), false},
		{"stream12 name too long", Stream12, makeAttr(202, 0x02, 0, attrSize12), false},
		{"stream12 flag byte zero", Stream12, makeAttr(10, 0x100, 0, attrSize12), false},
		{"stream12 flag byte saturated", Stream12, makeAttr(10, 0xff, 0, attrSize12), false},
		{"stream12 short window", Stream12, makeAttr(10, 0x02, 0, attrSize12)[:20], false},
		{"stream30 ok x2=6", Stream30, makeAttr(10, 0x0200, 6, attrSize30), true},
		{"stream30 x2 in tolerated range", Stream30, makeAttr(10, 0x0200, 3, attrSize30), true},
		{"stream30 x2 zero", Stream30, makeAttr(10, 0x0200, 0, attrSize30), false},
		{"stream30 x2 out of range", Stream30, makeAttr(10, 0x0200, 11, attrSize30), false},
		{"stream30 uses upper flag byte", Stream30, makeAttr(10, 0x02, 6, attrSize30), false},
		{"stream30 window only 24 bytes", Stream30, makeAttr(10, 0x0200, 6, attrSize12), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validAttribute(tt.variant, tt.window))
		})
	}
}

// Any window the 30.x validator accepts must have an even name length in
// [10,200] and a flag byte that is neither 0x00 nor 0xff, no matter what
// bytes it is given.
func TestValidAttributeSoundness(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	window := make([]byte, attrSize30)
	accepted := 0
	for i := 0; i < 200000; i++ {
		rng.Read(window)
		if !validAttribute(Stream30, window) {
			continue
		}
		accepted++
		nameLen := binary.LittleEndian.Uint32(window[0:4])
		require.Zero(t, nameLen%2)
		require.GreaterOrEqual(t, nameLen, uint32(10))
		require.LessOrEqual(t, nameLen, uint32(200))
		flagByte := byte(binary.LittleEndian.Uint32(window[4:8]) >> 8)
		require.NotEqual(t, byte(0x00), flagByte)
		require.NotEqual(t, byte(0xff), flagByte)
	}
	// random windows should almost never look like records
	assert.Less(t, accepted, 100)
}

func TestValidLegacyName(t *testing.T) {
	ok := make([]byte, legacyNameSize)
	copy(ok, "setup.ini")
	assert.True(t, validLegacyName(ok))

	assert.False(t, validLegacyName(make([]byte, legacyNameSize)), "empty name")

	noTerm := make([]byte, legacyNameSize)
	for i := range noTerm {
		noTerm[i] = 'a'
	}
	assert.False(t, validLegacyName(noTerm), "missing terminator")

	control := make([]byte, legacyNameSize)
	copy(control, "bad\x01name")
	assert.False(t, validLegacyName(control), "control character")
}

func TestDecodeAttribute(t *testing.T) {
	b := make([]byte, attrSize30)
	binary.LittleEndian.PutUint32(b[0:4], 12)
	binary.LittleEndian.PutUint32(b[4:8], 0x0204)
	binary.LittleEndian.PutUint32(b[8:12], 9999)
	binary.LittleEndian.PutUint16(b[12:14], 6)
	copy(b[14:22], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	binary.LittleEndian.PutUint16(b[22:24], 1)
	copy(b[24:32], []byte{9, 9, 9, 9, 9, 9, 9, 9})

	a := decodeAttribute(Stream30, b)
	assert.Equal(t, uint32(12), a.NameLen)
	assert.Equal(t, uint32(0x0204), a.Flags)
	assert.Equal(t, uint32(9999), a.FileLen)
	assert.Equal(t, uint16(6), a.X2)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, a.Unknown8)
	assert.Equal(t, uint16(1), a.Launcher)
	assert.Equal(t, [8]byte{9, 9, 9, 9, 9, 9, 9, 9}, a.Times[0])

	// 12.x parse of the same prefix leaves timestamps zero
	a12 := decodeAttribute(Stream12, b[:attrSize12])
	assert.Equal(t, uint32(12), a12.NameLen)
	assert.Equal(t, [8]byte{}, a12.Times[0])
}
