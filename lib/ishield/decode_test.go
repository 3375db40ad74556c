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
	"bytes"
	"fmt"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// The cipher must round-trip across block boundaries: the byte index resets
// at the start of every 1024-byte block, so sizes straddling the boundary
// are the interesting ones.
func TestCryptRoundTrip(t *testing.T) {
	key := []byte("a\x00.\x00t\x00x\x00t\x00") // UTF-16LE "a.txt"
	rng := rand.New(rand.NewSource(2))
	for _, size := range []int{0, 1, 1023, 1024, 1025, 2048, 2049, 5000} {
		t.Run(fmt.Sprint(size), func(t *testing.T) {
			plain := make([]byte, size)
			rng.Read(plain)
			enc := Crypt(key, plain)
			if size > 0 {
				assert.NotEqual(t, plain, enc)
			}
			assert.Equal(t, plain, Crypt(key, enc))
		})
	}
}

// Equal plaintext bytes at the same block-relative index must encrypt
// identically; the pad restarts per block rather than running on.
func TestCryptBlockReset(t *testing.T) {
	key := []byte("s\x00e\x00t\x00u\x00p\x00")
	plain := make([]byte, 3*cipherBlockSize)
	enc := Crypt(key, plain)
	assert.Equal(t, enc[:cipherBlockSize], enc[cipherBlockSize:2*cipherBlockSize])
	assert.Equal(t, enc[:cipherBlockSize], enc[2*cipherBlockSize:])
}

func TestCryptEmptyKey(t *testing.T) {
	plain := []byte("unkeyed entries pass through untouched")
	assert.Equal(t, plain, Crypt(nil, plain))
}

func TestDecodePayloadPlain(t *testing.T) {
	key := []byte("a\x00.\x00t\x00x\x00t\x00")
	plain := []byte("[Startup]\r\nProduct=Example\r\n")
	got, err := DecodePayload(key, Crypt(key, plain))
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestDecodePayloadCompressed(t *testing.T) {
	key := []byte("b\x00.\x00t\x00x\x00t\x00")
	plain := bytes.Repeat([]byte("compressible "), 200)
	enc := Crypt(key, deflate(t, plain))
	got, err := DecodePayload(key, enc)
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestDecodePayloadCorrupt(t *testing.T) {
	key := []byte("c\x00.\x00b\x00i\x00n\x00")
	// looks like zlib after decryption but the stream is garbage
	bogus := []byte{zlibMarker, 0x9c, 0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	_, err := DecodePayload(key, Crypt(key, bogus))
	assert.Error(t, err)
}
