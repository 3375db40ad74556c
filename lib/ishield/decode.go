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
	"io"

	"github.com/klauspost/compress/zlib"
)

var cipherMagic = [4]byte{0x13, 0x35, 0x86, 0x07}

const (
	cipherBlockSize = 1024
	zlibMarker      = 0x78
)

// Crypt applies the setup stream cipher to data and returns the result. The
// key is the filename's raw on-disk bytes (UTF-16LE for stream entries, ANSI
// for legacy ones) XORed with the magic constant. Within every 1024-byte
// block the byte index restarts at zero for both the magic and the key; the
// cipher is a per-block repeating pad, not one continuous stream.
//
// The transform is an involution, so the same call encrypts. An empty key
// leaves the data untouched.
func Crypt(rawName, data []byte) []byte {
	out := make([]byte, len(data))
	copy(out, data)
	CryptInPlace(rawName, out)
	return out
}

// CryptInPlace is Crypt without the copy.
func CryptInPlace(rawName, data []byte) {
	if len(rawName) == 0 {
		return
	}
	key := make([]byte, len(rawName))
	for i, c := range rawName {
		key[i] = c ^ cipherMagic[i%len(cipherMagic)]
	}
	for off := 0; off < len(data); off += cipherBlockSize {
		block := data[off:]
		if len(block) > cipherBlockSize {
			block = block[:cipherBlockSize]
		}
		for i := range block {
			block[i] ^= cipherMagic[i%len(cipherMagic)] ^ key[i%len(key)]
		}
	}
}

// DecodePayload reverses the cipher and, if the plaintext starts with a zlib
// marker byte, inflates it. A failed inflate means the entry used an encoding
// this package does not cover; the caller reports it and moves on.
func DecodePayload(rawName, data []byte) ([]byte, error) {
	plain := Crypt(rawName, data)
	if len(plain) == 0 || plain[0] != zlibMarker {
		return plain, nil
	}
	zr, err := zlib.NewReader(bytes.NewReader(plain))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	inflated, err := io.ReadAll(zr)
	if err != nil {
		return nil, err
	}
	return inflated, nil
}
