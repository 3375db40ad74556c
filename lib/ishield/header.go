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
	"encoding/binary"
)

const headerSize = 46

// Raw main header, 46 bytes little-endian at the start of the overlay.
type rawHeader struct {
	Signature  [13]byte
	Terminator byte
	NumFiles   uint16
	Type       uint32
	Reserved1  [8]byte
	Reserved2  [2]byte
	Reserved3  [16]byte
}

// Header is the parsed main header. Reserved ranges are carried verbatim so
// undocumented installer revisions survive a round trip through analysis.
type Header struct {
	Signature  string
	Terminator byte
	NumFiles   uint16
	Type       uint32
	Reserved1  [8]byte
	Reserved2  [2]byte
	Reserved3  [16]byte
}

// parseHeader reads the main header at pos and returns it along with the
// cursor position of the first entry. A stray terminator byte is tolerated;
// an unknown signature is not.
func parseHeader(im *OverlayImage, pos int) (*Header, int, error) {
	pos = skipDebugInfo(im, pos)
	if im.Len()-pos < headerSize {
		return nil, 0, &TruncatedError{Site: "header", Offset: im.Offset() + int64(pos), Need: headerSize}
	}
	var raw rawHeader
	if err := binary.Read(bytes.NewReader(im.view(pos, pos+headerSize)), binary.LittleEndian, &raw); err != nil {
		return nil, 0, err
	}
	sig := string(bytes.TrimRight(raw.Signature[:], "\x00"))
	if sig != sigLegacy && sig != sigStream {
		return nil, 0, ErrUnsupportedFormat
	}
	hdr := &Header{
		Signature:  sig,
		Terminator: raw.Terminator,
		NumFiles:   raw.NumFiles,
		Type:       raw.Type,
		Reserved1:  raw.Reserved1,
		Reserved2:  raw.Reserved2,
		Reserved3:  raw.Reserved3,
	}
	return hdr, pos + headerSize, nil
}

// skipDebugInfo steps over an optional PDB 2.0 debug blob that some linkers
// leave between the last section and the setup stream: "NB10", 12 bytes of
// fields, then a NUL-terminated source path.
func skipDebugInfo(im *OverlayImage, pos int) int {
	const nb10Fixed = 4 + 12
	if im.Len()-pos < nb10Fixed || !bytes.Equal(im.view(pos, pos+4), []byte("NB10")) {
		return pos
	}
	p := pos + nb10Fixed
	for p < im.Len() && im.view(p, p+1)[0] != 0 {
		p++
	}
	if p >= im.Len() {
		// ran off the end looking for the path terminator; leave the
		// cursor alone and let header parsing report the mismatch
		return pos
	}
	return p + 1
}
