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

// Package pereader locates and reads the overlay of a PE image: the bytes
// appended after the last section, which self-extracting installers use for
// payload storage. It is not a PE loader; only the section table and the
// certificate data directory are consulted.
package pereader

import (
	"bytes"
	"debug/pe"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrNoOverlay = errors.New("image has no overlay")

// certificate table index in the optional header data directory
const ddCertTable = 4

// Overlay is the trailing byte region of a PE file. Offset is the absolute
// file offset of Data[0].
type Overlay struct {
	Offset int64
	Data   []byte
}

// ReadFile reads a PE file and its overlay. The whole file is pulled into
// memory so the returned pe.File stays readable after this returns; section
// data is loaded lazily and would otherwise dangle on a closed descriptor.
func ReadFile(path string) (*Overlay, *pe.File, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Read(bytes.NewReader(blob), int64(len(blob)))
}

// Read locates and materializes the overlay of the PE image in r. The parsed
// PE file is returned as well so callers can mine it for version resources.
func Read(r io.ReaderAt, size int64) (*Overlay, *pe.File, error) {
	pf, err := pe.NewFile(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing PE headers: %w", err)
	}
	start, end, err := overlayBounds(pf, size)
	if err != nil {
		return nil, nil, err
	}
	data := make([]byte, end-start)
	if _, err := io.ReadFull(io.NewSectionReader(r, start, end-start), data); err != nil {
		return nil, nil, fmt.Errorf("reading overlay: %w", err)
	}
	return &Overlay{Offset: start, Data: data}, pf, nil
}

// overlayBounds computes the overlay span: from the end of the last section's
// raw data to the end of the file, excluding a trailing Authenticode
// certificate table if one is present. The certificate table's "virtual
// address" is a plain file offset, unlike every other data directory entry.
func overlayBounds(f *pe.File, fileSize int64) (start, end int64, err error) {
	if len(f.Sections) == 0 {
		return 0, 0, errors.New("image has no sections")
	}
	for _, sec := range f.Sections {
		if secEnd := int64(sec.Offset) + int64(sec.Size); secEnd > start {
			start = secEnd
		}
	}
	end = fileSize
	if certStart, certSize := certTable(f); certSize > 0 {
		off := int64(certStart)
		if off >= start && off+int64(certSize) <= fileSize {
			end = off
		}
	}
	if start <= 0 || start >= end {
		return 0, 0, ErrNoOverlay
	}
	return start, end, nil
}

func certTable(f *pe.File) (uint32, uint32) {
	switch opt := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		if opt.NumberOfRvaAndSizes > ddCertTable {
			dd := opt.DataDirectory[ddCertTable]
			return dd.VirtualAddress, dd.Size
		}
	case *pe.OptionalHeader64:
		if opt.NumberOfRvaAndSizes > ddCertTable {
			dd := opt.DataDirectory[ddCertTable]
			return dd.VirtualAddress, dd.Size
		}
	}
	return 0, 0
}
