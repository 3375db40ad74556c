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
	"fmt"
	"strconv"
)

// InstallScript overlays carry no setup stream header. The layout is a u32
// entry count followed by records of four NUL-terminated UTF-16LE strings
// (filename, two unused, payload size in decimal) and the payload bytes.
// The format is self-describing, so the walk is a single pass with no
// resynchronization; truncation ends it early keeping decoded entries.
func extractInstallScript(im *OverlayImage, opts Options) (*Report, error) {
	report := &Report{InstallScript: true}
	if im.Len() < 4 {
		return nil, &TruncatedError{Site: "header", Offset: im.Offset(), Need: 4}
	}
	count := int(binary.LittleEndian.Uint32(im.view(0, 4)))
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	if count > maxEntries {
		report.note(NoteEntryLimit, "", fmt.Sprintf("declared %d entries, capped at %d", count, maxEntries))
		count = maxEntries
	}
	pos := 4
	for i := 0; i < count; i++ {
		name, next, ok := readUTF16StringZ(im, pos)
		if !ok {
			report.note(NoteTruncated, "", fmt.Sprintf("entry %d name at overlay offset %d", i, pos))
			break
		}
		pos = next
		var sizeText string
		for j := 0; j < 3 && ok; j++ {
			sizeText, next, ok = readUTF16StringZ(im, pos)
			if ok {
				pos = next
			}
		}
		if !ok {
			report.note(NoteTruncated, name, fmt.Sprintf("entry %d fields at overlay offset %d", i, pos))
			break
		}
		size, err := strconv.Atoi(sizeText)
		if err != nil || size < 0 || pos+size > im.Len() {
			report.note(NoteTruncated, name, fmt.Sprintf("entry %d payload size %q at overlay offset %d", i, sizeText, pos))
			break
		}
		report.Files = append(report.Files, DecodedFile{
			Name:    name,
			Content: im.view(pos, pos+size),
		})
		report.EntriesDecoded++
		pos += size
	}
	return report, nil
}

// readUTF16StringZ reads a NUL-terminated UTF-16LE string starting at pos
// and returns it with the position just past the terminator.
func readUTF16StringZ(im *OverlayImage, pos int) (s string, next int, ok bool) {
	end := pos
	for {
		if end+2 > im.Len() {
			return "", 0, false
		}
		if binary.LittleEndian.Uint16(im.view(end, end+2)) == 0 {
			break
		}
		end += 2
	}
	return decodeUTF16Name(im.view(pos, end)), end + 2, true
}
