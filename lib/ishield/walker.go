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
	"io"

	"golang.org/x/text/encoding/unicode"
)

const (
	defaultMaxEntries        = 4096
	defaultRecoveryScanLimit = 100 << 10
)

// Entry is one logical file located in the overlay: its decoded name, the
// raw name bytes used as cipher key material, and a read-only view of the
// payload span. Start and End are offsets within the overlay.
type Entry struct {
	Name    string
	RawName []byte
	Attr    *Attribute
	Flags   uint32
	Data    []byte

	Start, End int
	Recovered  bool
}

type walkState int

const (
	stateEntry walkState = iota
	stateResync
	stateDone
)

// Walker produces entries one at a time by structural decode where the
// declared layout validates and byte-stepped resynchronization where it does
// not. The cursor strictly increases on every iteration, so the walk
// terminates on any input. The declared file count is treated as a hint: the
// walk keeps going past it only while clean records keep appearing, and
// stops short of it without error when no further valid record exists.
type Walker struct {
	im      *OverlayImage
	hdr     *Header
	variant Variant

	maxEntries int
	scanLimit  int

	cursor   int
	state    walkState
	emitted  int
	lost     int
	resynced bool
	notes    []Note
}

// NewWalker positions a walker at the first entry, immediately after the
// main header. Zero option fields get safe defaults.
func NewWalker(im *OverlayImage, hdr *Header, variant Variant, start int, opts Options) *Walker {
	maxEntries := opts.MaxEntries
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	scanLimit := opts.RecoveryScanLimit
	if scanLimit <= 0 {
		scanLimit = defaultRecoveryScanLimit
	}
	return &Walker{
		im:         im,
		hdr:        hdr,
		variant:    variant,
		maxEntries: maxEntries,
		scanLimit:  scanLimit,
		cursor:     start,
	}
}

// Next returns the next entry, or io.EOF when the walk is over. Anomalies
// that do not end the walk are accumulated as notes rather than errors.
func (w *Walker) Next() (*Entry, error) {
	for {
		switch w.state {
		case stateDone:
			return nil, io.EOF

		case stateEntry:
			if w.emitted >= w.maxEntries {
				w.notes = append(w.notes, Note{Kind: NoteEntryLimit,
					Detail: fmt.Sprintf("stopped after %d entries", w.emitted)})
				w.state = stateDone
				continue
			}
			if w.cursor >= w.im.Len() {
				w.state = stateDone
				continue
			}
			e, next, ok, truncated := w.tryDecode(w.cursor)
			if ok {
				e.Recovered = e.Recovered || w.resynced
				w.resynced = false
				w.cursor = next
				w.emitted++
				return e, nil
			}
			if truncated {
				w.notes = append(w.notes, Note{Kind: NoteTruncated,
					Detail: fmt.Sprintf("record at overlay offset %d runs past the end", w.cursor)})
				w.state = stateDone
				continue
			}
			if w.emitted >= int(w.hdr.NumFiles) {
				// count hint satisfied and nothing valid follows
				w.state = stateDone
				continue
			}
			w.state = stateResync

		case stateResync:
			start := w.cursor
			pos := start + 1
			for pos < w.im.Len() && !w.validAt(pos) {
				pos++
			}
			if pos >= w.im.Len() {
				w.lost += w.im.Len() - start
				w.notes = append(w.notes, Note{Kind: NoteResyncExhausted,
					Detail: fmt.Sprintf("no valid record in %d bytes from overlay offset %d", w.im.Len()-start, start)})
				w.state = stateDone
				continue
			}
			w.lost += pos - start
			w.notes = append(w.notes, Note{Kind: NoteResynced,
				Detail: fmt.Sprintf("skipped %d bytes at overlay offset %d", pos-start, start)})
			w.cursor = pos
			w.resynced = true
			w.state = stateEntry
		}
	}
}

// BytesLost reports how many bytes were skipped by resynchronization.
func (w *Walker) BytesLost() int {
	return w.lost
}

// Notes returns the anomalies recorded so far.
func (w *Walker) Notes() []Note {
	return w.notes
}

// dupSkip is the size of the duplicate attribute record that type-4 streams
// place in front of every real 30.x record.
func (w *Walker) dupSkip() int {
	if w.variant == Stream30 && w.hdr.Type == 4 {
		return attrSize30
	}
	return 0
}

// validAt reports whether a structural decode could start at pos. It is the
// predicate the resync scan probes with, so it must accept exactly the
// positions tryDecode would.
func (w *Walker) validAt(pos int) bool {
	if pos >= w.im.Len() {
		return false
	}
	window := w.im.view(pos, w.im.Len())
	if w.variant == Legacy {
		return len(window) >= legacyRecordSize && validLegacyName(window[:legacyNameSize])
	}
	if !validAttribute(w.variant, window) {
		return false
	}
	if skip := w.dupSkip(); skip > 0 {
		if pos+skip >= w.im.Len() {
			return false
		}
		return validAttribute(w.variant, w.im.view(pos+skip, w.im.Len()))
	}
	return true
}

// tryDecode attempts a structural decode at pos. ok means an entry was
// produced and next is the first byte past its span. truncated means the
// record validated but its name or payload extends past the overlay, which
// ends the walk while keeping prior entries.
func (w *Walker) tryDecode(pos int) (e *Entry, next int, ok, truncated bool) {
	if w.variant == Legacy {
		return w.tryDecodeLegacy(pos)
	}
	if !w.validAt(pos) {
		return nil, 0, false, false
	}
	as := w.variant.attrSize()
	base := pos + w.dupSkip()
	attr := decodeAttribute(w.variant, w.im.view(base, base+as))
	nameStart := base + as
	nameEnd := nameStart + int(attr.NameLen)
	if nameEnd > w.im.Len() {
		return nil, 0, false, true
	}
	rawName := w.im.view(nameStart, nameEnd)
	name := decodeUTF16Name(rawName)

	dataStart := nameEnd
	if attr.FileLen == 0 {
		// known 30.x pathology: scan forward until the next record
		// validates and claim everything before it as content
		end := w.recoveryScan(dataStart)
		return &Entry{
			Name:      name,
			RawName:   rawName,
			Attr:      &attr,
			Flags:     attr.Flags,
			Data:      w.im.view(dataStart, end),
			Start:     pos,
			End:       end,
			Recovered: true,
		}, end, true, false
	}
	dataEnd := dataStart + int(attr.FileLen)
	if dataEnd > w.im.Len() {
		return nil, 0, false, true
	}
	return &Entry{
		Name:    name,
		RawName: rawName,
		Attr:    &attr,
		Flags:   attr.Flags,
		Data:    w.im.view(dataStart, dataEnd),
		Start:   pos,
		End:     dataEnd,
	}, dataEnd, true, false
}

func (w *Walker) tryDecodeLegacy(pos int) (e *Entry, next int, ok, truncated bool) {
	if w.im.Len()-pos < legacyRecordSize {
		return nil, 0, false, w.emitted < int(w.hdr.NumFiles)
	}
	rec := w.im.view(pos, pos+legacyRecordSize)
	if !validLegacyName(rec[:legacyNameSize]) {
		return nil, 0, false, false
	}
	nameLen := 0
	for rec[nameLen] != 0 {
		nameLen++
	}
	rawName := rec[:nameLen:nameLen]
	flags := binary.LittleEndian.Uint32(rec[legacyNameSize : legacyNameSize+4])
	fileLen := binary.LittleEndian.Uint32(rec[legacyNameSize+8 : legacyNameSize+12])
	dataStart := pos + legacyRecordSize
	dataEnd := dataStart + int(fileLen)
	if dataEnd > w.im.Len() {
		return nil, 0, false, true
	}
	return &Entry{
		Name:    string(rawName),
		RawName: rawName,
		Flags:   flags,
		Data:    w.im.view(dataStart, dataEnd),
		Start:   pos,
		End:     dataEnd,
	}, dataEnd, true, false
}

// recoveryScan finds the end of a zero-length entry's content: the first
// offset at or after start where another record validates, capped at the
// configured scan limit and the end of the overlay.
func (w *Walker) recoveryScan(start int) int {
	limit := start + w.scanLimit
	if limit > w.im.Len() {
		limit = w.im.Len()
	}
	for pos := start; pos < limit; pos++ {
		if w.validAt(pos) {
			return pos
		}
	}
	return limit
}

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// decodeUTF16Name decodes a UTF-16LE filename field, dropping any trailing
// NUL padding. Undecodable input falls back to an empty name; the raw bytes
// are still carried for key material.
func decodeUTF16Name(raw []byte) string {
	decoded, err := utf16LE.NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	s := string(decoded)
	for len(s) > 0 && s[len(s)-1] == 0 {
		s = s[:len(s)-1]
	}
	return s
}
