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

// DecodedFile is one recovered payload. Recovered is set when the entry was
// located by heuristic resynchronization or a zero-length recovery scan
// rather than a clean structural decode.
type DecodedFile struct {
	Name      string
	Content   []byte
	Recovered bool
}

type NoteKind int

const (
	// NoteResynced: bytes were skipped to find the next valid record.
	NoteResynced NoteKind = iota
	// NoteTruncated: a record or its payload ran past the end of the
	// overlay and the walk stopped early.
	NoteTruncated
	// NoteUndecodable: an entry's payload failed to decrypt or inflate.
	NoteUndecodable
	// NoteResyncExhausted: the resync scan hit the end of the overlay
	// without finding another valid record.
	NoteResyncExhausted
	// NoteEntryLimit: the safety bound on entry count was reached.
	NoteEntryLimit
)

func (k NoteKind) String() string {
	switch k {
	case NoteResynced:
		return "resynced"
	case NoteTruncated:
		return "truncated"
	case NoteUndecodable:
		return "undecodable"
	case NoteResyncExhausted:
		return "resync-exhausted"
	case NoteEntryLimit:
		return "entry-limit"
	}
	return "unknown"
}

// Note records one anomaly encountered during the walk. Name is empty when
// the anomaly is not attributable to a specific entry.
type Note struct {
	Kind   NoteKind
	Name   string
	Detail string
}

// Report is the finished result of one extraction: files in overlay order
// plus everything that went wrong along the way. Anomalies are surfaced here
// rather than silently dropped so callers can tell a full recovery from a
// partial one.
type Report struct {
	Variant Variant
	Header  *Header
	// InstallScript is set when the overlay used the InstallScript layout,
	// which has no setup stream header or variant.
	InstallScript bool

	Files []DecodedFile
	Notes []Note

	EntriesDecoded     int
	BytesLostToResync  int
	EntriesUndecodable int
}

func (r *Report) note(kind NoteKind, name, detail string) {
	r.Notes = append(r.Notes, Note{Kind: kind, Name: name, Detail: detail})
}
