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

// Package ishield extracts the embedded payload files that self-extracting
// InstallShield installers append after the last PE section. Declared
// structure is trusted while it validates; when it does not, the walk falls
// back to byte-granularity heuristic scans to resynchronize.
package ishield

import (
	"errors"
	"io"
)

// Options tunes one extraction. The zero value is usable.
type Options struct {
	// MajorHint is the installer's major version from PE resources or an
	// MSI property, used to pick the 30.x attribute layout. Zero or
	// negative means no hint was available and the 12.x layout is assumed.
	MajorHint int

	// InstallScript selects the InstallScript overlay layout, signalled
	// out of band by the ISInternalDescription version resource.
	InstallScript bool

	// MaxEntries bounds the walk on adversarial input. Default 4096.
	MaxEntries int

	// RecoveryScanLimit caps the forward scan for zero-length entries,
	// in bytes. Default 100 KiB.
	RecoveryScanLimit int
}

// Extract walks the overlay and decodes every payload it can. The returned
// report is valid even when the walk ended early; only an unusable main
// header makes the whole image fail.
func Extract(im *OverlayImage, opts Options) (*Report, error) {
	if opts.InstallScript {
		return extractInstallScript(im, opts)
	}
	hdr, start, err := parseHeader(im, 0)
	if err != nil {
		return nil, err
	}
	variant, err := classifyVariant(hdr.Signature, opts.MajorHint)
	if err != nil {
		return nil, err
	}
	report := &Report{Variant: variant, Header: hdr}
	walker := NewWalker(im, hdr, variant, start, opts)
	for {
		entry, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		content, err := DecodePayload(entry.RawName, entry.Data)
		if err != nil {
			err = &CorruptPayloadError{Name: entry.Name, Err: err}
			report.EntriesUndecodable++
			report.note(NoteUndecodable, entry.Name, err.Error())
			continue
		}
		report.Files = append(report.Files, DecodedFile{
			Name:      entry.Name,
			Content:   content,
			Recovered: entry.Recovered,
		})
		report.EntriesDecoded++
	}
	report.Notes = append(report.Notes, walker.Notes()...)
	report.BytesLostToResync = walker.BytesLost()
	return report, nil
}
