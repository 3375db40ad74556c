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

// Package versionhint pulls a best-effort product version out of a PE
// image's version resources. Everything here is advisory: installers ship
// with missing, malformed, or lying version blocks, so absence of a hint is
// never an error and consumers must fall back gracefully.
package versionhint

import (
	"bytes"
	"debug/pe"
	"strconv"
	"strings"
)

// Info holds the strings recovered from a VS_VERSION_INFO block.
type Info struct {
	ProductVersion      string
	FileVersion         string
	InternalDescription string
}

// Major returns the major component of the best available version string.
func (i Info) Major() (int, bool) {
	if major, ok := ParseMajor(i.ProductVersion); ok {
		return major, true
	}
	return ParseMajor(i.FileVersion)
}

// InstallScript reports whether the version block marks the installer as an
// InstallScript package, which uses a different overlay layout entirely.
func (i Info) InstallScript() bool {
	return strings.HasPrefix(i.InternalDescription, "InstallScript")
}

// ParseMajor extracts the leading integer from a dotted version string such
// as "30.0.157".
func ParseMajor(version string) (int, bool) {
	version = strings.TrimSpace(version)
	if version == "" {
		return 0, false
	}
	head, _, _ := strings.Cut(version, ".")
	major, err := strconv.Atoi(head)
	if err != nil || major < 0 {
		return 0, false
	}
	return major, true
}

var versionInfoSig = utf16Bytes("VS_VERSION_INFO")

// FromPE scans the resource section for a VS_VERSION_INFO block and picks
// out the fields of interest. The resource directory tree is not walked;
// the UTF-16 key/value pairs are located by signature, which holds up better
// against the slightly malformed resources real installers carry.
func FromPE(f *pe.File) Info {
	sec := f.Section(".rsrc")
	if sec == nil {
		return Info{}
	}
	data, err := sec.Data()
	if err != nil {
		return Info{}
	}
	idx := bytes.Index(data, versionInfoSig)
	if idx < 0 {
		return Info{}
	}
	block := data[idx:]
	return Info{
		ProductVersion:      utf16Value(block, "ProductVersion"),
		FileVersion:         utf16Value(block, "FileVersion"),
		InternalDescription: utf16Value(block, "ISInternalDescription"),
	}
}

// utf16Value finds a UTF-16 key in block and returns the string value that
// follows it, skipping the terminator and alignment padding.
func utf16Value(block []byte, key string) string {
	idx := bytes.Index(block, utf16Bytes(key))
	if idx < 0 {
		return ""
	}
	pos := idx + 2*len(key)
	for pos+1 < len(block) && block[pos] == 0 && block[pos+1] == 0 {
		pos += 2
	}
	var runes []rune
	for pos+1 < len(block) {
		r := rune(block[pos]) | rune(block[pos+1])<<8
		if r == 0 {
			break
		}
		runes = append(runes, r)
		pos += 2
	}
	return string(runes)
}

func utf16Bytes(s string) []byte {
	b := make([]byte, 2*len(s))
	for i := 0; i < len(s); i++ {
		b[2*i] = s[i]
	}
	return b
}
