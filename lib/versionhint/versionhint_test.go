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

package versionhint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMajor(t *testing.T) {
	tests := []struct {
		in    string
		major int
		ok    bool
	}{
		{"30.0.157", 30, true},
		{"12.0.0.59474", 12, true},
		{"7", 7, true},
		{" 30.0.157 ", 30, true},
		{"", 0, false},
		{"abc", 0, false},
		{"-1.2", 0, false},
		{"v30.0", 0, false},
	}
	for _, tt := range tests {
		major, ok := ParseMajor(tt.in)
		assert.Equal(t, tt.ok, ok, "%q", tt.in)
		assert.Equal(t, tt.major, major, "%q", tt.in)
	}
}

func TestInfoMajor(t *testing.T) {
	major, ok := Info{ProductVersion: "30.0.157"}.Major()
	assert.True(t, ok)
	assert.Equal(t, 30, major)

	// FileVersion is the fallback
	major, ok = Info{FileVersion: "12.1.0"}.Major()
	assert.True(t, ok)
	assert.Equal(t, 12, major)

	_, ok = Info{}.Major()
	assert.False(t, ok)
}

func TestInstallScript(t *testing.T) {
	assert.True(t, Info{InternalDescription: "InstallScript Setup Launcher"}.InstallScript())
	assert.False(t, Info{InternalDescription: "Setup Launcher Unicode"}.InstallScript())
	assert.False(t, Info{}.InstallScript())
}

func TestUTF16Value(t *testing.T) {
	var block []byte
	block = append(block, utf16Bytes("VS_VERSION_INFO")...)
	block = append(block, 0, 0)
	block = append(block, utf16Bytes("ProductVersion")...)
	block = append(block, 0, 0, 0, 0) // terminator plus alignment padding
	block = append(block, utf16Bytes("30.0.157")...)
	block = append(block, 0, 0)
	block = append(block, utf16Bytes("ISInternalDescription")...)
	block = append(block, 0, 0)
	block = append(block, utf16Bytes("InstallScript Setup Launcher")...)
	block = append(block, 0, 0)

	assert.Equal(t, "30.0.157", utf16Value(block, "ProductVersion"))
	assert.Equal(t, "InstallScript Setup Launcher", utf16Value(block, "ISInternalDescription"))
	assert.Equal(t, "", utf16Value(block, "FileVersion"))
}
