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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
output: /tmp/out
workers: 3
loglevel: debug
walker:
  maxentries: 128
  recoveryscankib: 64
targets:
  - setup-a.exe
  - setup-b.exe
`), 0o644))

	conf, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/out", conf.Output)
	assert.Equal(t, 3, conf.Workers)
	assert.Equal(t, "debug", conf.LogLevel)
	assert.Equal(t, 128, conf.Walker.MaxEntries)
	assert.Equal(t, 64, conf.Walker.RecoveryScanKiB)
	assert.Equal(t, []string{"setup-a.exe", "setup-b.exe"}, conf.Targets)
	assert.Equal(t, path, conf.Path())
	assert.NoError(t, conf.CheckTargets())
}

func TestReadFileDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yml")
	require.NoError(t, os.WriteFile(path, []byte("{}\n"), 0o644))

	conf, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".", conf.Output)
	assert.Positive(t, conf.Workers)
	assert.Error(t, conf.CheckTargets())
}
