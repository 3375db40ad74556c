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

package cmdline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/overlaykit/ishield/lib/ishield"
	"github.com/overlaykit/ishield/lib/pereader"
	"github.com/overlaykit/ishield/lib/versionhint"
)

var ExtractCmd = &cobra.Command{
	Use:   "extract <setup.exe>",
	Short: "Extract payload files from one installer",
	Args:  cobra.ExactArgs(1),
	RunE:  extractCmd,
}

var (
	argOutput      string
	argVersionHint string
	argMaxEntries  int
	argScanKiB     int
)

func init() {
	ExtractCmd.Flags().StringVarP(&argOutput, "output", "o", ".", "Directory to write extracted files to")
	addWalkerFlags(ExtractCmd.Flags())
	RootCmd.AddCommand(ExtractCmd)
}

// addWalkerFlags registers the flags shared by every command that runs the
// entry walk.
func addWalkerFlags(fs *pflag.FlagSet) {
	fs.StringVar(&argVersionHint, "version-hint", "", "Override the product version detected from PE resources, e.g. 30.0.157")
	fs.IntVar(&argMaxEntries, "max-entries", 0, "Safety bound on entries per image")
	fs.IntVar(&argScanKiB, "scan-limit", 0, "Recovery scan cap for zero-length entries, in KiB")
}

func extractCmd(cmd *cobra.Command, args []string) error {
	report, err := extractPath(args[0], walkerOptions())
	if err != nil {
		return err
	}
	return writeReport(report, argOutput)
}

func walkerOptions() ishield.Options {
	return ishield.Options{
		MaxEntries:        argMaxEntries,
		RecoveryScanLimit: argScanKiB << 10,
	}
}

// extractPath runs the full pipeline for one installer: overlay location,
// version hint, then the entry walk.
func extractPath(path string, opts ishield.Options) (*ishield.Report, error) {
	overlay, pf, err := pereader.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	hint := versionhint.FromPE(pf)
	if argVersionHint != "" {
		hint.ProductVersion = argVersionHint
		hint.FileVersion = ""
	}
	if major, ok := hint.Major(); ok {
		opts.MajorHint = major
		log.Debug().Str("path", path).Int("major", major).Msg("version hint")
	}
	opts.InstallScript = hint.InstallScript()

	im := ishield.NewOverlayImage(overlay.Data, overlay.Offset)
	report, err := ishield.Extract(im, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ev := log.Info().
		Str("path", path).
		Int("decoded", report.EntriesDecoded).
		Int("undecodable", report.EntriesUndecodable).
		Int("bytesLost", report.BytesLostToResync)
	if report.Header != nil {
		ev = ev.Stringer("variant", report.Variant).
			Uint16("declared", report.Header.NumFiles)
	}
	ev.Msg("extracted")
	for _, note := range report.Notes {
		log.Warn().
			Str("path", path).
			Stringer("kind", note.Kind).
			Str("entry", note.Name).
			Msg(note.Detail)
	}
	return report, nil
}

func writeReport(report *ishield.Report, outDir string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	for _, f := range report.Files {
		name := sanitizeName(f.Name)
		if name == "" {
			log.Warn().Msg("skipping entry with empty filename")
			continue
		}
		dest := filepath.Join(outDir, name)
		if err := os.WriteFile(dest, f.Content, 0o644); err != nil {
			return err
		}
		log.Debug().Str("file", dest).Int("size", len(f.Content)).Bool("recovered", f.Recovered).Msg("wrote")
	}
	return nil
}

// sanitizeName flattens an entry name to a bare filename. Installer entries
// are plain names in practice, but nothing stops a hostile stream from
// embedding path separators.
func sanitizeName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return ""
	}
	return name
}
