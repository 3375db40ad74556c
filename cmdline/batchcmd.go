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
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/overlaykit/ishield/config"
	"github.com/overlaykit/ishield/internal/logging"
	"github.com/overlaykit/ishield/lib/ishield"
)

var BatchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Extract a configured set of installers in parallel",
	RunE:  batchCmd,
}

var argConfig string

func init() {
	BatchCmd.Flags().StringVarP(&argConfig, "config", "c", "", "Configuration file")
	RootCmd.AddCommand(BatchCmd)
}

// Extractions of independent images share nothing, so batch mode simply fans
// targets out over a bounded worker pool. A failed target is logged and
// counted, never allowed to cancel its siblings.
func batchCmd(cmd *cobra.Command, args []string) error {
	if argConfig == "" {
		return fmt.Errorf("--config is required")
	}
	conf, err := config.ReadFile(argConfig)
	if err != nil {
		return err
	}
	if err := conf.CheckTargets(); err != nil {
		return err
	}
	if err := applyLogConfig(conf); err != nil {
		return err
	}
	opts := ishield.Options{
		MaxEntries:        conf.Walker.MaxEntries,
		RecoveryScanLimit: conf.Walker.RecoveryScanKiB << 10,
	}
	var failed atomic.Int64
	var group errgroup.Group
	group.SetLimit(conf.Workers)
	for _, target := range conf.Targets {
		target := target
		group.Go(func() error {
			report, err := extractPath(target, opts)
			if err == nil {
				err = writeReport(report, filepath.Join(conf.Output, targetDirName(target)))
			}
			if err != nil {
				failed.Add(1)
				log.Error().Err(err).Str("path", target).Msg("extraction failed")
			}
			return nil
		})
	}
	_ = group.Wait()
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d targets failed", n, len(conf.Targets))
	}
	return nil
}

// applyLogConfig reconfigures logging from the batch config. The root flags
// win where set; config values fill only the gaps they left.
func applyLogConfig(conf *config.Config) error {
	level, file := argLogLevel, argLogFile
	if level == "" {
		level = conf.LogLevel
	}
	if file == "" {
		file = conf.LogFile
	}
	if level == argLogLevel && file == argLogFile {
		return nil
	}
	return logging.Setup(level, file)
}

func targetDirName(target string) string {
	base := filepath.Base(target)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
