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

	"github.com/spf13/cobra"

	"github.com/overlaykit/ishield/internal/logging"
)

var RootCmd = &cobra.Command{
	Use:               "ishield",
	Short:             "Extract embedded payloads from InstallShield setup executables",
	PersistentPreRunE: setupLogging,
	SilenceUsage:      true,
}

var (
	argLogLevel string
	argLogFile  string
)

func init() {
	RootCmd.PersistentFlags().StringVar(&argLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	RootCmd.PersistentFlags().StringVar(&argLogFile, "log-file", "", "Write JSON logs to a file instead of pretty text to stderr")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	return logging.Setup(argLogLevel, argLogFile)
}

func Main() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
