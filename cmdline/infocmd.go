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
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var InfoCmd = &cobra.Command{
	Use:   "info <setup.exe>",
	Short: "List the payloads of an installer without extracting them",
	Args:  cobra.ExactArgs(1),
	RunE:  infoCmd,
}

func init() {
	addWalkerFlags(InfoCmd.Flags())
	RootCmd.AddCommand(InfoCmd)
}

func infoCmd(cmd *cobra.Command, args []string) error {
	report, err := extractPath(args[0], walkerOptions())
	if err != nil {
		return err
	}
	if report.Header != nil {
		fmt.Printf("signature: %s\n", report.Header.Signature)
		fmt.Printf("variant:   %s\n", report.Variant)
		fmt.Printf("declared:  %d files, type %d\n", report.Header.NumFiles, report.Header.Type)
	} else {
		fmt.Println("variant:   installscript")
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSIZE\tRECOVERED")
	for _, f := range report.Files {
		fmt.Fprintf(w, "%s\t%d\t%v\n", f.Name, len(f.Content), f.Recovered)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if report.EntriesUndecodable > 0 || report.BytesLostToResync > 0 {
		fmt.Printf("%d undecodable entries, %d bytes lost to resync\n",
			report.EntriesUndecodable, report.BytesLostToResync)
	}
	return nil
}
