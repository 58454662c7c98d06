// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command partnerdash is the admin CLI and terminal dashboard for the
// field-services partner backend.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// fail() inside commands exits with a mapped code; anything
		// arriving here is a usage or wiring error.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailure)
	}
	if application != nil {
		application.close()
	}
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Help and completion never need the backend stack.
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		a, err := newApp()
		if err != nil {
			return err
		}
		application = a
		return nil
	}
}
