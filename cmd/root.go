/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command; run and version attach to it in their own
// init()s.
var rootCmd = &cobra.Command{
	Use:   "gosphere",
	Short: "Spherical axisymmetric hydrodynamics solver",
	Long:  `gosphere evolves a compressible gas around a point mass on a logarithmic (r, theta) mesh using a parallel Godunov/HLLE finite-volume scheme.`,
}

// Execute runs the root command; on error it prints an ERROR:-prefixed
// diagnostic to stderr and exits 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %s\n\n", err)
		os.Exit(1)
	}
}
