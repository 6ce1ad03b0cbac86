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

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"

	"github.com/notargets/gosphere/internal/config"
	"github.com/notargets/gosphere/internal/sim"
)

// runCmd is the "run" subcommand: `gosphere run key=value ...`.
var runCmd = &cobra.Command{
	Use:   "run [key=value ...]",
	Short: "Run the solver to completion",
	Long:  `Run the solver from a fresh atmosphere or a restart checkpoint, with parameters given as key=value tokens (num_blocks, nr, outer_radius, num_threads, tfinal, cpi, vtki, rk, heating_rate, cooling_rate, noise, restart, ...).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yamlFile, _ := cmd.Flags().GetString("file")
		tokens, err := mergeYAMLOverrides(yamlFile, args)
		if err != nil {
			return err
		}

		cfg, err := config.FromArgs(tokens)
		if err != nil {
			return err
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		sts := config.NewStatus()
		if cfg.Restart != "" {
			sts, err = config.LoadStatus(cfg.StatusPath(-1))
			if err != nil {
				return err
			}
		}

		db, err := sim.CreateDatabase(cfg)
		if err != nil {
			return err
		}

		if !cfg.TestMode {
			printConfig(cfg)
		}
		return sim.Run(cfg, sts, db)
	},
}

// mergeYAMLOverrides reads key=value pairs from an optional YAML file and
// prepends them ahead of the explicit CLI tokens, which therefore take
// precedence on conflict.
func mergeYAMLOverrides(path string, args []string) ([]string, error) {
	if path == "" {
		return args, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("run: reading %s: %w", path, err)
	}
	var items map[string]string
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("run: parsing %s: %w", path, err)
	}
	tokens := make([]string, 0, len(items)+len(args))
	for k, v := range items {
		tokens = append(tokens, k+"="+v)
	}
	return append(tokens, args...), nil
}

func printConfig(cfg config.Config) {
	fmt.Printf("\nConfig\n")
	fmt.Printf("%-16s= %v\n", "outdir", cfg.Outdir)
	fmt.Printf("%-16s= %v\n", "restart", cfg.Restart)
	fmt.Printf("%-16s= %v\n", "num_blocks", cfg.NumBlocks)
	fmt.Printf("%-16s= %v\n", "nr", cfg.Nr)
	fmt.Printf("%-16s= %v\n", "num_threads", cfg.NumThreads)
	fmt.Printf("%-16s= %v\n", "tfinal", cfg.Tfinal)
	fmt.Printf("%-16s= %v\n", "cpi", cfg.Cpi)
	fmt.Printf("%-16s= %v\n", "vtki", cfg.Vtki)
	fmt.Printf("%-16s= %v\n", "rk", cfg.Rk)
	fmt.Printf("%-16s= %v\n", "outer_radius", cfg.OuterRadius)
	fmt.Printf("%-16s= %v\n", "heating_rate", cfg.HeatingRate)
	fmt.Printf("%-16s= %v\n", "cooling_rate", cfg.CoolingRate)
	fmt.Printf("%-16s= %v\n", "noise", cfg.Noise)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringP("file", "f", "", "optional YAML file of key: value overrides, applied before CLI key=value tokens")
}
