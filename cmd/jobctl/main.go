/*
Copyright 2025 The jobctl Authors

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

// jobctl deploys workload specifications onto a Kubernetes cluster.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jobmesh/jobctl/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "jobctl",
		Short: "jobctl deploys workloads to Kubernetes and tracks their completion",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Accept underscore spellings from config files and env for every flag.
	cmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	cmd.PersistentFlags().String("config", "", "path to an optional jobctl config file")
	cmd.PersistentFlags().String("kubeconfig", "", "path to the kubeconfig file (defaults to the standard lookup)")
	cmd.PersistentFlags().StringP("namespace", "n", "default", "namespace to deploy into")
	cmd.PersistentFlags().IntP("verbosity", "v", logging.INFO, "log verbosity (0=info, 1=debug, 2=trace)")
	cmd.PersistentFlags().Bool("dev-logging", false, "use the human-readable console log encoder")

	cmd.PersistentPreRunE = func(c *cobra.Command, args []string) error {
		if err := viper.BindPFlags(c.Flags()); err != nil {
			return err
		}
		viper.SetEnvPrefix("JOBCTL")
		viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
		viper.AutomaticEnv()

		if cfgFile := viper.GetString("config"); cfgFile != "" {
			viper.SetConfigFile(cfgFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("reading config file: %w", err)
			}
		}

		logging.Setup(viper.GetInt("verbosity"), viper.GetBool("dev-logging"))
		return nil
	}

	cmd.AddCommand(newDeployCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
