/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package config

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"

	"jinr.ru/greenlab/go-capa/pkg/config"
)

const (
	OverwriteOptionName = "overwrite"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage go-capa config",
	}
	cmd.AddCommand(NewSaveCommand())
	cmd.AddCommand(NewShowCommand())
	return cmd
}

// NewSaveCommand writes the effective config to its default location.
func NewSaveCommand() *cobra.Command {
	var overwrite bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Persist the effective config to " + config.DefaultConfigPath(),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cfg.Persist(overwrite)
		},
	}
	cmd.Flags().BoolVar(&overwrite, OverwriteOptionName, false, "Overwrite an existing config file")
	return cmd
}

// NewShowCommand prints the effective config.
func NewShowCommand() *cobra.Command {
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective config",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			cmd.Println(string(out))
			return nil
		},
	}
	return cmd
}
