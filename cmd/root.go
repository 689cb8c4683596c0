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

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-capa/cmd/acquire"
	"jinr.ru/greenlab/go-capa/cmd/command"
	"jinr.ru/greenlab/go-capa/cmd/completion"
	configcmd "jinr.ru/greenlab/go-capa/cmd/config"
	"jinr.ru/greenlab/go-capa/cmd/monitor"
	"jinr.ru/greenlab/go-capa/cmd/serve"
	"jinr.ru/greenlab/go-capa/cmd/status"
	pkgconfig "jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/log"
)

const (
	LogLevelOptionName = "log-level"
)

func NewRootCommand(out io.Writer) *cobra.Command {
	var logLevel string
	cfg := pkgconfig.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "go-capa",
		Short: "Tool to work with capaNCDT DT6220 controllers",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return log.Init(cmd.ErrOrStderr(), cfg.LogLevel)
		},
	}
	cmd.SetOut(out)
	cmd.AddCommand(configcmd.NewCommand())
	cmd.AddCommand(command.NewCommand())
	cmd.AddCommand(status.NewCommand())
	cmd.AddCommand(acquire.NewCommand())
	cmd.AddCommand(monitor.NewCommand())
	cmd.AddCommand(serve.NewCommand())
	cmd.AddCommand(completion.NewCommand())
	cmd.PersistentFlags().StringVar(&logLevel, LogLevelOptionName, "", fmt.Sprintf("Log level. %s", log.HelpLevels))
	return cmd
}
