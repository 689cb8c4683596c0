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

package status

import (
	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-capa/pkg/api"
	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/device"
)

const (
	DeviceOptionName = "device"
	RemoteOptionName = "remote"
)

// NewCommand reads the controller status, prints it and reports every
// parameter that changed since the last stored snapshot.
func NewCommand() *cobra.Command {
	var deviceName string
	var remote bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the measurement parameters of the controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				resp, err := api.NewApiClient(cfg).Status(deviceName)
				if err != nil {
					return err
				}
				cmd.Println(resp.Status.String())
				return nil
			}

			devCfg, err := cfg.GetDeviceByName(deviceName)
			if err != nil {
				return err
			}
			d, err := device.NewDevice(devCfg)
			if err != nil {
				return err
			}
			state, err := device.NewStatusState(cfg)
			if err != nil {
				return err
			}
			defer state.Close()

			prev, err := state.GetStatus(d.Name)
			if err != nil {
				return err
			}
			status, _, err := d.CheckStatus(prev)
			if err != nil {
				return err
			}
			if err := state.SetStatus(d.Name, status); err != nil {
				return err
			}
			cmd.Println(status.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceName, DeviceOptionName, config.DefaultDeviceName, "Device name from config")
	cmd.Flags().BoolVar(&remote, RemoteOptionName, false, "Query through a running go-capa API server")
	return cmd
}
