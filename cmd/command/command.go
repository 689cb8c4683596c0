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

package command

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

// NewCommand sends one raw command over the control port and prints the
// parameter text of the reply.
func NewCommand() *cobra.Command {
	var deviceName string
	var remote bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "command <text>",
		Short: "Send a raw command to the controller. E.g. go-capa command VER",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				response, err := api.NewApiClient(cfg).Command(deviceName, args[0])
				if err != nil {
					return err
				}
				cmd.Println(response)
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
			response, err := d.Command(args[0])
			if err != nil {
				return err
			}
			cmd.Println(response)
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceName, DeviceOptionName, config.DefaultDeviceName, "Device name from config")
	cmd.Flags().BoolVar(&remote, RemoteOptionName, false, "Send through a running go-capa API server")
	return cmd
}
