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

package monitor

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/device"
	"jinr.ru/greenlab/go-capa/pkg/measure"
)

const (
	DeviceOptionName   = "device"
	IntervalOptionName = "interval"
	PointsOptionName   = "points"
	ChannelsOptionName = "channels"
	OutOptionName      = "out"
)

// NewCommand samples the device periodically and appends CSV rows of
// per-channel statistics until interrupted.
func NewCommand() *cobra.Command {
	var deviceName, out string
	var interval time.Duration
	var points int
	var channels []int
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Periodically log measurement samples to CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			devCfg, err := cfg.GetDeviceByName(deviceName)
			if err != nil {
				return err
			}
			d, err := device.NewDevice(devCfg)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.OpenFile(out, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()
			err = measure.NewMonitor(d, interval, points, channels, w).Run(ctx)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&deviceName, DeviceOptionName, config.DefaultDeviceName, "Device name from config")
	cmd.Flags().DurationVar(&interval, IntervalOptionName, time.Minute, "Sampling interval")
	cmd.Flags().IntVar(&points, PointsOptionName, 100, "Samples to average per interval")
	cmd.Flags().IntSliceVar(&channels, ChannelsOptionName, []int{0, 1}, "Channels to acquire")
	cmd.Flags().StringVar(&out, OutOptionName, "", "CSV file to append to. Defaults to stdout")
	return cmd
}
