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

package acquire

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jinr.ru/greenlab/go-capa/pkg/api"
	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/device"
	"jinr.ru/greenlab/go-capa/pkg/measure"
)

const (
	DeviceOptionName       = "device"
	PointsOptionName       = "points"
	SamplingTimeOptionName = "sampling-time"
	ChannelsOptionName     = "channels"
	SummaryOptionName      = "summary"
	RemoteOptionName       = "remote"
)

// NewCommand runs one acquisition and prints the scaled samples, one row
// per sample, one column per channel.
func NewCommand() *cobra.Command {
	var deviceName string
	var points int
	var samplingTime float64
	var channels []int
	var summary, remote bool
	cfg := config.NewDefaultConfig()
	cfg.Load()
	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Acquire measurement samples from the data port",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *device.Result
			if remote {
				r, err := api.NewApiClient(cfg).Acquire(deviceName, &api.AcquireRequest{
					Points:       points,
					SamplingTime: samplingTime,
					Channels:     channels,
				})
				if err != nil {
					return err
				}
				result = r
			} else {
				devCfg, err := cfg.GetDeviceByName(deviceName)
				if err != nil {
					return err
				}
				d, err := device.NewDevice(devCfg)
				if err != nil {
					return err
				}
				result, err = d.Acquire(points, samplingTime, channels)
				if err != nil {
					return err
				}
			}

			if summary {
				for _, s := range measure.Summarize(result) {
					cmd.Println(fmt.Sprintf("channel %d: n=%d mean=%g stddev=%g min=%g max=%g",
						s.Channel, s.Count, s.Mean, s.StdDev, s.Min, s.Max))
				}
				return nil
			}
			printRows(cmd, result)
			return nil
		},
	}
	cmd.Flags().StringVar(&deviceName, DeviceOptionName, config.DefaultDeviceName, "Device name from config")
	cmd.Flags().IntVar(&points, PointsOptionName, 1, "Number of samples to acquire per channel")
	cmd.Flags().Float64Var(&samplingTime, SamplingTimeOptionName, 0, "Sampling time in ms. 0 leaves the controller setting untouched")
	cmd.Flags().IntSliceVar(&channels, ChannelsOptionName, []int{0, 1}, "Channels to acquire")
	cmd.Flags().BoolVar(&summary, SummaryOptionName, false, "Print per-channel statistics instead of raw rows")
	cmd.Flags().BoolVar(&remote, RemoteOptionName, false, "Acquire through a running go-capa API server")
	return cmd
}

func printRows(cmd *cobra.Command, result *device.Result) {
	if len(result.Columns) == 0 {
		return
	}
	for i := 0; i < len(result.Columns[0]); i++ {
		row := make([]string, len(result.Columns))
		for j := range result.Columns {
			row[j] = fmt.Sprintf("%g", result.Columns[j][i])
		}
		cmd.Println(strings.Join(row, "\t"))
	}
}
