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

package measure

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"jinr.ru/greenlab/go-capa/pkg/data"
	"jinr.ru/greenlab/go-capa/pkg/device"
	"jinr.ru/greenlab/go-capa/pkg/log"
)

// Monitor samples a device on a fixed schedule and appends one CSV row of
// per-channel means per tick. A failed acquisition is logged and skipped,
// the schedule keeps running until the context is cancelled.
type Monitor struct {
	Device   *device.Device
	Interval time.Duration
	Points   int
	Channels []int
	writer   *csv.Writer
}

func NewMonitor(dev *device.Device, interval time.Duration, points int, channels []int, out io.Writer) *Monitor {
	return &Monitor{
		Device:   dev,
		Interval: interval,
		Points:   points,
		// Acquisitions normalize the channel list; the header columns must
		// be labelled from the same list or they drift from the rows.
		Channels: data.NormalizeChannels(channels),
		writer:   csv.NewWriter(out),
	}
}

func (m *Monitor) header() []string {
	row := []string{"time"}
	for _, ch := range m.Channels {
		row = append(row, fmt.Sprintf("ch%d_mean", ch), fmt.Sprintf("ch%d_stddev", ch))
	}
	return row
}

func (m *Monitor) sample() error {
	res, err := m.Device.Acquire(m.Points, 0, m.Channels)
	if err != nil {
		return err
	}
	row := []string{time.Now().Format(time.RFC3339)}
	for _, s := range Summarize(res) {
		row = append(row,
			strconv.FormatFloat(s.Mean, 'f', -1, 64),
			strconv.FormatFloat(s.StdDev, 'f', -1, 64))
	}
	if err := m.writer.Write(row); err != nil {
		return err
	}
	m.writer.Flush()
	return m.writer.Error()
}

// Run blocks until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.writer.Write(m.header()); err != nil {
		return err
	}
	m.writer.Flush()

	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		if err := m.sample(); err != nil {
			log.Error("Monitor sample failed on %s: %v", m.Device.Name, err)
		}
	}
}
