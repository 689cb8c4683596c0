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

package device

import (
	"fmt"
	"strconv"
	"strings"

	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/control"
	"jinr.ru/greenlab/go-capa/pkg/data"
	"jinr.ru/greenlab/go-capa/pkg/layers"
	"jinr.ru/greenlab/go-capa/pkg/log"
	"jinr.ru/greenlab/go-capa/pkg/sensor"
)

const (
	// FullScale is the raw sample value at the upper end of the measuring
	// range.
	FullScale = 0xffffff
)

// Device is the acquisition driver for one controller. It opens a control
// or data connection per operation and guarantees the connection is
// released on every path.
type Device struct {
	*config.DeviceConfig
	// Range is the measuring range of the attached sensor in µm.
	// Zero means no sensor is configured and samples stay in raw counts.
	Range float64
}

func NewDevice(cfg *config.DeviceConfig) (*Device, error) {
	d := &Device{DeviceConfig: cfg}
	if cfg.Sensor != "" {
		s, err := sensor.ByName(cfg.Sensor)
		if err != nil {
			return nil, err
		}
		d.Range = s.Range
	}
	return d, nil
}

// Command runs a single exchange over a fresh control connection.
func (d *Device) Command(cmd string) (string, error) {
	conn, err := control.Dial(d.Host, d.ControlPort, config.DefaultConnectTimeout)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.Command(cmd)
}

// SetSamplingTime asks the controller for the closest sampling time it
// supports and returns the actual value in ms. The STI parameter and the
// echoed value are in µs.
func (d *Device) SetSamplingTime(ms float64) (float64, error) {
	cmd := fmt.Sprintf("STI%d", int(ms*1000))
	reply, err := d.Command(cmd)
	if err != nil {
		return 0, err
	}
	actual, err := strconv.ParseFloat(strings.Trim(reply, ","), 64)
	if err != nil {
		return 0, layers.ErrMalformedResponse{Command: cmd, Response: reply}
	}
	log.Info("Set sampling time: %g ms", actual/1000)
	return actual / 1000, nil
}

// Scale converts a raw sample to the physical units of the attached
// sensor. Without a configured sensor the raw count is returned.
func (d *Device) Scale(raw int32) float64 {
	if d.Range == 0 {
		return float64(raw)
	}
	return float64(raw) / FullScale * d.Range
}

// Result is one finished acquisition, the raw batch plus the values
// scaled to the measuring range, one column per requested channel.
type Result struct {
	Channels     []int       `json:"channels"`
	Columns      [][]float64 `json:"columns"`
	SamplingTime float64     `json:"samplingTime,omitempty"` // ms, 0 when left untouched
}

// Acquire runs one acquisition: optionally reconfigures the sampling
// time, then pulls the requested number of samples from the data port.
// The data connection is scoped to this call.
func (d *Device) Acquire(points int, samplingTime float64, channels []int) (*Result, error) {
	actual := 0.0
	if samplingTime > 0 {
		ms, err := d.SetSamplingTime(samplingTime)
		if err != nil {
			return nil, err
		}
		actual = ms
	}

	log.Info("Acquiring %d samples from %s", points, d.Name)
	conn, err := data.Dial(d.Host, d.DataPort, config.DefaultConnectTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	batch, err := conn.Pull(points, channels)
	if err != nil {
		return nil, err
	}
	if batch.Len() < points {
		log.Warning("Acquired %d of %d samples", batch.Len(), points)
	}
	return d.newResult(batch, actual), nil
}

func (d *Device) newResult(batch *data.SampleBatch, samplingTime float64) *Result {
	columns := make([][]float64, len(batch.Channels))
	for i := range batch.Channels {
		raw := batch.Column(i)
		column := make([]float64, len(raw))
		for j, v := range raw {
			column[j] = d.Scale(v)
		}
		columns[i] = column
	}
	return &Result{
		Channels:     batch.Channels,
		Columns:      columns,
		SamplingTime: samplingTime,
	}
}
