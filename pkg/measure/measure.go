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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"jinr.ru/greenlab/go-capa/pkg/device"
)

// Summary is the per-channel descriptive statistics of one acquisition.
type Summary struct {
	Channel int     `json:"channel"`
	Count   int     `json:"count"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"stdDev"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Summarize computes per-channel statistics of an acquisition result.
// Empty columns produce a zero summary for their channel.
func Summarize(res *device.Result) []Summary {
	summaries := make([]Summary, len(res.Channels))
	for i, ch := range res.Channels {
		column := res.Columns[i]
		summaries[i] = Summary{Channel: ch, Count: len(column)}
		if len(column) == 0 {
			continue
		}
		summaries[i].Mean = stat.Mean(column, nil)
		summaries[i].Min = floats.Min(column)
		summaries[i].Max = floats.Max(column)
		if len(column) > 1 {
			summaries[i].StdDev = stat.StdDev(column, nil)
		}
	}
	return summaries
}
