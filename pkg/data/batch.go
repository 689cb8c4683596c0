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

package data

// SampleBatch is the output of one Pull: rows of raw samples in arrival
// order, one value per requested channel, in the caller's channel order.
type SampleBatch struct {
	// Channels is the normalized channel list the rows were projected with
	Channels []int
	Rows     [][]int32
}

func NewSampleBatch(channels []int, capacity int) *SampleBatch {
	return &SampleBatch{
		Channels: channels,
		Rows:     make([][]int32, 0, capacity),
	}
}

func (b *SampleBatch) Len() int {
	return len(b.Rows)
}

// Column returns the series of the i-th requested channel.
func (b *SampleBatch) Column(i int) []int32 {
	column := make([]int32, len(b.Rows))
	for j, row := range b.Rows {
		column[j] = row[i]
	}
	return column
}

// Flat returns the batch as a single series. Meant for single-channel
// pulls where rows of length one are just noise for the caller.
func (b *SampleBatch) Flat() []int32 {
	return b.Column(0)
}
