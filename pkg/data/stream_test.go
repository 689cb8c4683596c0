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

import (
	"encoding/binary"
	"errors"
	"io"
	"reflect"
	"testing"
	"time"

	"jinr.ru/greenlab/go-capa/pkg/layers"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

// fakeConn replays scripted chunks, one chunk per read. When the script
// is exhausted it times out, or hits EOF when eof is set.
type fakeConn struct {
	chunks [][]byte
	eof    bool
}

func (c *fakeConn) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.eof {
			return 0, io.EOF
		}
		return 0, timeoutError{}
	}
	chunk := c.chunks[0]
	n := copy(p, chunk)
	if n < len(chunk) {
		c.chunks[0] = chunk[n:]
	} else {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *fakeConn) SetReadDeadline(time.Time) error { return nil }

func newTestStream(chunks ...[]byte) *Stream {
	return NewStream(&fakeConn{chunks: chunks}, time.Second)
}

// buildPacket assembles one wire packet with two-bit channel presence
// groups derived from the frame width.
func buildPacket(t *testing.T, frames [][]int32, frameCount uint16) []byte {
	t.Helper()
	var channels uint64
	var bytesPerFrame uint16
	if len(frames) > 0 {
		bytesPerFrame = uint16(len(frames[0]) * layers.SampleSize)
		for i := range frames[0] {
			channels |= 1 << (2 * i)
		}
	}
	h := &layers.DataHeader{
		Preamble:      "CAPA",
		Channels:      channels,
		FrameCount:    frameCount,
		BytesPerFrame: bytesPerFrame,
	}
	packet := make([]byte, layers.HeaderSize)
	if err := h.Serialize(packet); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}
	for _, frame := range frames {
		for _, v := range frame {
			sample := make([]byte, layers.SampleSize)
			binary.LittleEndian.PutUint32(sample, uint32(v))
			packet = append(packet, sample...)
		}
	}
	return packet
}

func fragment(data []byte, size int) [][]byte {
	var chunks [][]byte
	for len(data) > 0 {
		n := size
		if n > len(data) {
			n = len(data)
		}
		chunks = append(chunks, data[:n])
		data = data[n:]
	}
	return chunks
}

func TestPullTruncatesInsidePacket(t *testing.T) {
	// Three frames on two channels, two samples requested: the third
	// frame is discarded and the packet dropped from the buffer whole.
	packet := buildPacket(t, [][]int32{{10, 20}, {11, 21}, {12, 22}}, 3)
	s := newTestStream(packet)

	batch, err := s.Pull(2, []int{0, 1})
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	want := [][]int32{{10, 20}, {11, 21}}
	if !reflect.DeepEqual(batch.Rows, want) {
		t.Errorf("Rows = %v, want %v", batch.Rows, want)
	}
	if s.Buffered() != 0 {
		t.Errorf("Buffered = %d, want 0", s.Buffered())
	}

	// The discarded frame must not leak into the next call.
	next, err := s.Pull(1, []int{0, 1})
	if err != nil {
		t.Fatalf("second Pull failed: %v", err)
	}
	if next.Len() != 0 {
		t.Errorf("second Pull returned %d rows, want 0", next.Len())
	}
}

func TestPullChunkingDoesNotAffectOutput(t *testing.T) {
	stream := append(buildPacket(t, [][]int32{{1, 2}, {3, 4}}, 2),
		buildPacket(t, [][]int32{{5, 6}, {7, 8}}, 2)...)

	whole := newTestStream(stream)
	wholeBatch, err := whole.Pull(4, []int{0, 1})
	if err != nil {
		t.Fatalf("Pull (unfragmented) failed: %v", err)
	}

	byteWise := newTestStream(fragment(stream, 1)...)
	byteWiseBatch, err := byteWise.Pull(4, []int{0, 1})
	if err != nil {
		t.Fatalf("Pull (1-byte chunks) failed: %v", err)
	}

	if !reflect.DeepEqual(wholeBatch.Rows, byteWiseBatch.Rows) {
		t.Errorf("chunked Rows = %v, want %v", byteWiseBatch.Rows, wholeBatch.Rows)
	}
	if wholeBatch.Len() != 4 {
		t.Errorf("Len = %d, want 4", wholeBatch.Len())
	}
}

func TestPullSpansPackets(t *testing.T) {
	s := newTestStream(
		buildPacket(t, [][]int32{{1, 2}, {3, 4}}, 2),
		buildPacket(t, [][]int32{{5, 6}, {7, 8}}, 2),
	)
	batch, err := s.Pull(3, []int{0, 1})
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	want := [][]int32{{1, 2}, {3, 4}, {5, 6}}
	if !reflect.DeepEqual(batch.Rows, want) {
		t.Errorf("Rows = %v, want %v", batch.Rows, want)
	}
	// Second packet was consumed whole even though only one frame was used.
	if s.Buffered() != 0 {
		t.Errorf("Buffered = %d, want 0", s.Buffered())
	}
}

func TestPullChannelOutOfRange(t *testing.T) {
	packet := buildPacket(t, [][]int32{{10, 20}}, 1)
	s := newTestStream(packet)

	batch, err := s.Pull(1, []int{0, 2})
	var outOfRange ErrChannelOutOfRange
	if !errors.As(err, &outOfRange) {
		t.Fatalf("error = %T (%v), want ErrChannelOutOfRange", err, err)
	}
	if outOfRange.Channel != 2 || outOfRange.Available != 2 {
		t.Errorf("ErrChannelOutOfRange = %+v, want Channel 2 Available 2", outOfRange)
	}
	if batch.Len() != 0 {
		t.Errorf("Len = %d, want 0", batch.Len())
	}
	// No payload was consumed, the buffer still sits at the packet boundary.
	if s.Buffered() != len(packet) {
		t.Errorf("Buffered = %d, want %d", s.Buffered(), len(packet))
	}
}

func TestPullRejectsNegativeChannel(t *testing.T) {
	packet := buildPacket(t, [][]int32{{10, 20}}, 1)
	s := newTestStream(packet)

	batch, err := s.Pull(1, []int{-1})
	var invalid ErrInvalidChannel
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %T (%v), want ErrInvalidChannel", err, err)
	}
	if invalid.Channel != -1 {
		t.Errorf("Channel = %d, want -1", invalid.Channel)
	}
	if batch.Len() != 0 {
		t.Errorf("Len = %d, want 0", batch.Len())
	}
	// Rejected before the first read, nothing was consumed off the stream.
	if s.Buffered() != 0 {
		t.Errorf("Buffered = %d, want 0", s.Buffered())
	}

	if _, err := s.Pull(1, []int{0, -2}); !errors.As(err, &invalid) {
		t.Fatalf("error = %T (%v), want ErrInvalidChannel", err, err)
	}
	if invalid.Channel != -2 {
		t.Errorf("Channel = %d, want -2", invalid.Channel)
	}
}

func TestNormalizeChannels(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{"empty defaults to both", nil, []int{0, 1}},
		{"duplicates removed", []int{1, 1, 0, 1}, []int{1, 0}},
		{"order preserved", []int{1, 0}, []int{1, 0}},
		{"single", []int{0}, []int{0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeChannels(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeChannels(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPullTimeoutBeforeHeaderIsNotAnError(t *testing.T) {
	s := newTestStream() // times out immediately
	batch, err := s.Pull(5, []int{0})
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if batch.Len() != 0 {
		t.Errorf("Len = %d, want 0", batch.Len())
	}
}

func TestPullEOFBeforeHeaderIsNotAnError(t *testing.T) {
	s := NewStream(&fakeConn{eof: true}, time.Second)
	batch, err := s.Pull(5, []int{0})
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if batch.Len() != 0 {
		t.Errorf("Len = %d, want 0", batch.Len())
	}
}

func TestPullPartialBatchOnStall(t *testing.T) {
	s := newTestStream(buildPacket(t, [][]int32{{1, 2}}, 1))
	batch, err := s.Pull(10, []int{0, 1})
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if batch.Len() != 1 {
		t.Errorf("Len = %d, want 1", batch.Len())
	}
}

func TestPullTimeoutInsidePayload(t *testing.T) {
	packet := buildPacket(t, [][]int32{{1, 2}, {3, 4}}, 2)
	s := newTestStream(packet[:layers.HeaderSize+4])

	_, err := s.Pull(2, []int{0, 1})
	var incomplete ErrIncompletePacket
	if !errors.As(err, &incomplete) {
		t.Fatalf("error = %T (%v), want ErrIncompletePacket", err, err)
	}
	if incomplete.Have != layers.HeaderSize+4 || incomplete.Need != len(packet) {
		t.Errorf("ErrIncompletePacket = %+v, want Have %d Need %d",
			incomplete, layers.HeaderSize+4, len(packet))
	}
}

func TestPullSkipsZeroFramePackets(t *testing.T) {
	empty := &layers.DataHeader{
		Preamble:      "CAPA",
		Channels:      0x1, // one channel present, but no frames
		FrameCount:    0,
		BytesPerFrame: 4,
	}
	emptyPacket := make([]byte, layers.HeaderSize)
	if err := empty.Serialize(emptyPacket); err != nil {
		t.Fatalf("Serialize failed: %v", err)
	}

	s := newTestStream(emptyPacket, buildPacket(t, [][]int32{{9}}, 1))
	batch, err := s.Pull(1, []int{0})
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if !reflect.DeepEqual(batch.Rows, [][]int32{{9}}) {
		t.Errorf("Rows = %v, want [[9]]", batch.Rows)
	}
	if s.Buffered() != 0 {
		t.Errorf("Buffered = %d, want 0", s.Buffered())
	}
}

func TestPullChannelOrderAndDeduplication(t *testing.T) {
	s := newTestStream(buildPacket(t, [][]int32{{10, 20}}, 1))
	batch, err := s.Pull(1, []int{1, 1, 0})
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if !reflect.DeepEqual(batch.Channels, []int{1, 0}) {
		t.Errorf("Channels = %v, want [1 0]", batch.Channels)
	}
	if !reflect.DeepEqual(batch.Rows, [][]int32{{20, 10}}) {
		t.Errorf("Rows = %v, want [[20 10]]", batch.Rows)
	}
}

func TestSingleChannelFlat(t *testing.T) {
	s := newTestStream(buildPacket(t, [][]int32{{7, 8}, {9, 10}}, 2))
	batch, err := s.Pull(2, []int{1})
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if got := batch.Flat(); !reflect.DeepEqual(got, []int32{8, 10}) {
		t.Errorf("Flat = %v, want [8 10]", got)
	}
}

func TestBatchColumn(t *testing.T) {
	batch := &SampleBatch{
		Channels: []int{0, 1},
		Rows:     [][]int32{{1, 2}, {3, 4}, {5, 6}},
	}
	if got := batch.Column(1); !reflect.DeepEqual(got, []int32{2, 4, 6}) {
		t.Errorf("Column(1) = %v, want [2 4 6]", got)
	}
}
