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
	"fmt"
	"io"
	"net"
	"time"

	"github.com/google/gopacket"

	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/layers"
	"jinr.ru/greenlab/go-capa/pkg/log"
)

const (
	readChunkSize = 65536
)

// readConn is the slice of net.Conn the stream needs. Tests substitute
// an in-memory implementation.
type readConn interface {
	Read(p []byte) (int, error)
	SetReadDeadline(t time.Time) error
}

// Stream reassembles data packets from the chunked byte stream of the
// data port. It owns the buffer of bytes received but not yet consumed
// as a complete packet. The buffer lives as long as the connection, a
// packet that spans two reads is completed by the next Pull.
type Stream struct {
	conn        readConn
	buf         []byte
	readTimeout time.Duration
}

func NewStream(conn readConn, readTimeout time.Duration) *Stream {
	return &Stream{
		conn:        conn,
		readTimeout: readTimeout,
	}
}

// fill performs one read and appends whatever arrived to the buffer.
// It reports whether the stream stalled, that is the read timed out or
// hit EOF before producing new bytes.
func (s *Stream) fill() (bool, error) {
	if err := s.conn.SetReadDeadline(time.Now().Add(s.readTimeout)); err != nil {
		return false, ErrConnection{Op: "read", Err: err}
	}
	chunk := make([]byte, readChunkSize)
	n, err := s.conn.Read(chunk)
	if n > 0 {
		s.buf = append(s.buf, chunk[:n]...)
	}
	if err != nil {
		if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
			return n == 0, nil
		}
		if err == io.EOF {
			return n == 0, nil
		}
		return false, ErrConnection{Op: "read", Err: err}
	}
	return false, nil
}

// Pull reads complete packets off the stream until count samples have
// been collected on the given channels. A stall before a header boundary
// is not an error, whatever was collected so far is returned. A stall
// inside a packet is ErrIncompletePacket, the buffer is unreliable after
// that and the caller should reconnect.
func (s *Stream) Pull(count int, channels []int) (*SampleBatch, error) {
	channels = NormalizeChannels(channels)
	maxChannel := 0
	for _, ch := range channels {
		if ch < 0 {
			return NewSampleBatch(channels, 0), ErrInvalidChannel{Channel: ch}
		}
		if ch > maxChannel {
			maxChannel = ch
		}
	}

	batch := NewSampleBatch(channels, count)
	for batch.Len() < count {
		for len(s.buf) < layers.HeaderSize {
			stalled, err := s.fill()
			if err != nil {
				return batch, err
			}
			if stalled {
				log.Warning("No data available, returning %d of %d samples", batch.Len(), count)
				return batch, nil
			}
		}

		header, err := layers.DecodeDataHeader(s.buf)
		if err != nil {
			return batch, err
		}
		if maxChannel >= header.ChannelCount() {
			return batch, ErrChannelOutOfRange{Channel: maxChannel, Available: header.ChannelCount()}
		}

		packetSize := layers.HeaderSize + header.PayloadSize()
		for len(s.buf) < packetSize {
			stalled, err := s.fill()
			if err != nil {
				return batch, err
			}
			if stalled {
				return batch, ErrIncompletePacket{Have: len(s.buf), Need: packetSize}
			}
		}

		packet := &layers.DataPacketLayer{}
		if err := packet.DecodeFromBytes(s.buf[:packetSize], gopacket.NilDecodeFeedback); err != nil {
			return batch, err
		}
		for i := 0; i < int(header.FrameCount) && batch.Len() < count; i++ {
			batch.Rows = append(batch.Rows, packet.ProjectFrame(i, channels))
		}
		// The whole packet is dropped even when count was reached mid
		// packet. Partially consumed packets are never re-parsed.
		s.buf = s.buf[packetSize:]
	}
	return batch, nil
}

// Buffered returns the number of bytes received but not yet consumed.
func (s *Stream) Buffered() int {
	return len(s.buf)
}

// NormalizeChannels de-duplicates a channel list preserving the caller's
// order. An empty list defaults to both demodulator channels. Callers
// that derive per-channel output columns should normalize with this
// before labelling them.
func NormalizeChannels(channels []int) []int {
	if len(channels) == 0 {
		return []int{0, 1}
	}
	seen := make(map[int]bool, len(channels))
	normalized := make([]int, 0, len(channels))
	for _, ch := range channels {
		if !seen[ch] {
			seen[ch] = true
			normalized = append(normalized, ch)
		}
	}
	return normalized
}

// DataConn is a live connection to the data port of a controller with its
// reassembly stream. The stream buffer is created on connect and thrown
// away on disconnect.
type DataConn struct {
	*Stream
	conn net.Conn
}

// Dial connects to the data port.
func Dial(host string, port int, timeout time.Duration) (*DataConn, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, ErrConnection{Op: "connect", Err: err}
	}
	log.Debug("Connected to data port: %s", addr)
	return &DataConn{
		Stream: NewStream(conn, config.DefaultReadTimeout),
		conn:   conn,
	}, nil
}

// Close closes the underlying transport.
func (d *DataConn) Close() error {
	return d.conn.Close()
}
