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

package layers

import (
	"encoding/binary"
	"math/bits"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

const (
	// DataPacketLayerNum identifies the layer
	DataPacketLayerNum = 2206

	// HeaderSize is the fixed size of the header in front of every packet
	// on the data port
	HeaderSize = 32

	// SampleSize is the wire size of one sample value within a frame
	SampleSize = 4
)

// DataHeader is the 32 byte header of a data packet. All multi-byte fields
// are little-endian. Field values are taken as-is, only the length is
// checked when decoding.
type DataHeader struct {
	Preamble     string // 4 ASCII bytes
	ItemNumber   int32
	SerialNumber int32
	// Channels is the channel presence bit-field, two bits per channel
	// slot, 01 means the slot carries data in this packet.
	Channels      uint64
	FrameCount    uint16
	BytesPerFrame uint16
	FrameCounter  int32
}

// ChannelCount returns the number of channels present in the packet.
// The controller sets 01 per present slot, so the popcount of the field
// equals the channel count.
// TODO cross-check on a controller with more than two channels; the
// manual's two-bit encoding and plain popcount have only been verified
// against two-channel output.
func (h *DataHeader) ChannelCount() int {
	return bits.OnesCount64(h.Channels)
}

// PayloadSize returns the number of payload bytes following the header.
func (h *DataHeader) PayloadSize() int {
	return int(h.FrameCount) * int(h.BytesPerFrame)
}

// DecodeDataHeader unpacks the fixed header from the first HeaderSize
// bytes of data.
func DecodeDataHeader(data []byte) (*DataHeader, error) {
	if len(data) < HeaderSize {
		return nil, ErrHeaderTooShort{Len: len(data)}
	}
	return &DataHeader{
		Preamble:     string(data[0:4]),
		ItemNumber:   int32(binary.LittleEndian.Uint32(data[4:8])),
		SerialNumber: int32(binary.LittleEndian.Uint32(data[8:12])),
		Channels:     binary.LittleEndian.Uint64(data[12:20]),
		// data[20:24] is reserved
		FrameCount:    binary.LittleEndian.Uint16(data[24:26]),
		BytesPerFrame: binary.LittleEndian.Uint16(data[26:28]),
		FrameCounter:  int32(binary.LittleEndian.Uint32(data[28:32])),
	}, nil
}

// Serialize writes the header into buf which must be at least HeaderSize
// bytes long.
func (h *DataHeader) Serialize(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrHeaderTooShort{Len: len(buf)}
	}
	copy(buf[0:4], h.Preamble)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(h.ItemNumber))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.SerialNumber))
	binary.LittleEndian.PutUint64(buf[12:20], h.Channels)
	binary.LittleEndian.PutUint32(buf[20:24], 0)
	binary.LittleEndian.PutUint16(buf[24:26], h.FrameCount)
	binary.LittleEndian.PutUint16(buf[26:28], h.BytesPerFrame)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(h.FrameCounter))
	return nil
}

// DataPacketLayer is one complete header+payload packet from the data port.
type DataPacketLayer struct {
	layers.BaseLayer
	Header *DataHeader
}

var DataPacketLayerType = gopacket.RegisterLayerType(DataPacketLayerNum,
	gopacket.LayerTypeMetadata{Name: "DataPacketLayerType", Decoder: gopacket.DecodeFunc(DecodeDataPacketLayer)})

// LayerType returns the type of the data packet layer in the layer catalog
func (d *DataPacketLayer) LayerType() gopacket.LayerType {
	return DataPacketLayerType
}

// DecodeFromBytes decodes one complete packet. data must hold the full
// header and the full payload the header commits to.
func (d *DataPacketLayer) DecodeFromBytes(data []byte, df gopacket.DecodeFeedback) error {
	header, err := DecodeDataHeader(data)
	if err != nil {
		df.SetTruncated()
		return err
	}
	packetSize := HeaderSize + header.PayloadSize()
	if len(data) < packetSize {
		df.SetTruncated()
		return ErrPacketTooShort{Have: len(data), Need: packetSize}
	}
	d.Header = header
	d.BaseLayer = layers.BaseLayer{
		Contents: data[:HeaderSize],
		Payload:  data[HeaderSize:packetSize],
	}
	return nil
}

// Frame returns the i-th frame of the packet, one int32 per value slot.
func (d *DataPacketLayer) Frame(i int) []int32 {
	bpf := int(d.Header.BytesPerFrame)
	frame := d.Payload[i*bpf : (i+1)*bpf]
	samples := make([]int32, bpf/SampleSize)
	for j := range samples {
		samples[j] = int32(binary.LittleEndian.Uint32(frame[j*SampleSize : (j+1)*SampleSize]))
	}
	return samples
}

// ProjectFrame returns the requested channels of the i-th frame, in the
// caller's channel order.
func (d *DataPacketLayer) ProjectFrame(i int, channels []int) []int32 {
	frame := d.Frame(i)
	projected := make([]int32, len(channels))
	for j, ch := range channels {
		projected[j] = frame[ch]
	}
	return projected
}

func DecodeDataPacketLayer(data []byte, p gopacket.PacketBuilder) error {
	d := &DataPacketLayer{}
	err := d.DecodeFromBytes(data, p)
	if err != nil {
		return err
	}
	p.AddLayer(d)
	return nil
}
