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
)

// ErrConnection returned when the transport fails underneath the data stream
type ErrConnection struct {
	Op  string
	Err error
}

func (e ErrConnection) Error() string {
	return fmt.Sprintf("Data connection error during %s: %v", e.Op, e.Err)
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}

// ErrInvalidChannel returned when a requested channel index is negative.
// Rejected up front, before any bytes are read off the stream.
type ErrInvalidChannel struct {
	Channel int
}

func (e ErrInvalidChannel) Error() string {
	return fmt.Sprintf("Invalid channel index: %d", e.Channel)
}

// ErrChannelOutOfRange returned when a requested channel index is not
// present in the current packet. The check happens before any payload is
// consumed, the buffer stays at the packet boundary.
type ErrChannelOutOfRange struct {
	Channel   int
	Available int
}

func (e ErrChannelOutOfRange) Error() string {
	return fmt.Sprintf("Channel %d requested but packet reports only %d channels", e.Channel, e.Available)
}

// ErrIncompletePacket returned when the stream stalls after a header has
// committed to a payload size. The buffer is desynchronized at this point,
// resume is not guaranteed, callers should disconnect and reconnect.
type ErrIncompletePacket struct {
	Have int
	Need int
}

func (e ErrIncompletePacket) Error() string {
	return fmt.Sprintf("Stream stalled inside a packet: have %d of %d bytes", e.Have, e.Need)
}
