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
	"fmt"
)

// ErrHeaderTooShort returned when fewer than HeaderSize bytes are handed
// to the data header decoder
type ErrHeaderTooShort struct {
	Len int
}

func (e ErrHeaderTooShort) Error() string {
	return fmt.Sprintf("Data header too short: got %d bytes, need %d", e.Len, HeaderSize)
}

// ErrPacketTooShort returned when a buffer handed to the packet decoder
// does not hold the full payload its header commits to
type ErrPacketTooShort struct {
	Have int
	Need int
}

func (e ErrPacketTooShort) Error() string {
	return fmt.Sprintf("Data packet too short: got %d bytes, need %d", e.Have, e.Need)
}

// ErrUnknownCommand returned when the controller does not recognize a command
type ErrUnknownCommand struct {
	Command string
}

func (e ErrUnknownCommand) Error() string {
	return fmt.Sprintf("Unknown command: %s", e.Command)
}

// ErrWrongParameter returned when the controller rejects a command parameter
type ErrWrongParameter struct {
	Command string
}

func (e ErrWrongParameter) Error() string {
	return fmt.Sprintf("Wrong parameter in command: %s", e.Command)
}

// ErrMalformedResponse returned when a reply does not echo the command or
// carries neither the OK marker nor a known error literal
type ErrMalformedResponse struct {
	Command  string
	Response string
}

func (e ErrMalformedResponse) Error() string {
	return fmt.Sprintf("Unexpected response to command %s: %q", e.Command, e.Response)
}
