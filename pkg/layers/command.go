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
	"strings"
)

// Control port line protocol. A request is the sentinel, the command text
// and CRLF. A successful reply echoes the sentinel and the command, then
// carries the parameter text and the OK marker. The two error literals
// come without an echo of the command.

const (
	Sentinel = "$"
	CRLF     = "\r\n"

	OkMarker            = "OK"
	UnknownCommandReply = "$UNKNOWN COMMAND"
	WrongParameterReply = "$WRONG PARAMETER"
)

// EncodeCommand frames a command for the control port. CR and LF are
// stripped from the command text so a single exchange can never span lines.
func EncodeCommand(cmd string) []byte {
	cmd = StripCRLF(cmd)
	return []byte(Sentinel + cmd + CRLF)
}

// StripCRLF removes all CR and LF characters from a command string.
func StripCRLF(cmd string) string {
	cmd = strings.ReplaceAll(cmd, "\r", "")
	return strings.ReplaceAll(cmd, "\n", "")
}

// DecodeResponse validates a raw reply against the command it answers and
// returns the parameter text between the echoed command and the OK marker.
func DecodeResponse(raw []byte, sent string) (string, error) {
	response := strings.Trim(string(raw), CRLF)
	if !strings.HasPrefix(response, Sentinel+sent) {
		return "", ErrMalformedResponse{Command: sent, Response: response}
	}
	rest := response[len(Sentinel)+len(sent):]
	switch {
	case strings.HasSuffix(rest, OkMarker):
		return rest[:len(rest)-len(OkMarker)], nil
	case rest == UnknownCommandReply:
		return "", ErrUnknownCommand{Command: sent}
	case rest == WrongParameterReply:
		return "", ErrWrongParameter{Command: sent}
	default:
		return "", ErrMalformedResponse{Command: sent, Response: response}
	}
}
