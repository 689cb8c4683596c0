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

package control

import (
	"fmt"
)

// ErrConnection returned when the transport fails underneath an exchange.
// It is fatal to the session, the caller decides whether to reconnect.
type ErrConnection struct {
	Op  string
	Cmd string
	Err error
}

func (e ErrConnection) Error() string {
	if e.Cmd == "" {
		return fmt.Sprintf("Control connection error during %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("Control connection error during %s of command %s: %v", e.Op, e.Cmd, e.Err)
}

func (e ErrConnection) Unwrap() error {
	return e.Err
}
