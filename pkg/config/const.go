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

package config

import "time"

const (
	ConfigDir  = ".go-capa"
	ConfigFile = "config"
	StateFile  = "state.db"

	DefaultDeviceName  = "dt6220"
	DefaultHost        = "192.168.254.173"
	DefaultControlPort = 23
	DefaultDataPort    = 10001
	DefaultSensor      = "CS2"

	DefaultApiAddress = "127.0.0.1"
	DefaultApiPort    = 8000

	DefaultLogLevel = "info"
)

const (
	// DefaultConnectTimeout bounds connection establishment on both the
	// control and the data port.
	DefaultConnectTimeout = 5 * time.Second
	// DefaultReadTimeout bounds a single read on the data port.
	DefaultReadTimeout = 5 * time.Second
	// SettleInterval is how long to wait after writing a command before
	// reading the reply. The controller does not terminate its replies,
	// readiness is inferred by this pause.
	SettleInterval = 100 * time.Millisecond
)
