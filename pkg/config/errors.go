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

import (
	"fmt"
)

// ErrConfigFileExists returned when persisting a config would overwrite
// an existing file and overwriting was not requested
type ErrConfigFileExists struct {
	Path string
}

func (e ErrConfigFileExists) Error() string {
	return fmt.Sprintf("Config file already exists: %s", e.Path)
}

// ErrDeviceNotFound returned when the config has no device with the given name
type ErrDeviceNotFound struct {
	Name string
}

func (e ErrDeviceNotFound) Error() string {
	return fmt.Sprintf("Device not found in config: %s", e.Name)
}
