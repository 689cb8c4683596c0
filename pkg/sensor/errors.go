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

package sensor

import (
	"fmt"
)

// ErrSensorNotFound returned when neither a serial number nor a model name
// matches a catalog entry
type ErrSensorNotFound struct {
	Key string
}

func (e ErrSensorNotFound) Error() string {
	return fmt.Sprintf("Sensor not found in catalog: %s", e.Key)
}
