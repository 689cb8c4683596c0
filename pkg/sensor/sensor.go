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
	"sort"
)

// Sensor describes a capacitive displacement sensor attached to one
// demodulator channel of a controller.
type Sensor struct {
	SerialNumber string  `json:"serialNumber"`
	Name         string  `json:"name"`
	Channel      int     `json:"channel"`
	Range        float64 `json:"range"`    // measuring range in µm
	Diameter     float64 `json:"diameter"` // sensing electrode diameter in mm
}

// Catalog lists the sensors of the lab, keyed by serial number.
var Catalog = map[string]*Sensor{
	"2011": {SerialNumber: "2011", Name: "CS2", Channel: 0, Range: 2000, Diameter: 7.9},
	"2012": {SerialNumber: "2012", Name: "CS2", Channel: 1, Range: 4000, Diameter: 7.9},
	"1739": {SerialNumber: "1739", Name: "CS05", Channel: 1, Range: 1000, Diameter: 3.9},
	"1161": {SerialNumber: "1161", Name: "CS02", Channel: 1, Range: 400, Diameter: 2.3},
}

// BySerial looks a sensor up by its serial number.
func BySerial(serial string) (*Sensor, error) {
	s, ok := Catalog[serial]
	if !ok {
		return nil, ErrSensorNotFound{Key: serial}
	}
	return s, nil
}

// ByName returns the sensor with the given model name. Serial numbers are
// tried first so either identifier works in the config.
func ByName(name string) (*Sensor, error) {
	if s, ok := Catalog[name]; ok {
		return s, nil
	}
	serials := make([]string, 0, len(Catalog))
	for serial := range Catalog {
		serials = append(serials, serial)
	}
	sort.Strings(serials)
	for _, serial := range serials {
		if Catalog[serial].Name == name {
			return Catalog[serial], nil
		}
	}
	return nil, ErrSensorNotFound{Key: name}
}
