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

package device

import (
	"strings"

	"sigs.k8s.io/yaml"

	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/control"
	"jinr.ru/greenlab/go-capa/pkg/log"
)

// Status is one snapshot of the measurement-relevant controller
// parameters: the STS reply with the linearization mode appended.
type Status struct {
	Raw    string   `json:"raw"`
	Fields []string `json:"fields"`
}

// ParseStatus splits a raw status string into its semicolon separated
// fields.
func ParseStatus(raw string) *Status {
	return &Status{
		Raw:    raw,
		Fields: strings.Split(raw, ";"),
	}
}

func (s *Status) String() string {
	out, err := yaml.Marshal(s)
	if err != nil {
		return err.Error()
	}
	return string(out)
}

// Drift is one status field that changed between two snapshots.
type Drift struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// Compare returns the fields of s that differ from the previous snapshot.
// prev may be nil, meaning there is nothing to compare against yet.
func (s *Status) Compare(prev *Status) []Drift {
	if prev == nil {
		return nil
	}
	var drifts []Drift
	n := len(s.Fields)
	if len(prev.Fields) < n {
		n = len(prev.Fields)
	}
	for i := 0; i < n; i++ {
		if s.Fields[i] != prev.Fields[i] {
			drifts = append(drifts, Drift{Old: prev.Fields[i], New: s.Fields[i]})
		}
	}
	return drifts
}

// ReadStatus queries the controller for its current status. Both commands
// go over one scoped control connection.
func (d *Device) ReadStatus() (*Status, error) {
	conn, err := control.Dial(d.Host, d.ControlPort, config.DefaultConnectTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	sts, err := conn.Command("STS")
	if err != nil {
		return nil, err
	}
	lin, err := conn.Command("LIN?")
	if err != nil {
		return nil, err
	}
	return ParseStatus(sts + ";LIN" + lin), nil
}

// CheckStatus reads the current status and compares it against the
// previous snapshot held by the caller. Drift warnings are logged and
// returned together with the fresh snapshot.
func (d *Device) CheckStatus(prev *Status) (*Status, []Drift, error) {
	status, err := d.ReadStatus()
	if err != nil {
		return nil, nil, err
	}
	drifts := status.Compare(prev)
	for _, drift := range drifts {
		log.Warning("Changed parameter on %s: %s to %s", d.Name, drift.Old, drift.New)
	}
	return status, drifts, nil
}
