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
	"errors"
	"path/filepath"
	"testing"

	"jinr.ru/greenlab/go-capa/pkg/config"
)

func newTestState(t *testing.T) *StatusState {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.StatePath = filepath.Join(t.TempDir(), "state.db")
	state, err := NewStatusState(cfg)
	if err != nil {
		t.Fatalf("NewStatusState failed: %v", err)
	}
	t.Cleanup(state.Close)
	return state
}

func TestStatusStateRoundTrip(t *testing.T) {
	state := newTestState(t)
	deviceName := config.DefaultDeviceName

	got, err := state.GetStatus(deviceName)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if got != nil {
		t.Fatalf("GetStatus = %+v, want nil before first store", got)
	}

	if err := state.SetStatus(deviceName, ParseStatus("S1;T2;LIN1")); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, err = state.GetStatus(deviceName)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if got == nil || got.Raw != "S1;T2;LIN1" {
		t.Errorf("GetStatus = %+v, want raw %q", got, "S1;T2;LIN1")
	}
}

func TestStatusStateOverwrite(t *testing.T) {
	state := newTestState(t)
	deviceName := config.DefaultDeviceName

	if err := state.SetStatus(deviceName, ParseStatus("S1")); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := state.SetStatus(deviceName, ParseStatus("S2")); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	got, err := state.GetStatus(deviceName)
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if got.Raw != "S2" {
		t.Errorf("GetStatus.Raw = %q, want %q", got.Raw, "S2")
	}
}

func TestStatusStateUnknownDevice(t *testing.T) {
	state := newTestState(t)

	_, err := state.GetStatus("nosuch")
	var notFound ErrBucketNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("error = %T (%v), want ErrBucketNotFound", err, err)
	}
	if err := state.SetStatus("nosuch", ParseStatus("S1")); !errors.As(err, &notFound) {
		t.Fatalf("SetStatus error = %T (%v), want ErrBucketNotFound", err, err)
	}
}
