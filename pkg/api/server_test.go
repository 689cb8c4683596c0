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

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"jinr.ru/greenlab/go-capa/pkg/config"
)

func newTestServer(t *testing.T) *ApiServer {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.StatePath = filepath.Join(t.TempDir(), "state.db")
	server, err := NewApiServer(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewApiServer failed: %v", err)
	}
	t.Cleanup(server.state.Close)
	server.configureRouter()
	return server
}

func TestHandleDevices(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/devices", nil)
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var devices []*config.DeviceConfig
	if err := json.NewDecoder(w.Body).Decode(&devices); err != nil {
		t.Fatalf("decoding response failed: %v", err)
	}
	if len(devices) != 1 || devices[0].Name != config.DefaultDeviceName {
		t.Errorf("devices = %+v, want one %q entry", devices, config.DefaultDeviceName)
	}
}

func TestHandleCommandUnknownDevice(t *testing.T) {
	server := newTestServer(t)

	body := strings.NewReader(`{"command":"VER"}`)
	req := httptest.NewRequest("POST", "/api/command/nosuch", body)
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestHandleCommandBadBody(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/command/dt6220", strings.NewReader("{"))
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleAcquireRejectsNonPositivePoints(t *testing.T) {
	server := newTestServer(t)

	body := strings.NewReader(`{"points":0}`)
	req := httptest.NewRequest("POST", "/api/acquire/dt6220", body)
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestHandleStatusUnknownDevice(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/status/nosuch", nil)
	w := httptest.NewRecorder()
	server.Router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestClientDevices(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Router)
	defer ts.Close()

	client := NewApiClient(server.Config)
	client.ApiPrefix = ts.URL + "/api"

	devices, err := client.Devices()
	if err != nil {
		t.Fatalf("Devices failed: %v", err)
	}
	if len(devices) != 1 || devices[0].Host != config.DefaultHost {
		t.Errorf("devices = %+v, want one entry with host %q", devices, config.DefaultHost)
	}
}

func TestClientCommandErrorStatus(t *testing.T) {
	server := newTestServer(t)
	ts := httptest.NewServer(server.Router)
	defer ts.Close()

	client := NewApiClient(server.Config)
	client.ApiPrefix = ts.URL + "/api"

	if _, err := client.Command("nosuch", "VER"); err == nil {
		t.Error("Command against unknown device should fail")
	}
}
