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
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/device"
	"jinr.ru/greenlab/go-capa/pkg/log"
)

// CommandRequest ...
type CommandRequest struct {
	Command string `json:"command"`
}

// CommandResponse ...
type CommandResponse struct {
	Response string `json:"response"`
}

// AcquireRequest ...
type AcquireRequest struct {
	Points       int     `json:"points"`
	SamplingTime float64 `json:"samplingTime,omitempty"`
	Channels     []int   `json:"channels,omitempty"`
}

// StatusResponse carries the fresh snapshot plus the drifts against the
// previously stored one.
type StatusResponse struct {
	Status *device.Status `json:"status"`
	Drifts []device.Drift `json:"drifts,omitempty"`
}

// ApiServer exposes the device operations over REST.
type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	state *device.StatusState
}

func NewApiServer(ctx context.Context, cfg *config.Config) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.Api.Address, cfg.Api.Port)
	state, err := device.NewStatusState(cfg)
	if err != nil {
		return nil, err
	}
	return &ApiServer{
		Context: ctx,
		Config:  cfg,
		state:   state,
	}, nil
}

// Run blocks serving the API.
func (s *ApiServer) Run() error {
	log.Info("Starting API server: address: %s port: %d", s.Config.Api.Address, s.Config.Api.Port)
	defer s.state.Close()
	s.configureRouter()
	httpServer := &http.Server{
		Handler: handlers.CombinedLoggingHandler(os.Stderr, s.Router),
		Addr:    fmt.Sprintf("%s:%d", s.Config.Api.Address, s.Config.Api.Port),
	}
	return httpServer.ListenAndServe()
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/devices", s.handleDevices()).Methods("GET")
	subRouter.HandleFunc("/status/{device}", s.handleStatus()).Methods("GET")
	subRouter.HandleFunc("/command/{device}", s.handleCommand()).Methods("POST")
	subRouter.HandleFunc("/acquire/{device}", s.handleAcquire()).Methods("POST")
}

func (s *ApiServer) getDevice(name string) (*device.Device, error) {
	cfg, err := s.Config.GetDeviceByName(name)
	if err != nil {
		return nil, err
	}
	return device.NewDevice(cfg)
}

func (s *ApiServer) handleDevices() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(s.Config.Devices)
	}
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		log.Debug("Handling status request: device: %s", vars["device"])

		d, err := s.getDevice(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		prev, err := s.state.GetStatus(d.Name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		status, drifts, err := d.CheckStatus(prev)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if err := s.state.SetStatus(d.Name, status); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(&StatusResponse{Status: status, Drifts: drifts})
	}
}

func (s *ApiServer) handleCommand() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		cmdReq := &CommandRequest{}
		err := json.NewDecoder(r.Body).Decode(cmdReq)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		log.Debug("Handling command request: device: %s command: %s", vars["device"], cmdReq.Command)

		d, err := s.getDevice(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		response, err := d.Command(cmdReq.Command)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(&CommandResponse{Response: response})
	}
}

func (s *ApiServer) handleAcquire() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)

		acqReq := &AcquireRequest{}
		err := json.NewDecoder(r.Body).Decode(acqReq)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if acqReq.Points <= 0 {
			http.Error(w, "points must be positive", http.StatusBadRequest)
			return
		}

		log.Debug("Handling acquire request: device: %s points: %d", vars["device"], acqReq.Points)

		d, err := s.getDevice(vars["device"])
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		result, err := d.Acquire(acqReq.Points, acqReq.SamplingTime, acqReq.Channels)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(result)
	}
}
