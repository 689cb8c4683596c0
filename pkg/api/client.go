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
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req"

	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/device"
)

// ApiClient talks to a running go-capa API server.
type ApiClient struct {
	*config.Config
	ApiPrefix string
}

func NewApiClient(cfg *config.Config) *ApiClient {
	return &ApiClient{
		Config:    cfg,
		ApiPrefix: fmt.Sprintf("http://%s:%d/api", cfg.Api.Address, cfg.Api.Port),
	}
}

// Devices fetches the device list of the server.
func (c *ApiClient) Devices() ([]*config.DeviceConfig, error) {
	r, err := req.Get(fmt.Sprintf("%s/devices", c.ApiPrefix))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, errors.New(r.Response().Status)
	}
	var devices []*config.DeviceConfig
	if err = r.ToJSON(&devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// Status fetches a status snapshot with drift info for a device.
func (c *ApiClient) Status(deviceName string) (*StatusResponse, error) {
	r, err := req.Get(fmt.Sprintf("%s/status/%s", c.ApiPrefix, deviceName))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, errors.New(r.Response().Status)
	}
	status := &StatusResponse{}
	if err = r.ToJSON(status); err != nil {
		return nil, err
	}
	return status, nil
}

// Command runs one raw command exchange on a device.
func (c *ApiClient) Command(deviceName, command string) (string, error) {
	r, err := req.Post(fmt.Sprintf("%s/command/%s", c.ApiPrefix, deviceName),
		req.BodyJSON(&CommandRequest{Command: command}))
	if err != nil {
		return "", err
	}
	if r.Response().StatusCode != http.StatusOK {
		return "", errors.New(r.Response().Status)
	}
	cmdResp := &CommandResponse{}
	if err = r.ToJSON(cmdResp); err != nil {
		return "", err
	}
	return cmdResp.Response, nil
}

// Acquire runs one acquisition on a device.
func (c *ApiClient) Acquire(deviceName string, acqReq *AcquireRequest) (*device.Result, error) {
	r, err := req.Post(fmt.Sprintf("%s/acquire/%s", c.ApiPrefix, deviceName), req.BodyJSON(acqReq))
	if err != nil {
		return nil, err
	}
	if r.Response().StatusCode != http.StatusOK {
		return nil, errors.New(r.Response().Status)
	}
	result := &device.Result{}
	if err = r.ToJSON(result); err != nil {
		return nil, err
	}
	return result, nil
}
