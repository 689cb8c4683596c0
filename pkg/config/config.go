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
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// DeviceConfig describes one controller: where to reach its command and
// data ports and which sensor is attached to it.
type DeviceConfig struct {
	Name        string `yaml:"name"`
	Host        string `yaml:"host"`
	ControlPort int    `yaml:"controlPort"`
	DataPort    int    `yaml:"dataPort"`
	Sensor      string `yaml:"sensor,omitempty"`
}

type ApiConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

type Config struct {
	LogLevel  string          `yaml:"logLevel"`
	StatePath string          `yaml:"statePath"`
	Devices   []*DeviceConfig `yaml:"devices"`
	Api       *ApiConfig      `yaml:"api"`
	filepath  string
}

func (c *Config) Persist(overwrite bool) error {
	if _, err := os.Stat(c.filepath); err == nil && !overwrite {
		return ErrConfigFileExists{Path: c.filepath}
	}

	data, err := yaml.Marshal(&c)
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.filepath)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	return ioutil.WriteFile(c.filepath, data, 0644)
}

// Load reads the config file in place. A missing file is not an error,
// the defaults stay as they are.
func (c *Config) Load() error {
	data, err := ioutil.ReadFile(c.filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) GetDeviceByName(name string) (*DeviceConfig, error) {
	for _, d := range c.Devices {
		if d.Name == name {
			return d, nil
		}
	}
	return nil, ErrDeviceNotFound{Name: name}
}

func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, ConfigFile)
}

func DefaultStatePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return filepath.Join(home, ConfigDir, StateFile)
}

func NewDefaultConfig() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		StatePath: DefaultStatePath(),
		Devices: []*DeviceConfig{
			{
				Name:        DefaultDeviceName,
				Host:        DefaultHost,
				ControlPort: DefaultControlPort,
				DataPort:    DefaultDataPort,
				Sensor:      DefaultSensor,
			},
		},
		Api: &ApiConfig{
			Address: DefaultApiAddress,
			Port:    DefaultApiPort,
		},
		filepath: DefaultConfigPath(),
	}
}
