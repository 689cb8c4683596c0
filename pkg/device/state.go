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
	"fmt"

	"go.etcd.io/bbolt"

	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/log"
)

const (
	BucketNamePrefix = "status_"

	lastStatusKey = "last"
)

// StatusState persists the last known status per device so drift
// warnings survive between invocations. Callers pass the stored snapshot
// into Status.Compare explicitly, there is no implicit process state.
type StatusState struct {
	DB *bbolt.DB
}

func NewStatusState(cfg *config.Config) (*StatusState, error) {
	db, err := bbolt.Open(cfg.StatePath, 0600, nil)
	if err != nil {
		return nil, err
	}
	if err = db.Update(func(tx *bbolt.Tx) error {
		for _, device := range cfg.Devices {
			_, err = tx.CreateBucketIfNotExists([]byte(bucketName(device.Name)))
			if err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}
	return &StatusState{DB: db}, nil
}

func bucketName(deviceName string) string {
	return fmt.Sprintf("%s%s", BucketNamePrefix, deviceName)
}

// Close ...
func (s *StatusState) Close() {
	s.DB.Close()
}

// SetStatus stores the snapshot as the last known status of the device.
func (s *StatusState) SetStatus(deviceName string, status *Status) error {
	log.Debug("Storing status for %s: %s", deviceName, status.Raw)
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return ErrBucketNotFound{Name: bucketName(deviceName)}
		}
		return b.Put([]byte(lastStatusKey), []byte(status.Raw))
	})
}

// GetStatus returns the last known status of the device or nil when none
// has been stored yet.
func (s *StatusState) GetStatus(deviceName string) (*Status, error) {
	var status *Status
	if err := s.DB.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(bucketName(deviceName)))
		if b == nil {
			return ErrBucketNotFound{Name: bucketName(deviceName)}
		}
		raw := b.Get([]byte(lastStatusKey))
		if raw != nil {
			status = ParseStatus(string(raw))
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return status, nil
}
