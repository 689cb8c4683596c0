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

package control

import (
	"fmt"
	"net"
	"time"

	"jinr.ru/greenlab/go-capa/pkg/config"
	"jinr.ru/greenlab/go-capa/pkg/layers"
	"jinr.ru/greenlab/go-capa/pkg/log"
)

const (
	readChunkSize = 4096
	// drainReadTimeout bounds each read while draining stale bytes and
	// the single opportunistic read after the settle interval.
	drainReadTimeout = 10 * time.Millisecond
)

// ControlConn is a live connection to the command port of a controller.
// At most one command may be in flight at a time, the caller serializes
// exchanges. No exchange is ever retried internally.
type ControlConn struct {
	conn   net.Conn
	settle time.Duration
}

// Dial connects to the command port and drains whatever greeting bytes the
// controller has already queued, so the first exchange starts clean.
func Dial(host string, port int, timeout time.Duration) (*ControlConn, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, ErrConnection{Op: "connect", Err: err}
	}
	log.Debug("Connected to control port: %s", addr)
	c := NewControlConn(conn)
	if err := c.drain(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewControlConn wraps an already connected transport. Dial is the usual
// entry point, this constructor exists for transports set up elsewhere.
func NewControlConn(conn net.Conn) *ControlConn {
	return &ControlConn{
		conn:   conn,
		settle: config.SettleInterval,
	}
}

// drain reads and discards everything the transport has buffered. A read
// timeout means the stale bytes are exhausted.
func (c *ControlConn) drain() error {
	time.Sleep(c.settle)
	buf := make([]byte, readChunkSize)
	for {
		c.conn.SetReadDeadline(time.Now().Add(drainReadTimeout))
		n, err := c.conn.Read(buf)
		if err != nil {
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				return nil
			}
			return ErrConnection{Op: "drain", Err: err}
		}
		log.Debug("Discarded %d stale bytes from control port", n)
	}
}

// Command sends one command and decodes the reply. On success the
// parameter text between the echoed command and the OK marker is returned.
// The reply carries no terminator, so after writing the command we wait
// the settle interval and take whatever has arrived as the full reply.
func (c *ControlConn) Command(cmd string) (string, error) {
	cmd = layers.StripCRLF(cmd)
	if _, err := c.conn.Write(layers.EncodeCommand(cmd)); err != nil {
		return "", ErrConnection{Op: "write", Cmd: cmd, Err: err}
	}
	time.Sleep(c.settle)

	c.conn.SetReadDeadline(time.Now().Add(drainReadTimeout))
	buf := make([]byte, readChunkSize)
	n, err := c.conn.Read(buf)
	if err != nil {
		if nerr, ok := err.(net.Error); !ok || !nerr.Timeout() {
			return "", ErrConnection{Op: "read", Cmd: cmd, Err: err}
		}
	}
	log.Debug("Control exchange: command: %s reply: %q", cmd, buf[:n])
	return layers.DecodeResponse(buf[:n], cmd)
}

// Close closes the underlying transport.
func (c *ControlConn) Close() error {
	return c.conn.Close()
}
