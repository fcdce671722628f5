// Package ipc is the daemon's control surface: a unix socket speaking one
// JSON request and one JSON reply per connection.
package ipc

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"time"
)

// DefaultSocketPath is used when the config does not override it.
const DefaultSocketPath = "/tmp/scenevox.sock"

// Request is one control command from scenevox-ctl.
type Request struct {
	Cmd  string   `json:"cmd"`
	Args []string `json:"args,omitempty"`
}

// Response carries the command outcome back to the client. Message is the
// single uniform status string; Lines holds multi-line payloads such as the
// transcript.
type Response struct {
	OK      bool     `json:"ok"`
	Message string   `json:"message,omitempty"`
	Lines   []string `json:"lines,omitempty"`
}

// Handler processes one request. Returned errors become a not-OK Response;
// they never tear the daemon down.
type Handler func(Request) (Response, error)

// StartServer listens on socketPath and serves each connection with handler.
// A stale socket file from a previous run is removed first.
func StartServer(socketPath string, handler Handler) (net.Listener, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	os.Remove(socketPath)

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("listen: %w", err)
	}

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handleConn(conn, handler)
		}
	}()

	return ln, nil
}

func handleConn(conn net.Conn, handler Handler) {
	defer conn.Close()

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		return
	}

	resp, err := handler(req)
	if err != nil {
		resp = Response{OK: false, Message: err.Error()}
	}
	_ = json.NewEncoder(conn).Encode(resp)
}

// Send dials the daemon socket, sends one request and waits for the reply.
func Send(socketPath string, req Request, timeout time.Duration) (Response, error) {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute // remote calls behind a command can be slow
	}

	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(timeout))

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return Response{}, err
	}

	var resp Response
	if err := json.NewDecoder(conn).Decode(&resp); err != nil {
		return Response{}, err
	}
	return resp, nil
}
