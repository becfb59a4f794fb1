// Package ipc is the daemon's local control channel: a unix socket
// carrying one JSON command per connection, answered with one JSON
// reply. triptalk-ctl is the only intended client.
package ipc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
)

const SocketPath = "/tmp/triptalk.sock"

// Command names understood by the daemon.
const (
	CmdStart  = "start"
	CmdStop   = "stop"
	CmdReset  = "reset"
	CmdStatus = "status"
	CmdSay    = "say"
)

type ControlMessage struct {
	Cmd string `json:"cmd"`
	Arg string `json:"arg,omitempty"`
}

type Reply struct {
	Ok  bool   `json:"ok"`
	Msg string `json:"msg,omitempty"`
}

// StartServer listens on the control socket and calls handler for each
// received command; the returned Reply is written back to the client.
func StartServer(handler func(ControlMessage) Reply) error {
	os.Remove(SocketPath)

	ln, err := net.Listen("unix", SocketPath)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go serve(ln, handler)

	return nil
}

// serve accepts until the listener is closed. Transient accept errors
// are skipped; a closed listener ends the loop.
func serve(ln net.Listener, handler func(ControlMessage) Reply) {
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		go handleConn(conn, handler)
	}
}

func handleConn(conn net.Conn, handler func(ControlMessage) Reply) {
	defer conn.Close()

	var msg ControlMessage
	if err := json.NewDecoder(conn).Decode(&msg); err != nil {
		return
	}
	json.NewEncoder(conn).Encode(handler(msg))
}

// Send delivers one command to a running daemon and returns its reply.
func Send(msg ControlMessage) (Reply, error) {
	conn, err := net.Dial("unix", SocketPath)
	if err != nil {
		return Reply{}, err
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(msg); err != nil {
		return Reply{}, err
	}

	var rep Reply
	if err := json.NewDecoder(conn).Decode(&rep); err != nil {
		return Reply{}, err
	}
	return rep, nil
}
