// SPDX-License-Identifier: Unlicense OR MIT

// Package ipc implements PointBlank's control socket of spec.md §4.8:
// a local-domain stream socket accepting up to MaxClients concurrent
// connections, one acceptor goroutine and one worker goroutine per
// client, with every effect on core state funneled through a
// multi-producer Commands channel into the event loop — socket
// handlers never mutate core state directly, per §5.
package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxClients bounds concurrent control-socket connections.
const MaxClients = 32

// SocketPath resolves the control socket location per spec.md §6:
// $XDG_CONFIG_HOME/pblank/pointblank.sock, falling back to
// $HOME/.config/pblank/… and finally /tmp/pblank/….
func SocketPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pblank", "pointblank.sock")
	}
	if home := os.Getenv("HOME"); home != "" {
		return filepath.Join(home, ".config", "pblank", "pointblank.sock")
	}
	return filepath.Join(os.TempDir(), "pblank", "pointblank.sock")
}

// Request is one decoded control-socket line, either a flat command or
// a JSON-RPC object, normalized to the same shape.
type Request struct {
	Verb string
	Args []string
}

// parseLine decodes either `<verb> [args…]` or
// `{"method": "...", "params": [...]}`.
func parseLine(line string) (Request, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Request{}, fmt.Errorf("ipc: empty request")
	}
	if line[0] == '{' {
		var rpc struct {
			Method string        `json:"method"`
			Params []interface{} `json:"params"`
		}
		if err := json.Unmarshal([]byte(line), &rpc); err != nil {
			return Request{}, fmt.Errorf("ipc: invalid json-rpc: %w", err)
		}
		args := make([]string, 0, len(rpc.Params))
		for _, p := range rpc.Params {
			args = append(args, fmt.Sprint(p))
		}
		return Request{Verb: rpc.Method, Args: args}, nil
	}
	fields := strings.Fields(line)
	return Request{Verb: fields[0], Args: fields[1:]}, nil
}

// Response is a flat OK/ERROR reply, serialized as
// "OK|message|json-data\n" or "ERROR|message\n".
type Response struct {
	OK      bool
	Message string
	JSON    string
}

func (r Response) String() string {
	if r.OK {
		return fmt.Sprintf("OK|%s|%s\n", r.Message, r.JSON)
	}
	return fmt.Sprintf("ERROR|%s\n", r.Message)
}

// Command is a decoded request handed to the event loop, paired with a
// reply channel; subscribe/unsubscribe requests carry no reply channel
// and set Subscribe or Unsubscribe instead.
type Command struct {
	Request Request
	Reply   chan<- Response

	ClientID   uint64
	Subscribe  bool
	Unsubscribe bool
}

// Handler processes decoded verbs against core state. Implemented by
// the event-loop side (internal/xconn), never by the socket package
// itself.
type Handler interface {
	Handle(Command) Response
}

// Server owns the listener and the client set.
type Server struct {
	log      *logrus.Logger
	listener net.Listener
	commands chan Command

	mu        sync.Mutex
	clients   map[uint64]*client
	nextID    uint64
	broadcast chan string

	wg sync.WaitGroup
}

type client struct {
	id     uint64
	conn   net.Conn
	events chan string

	subscribed bool // guarded by Server.mu
}

// NewServer binds the control socket at path with mode 0600, creating
// its parent directory if needed.
func NewServer(path string, log *logrus.Logger) (*Server, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("ipc: mkdir socket dir: %w", err)
	}
	_ = os.Remove(path) // stale socket from a prior unclean shutdown

	ln, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("ipc: listen: %w", err)
	}
	if err := os.Chmod(path, 0600); err != nil {
		ln.Close()
		return nil, fmt.Errorf("ipc: chmod socket: %w", err)
	}

	return &Server{
		log:       log,
		listener:  ln,
		commands:  make(chan Command, 64), // MPSC into the event loop
		clients:   make(map[uint64]*client),
		broadcast: make(chan string, 256),
	}, nil
}

// Commands returns the channel the event loop drains requests from.
func (s *Server) Commands() <-chan Command { return s.commands }

// Broadcast queues an event line for delivery to every subscribed
// client.
func (s *Server) Broadcast(line string) {
	select {
	case s.broadcast <- line:
	default:
		s.log.Warn("ipc: broadcast queue full, dropping event")
	}
}

// Serve runs the acceptor loop until the listener is closed. Run it in
// its own goroutine.
func (s *Server) Serve() {
	go s.broadcastLoop()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return // listener closed: shutdown in progress
		}
		s.mu.Lock()
		n := len(s.clients)
		s.mu.Unlock()
		if n >= MaxClients {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go s.serveClient(conn)
	}
}

func (s *Server) broadcastLoop() {
	for line := range s.broadcast {
		s.mu.Lock()
		for _, c := range s.clients {
			if !c.subscribed {
				continue
			}
			select {
			case c.events <- line:
			default:
			}
		}
		s.mu.Unlock()
	}
}

func (s *Server) serveClient(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	s.mu.Lock()
	s.nextID++
	id := s.nextID
	c := &client{id: id, conn: conn, events: make(chan string, 64)}
	s.clients[id] = c
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.clients, id)
		s.mu.Unlock()
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for line := range c.events {
			if _, err := conn.Write([]byte(line)); err != nil {
				return
			}
		}
	}()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		req, err := parseLine(scanner.Text())
		if err != nil {
			conn.Write([]byte(Response{OK: false, Message: err.Error()}.String()))
			continue
		}

		switch strings.ToLower(req.Verb) {
		case "subscribe":
			s.mu.Lock()
			c.subscribed = true
			s.mu.Unlock()
			s.commands <- Command{Request: req, ClientID: id, Subscribe: true}
			conn.Write([]byte(Response{OK: true, Message: "subscribed"}.String()))
			continue
		case "unsubscribe":
			s.mu.Lock()
			c.subscribed = false
			s.mu.Unlock()
			s.commands <- Command{Request: req, ClientID: id, Unsubscribe: true}
			conn.Write([]byte(Response{OK: true, Message: "unsubscribed"}.String()))
			continue
		}

		reply := make(chan Response, 1)
		s.commands <- Command{Request: req, Reply: reply, ClientID: id}
		resp := <-reply
		conn.Write([]byte(resp.String()))
	}

	close(c.events)
	<-done
}

// Close stops accepting new connections and shuts down existing
// client workers, with a short grace period for in-flight writes.
func (s *Server) Close() error {
	err := s.listener.Close()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(500 * time.Millisecond):
		s.mu.Lock()
		for _, c := range s.clients {
			c.conn.Close()
		}
		s.mu.Unlock()
		<-done
	}
	close(s.broadcast)
	return err
}
