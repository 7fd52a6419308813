// Package console is an external debug collaborator: a TCP server that
// hands out JSON snapshots of a live registry on request. It depends
// only on ecsvault.SnapshotSupplier, never on *ecsvault.Registry
// directly, so the core storage engine never has to import this
// package back.
package console

import (
	"bufio"
	"encoding/json"
	"net"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/thornglade/ecsvault"
)

var logger = zap.NewNop().Sugar()

// SetLogger replaces the package-level logger. Pass nil to go back to
// a no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		logger = zap.NewNop().Sugar()
		return
	}
	logger = l.Sugar()
}

// command is a single line of client input.
type command string

const (
	cmdHandshake command = "handshake"
	cmdSnapshot  command = "snapshot"
	cmdLiveview  command = "liveview"
)

// handshakeReply is sent once, immediately after a client connects.
type handshakeReply struct {
	Protocol string `json:"protocol"`
	Version  int    `json:"version"`
}

// Server is a newline-delimited-JSON TCP server exposing a
// SnapshotSupplier for inspection: one JSON object per send.
type Server struct {
	addr     string
	supplier ecsvault.SnapshotSupplier

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
}

// NewServer builds a Server that will answer queries against supplier
// once started.
func NewServer(addr string, supplier ecsvault.SnapshotSupplier) *Server {
	return &Server{addr: addr, supplier: supplier, quit: make(chan struct{})}
}

// ListenAndServe binds addr and serves connections until Close is
// called. Blocks the calling goroutine; callers typically run it in a
// goroutine of their own.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	logger.Infow("console listening", "addr", s.addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
				logger.Warnw("console accept failed", "error", err)
				return err
			}
		}
		s.wg.Add(1)
		go s.handle(conn)
	}
}

// Close stops accepting new connections and waits for in-flight ones
// to finish.
func (s *Server) Close() error {
	close(s.quit)
	s.mu.Lock()
	ln := s.listener
	s.mu.Unlock()
	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	enc := json.NewEncoder(conn)
	if err := enc.Encode(handshakeReply{Protocol: "ecsvault-console", Version: 1}); err != nil {
		logger.Warnw("console handshake write failed", "error", err)
		return
	}

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		switch command(line) {
		case cmdHandshake:
			if err := enc.Encode(handshakeReply{Protocol: "ecsvault-console", Version: 1}); err != nil {
				return
			}
		case cmdSnapshot, cmdLiveview:
			// liveview is a poll-per-line model, not a push stream: the
			// collaborator is explicitly out of core scope, so a client
			// wanting a live view just sends "liveview" repeatedly.
			if err := enc.Encode(s.supplier.Snapshot()); err != nil {
				logger.Warnw("console snapshot write failed", "error", err)
				return
			}
		default:
			if err := enc.Encode(map[string]string{"error": "unknown command"}); err != nil {
				return
			}
		}
	}
}
