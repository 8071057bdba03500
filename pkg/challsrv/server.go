// SPDX-License-Identifier: LGPL-3.0-or-later

package challsrv

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultAddress      = "localhost"
	DefaultPort         = 8080
	DefaultPollInterval = 100 * time.Millisecond
	DefaultIOTimeout    = 10 * time.Second
)

var (
	ErrAlreadyListening = errors.New("server is already listening")
	ErrServerStopped    = errors.New("server is stopped")
)

// State is the lifecycle position of a Server.
type State int32

const (
	Running State = iota
	ShuttingDown
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case ShuttingDown:
		return "shutting down"
	case Stopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Option configures a Server.
type Option func(*Server)

// WithAddress sets the bind address.
func WithAddress(address string) Option {
	return func(s *Server) {
		s.address = address
	}
}

// WithPort sets the bind port; 0 picks a free one.
func WithPort(port int) Option {
	return func(s *Server) {
		s.port = port
	}
}

// WithDirectory sets the initial served directory. Defaults to the working
// directory of the process.
func WithDirectory(dir string) Option {
	return func(s *Server) {
		s.dir = dir
	}
}

// WithPollInterval bounds each wait for a connection, and therefore how long a
// directory switch or a shutdown can go unnoticed.
func WithPollInterval(d time.Duration) Option {
	return func(s *Server) {
		s.poll = d
	}
}

// WithIOTimeout bounds reading a request and writing its response.
func WithIOTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.ioTimeout = d
	}
}

// WithLogger sets the logger; logs are discarded otherwise.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// Server is the challenge file server. The served directory is owned by the
// service loop; other goroutines may only observe it through Directory.
type Server struct {
	ep        *Endpoint
	address   string
	port      int
	poll      time.Duration
	ioTimeout time.Duration
	log       zerolog.Logger

	dir      string
	dirView  atomic.Pointer[string]
	state    atomic.Int32
	listener net.Listener
	closing  sync.Once
}

// New creates a Server controlled through ep. A nil ep means the directory
// can never be switched.
func New(ep *Endpoint, opts ...Option) (*Server, error) {
	s := &Server{
		ep:        ep,
		address:   DefaultAddress,
		port:      DefaultPort,
		poll:      DefaultPollInterval,
		ioTimeout: DefaultIOTimeout,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("working directory: %w", err)
		}
		s.dir = wd
	}
	dir, err := servableDir(s.dir)
	if err != nil {
		return nil, err
	}
	s.setDir(dir)

	if s.poll <= 0 {
		s.poll = DefaultPollInterval
	}
	if s.ioTimeout <= 0 {
		s.ioTimeout = DefaultIOTimeout
	}

	return s, nil
}

// Start serves ep's directories on address:port until ctx is done or the
// process receives SIGINT or SIGTERM.
func Start(ctx context.Context, ep *Endpoint, address string, port int, opts ...Option) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := New(ep, append(opts, WithAddress(address), WithPort(port))...)
	if err != nil {
		return err
	}
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Listen binds the listening socket.
func (s *Server) Listen(ctx context.Context) error {
	if s.listener != nil {
		return ErrAlreadyListening
	}
	if s.State() == Stopped {
		return ErrServerStopped
	}

	var lc net.ListenConfig
	l, err := lc.Listen(ctx, "tcp", net.JoinHostPort(s.address, strconv.Itoa(s.port)))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = l

	s.log.Info().Stringer("addr", l.Addr()).Str("dir", s.dir).Msg("challenge server listening")
	return nil
}

// Addr is the bound address, or nil before Listen.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Directory is the directory currently served.
func (s *Server) Directory() string {
	return *s.dirView.Load()
}

// State reports where the server is in its lifecycle.
func (s *Server) State() State {
	return State(s.state.Load())
}

// Serve runs the service loop until ctx is done, binding first if Listen was
// not called. Shutdown is not an error: Serve returns nil once the closed
// listener is observed.
func (s *Server) Serve(ctx context.Context) error {
	if s.State() == Stopped {
		return ErrServerStopped
	}
	if s.listener == nil {
		if err := s.Listen(ctx); err != nil {
			return err
		}
	}

	stop := context.AfterFunc(ctx, s.shutdown)
	defer stop()
	defer s.state.Store(int32(Stopped))

	for {
		s.checkControl()

		if ctx.Err() != nil {
			s.shutdown()
		}

		if err := s.serveOne(ctx); err != nil {
			if errors.Is(err, net.ErrClosed) {
				s.log.Info().Msg("listener closed, challenge server stopped")
				return nil
			}
			s.shutdown()
			return err
		}
	}
}

// shutdown closes the listener, which the loop observes on its next accept.
func (s *Server) shutdown() {
	s.closing.Do(func() {
		s.state.CompareAndSwap(int32(Running), int32(ShuttingDown))
		if err := s.listener.Close(); err != nil {
			s.log.Debug().Err(err).Msg("close listener")
		}
	})
}

func (s *Server) checkControl() {
	req, ok := s.ep.poll()
	if !ok {
		return
	}
	req.ack <- s.switchTo(req.dir)
}

func (s *Server) switchTo(dir string) bool {
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(s.dir, dir)
	}

	dir, err := servableDir(dir)
	if err != nil {
		s.log.Error().Err(err).Msg("directory switch rejected")
		return false
	}

	s.setDir(dir)
	s.log.Info().Str("dir", dir).Stringer("addr", s.Addr()).Msg("serving directory")
	return true
}

func (s *Server) setDir(dir string) {
	s.dir = dir
	s.dirView.Store(&dir)
}

func servableDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s: not a directory", abs)
	}
	return abs, nil
}

type deadliner interface {
	SetDeadline(time.Time) error
}

// serveOne waits up to the poll interval for a connection and answers one
// request on it. A poll timeout is not an error.
func (s *Server) serveOne(ctx context.Context) error {
	if d, ok := s.listener.(deadliner); ok {
		if err := d.SetDeadline(time.Now().Add(s.poll)); err != nil {
			return err
		}
	}

	conn, err := s.listener.Accept()
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil
		}
		return err
	}

	s.handle(ctx, conn)
	return nil
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	log := s.log.With().Stringer("remote", conn.RemoteAddr()).Logger()
	if err := conn.SetDeadline(time.Now().Add(s.ioTimeout)); err != nil {
		log.Debug().Err(err).Msg("set connection deadline")
		return
	}

	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		log.Debug().Err(err).Msg("read request")
		return
	}
	req.RemoteAddr = conn.RemoteAddr().String()
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	fileHandler{dir: s.dir}.ServeHTTP(rec, req)

	resp := rec.Result()
	resp.Request = req
	resp.Close = true
	if resp.ContentLength < 0 {
		resp.ContentLength = int64(rec.Body.Len())
	}
	if err := resp.Write(conn); err != nil {
		log.Debug().Err(err).Msg("write response")
		return
	}

	log.Info().
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Str("file", LastSegment(req.URL.Path)).
		Int("status", resp.StatusCode).
		Msg("served")
}
