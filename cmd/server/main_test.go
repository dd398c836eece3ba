package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

// slowServer mimics http.Server: Start returns ErrServerClosed as soon as
// Shutdown begins, while Shutdown keeps draining for a while.
type slowServer struct {
	closing  chan struct{}
	drained  atomic.Bool
	startErr error
}

func newSlowServer() *slowServer {
	return &slowServer{closing: make(chan struct{})}
}

func (s *slowServer) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	<-s.closing
	return http.ErrServerClosed
}

func (s *slowServer) Shutdown(ctx context.Context) error {
	close(s.closing)
	time.Sleep(50 * time.Millisecond)
	s.drained.Store(true)
	return nil
}

func TestServe_WaitsForShutdown(t *testing.T) {
	srv := newSlowServer()
	stop := make(chan os.Signal, 1)
	stop <- syscall.SIGTERM

	var drainedJobs atomic.Bool
	err := serve(srv, stop, time.Second, func(context.Context) { drainedJobs.Store(true) })
	if err != nil {
		t.Fatalf("serve() error = %v", err)
	}
	if !srv.drained.Load() {
		t.Error("serve() returned before Shutdown finished")
	}
	if !drainedJobs.Load() {
		t.Error("drain not called")
	}
}

func TestServe_StartError(t *testing.T) {
	srv := newSlowServer()
	srv.startErr = errors.New("address in use")

	err := serve(srv, make(chan os.Signal), time.Second, func(context.Context) {})
	if !errors.Is(err, srv.startErr) {
		t.Errorf("serve() error = %v, want %v", err, srv.startErr)
	}
}
