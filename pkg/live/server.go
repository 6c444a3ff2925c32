package live

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/reactor/pkg/host"
	"github.com/vango-dev/reactor/pkg/render"
	"github.com/vango-dev/reactor/pkg/telemetry"
	"github.com/vango-dev/reactor/pkg/vdom"
)

const (
	sendBuffer      = 64
	writeWait       = 10 * time.Second
	shutdownTimeout = 5 * time.Second
)

// ErrStopped is returned for work submitted after Run has returned.
var ErrStopped = errors.New("live: server stopped")

// Server renders one root component and streams its host ops to browsers.
type Server struct {
	root *vdom.Component
	tree *host.Tree

	logger    *slog.Logger
	metrics   *telemetry.Metrics
	gatherer  prometheus.Gatherer
	observers []render.Observer
	title     string
	origins   []string

	renderer *render.Renderer
	upgrader websocket.Upgrader
	router   chi.Router

	tasks   chan func()
	ready   chan struct{}
	stopped chan struct{}

	// Owned by the event loop.
	clients map[*client]struct{}
	pending []host.Op
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// New creates a server for root. Call Run to start it.
func New(root *vdom.Component, opts ...Option) *Server {
	s := &Server{
		root:    root,
		tree:    host.NewTree(),
		logger:  slog.Default(),
		title:   root.DisplayName(),
		tasks:   make(chan func()),
		ready:   make(chan struct{}),
		stopped: make(chan struct{}),
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	var ops render.HostOps = s.tree
	observers := s.observers
	if s.metrics != nil {
		ops = telemetry.InstrumentHost(s.tree, s.metrics)
		observers = append(slices.Clone(observers), s.metrics)
	}
	rendererOpts := []render.Option{render.WithLogger(s.logger)}
	if len(observers) > 0 {
		rendererOpts = append(rendererOpts, render.WithObserver(render.MultiObserver(observers...)))
	}
	s.renderer = render.New(ops, rendererOpts...)

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler serving the page, the socket and metrics.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Tree returns the host tree. It must only be read through Do while the
// server runs.
func (s *Server) Tree() *host.Tree {
	return s.tree
}

// Ready is closed once the root component has mounted.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Run mounts the root component and runs the event loop until ctx is done.
// It must be called once.
func (s *Server) Run(ctx context.Context) error {
	defer close(s.stopped)

	cancel := s.tree.Subscribe(func(op host.Op) {
		s.pending = append(s.pending, op)
	})
	defer cancel()

	inst, err := s.renderer.Render(s.root, s.tree.Root())
	if err != nil {
		return err
	}
	s.pending = nil
	close(s.ready)
	s.logger.Info("live root mounted", "component", s.root.DisplayName())

	for {
		select {
		case <-ctx.Done():
			inst.Unmount()
			for c := range s.clients {
				s.drop(c)
			}
			s.logger.Info("live event loop stopped")
			return nil
		case task := <-s.tasks:
			s.runTask(task)
			s.flush()
		}
	}
}

func (s *Server) runTask(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("panic in event loop", "panic", fmt.Sprint(rec))
		}
	}()
	task()
}

// Do runs fn on the event loop and waits for it to finish. Ops produced
// by fn are broadcast before the next task runs.
func (s *Server) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}
	select {
	case s.tasks <- task:
	case <-s.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	// An accepted task always runs to completion.
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dispatch delivers an event to the node with the given id on the event
// loop and returns the dispatch error, if any.
func (s *Server) Dispatch(ctx context.Context, ev Event) error {
	var dispatchErr error
	if err := s.Do(ctx, func() { dispatchErr = s.dispatch(ev) }); err != nil {
		return err
	}
	return dispatchErr
}

func (s *Server) dispatch(ev Event) error {
	err := s.tree.Dispatch(ev.Node, ev.Event, ev.Args...)
	if s.metrics != nil {
		s.metrics.ObserveEvent(ev.Event, err)
	}
	if err != nil {
		s.logger.Warn("event dispatch failed", "node", ev.Node, "event", ev.Event, "error", err)
	}
	return err
}

// flush broadcasts the ops recorded by the last task.
func (s *Server) flush() {
	if len(s.pending) == 0 {
		return
	}
	msg := Message{Type: MessageOps, Ops: s.pending}
	s.pending = nil
	for c := range s.clients {
		s.sendTo(c, msg)
	}
}

func (s *Server) sendTo(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error("encode message", "type", msg.Type, "error", err)
		return
	}
	select {
	case c.send <- data:
	default:
		s.logger.Warn("client too slow, dropping connection")
		s.drop(c)
	}
}

func (s *Server) drop(c *client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.origins) == 0 {
		return true
	}
	return slices.Contains(s.origins, r.Header.Get("Origin"))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	go c.writeLoop()

	// Registration and teardown outlive the request context.
	bg := context.Background()
	err = s.Do(bg, func() {
		s.clients[c] = struct{}{}
		s.sendTo(c, Message{Type: MessageInit, Ops: s.tree.Snapshot()})
	})
	if err != nil {
		close(c.send)
		return
	}
	s.logger.Debug("client connected", "remote", r.RemoteAddr, "request_id", middleware.GetReqID(r.Context()))

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("client read failed", "error", err)
			}
			break
		}
		err := s.Do(bg, func() {
			if err := s.dispatch(ev); err != nil {
				s.sendTo(c, Message{Type: MessageError, Error: err.Error()})
			}
		})
		if err != nil {
			break
		}
	}

	_ = s.Do(bg, func() { s.drop(c) })
	s.logger.Debug("client disconnected", "remote", r.RemoteAddr)
}

func (c *client) writeLoop() {
	defer c.conn.Close()
	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			// Keep draining so the event loop never blocks on this client.
			for range c.send {
			}
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// ListenAndServe runs the event loop and an HTTP server on addr until ctx
// is done, then shuts both down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- s.Run(ctx) }()
	select {
	case <-s.ready:
	case err := <-loopErr:
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	s.logger.Info("live server listening", "addr", addr)

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	cancel()
	return <-loopErr
}
