// Package remote accepts player commands over HTTP so that a process other
// than the terminal can drive a game. Commands are only held in an Inbox; the
// game loop drains it between turns, so nothing here touches game state.
//
// The API is:
//
//	POST /commands  - {"input": "walk north"} queues one line of input.
//	GET  /status    - reports how many lines are waiting.
//
// When the Inbox has a secret, both endpoints require an
// "Authorization: Bearer" header carrying a token made by GenerateToken with
// the same secret.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/dekarrin/cmdq/internal/command"
	"github.com/dekarrin/cmdq/internal/cqerrors"
	"github.com/dekarrin/cmdq/internal/version"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// DefaultLimit is the most lines an Inbox holds when no limit is given.
const DefaultLimit = 64

var (
	// ErrInboxFull is returned when a line is added to an Inbox that already
	// holds as many as it can.
	ErrInboxFull = errors.New("inbox is full")

	// ErrBodyUnmarshal is returned when a request body is not valid JSON.
	ErrBodyUnmarshal = errors.New("malformed data in request")
)

// CommandModel is the body of a POST /commands request.
type CommandModel struct {
	Input string `json:"input"`
}

// QueuedModel is the body of a successful POST /commands response.
type QueuedModel struct {
	Input   string `json:"input"`
	Pending int    `json:"pending"`
}

// StatusModel is the body of a GET /status response.
type StatusModel struct {
	Pending int    `json:"pending"`
	Limit   int    `json:"limit"`
	Version string `json:"version"`
}

// Options are optional parameters for creating an Inbox.
type Options struct {
	// Limit is the most lines the Inbox holds before refusing more. If less
	// than 1, DefaultLimit is used.
	Limit int

	// Logger receives a line for every request. If nil, nothing is logged.
	Logger *zerolog.Logger

	// Secret is the key bearer tokens must be signed with. If empty, requests
	// are not checked for a token.
	Secret []byte

	// UnauthDelay is how long to wait before refusing a request that has no
	// valid token.
	UnauthDelay time.Duration
}

// Inbox holds lines of player input received over HTTP until they are
// drained. It is safe for concurrent use. Use New to create one.
type Inbox struct {
	mtx   sync.Mutex
	lines []string
	limit int

	log     zerolog.Logger
	router  chi.Router
	httpSrv *http.Server
}

// New creates a new, empty Inbox.
func New(opts Options) *Inbox {
	in := &Inbox{
		limit: opts.Limit,
		log:   zerolog.Nop(),
	}
	if in.limit < 1 {
		in.limit = DefaultLimit
	}
	if opts.Logger != nil {
		in.log = opts.Logger.With().Str("component", "remote").Logger()
	}
	in.router = in.newRouter(opts.Secret, opts.UnauthDelay)
	return in
}

// Add puts a line at the back of the inbox. It returns ErrInboxFull if there
// is no room.
func (in *Inbox) Add(line string) (pending int, err error) {
	in.mtx.Lock()
	defer in.mtx.Unlock()

	if len(in.lines) >= in.limit {
		return len(in.lines), ErrInboxFull
	}
	in.lines = append(in.lines, line)
	return len(in.lines), nil
}

// Drain removes and returns every line in the inbox, oldest first. It returns
// nil if there are none.
func (in *Inbox) Drain() []string {
	in.mtx.Lock()
	defer in.mtx.Unlock()

	if len(in.lines) == 0 {
		return nil
	}
	lines := in.lines
	in.lines = nil
	return lines
}

// Len returns the number of lines waiting in the inbox.
func (in *Inbox) Len() int {
	in.mtx.Lock()
	defer in.mtx.Unlock()
	return len(in.lines)
}

// Router returns the handler serving the inbox's API.
func (in *Inbox) Router() http.Handler {
	return in.router
}

// Serve listens on addr and serves the inbox's API until ctx is done, at
// which point the server is shut down. It always returns a non-nil error; it
// is http.ErrServerClosed after a clean shutdown.
func (in *Inbox) Serve(ctx context.Context, addr string) error {
	in.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           in.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := in.httpSrv.Shutdown(shutdownCtx); err != nil {
			in.log.Error().Err(err).Msg("shutting down")
		}
	}()

	in.log.Info().Str("addr", addr).Msg("accepting remote commands")
	return in.httpSrv.ListenAndServe()
}

func (in *Inbox) newRouter(secret []byte, unauthDelay time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)

	r.Group(func(r chi.Router) {
		if len(secret) > 0 {
			r.Use(in.requireAuth(secret, unauthDelay))
		}
		r.Post("/commands", in.endpoint(in.epPostCommand))
		r.Get("/status", in.endpoint(in.epGetStatus))
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		NotFound().WriteResponse(w)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		MethodNotAllowed(req).WriteResponse(w)
	})

	return r
}

func (in *Inbox) epPostCommand(req *http.Request) Result {
	var model CommandModel
	if err := parseJSON(req, &model); err != nil {
		return BadRequest(err.Error(), err.Error())
	}

	line := strings.TrimSpace(model.Input)
	if line == "" {
		return BadRequest("input: property is empty or missing from request", "empty input")
	}

	// catch input the game could never understand now, while the client can
	// still be told about it
	cmd, err := command.Parse(line)
	if err != nil {
		return BadRequest(cqerrors.GameMessage(err), "unparsable input %q: %s", line, err.Error())
	}
	if cmd.Code == command.CodeQuit {
		return BadRequest("QUIT can only be given from the game's own terminal", "remote QUIT refused")
	}

	pending, err := in.Add(line)
	if err != nil {
		return ServiceUnavailable("Too many commands are waiting; try again later", "inbox full at %d", pending)
	}

	return Accepted(QueuedModel{Input: line, Pending: pending}, "queued %q", line)
}

func (in *Inbox) epGetStatus(req *http.Request) Result {
	resp := StatusModel{
		Pending: in.Len(),
		Limit:   in.limit,
		Version: version.Current,
	}
	return OK(resp, "status requested")
}

type endpointFunc func(req *http.Request) Result

func (in *Inbox) endpoint(ep endpointFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		defer in.panicTo500(w, req)
		r := ep(req)

		// if this hasn't been properly created, output error directly and do
		// not try to read properties
		if r.Status == 0 {
			in.logResponse(req, http.StatusInternalServerError, true, "endpoint result was never populated")
			http.Error(w, "An internal server error occurred", http.StatusInternalServerError)
			return
		}

		// pre-call PrepareMarshaledResponse bc if it fails in call to
		// WriteResponse, it will panic.
		if err := r.PrepareMarshaledResponse(); err != nil {
			r = InternalServerError("could not marshal JSON response: " + err.Error())
		}

		in.logResponse(req, r.Status, r.IsErr, r.InternalMsg)
		r.WriteResponse(w)
	}
}

func (in *Inbox) panicTo500(w http.ResponseWriter, req *http.Request) {
	if panicErr := recover(); panicErr != nil {
		r := TextErr(
			http.StatusInternalServerError,
			"An internal server error occurred",
			"panic: %v\nSTACK TRACE: %s", panicErr, string(debug.Stack()),
		)
		in.logResponse(req, r.Status, true, r.InternalMsg)
		r.WriteResponse(w)
	}
}

func (in *Inbox) logResponse(req *http.Request, status int, isErr bool, msg string) {
	ev := in.log.Info()
	if isErr {
		ev = in.log.Error()
	}
	ev.
		Str("remote", req.RemoteAddr).
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", status).
		Msg(msg)
}

// v must be a pointer to a type. Will return error such that
// errors.Is(err, ErrBodyUnmarshal) returns true if it is problem decoding the
// JSON itself.
func parseJSON(req *http.Request, v interface{}) error {
	contentType := req.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(contentType), "application/json") {
		return fmt.Errorf("request content-type is not application/json")
	}

	bodyData, err := io.ReadAll(req.Body)
	if err != nil {
		return fmt.Errorf("could not read request body: %w", err)
	}
	defer func() {
		req.Body.Close()
		req.Body = io.NopCloser(bytes.NewBuffer(bodyData))
	}()

	if err := json.Unmarshal(bodyData, v); err != nil {
		return fmt.Errorf("%w: %s", ErrBodyUnmarshal, err.Error())
	}

	return nil
}
