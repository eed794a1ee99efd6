package opencode

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

var errStreamClosed = errors.New("event stream closed by server")

// StreamOptions controls reconnection of the event stream.
type StreamOptions struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// EventStream consumes the server-sent event feed at {server}/event.
type EventStream struct {
	baseURL    string
	httpClient *http.Client
	opts       StreamOptions
	logger     *zap.Logger
}

// NewEventStream creates a stream for the server at baseURL.
func NewEventStream(client *Client, opts StreamOptions, logger *zap.Logger) *EventStream {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 500 * time.Millisecond
	}
	if opts.MaxInterval < opts.InitialInterval {
		opts.MaxInterval = opts.InitialInterval
	}
	return &EventStream{
		baseURL: client.BaseURL(),
		// No timeout: the response body stays open for the life of the connection
		httpClient: &http.Client{},
		opts:       opts,
		logger:     logger,
	}
}

// Run connects to the event stream and calls deliver for every event, one at a
// time, until ctx is cancelled. Dropped connections are retried with
// exponential backoff. Run returns nil when ctx is cancelled.
func (s *EventStream) Run(ctx context.Context, deliver func(Event)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.opts.InitialInterval
	b.MaxInterval = s.opts.MaxInterval
	b.MaxElapsedTime = 0
	retry := backoff.WithContext(b, ctx)

	operation := func() error {
		err := s.consume(ctx, deliver, retry.Reset)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = errStreamClosed
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		s.logger.Debug("event stream unavailable, retrying",
			zap.String("server", s.baseURL),
			zap.Error(err),
			zap.Duration("retry_in", wait))
	}

	err := backoff.RetryNotify(operation, retry, notify)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// consume handles one connection. onEvent is called after every decoded event.
func (s *EventStream) consume(ctx context.Context, deliver func(Event), onEvent func()) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/event", nil)
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create event request: %w", err))
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream returned status %d", resp.StatusCode)
	}

	s.logger.Info("connected to event stream", zap.String("server", s.baseURL))

	return readEvents(resp.Body, func(data []byte) {
		ev, err := DecodeEvent(data)
		if err != nil {
			s.logger.Warn("skipping malformed event", zap.Error(err))
			return
		}
		onEvent()
		deliver(ev)
	})
}

// readEvents splits a text/event-stream body into data payloads. Multi-line
// data fields are joined with newlines; comments and other fields are ignored.
func readEvents(r io.Reader, fn func(data []byte)) error {
	reader := bufio.NewReader(r)
	var data []byte
	pending := false

	for {
		line, err := reader.ReadBytes('\n')
		if len(line) > 0 {
			line = bytes.TrimRight(line, "\r\n")
			switch {
			case len(line) == 0:
				if pending {
					fn(data)
				}
				data = data[:0]
				pending = false
			case line[0] == ':':
				// comment / keepalive
			case bytes.HasPrefix(line, []byte("data:")):
				value := bytes.TrimPrefix(line[len("data:"):], []byte(" "))
				if pending {
					data = append(data, '\n')
				}
				data = append(data, value...)
				pending = true
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				return errStreamClosed
			}
			return err
		}
	}
}
