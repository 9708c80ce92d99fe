// Package submit runs one registration form submit cycle: validate, attach
// the optional file as base64, post the payload and report the outcome.
package submit

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize bounds how much of the endpoint's answer is read.
const maxResponseSize = 1 << 20

// Form is the form being submitted.
type Form interface {
	// CheckValidity reports whether every constraint on the form holds.
	CheckValidity() bool
	// Values returns the named field values at submit time.
	Values() []Field
	// Reset clears the entered values.
	Reset()
	// SetValidated toggles the visible validation feedback.
	SetValidated(bool)
}

// Submitter sends a form to a fixed endpoint.
type Submitter struct {
	endpoint string
	form     Form
	files    FileInput
	notifier Notifier
	client   *http.Client
	logger   *slog.Logger

	inFlight atomic.Bool
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithHTTPClient sets the client used to reach the endpoint.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Submitter) { s.client = c }
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(s *Submitter) { s.logger = l }
}

// WithFileInput sets where the optional attachment comes from.
func WithFileInput(f FileInput) Option {
	return func(s *Submitter) { s.files = f }
}

// New returns a Submitter for form that reports through n.
func New(endpoint string, form Form, n Notifier, opts ...Option) *Submitter {
	s := &Submitter{
		endpoint: endpoint,
		form:     form,
		files:    NoFile{},
		notifier: n,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Submit runs one submit cycle. On success the form is reset and the
// endpoint's result returned; every failure leaves the form untouched and
// has already been shown to the user when Submit returns.
func (s *Submitter) Submit(ctx context.Context) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("submit: ignored, previous submission still running")
		return nil, ErrInFlight
	}
	defer s.inFlight.Store(false)

	if !s.form.CheckValidity() {
		s.notifier.Notify(ctx, incompleteNotice())
		s.form.SetValidated(true)
		return nil, ErrIncomplete
	}

	attempt := uuid.NewString()
	log := s.logger.With("attempt", attempt)

	s.notifier.Notify(ctx, loadingNotice())

	payload := NewPayload(s.form.Values())

	if file, ok := s.files.Selected(); ok {
		if err := attachFile(payload, file); err != nil {
			log.Warn("submit: attachment failed", "file", file.Name, "error", err)
			s.notifier.Notify(ctx, fileNotice())
			return nil, &FileReadError{Name: file.Name, Err: err}
		}
		log.Debug("submit: attachment encoded", "mime", file.Type, "size", len(payload[KeyFileContent]))
	}

	res, err := s.send(ctx, payload)
	if err != nil {
		log.Error("submit: request failed", "endpoint", s.endpoint, "error", err)
		s.notifier.Notify(ctx, connectionNotice())
		return nil, err
	}

	if !res.Success {
		log.Info("submit: rejected", "message", res.Message)
		s.notifier.Notify(ctx, rejectedNotice(res.Message))
		return res, &BusinessError{Message: res.Message}
	}

	log.Info("submit: registered", "id", res.ID)
	s.notifier.Notify(ctx, successNotice(res.ID))
	s.form.Reset()
	s.form.SetValidated(false)
	return res, nil
}

func attachFile(p Payload, f File) error {
	dataURL, err := ReadDataURL(f)
	if err != nil {
		return err
	}
	body, err := DataURLBody(dataURL)
	if err != nil {
		return err
	}
	p.Attach(body, f.Type, f.Name)
	return nil
}

func (s *Submitter) send(ctx context.Context, p Payload) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(p.Encode()))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=UTF-8")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("read body: %w", err)}
	}

	res, err := decodeResult(body)
	if err != nil {
		return nil, &ResponseFormatError{Status: resp.StatusCode, Err: err}
	}
	return res, nil
}

// IsConnectionError reports whether err is a transport or response format failure.
func IsConnectionError(err error) bool {
	var te *TransportError
	var fe *ResponseFormatError
	return errors.As(err, &te) || errors.As(err, &fe)
}
