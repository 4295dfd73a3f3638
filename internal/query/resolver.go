package query

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"energy-insights/internal/fetcher"
	"energy-insights/internal/metrics"
)

var (
	// ErrEmptyQuery is returned when the prompt is blank; nothing is sent.
	ErrEmptyQuery = errors.New("empty query")
	// ErrBusy is returned while an earlier submission is still outstanding.
	ErrBusy = errors.New("query already in flight")
)

// State is the lifecycle stage of the current query.
type State int

const (
	StateIdle State = iota
	StateSubmitted
	StateResolved
	StateFallbackApplied
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitted:
		return "submitted"
	case StateResolved:
		return "resolved"
	case StateFallbackApplied:
		return "fallback_applied"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON and YAML.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a state name.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{StateIdle, StateSubmitted, StateResolved, StateFallbackApplied} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown query state %q", text)
}

// Result is the settled outcome of one submission.
type Result struct {
	ID     uuid.UUID     `json:"id" yaml:"id"`
	Query  string        `json:"query" yaml:"query"`
	State  State         `json:"state" yaml:"state"`
	Config DisplayConfig `json:"displayConfig" yaml:"displayConfig"`
}

// Resolver turns free-text prompts into a DisplayConfig. One submission may be
// outstanding at a time.
type Resolver struct {
	gen    fetcher.Generator
	logger zerolog.Logger

	mu      sync.Mutex
	state   State
	query   string
	current *Result
	epoch   uint64
	// busy stays set until the outstanding request returns, even across Clear.
	busy bool
}

// NewResolver wires a resolver to the generation endpoint.
func NewResolver(gen fetcher.Generator, logger zerolog.Logger) *Resolver {
	return &Resolver{gen: gen, logger: logger.With().Str("component", "query").Logger()}
}

// Submit sends prompt and waits for the outcome. Only ErrEmptyQuery and
// ErrBusy are returned; every other failure settles as a fallback card.
func (r *Resolver) Submit(ctx context.Context, prompt string) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, ErrEmptyQuery
	}

	r.mu.Lock()
	if r.busy {
		r.mu.Unlock()
		return Result{}, ErrBusy
	}
	r.busy = true
	r.state = StateSubmitted
	r.query = prompt
	r.current = nil
	epoch := r.epoch
	r.mu.Unlock()

	id := uuid.New()
	log := r.logger.With().Str("query_id", id.String()).Logger()
	log.Debug().Str("prompt", prompt).Msg("submitting query")

	body, err := r.gen.Generate(ctx, prompt)
	cfg, state := Interpret(body, err)

	res := Result{ID: id, Query: prompt, State: state, Config: cfg}
	if state == StateResolved {
		log.Info().Str("display_type", string(cfg.DisplayType)).Msg("query resolved")
		metrics.ObserveQuery(metrics.QueryResolved)
	} else {
		ev := log.Warn().Str("fallback", cfg.Cards[0].Title)
		if err != nil {
			ev = ev.Err(err)
		}
		ev.Msg("query fell back")
		metrics.ObserveQuery(metrics.QueryFallback)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.busy = false
	if r.epoch != epoch {
		log.Debug().Msg("query cleared before it settled")
		return res, nil
	}
	r.state = state
	r.current = &res
	return res, nil
}

// Clear drops the prompt and any displayed result. A submission still in
// flight settles without touching state, and new submissions are refused
// with ErrBusy until it does.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.state = StateIdle
	r.query = ""
	r.current = nil
}

// State returns the current lifecycle stage.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Current returns the settled result, if any.
func (r *Resolver) Current() (Result, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == nil {
		return Result{}, false
	}
	return *r.current, true
}

// Interpret classifies a generation response. A transport error or an
// unparseable body yields the error card; a parseable body without a usable
// displayConfig yields the not-relevant card.
func Interpret(body []byte, err error) (DisplayConfig, State) {
	if err != nil {
		return errorFallback(), StateFallbackApplied
	}

	if !json.Valid(body) {
		return errorFallback(), StateFallbackApplied
	}
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return notRelevantFallback(), StateFallbackApplied
	}

	raw, ok := envelope["displayConfig"]
	if !ok || isNull(raw) {
		return notRelevantFallback(), StateFallbackApplied
	}

	var head struct {
		DisplayType DisplayType     `json:"displayType"`
		ChartConfig json.RawMessage `json:"chartConfig"`
		Cards       json.RawMessage `json:"cards"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return notRelevantFallback(), StateFallbackApplied
	}

	switch head.DisplayType {
	case DisplayChart:
		if isNull(head.ChartConfig) {
			break
		}
		var chart ChartConfig
		if err := json.Unmarshal(head.ChartConfig, &chart); err != nil {
			break
		}
		return DisplayConfig{DisplayType: DisplayChart, ChartConfig: &chart}, StateResolved
	case DisplayCards:
		if isNull(head.Cards) {
			break
		}
		var cards []MetricCard
		if err := json.Unmarshal(head.Cards, &cards); err != nil {
			break
		}
		return DisplayConfig{DisplayType: DisplayCards, Cards: cards}, StateResolved
	}
	return notRelevantFallback(), StateFallbackApplied
}

func isNull(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) == 0 || bytes.Equal(v, []byte("null"))
}
