package query

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"energy-insights/internal/fetcher"
)

type stubGenerator struct {
	calls atomic.Int32
	fn    func(ctx context.Context, prompt string) ([]byte, error)
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) ([]byte, error) {
	s.calls.Add(1)
	return s.fn(ctx, prompt)
}

func reply(body string) *stubGenerator {
	return &stubGenerator{fn: func(context.Context, string) ([]byte, error) { return []byte(body), nil }}
}

func TestEmptyQueryDoesNotSubmit(t *testing.T) {
	gen := reply(`{}`)
	r := NewResolver(gen, zerolog.Nop())
	for _, prompt := range []string{"", "   \t"} {
		if _, err := r.Submit(context.Background(), prompt); !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("expected ErrEmptyQuery for %q, got %v", prompt, err)
		}
	}
	if gen.calls.Load() != 0 {
		t.Fatal("empty prompt must not reach the endpoint")
	}
	if r.State() != StateIdle {
		t.Fatalf("state = %s, want idle", r.State())
	}
}

func TestFailuresFallBackToSingleCard(t *testing.T) {
	cases := []struct {
		name      string
		handler   http.HandlerFunc
		closed    bool
		wantTitle string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			wantTitle: errorTitle,
		},
		{
			name:      "network failure",
			closed:    true,
			wantTitle: errorTitle,
		},
		{
			name: "empty object",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{}`)
			},
			wantTitle: notRelevantTitle,
		},
		{
			name: "unparseable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `<html>`)
			},
			wantTitle: errorTitle,
		},
		{
			name: "unknown display type",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"displayConfig":{"displayType":"table","cards":[]}}`)
			},
			wantTitle: notRelevantTitle,
		},
		{
			name: "chart without payload",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"displayConfig":{"displayType":"chart","cards":[]}}`)
			},
			wantTitle: notRelevantTitle,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			if tc.closed {
				srv.Close()
			} else {
				t.Cleanup(srv.Close)
			}
			client := fetcher.NewClient(fetcher.Options{BaseURL: srv.URL, Timeout: time.Second}, zerolog.Nop())
			r := NewResolver(client, zerolog.Nop())

			res, err := r.Submit(context.Background(), "what is the weather")
			if err != nil {
				t.Fatalf("fallbacks must not surface errors: %v", err)
			}
			if res.State != StateFallbackApplied || r.State() != StateFallbackApplied {
				t.Fatalf("state = %s", res.State)
			}
			cfg := res.Config
			if cfg.DisplayType != DisplayCards || len(cfg.Cards) != 1 || cfg.ChartConfig != nil {
				t.Fatalf("expected exactly one card, got %+v", cfg)
			}
			card := cfg.Cards[0]
			if card.Title != tc.wantTitle || card.Unit != "" || card.Trend != TrendNeutral {
				t.Fatalf("unexpected card %+v", card)
			}
		})
	}
}

func TestResolvedCardsDropChartPayload(t *testing.T) {
	gen := reply(`{"displayConfig":{"displayType":"cards","chartConfig":{"labels":["a"]},"cards":[
		{"title":"Total","value":1234.5,"unit":"kWh","description":"sum","trend":"up"},
		{"title":"PF","value":"0.92","unit":"","description":"avg","trend":"sideways"}]}}`)
	r := NewResolver(gen, zerolog.Nop())

	res, err := r.Submit(context.Background(), "totals")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.State != StateResolved || res.Config.ChartConfig != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if len(res.Config.Cards) != 2 || res.Config.Cards[0].Value != "1234.5" || res.Config.Cards[1].Trend != TrendNeutral {
		t.Fatalf("cards not normalised: %+v", res.Config.Cards)
	}
	if cur, ok := r.Current(); !ok || cur.ID != res.ID {
		t.Fatal("current result should be the settled one")
	}
}

func TestResolvedChartDropsCards(t *testing.T) {
	gen := reply(`{"displayConfig":{"displayType":"chart","cards":[{"title":"x"}],"chartConfig":{
		"type":"bar","title":"Cost by zone",
		"data":{"labels":["A","B"],"datasets":[{"label":"Cost","data":[1,null],"backgroundColor":["#f00","#0f0"]}]}}}}`)
	r := NewResolver(gen, zerolog.Nop())

	res, err := r.Submit(context.Background(), "cost by zone")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	cfg := res.Config
	if cfg.DisplayType != DisplayChart || cfg.Cards != nil || cfg.ChartConfig == nil {
		t.Fatalf("unexpected config %+v", cfg)
	}
	chart := cfg.ChartConfig.Chart()
	if err := chart.Data.Validate(); err != nil {
		t.Fatalf("converted chart invalid: %v", err)
	}
	if chart.Title != "Cost by zone" || len(chart.Data.Labels) != 2 {
		t.Fatalf("labels not lifted: %+v", chart)
	}
	s := chart.Data.Series[0]
	if s.Values[1].Valid || s.Style.Color != "#f00" {
		t.Fatalf("series converted wrongly: %+v", s)
	}
}

func TestSubmitWhileBusyIsNoop(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gen := &stubGenerator{fn: func(context.Context, string) ([]byte, error) {
		close(started)
		<-release
		return []byte(`{}`), nil
	}}
	r := NewResolver(gen, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Submit(context.Background(), "first")
	}()
	<-started

	if _, err := r.Submit(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("expected ErrBusy, got %v", err)
	}
	close(release)
	<-done
	if gen.calls.Load() != 1 {
		t.Fatalf("busy submission must not reach the endpoint, got %d calls", gen.calls.Load())
	}
}

func TestClearDiscardsResult(t *testing.T) {
	r := NewResolver(reply(`{}`), zerolog.Nop())
	if _, err := r.Submit(context.Background(), "anything"); err != nil {
		t.Fatalf("submit: %v", err)
	}
	r.Clear()
	if _, ok := r.Current(); ok {
		t.Fatal("clear should drop the result")
	}
	if r.State() != StateIdle {
		t.Fatalf("state = %s, want idle", r.State())
	}
}

func TestClearDuringFlightIgnoresLateResult(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var once sync.Once
	gen := &stubGenerator{fn: func(context.Context, string) ([]byte, error) {
		once.Do(func() {
			close(started)
			<-release
		})
		return nil, fetcher.ErrTransport
	}}
	r := NewResolver(gen, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Submit(context.Background(), "slow")
	}()
	<-started
	r.Clear()

	if _, err := r.Submit(context.Background(), "second"); !errors.Is(err, ErrBusy) {
		t.Fatalf("submit after clear should wait for the outstanding request, got %v", err)
	}
	if gen.calls.Load() != 1 {
		t.Fatalf("expected one outstanding request, got %d", gen.calls.Load())
	}

	close(release)
	<-done

	if r.State() != StateIdle {
		t.Fatalf("late completion changed state to %s", r.State())
	}
	if _, ok := r.Current(); ok {
		t.Fatal("late completion should not be displayed")
	}
	if _, err := r.Submit(context.Background(), "third"); err != nil {
		t.Fatalf("submit after the request settled: %v", err)
	}
}
