package repository

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"WalkSim/internal/domain/models"
	"WalkSim/pkg/cache"
	xhttp "WalkSim/pkg/http"
	pkgkafka "WalkSim/pkg/kafka"
)

func day(i int) time.Time {
	return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

func bars(symbol string, n int) []models.Bar {
	out := make([]models.Bar, n)
	for i := range out {
		out[i] = models.Bar{Symbol: symbol, Date: day(i), Open: 10, High: 11, Low: 9, Close: 10 + float64(i), Volume: 1000}
	}
	return out
}

type fakeStore struct {
	bars  []models.Bar
	err   error
	saved []models.Bar
}

func (f *fakeStore) GetBars(_ context.Context, _ string, lookback int) ([]models.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.bars) > lookback {
		return f.bars[len(f.bars)-lookback:], nil
	}
	return f.bars, nil
}

func (f *fakeStore) SaveBars(_ context.Context, b []models.Bar) error {
	f.saved = append(f.saved, b...)
	return nil
}

func (f *fakeStore) BarsAfter(context.Context, string, time.Time, int) ([]models.Bar, error) {
	return nil, nil
}

type fakeProvider struct {
	bars  []models.Bar
	err   error
	calls int
}

func (f *fakeProvider) GetBars(context.Context, string, int) ([]models.Bar, error) {
	f.calls++
	return f.bars, f.err
}

func TestYahooProviderSkipsNullRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v8/finance/chart/AAPL") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("missing interval")
		}
		_, _ = w.Write([]byte(`{"chart":{"result":[{"timestamp":[1704200400,1704286800,1704373200],
			"indicators":{"quote":[{"open":[1,2,3],"high":[1,2,3],"low":[1,2,3],
			"close":[185.6,null,184.2],"volume":[100,200,300]}]}}],"error":null}}`))
	}))
	defer srv.Close()

	p := NewYahooProvider(xhttp.NewClient(), srv.URL)
	got, err := p.GetBars(context.Background(), "aapl", 10)
	if err != nil {
		t.Fatalf("get bars: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 bars after skipping null close, got %d", len(got))
	}
	if got[0].Symbol != "AAPL" || got[1].Close != 184.2 {
		t.Fatalf("unexpected bars %+v", got)
	}
	if !got[0].Date.Before(got[1].Date) {
		t.Fatalf("bars not ascending")
	}
}

func TestYahooProviderChartError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	p := NewYahooProvider(xhttp.NewClient(), srv.URL)
	if _, err := p.GetBars(context.Background(), "ZZZZ", 10); err == nil || !strings.Contains(err.Error(), "No data found") {
		t.Fatalf("expected chart error, got %v", err)
	}
}

func TestFallbackProviderUsesStoreWhenComplete(t *testing.T) {
	store := &fakeStore{bars: bars("AAPL", 20)}
	ext := &fakeProvider{}
	p := NewFallbackProvider(store, ext)

	got, err := p.GetBars(context.Background(), "AAPL", 10)
	if err != nil || len(got) != 10 {
		t.Fatalf("unexpected %d bars, err %v", len(got), err)
	}
	if ext.calls != 0 {
		t.Fatalf("external provider should not be called")
	}
}

func TestFallbackProviderFetchesAndWritesBack(t *testing.T) {
	store := &fakeStore{bars: bars("AAPL", 3)}
	ext := &fakeProvider{bars: bars("AAPL", 10)}
	p := NewFallbackProvider(store, ext)

	got, err := p.GetBars(context.Background(), "AAPL", 10)
	if err != nil || len(got) != 10 {
		t.Fatalf("unexpected %d bars, err %v", len(got), err)
	}
	if len(store.saved) != 10 {
		t.Fatalf("expected write-back of 10 bars, got %d", len(store.saved))
	}
}

func TestFallbackProviderServesPartialStoreOnExternalError(t *testing.T) {
	store := &fakeStore{bars: bars("AAPL", 3)}
	ext := &fakeProvider{err: errors.New("rate limited")}
	p := NewFallbackProvider(store, ext)

	got, err := p.GetBars(context.Background(), "AAPL", 10)
	if err != nil || len(got) != 3 {
		t.Fatalf("expected stored bars, got %d, err %v", len(got), err)
	}

	empty := NewFallbackProvider(&fakeStore{err: errors.New("down")}, ext)
	if _, err := empty.GetBars(context.Background(), "AAPL", 10); err == nil {
		t.Fatalf("expected error when both sources fail")
	}
}

func TestCachedProviderMemoizes(t *testing.T) {
	mc := cache.NewMemoryCache(cache.WithMemoryCleanup(0))
	defer mc.Close()
	next := &fakeProvider{bars: bars("MSFT", 5)}
	p := NewCachedProvider(next, mc, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := p.GetBars(context.Background(), "msft", 5)
		if err != nil || len(got) != 5 {
			t.Fatalf("call %d: %d bars, err %v", i, len(got), err)
		}
		if !got[0].Date.Equal(day(0)) {
			t.Fatalf("cached dates not preserved: %v", got[0].Date)
		}
	}
	if next.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls)
	}

	if err := p.Invalidate(context.Background(), "MSFT"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = p.GetBars(context.Background(), "MSFT", 5)
	if next.calls != 2 {
		t.Fatalf("expected refetch after invalidate, got %d calls", next.calls)
	}
}

type fakeProducer struct {
	topic string
	msgs  []pkgkafka.Message
}

func (f *fakeProducer) Publish(ctx context.Context, topic string, key []byte, value interface{}) error {
	return f.PublishBatch(ctx, topic, []pkgkafka.Message{{Key: key, Value: value}})
}

func (f *fakeProducer) PublishBatch(_ context.Context, topic string, msgs []pkgkafka.Message) error {
	f.topic = topic
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeProducer) Close() error { return nil }

func TestKafkaResultPublisherEnvelope(t *testing.T) {
	prod := &fakeProducer{}
	pub := NewKafkaResultPublisher(prod, "walksim.results")
	res := &models.SimulationResult{ID: "sim-1", Symbol: "AAPL", Days: 30}

	if err := pub.PublishSimulation(context.Background(), res); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if prod.topic != "walksim.results" || len(prod.msgs) != 1 {
		t.Fatalf("unexpected publish topic=%s n=%d", prod.topic, len(prod.msgs))
	}
	m := prod.msgs[0]
	if string(m.Key) != "AAPL" || m.Headers["event"] != models.EventSimulationCompleted {
		t.Fatalf("unexpected key/header %s %v", m.Key, m.Headers)
	}
	b, _ := json.Marshal(m.Value)
	var ev models.ResultEvent
	if err := json.Unmarshal(b, &ev); err != nil || ev.Simulation == nil || ev.Simulation.ID != "sim-1" {
		t.Fatalf("unexpected event %s: %v", b, err)
	}
}

func TestDecodeFeatures(t *testing.T) {
	f, err := decodeFeatures(`{"ma5":101.5,"volatility":0.02}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if f["ma5"] != 101.5 || f["volatility"] != 0.02 {
		t.Fatalf("features = %v", f)
	}
	if f, err := decodeFeatures(""); err != nil || f != nil {
		t.Fatalf("empty snapshot: %v %v", f, err)
	}
	if _, err := decodeFeatures(`{"ma5":`); err == nil {
		t.Fatalf("expected error for corrupt snapshot")
	}
}
