// Command backtest runs walk-forward simulations offline and writes the
// trade log and equity curve of each symbol to disk.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	"WalkSim/internal/export"
	internalrepo "WalkSim/internal/repository"
	"WalkSim/internal/services/ml"
	"WalkSim/internal/services/simulation"
	"WalkSim/internal/synthetic"
	xhttp "WalkSim/pkg/http"
	applogger "WalkSim/pkg/logger"
	"WalkSim/pkg/util"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

type options struct {
	symbols  string
	days     int
	balance  float64
	source   string
	baseURL  string
	bars     int
	model    string
	split    string
	seed     int64
	workers  int
	outDir   string
	format   string
	logLevel string
}

func main() {
	var o options
	flag.StringVar(&o.symbols, "symbols", "AAPL,MSFT", "comma separated symbols")
	flag.IntVar(&o.days, "days", 90, "simulation window in trading days")
	flag.Float64Var(&o.balance, "balance", 10000, "initial cash balance")
	flag.StringVar(&o.source, "source", "synthetic", "bar source: synthetic or yahoo")
	flag.StringVar(&o.baseURL, "base-url", "https://query1.finance.yahoo.com", "market data base url")
	flag.IntVar(&o.bars, "bars", 504, "history length to load")
	flag.StringVar(&o.model, "model", "gbdt", "classifier: gbdt or logreg")
	flag.StringVar(&o.split, "split", string(ml.SplitChronological), "train/test split: chronological or random")
	flag.Int64Var(&o.seed, "seed", 42, "model and synthetic data seed")
	flag.IntVar(&o.workers, "workers", 4, "concurrent simulations")
	flag.StringVar(&o.outDir, "out", "", "directory for exported results; empty skips export")
	flag.StringVar(&o.format, "format", "csv", "export format: csv, json or parquet")
	flag.StringVar(&o.logLevel, "log-level", "warn", "log level")
	flag.Parse()

	if err := run(context.Background(), o); err != nil {
		log.Fatalf("backtest failed: %v", err)
	}
}

func run(ctx context.Context, o options) error {
	l, err := applogger.New(&applogger.Config{Level: o.logLevel, Format: "console", Output: "stderr", Component: "backtest"})
	if err != nil {
		return err
	}
	if o.days < 30 || o.days > 365 {
		return fmt.Errorf("days must be in [30,365], got %d", o.days)
	}
	if o.balance < 1000 || o.balance > 1e6 {
		return fmt.Errorf("balance must be in [1000,1000000], got %v", o.balance)
	}

	var saver export.Saver
	if o.outDir != "" {
		if saver, err = export.NewSaver(o.format); err != nil {
			return err
		}
		if err := os.MkdirAll(o.outDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	source, err := newSource(o, l)
	if err != nil {
		return err
	}
	gb := ml.DefaultGBDTConfig()
	gb.Seed = o.seed
	factory, err := ml.NewClassifierFactory(ml.FactoryConfig{Kind: o.model, GBDT: gb, LogReg: ml.DefaultLogRegConfig()})
	if err != nil {
		return err
	}
	trainer := ml.NewTrainer(factory, ml.TrainerConfig{TestFraction: 0.2, Split: ml.SplitPolicy(o.split), Seed: o.seed})
	trainer.SetLogger(l)
	engine := simulation.NewEngine(trainer)
	engine.SetLogger(l)

	symbols := util.SplitSymbols(o.symbols)
	lookback := o.bars
	if floor := o.days + 200; lookback < floor {
		lookback = floor
	}

	var (
		mu      sync.Mutex
		results = make([]*models.SimulationResult, 0, len(symbols))
		failed  = make(map[string]error)
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for _, sym := range symbols {
		sym := sym
		g.Go(func() error {
			bars, err := source.GetBars(gctx, sym, lookback)
			if err == nil {
				var r *models.SimulationResult
				if r, err = engine.Run(simulation.Request{Symbol: sym, Days: o.days, InitialBalance: o.balance}, bars); err == nil {
					mu.Lock()
					results = append(results, r)
					mu.Unlock()
					if saver != nil {
						if _, _, werr := export.WriteResult(saver, o.outDir, r); werr != nil {
							return werr
						}
					}
					return nil
				}
			}
			mu.Lock()
			failed[sym] = err
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Symbol < results[j].Symbol })
	report(os.Stdout, results, failed)
	if len(results) == 0 {
		return fmt.Errorf("no symbol could be simulated")
	}
	return nil
}

func newSource(o options, l *applogger.Logger) (domrepo.BarProvider, error) {
	switch o.source {
	case "synthetic":
		return syntheticSource{n: o.bars, seed: o.seed}, nil
	case "yahoo":
		client := xhttp.NewClient(xhttp.WithTimeout(15*time.Second), xhttp.WithRetries(2, time.Second))
		p := internalrepo.NewYahooProvider(client, o.baseURL)
		p.SetLogger(l)
		return p, nil
	default:
		return nil, fmt.Errorf("unknown source %q", o.source)
	}
}

// syntheticSource serves a seeded random walk per symbol.
type syntheticSource struct {
	n    int
	seed int64
}

func (s syntheticSource) GetBars(_ context.Context, symbol string, lookback int) ([]models.Bar, error) {
	n := s.n
	if lookback > n {
		n = lookback
	}
	var h int64
	for _, r := range symbol {
		h = h*31 + int64(r)
	}
	return synthetic.RandomWalk(symbol, n, s.seed+h), nil
}

func report(w io.Writer, results []*models.SimulationResult, failed map[string]error) {
	fmt.Fprintf(w, "%-8s %12s %12s %9s %9s %7s %9s\n", "SYMBOL", "START", "FINAL", "ROI%", "B&H%", "TRADES", "ACCURACY")
	for _, r := range results {
		fmt.Fprintf(w, "%-8s %12s %12s %9s %9s %7d %9s\n",
			r.Symbol,
			money(r.InitialBalance),
			money(r.FinalBalance),
			money(r.ROIPercentage),
			money(r.BuyAndHold.ROIPercentage),
			len(r.Trades),
			decimal.NewFromFloat(r.Model.Accuracy).StringFixed(3),
		)
	}
	keys := make([]string, 0, len(failed))
	for k := range failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-8s failed (%s): %v\n", k, models.KindOf(failed[k]), failed[k])
	}
}

func money(v float64) string { return decimal.NewFromFloat(v).StringFixed(2) }
