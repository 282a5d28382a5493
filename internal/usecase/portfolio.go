package usecase

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	"WalkSim/internal/services/simulation"
	applogger "WalkSim/pkg/logger"
	"WalkSim/pkg/util"
)

// SimulationRunner runs one walk-forward simulation over ascending bars.
type SimulationRunner interface {
	Run(req simulation.Request, bars []models.Bar) (*models.SimulationResult, error)
}

// PortfolioConfig bounds symbol support, history depth and batch parallelism.
type PortfolioConfig struct {
	Symbols  []string
	Lookback int
	Workers  int
}

// Portfolio runs simulations for supported symbols and hands results to the
// persistence gateway.
type Portfolio struct {
	bars    domrepo.BarProvider
	engine  SimulationRunner
	sink    domrepo.ResultSink
	metrics domrepo.Metrics
	symbols map[string]struct{}
	list    []string
	cfg     PortfolioConfig
	l       *applogger.Logger
}

func NewPortfolio(bars domrepo.BarProvider, engine SimulationRunner, sink domrepo.ResultSink, metrics domrepo.Metrics, cfg PortfolioConfig) *Portfolio {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	p := &Portfolio{
		bars:    bars,
		engine:  engine,
		sink:    sink,
		metrics: metrics,
		symbols: make(map[string]struct{}, len(cfg.Symbols)),
		cfg:     cfg,
		l:       applogger.Nop(),
	}
	for _, s := range cfg.Symbols {
		s = util.NormalizeSymbol(s)
		if _, dup := p.symbols[s]; !dup && s != "" {
			p.symbols[s] = struct{}{}
			p.list = append(p.list, s)
		}
	}
	return p
}

func (p *Portfolio) SetLogger(l *applogger.Logger) {
	if l != nil {
		p.l = l
	}
}

// Symbols returns the supported symbols in configuration order.
func (p *Portfolio) Symbols() []string {
	return append([]string(nil), p.list...)
}

// Supports reports whether symbol is in the configured universe.
func (p *Portfolio) Supports(symbol string) bool {
	_, ok := p.symbols[util.NormalizeSymbol(symbol)]
	return ok
}

// Simulate fetches history, runs the engine and saves the result. A failed
// save is logged and the computed result is still returned.
func (p *Portfolio) Simulate(ctx context.Context, symbol string, days int, initialBalance float64) (*models.SimulationResult, error) {
	const op = "simulate"
	symbol = util.NormalizeSymbol(symbol)
	if !p.Supports(symbol) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedSymbol, symbol)
	}

	start := time.Now()
	bars, err := p.bars.GetBars(ctx, symbol, p.lookback(days))
	if err != nil {
		p.metrics.RecordError(string(models.KindDataUnavailable))
		return nil, models.NewError(models.KindDataUnavailable, op, symbol, err)
	}
	if len(bars) == 0 {
		p.metrics.RecordError(string(models.KindDataUnavailable))
		return nil, models.Errorf(models.KindDataUnavailable, op, symbol, "no bars returned")
	}

	res, err := p.engine.Run(simulation.Request{Symbol: symbol, Days: days, InitialBalance: initialBalance}, bars)
	if err != nil {
		p.metrics.RecordError(string(models.KindOf(err)))
		p.l.Warn("simulation unavailable",
			applogger.String("symbol", symbol),
			applogger.Int("days", days),
			applogger.String("kind", string(models.KindOf(err))),
			applogger.Error(err))
		return nil, err
	}

	if serr := p.sink.SaveSimulationResult(ctx, res); serr != nil {
		p.l.Warn("simulation result not persisted",
			applogger.String("symbol", symbol),
			applogger.String("id", res.ID),
			applogger.Error(serr))
	}
	p.metrics.RecordSimulation(symbol, res.ROIPercentage, res.BuyAndHold.ROIPercentage, len(res.Trades))
	p.metrics.RecordLatency("simulate", time.Since(start).Seconds())
	return res, nil
}

// RunBatch simulates each symbol independently with at most cfg.Workers in
// flight. Items keep the input order; a failure only affects its own item.
func (p *Portfolio) RunBatch(ctx context.Context, symbols []string, days int, initialBalance float64) []models.BatchItem {
	items := make([]models.BatchItem, len(symbols))
	var g errgroup.Group
	g.SetLimit(p.cfg.Workers)
	for i, raw := range symbols {
		i := i
		sym := util.NormalizeSymbol(raw)
		items[i].Symbol = sym
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				items[i].Error = err.Error()
				return nil
			}
			res, err := p.Simulate(ctx, sym, days, initialBalance)
			if err != nil {
				items[i].Error = err.Error()
				items[i].Kind = models.KindOf(err)
				return nil
			}
			items[i].Result = res
			return nil
		})
	}
	_ = g.Wait()
	return items
}

// History returns the latest days bars of a supported symbol.
func (p *Portfolio) History(ctx context.Context, symbol string, days int) ([]models.Bar, error) {
	symbol = util.NormalizeSymbol(symbol)
	if !p.Supports(symbol) {
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedSymbol, symbol)
	}
	bars, err := p.bars.GetBars(ctx, symbol, days)
	if err != nil {
		return nil, models.NewError(models.KindDataUnavailable, "history", symbol, err)
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

// lookback is the history depth requested for a window: the configured
// lookback, or enough for the window plus warmup and training rows.
func (p *Portfolio) lookback(days int) int {
	need := days + 200
	if p.cfg.Lookback > need {
		return p.cfg.Lookback
	}
	return need
}
