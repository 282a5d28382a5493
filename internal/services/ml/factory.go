package ml

import (
	"fmt"
	"strings"

	"WalkSim/internal/domain/service"
)

const (
	KindGBDT   = "gbdt"
	KindLogReg = "logreg"
)

// FactoryConfig selects and parameterizes the classifier implementation.
type FactoryConfig struct {
	Kind   string
	GBDT   GBDTConfig
	LogReg LogRegConfig
}

type classifierFactory struct {
	cfg FactoryConfig
}

// NewClassifierFactory returns a factory for the configured kind.
func NewClassifierFactory(cfg FactoryConfig) (service.ClassifierFactory, error) {
	cfg.Kind = strings.ToLower(strings.TrimSpace(cfg.Kind))
	switch cfg.Kind {
	case "", KindGBDT:
		cfg.Kind = KindGBDT
	case KindLogReg:
	default:
		return nil, fmt.Errorf("unknown model kind %q (use: gbdt, logreg)", cfg.Kind)
	}
	return &classifierFactory{cfg: cfg}, nil
}

func (f *classifierFactory) Kind() string { return f.cfg.Kind }

func (f *classifierFactory) New() service.Classifier {
	if f.cfg.Kind == KindLogReg {
		return NewLogisticRegression(f.cfg.LogReg)
	}
	return NewGradientBoosting(f.cfg.GBDT)
}
