package config

import (
	"strings"
	"testing"
	"time"
)

const minimal = `
environment: test
backend:
  type: clickhouse
clickhouse:
  host: localhost
simulation:
  symbols: [AAPL, MSFT, GOOGL, AMZN, META, TSLA]
`

func TestParseAppliesDefaults(t *testing.T) {
	c, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Server.Port != 8080 || c.Server.ShutdownTimeout != 10*time.Second {
		t.Fatalf("server defaults: %+v", c.Server)
	}
	if c.Model.Kind != "gbdt" || c.Model.Split != "chronological" || c.Model.TestFraction != 0.2 {
		t.Fatalf("model defaults: %+v", c.Model)
	}
	if c.Simulation.DefaultDays != 90 || c.Simulation.DefaultBalance != 10000 {
		t.Fatalf("simulation defaults: %+v", c.Simulation)
	}
	if len(c.Retrain.Symbols) != 5 || c.Retrain.Symbols[0] != "AAPL" {
		t.Fatalf("retrain symbols: %v", c.Retrain.Symbols)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"backend":    strings.Replace(minimal, "type: clickhouse", "type: mongo", 1),
		"brokers":    strings.Replace(minimal, "type: clickhouse", "type: kafka", 1),
		"model kind": minimal + "model:\n  kind: forest\n",
		"split":      minimal + "model:\n  split: shuffled\n",
		"days":       strings.Replace(minimal, "simulation:\n", "simulation:\n  default_days: 400\n", 1),
		"queue":      minimal + "retrain:\n  queue:\n    enabled: true\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	c, err := Parse([]byte(minimal))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	env := map[string]string{
		"SYMBOLS":    " nvda, jpm ",
		"REDIS_ADDR": "cache:6380",
		"MODEL_KIND": "logreg",
	}
	c.applyEnv(func(k string) string { return env[k] })
	if strings.Join(c.Simulation.Symbols, ",") != "NVDA,JPM" {
		t.Fatalf("symbols: %v", c.Simulation.Symbols)
	}
	if !c.Redis.Enabled || c.Redis.Host != "cache" || c.Redis.Port != 6380 {
		t.Fatalf("redis: %+v", c.Redis)
	}
	if c.Model.Kind != "logreg" {
		t.Fatalf("model kind: %s", c.Model.Kind)
	}
	if !c.SupportsSymbol("nvda") || c.SupportsSymbol("AAPL") {
		t.Fatalf("SupportsSymbol mismatch")
	}
}
