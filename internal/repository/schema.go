package repository

// Schema holds the idempotent DDL for every table the service writes.
// "{db}" is replaced with the configured database by clickhouse.Client.InitSchema.
var Schema = []string{
	`CREATE DATABASE IF NOT EXISTS {db}`,
	`CREATE TABLE IF NOT EXISTS {db}.stock_prices (
		symbol     LowCardinality(String),
		date       Date,
		open       Float64,
		high       Float64,
		low        Float64,
		close      Float64,
		volume     Float64,
		updated_at DateTime DEFAULT now()
	) ENGINE = ReplacingMergeTree(updated_at)
	ORDER BY (symbol, date)`,
	`CREATE TABLE IF NOT EXISTS {db}.portfolio_simulation (
		id              String,
		symbol          LowCardinality(String),
		start_date      Date,
		end_date        Date,
		days            UInt16,
		initial_balance Float64,
		final_balance   Float64,
		roi_percentage  Float64,
		baseline_roi    Float64,
		trade_count     UInt32,
		trades          String,
		daily_balance   String,
		strategy        LowCardinality(String),
		model_kind      LowCardinality(String),
		model_accuracy  Float64,
		created_at      DateTime64(3)
	) ENGINE = MergeTree
	ORDER BY (symbol, created_at)`,
	`CREATE TABLE IF NOT EXISTS {db}.prediction_history (
		id                 String,
		symbol             LowCardinality(String),
		date               Date,
		predicted_movement UInt8,
		confidence         Float64,
		features           String,
		actual_movement    Nullable(UInt8),
		created_at         DateTime64(3)
	) ENGINE = MergeTree
	ORDER BY (symbol, created_at)`,
}

const (
	tableStockPrices         = "stock_prices"
	tablePortfolioSimulation = "portfolio_simulation"
	tablePredictionHistory   = "prediction_history"
)
