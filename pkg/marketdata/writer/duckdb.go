package writer

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/rxtech-lab/argo-replay/internal/types"
	"github.com/rxtech-lab/argo-replay/pkg/errors"
)

// DuckDBWriter buffers candles in an in-memory DuckDB table inside one
// transaction and exports them to a Parquet file on Finalize.
type DuckDBWriter struct {
	db         *sql.DB
	tx         *sql.Tx
	sq         squirrel.StatementBuilderType
	outputPath string
}

// NewDuckDBWriter creates a writer that exports to the given Parquet path.
func NewDuckDBWriter(outputPath string) *DuckDBWriter {
	return &DuckDBWriter{
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		outputPath: outputPath,
	}
}

// Initialize opens the database, creates the candles table, and begins the
// write transaction.
func (w *DuckDBWriter) Initialize() (err error) {
	w.db, err = sql.Open("duckdb", ":memory:")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = w.db.Exec(`
		CREATE TABLE IF NOT EXISTS candles (
			id TEXT,
			time TIMESTAMP,
			symbol TEXT,
			timeframe TEXT,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE
		)
	`)
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create candles table", err)
	}

	w.tx, err = w.db.Begin()
	if err != nil {
		w.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	return nil
}

// Write inserts one candle inside the open transaction.
func (w *DuckDBWriter) Write(symbol string, timeframe types.Timeframe, candle types.Candle) error {
	if w.tx == nil {
		return errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	query, args, err := w.sq.
		Insert("candles").
		Columns("id", "time", "symbol", "timeframe", "open", "high", "low", "close", "volume").
		Values(
			uuid.New().String(),
			time.Unix(candle.Time, 0).UTC(),
			symbol,
			string(timeframe),
			candle.Open,
			candle.High,
			candle.Low,
			candle.Close,
			candle.Volume,
		).
		ToSql()
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to build insert", err)
	}

	if _, err := w.tx.Exec(query, args...); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert candle", err)
	}

	return nil
}

// Finalize commits the transaction and exports the table to Parquet.
func (w *DuckDBWriter) Finalize() (string, error) {
	if w.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "writer not initialized")
	}

	if err := w.tx.Commit(); err != nil {
		w.tx.Rollback()

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	w.tx = nil

	// Squirrel has no COPY support, raw SQL here.
	if _, err := w.db.Exec(fmt.Sprintf(`COPY candles TO '%s' (FORMAT PARQUET)`, w.outputPath)); err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to export to Parquet", err)
	}

	return w.outputPath, nil
}

// Close rolls back any open transaction and closes the database.
func (w *DuckDBWriter) Close() error {
	if w.tx != nil {
		// Finalize was never reached; discard the buffered rows.
		_ = w.tx.Rollback()
		w.tx = nil
	}

	if w.db != nil {
		if err := w.db.Close(); err != nil {
			return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to close db connection", err)
		}

		w.db = nil
	}

	return nil
}
