// Package analytics runs daily grouping inside an embedded DuckDB database.
package analytics

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"sync"
	"time"

	"github.com/marcboeker/go-duckdb"
	"go.uber.org/zap"

	"github.com/swipe-attendance/backend/internal/models"
	"github.com/swipe-attendance/backend/internal/report"
)

// Options tunes the embedded database.
type Options struct {
	Threads     int
	MemoryLimit string
}

// DuckGrouper implements report.Grouper with an in-memory DuckDB database.
// Calls are serialized because every call reuses the same staging table.
type DuckGrouper struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *zap.Logger
}

var _ report.Grouper = (*DuckGrouper)(nil)

// NewDuckGrouper opens an in-memory database.
func NewDuckGrouper(opts Options, logger *zap.Logger) (*DuckGrouper, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var pragmas []string
	if opts.Threads > 0 {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA threads=%d", opts.Threads))
	}
	if opts.MemoryLimit != "" {
		pragmas = append(pragmas, fmt.Sprintf("PRAGMA memory_limit='%s'", opts.MemoryLimit))
	}
	pragmas = append(pragmas, "PRAGMA enable_progress_bar=false")

	connector, err := duckdb.NewConnector("", func(execer driver.ExecerContext) error {
		for _, pragma := range pragmas {
			if _, err := execer.ExecContext(context.Background(), pragma, nil); err != nil {
				return fmt.Errorf("%s: %w", pragma, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	// One connection keeps the in-memory catalog shared between calls.
	db.SetMaxOpenConns(1)

	logger.Named("analytics").Info("duckdb grouper ready",
		zap.Int("threads", opts.Threads), zap.String("memory_limit", opts.MemoryLimit))

	return &DuckGrouper{db: db, logger: logger.Named("analytics")}, nil
}

// Close releases the database.
func (g *DuckGrouper) Close() error {
	return g.db.Close()
}

const groupQuery = `
	SELECT
		employee,
		day,
		min(secs) AS arrival,
		max(secs) AS departure,
		coalesce(arg_min(card, seq) FILTER (WHERE card <> ''), '') AS card
	FROM swipes
	GROUP BY employee, day
	ORDER BY employee, day`

// GroupDaily has the same contract as report.MemoryGrouper.
func (g *DuckGrouper) GroupDaily(ctx context.Context, records []models.Record) ([]models.DailySummary, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	start := time.Now()

	conn, err := g.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `
		CREATE OR REPLACE TABLE swipes (
			seq BIGINT,
			employee VARCHAR,
			day VARCHAR,
			secs BIGINT,
			card VARCHAR
		)`); err != nil {
		return nil, fmt.Errorf("failed to create staging table: %w", err)
	}
	defer conn.ExecContext(context.Background(), "DROP TABLE IF EXISTS swipes")

	appended := 0
	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", "swipes")
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}
		defer appender.Close()

		for i, r := range records {
			if !r.Date.Valid || r.Employee == "" {
				continue
			}
			var secs interface{}
			if r.Time.Valid {
				secs = int64(r.Time.Seconds)
			}
			if err := appender.AppendRow(int64(i), r.Employee, r.Date.String(), secs, r.CardNumber); err != nil {
				return fmt.Errorf("failed to append row %d: %w", i, err)
			}
			appended++
		}
		return appender.Flush()
	})
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, groupQuery)
	if err != nil {
		return nil, fmt.Errorf("group query failed: %w", err)
	}
	defer rows.Close()

	var out []models.DailySummary
	for rows.Next() {
		var (
			employee, day, card string
			arrival, departure  sql.NullInt64
		)
		if err := rows.Scan(&employee, &day, &arrival, &departure, &card); err != nil {
			return nil, fmt.Errorf("failed to scan group row: %w", err)
		}
		date, err := time.Parse(models.DateLayout, day)
		if err != nil {
			return nil, fmt.Errorf("bad date %q in group row: %w", day, err)
		}
		s := models.DailySummary{Employee: employee, Date: date, CardNumber: card}
		if arrival.Valid {
			s.Arrival = models.TimeFromSeconds(int(arrival.Int64))
		}
		if departure.Valid {
			s.Departure = models.TimeFromSeconds(int(departure.Int64))
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Collation of the database may differ from Go string order.
	report.SortDaily(out)

	g.logger.Debug("grouped records",
		zap.Int("records", appended),
		zap.Int("days", len(out)),
		zap.Duration("elapsed", time.Since(start)))

	return out, nil
}
