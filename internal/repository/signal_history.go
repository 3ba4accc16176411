package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"SignalPipe/internal/domain/models"
	"SignalPipe/internal/domain/repository"
)

// SchemaStatements returns idempotent DDL for the signal history table.
func SchemaStatements(table string) []string {
	return []string{fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		validated_at DateTime,
		symbol       String,
		direction    LowCardinality(String),
		timeframe    LowCardinality(String),
		price        Float64,
		target_price Float64,
		stop_loss    Float64,
		volume       Int64,
		confidence   Float64,
		risk_score   Float64,
		is_valid     UInt8,
		warnings     Array(String)
	) ENGINE = MergeTree()
	PARTITION BY toYYYYMM(validated_at)
	ORDER BY (symbol, validated_at)`, table)}
}

// ClickHouseHistory implements Storage for ClickHouse.
type ClickHouseHistory struct {
	db    *sql.DB
	table string
}

// NewClickHouseHistory creates ClickHouse signal history storage.
func NewClickHouseHistory(db *sql.DB, table string) repository.Storage {
	return &ClickHouseHistory{db: db, table: table}
}

func (s *ClickHouseHistory) Store(ctx context.Context, sig *models.ValidatedSignal) error {
	return s.StoreBatch(ctx, []*models.ValidatedSignal{sig})
}

func (s *ClickHouseHistory) StoreBatch(ctx context.Context, signals []*models.ValidatedSignal) error {
	if len(signals) == 0 {
		return nil
	}

	const chunkSize = 1000
	for start := 0; start < len(signals); start += chunkSize {
		end := start + chunkSize
		if end > len(signals) {
			end = len(signals)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, sig := range signals[start:end] {
			if sig == nil || sig.Candidate.Symbol == "" {
				continue
			}
			valid := uint8(0)
			if sig.IsValid {
				valid = 1
			}
			at := sig.ValidatedAt
			if at.IsZero() {
				at = time.Now().UTC()
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				at,
				sig.Candidate.Symbol,
				string(sig.Candidate.Direction),
				string(sig.Candidate.Timeframe),
				sig.Candidate.Price,
				sig.Candidate.TargetPrice,
				sig.Candidate.StopLoss,
				sig.Candidate.Volume,
				sig.Confidence,
				sig.RiskScore,
				valid,
				sig.Warnings,
			)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (validated_at, symbol, direction, timeframe, price, target_price, stop_loss, volume, confidence, risk_score, is_valid, warnings) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

// Query returns recent signals for a symbol in the given window.
func (s *ClickHouseHistory) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.ValidatedSignal, error) {
	q := fmt.Sprintf("SELECT symbol, direction, timeframe, price, target_price, stop_loss, volume, confidence, risk_score, is_valid, validated_at FROM %s WHERE symbol = ? AND validated_at >= ? AND validated_at <= ? ORDER BY validated_at DESC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []*models.ValidatedSignal
	for rows.Next() {
		var sig models.ValidatedSignal
		var direction, timeframe string
		var valid uint8
		if err := rows.Scan(
			&sig.Candidate.Symbol,
			&direction,
			&timeframe,
			&sig.Candidate.Price,
			&sig.Candidate.TargetPrice,
			&sig.Candidate.StopLoss,
			&sig.Candidate.Volume,
			&sig.Confidence,
			&sig.RiskScore,
			&valid,
			&sig.ValidatedAt,
		); err != nil {
			return nil, err
		}
		sig.Candidate.Direction = models.Direction(direction)
		sig.Candidate.Timeframe = models.Timeframe(timeframe)
		sig.IsValid = valid == 1
		signals = append(signals, &sig)
	}
	return signals, rows.Err()
}

func (s *ClickHouseHistory) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseHistory) Close() error {
	return nil // pool owned by pkg client
}
