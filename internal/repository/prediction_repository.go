package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"MyPay/internal/domain/models"
	"MyPay/internal/domain/repository"
	pkgch "MyPay/pkg/clickhouse"
	pkgkafka "MyPay/pkg/kafka"
	applogger "MyPay/pkg/logger"
)

const predictionColumns = "id, predicted_at, years, job_rate, salary_usd, salary_inr, monthly_inr, exchange_rate"

// PredictionSchema returns the DDL for the predictions table in database.
func PredictionSchema(database string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.predictions (
            id            String,
            predicted_at  DateTime,
            years         UInt8,
            job_rate      Float64,
            salary_usd    Float64,
            salary_inr    Float64,
            monthly_inr   Float64,
            exchange_rate Float64
        ) ENGINE = ReplacingMergeTree
        ORDER BY (predicted_at, id)`, database),
	}
}

// ClickHouseHistory implements HistoryStore for ClickHouse.
type ClickHouseHistory struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewClickHouseHistory creates the store over database.predictions.
func NewClickHouseHistory(ch *pkgch.Client, database string, l *applogger.Logger) repository.HistoryStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &ClickHouseHistory{db: ch.DB(), table: database + ".predictions", l: l}
}

func (s *ClickHouseHistory) Store(ctx context.Context, r models.ExportRecord) error {
	return s.StoreBatch(ctx, []models.ExportRecord{r})
}

func (s *ClickHouseHistory) StoreBatch(ctx context.Context, rs []models.ExportRecord) error {
	if len(rs) == 0 {
		return nil
	}
	const chunkSize = 1000
	for start := 0; start < len(rs); start += chunkSize {
		end := start + chunkSize
		if end > len(rs) {
			end = len(rs)
		}
		chunk := rs[start:end]

		args := make([]interface{}, 0, len(chunk)*8)
		for _, r := range chunk {
			args = append(args,
				r.ID,
				r.PredictedAt.UTC(),
				uint8(r.Years),
				r.JobRate,
				r.SalaryUSD,
				r.SalaryINR,
				r.MonthlyINR,
				r.ExchangeRate,
			)
		}
		if _, err := s.db.ExecContext(ctx, insertQuery(s.table, len(chunk)), args...); err != nil {
			s.l.Error("clickhouse insert predictions",
				applogger.String("table", s.table),
				applogger.Int("rows", len(chunk)),
				applogger.Error(err),
			)
			return fmt.Errorf("insert predictions: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseHistory) Query(ctx context.Context, from, to time.Time, limit int) ([]models.ExportRecord, error) {
	start := time.Now()
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE predicted_at >= ? AND predicted_at <= ? ORDER BY predicted_at DESC LIMIT ?", predictionColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	out := make([]models.ExportRecord, 0, limit)
	for rows.Next() {
		var (
			r     models.ExportRecord
			years uint8
		)
		if err := rows.Scan(&r.ID, &r.PredictedAt, &years, &r.JobRate, &r.SalaryUSD, &r.SalaryINR, &r.MonthlyINR, &r.ExchangeRate); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		r.Years = int(years)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	s.l.Debug("clickhouse query predictions",
		applogger.Int("rows", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (s *ClickHouseHistory) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseHistory) Close() error {
	return nil // pool is owned by pkg/clickhouse.Client
}

func insertQuery(table string, rows int) string {
	values := make([]string, rows)
	for i := range values {
		values[i] = "(?, ?, ?, ?, ?, ?, ?, ?)"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", table, predictionColumns, strings.Join(values, ","))
}

// KafkaPublisher implements Publisher for Kafka.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) repository.Publisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

// Publish sends the record keyed by its id.
func (p *KafkaPublisher) Publish(ctx context.Context, r models.ExportRecord) error {
	return p.producer.Publish(ctx, p.topic, []byte(r.ID), r)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
