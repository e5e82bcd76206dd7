// Package seeder fills the re_postsales table with synthetic customers so a
// fresh database has something to ask questions about.
package seeder

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/promptboard/promptboard/internal/schema"
)

const createTableStmt = `CREATE TABLE IF NOT EXISTS ` + schema.TableName + ` (
	customer_id text PRIMARY KEY,
	name text,
	email text,
	phone text,
	property_id text,
	region text,
	property_type text,
	purchase_date text,
	maintenance_due text,
	payment_status text,
	maintenance_requests bigint,
	satisfaction_score double precision,
	utilities_consumption double precision,
	referral_source text,
	warranty_claims boolean,
	insurance_status text
)`

type Service struct {
	cfg       Config
	log       *slog.Logger
	db        *sql.DB
	generator *Generator
}

func NewService(cfg Config, logger *slog.Logger, db *sql.DB) (*Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle is required")
	}
	if cfg.RowCount <= 0 {
		return nil, fmt.Errorf("row count must be > 0")
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be > 0")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Service{
		cfg:       cfg,
		log:       logger,
		db:        db,
		generator: NewGenerator(cfg.Seed),
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTableStmt); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	if s.cfg.Truncate {
		if _, err := s.db.ExecContext(ctx, "TRUNCATE TABLE "+schema.TableName); err != nil {
			return fmt.Errorf("truncate table: %w", err)
		}
		s.log.Info("truncated table", slog.String("table", schema.TableName))
	}

	inserted := 0
	for inserted < s.cfg.RowCount {
		size := s.cfg.BatchSize
		if remaining := s.cfg.RowCount - inserted; remaining < size {
			size = remaining
		}

		batch := make([]Record, 0, size)
		for i := 0; i < size; i++ {
			batch = append(batch, s.generator.NextRecord())
		}
		if err := s.insertBatch(ctx, batch); err != nil {
			return fmt.Errorf("insert batch after %d rows: %w", inserted, err)
		}
		inserted += size
	}

	s.log.Info("seeded table",
		slog.String("table", schema.TableName),
		slog.Int("rows", inserted),
	)
	return nil
}

func (s *Service) insertBatch(ctx context.Context, batch []Record) error {
	if len(batch) == 0 {
		return nil
	}

	columns := schema.Columns()
	names := make([]string, 0, len(columns))
	for _, column := range columns {
		names = append(names, column.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", schema.TableName, strings.Join(names, ", "))

	args := make([]any, 0, len(batch)*len(columns))
	for i, record := range batch {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", i*len(columns)+j+1)
		}
		b.WriteString(")")
		args = append(args, record.Values()...)
	}
	b.WriteString(" ON CONFLICT (customer_id) DO NOTHING")

	_, err := s.db.ExecContext(ctx, b.String(), args...)
	return err
}
