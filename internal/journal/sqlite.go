package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/model"
)

const createTransfersTable = `
	CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		provider_id TEXT,
		provider_name TEXT,
		from_chain INTEGER,
		to_chain INTEGER,
		asset TEXT,
		recipient TEXT,
		amount TEXT,
		volume_usd TEXT,
		executed_at INTEGER,
		receipt TEXT
	)
`

// SQLite stores receipts in a transfers table
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite journal %s: %w", path, err)
	}
	j, err := NewSQLite(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	logrus.WithField("path", path).Info("SQLite journal opened")
	return j, nil
}

// NewSQLite uses an already opened database, creating the schema if needed
func NewSQLite(db *sql.DB) (*SQLite, error) {
	if _, err := db.Exec(createTransfersTable); err != nil {
		return nil, fmt.Errorf("failed to create transfers table: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Record implements Journal
func (s *SQLite) Record(ctx context.Context, r model.Receipt) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal receipt: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transfers (id, provider_id, provider_name, from_chain, to_chain, asset, recipient, amount, volume_usd, executed_at, receipt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ProviderID.Hex(), r.ProviderName, uint64(r.FromChain), uint64(r.ToChain),
		r.Asset.Hex(), r.Recipient.Hex(), r.Amount, r.VolumeUSD, r.ExecutedAt.UnixNano(), string(payload))
	if err != nil {
		return fmt.Errorf("failed to insert receipt %s: %w", r.ID, err)
	}
	return nil
}

// List implements Journal
func (s *SQLite) List(ctx context.Context, limit int) ([]model.Receipt, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT receipt
		FROM transfers
		ORDER BY executed_at DESC
		LIMIT ?
	`, normalizeLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var receipts []model.Receipt
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		var r model.Receipt
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to decode receipt: %w", err)
		}
		receipts = append(receipts, r)
	}
	return receipts, rows.Err()
}

// Close implements Journal
func (s *SQLite) Close() error {
	return s.db.Close()
}
