package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XavierBriggs/fortuna/services/stake-advisor/pkg/models"
)

// Ledger persists accepted bet recommendations.
type Ledger interface {
	RecordBet(ctx context.Context, bet models.BetRecord) (int64, error)
	ListBets(ctx context.Context, limit int) ([]models.BetRecord, error)
}

// PostgresLedger writes bets to the bets table.
type PostgresLedger struct {
	db *sql.DB
}

// NewPostgresLedger creates a ledger backed by the given connection.
func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

// EnsureSchema creates the bets table if it does not exist.
func (l *PostgresLedger) EnsureSchema(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS bets (
			id BIGSERIAL PRIMARY KEY,
			external_id TEXT NOT NULL,
			placed_at TIMESTAMPTZ NOT NULL,
			decimal_odds DOUBLE PRECISION NOT NULL,
			estimated_probability DOUBLE PRECISION NOT NULL,
			bankroll DOUBLE PRECISION NOT NULL,
			kelly_multiplier DOUBLE PRECISION NOT NULL,
			stake DOUBLE PRECISION NOT NULL,
			note TEXT NOT NULL DEFAULT ''
		)
	`
	if _, err := l.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create bets table: %w", err)
	}
	return nil
}

// RecordBet inserts a bet and returns its row ID.
func (l *PostgresLedger) RecordBet(ctx context.Context, bet models.BetRecord) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO bets (
			external_id, placed_at, decimal_odds, estimated_probability,
			bankroll, kelly_multiplier, stake, note
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err = tx.QueryRowContext(
		ctx,
		query,
		bet.ExternalID,
		bet.PlacedAt,
		bet.DecimalOdds,
		bet.Probability,
		bet.Bankroll,
		bet.KellyMultiplier,
		bet.Stake,
		bet.Note,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to insert bet: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return id, nil
}

// ListBets returns the most recently placed bets, newest first.
func (l *PostgresLedger) ListBets(ctx context.Context, limit int) ([]models.BetRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, external_id, placed_at, decimal_odds, estimated_probability,
		       bankroll, kelly_multiplier, stake, note
		FROM bets
		ORDER BY placed_at DESC
		LIMIT $1
	`

	rows, err := l.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query bets: %w", err)
	}
	defer rows.Close()

	var bets []models.BetRecord
	for rows.Next() {
		var bet models.BetRecord
		err := rows.Scan(
			&bet.ID,
			&bet.ExternalID,
			&bet.PlacedAt,
			&bet.DecimalOdds,
			&bet.Probability,
			&bet.Bankroll,
			&bet.KellyMultiplier,
			&bet.Stake,
			&bet.Note,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	return bets, nil
}
