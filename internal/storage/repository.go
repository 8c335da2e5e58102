package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"bilancio/internal/core"
	applog "bilancio/internal/log"

	_ "modernc.org/sqlite"
)

// Dates persist as RFC 3339 so intraday times survive a round trip;
// the normalizer accepts timestamped layouts and range filtering must
// behave the same on every backend. RFC 3339 strings in a single zone
// also keep ORDER BY date meaningful.
const dateFormat = time.RFC3339

// SQLiteRepository implements Store on an embedded SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveLedger implements Store. The replace happens in one transaction
// so a failed write never leaves a half-written ledger behind.
func (r *SQLiteRepository) SaveLedger(ctx context.Context, batchID string, txns []core.Transaction) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	stmt, err := dbTx.PrepareContext(ctx, `
		INSERT INTO transactions (batch_id, date, description, amount, category, memo, predicted_category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txns {
		_, err := stmt.ExecContext(ctx,
			batchID,
			tx.Date.Format(dateFormat),
			tx.Description,
			tx.Amount.String(),
			tx.Category,
			tx.Memo,
			tx.Predicted,
		)
		if err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("commit ledger: %w", err)
	}

	slog.InfoContext(ctx, "Ledger saved to SQLite",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldBatchID, batchID,
		applog.FieldRowCount, len(txns))
	return nil
}

// LoadLedger implements Store.
func (r *SQLiteRepository) LoadLedger(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, description, amount, category, memo, predicted_category
		FROM transactions
		ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}
	defer rows.Close()

	var txns []core.Transaction
	for rows.Next() {
		var dateStr, amountStr string
		var tx core.Transaction
		if err := rows.Scan(&dateStr, &tx.Description, &amountStr, &tx.Category, &tx.Memo, &tx.Predicted); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Date, err = time.Parse(dateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		tx.Amount, err = core.ParseAmount(amountStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored amount %q: %w", amountStr, err)
		}
		tx.Derive()
		txns = append(txns, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger: %w", err)
	}
	return txns, nil
}
