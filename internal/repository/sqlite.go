package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/go-disaster-response/internal/models"
)

// SQLiteDB stores notification history. With the default ":memory:" DSN the
// history lives exactly as long as the process (one UI session); pointing
// DB_PATH at a file carries it across restarts with no code change.
type SQLiteDB struct {
	db           *sql.DB
	historyLimit int
}

func NewSQLiteDB(path string, historyLimit int) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db:           db,
		historyLimit: historyLimit,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS notifications (
			id TEXT PRIMARY KEY,
			action TEXT NOT NULL,
			region TEXT NOT NULL,
			status TEXT NOT NULL,
			recipients TEXT NOT NULL,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_created_at ON notifications(created_at);
		CREATE INDEX IF NOT EXISTS idx_notifications_action ON notifications(action);
  	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Add(ctx context.Context, rec *models.NotificationRecord) error {
	recipients, err := json.Marshal(rec.Recipients)
	if err != nil {
		return fmt.Errorf("error encoding recipients: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notifications (id, action, region, status, recipients, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Action), rec.Region, string(rec.Status), string(recipients), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("error inserting record: %w", err)
	}

	return s.prune(ctx)
}

// prune keeps only the most recent historyLimit records. Pending records
// are never evicted: their status update still has to land, and evicting
// one would strand an in-flight batch with no row to resolve.
func (s *SQLiteDB) prune(ctx context.Context) error {
	if s.historyLimit <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE status != ? AND id NOT IN (
			SELECT id FROM notifications ORDER BY created_at DESC, id DESC LIMIT ?
		)`,
		string(models.StatusPending), s.historyLimit,
	)
	if err != nil {
		return fmt.Errorf("error pruning history: %w", err)
	}
	return nil
}

// UpdateStatus moves a record out of pending. Terminal records are
// immutable; transitioning anything but a pending record fails.
func (s *SQLiteDB) UpdateStatus(ctx context.Context, id string, status models.RecordStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET status = ? WHERE id = ? AND status = ?`,
		string(status), id, string(models.StatusPending),
	)
	if err != nil {
		return fmt.Errorf("error updating status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := s.exists(ctx, id)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrNotPending
	}
	return nil
}

func (s *SQLiteDB) exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM notifications WHERE id = ?`, id,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("error checking existence: %w", err)
	}
	return count > 0, nil
}

func (s *SQLiteDB) GetByID(ctx context.Context, id string) (*models.NotificationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, action, region, status, recipients, created_at
		 FROM notifications WHERE id = ?`, id,
	)

	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error scanning record: %w", err)
	}
	return rec, nil
}

func (s *SQLiteDB) List(ctx context.Context, opts Filter) ([]models.NotificationRecord, error) {
	query := `SELECT id, action, region, status, recipients, created_at FROM notifications`
	var (
		conds []string
		args  []any
	)
	if opts.Action != nil {
		conds = append(conds, "action = ?")
		args = append(args, string(*opts.Action))
	}
	if opts.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*opts.Status))
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY created_at DESC, id DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing records: %w", err)
	}
	defer rows.Close()

	var records []models.NotificationRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("error scanning record: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

func scanRecord(scan func(dest ...any) error) (*models.NotificationRecord, error) {
	var (
		rec        models.NotificationRecord
		action     string
		status     string
		recipients string
	)
	if err := scan(&rec.ID, &action, &rec.Region, &status, &recipients, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Action = models.ActionKind(action)
	rec.Status = models.RecordStatus(status)
	if err := json.Unmarshal([]byte(recipients), &rec.Recipients); err != nil {
		return nil, fmt.Errorf("error decoding recipients: %w", err)
	}
	return &rec, nil
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
