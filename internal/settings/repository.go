package settings

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	DeleteSetting(ctx context.Context, key string) error

	UpsertRecentFile(ctx context.Context, file *RecentFile) error
	ListRecentFiles(ctx context.Context, limit int) ([]*RecentFile, error)
	DeleteRecentFile(ctx context.Context, path string) error
	ClearRecentFiles(ctx context.Context) error
	PruneRecentFiles(ctx context.Context, keep int) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *SQLiteRepository) DeleteSetting(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM settings WHERE key = ?", key)
	return err
}

func (r *SQLiteRepository) UpsertRecentFile(ctx context.Context, f *RecentFile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recent_files (path, display_name, opened_at) VALUES (?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET display_name = excluded.display_name, opened_at = excluded.opened_at
	`, f.Path, f.DisplayName, f.OpenedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) ListRecentFiles(ctx context.Context, limit int) ([]*RecentFile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT path, display_name, opened_at
		FROM recent_files ORDER BY opened_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*RecentFile
	for rows.Next() {
		var f RecentFile
		var openedAt string
		if err := rows.Scan(&f.Path, &f.DisplayName, &openedAt); err != nil {
			return nil, err
		}
		f.OpenedAt, _ = time.Parse(time.RFC3339, openedAt)
		files = append(files, &f)
	}
	return files, rows.Err()
}

func (r *SQLiteRepository) DeleteRecentFile(ctx context.Context, path string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM recent_files WHERE path = ?", path)
	return err
}

func (r *SQLiteRepository) ClearRecentFiles(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM recent_files")
	return err
}

func (r *SQLiteRepository) PruneRecentFiles(ctx context.Context, keep int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM recent_files WHERE path NOT IN (
			SELECT path FROM recent_files ORDER BY opened_at DESC LIMIT ?
		)
	`, keep)
	return err
}
