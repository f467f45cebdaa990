package imagestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS images (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	blob       BLOB    NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS images_created_at ON images(created_at);
`

// SQLiteStore 基于 SQLite 的图片库
//
// AUTOINCREMENT 保证 ID 单调递增且不复用。
type SQLiteStore struct {
	sqlDB  *sql.DB
	notify notifier
	now    func() time.Time
}

// OpenSQLite 打开（必要时创建）图片库
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	log.Printf("[ImageStore] Opened %s", path)
	return &SQLiteStore{sqlDB: sqlDB, now: time.Now}, nil
}

// Close 关闭订阅和数据库
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	s.notify.closeAll()
	return s.sqlDB.Close()
}

// Put 写入图片
func (s *SQLiteStore) Put(ctx context.Context, pngData []byte) (ID, error) {
	if len(pngData) == 0 {
		return 0, fmt.Errorf("image data is required")
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO images (blob, created_at) VALUES (?, ?)`,
		pngData, s.now().UTC().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert image: %w", err)
	}
	n, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	id := ID(n)
	s.notify.publish(id)
	return id, nil
}

// LatestID 返回最新 ID
func (s *SQLiteStore) LatestID(ctx context.Context) (ID, bool, error) {
	var id int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT id FROM images ORDER BY id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query latest image: %w", err)
	}
	return ID(id), true, nil
}

// Get 读取图片
func (s *SQLiteStore) Get(ctx context.Context, id ID) ([]byte, bool, error) {
	if id < 1 {
		return nil, false, nil
	}
	var blob []byte
	err := s.sqlDB.QueryRowContext(ctx, `SELECT blob FROM images WHERE id = ?`, int64(id)).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query image %d: %w", id, err)
	}
	return blob, true, nil
}

// Subscribe 订阅本进程写入的新图片
func (s *SQLiteStore) Subscribe() (<-chan ID, func()) {
	return s.notify.subscribe()
}
