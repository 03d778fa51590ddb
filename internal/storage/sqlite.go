// Package storage は利用者と TODO・リマインダーを SQLite に保存する
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
)

// ErrNotFound 対象の行が存在しない
var ErrNotFound = errors.New("対象が見つかりません")

// Storage SQLite ストレージ
// 日時は UNIX 秒（UTC）で保存する
type Storage struct {
	db *sql.DB
}

// New DB を開いてマイグレーションを適用
func New(dbPath string) (*Storage, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("DBディレクトリの作成に失敗しました: %v", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("DBのオープンに失敗しました: %v", err)
	}
	// SQLite は書き込みが単一のため接続を1本に絞る
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DBへの接続に失敗しました: %v", err)
	}

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("マイグレーションに失敗しました: %v", err)
	}

	return s, nil
}

// Close DB を閉じる
func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL,
			type TEXT NOT NULL DEFAULT 'UNKNOWN',
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT '',
			start_time INTEGER,
			end_time INTEGER,
			location TEXT NOT NULL DEFAULT '',
			reminder_sent INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			original_input TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_user_type ON items(user_id, type)`,
		`CREATE INDEX IF NOT EXISTS idx_items_reminder ON items(reminder_sent, start_time)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// --- users ---

// FindOrCreateUser メールアドレスで利用者を探し、いなければ作成する
func (s *Storage) FindOrCreateUser(ctx context.Context, email, name string) (*domain.User, error) {
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (email, name, created_at) VALUES (?, ?, ?)`,
		email, name, time.Now().Unix(),
	); err != nil {
		return nil, fmt.Errorf("利用者の作成に失敗しました: %v", err)
	}
	return s.GetUserByEmail(ctx, email)
}

// GetUserByEmail メールアドレスで利用者を取得
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	u := &domain.User{}
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, name, created_at FROM users WHERE email = ?`,
		email,
	).Scan(&u.ID, &u.Email, &u.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("利用者の取得に失敗しました: %v", err)
	}
	u.CreatedAt = time.Unix(created, 0)
	return u, nil
}

// --- items ---

const itemColumns = `id, user_id, type, title, description, priority, start_time, end_time, location, reminder_sent, completed, original_input, created_at`

// CreateItem アイテムを保存し、ID と作成日時を埋める
func (s *Storage) CreateItem(ctx context.Context, item *domain.Item) error {
	if item.Type == "" {
		item.Type = domain.ItemTypeUnknown
	}
	now := time.Now()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO items (user_id, type, title, description, priority, start_time, end_time, location, reminder_sent, completed, original_input, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, string(item.Type), item.Title, item.Description, string(item.Priority),
		toUnix(item.StartTime), toUnix(item.EndTime), item.Location,
		item.ReminderSent, item.Completed, item.OriginalInput, now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("アイテムの保存に失敗しました: %v", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("アイテムIDの取得に失敗しました: %v", err)
	}
	item.ID = id
	item.CreatedAt = time.Unix(now.Unix(), 0)
	return nil
}

// GetItem ID でアイテムを取得
func (s *Storage) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("アイテムの取得に失敗しました: %v", err)
	}
	return item, nil
}

// ListTodos 利用者の TODO を古い順に取得
func (s *Storage) ListTodos(ctx context.Context, userID int64) ([]*domain.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE user_id = ? AND type = ? ORDER BY created_at, id`,
		userID, string(domain.ItemTypeTodo),
	)
}

// SetItemCompleted 完了状態を更新
func (s *Storage) SetItemCompleted(ctx context.Context, id int64, completed bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE items SET completed = ? WHERE id = ?`, completed, id)
	if err != nil {
		return fmt.Errorf("完了状態の更新に失敗しました: %v", err)
	}
	return requireAffected(res)
}

// ListDueReminders 未通知の予定・リマインダーのうち開始時刻が [from, to] のものを開始順に取得
func (s *Storage) ListDueReminders(ctx context.Context, from, to time.Time) ([]*domain.Item, error) {
	return s.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE type IN (?, ?) AND reminder_sent = 0 AND start_time IS NOT NULL AND start_time >= ? AND start_time <= ?
		 ORDER BY start_time, id`,
		string(domain.ItemTypeCalendarEvent), string(domain.ItemTypeReminder), from.Unix(), to.Unix(),
	)
}

// MarkReminderSent 通知済みにする
func (s *Storage) MarkReminderSent(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE items SET reminder_sent = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("通知済みへの更新に失敗しました: %v", err)
	}
	return requireAffected(res)
}

func (s *Storage) queryItems(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("アイテムの取得に失敗しました: %v", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("アイテムの読み込みに失敗しました: %v", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*domain.Item, error) {
	var (
		item            domain.Item
		itemType, prio  string
		start, end      sql.NullInt64
		sent, completed bool
		created         int64
	)
	if err := row.Scan(&item.ID, &item.UserID, &itemType, &item.Title, &item.Description, &prio,
		&start, &end, &item.Location, &sent, &completed, &item.OriginalInput, &created); err != nil {
		return nil, err
	}
	item.Type = domain.ItemType(itemType)
	item.Priority = domain.Priority(prio)
	item.StartTime = fromUnix(start)
	item.EndTime = fromUnix(end)
	item.ReminderSent = sent
	item.Completed = completed
	item.CreatedAt = time.Unix(created, 0)
	return &item, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新件数の取得に失敗しました: %v", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func toUnix(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func fromUnix(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}
