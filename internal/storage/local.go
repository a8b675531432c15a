// Package storage はローカル SQLite ファイル上の永続化レイヤーを提供します。
//
// gorm を介してユーザー・Todo・カテゴリ・紐付けを保存します。
// 一意制約や外部キー制約の違反は ErrDuplicate / ErrNotFound に変換して返します。
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotFound は対象の行が存在しないことを表します。
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate は一意制約に違反したことを表します。
	ErrDuplicate = errors.New("record already exists")
)

const slowQueryThreshold = 200 * time.Millisecond

// Store は SQLite を使った永続化を担います。
type Store struct {
	db *gorm.DB
}

// Open は SQLite ファイルを開き、スキーマを適用します。
func Open(path string, l *log.Logger) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if l == nil {
		l = log.Default()
	}

	dsn := filepath.Clean(path) + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger: logger.New(l, logger.Config{
			SlowThreshold:             slowQueryThreshold,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close は DB 接続を閉じます。
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping は DB への疎通を確認します。
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) migrate() error {
	return s.db.AutoMigrate(&User{}, &Todo{}, &Category{}, &TodoCategory{})
}

// translate は gorm のエラーをパッケージのセンチネルエラーに変換します。
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
