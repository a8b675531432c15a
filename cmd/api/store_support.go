package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"

	"github.com/yourusername/todo-api/internal/auth"
	"github.com/yourusername/todo-api/internal/config"
	"github.com/yourusername/todo-api/internal/storage"
)

func setupStore(cfg *config.Config, logger *log.Logger) (*storage.Store, error) {
	store, err := storage.Open(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}
	logger.Printf("Opened database at %s", cfg.DatabasePath)
	return store, nil
}

// ensureSecret は開発モードで JWT_SECRET が未設定の場合にランダムな鍵を生成します。
// 再起動すると発行済みトークンは無効になります。
func ensureSecret(cfg *config.Config, logger *log.Logger) error {
	if cfg.JWTSecret != "" {
		return nil
	}
	if cfg.IsRelease() {
		return fmt.Errorf("JWT_SECRET is required in release mode")
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("generate secret: %w", err)
	}
	cfg.JWTSecret = hex.EncodeToString(buf)
	logger.Printf("WARNING: JWT_SECRET is not set; using a random secret for this process")
	return nil
}

// ensureAdmin は設定された管理者ユーザーが存在しなければ作成します。
func ensureAdmin(ctx context.Context, cfg *config.Config, store *storage.Store, hasher auth.PasswordHasher, logger *log.Logger) error {
	if !cfg.HasAdminBootstrap() {
		return nil
	}
	hash, err := hasher.Hash(cfg.AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	admin := &storage.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminEmail,
		PasswordHash: hash,
		Role:         storage.RoleAdmin,
	}
	created, err := store.EnsureUser(ctx, admin)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		logger.Printf("Created admin user %q", admin.Username)
	} else if admin.Role != storage.RoleAdmin {
		logger.Printf("WARNING: user %q already exists and is not an admin", admin.Username)
	}
	return nil
}
