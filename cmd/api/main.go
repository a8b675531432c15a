// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-api/internal/auth"
	"github.com/yourusername/todo-api/internal/config"
	"github.com/yourusername/todo-api/internal/requestid"
	"github.com/yourusername/todo-api/internal/storage"
	"github.com/yourusername/todo-api/internal/todo"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := ensureSecret(cfg, log.Default()); err != nil {
		log.Fatalf("Failed to prepare token secret: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	store, err := setupStore(cfg, log.Default())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	router, err := newRouter(cfg, store, log.Default())
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting API server on %s (mode: %s)", srv.Addr, cfg.GinMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// シグナルを受けたら処理中のリクエストを待ってから停止する
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}

// newRouter はミドルウェアとルーティングを設定した gin.Engine を作成します。
func newRouter(cfg *config.Config, store *storage.Store, logger *log.Logger) (*gin.Engine, error) {
	tokens, err := auth.NewTokenManager(auth.TokenConfig{
		Secret: []byte(cfg.JWTSecret),
		Issuer: cfg.TokenIssuer,
		TTL:    cfg.TokenTTL,
	})
	if err != nil {
		return nil, err
	}
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	if err := ensureAdmin(context.Background(), cfg, store, hasher, logger); err != nil {
		return nil, err
	}

	authManager, err := auth.NewManager(store, tokens, hasher, logger)
	if err != nil {
		return nil, err
	}
	todoService, err := todo.NewService(store, logger)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(
		requestid.Middleware(),
		gin.LoggerWithFormatter(requestid.LogFormatter),
		gin.Recovery(),
	)

	// CORSミドルウェアの設定（許可オリジンが空の場合は付与しない）
	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = origins
		corsConfig.AllowHeaders = []string{
			"Origin",
			"Content-Type",
			"Accept",
			"Authorization",
			requestid.HeaderName,
		}
		corsConfig.ExposeHeaders = []string{requestid.HeaderName, "WWW-Authenticate"}
		router.Use(cors.New(corsConfig))
	}

	setupRoutes(router, store, authManager, todoService)
	return router, nil
}

// healthHandler は DB の疎通を含むヘルスチェックのハンドラーです。
func healthHandler(store *storage.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unavailable",
				"service": "todo-api",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "todo-api",
			"version": "0.1.0",
		})
	}
}

// setupRoutes は認証ルートと保護されたルートの配線を行います。
func setupRoutes(router *gin.Engine, store *storage.Store, authManager *auth.Manager, todoService *todo.Service) {
	// まずは誰でも叩けるルートを登録
	router.GET("/health", healthHandler(store))
	router.POST("/token", authManager.Login)
	router.POST("/signup", authManager.Signup)

	protected := router.Group("")
	protected.Use(authManager.RequireToken())
	{
		protected.GET("/identify", authManager.Identify)

		protected.GET("/todos", todo.ListTodosHandler(todoService))
		protected.POST("/todos", todo.CreateTodoHandler(todoService))
		protected.GET("/todo/:id", todo.GetTodoHandler(todoService))
		protected.PUT("/todo/:id", todo.UpdateTodoHandler(todoService))
		protected.DELETE("/todo/:id", todo.DeleteTodoHandler(todoService))
		protected.POST("/todo/:id/toggle", todo.ToggleTodoHandler(todoService))
		protected.POST("/todo/:id/category/:cid", todo.LinkCategoryHandler(todoService))
		protected.DELETE("/todo/:id/category/:cid", todo.UnlinkCategoryHandler(todoService))

		protected.POST("/category", todo.CreateCategoryHandler(todoService))
		protected.GET("/category/:id/todos", todo.CategoryTodosHandler(todoService))
	}
}
