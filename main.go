package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ITPORTAL-backend/internal/asset_mgmt/assets"
	"ITPORTAL-backend/internal/asset_mgmt/history"
	"ITPORTAL-backend/internal/asset_mgmt/lifecycle"
	"ITPORTAL-backend/internal/platform/auth"
	"ITPORTAL-backend/internal/platform/db"
	"ITPORTAL-backend/internal/platform/metrics"
	"ITPORTAL-backend/internal/platform/store"
	"ITPORTAL-backend/internal/users"
)

func main() {
	// .env（あれば）→ 設定読み込み
	_ = godotenv.Load()
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)
	if mode != "dev" && mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}
	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[ERROR] auth.jwt_secret is required (or set JWT_SECRET)")
	}

	// 認証アカウント用 MySQL
	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()
	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	// Entity Store (MongoDB)
	client, err := store.Connect(context.Background(), cfg.Mongo)
	if err != nil {
		panic(err)
	}
	defer store.Disconnect(client)
	mdb := client.Database(cfg.Mongo.Database)
	log.Printf("[INFO] connected to entity store: %s", cfg.Mongo.Database)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス・メトリクス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", metrics.Handler())

	// ===== サービス組み立て =====
	userStore := users.NewStore(mdb)
	userSvc := users.NewService(userStore)

	secret := []byte(cfg.Auth.JWTSecret)
	authSvc := auth.NewService(conn, userSvc, secret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)

	assetStore := assets.NewStore(mdb)
	assetSvc := assets.NewService(assetStore)

	eventStore := history.NewStore(mdb)
	writer := history.NewWriter(eventStore)
	querySvc := history.NewQueryService(eventStore, userSvc)

	engine := lifecycle.NewService(assetStore, userSvc, eventStore, writer)

	// ===== ルーティング =====
	api := r.Group("/api/v1")
	authed := api.Group("", auth.RequireAuth(secret))
	adminOnly := authed.Group("", auth.RequireRole(auth.RoleAdmin))

	auth.RegisterRoutes(api, authed, adminOnly, authSvc)
	users.RegisterRoutes(adminOnly, userSvc, authSvc)
	assets.RegisterRoutes(authed, adminOnly, assetSvc)
	lifecycle.RegisterRoutes(adminOnly, engine)
	history.RegisterRoutes(authed, querySvc, assetStore)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: r,
	}

	go func() {
		var err error
		if cfg.Certificate.Cert != "" && cfg.Certificate.Key != "" {
			certFile := fmt.Sprintf("config/tls/%s/%s", mode, cfg.Certificate.Cert)
			keyFile := fmt.Sprintf("config/tls/%s/%s", mode, cfg.Certificate.Key)
			log.Printf("[INFO] listening on https://%s", cfg.Server.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Printf("[INFO] listening on http://%s", cfg.Server.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
