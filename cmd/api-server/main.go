// Package main API Server 入口
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Michelle-Meira/gestao-trafego-pago/api"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/auth"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/apiserver/server"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/config"
	"github.com/Michelle-Meira/gestao-trafego-pago/internal/shared/infra"
	"github.com/Michelle-Meira/gestao-trafego-pago/pkg/logging"
)

func main() {
	// 加载配置（自动加载 .env，根据 APP_ENV 切换 YAML 配置）
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	log.Printf("Starting API Server... [env=%s]", cfg.Env)
	log.Printf("Config: %s", cfg.String())

	logger := logging.New(logging.Config{
		Level:     cfg.Log.Level,
		Format:    cfg.Log.Format,
		Output:    "stdout",
		Component: "api-server",
	})

	// 初始化存储与事件总线
	inf, err := infra.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize infrastructure: %v", err)
	}
	defer inf.Close()
	log.Printf("Connected to %s", cfg.DatabaseDriver)

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret: cfg.Auth.JWTSecret,
		TTL:    cfg.Auth.AccessTokenTTL,
		Issuer: cfg.Auth.Issuer,
	})
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	spec, err := api.LoadSpec(ctx)
	cancel()
	if err != nil {
		log.Fatalf("Failed to load OpenAPI document: %v", err)
	}

	h := server.NewHandler(server.Options{
		Store:       inf.Storage,
		EventBus:    inf.EventBus,
		Hasher:      auth.NewPasswordHasher(cfg.Auth.BcryptCost),
		Tokens:      tokens,
		Logger:      logger,
		Metrics:     server.NewMetrics("api", nil),
		OpenAPI:     spec,
		CORSOrigins: cfg.Server.CORSOrigins,
	})

	// 初始管理员（配置了 ADMIN_EMAIL/ADMIN_PASSWORD 时）
	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		admin, err := h.AuthService().EnsureAdminUser(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
		cancel()
		if err != nil {
			log.Fatalf("Failed to ensure admin user: %v", err)
		}
		log.Printf("Admin user: %s [role=%s active=%t]", admin.Email, admin.Role, admin.IsActive)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      h.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 优雅关闭
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("API Server listening on :%s", cfg.APIPort)
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}

	fmt.Println("Server stopped")
}
