package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// 默认值
const (
	DefaultAccessTokenTTL = 30 * time.Minute
	DefaultBcryptCost     = 12
	DefaultIssuer         = "gestao-trafego-pago"
)

// Load 加载配置
// 1. 加载 .env.{env} / .env（敏感信息 + APP_ENV）
// 2. 加载 configs/common.yaml 与 configs/{env}.yaml
// 3. 环境变量覆盖
func Load() *Config {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)
	// .env 中可能设置了 APP_ENV
	env = parseEnv(getEnv("APP_ENV", string(env)))

	yamlCfg := loadYAMLConfig(env)
	return build(env, yamlCfg)
}

// build 根据 YAML 配置与环境变量构建最终配置
func build(env Environment, y *YAMLConfig) *Config {
	dbPassword := getEnv("DB_PASSWORD", "")

	databaseURL := os.Getenv("DATABASE_URL")
	driver := detectDatabaseDriver(y.Database.Driver, databaseURL)
	y.Database.Driver = driver
	if databaseURL == "" {
		databaseURL = buildDatabaseURL(y.Database, dbPassword)
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" && y.Redis.Enabled {
		redisURL = buildRedisURL(y.Redis)
	}

	if port := firstEnv("API_PORT", "PORT"); port != "" {
		y.Server.Port = port
	}
	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		y.Server.CORSOrigins = splitList(origins)
	}

	authCfg := y.Auth
	authCfg.JWTSecret = firstEnv("JWT_SECRET", "SECRET_KEY")
	authCfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		authCfg.AdminEmail = email
	}
	if ttl := os.Getenv("ACCESS_TOKEN_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			authCfg.AccessTokenTTL = d
		} else {
			log.Printf("[config] ignoring invalid ACCESS_TOKEN_TTL %q: %v", ttl, err)
		}
	}

	logCfg := y.Log
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		logCfg.Level = lvl
	}
	if f := os.Getenv("LOG_FORMAT"); f != "" {
		logCfg.Format = f
	}

	cfg := &Config{
		Env:            env,
		DatabaseDriver: driver,
		DatabaseURL:    databaseURL,
		DatabaseName:   y.Database.Name,
		RedisURL:       redisURL,
		APIPort:        y.Server.Port,
		Server:         y.Server,
		Auth:           authCfg,
		Log:            logCfg,
		ConfigFile:     y.loadedFrom,
	}
	cfg.applyDefaults()
	return cfg
}

// defaultYAMLConfig 返回硬编码默认值
func defaultYAMLConfig() *YAMLConfig {
	return &YAMLConfig{
		Server: ServerConfig{
			Port:         "8000",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "trafego",
			Name:    "gestao_trafego",
			SSLMode: "disable",
		},
		Redis: RedisConfig{Host: "localhost", Port: 6379},
		Auth: AuthConfig{
			AccessTokenTTL: DefaultAccessTokenTTL,
			BcryptCost:     DefaultBcryptCost,
			Issuer:         DefaultIssuer,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → common.yaml → {env}.yaml
func loadYAMLConfig(env Environment) *YAMLConfig {
	cfg := defaultYAMLConfig()

	paths := effectiveConfigPaths()
	for _, name := range []string{"common.yaml", fmt.Sprintf("%s.yaml", env)} {
		for _, base := range paths {
			path := filepath.Join(base, name)
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			if err := yaml.Unmarshal(data, cfg); err != nil {
				log.Printf("[config] failed to parse %s: %v", path, err)
				break
			}
			cfg.loadedFrom = path
			break
		}
	}
	return cfg
}

// applyDefaults 填充缺失或越界的值
func (c *Config) applyDefaults() {
	if c.APIPort == "" {
		c.APIPort = "8000"
		c.Server.Port = c.APIPort
	}
	if c.Auth.AccessTokenTTL <= 0 {
		c.Auth.AccessTokenTTL = DefaultAccessTokenTTL
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = DefaultBcryptCost
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = DefaultIssuer
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 15 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.DatabaseName == "" {
		c.DatabaseName = "gestao_trafego"
	}
}

// Validate 校验启动所需的必填项
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.Env == EnvProduction && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	switch c.DatabaseDriver {
	case "postgres", "sqlite", "mongodb":
	default:
		errs = append(errs, fmt.Errorf("unsupported database driver %q", c.DatabaseDriver))
	}
	return errors.Join(errs...)
}

// IsTest 是否为测试环境
func (c *Config) IsTest() bool {
	return c.Env == EnvTest
}

// String 返回配置摘要（隐藏密码）
func (c *Config) String() string {
	redis := c.RedisURL
	if redis == "" {
		redis = "disabled"
	}
	return fmt.Sprintf("Config{Env: %s, Driver: %s, DB: %s, Redis: %s, Port: %s, TokenTTL: %s}",
		c.Env, c.DatabaseDriver, maskPassword(c.DatabaseURL), maskPassword(redis), c.APIPort, c.Auth.AccessTokenTTL)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
