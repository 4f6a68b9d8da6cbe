package util

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

//nolint:gochecknoglobals // here its ok
var once sync.Once

func init() {
	once.Do(func() {
		if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
			log.Printf("Warning: could not load .env file: %v", err)
		}
	})
}

const (
	defaultServerAddr      = "localhost:8080"
	defaultWriteTimeout    = 10 * time.Second
	defaultReadTimeout     = 10 * time.Second
	defaultIdleTimeout     = 30 * time.Second
	defaultGracefulTimeout = 5 * time.Second

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour

	defaultAPIURL        = "http://localhost:8080"
	defaultHTTPTimeout   = 30 * time.Second
	defaultRefreshPath   = "/auth/refresh"
	defaultProfile       = "default"
	defaultDevUserEmail  = "inspector@foodsafer.dev"
	defaultDevUserPasswd = "foodsafer"

	TokenPartsExpected = 2
	RawTokenLength     = 32
	JWTLeeWay          = 5 * time.Second
)

const (
	CredentialStoreMemory   = "memory"
	CredentialStoreFile     = "file"
	CredentialStoreRedis    = "redis"
	CredentialStorePostgres = "postgres"
)

type ClientConfig struct {
	BaseURL         string
	HTTPTimeout     time.Duration
	RefreshPath     string
	CredentialStore string
	CredentialsFile string
	Profile         string
}

func NewClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:         strings.TrimRight(getEnvOrDefault("FOODSAFER_API_URL", defaultAPIURL), "/"),
		HTTPTimeout:     parseDurationOrDefault("FOODSAFER_HTTP_TIMEOUT", defaultHTTPTimeout),
		RefreshPath:     getEnvOrDefault("FOODSAFER_REFRESH_PATH", defaultRefreshPath),
		CredentialStore: strings.ToLower(getEnvOrDefault("FOODSAFER_CREDENTIAL_STORE", CredentialStoreFile)),
		CredentialsFile: getEnvOrDefault("FOODSAFER_CREDENTIALS_FILE", defaultCredentialsFile()),
		Profile:         getEnvOrDefault("FOODSAFER_PROFILE", defaultProfile),
	}
}

type ServerConfig struct {
	ServerAddr      string
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
}

func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:      getEnvOrDefault("SERVER_ADDRESS", defaultServerAddr),
		WriteTimeout:    parseDurationOrDefault("WRITE_TIMEOUT", defaultWriteTimeout),
		ReadTimeout:     parseDurationOrDefault("READ_TIMEOUT", defaultReadTimeout),
		IdleTimeout:     parseDurationOrDefault("IDLE_TIMEOUT", defaultIdleTimeout),
		GracefulTimeout: parseDurationOrDefault("GRACEFUL_TIMEOUT", defaultGracefulTimeout),
	}
}

type TokenConfig struct {
	JwtSecretKey []byte
	AccessTTL    time.Duration
	RefreshTTL   time.Duration
}

func NewTokenConfig() *TokenConfig {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	return &TokenConfig{
		JwtSecretKey: []byte(secret),
		AccessTTL:    parseDurationOrDefault("ACCESS_TOKEN_TTL", defaultAccessTTL),
		RefreshTTL:   parseDurationOrDefault("REFRESH_TOKEN_TTL", defaultRefreshTTL),
	}
}

// DevUserConfig is the account seeded into the in-memory user store.
type DevUserConfig struct {
	Email    string
	Password string
}

func NewDevUserConfig() *DevUserConfig {
	return &DevUserConfig{
		Email:    getEnvOrDefault("DEV_USER_EMAIL", defaultDevUserEmail),
		Password: getEnvOrDefault("DEV_USER_PASSWORD", defaultDevUserPasswd),
	}
}

func GetLogLevel() string {
	return getEnvOrDefault("LOG_LEVEL", "info")
}

func getEnvOrDefault(varName, def string) string {
	if v := os.Getenv(varName); v != "" {
		return v
	}
	return def
}

func parseDurationOrDefault(varName string, def time.Duration) time.Duration {
	if v := os.Getenv(varName); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("Invalid duration in %s: %s, using default %s", varName, v, def)
	}
	return def
}

func defaultCredentialsFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "foodsafer", "credentials.json")
}
