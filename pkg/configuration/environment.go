package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/iota-uz/utils/fs"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/tablemaster/tablemaster/pkg/logging"
)

const Production = "production"

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files from the working directory, falling back to
// the nearest directory containing go.mod when none are found.
func LoadEnv(envFiles []string) (int, error) {
	existingFiles := existing(envFiles, "")
	if len(existingFiles) == 0 {
		if root, ok := moduleRoot(); ok {
			existingFiles = existing(envFiles, root)
		}
	}
	if len(existingFiles) == 0 {
		return 0, nil
	}
	return len(existingFiles), godotenv.Load(existingFiles...)
}

func existing(envFiles []string, dir string) []string {
	out := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		path := file
		if dir != "" {
			path = filepath.Join(dir, file)
		}
		if fs.FileExists(path) {
			out = append(out, path)
		}
	}
	return out
}

func moduleRoot() (string, bool) {
	wd, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for dir := wd; ; {
		if fs.FileExists(filepath.Join(dir, "go.mod")) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"tablemaster"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type LogOptions struct {
	LogPath string `env:"LOG_PATH" envDefault:"./logs/app.log"`
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"tablemaster"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled   bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	GlobalRPS int    `env:"RATE_LIMIT_GLOBAL_RPS" envDefault:"1000"`
	Storage   string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	RedisURL  string `env:"RATE_LIMIT_REDIS_URL"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.GlobalRPS < 0 {
		return fmt.Errorf("rate limit GlobalRPS must be non-negative, got %d", r.GlobalRPS)
	}
	if r.GlobalRPS > 1000000 {
		return fmt.Errorf("rate limit GlobalRPS too high, maximum is 1,000,000, got %d", r.GlobalRPS)
	}
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if r.Storage == "redis" && r.RedisURL == "" {
		return fmt.Errorf("rate limit RedisURL is required when Storage is 'redis'")
	}
	return nil
}

type CacheOptions struct {
	Backend string        `env:"CACHE_BACKEND" envDefault:"memory"` // memory or redis
	TTL     time.Duration `env:"CACHE_TTL" envDefault:"24h"`
	Prefix  string        `env:"CACHE_PREFIX" envDefault:"tablemaster:"`
}

// IdentityOptions describe how the upstream auth proxy forwards the signed-in user.
type IdentityOptions struct {
	UserIDHeader   string `env:"IDENTITY_USER_ID_HEADER" envDefault:"X-User-Id"`
	EmailHeader    string `env:"IDENTITY_EMAIL_HEADER" envDefault:"X-User-Email"`
	NameHeader     string `env:"IDENTITY_NAME_HEADER" envDefault:"X-User-Name"`
	RoleHeader     string `env:"IDENTITY_ROLE_HEADER" envDefault:"X-User-Role"`
	AdminRole      string `env:"IDENTITY_ADMIN_ROLE" envDefault:"admin"`
	AdminEmailsRaw string `env:"ADMIN_EMAILS" envDefault:""`
}

// AdminEmails returns the normalized admin allowlist.
func (o *IdentityOptions) AdminEmails() []string {
	var out []string
	for _, part := range strings.FieldsFunc(o.AdminEmailsRaw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t'
	}) {
		out = append(out, strings.ToLower(part))
	}
	return out
}

type MenuOptions struct {
	BreakerMaxFailures uint32        `env:"MENU_BREAKER_MAX_FAILURES" envDefault:"3"`
	BreakerTimeout     time.Duration `env:"MENU_BREAKER_TIMEOUT" envDefault:"30s"`
}

type Configuration struct {
	Database      DatabaseOptions
	Log           LogOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions
	RateLimit     RateLimitOptions
	Cache         CacheOptions
	Identity      IdentityOptions
	Menu          MenuOptions

	StorageBackend   string   `env:"STORAGE_BACKEND" envDefault:"postgres"`
	RedisURL         string   `env:"REDIS_URL" envDefault:"localhost:6379"`
	ServerPort       int      `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string   `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string   `env:"-"`
	CorsOrigins      []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://localhost:5173"`
	LogLevel         string   `env:"LOG_LEVEL" envDefault:"error"`
	// Looked up on incoming requests; a random uuidv4 is generated when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// Looked up on incoming requests; request.RemoteAddr is used when absent.
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.Log.LogPath)
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.Database.Opts = c.Database.ConnectionString()
	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validate() error {
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}

	backend := strings.ToLower(strings.TrimSpace(c.StorageBackend))
	switch backend {
	case StorageBackendPostgres, StorageBackendMemory:
	default:
		return fmt.Errorf("invalid STORAGE_BACKEND=%q (expected postgres|memory)", c.StorageBackend)
	}
	c.StorageBackend = backend

	cacheBackend := strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch cacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("invalid CACHE_BACKEND=%q (expected memory|redis)", c.Cache.Backend)
	}
	c.Cache.Backend = cacheBackend

	if c.Cache.TTL < 0 {
		return fmt.Errorf("CACHE_TTL must be non-negative, got %s", c.Cache.TTL)
	}
	if strings.TrimSpace(c.Identity.UserIDHeader) == "" {
		return fmt.Errorf("IDENTITY_USER_ID_HEADER must not be empty")
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
