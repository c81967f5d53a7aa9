package itf

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"github.com/tablemaster/tablemaster/migrations"
	"github.com/tablemaster/tablemaster/pkg/configuration"
	pkgmigrations "github.com/tablemaster/tablemaster/pkg/migrations"
)

const (
	// PostgreSQL database name maximum length is 63 characters
	maxDBNameLength  = 63
	hashSuffixLength = 9
)

var unsafeDBChars = regexp.MustCompile(`[^a-z0-9_]+`)

func NewPool(dbOpts string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	config, err := pgxpool.ParseConfig(dbOpts)
	if err != nil {
		return nil, err
	}
	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Minute * 5
	config.MaxConnIdleTime = time.Second * 30

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	return pool, nil
}

// sanitizeDBName lowercases name, replaces unsafe characters with underscores
// and keeps the result within PostgreSQL's identifier limit.
func sanitizeDBName(name string) string {
	sanitized := unsafeDBChars.ReplaceAllString(strings.ToLower(name), "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "test_db"
	}
	if len(sanitized) <= maxDBNameLength {
		return sanitized
	}
	sum := sha256.Sum256([]byte(name))
	return fmt.Sprintf("%s_%x", sanitized[:maxDBNameLength-hashSuffixLength], sum[:4])
}

func adminConnString() string {
	c := configuration.Use()
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=postgres password=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, c.Database.Password,
	)
}

// Available reports whether the configured PostgreSQL server accepts connections.
// The probe runs once per test binary.
var Available = sync.OnceValue(func() bool {
	db, err := sql.Open("postgres", adminConnString())
	if err != nil {
		return false
	}
	defer db.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return db.PingContext(ctx) == nil
})

func CreateDB(name string) error {
	sanitizedName := sanitizeDBName(name)

	db, err := sql.Open("postgres", adminConnString())
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("[WARNING] Error closing CreateDB connection: %v", err)
		}
	}()
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s", sanitizedName)); err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, fmt.Sprintf("CREATE DATABASE %s", sanitizedName))
	return err
}

func DbOpts(name string) string {
	c := configuration.Use()
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		c.Database.Host, c.Database.Port, c.Database.User, sanitizeDBName(name), c.Database.Password,
	)
}

// Migrate applies every embedded migration to the named database.
func Migrate(ctx context.Context, name string) error {
	runner := pkgmigrations.NewRunner(migrations.FS, configuration.Use().Logger())
	return runner.Up(ctx, DbOpts(name))
}
