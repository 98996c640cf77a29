package postgres

//nolint:revive
import (
	"booknotify/config"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	maxIdleConnections = 10
	maxOpenConnections = 10
	connMaxLifetime    = 30 * time.Minute
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(config *config.Config) *Connection {
	pg := config.DB.Postgres

	conn := &Connection{
		Read:  connect("read", DSN(pg.Read, DatabaseName(config, pg.Read.Name), nil), pg.MaxRetry, pg.RetryWaitTime),
		Write: connect("write", DSN(pg.Write, DatabaseName(config, pg.Write.Name), nil), pg.MaxRetry, pg.RetryWaitTime),
	}

	if conn.Read == nil || conn.Write == nil {
		log.Fatal().Int("maxRetry", pg.MaxRetry).Msg("Failed to connect to database")
	}

	return conn
}

// Ping checks both pools. Used by the health endpoint.
func (c *Connection) Ping(ctx context.Context) error {
	if err := c.Write.PingContext(ctx); err != nil {
		return fmt.Errorf("write pool: %w", err)
	}

	if err := c.Read.PingContext(ctx); err != nil {
		return fmt.Errorf("read pool: %w", err)
	}

	return nil
}

func (c *Connection) Close() error {
	return errors.Join(c.Write.Close(), c.Read.Close())
}

// DatabaseName applies DB_POSTGRES_PREFIX to base.
func DatabaseName(config *config.Config, base string) string {
	return config.DB.Postgres.Prefix + base
}

// DSN builds a postgres:// URL for endpoint. Extra query values are merged in, and the
// endpoint timezone, when set, becomes the session TimeZone.
func DSN(endpoint config.PostgresEndpoint, dbName string, extra url.Values) string {
	query := url.Values{}

	if endpoint.SSLMode != "" {
		query.Set("sslmode", endpoint.SSLMode)
	}

	if endpoint.Timezone != "" {
		query.Set("timezone", endpoint.Timezone)
	}

	for key, values := range extra {
		query[key] = values
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(endpoint.Username, endpoint.Password),
		Host:     net.JoinHostPort(endpoint.Host, endpoint.Port),
		Path:     "/" + dbName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

func connect(name, dsn string, maxRetry, waitSeconds int) *sqlx.DB {
	maxRetry = max(maxRetry, 1)

	for attempt := 1; attempt <= maxRetry; attempt++ {
		db, err := sqlx.Connect("postgres", dsn)
		if err == nil {
			db.SetMaxIdleConns(maxIdleConnections)
			db.SetMaxOpenConns(maxOpenConnections)
			db.SetConnMaxLifetime(connMaxLifetime)

			log.Info().Str("name", name).Msg("Connected to database")

			return db
		}

		log.Error().Err(err).Str("name", name).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		if attempt < maxRetry {
			time.Sleep(time.Duration(waitSeconds) * time.Second)
		}
	}

	return nil
}
