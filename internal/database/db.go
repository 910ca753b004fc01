// Package database opens the session database and applies its migrations.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations
var migrationsFS embed.FS

// Supported database types.
const (
	SQLite   = "sqlite"
	MySQL    = "mysql"
	Postgres = "postgres"
)

const defaultSQLitePath = "donationhub.db"

// Normalize maps a configured database type onto one of the supported
// names. "sqlite3" and "postgresql" are accepted as aliases.
func Normalize(dbType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "", SQLite, "sqlite3":
		return SQLite, nil
	case MySQL:
		return MySQL, nil
	case Postgres, "postgresql":
		return Postgres, nil
	}
	return "", fmt.Errorf("unsupported database type: %s", dbType)
}

// Open connects to the database and verifies the connection.
func Open(dbType, dataSourceName string) (*sql.DB, error) {
	dbType, err := Normalize(dbType)
	if err != nil {
		return nil, err
	}

	var driverName string
	switch dbType {
	case SQLite:
		driverName = "sqlite3"
		if dataSourceName == "" {
			dataSourceName = defaultSQLitePath
		}
	case MySQL:
		driverName = "mysql"
	case Postgres:
		driverName = "postgres"
	}
	if dataSourceName == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for %s", dbType)
	}

	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	if dbType == SQLite {
		// sqlite allows one writer; serialize through a single connection.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded migrations for dbType.
func Migrate(db *sql.DB, dbType string) error {
	dbType, err := Normalize(dbType)
	if err != nil {
		return err
	}

	var driver database.Driver
	switch dbType {
	case SQLite:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case MySQL:
		driver, err = mysql.WithInstance(db, &mysql.Config{})
	case Postgres:
		driver, err = postgres.WithInstance(db, &postgres.Config{})
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+dbType)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dbType, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Rebind rewrites ? placeholders into the form dbType expects.
func Rebind(dbType, query string) string {
	if dbType != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
