package ciutil

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
)

// Connection defaults of the Postgres service container used in CI.
const (
	StandardCIUser     = "postgres"
	StandardCIPassword = "postgres"
	StandardCIPort     = "5432"
	StandardCIDatabase = "recall_test"
	StandardCIOptions  = "sslmode=disable"
)

// GetTestDatabaseURL returns the integration test database URL, or "" when
// none is configured. RECALL_TEST_DB_URL wins over RECALL_DATABASE_URL and
// DATABASE_URL. In CI the credentials are normalized to the service
// container defaults.
func GetTestDatabaseURL(logger *slog.Logger) string {
	dbURL := GetEnvWithFallbacks(
		[]string{EnvRecallTestDBURL, EnvRecallDatabaseURL, EnvDatabaseURL},
		"",
		logger,
	)
	if dbURL == "" || !IsCI() {
		return dbURL
	}

	standardized, err := StandardizeDatabaseURL(dbURL)
	if err != nil {
		if logger != nil {
			logger.Error("Failed to standardize database URL", slog.String("error", err.Error()))
		}
		return dbURL
	}
	return standardized
}

// StandardizeDatabaseURL rewrites a postgres URL to the CI credentials,
// filling in the port, database name and options when they are missing.
// Non-postgres URLs are returned unchanged.
func StandardizeDatabaseURL(dbURL string) (string, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return dbURL, nil
	}

	u.User = url.UserPassword(StandardCIUser, StandardCIPassword)
	if u.Port() == "" {
		host := u.Hostname()
		if host == "" {
			host = "localhost"
		}
		u.Host = host + ":" + StandardCIPort
	}
	if strings.TrimPrefix(u.Path, "/") == "" {
		u.Path = "/" + StandardCIDatabase
	}
	if u.RawQuery == "" {
		u.RawQuery = StandardCIOptions
	}
	return u.String(), nil
}
