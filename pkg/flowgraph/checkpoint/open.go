package checkpoint

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// PostgresScheme is the URL prefix a connection string must carry to
// select the durable backend.
const PostgresScheme = "postgresql://"

// placeholderPattern matches bracket-delimited template tokens such as
// "[PROJECT-REF]" or "[YOUR-PASSWORD]" left in copied connection strings.
var placeholderPattern = regexp.MustCompile(`\[[^\[\]]*\]`)

// ValidConnString reports whether dsn should select the durable backend.
// A string qualifies only if it is non-empty, carries no bracket
// placeholder token, and starts with PostgresScheme. Nothing else about
// the URL is checked; unreachable hosts surface later from Open.
func ValidConnString(dsn string) bool {
	if dsn == "" {
		return false
	}
	if placeholderPattern.MatchString(dsn) {
		return false
	}
	return strings.HasPrefix(dsn, PostgresScheme)
}

// Open selects and opens a checkpoint store for dsn.
//
// A valid connection string (see ValidConnString) opens a Postgres store;
// if that fails the *UnavailableError is returned and nothing is retried.
// Any other value falls back silently to the registry's shared in-memory
// store. A nil registry means DefaultRegistry.
func Open(ctx context.Context, dsn string, reg *Registry, logger *slog.Logger) (Store, error) {
	if reg == nil {
		reg = DefaultRegistry
	}
	if logger == nil {
		logger = slog.Default()
	}

	if !ValidConnString(dsn) {
		logger.Info("using in-memory checkpoint store",
			slog.Bool("dsn_configured", dsn != ""))
		return reg.GetOrCreate(), nil
	}

	store, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		logger.Error("durable checkpoint store unavailable",
			slog.String("error", err.Error()))
		return nil, err
	}
	logger.Info("using postgres checkpoint store")
	return store, nil
}
