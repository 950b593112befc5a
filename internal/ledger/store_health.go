package ledger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// CheckHealth returns diagnostic information about the ledger database.
func (s *Store) CheckHealth(ctx context.Context) (DatabaseHealth, error) {
	health := DatabaseHealth{DBPath: s.path}
	if s.path == "" {
		return health, errors.New("ledger database path is unknown")
	}

	info, err := os.Stat(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return health, nil
		}
		return health, fmt.Errorf("stat ledger database: %w", err)
	}
	if info.IsDir() {
		return health, fmt.Errorf("ledger database path %q is a directory", s.path)
	}
	health.DatabaseExists = true

	connCtx, cancel := context.WithTimeout(ensureContext(ctx), 2*time.Second)
	defer cancel()

	version, err := s.userVersion(connCtx)
	if err != nil {
		health.Error = err.Error()
		return health, err
	}
	health.SchemaVersion = version

	var integrity string
	if err := s.db.QueryRowContext(connCtx, "PRAGMA integrity_check").Scan(&integrity); err != nil {
		health.Error = err.Error()
		return health, fmt.Errorf("integrity check: %w", err)
	}
	health.IntegrityOK = integrity == "ok"
	if !health.IntegrityOK {
		health.Error = integrity
	}

	if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM runs").Scan(&health.Runs); err != nil {
		return health, fmt.Errorf("count runs: %w", err)
	}
	if err := s.db.QueryRowContext(connCtx, "SELECT COUNT(1) FROM movies").Scan(&health.Movies); err != nil {
		return health, fmt.Errorf("count movies: %w", err)
	}
	return health, nil
}
