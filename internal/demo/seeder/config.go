package seeder

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type LookupFunc func(string) (string, bool)

type Config struct {
	DSN       string
	RowCount  int
	BatchSize int
	Truncate  bool
	Seed      int64
}

func DefaultConfig() Config {
	return Config{
		RowCount:  500,
		BatchSize: 50,
		Truncate:  false,
		Seed:      time.Now().UTC().UnixNano(),
	}
}

func LoadConfigFromEnv(lookup LookupFunc) (Config, error) {
	if lookup == nil {
		return Config{}, fmt.Errorf("lookup function is required")
	}

	cfg := DefaultConfig()
	if err := applyString(lookup, "PROMPTBOARD_SEED_DSN", &cfg.DSN); err != nil {
		return Config{}, err
	}
	if cfg.DSN == "" {
		if err := applyString(lookup, "PROMPTBOARD_WAREHOUSE_DSN", &cfg.DSN); err != nil {
			return Config{}, err
		}
	}
	if err := applyInt(lookup, "PROMPTBOARD_SEED_ROWS", &cfg.RowCount); err != nil {
		return Config{}, err
	}
	if err := applyInt(lookup, "PROMPTBOARD_SEED_BATCH_SIZE", &cfg.BatchSize); err != nil {
		return Config{}, err
	}
	if err := applyBool(lookup, "PROMPTBOARD_SEED_TRUNCATE", &cfg.Truncate); err != nil {
		return Config{}, err
	}
	if err := applyInt64(lookup, "PROMPTBOARD_SEED_SEED", &cfg.Seed); err != nil {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.DSN) == "" {
		return Config{}, fmt.Errorf("PROMPTBOARD_SEED_DSN or PROMPTBOARD_WAREHOUSE_DSN is required")
	}
	if cfg.RowCount <= 0 {
		return Config{}, fmt.Errorf("PROMPTBOARD_SEED_ROWS must be > 0")
	}
	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("PROMPTBOARD_SEED_BATCH_SIZE must be > 0")
	}

	cfg.DSN = strings.TrimSpace(cfg.DSN)
	return cfg, nil
}

func applyString(lookup LookupFunc, key string, dst *string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	*dst = strings.TrimSpace(raw)
	return nil
}

func applyBool(lookup LookupFunc, key string, dst *bool) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt(lookup LookupFunc, key string, dst *int) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func applyInt64(lookup LookupFunc, key string, dst *int64) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
