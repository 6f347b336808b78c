package dynobj

import (
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/edadma/dynobj/logger"
)

// Config holds the runtime knobs exposed to embedders, loaded from
// environment variables with the same "env var with a sensible default"
// pattern as the teacher's own config package
// (osakka-entitydb/src/config/config.go). Most users never need this:
// Create and the package-level Set/Get functions already run against
// whatever Config LoadConfig() found in the environment at process
// start, applied automatically by this package's init.
type Config struct {
	// HashThreshold is the number of properties a new Store tolerates
	// before upgrading from a linear scan to a hash map. Defaults to
	// HashThreshold (8), the same value original_source/tests.c calls
	// DO_HASH_THRESHOLD. Read from DYNOBJ_HASH_THRESHOLD.
	HashThreshold int

	// InternStrategy selects the table backing the process-wide
	// Intern/Find functions: "guarded" (default, sync.RWMutex + map) or
	// "concurrent" (sharded lock-free). Read from
	// DYNOBJ_INTERN_STRATEGY.
	InternStrategy string
}

// LoadConfig reads DYNOBJ_HASH_THRESHOLD and DYNOBJ_INTERN_STRATEGY from
// the environment, falling back to HashThreshold and "guarded"
// respectively when unset or unparsable.
func LoadConfig() Config {
	cfg := Config{
		HashThreshold:  HashThreshold,
		InternStrategy: "guarded",
	}

	if raw := os.Getenv("DYNOBJ_HASH_THRESHOLD"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.HashThreshold = n
		}
	}

	if raw := os.Getenv("DYNOBJ_INTERN_STRATEGY"); raw == "guarded" || raw == "concurrent" {
		cfg.InternStrategy = raw
	}

	return cfg
}

// Interner returns the table cfg.InternStrategy selects: the
// process-wide GuardedTable for "guarded", or the process-wide
// ConcurrentTable for "concurrent".
func (cfg Config) Interner() Interner {
	if cfg.InternStrategy == "concurrent" {
		return DefaultConcurrentTable()
	}
	return defaultTable
}

// Process-wide configuration state. activeHashThreshold is read on
// every Create/CreateWithPrototype call, so it is an atomic.Int64
// rather than behind the heavier activeConfigMu below, the same
// tradeoff the teacher's logger package makes for its own hot-path
// level check.
var (
	activeHashThreshold atomic.Int64

	activeConfigMu  sync.RWMutex
	activeConfig    Config
	activeInternerV Interner
)

func init() {
	ApplyConfig(LoadConfig())
}

// ApplyConfig installs cfg as the process-wide configuration: new
// Objects use cfg.HashThreshold for their property store, and the
// package-level Intern/FindInterned/InternCleanup/InternSize functions
// route through cfg.Interner(). Existing Objects and their stores are
// unaffected — the threshold an Object was created with never changes
// underneath it.
func ApplyConfig(cfg Config) {
	if cfg.HashThreshold <= 0 {
		cfg.HashThreshold = HashThreshold
	}
	if cfg.InternStrategy != "concurrent" {
		cfg.InternStrategy = "guarded"
	}

	activeHashThreshold.Store(int64(cfg.HashThreshold))

	activeConfigMu.Lock()
	activeConfig = cfg
	activeInternerV = cfg.Interner()
	activeConfigMu.Unlock()

	logger.Debug("applied config: hash_threshold=%d intern_strategy=%s", cfg.HashThreshold, cfg.InternStrategy)
}

// CurrentConfig returns the process-wide configuration currently in
// effect, i.e. the Config passed to the most recent ApplyConfig call
// (or LoadConfig()'s result, applied automatically at package init).
func CurrentConfig() Config {
	activeConfigMu.RLock()
	defer activeConfigMu.RUnlock()
	return activeConfig
}

// currentHashThreshold returns the threshold new stores are created
// with, without taking activeConfigMu.
func currentHashThreshold() int {
	return int(activeHashThreshold.Load())
}

// currentInterner returns the table the package-level Intern family
// currently routes through.
func currentInterner() Interner {
	activeConfigMu.RLock()
	defer activeConfigMu.RUnlock()
	return activeInternerV
}
