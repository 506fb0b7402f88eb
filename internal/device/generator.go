package device

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"
)

const (
	DefaultCount  = 10
	DefaultPrefix = "sensor"

	// MaxCount bounds a single run.
	MaxCount = 10000
)

var (
	// ErrInvalidCount is returned when the requested count is out of range.
	ErrInvalidCount = errors.New("invalid count")

	// ErrEmptyPrefix is returned when one of the prefixes is blank.
	ErrEmptyPrefix = errors.New("empty prefix")

	// ErrLeadingSpace is returned when a prefix starts with whitespace,
	// which encoding/csv would write quoted.
	ErrLeadingSpace = errors.New("prefix starts with whitespace")
)

// Config describes a generation run. The three prefixes are independent
// even though they share a default.
type Config struct {
	Count          int
	ClientPrefix   string
	UserPrefix     string
	PasswordPrefix string
}

// DefaultConfig returns the config of a plain run.
func DefaultConfig() Config {
	return Config{
		Count:          DefaultCount,
		ClientPrefix:   DefaultPrefix,
		UserPrefix:     DefaultPrefix,
		PasswordPrefix: DefaultPrefix,
	}
}

// Validate reports whether the config can produce a batch.
func (c Config) Validate() error {
	if c.Count <= 0 || c.Count > MaxCount {
		return fmt.Errorf("%w: %d (want 1-%d)", ErrInvalidCount, c.Count, MaxCount)
	}

	prefixes := []struct {
		name, value string
	}{
		{"client", c.ClientPrefix},
		{"user", c.UserPrefix},
		{"password", c.PasswordPrefix},
	}
	for _, p := range prefixes {
		if p.value == "" {
			return fmt.Errorf("%w: %s", ErrEmptyPrefix, p.name)
		}
		if r, _ := utf8.DecodeRuneInString(p.value); unicode.IsSpace(r) {
			return fmt.Errorf("%w: %s %q", ErrLeadingSpace, p.name, p.value)
		}
	}

	return nil
}

// Generate produces cfg.Count identities ordered by index.
// Callers are expected to Validate first; a non-positive count yields nil.
func Generate(cfg Config) []Identity {
	if cfg.Count <= 0 {
		return nil
	}

	ids := make([]Identity, 0, cfg.Count)
	for i := range cfg.Count {
		ids = append(ids, Identity{
			Index:    i,
			ClientID: label(cfg.ClientPrefix, i),
			Username: label(cfg.UserPrefix, i),
			Password: label(cfg.PasswordPrefix, i),
		})
	}
	return ids
}

// label formats "<prefix>-<index>".
func label(prefix string, i int) string {
	return prefix + "-" + strconv.Itoa(i)
}
