package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mochi-mqtt/server/v2/hooks/auth"
	"github.com/zarlcorp/sensorgen/internal/device"
)

// LedgerFormat selects the encoding of a broker auth ledger.
type LedgerFormat string

const (
	LedgerYAML LedgerFormat = "yaml"
	LedgerJSON LedgerFormat = "json"
)

// ParseLedgerFormat maps a format name to a LedgerFormat.
func ParseLedgerFormat(s string) (LedgerFormat, error) {
	switch f := LedgerFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case LedgerYAML, LedgerJSON:
		return f, nil
	case "yml":
		return LedgerYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext returns the file extension for the format.
func (f LedgerFormat) Ext() string {
	return "." + string(f)
}

// topics a simulated sensor publishes to and subscribes from
const (
	topicInbound   = "device/inbound/#"
	topicTelemetry = "telemetry"
	topicPing      = "device/outbound/ping"
	topicOutbound  = "device/outbound/%s/#"
	topicAny       = "#"
)

// ledgerWildcards are characters mochi rule strings treat as patterns.
const ledgerWildcards = "*#+"

// ErrLedgerWildcard is returned when a credential would turn into a pattern
// inside a ledger rule.
var ErrLedgerWildcard = errors.New("wildcard in ledger credential")

// CheckLedgerPrefixes rejects prefixes that mochi would match as patterns,
// e.g. a password prefix "se*" accepting any password starting with "se".
func CheckLedgerPrefixes(cfg device.Config) error {
	prefixes := []struct {
		name, value string
	}{
		{"client", cfg.ClientPrefix},
		{"user", cfg.UserPrefix},
		{"password", cfg.PasswordPrefix},
	}
	for _, p := range prefixes {
		if strings.ContainsAny(p.value, ledgerWildcards) {
			return fmt.Errorf("%w: %s prefix %q", ErrLedgerWildcard, p.name, p.value)
		}
	}
	return nil
}

// BuildLedger returns a mochi-mqtt auth ledger that admits each identity by
// client id, username and password, and limits it to the simulator topics.
// Every other topic is denied by a trailing catch-all filter.
func BuildLedger(ids []device.Identity) *auth.Ledger {
	l := &auth.Ledger{
		Auth: make(auth.AuthRules, 0, len(ids)),
		ACL:  make(auth.ACLRules, 0, len(ids)),
	}

	for _, id := range ids {
		l.Auth = append(l.Auth, auth.AuthRule{
			Client:   auth.RString(id.ClientID),
			Username: auth.RString(id.Username),
			Password: auth.RString(id.Password),
			Allow:    true,
		})

		l.ACL = append(l.ACL, auth.ACLRule{
			Client:   auth.RString(id.ClientID),
			Username: auth.RString(id.Username),
			Filters: auth.Filters{
				topicInbound:   auth.WriteOnly,
				topicTelemetry: auth.WriteOnly,
				topicPing:      auth.ReadOnly,
				auth.RString(fmt.Sprintf(topicOutbound, id.ClientID)): auth.ReadOnly,
				topicAny: auth.Deny,
			},
		})
	}

	return l
}

// WriteLedger encodes l in the given format.
func WriteLedger(w io.Writer, l *auth.Ledger, format LedgerFormat) error {
	var (
		data []byte
		err  error
	)

	switch format {
	case LedgerYAML:
		data, err = l.ToYAML()
	case LedgerJSON:
		data, err = l.ToJSON()
		if err == nil {
			var buf bytes.Buffer
			err = json.Indent(&buf, data, "", "  ")
			data = buf.Bytes()
		}
	default:
		return fmt.Errorf("write ledger: %w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return fmt.Errorf("write ledger: encode %s: %w", format, err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
