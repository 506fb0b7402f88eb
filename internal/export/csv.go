package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/zarlcorp/sensorgen/internal/device"
)

// superuser is the is_superuser literal written for every row.
const superuser = "False"

var (
	csvHeader       = []string{"user_id", "password", "is_superuser"}
	hashedCSVHeader = []string{"user_id", "password_hash", "salt", "is_superuser"}
)

// WriteCSV writes the broker user-import file: a header row followed by one
// row per identity, in index order.
func WriteCSV(w io.Writer, ids []device.Identity) error {
	cw := newCSVWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv: header: %w", err)
	}
	for _, id := range ids {
		if err := cw.Write([]string{id.Username, id.Password, superuser}); err != nil {
			return fmt.Errorf("write csv: %s: %w", id.Username, err)
		}
	}

	return flushCSV(cw)
}

// WriteHashedCSV writes the import file with salted SHA-256 hashes in place
// of plaintext passwords.
func WriteHashedCSV(w io.Writer, ids []device.Identity, salt Salter) error {
	if salt == nil {
		salt = RandomSalt
	}
	cw := newCSVWriter(w)

	if err := cw.Write(hashedCSVHeader); err != nil {
		return fmt.Errorf("write hashed csv: header: %w", err)
	}
	for _, id := range ids {
		s, err := salt()
		if err != nil {
			return fmt.Errorf("write hashed csv: %s: %w", id.Username, err)
		}
		row := []string{id.Username, HashPassword(id.Password, s), s, superuser}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write hashed csv: %s: %w", id.Username, err)
		}
	}

	return flushCSV(cw)
}

// newCSVWriter terminates rows with CRLF.
func newCSVWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return cw
}

func flushCSV(cw *csv.Writer) error {
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
