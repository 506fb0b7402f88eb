// Package export renders generated identities into the files consumed by the
// broker and the device simulator.
package export

import "errors"

// ErrUnknownFormat is returned for an unsupported output format name.
var ErrUnknownFormat = errors.New("unknown format")
