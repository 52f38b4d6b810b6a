package source

import (
	"context"
	"errors"

	"github.com/iurnickita/merchantsync/internal/model"
)

// Adapter выдает сырые записи одного вида за диапазон дат.
type Adapter interface {
	FetchRawRecords(ctx context.Context, kind model.SourceKind, dr model.DateRange) ([]model.RawRecord, error)
}

var (
	ErrAuth            = errors.New("source authentication failed")
	ErrTransport       = errors.New("source transport failure")
	ErrUnsupportedKind = errors.New("source kind is not supported by adapter")
)

// Terminal reports whether err must end the run.
func Terminal(err error) bool {
	return errors.Is(err, ErrAuth) || errors.Is(err, ErrTransport)
}
