package repository

import (
	"errors"
	"fmt"

	"deposito-pos/pkg/validator"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidRecord     = errors.New("invalid record")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}
	return err
}

// checkRecord rejects writes whose required fields are missing.
func checkRecord(v interface{}) error {
	if err := validator.Check(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}

// keepValid drops rows that no longer satisfy the model constraints so a
// single malformed row cannot break a listing. Dropped rows are logged.
func keepValid[T any](collection string, rows []T, id func(T) string) []T {
	out := rows[:0]
	for _, row := range rows {
		if err := validator.Check(row); err != nil {
			log.Warn().Str("collection", collection).Str("id", id(row)).Err(err).Msg("skipping invalid record")
			continue
		}
		out = append(out, row)
	}
	return out
}
