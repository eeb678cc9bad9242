package utils

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// ToPgText maps nil to SQL NULL.
func ToPgText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: *s, Valid: true}
}

// FromPgText maps SQL NULL to nil.
func FromPgText(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	s := t.String
	return &s
}
