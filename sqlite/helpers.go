package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/adscan"
)

// appendPagination appends LIMIT and OFFSET clauses when values are > 0.
// SQLite only accepts OFFSET after a LIMIT, so an offset alone gets LIMIT -1.
func appendPagination(query *strings.Builder, args *[]any, limit, offset int) {
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, limit)
	} else if offset > 0 {
		query.WriteString(" LIMIT -1")
	}
	if offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, offset)
	}
}

// appendAdFilter appends the WHERE conditions of filter.
func appendAdFilter(query *strings.Builder, args *[]any, filter adscan.AdFilter) {
	query.WriteString(" WHERE 1=1")
	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		*args = append(*args, *filter.ID)
	}
	if filter.PageURL != nil {
		query.WriteString(" AND page_url = ?")
		*args = append(*args, *filter.PageURL)
	}
	if filter.TargetURL != nil {
		query.WriteString(" AND target_url = ?")
		*args = append(*args, *filter.TargetURL)
	}
}

// nullString maps a nil pointer to SQL NULL.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// stringPtr maps SQL NULL to a nil pointer.
func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// encodeErrors stores a nil slice as NULL so it round-trips as JSON null.
func encodeErrors(errs []string) (sql.NullString, error) {
	if errs == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(errs)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode errors: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func decodeErrors(s sql.NullString) ([]string, error) {
	if !s.Valid {
		return nil, nil
	}
	var errs []string
	if err := json.Unmarshal([]byte(s.String), &errs); err != nil {
		return nil, fmt.Errorf("failed to decode errors: %w", err)
	}
	return errs, nil
}
