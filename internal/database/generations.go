// Package database defines the insertions and transactions to the database
package database

import (
	"database/sql"
	"fmt"
	"strings"

	"forge-api/internal/shared"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveGenerations batch-inserts completed generation history rows.
func (s *Store) SaveGenerations(recs []*shared.GenerationRecord) error {
	if len(recs) == 0 {
		return nil
	}

	sqlStr := `INSERT INTO generation (
            request_id, language, task_type,
            prompt_chars, code_chars,
            total_time, created_at
        ) VALUES`

	vals := []any{}
	for _, rec := range recs {
		sqlStr += "(?, ?, ?, ?, ?, ?, ?),"
		vals = append(vals,
			rec.ID, rec.Language, rec.TaskType,
			rec.PromptChars, rec.CodeChars,
			rec.Duration.Milliseconds(), rec.CreatedAt,
		)
	}
	sqlStr = strings.TrimSuffix(sqlStr, ",")

	_, err := s.db.Exec(sqlStr, vals...)
	if err != nil {
		return fmt.Errorf("failed to save generations: %w", err)
	}
	return nil
}
