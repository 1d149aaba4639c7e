package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// GradeRequestData captures one call to the grading provider.
type GradeRequestData struct {
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// GradeRequestRecord is a stored grading request.
type GradeRequestRecord struct {
	ID        int64
	CreatedAt time.Time
	GradeRequestData
}

// GradeLog is the append-only record of grading provider traffic.
type GradeLog struct {
	db *sql.DB
}

// Append records one grading request.
func (l *GradeLog) Append(ctx context.Context, data GradeRequestData) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO grade_requests (created_at, provider, model, input_tokens, output_tokens, latency_ms, success, error_message)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), data.Provider, data.Model, data.InputTokens, data.OutputTokens,
		data.LatencyMs, data.Success, data.ErrorMessage)
	if err != nil {
		return fmt.Errorf("append grade request: %w", err)
	}
	return nil
}

// Recent returns the most recent requests, newest first.
func (l *GradeLog) Recent(ctx context.Context, limit int) ([]GradeRequestRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, created_at, provider, model, input_tokens, output_tokens, latency_ms, success, error_message
		 FROM grade_requests ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query grade requests: %w", err)
	}
	defer rows.Close()

	var out []GradeRequestRecord
	for rows.Next() {
		var r GradeRequestRecord
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Provider, &r.Model, &r.InputTokens,
			&r.OutputTokens, &r.LatencyMs, &r.Success, &r.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scan grade request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
