package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ErrReportExists is returned when a session's report was already saved.
var ErrReportExists = errors.New("report already saved for session")

// SQLReportRepo implements ReportRepo.
type SQLReportRepo struct {
	drv *entsql.Driver
	seq *sequence
}

var reportColumns = []string{
	"id", "sequence", "timestamp", "session_id", "subject", "grade",
	"total_questions", "total_correct", "accuracy", "data",
}

func (r *SQLReportRepo) SaveReport(ctx context.Context, data ReportData) error {
	if data.SessionID == "" {
		return fmt.Errorf("save report: empty session id")
	}
	body, err := json.Marshal(data.Report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(QuizReportsTable.Name).
		Columns(reportColumns[1:]...).
		Values(
			seqNum,
			time.Now().UTC(),
			data.SessionID,
			data.Subject,
			data.Grade,
			data.TotalQuestions,
			data.TotalCorrect,
			data.Accuracy,
			body,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: %s", ErrReportExists, data.SessionID)
		}
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (r *SQLReportRepo) ListReports(ctx context.Context, opts QueryOpts) ([]ReportRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(reportColumns...).
		From(entsql.Table(QuizReportsTable.Name))
	query, args := opts.apply(sel).Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var out []ReportRecord
	for rows.Next() {
		var rec ReportRecord
		var body []byte
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.Subject, &rec.Grade,
			&rec.TotalQuestions, &rec.TotalCorrect, &rec.Accuracy, &body,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		rec.Data = json.RawMessage(body)
		out = append(out, rec)
	}
	return out, rows.Err()
}
