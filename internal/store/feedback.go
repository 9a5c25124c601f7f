package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// SQLFeedbackRepo implements FeedbackRepo.
type SQLFeedbackRepo struct {
	drv *entsql.Driver
	seq *sequence
}

var feedbackColumns = []string{
	"id", "sequence", "timestamp", "session_id", "question_id",
	"question_text", "tag", "note",
}

func (r *SQLFeedbackRepo) AppendFeedback(ctx context.Context, data FeedbackData) error {
	if _, err := ParseFeedbackTag(string(data.Tag)); err != nil {
		return err
	}
	if data.QuestionID == "" {
		return fmt.Errorf("append feedback: empty question id")
	}

	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(QuestionFeedbacksTable.Name).
		Columns(feedbackColumns[1:]...).
		Values(
			seqNum,
			time.Now().UTC(),
			data.SessionID,
			data.QuestionID,
			data.QuestionText,
			string(data.Tag),
			data.Note,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save feedback: %w", err)
	}
	return nil
}

func (r *SQLFeedbackRepo) ListFeedback(ctx context.Context, opts QueryOpts) ([]FeedbackRecord, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(feedbackColumns...).
		From(entsql.Table(QuestionFeedbacksTable.Name))
	query, args := opts.apply(sel).Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	var out []FeedbackRecord
	for rows.Next() {
		var rec FeedbackRecord
		var tag string
		if err := rows.Scan(
			&rec.ID, &rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.QuestionID,
			&rec.QuestionText, &tag, &rec.Note,
		); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		rec.Tag = FeedbackTag(tag)
		out = append(out, rec)
	}
	return out, rows.Err()
}
