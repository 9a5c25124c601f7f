package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// SQLEventRepo stores one row per provider call in llm_request_events.
type SQLEventRepo struct {
	drv *entsql.Driver
	seq *sequence
}

// llmEventColumns is the select order; the insert uses everything after id.
var llmEventColumns = []string{
	"id", "sequence", "timestamp",
	"provider", "model", "purpose", "attempt", "stop_reason",
	"input_tokens", "output_tokens", "latency_ms",
	"success", "error_message", "request_body", "response_body",
}

func (r *SQLEventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seq, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	values := []any{
		seq, time.Now().UTC(),
		data.Provider, data.Model, data.Purpose, data.Attempt, data.StopReason,
		data.InputTokens, data.OutputTokens, data.LatencyMs,
		data.Success, data.ErrorMessage, data.RequestBody, data.ResponseBody,
	}
	query, args := entsql.Dialect(dialect.SQLite).
		Insert(LLMRequestEventsTable.Name).
		Columns(llmEventColumns[1:]...).
		Values(values...).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("insert llm event (%s/%s): %w", data.Provider, data.Purpose, err)
	}
	return nil
}

// QueryLLMEvents returns matching events newest first. Filters are applied
// in SQL before the limit.
func (r *SQLEventRepo) QueryLLMEvents(ctx context.Context, filter LLMEventFilter) ([]LLMEventRecord, error) {
	sel := r.selectEvents()
	if filter.Purpose != "" {
		sel.Where(entsql.EQ("purpose", filter.Purpose))
	}
	if filter.Provider != "" {
		sel.Where(entsql.EQ("provider", filter.Provider))
	}
	if filter.FailedOnly {
		sel.Where(entsql.EQ("success", false))
	}
	return r.scan(ctx, filter.QueryOpts.apply(sel))
}

func (r *SQLEventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMEventRecord, error) {
	events, err := r.scan(ctx, r.selectEvents().Where(entsql.EQ("id", id)))
	if err != nil || len(events) == 0 {
		return nil, err
	}
	return &events[0], nil
}

func (r *SQLEventRepo) selectEvents() *entsql.Selector {
	return entsql.Dialect(dialect.SQLite).
		Select(llmEventColumns...).
		From(entsql.Table(LLMRequestEventsTable.Name))
}

func (r *SQLEventRepo) scan(ctx context.Context, sel *entsql.Selector) ([]LLMEventRecord, error) {
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("select llm events: %w", err)
	}
	defer rows.Close()

	var events []LLMEventRecord
	for rows.Next() {
		var e LLMEventRecord
		dest := []any{
			&e.ID, &e.Sequence, &e.Timestamp,
			&e.Provider, &e.Model, &e.Purpose, &e.Attempt, &e.StopReason,
			&e.InputTokens, &e.OutputTokens, &e.LatencyMs,
			&e.Success, &e.ErrorMessage, &e.RequestBody, &e.ResponseBody,
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan llm event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
