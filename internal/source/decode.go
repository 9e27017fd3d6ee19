// Package source fetches flat evaluation results from the upstream store.
// Every adapter funnels its records through DecodeRecords so the same input
// contract applies no matter where the data came from.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/validation"
)

// ResultSource fetches one full set of flat evaluation results.
type ResultSource interface {
	Fetch(ctx context.Context) ([]models.EvaluationResult, error)
	Close() error
}

// timestampLayouts are tried in order. Zone-less layouts are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
}

// ParseTimestamp accepts RFC 3339 and the "YYYY-MM-DD HH:MM:SS" form the
// leaderboard view emits.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

var timeType = reflect.TypeOf(time.Time{})

// timestampHook converts string fields bound for time.Time.
var timestampHook mapstructure.DecodeHookFuncType = func(from, to reflect.Type, data any) (any, error) {
	if to != timeType || from.Kind() != reflect.String {
		return data, nil
	}
	return ParseTimestamp(data.(string))
}

// DecodeJSON reads a JSON array of result records.
func DecodeJSON(r io.Reader) ([]models.EvaluationResult, error) {
	var records []map[string]any
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: decoding JSON records: %v", models.ErrInvalidResult, err)
	}
	return DecodeRecords(records)
}

// DecodeRecords validates JSON-compatible records against the result schema
// and decodes them. Any invalid record fails the whole batch.
func DecodeRecords(records []map[string]any) ([]models.EvaluationResult, error) {
	if err := validation.ValidateRecords(records); err != nil {
		return nil, err
	}

	results := make([]models.EvaluationResult, len(records))
	for i, rec := range records {
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			DecodeHook: timestampHook,
			Result:     &results[i],
		})
		if err != nil {
			return nil, fmt.Errorf("creating decoder: %w", err)
		}
		if err := dec.Decode(rec); err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", models.ErrInvalidResult, i, err)
		}
		if err := results[i].Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
	}
	return results, nil
}
