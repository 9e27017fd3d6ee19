package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
)

// numericKeys are parsed as numbers; every other CSV value stays a string.
var numericKeys = map[string]bool{
	"accuracy":          true,
	"standardError":     true,
	"baseModelAccuracy": true,
}

// DecodeCSV reads result records from CSV. The first row is the header;
// column names may be snake_case or camelCase. Empty optional values are
// treated as absent.
func DecodeCSV(r io.Reader) ([]models.EvaluationResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: CSV is empty (no header row)", models.ErrInvalidResult)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parsing CSV header: %v", models.ErrInvalidResult, err)
	}

	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = camelCase(h)
	}

	records := make([]map[string]any, 0)
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// csv.ParseError already names the line
			return nil, fmt.Errorf("%w: parsing CSV: %v", models.ErrInvalidResult, err)
		}
		rec := make(map[string]any, len(keys))
		for i, v := range row {
			rec[keys[i]] = normalizeValue(keys[i], v, numericKeys[keys[i]])
		}
		records = append(records, rec)
	}

	return DecodeRecords(records)
}
