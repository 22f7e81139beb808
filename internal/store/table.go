package store

import (
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/kudos/internal/feedback"
)

// Columns of the record table, in write order.
var tableColumns = []string{"id", "timestamp", "rating", "review", "ai_response", "summary", "actions"}

// requiredColumns must be present in any table we read. Tables written
// before analysis existed lack summary and actions; those read as empty.
var requiredColumns = []string{"id", "timestamp", "rating", "review", "ai_response"}

// timestampLayouts are tried in order when reading. The first is what we write;
// the rest accept ISO-8601 without a zone offset, read as local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// readTable reads all records from path. A missing or empty file is an
// empty table, not an error.
func readTable(path string) ([]feedback.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	return decodeTable(f)
}

func decodeTable(r io.Reader) ([]feedback.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	for _, name := range requiredColumns {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}

	var records []feedback.Record
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec, err := decodeRow(row, col)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func decodeRow(row []string, col map[string]int) (feedback.Record, error) {
	cell := func(name string) string {
		i, ok := col[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var rec feedback.Record

	id, err := strconv.ParseInt(strings.TrimSpace(cell("id")), 10, 64)
	if err != nil {
		return rec, fmt.Errorf("id: %w", err)
	}
	rec.ID = id

	ts, err := parseTimestamp(cell("timestamp"))
	if err != nil {
		return rec, err
	}
	rec.Timestamp = ts

	rating, err := parseRating(cell("rating"))
	if err != nil {
		return rec, err
	}
	rec.Rating = rating

	rec.Review = cell("review")
	rec.AIResponse = cell("ai_response")
	rec.Summary = feedback.CleanSummary(cell("summary"))
	if rec.Summary != "" {
		rec.Actions = feedback.DecodeActions(cell("actions"))
	}
	return rec, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("timestamp: unrecognized format %q", s)
}

// parseRating accepts "4" and the "4.0" some spreadsheet exports produce.
func parseRating(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("rating: invalid value %q", s)
	}
	return int(f), nil
}

func encodeTable(w io.Writer, records []feedback.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(tableColumns); err != nil {
		return err
	}
	for i := range records {
		rec := &records[i]
		actions, err := feedback.EncodeActions(rec.Actions)
		if err != nil {
			return fmt.Errorf("encode actions for %d: %w", rec.ID, err)
		}
		row := []string{
			strconv.FormatInt(rec.ID, 10),
			rec.Timestamp.Format(time.RFC3339Nano),
			strconv.Itoa(rec.Rating),
			rec.Review,
			rec.AIResponse,
			rec.Summary,
			actions,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
