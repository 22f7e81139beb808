package feedback

import (
	"encoding/json"
	"strings"
)

// EncodeActions renders actions for the actions column (a JSON array).
// No actions encode to the empty string.
func EncodeActions(actions []string) (string, error) {
	if len(actions) == 0 {
		return "", nil
	}
	data, err := json.Marshal(actions)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DecodeActions parses the actions column. Empty or undecodable values
// yield nil so a damaged cell never makes the record unreadable.
func DecodeActions(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var actions []string
	if err := json.Unmarshal([]byte(raw), &actions); err != nil {
		return nil
	}
	if len(actions) == 0 {
		return nil
	}
	return actions
}

// CleanSummary normalizes a summary cell read back from storage.
// Spreadsheet tools write missing cells as "nan"; treat that as empty.
func CleanSummary(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

// MissingActionsHint is shown for a record whose summary exists but whose
// actions cell could not be decoded.
const MissingActionsHint = "Review feedback and take appropriate action"
