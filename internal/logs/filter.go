package logs

import (
	"encoding/json"
	"strings"

	"webgif/internal/logging"
)

// Filter keeps JSON log lines whose run_id starts with runID. An empty runID
// keeps everything. Lines that are not JSON objects are dropped when a run
// is requested.
func Filter(lines []string, runID string) []string {
	runID = strings.TrimSpace(runID)
	if runID == "" {
		return lines
	}
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		if MatchRun(line, runID) {
			kept = append(kept, line)
		}
	}
	return kept
}

// MatchRun reports whether a JSON log line belongs to runID, which may be a
// prefix of the full identifier.
func MatchRun(line, runID string) bool {
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return false
	}
	id, _ := record[logging.FieldRunID].(string)
	return id != "" && strings.HasPrefix(id, runID)
}
