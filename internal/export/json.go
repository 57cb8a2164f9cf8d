package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyr/internal/engine"
)

type jsonExport struct {
	ExportedAt string       `json:"exported_at"`
	Count      int          `json:"count"`
	Records    []jsonRecord `json:"records"`
}

type jsonRecord struct {
	Type        string `json:"type"`
	Topic       string `json:"topic,omitempty"`
	Date        string `json:"date"`
	Session     int    `json:"session,omitempty"`
	DurationSec int    `json:"duration_seconds"`
	Duration    string `json:"duration"`
	Status      string `json:"status"`
}

func ToJSON(records []engine.HistoryRecord, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(records),
	}

	for _, r := range records {
		export.Records = append(export.Records, jsonRecord{
			Type:        string(r.Type),
			Topic:       r.Topic,
			Date:        r.Date.Local().Format(time.RFC3339),
			Session:     r.Session,
			DurationSec: r.Duration,
			Duration:    formatDuration(r.Duration),
			Status:      string(r.Status),
		})
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
