package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/studyr/internal/engine"
)

func ToCSV(records []engine.HistoryRecord, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"Type", "Topic", "Date", "Session", "Duration (s)", "Duration", "Status"}); err != nil {
		return err
	}

	for _, r := range records {
		session := ""
		if r.Session > 0 {
			session = fmt.Sprintf("%d", r.Session)
		}
		row := []string{
			string(r.Type),
			r.Topic,
			r.Date.Local().Format(time.RFC3339),
			session,
			fmt.Sprintf("%d", r.Duration),
			formatDuration(r.Duration),
			string(r.Status),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
