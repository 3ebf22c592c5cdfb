package commands

import (
	"os"
	"strings"
	"time"
)

// LogSummary is the recent conversion activity recorded in the log file
type LogSummary struct {
	Lines          []string
	LastConversion time.Time
	Converted      int
	Failed         int
}

// ParseLogFile reads the last N lines from the log file and extracts conversion info
func ParseLogFile(logPath string, maxLines int) (LogSummary, error) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return LogSummary{}, err
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		lines = nil
	}

	// Get last N lines
	startIdx := 0
	if maxLines > 0 && len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	summary := LogSummary{Lines: lines[startIdx:]}

	for _, line := range summary.Lines {
		switch {
		case strings.Contains(line, "file converted"):
			summary.Converted++
			// Format: 2025-11-27 14:11:57 INFO file converted source=a.md dest=a.json
			if len(line) > 19 {
				if t, err := time.ParseInLocation(time.DateTime, line[:19], time.Local); err == nil {
					summary.LastConversion = t
				}
			}
		case strings.Contains(line, "conversion failed"):
			summary.Failed++
		}
	}

	return summary, nil
}
