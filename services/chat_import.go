package services

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"pick-ledger-go/logging"
)

// RawLine is one dated line of source text, in original order. Order matters:
// the parser's team/segment context carries forward across a day's lines.
type RawLine struct {
	Date time.Time
	Text string
}

// ChatImporter reads a chat export into dated raw lines. Exports come in a
// few shapes: per-message timestamp prefixes, standalone date headers with
// untagged lines below, or saved HTML with tag noise around the text.
type ChatImporter struct {
	logger *logging.Logger
}

// NewChatImporter creates a new chat importer
func NewChatImporter() *ChatImporter {
	return &ChatImporter{
		logger: logging.WithPrefix("ChatImport"),
	}
}

var (
	// [1/15/24, 9:32 PM] Name: message
	timestampedRe = regexp.MustCompile(`(?i)^\[?(\d{1,2}/\d{1,2}/\d{2,4}),?\s+\d{1,2}:\d{2}(?::\d{2})?\s*(?:am|pm)?\]?\s*(?:[^:]{1,40}:)?\s*(.*)$`)
	// === 2024-01-15 === or bare 2024-01-15
	dateHeaderRe = regexp.MustCompile(`^[=\-\s]*(\d{4}-\d{2}-\d{2})[=\-\s]*$`)
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
)

// ReadFile reads a chat export file into ordered raw lines
func (c *ChatImporter) ReadFile(path string) ([]RawLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open chat export %s: %w", path, err)
	}
	defer f.Close()

	lines, err := c.Read(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read chat export %s: %w", path, err)
	}
	return lines, nil
}

// Read scans the export line by line, tracking the current date from
// headers or message timestamps. Lines before any date are skipped; they
// cannot be attributed to a day's schedule.
func (c *ChatImporter) Read(r io.Reader) ([]RawLine, error) {
	var lines []RawLine
	var current time.Time
	undated := 0

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		text := html.UnescapeString(htmlTagRe.ReplaceAllString(scanner.Text(), " "))
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		if m := dateHeaderRe.FindStringSubmatch(text); m != nil {
			if date, err := time.Parse("2006-01-02", m[1]); err == nil {
				current = date
				continue
			}
		}

		if m := timestampedRe.FindStringSubmatch(text); m != nil && m[1] != "" {
			if date, err := parseSlashDate(m[1]); err == nil {
				current = date
				text = strings.TrimSpace(m[2])
				if text == "" {
					continue
				}
			}
		}

		if current.IsZero() {
			undated++
			continue
		}

		lines = append(lines, RawLine{Date: current, Text: text})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan chat export: %w", err)
	}

	if undated > 0 {
		c.logger.Warnf("Skipped %d lines before the first date marker", undated)
	}

	c.logger.Infof("Read %d dated lines", len(lines))
	return lines, nil
}

// parseSlashDate parses M/D/YY and M/D/YYYY dates
func parseSlashDate(value string) (time.Time, error) {
	for _, layout := range []string{"1/2/06", "1/2/2006"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}
