package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

// SnapshotRow is one row from an audited spreadsheet export or a
// partially-graded CSV snapshot. Snapshots overlap and disagree; the
// reconciler decides which value wins.
type SnapshotRow struct {
	PickID     string
	Date       time.Time
	League     models.League
	RawText    string
	Result     models.PickResult
	ProfitLoss *float64
	Source     string
}

// SnapshotImporter reads CSV snapshots with lenient header matching, since
// no two snapshot files in the source data share an exact schema
type SnapshotImporter struct {
	logger *logging.Logger
}

// NewSnapshotImporter creates a new snapshot importer
func NewSnapshotImporter() *SnapshotImporter {
	return &SnapshotImporter{
		logger: logging.WithPrefix("SnapshotImport"),
	}
}

// ReadFile reads one CSV snapshot file
func (s *SnapshotImporter) ReadFile(path string) ([]SnapshotRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer f.Close()

	rows, err := s.Read(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}
	return rows, nil
}

// ReadDir reads every CSV file in a directory, in name order
func (s *SnapshotImporter) ReadDir(dir string) ([]SnapshotRow, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshots dir %s: %w", dir, err)
	}

	var rows []SnapshotRow
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".csv" {
			continue
		}
		fileRows, err := s.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}

	return rows, nil
}

// Read parses one CSV snapshot. The header row is matched by lenient column
// names; rows missing a date or pick text are skipped with a count.
func (s *SnapshotImporter) Read(r io.Reader, source string) ([]SnapshotRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("snapshot is empty")
	}

	columns := mapHeader(records[0])
	if columns["date"] < 0 || columns["pick"] < 0 {
		return nil, fmt.Errorf("snapshot has no recognizable date/pick columns: %v", records[0])
	}

	var rows []SnapshotRow
	skipped := 0
	for _, record := range records[1:] {
		row, ok := s.convertRecord(record, columns, source)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}

	if skipped > 0 {
		s.logger.Warnf("%s: skipped %d malformed rows", source, skipped)
	}

	return rows, nil
}

// headerAliases maps the column names seen across snapshot generations to
// one logical column
var headerAliases = map[string]string{
	"date":        "date",
	"game_date":   "date",
	"pick":        "pick",
	"bet":         "pick",
	"text":        "pick",
	"description": "pick",
	"league":      "league",
	"sport":       "league",
	"result":      "result",
	"outcome":     "result",
	"grade":       "result",
	"w/l":         "result",
	"profit":      "profit",
	"pl":          "profit",
	"p&l":         "profit",
	"profit_loss": "profit",
	"net":         "profit",
	"pick_id":     "pick_id",
	"id":          "pick_id",
}

func mapHeader(header []string) map[string]int {
	columns := map[string]int{
		"date": -1, "pick": -1, "league": -1, "result": -1, "profit": -1, "pick_id": -1,
	}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if logical, ok := headerAliases[key]; ok && columns[logical] < 0 {
			columns[logical] = i
		}
	}
	return columns
}

func (s *SnapshotImporter) convertRecord(record []string, columns map[string]int, source string) (SnapshotRow, bool) {
	field := func(name string) string {
		idx := columns[name]
		if idx < 0 || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	date, err := parseSnapshotDate(field("date"))
	if err != nil {
		return SnapshotRow{}, false
	}

	rawText := field("pick")
	if rawText == "" {
		return SnapshotRow{}, false
	}

	row := SnapshotRow{
		Date:    date,
		RawText: rawText,
		Result:  normalizeResult(field("result")),
		Source:  source,
	}

	if league, ok := models.ParseLeague(strings.ToLower(field("league"))); ok {
		row.League = league
	}

	if profitText := field("profit"); profitText != "" {
		profitText = strings.NewReplacer("$", "", ",", "", "+", "").Replace(profitText)
		if value, err := strconv.ParseFloat(profitText, 64); err == nil {
			row.ProfitLoss = &value
		}
	}

	if id := field("pick_id"); id != "" {
		row.PickID = id
	} else {
		pick := models.Pick{Date: row.Date, League: row.League, RawText: row.RawText}
		row.PickID = pick.StableID()
	}

	return row, true
}

// parseSnapshotDate tolerates the date formats spread across snapshot files
func parseSnapshotDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "1/2/2006", "1/2/06", "Jan 2, 2006", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// normalizeResult maps the result spellings across snapshots to one enum
func normalizeResult(value string) models.PickResult {
	switch strings.ToLower(value) {
	case "w", "win", "won":
		return models.PickResultWin
	case "l", "loss", "lost", "lose":
		return models.PickResultLoss
	case "p", "push", "tie":
		return models.PickResultPush
	default:
		return models.PickResultUnknown
	}
}

// WriteLedgerCSV writes the graded ledger in the output schema. Unknown
// picks get an empty profit cell, never a zero.
func WriteLedgerCSV(w io.Writer, picks []models.GradedPick) error {
	writer := csv.NewWriter(w)

	header := []string{
		"date", "league", "matchup", "segment", "pick", "odds",
		"risk", "to_win", "result", "profit_loss", "reason", "source", "pick_id",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write ledger header: %w", err)
	}

	for i := range picks {
		pick := &picks[i]
		profit := ""
		if net, ok := pick.Net(); ok {
			profit = strconv.FormatFloat(net, 'f', 2, 64)
		}
		record := []string{
			pick.Date.Format("2006-01-02"),
			string(pick.League),
			pick.GameMatchup,
			string(pick.Segment),
			pick.Description(),
			strconv.Itoa(pick.Odds),
			strconv.FormatFloat(pick.Risk, 'f', 2, 64),
			strconv.FormatFloat(pick.ToWin, 'f', 2, 64),
			string(pick.Result),
			profit,
			string(pick.Reason),
			string(pick.Source),
			pick.PickID,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write ledger row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
