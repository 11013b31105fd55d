package services

import (
	"sort"

	"pick-ledger-go/logging"
	"pick-ledger-go/models"
)

// Disagreement records a conflict between the computed grade and a snapshot
// grade for the same pick. Conflicts are reported, never silently dropped.
type Disagreement struct {
	PickID   string
	RawText  string
	Computed models.PickResult
	Snapshot models.PickResult
	Source   string
}

// ReconcileService merges the computed ledger with the audited spreadsheet
// and partially-graded CSV snapshots into one authoritative ledger. Row
// identity is the stable pick ID. Precedence per pick: manual override,
// then audited snapshot, then computed grade.
type ReconcileService struct {
	logger *logging.Logger
}

// NewReconcileService creates a new reconcile service
func NewReconcileService() *ReconcileService {
	return &ReconcileService{
		logger: logging.WithPrefix("Reconcile"),
	}
}

// Reconcile merges snapshot rows into the computed ledger. Snapshot results
// fill in Unknown picks and replace disagreeing computed grades (the
// snapshots were hand-audited); rows with no computed counterpart are
// appended as imported picks so the ledger covers every known wager.
// Manually overridden grades are never touched.
func (s *ReconcileService) Reconcile(computed []models.GradedPick, snapshots []SnapshotRow) ([]models.GradedPick, []Disagreement) {
	byID := make(map[string]int, len(computed))
	ledger := make([]models.GradedPick, len(computed))
	copy(ledger, computed)
	for i := range ledger {
		byID[ledger[i].PickID] = i
	}

	var disagreements []Disagreement
	imported := 0

	for _, row := range snapshots {
		if row.Result == models.PickResultUnknown {
			// An ungraded snapshot row adds nothing over the computed grade
			if _, known := byID[row.PickID]; known {
				continue
			}
		}

		idx, known := byID[row.PickID]
		if !known {
			graded := importedPick(row)
			byID[row.PickID] = len(ledger)
			ledger = append(ledger, graded)
			imported++
			continue
		}

		existing := &ledger[idx]
		if existing.Source == models.GradeCorrected {
			// Manual corrections outrank every snapshot
			continue
		}
		if row.Result == models.PickResultUnknown || existing.Result == row.Result {
			continue
		}

		if existing.IsGraded() {
			disagreements = append(disagreements, Disagreement{
				PickID:   existing.PickID,
				RawText:  existing.RawText,
				Computed: existing.Result,
				Snapshot: row.Result,
				Source:   row.Source,
			})
		}

		existing.Result = row.Result
		existing.Source = models.GradeImported
		existing.Reason = ""
		if row.ProfitLoss != nil {
			existing.ProfitLoss = row.ProfitLoss
		} else {
			existing.ProfitLoss = profitLoss(&existing.Pick, row.Result)
		}
	}

	sort.SliceStable(ledger, func(i, j int) bool {
		if !ledger[i].Date.Equal(ledger[j].Date) {
			return ledger[i].Date.Before(ledger[j].Date)
		}
		return ledger[i].PickID < ledger[j].PickID
	})

	s.logger.Infof("Reconciled %d computed picks with %d snapshot rows: %d imported, %d disagreements",
		len(computed), len(snapshots), imported, len(disagreements))
	for _, d := range disagreements {
		s.logger.Warnf("Disagreement on %q: computed %s, %s says %s",
			d.RawText, d.Computed, d.Source, d.Snapshot)
	}

	return ledger, disagreements
}

// importedPick builds a ledger row for a snapshot wager the computed run
// never saw (for example a pick whose chat line was lost)
func importedPick(row SnapshotRow) models.GradedPick {
	graded := models.GradedPick{
		Pick: models.Pick{
			Date:    row.Date,
			League:  row.League,
			RawText: row.RawText,
		},
		PickID: row.PickID,
		Result: row.Result,
		Source: models.GradeImported,
	}
	if row.Result == models.PickResultUnknown {
		graded.Reason = models.UnknownNoGame
	}
	graded.ProfitLoss = row.ProfitLoss
	return graded
}
