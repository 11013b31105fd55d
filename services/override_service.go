package services

import (
	"fmt"
	"os"

	"pick-ledger-go/database"
	"pick-ledger-go/logging"
	"pick-ledger-go/models"

	"gopkg.in/yaml.v3"
)

// OverrideService is the auditable manual-correction layer. Corrections are
// keyed by stable pick ID and applied after automated grading; an explicit
// correction always wins over a computed grade, but the computed grade is
// kept alongside so provenance stays visible in the ledger.
type OverrideService struct {
	overrides map[string]database.Override
	logger    *logging.Logger
}

// NewOverrideService creates an empty override layer
func NewOverrideService() *OverrideService {
	return &OverrideService{
		overrides: make(map[string]database.Override),
		logger:    logging.WithPrefix("Overrides"),
	}
}

// Count returns the number of loaded corrections
func (s *OverrideService) Count() int {
	return len(s.overrides)
}

// Add registers one correction, replacing an earlier one for the same pick
func (s *OverrideService) Add(ov database.Override) {
	s.overrides[ov.PickID] = ov
}

// LoadFromFile loads corrections from a YAML file holding a list of
// {pick_id, result, profit_loss, note} entries
func (s *OverrideService) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read overrides file %s: %w", path, err)
	}

	var overrides []database.Override
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse overrides file %s: %w", path, err)
	}

	for _, ov := range overrides {
		if ov.PickID == "" {
			return fmt.Errorf("overrides file %s: entry with empty pick_id", path)
		}
		s.Add(ov)
	}

	s.logger.Infof("Loaded %d overrides from %s", len(overrides), path)
	return nil
}

// LoadFromRepository loads corrections from the Mongo override collection
func (s *OverrideService) LoadFromRepository(repo *database.MongoOverrideRepository) error {
	overrides, err := repo.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load overrides: %w", err)
	}

	for _, ov := range overrides {
		s.Add(ov)
	}

	s.logger.Infof("Loaded %d overrides from database", len(overrides))
	return nil
}

// Apply returns the graded pick with any matching correction applied. The
// forced result replaces the computed one; P&L comes from the correction
// when it quotes one, otherwise it is rederived from the forced result and
// the pick's own stake.
func (s *OverrideService) Apply(graded models.GradedPick) models.GradedPick {
	ov, ok := s.overrides[graded.PickID]
	if !ok {
		return graded
	}

	s.logger.Debugf("Applying override for pick %s: %s -> %s",
		graded.PickID, graded.Result, ov.Result)

	graded.Result = ov.Result
	graded.Source = models.GradeCorrected
	graded.Reason = ""
	if ov.ProfitLoss != nil {
		graded.ProfitLoss = ov.ProfitLoss
	} else {
		graded.ProfitLoss = profitLoss(&graded.Pick, ov.Result)
	}
	return graded
}
