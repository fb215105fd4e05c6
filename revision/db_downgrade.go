package revision

import (
	"context"
	"fmt"

	"github.com/Maksumys/migration-verify/internal/repository"
	"gorm.io/gorm"
)

// downgrade откатывает ревизии в обратном порядке, пока в базе не останется target.
// Если хотя бы у одной ревизии на пути нет отката, ничего не выполняется.
func (m *migrationManager) downgrade(ctx context.Context, target string) error {
	m.logger.Info("Preparing downgrade execution", "target", target)

	db := m.db.WithContext(ctx)
	err := m.initSystemTables(db)
	if err != nil {
		return err
	}

	current, err := repository.GetHeads(db, m.versionTable)
	if err != nil {
		return err
	}

	planner := downgradePlanner{
		script:  m.script,
		current: current,
		target:  target,
	}
	plan, err := planner.MakePlan()
	if err != nil {
		return err
	}

	applied := plan.applied
	for !plan.IsEmpty() {
		s := plan.PopFirst()
		delete(applied, s.Revision)

		err = m.executeDowngrade(db, s, m.script.headsOf(applied))
		if err != nil {
			return err
		}
	}

	m.logger.Info("Downgrade completed", "heads", newIdentifier(m.script.headsOf(applied)).String())
	return nil
}

func (m *migrationManager) executeDowngrade(db *gorm.DB, s *Script, heads []string) error {
	m.logger.Info("Executing downgrade", "revision", s.Revision, "description", s.Description)

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, statement := range s.Downgrade {
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("downgrade %s: %w", s.Revision, err)
			}
		}
		return repository.SaveHeads(tx, m.versionTable, heads)
	})
	if err != nil {
		m.logger.Error("Error occurred on downgrade", "revision", s.Revision, "error", err)
	}
	return err
}
