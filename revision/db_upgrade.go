package revision

import (
	"context"
	"fmt"

	"github.com/Maksumys/migration-verify/internal/repository"
	"gorm.io/gorm"
)

// upgrade применяет ревизии до target. Каждая ревизия выполняется в отдельной
// транзакции вместе с обновлением таблицы версий, поэтому при ошибке база
// остается на последней успешно примененной ревизии.
func (m *migrationManager) upgrade(ctx context.Context, target string) error {
	m.logger.Info("Preparing upgrade execution", "target", target)

	db := m.db.WithContext(ctx)
	err := m.initSystemTables(db)
	if err != nil {
		return err
	}

	current, err := repository.GetHeads(db, m.versionTable)
	if err != nil {
		return err
	}

	planner := upgradePlanner{
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
		applied[s.Revision] = struct{}{}

		err = m.executeUpgrade(db, s, m.script.headsOf(applied))
		if err != nil {
			return err
		}
	}

	m.logger.Info("Upgrade completed", "heads", newIdentifier(m.script.headsOf(applied)).String())
	return nil
}

func (m *migrationManager) executeUpgrade(db *gorm.DB, s *Script, heads []string) error {
	m.logger.Info("Executing upgrade", "revision", s.Revision, "description", s.Description)

	return db.Transaction(func(tx *gorm.DB) error {
		for _, statement := range s.Upgrade {
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("upgrade %s: %w", s.Revision, err)
			}
		}
		return repository.SaveHeads(tx, m.versionTable, heads)
	})
}
