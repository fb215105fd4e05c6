package revision

import (
	"container/list"
	"fmt"
	"strings"
)

type migrationsPlan struct {
	scriptsToRun *list.List
	// ревизии, примененные на момент начала плана
	applied map[string]struct{}
}

func newMigrationsPlan(applied map[string]struct{}) migrationsPlan {
	return migrationsPlan{
		scriptsToRun: list.New(),
		applied:      applied,
	}
}

func (p migrationsPlan) IsEmpty() bool {
	return p.scriptsToRun.Len() == 0
}

func (p migrationsPlan) Len() int {
	return p.scriptsToRun.Len()
}

func (p migrationsPlan) PopFirst() *Script {
	first := p.scriptsToRun.Front()
	p.scriptsToRun.Remove(first)
	return first.Value.(*Script)
}

type upgradePlanner struct {
	script  *Directory
	current []string
	target  string
}

// MakePlan ставит в очередь все недостающие ревизии до цели в топологическом порядке.
func (p *upgradePlanner) MakePlan() (migrationsPlan, error) {
	applied, err := p.script.Ancestors(p.current...)
	if err != nil {
		return migrationsPlan{}, err
	}

	if steps, ok := parseRelative(p.target); ok && steps < 0 {
		return migrationsPlan{}, fmt.Errorf("%w: %s is a downgrade", ErrInvalidTarget, p.target)
	}

	destination, err := p.script.destination(p.target, p.current)
	if err != nil {
		return migrationsPlan{}, err
	}

	required, err := p.script.Ancestors(destination...)
	if err != nil {
		return migrationsPlan{}, err
	}

	plan := newMigrationsPlan(applied)
	for _, id := range p.script.order {
		if _, ok := applied[id]; ok {
			continue
		}
		if _, ok := required[id]; !ok {
			continue
		}
		plan.scriptsToRun.PushBack(p.script.scripts[id])
	}

	return plan, nil
}

type downgradePlanner struct {
	script  *Directory
	current []string
	target  string
}

// MakePlan ставит в очередь ревизии, которые нужно откатить, от голов к базам.
// Цель должна лежать в уже примененной истории.
func (p *downgradePlanner) MakePlan() (migrationsPlan, error) {
	applied, err := p.script.Ancestors(p.current...)
	if err != nil {
		return migrationsPlan{}, err
	}

	destination, err := p.script.destination(p.target, p.current)
	if err != nil {
		return migrationsPlan{}, err
	}

	for _, id := range destination {
		if _, ok := applied[id]; !ok {
			return migrationsPlan{}, fmt.Errorf("%w: %s (current: %s)",
				ErrInvalidTarget, id, strings.Join(p.current, ", "))
		}
	}

	keep, err := p.script.Ancestors(destination...)
	if err != nil {
		return migrationsPlan{}, err
	}

	plan := newMigrationsPlan(applied)
	for i := len(p.script.order) - 1; i >= 0; i-- {
		id := p.script.order[i]
		if _, ok := applied[id]; !ok {
			continue
		}
		if _, ok := keep[id]; ok {
			continue
		}

		s := p.script.scripts[id]
		if !s.Reversible() {
			return migrationsPlan{}, fmt.Errorf("%w: %s", ErrIrreversible, id)
		}
		plan.scriptsToRun.PushBack(s)
	}

	return plan, nil
}
