package revision

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	Head  = "head"
	Heads = "heads"
	Base  = "base"

	branchHeadSuffix = "@head"
)

// destination переводит выражение цели в набор голов, которые должны остаться
// примененными после операции. current - головы, записанные в базе.
//
// Поддерживаются: head, heads, base, полный идентификатор или однозначный
// префикс, <id>@head, +N и -N относительно единственной текущей головы.
func (d *Directory) destination(target string, current []string) ([]string, error) {
	switch target {
	case "", Head:
		heads := d.Heads()
		if len(heads) > 1 {
			return nil, fmt.Errorf("%w: %s", ErrMultipleHeads, strings.Join(heads, ", "))
		}
		return heads, nil
	case Heads:
		return d.Heads(), nil
	case Base:
		return nil, nil
	}

	if id, ok := strings.CutSuffix(target, branchHeadSuffix); ok {
		head, err := d.BranchHead(id)
		if err != nil {
			return nil, err
		}
		return []string{head}, nil
	}

	if steps, ok := parseRelative(target); ok {
		return d.step(current, steps)
	}

	s, err := d.Get(target)
	if err != nil {
		return nil, err
	}
	return []string{s.Revision}, nil
}

func parseRelative(target string) (int, bool) {
	if !strings.HasPrefix(target, "+") && !strings.HasPrefix(target, "-") {
		return 0, false
	}
	steps, err := strconv.Atoi(target)
	if err != nil || steps == 0 {
		return 0, false
	}
	return steps, true
}

// step сдвигает текущее состояние на steps ревизий вперед или назад.
func (d *Directory) step(current []string, steps int) ([]string, error) {
	applied, err := d.Ancestors(current...)
	if err != nil {
		return nil, err
	}

	for ; steps > 0; steps-- {
		next, err := d.nextRevision(applied)
		if err != nil {
			return nil, err
		}
		applied[next] = struct{}{}
	}

	for ; steps < 0; steps++ {
		heads := d.headsOf(applied)
		switch len(heads) {
		case 0:
			return nil, ErrRelativeRange
		case 1:
			delete(applied, heads[0])
		default:
			return nil, fmt.Errorf("%w: %s", ErrMultipleHeads, strings.Join(heads, ", "))
		}
	}

	return d.headsOf(applied), nil
}

// nextRevision выбирает единственную ревизию, которую можно применить следующей.
// При нескольких головах следующей может быть только слияние, для которого
// применены все родители.
func (d *Directory) nextRevision(applied map[string]struct{}) (string, error) {
	heads := d.headsOf(applied)

	candidates := d.Bases()
	if len(heads) > 0 {
		candidates = nil
		for _, head := range heads {
			candidates = append(candidates, d.children[head]...)
		}
	}

	var next []string
	seen := make(map[string]struct{}, len(candidates))
	for _, id := range candidates {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		if _, ok := applied[id]; ok {
			continue
		}
		if len(heads) > 1 && !d.scripts[id].IsMerge() {
			continue
		}
		if d.parentsApplied(id, applied) {
			next = append(next, id)
		}
	}

	switch {
	case len(next) == 1:
		return next[0], nil
	case len(heads) > 1:
		return "", fmt.Errorf("%w: %s", ErrMultipleHeads, strings.Join(heads, ", "))
	case len(next) == 0:
		return "", ErrRelativeRange
	default:
		return "", fmt.Errorf("%w: %s", ErrBranchPoint, strings.Join(next, ", "))
	}
}

func (d *Directory) parentsApplied(id string, applied map[string]struct{}) bool {
	for _, down := range d.scripts[id].DownRevisions {
		if _, ok := applied[down]; !ok {
			return false
		}
	}
	return true
}
