package revision

import (
	"slices"
	"strings"
)

// Identifier описывает состояние базы или дерева скриптов: nil - ни одной ревизии,
// один элемент - линейная история, несколько - ветвление.
type Identifier []string

func newIdentifier(revisions []string) Identifier {
	if len(revisions) == 0 {
		return nil
	}
	id := slices.Clone(revisions)
	slices.Sort(id)
	return id
}

func (id Identifier) IsNone() bool {
	return len(id) == 0
}

func (id Identifier) String() string {
	switch len(id) {
	case 0:
		return "None"
	case 1:
		return id[0]
	default:
		return "(" + strings.Join(id, ", ") + ")"
	}
}
