package revision

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
)

// Script - одна ревизия: ее место в графе и SQL для применения и отката.
type Script struct {
	Revision      string
	DownRevisions []string
	Description   string
	Path          string

	Upgrade   []string
	Downgrade []string

	reversible bool
}

func (s *Script) IsBase() bool {
	return len(s.DownRevisions) == 0
}

func (s *Script) IsMerge() bool {
	return len(s.DownRevisions) > 1
}

// Reversible сообщает, описан ли для ревизии откат.
func (s *Script) Reversible() bool {
	return s.reversible
}

// Directory - каталог скриптов, собранный в граф ревизий.
type Directory struct {
	Location string

	scripts  map[string]*Script
	children map[string][]string
	// топологический порядок от баз к головам, при равенстве по идентификатору
	order []string
}

// FromConfig загружает каталог, указанный в cfg.ScriptLocation.
func FromConfig(cfg *Config) (*Directory, error) {
	return Load(cfg.ScriptLocation)
}

// Load читает каталог скриптов. Каталог в формате golang-migrate
// (<version>_<name>.up.sql / .down.sql) распознается автоматически, иначе
// каждый *.sql файл должен содержать заголовок ревизии.
func Load(location string) (*Directory, error) {
	entries, err := os.ReadDir(location)
	if err != nil {
		return nil, err
	}

	var scripts []*Script
	if isMigrateLayout(entries) {
		scripts, err = loadMigrateSource(location)
	} else {
		scripts, err = scanDirectory(location, entries)
	}
	if err != nil {
		return nil, err
	}

	return newDirectory(location, scripts)
}

func newDirectory(location string, scripts []*Script) (*Directory, error) {
	d := &Directory{
		Location: location,
		scripts:  make(map[string]*Script, len(scripts)),
		children: make(map[string][]string),
	}

	for _, s := range scripts {
		if existing, ok := d.scripts[s.Revision]; ok {
			return nil, fmt.Errorf("%w: %s in %s and %s", ErrDuplicateRevision, s.Revision, existing.Path, s.Path)
		}
		d.scripts[s.Revision] = s
	}

	for _, s := range scripts {
		for _, down := range s.DownRevisions {
			if _, ok := d.scripts[down]; !ok {
				return nil, fmt.Errorf("%w: %s, referenced by %s", ErrUnknownRevision, down, s.Revision)
			}
			d.children[down] = append(d.children[down], s.Revision)
		}
	}
	for _, c := range d.children {
		sort.Strings(c)
	}

	if err := d.sortTopologically(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Directory) sortTopologically() error {
	pending := make(map[string]int, len(d.scripts))
	var ready []string
	for id, s := range d.scripts {
		pending[id] = len(s.DownRevisions)
		if len(s.DownRevisions) == 0 {
			ready = append(ready, id)
		}
	}

	d.order = make([]string, 0, len(d.scripts))
	for len(ready) > 0 {
		sort.Strings(ready)
		id := ready[0]
		ready = ready[1:]
		d.order = append(d.order, id)

		for _, child := range d.children[id] {
			pending[child]--
			if pending[child] == 0 {
				ready = append(ready, child)
			}
		}
	}

	if len(d.order) != len(d.scripts) {
		return ErrCycle
	}
	return nil
}

// Get возвращает ревизию по полному идентификатору или однозначному префиксу.
func (d *Directory) Get(id string) (*Script, error) {
	if s, ok := d.scripts[id]; ok {
		return s, nil
	}

	var found []string
	if id != "" {
		for _, rev := range d.order {
			if strings.HasPrefix(rev, id) {
				found = append(found, rev)
			}
		}
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrUnknownRevision, id)
	case 1:
		return d.scripts[found[0]], nil
	default:
		return nil, fmt.Errorf("%w: %s matches %s", ErrAmbiguousRevision, id, strings.Join(found, ", "))
	}
}

// Heads возвращает ревизии без потомков, отсортированные по идентификатору.
func (d *Directory) Heads() []string {
	var heads []string
	for _, id := range d.order {
		if len(d.children[id]) == 0 {
			heads = append(heads, id)
		}
	}
	slices.Sort(heads)
	return heads
}

func (d *Directory) Bases() []string {
	var bases []string
	for _, id := range d.order {
		if d.scripts[id].IsBase() {
			bases = append(bases, id)
		}
	}
	slices.Sort(bases)
	return bases
}

// History возвращает все ревизии от баз к головам.
func (d *Directory) History() []*Script {
	history := make([]*Script, 0, len(d.order))
	for _, id := range d.order {
		history = append(history, d.scripts[id])
	}
	return history
}

// Ancestors возвращает ревизии ids вместе со всеми их предками.
func (d *Directory) Ancestors(ids ...string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	stack := slices.Clone(ids)

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := set[id]; seen {
			continue
		}

		s, ok := d.scripts[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownRevision, id)
		}
		set[id] = struct{}{}
		stack = append(stack, s.DownRevisions...)
	}
	return set, nil
}

func (d *Directory) descendants(id string) map[string]struct{} {
	set := map[string]struct{}{}
	stack := []string{id}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := set[cur]; seen {
			continue
		}
		set[cur] = struct{}{}
		stack = append(stack, d.children[cur]...)
	}
	return set
}

// BranchHead возвращает единственную голову, достижимую из id.
func (d *Directory) BranchHead(id string) (string, error) {
	s, err := d.Get(id)
	if err != nil {
		return "", err
	}

	reachable := d.descendants(s.Revision)
	var heads []string
	for _, head := range d.Heads() {
		if _, ok := reachable[head]; ok {
			heads = append(heads, head)
		}
	}

	if len(heads) > 1 {
		return "", fmt.Errorf("%w: %s@head resolves to %s", ErrMultipleHeads, id, strings.Join(heads, ", "))
	}
	return heads[0], nil
}

// headsOf возвращает ревизии набора, у которых нет потомков внутри набора.
func (d *Directory) headsOf(set map[string]struct{}) []string {
	var heads []string
	for id := range set {
		isHead := true
		for _, child := range d.children[id] {
			if _, ok := set[child]; ok {
				isHead = false
				break
			}
		}
		if isHead {
			heads = append(heads, id)
		}
	}
	slices.Sort(heads)
	return heads
}

func scanDirectory(location string, entries []os.DirEntry) ([]*Script, error) {
	var scripts []*Script
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".sql" {
			continue
		}

		s, err := parseScriptFile(filepath.Join(location, entry.Name()))
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
