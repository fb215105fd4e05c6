package revision

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/rubenv/sql-migrate/sqlparse"
)

const (
	directiveUpgrade        = "+upgrade"
	directiveDowngrade      = "+downgrade"
	directiveStatementBegin = "+statement-begin"
	directiveStatementEnd   = "+statement-end"
)

const (
	sqlparsePrefix         = "-- +migrate "
	sqlparseStatementBegin = sqlparsePrefix + "StatementBegin"
	sqlparseStatementEnd   = sqlparsePrefix + "StatementEnd"
)

// директивы скрипта в терминах sqlparse
var sqlparseDirectives = map[string]string{
	directiveUpgrade:        sqlparsePrefix + "Up",
	directiveDowngrade:      sqlparsePrefix + "Down",
	directiveStatementBegin: sqlparseStatementBegin,
	directiveStatementEnd:   sqlparseStatementEnd,
}

func parseScriptFile(path string) (*Script, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return parseScript(f, path)
}

// parseScript разбирает файл вида:
//
//	-- Revision: 44352f0a4052
//	-- Down revision: 591a8001cae9
//	-- Description: add is_mobile
//
//	-- +upgrade
//	ALTER TABLE ...;
//
//	-- +downgrade
//	ALTER TABLE ...;
//
// Пустой Down revision означает базовую ревизию, несколько через запятую - слияние.
// Тело секций делит на инструкции sqlparse: инструкция заканчивается точкой с
// запятой в конце строки, блок между -- +statement-begin и -- +statement-end
// считается одной инструкцией. Инструкции, у которых точка с запятой в конце
// строки попадает внутрь строкового литерала или $$-тела, оборачиваются в такой
// блок автоматически.
func parseScript(r io.Reader, path string) (*Script, error) {
	s := &Script{Path: path}

	var body []string
	inBody := false

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Text()
		text := strings.TrimSpace(raw)

		if comment, ok := strings.CutPrefix(text, "--"); ok {
			comment = strings.TrimSpace(comment)
			directive := strings.ToLower(comment)
			if translated, ok := sqlparseDirectives[directive]; ok {
				switch directive {
				case directiveUpgrade:
					inBody = true
				case directiveDowngrade:
					inBody = true
					s.reversible = true
				}
				body = append(body, translated)
				continue
			}

			if !inBody {
				s.applyHeader(comment)
				continue
			}
		}

		if !inBody {
			if text == "" {
				continue
			}
			return nil, fmt.Errorf("%w: %s:%d: statement outside of %s or %s section",
				ErrInvalidScript, path, line, directiveUpgrade, directiveDowngrade)
		}
		body = append(body, raw)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if s.Revision == "" {
		return nil, fmt.Errorf("%w: %s: revision header is missing", ErrInvalidScript, path)
	}
	if !inBody {
		return s, nil
	}

	parsed, err := sqlparse.ParseMigration(strings.NewReader(strings.Join(guardLiterals(body), "\n") + "\n"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidScript, path, err)
	}
	s.Upgrade = trimStatements(parsed.UpStatements)
	s.Downgrade = trimStatements(parsed.DownStatements)

	return s, nil
}

func trimStatements(statements []string) []string {
	var out []string
	for _, stmt := range statements {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

// guardLiterals оборачивает в StatementBegin/StatementEnd инструкции, которые
// sqlparse разрезал бы по точке с запятой внутри литерала.
func guardLiterals(lines []string) []string {
	var (
		out       []string
		statement []string
		lexer     literalLexer
		wrap      bool
		explicit  bool
	)

	flush := func() {
		if wrap {
			out = append(out, sqlparseStatementBegin)
			out = append(out, statement...)
			out = append(out, sqlparseStatementEnd)
		} else {
			out = append(out, statement...)
		}
		statement, wrap, lexer = nil, false, literalLexer{}
	}

	for _, line := range lines {
		if strings.HasPrefix(line, sqlparsePrefix) {
			flush()
			switch line {
			case sqlparseStatementBegin:
				explicit = true
			case sqlparseStatementEnd:
				explicit = false
			}
			out = append(out, line)
			continue
		}
		if explicit {
			out = append(out, line)
			continue
		}

		statement = append(statement, line)
		lexer.feed(line)
		if !endsWithSemicolon(line) {
			continue
		}
		if lexer.open() {
			wrap = true
			continue
		}
		flush()
	}
	flush()

	return out
}

// endsWithSemicolon повторяет правило sqlparse: последнее слово до комментария
// заканчивается точкой с запятой.
func endsWithSemicolon(line string) bool {
	prev := ""
	for _, word := range strings.Fields(line) {
		if strings.HasPrefix(word, "--") {
			break
		}
		prev = word
	}
	return strings.HasSuffix(prev, ";")
}

var dollarTag = regexp.MustCompile(`^\$([A-Za-z_][A-Za-z0-9_]*)?\$`)

// literalLexer отслеживает, открыт ли строковый литерал, $tag$-тело или
// блочный комментарий на конце прочитанных строк.
type literalLexer struct {
	quote  byte
	dollar string
	block  bool
}

func (l *literalLexer) feed(line string) {
	for i := 0; i < len(line); i++ {
		rest := line[i:]
		switch {
		case l.block:
			if strings.HasPrefix(rest, "*/") {
				l.block = false
				i++
			}
		case l.dollar != "":
			if strings.HasPrefix(rest, l.dollar) {
				i += len(l.dollar) - 1
				l.dollar = ""
			}
		case l.quote != 0:
			if line[i] == l.quote {
				l.quote = 0
			}
		case strings.HasPrefix(rest, "--"):
			return
		case strings.HasPrefix(rest, "/*"):
			l.block = true
			i++
		case line[i] == '\'' || line[i] == '"':
			l.quote = line[i]
		case line[i] == '$':
			if tag := dollarTag.FindString(rest); tag != "" {
				l.dollar = tag
				i += len(tag) - 1
			}
		}
	}
}

func (l *literalLexer) open() bool {
	return l.quote != 0 || l.dollar != "" || l.block
}

func (s *Script) applyHeader(comment string) {
	key, value, ok := strings.Cut(comment, ":")
	if !ok {
		return
	}
	value = strings.TrimSpace(value)

	switch normalizeHeaderKey(key) {
	case "revision":
		s.Revision = value
	case "downrevision", "revises":
		s.DownRevisions = nil
		for _, down := range strings.Split(value, ",") {
			if down = strings.TrimSpace(down); down != "" {
				s.DownRevisions = append(s.DownRevisions, down)
			}
		}
	case "description", "message":
		s.Description = value
	}
}

func normalizeHeaderKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
}
