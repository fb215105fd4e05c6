package fixture

import (
	"fmt"
	"log/slog"
	"testing"
)

const KindDeprecation = "DeprecationWarning"

// Diagnostic - нефатальное сообщение фикстуры, выдаваемое вместе с ее результатом.
type Diagnostic struct {
	Kind    string
	Fixture string
	Message string
}

func (d Diagnostic) String() string {
	return d.Kind + ": " + d.Message
}

func deprecation(name string) Diagnostic {
	return Diagnostic{
		Kind:    KindDeprecation,
		Fixture: name,
		Message: fmt.Sprintf("%s is deprecated.", name),
	}
}

// Reporter доставляет диагностики. Тест не прерывается.
type Reporter interface {
	Report(tb testing.TB, d Diagnostic)
}

type ReporterFunc func(tb testing.TB, d Diagnostic)

func (f ReporterFunc) Report(tb testing.TB, d Diagnostic) {
	f(tb, d)
}

// LogReporter пишет диагностику в лог теста и в slog.
type LogReporter struct {
	Logger *slog.Logger
}

func (r LogReporter) Report(tb testing.TB, d Diagnostic) {
	tb.Helper()
	tb.Log(d.String())

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn(d.Message, "kind", d.Kind, "fixture", d.Fixture, "test", tb.Name())
}
