package extensions

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/extspi-go/extspi"
)

type greeter interface {
	Greet(name string) string
}

func TestTraceDebugExtension_OnError(t *testing.T) {
	director := extspi.NewFrameworkDirector()

	var buf bytes.Buffer
	ext := NewTraceDebugExtension(director, slog.NewTextHandler(&buf, nil))
	director.RegisterBuildExtension(ext)

	contract := reflect.TypeOf((*greeter)(nil)).Elem()
	ext.OnError(errTest{"simulated failure"}, extspi.BuildEvent{Contract: contract, Name: "broken"})

	if !strings.Contains(buf.String(), "simulated failure") {
		t.Fatalf("expected logged output to mention failure, got: %s", buf.String())
	}
}

type errTest struct{ msg string }

func (e errTest) Error() string { return e.msg }
