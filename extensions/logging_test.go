package extensions

import (
	"errors"
	"reflect"
	"testing"

	"github.com/extspi-go/extspi"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type loggingFixture interface {
	Ping() string
}

func TestLoggingExtension_WrapLogsSuccess(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ext := NewLoggingExtension(zap.New(core))

	ev := extspi.BuildEvent{Contract: reflect.TypeOf((*loggingFixture)(nil)).Elem(), Name: "fixture"}
	result, err := ext.Wrap(func() (any, error) { return "ok", nil }, ev)
	if err != nil || result != "ok" {
		t.Fatalf("Wrap() = %v, %v; want ok, nil", result, err)
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries (start, completed), got %d", len(entries))
	}
	if entries[0].Message != "build starting" || entries[1].Message != "build completed" {
		t.Fatalf("unexpected log messages: %q, %q", entries[0].Message, entries[1].Message)
	}
}

func TestLoggingExtension_WrapLogsFailure(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ext := NewLoggingExtension(zap.New(core))

	wantErr := errors.New("boom")
	ev := extspi.BuildEvent{Contract: reflect.TypeOf((*loggingFixture)(nil)).Elem(), Name: "fixture"}
	_, err := ext.Wrap(func() (any, error) { return nil, wantErr }, ev)
	if err != wantErr {
		t.Fatalf("Wrap() error = %v, want %v", err, wantErr)
	}

	failures := logs.FilterMessage("build failed").All()
	if len(failures) != 1 {
		t.Fatalf("expected one \"build failed\" entry, got %d", len(failures))
	}
	if failures[0].Level != zapcore.WarnLevel {
		t.Fatalf("expected build failure to log at warn level, got %v", failures[0].Level)
	}
}

func TestLoggingExtension_OnErrorLogsAtError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	ext := NewLoggingExtension(zap.New(core))

	ev := extspi.BuildEvent{Contract: reflect.TypeOf((*loggingFixture)(nil)).Elem(), Name: "fixture"}
	ext.OnError(errors.New("boom"), ev)

	errs := logs.FilterMessage("build extension observed error").All()
	if len(errs) != 1 || errs[0].Level != zapcore.ErrorLevel {
		t.Fatalf("expected one error-level entry, got %v", errs)
	}
}
