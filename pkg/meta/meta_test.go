package meta

import "testing"

func TestGet_ExactTypeMatch(t *testing.T) {
	src := map[string]any{"name": "alice"}
	got, err := Get[string](src, "name")
	if err != nil || got != "alice" {
		t.Fatalf("Get() = %q, %v; want alice, nil", got, err)
	}
}

func TestGet_ConvertibleFallback(t *testing.T) {
	src := map[string]any{"count": 3}
	got, err := Get[int64](src, "count")
	if err != nil || got != 3 {
		t.Fatalf("Get() = %d, %v; want 3, nil", got, err)
	}
}

func TestGet_MissingKeyFails(t *testing.T) {
	if _, err := Get[string](map[string]any{}, "absent"); err == nil {
		t.Fatal("expected an error for a missing key")
	}
}

func TestGet_NilSourceFails(t *testing.T) {
	if _, err := Get[string](nil, "x"); err == nil {
		t.Fatal("expected an error for a nil source map")
	}
}

func TestSet_NilSourceIsANoop(t *testing.T) {
	Set(nil, "x", 1) // must not panic
}

func TestFind_ReturnsSingleElementSlice(t *testing.T) {
	src := map[string]any{"k": "v"}
	got := Find(src, "k")
	if len(got) != 1 || got[0] != "v" {
		t.Fatalf("Find() = %v, want [v]", got)
	}
}

func TestFind_MissingKeyReturnsNil(t *testing.T) {
	if got := Find(map[string]any{}, "absent"); got != nil {
		t.Fatalf("Find() = %v, want nil", got)
	}
}
