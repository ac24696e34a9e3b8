package extspi

import "testing"

func TestSortOrderables_RespectsBeforeAfterEdges(t *testing.T) {
	items := []orderable{
		{name: "c"},
		{name: "a", before: []string{"b"}},
		{name: "b"},
	}
	got := sortOrderables(items)
	if !(indexOf(got, "a") < indexOf(got, "b")) {
		t.Fatalf("expected a before b, got %v", got)
	}
}

func TestSortOrderables_TiebreaksByOrderThenName(t *testing.T) {
	items := []orderable{
		{name: "zeta", order: 1},
		{name: "alpha", order: 1},
		{name: "early", order: 0},
	}
	got := sortOrderables(items)
	want := []string{"early", "alpha", "zeta"}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestSortOrderables_BreaksCyclesDeterministically(t *testing.T) {
	items := []orderable{
		{name: "a", before: []string{"b"}},
		{name: "b", before: []string{"a"}},
	}
	got1 := sortOrderables(items)
	got2 := sortOrderables(items)
	if len(got1) != 2 || len(got2) != 2 {
		t.Fatalf("expected both names in output despite cycle, got %v", got1)
	}
	if got1[0] != got2[0] || got1[1] != got2[1] {
		t.Fatalf("cycle-breaking should be deterministic across calls: %v vs %v", got1, got2)
	}
}

func indexOf(s []string, v string) int {
	for i, x := range s {
		if x == v {
			return i
		}
	}
	return -1
}
