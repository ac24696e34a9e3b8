package extspi

import "testing"

func TestBuildTrace_SnapshotPreservesChronologicalOrder(t *testing.T) {
	bt := newBuildTrace(8)
	bt.record(BuildTraceNode{Name: "first"})
	bt.record(BuildTraceNode{Name: "second"})
	bt.record(BuildTraceNode{Name: "third"})

	snap := bt.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("len(snapshot) = %d, want 3", len(snap))
	}
	want := []string{"first", "second", "third"}
	for i, n := range snap {
		if n.Name != want[i] {
			t.Fatalf("snapshot[%d].Name = %q, want %q", i, n.Name, want[i])
		}
	}
}

func TestBuildTrace_WrapsAroundAtCapacity(t *testing.T) {
	bt := newBuildTrace(2)
	bt.record(BuildTraceNode{Name: "a"})
	bt.record(BuildTraceNode{Name: "b"})
	bt.record(BuildTraceNode{Name: "c"}) // evicts "a"

	snap := bt.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("len(snapshot) = %d, want 2", len(snap))
	}
	if snap[0].Name != "b" || snap[1].Name != "c" {
		t.Fatalf("snapshot = %+v, want [b c]", snap)
	}
}

func TestBuildTrace_RecordAssignsIDWhenAbsent(t *testing.T) {
	bt := newBuildTrace(4)
	bt.record(BuildTraceNode{Name: "x"})
	snap := bt.Snapshot()
	if snap[0].ID == "" {
		t.Fatal("expected record to assign a non-empty ID")
	}
}

func TestDirector_BuildTraceRecordsSuccessfulBuild(t *testing.T) {
	root := NewFrameworkDirector()
	loader, err := GetLoader[extFixture](root)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.Get("only"); err != nil {
		t.Fatal(err)
	}

	found := false
	for _, n := range root.BuildTrace() {
		if n.Name == "only" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the director's build trace to record the \"only\" build")
	}
}
