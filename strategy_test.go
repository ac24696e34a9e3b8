package extspi

import (
	"path/filepath"
	"testing"
)

func TestDefaultStrategies_OrdersServicesInternalUser(t *testing.T) {
	strategies := DefaultStrategies("/base")
	if len(strategies) != 3 {
		t.Fatalf("len = %d, want 3", len(strategies))
	}
	if strategies[0].Name != "services" || strategies[0].Overridden {
		t.Fatalf("strategies[0] = %+v, want non-overridden services root first", strategies[0])
	}
	if strategies[1].Name != "internal" || strategies[1].Overridden {
		t.Fatalf("strategies[1] = %+v, want non-overridden internal root second", strategies[1])
	}
	if strategies[2].Name != "user" || !strategies[2].Overridden {
		t.Fatalf("strategies[2] = %+v, want overridden user root last", strategies[2])
	}
	if strategies[2].Root != filepath.Join("/base", "extspi") {
		t.Fatalf("user root = %q, want %q", strategies[2].Root, filepath.Join("/base", "extspi"))
	}
}

type strategyFixture interface{ M() }

func TestRegisterSpecialRoot_PinsByFullyQualifiedName(t *testing.T) {
	RegisterSpecialRoot[strategyFixture]("/fixed/path")
	got, ok := specialRootOverrides[fqName(contractType[strategyFixture]())]
	if !ok || got != "/fixed/path" {
		t.Fatalf("specialRootOverrides entry = %q, %v; want /fixed/path, true", got, ok)
	}
}

func TestRegisterSpecialRootByName_SameEffectAsGenericForm(t *testing.T) {
	RegisterSpecialRootByName("extspi/tests.ByName", "/other/path")
	if specialRootOverrides["extspi/tests.ByName"] != "/other/path" {
		t.Fatal("expected RegisterSpecialRootByName to file the override under the given name")
	}
}
