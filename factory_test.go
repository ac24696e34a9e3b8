package extspi

import "testing"

type factoryFixture interface{ M() }

func TestRegisterNamed_RejectsEmptyIdentifier(t *testing.T) {
	if err := RegisterNamed[factoryFixture]("", func() factoryFixture { return nil }); err == nil {
		t.Fatal("expected an empty identifier to be rejected")
	}
}

func TestRegisterNamed_RejectsNilFactory(t *testing.T) {
	if err := RegisterNamed[factoryFixture]("extspi/tests.Factory", nil); err == nil {
		t.Fatal("expected a nil factory to be rejected")
	}
}

func TestRegisterNamed_AppliesActivateOptions(t *testing.T) {
	if err := RegisterNamed[factoryFixture]("extspi/tests.FactoryOpts",
		func() factoryFixture { return nil },
		InGroups("consumer", "provider"),
		WithURLMatch("mode", "fast"),
		WithActivateOrder(5),
		Before("later"),
		After("earlier"),
	); err != nil {
		t.Fatal(err)
	}

	cf := factoriesFor(contractType[factoryFixture]())
	nf := cf.named["extspi/tests.FactoryOpts"]
	if nf == nil {
		t.Fatal("expected the factory to be filed")
	}
	if _, ok := nf.activate.Groups["consumer"]; !ok {
		t.Fatal("expected InGroups to record \"consumer\"")
	}
	if len(nf.activate.KVPairs) != 1 || nf.activate.KVPairs[0] != [2]string{"mode", "fast"} {
		t.Fatalf("unexpected KVPairs: %v", nf.activate.KVPairs)
	}
	if nf.activate.Order != 5 {
		t.Fatalf("Order = %d, want 5", nf.activate.Order)
	}
	if len(nf.activate.Before) != 1 || nf.activate.Before[0] != "later" {
		t.Fatalf("Before = %v, want [later]", nf.activate.Before)
	}
	if len(nf.activate.After) != 1 || nf.activate.After[0] != "earlier" {
		t.Fatalf("After = %v, want [earlier]", nf.activate.After)
	}
}

func TestRegisterWrapper_AppliesMatchMismatchAndOrder(t *testing.T) {
	if err := RegisterWrapper[factoryFixture]("extspi/tests.WrapOpts", func(inner factoryFixture) factoryFixture {
		return inner
	}, Matches("a", "b"), Mismatches("b"), WithWrapperOrder(9)); err != nil {
		t.Fatal(err)
	}
	cf := factoriesFor(contractType[factoryFixture]())
	wf := cf.wrappers["extspi/tests.WrapOpts"]
	if wf == nil {
		t.Fatal("expected the wrapper factory to be filed")
	}
	if wf.spec.Order != 9 {
		t.Fatalf("Order = %d, want 9", wf.spec.Order)
	}
	if !wf.spec.appliesTo("a") || wf.spec.appliesTo("b") {
		t.Fatal("expected Mismatches to override Matches for \"b\"")
	}
}

func TestRegisterAdaptive_FilesUnderContract(t *testing.T) {
	if err := RegisterAdaptive[factoryFixture]("extspi/tests.Adaptive", func() factoryFixture { return nil }); err != nil {
		t.Fatal(err)
	}
	cf := factoriesFor(contractType[factoryFixture]())
	if cf.adaptive == nil || cf.adaptive.identifier != "extspi/tests.Adaptive" {
		t.Fatalf("expected adaptive factory to be filed, got %+v", cf.adaptive)
	}
}
