package schema

import "testing"

func TestToggledByForms(t *testing.T) {
	cfg := NewConfig()
	cfg.SetToggle("use_encryption", true)
	cfg.SetToggle("fire_and_forget", false)
	cfg.SetVariant("packet_type", 3)

	cases := []struct {
		expr string
		want bool
	}{
		{"use_encryption", true},
		{"!use_encryption", false},
		{"fire_and_forget", false},
		{"!fire_and_forget", true},
		{"packet_type=1|2|3", true},
		{"packet_type=1|2", false},
		{"never_set", false},
		{"!never_set", true},
	}
	for _, c := range cases {
		got, err := cfg.ToggledBy(c.expr)
		if err != nil {
			t.Fatalf("%s: %v", c.expr, err)
		}
		if got != c.want {
			t.Fatalf("%s: got %v want %v", c.expr, got, c.want)
		}
	}
}

func TestToggledByMalformedVariantLiteral(t *testing.T) {
	cfg := NewConfig()
	cfg.SetVariant("packet_type", 1)
	if _, err := cfg.ToggledBy("packet_type=x"); err == nil {
		t.Fatalf("expected error for malformed variant literal")
	}
}

func TestSelectMultiEnumPreservesCanonicalOrder(t *testing.T) {
	cfg := NewConfig()
	cfg.SetToggle("has_falcon", true)
	cfg.SetToggle("has_ed25519", true)
	cfg.SetToggle("has_dsa65", false)

	entries := []MultiEnumEntry[string]{
		{Toggle: "has_ed25519", Value: "ed25519"},
		{Toggle: "has_dsa44", Value: "ml-dsa-44"},
		{Toggle: "has_dsa65", Value: "ml-dsa-65"},
		{Toggle: "has_falcon", Value: "falcon-1024"},
		{Toggle: "has_slhdsa", Value: "slh-dsa-sha128s"},
	}
	got, err := SelectMultiEnum(cfg, entries)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	want := []string{"ed25519", "falcon-1024"}
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: got %s want %s", i, got[i], want[i])
		}
	}
}
