package theme

import "testing"

func TestByNameFallsBack(t *testing.T) {
	if got := ByName("tokyo-night"); got.Name != "tokyo-night" {
		t.Fatalf("got %q", got.Name)
	}
	if got := ByName("nope"); got.Name != FlexokiDark.Name {
		t.Fatalf("unknown theme should fall back, got %q", got.Name)
	}
}

func TestNamesAndValid(t *testing.T) {
	names := Names()
	if len(names) != len(All) {
		t.Fatalf("len = %d", len(names))
	}
	for _, n := range names {
		if !Valid(n) {
			t.Fatalf("%q should be valid", n)
		}
	}
	if Valid("") {
		t.Fatal("empty name should be invalid")
	}
}

func TestSetActive(t *testing.T) {
	defer SetActive(FlexokiDark.Name)
	SetActive("terminal")
	if Active.Name != "terminal" {
		t.Fatalf("active = %q", Active.Name)
	}
}

func TestLevelAndGoalColors(t *testing.T) {
	th := FlexokiDark
	if th.Level("danger") != th.Red || th.Level("warn") != th.Orange || th.Level("ok") != th.Green {
		t.Fatal("level colors do not match red/orange/green")
	}
	if th.Level("") != th.Green {
		t.Fatal("unknown level should read as ok")
	}
	if th.GoalColor("spending") != th.Blue || th.GoalColor("saving") != th.Green {
		t.Fatal("goal colors do not match blue/green")
	}
}

func TestPaletteRoles(t *testing.T) {
	for _, th := range All {
		if th.Background == "" || th.TextPrimary == "" || th.Cyan == "" {
			t.Fatalf("%s: empty color role", th.Name)
		}
		if th.Background == th.TextPrimary {
			t.Fatalf("%s: text is invisible on background", th.Name)
		}
	}
	if !FlexokiLight.Light || FlexokiDark.Light {
		t.Fatal("Light flag is wrong")
	}
}
