package presets

import (
	"regexp"
	"testing"
)

func TestLookupPattern(t *testing.T) {
	t.Parallel()

	preset, ok := LookupPattern("email")
	if !ok {
		t.Fatalf("email preset missing")
	}
	re := regexp.MustCompile(preset.Pattern)
	if !re.MatchString("user@example.com") {
		t.Fatalf("email preset rejected its own example")
	}
	if re.MatchString("not-an-email") {
		t.Fatalf("email preset matched junk")
	}

	if _, ok := LookupPattern("nope"); ok {
		t.Fatalf("unknown preset should not resolve")
	}
}

func TestAllPresetsCompileAndMatchExamples(t *testing.T) {
	t.Parallel()

	for _, name := range PatternNames() {
		preset, ok := LookupPattern(name)
		if !ok {
			t.Fatalf("preset %q listed but missing", name)
		}
		re, err := regexp.Compile(preset.Pattern)
		if err != nil {
			t.Fatalf("preset %q does not compile: %v", name, err)
		}
		// phone_us documents two example shapes in one string; skip the
		// combined example there.
		if name == "phone_us" {
			if !re.MatchString("555-123-4567") {
				t.Fatalf("phone_us rejected 555-123-4567")
			}
			continue
		}
		if !re.MatchString(preset.Example) {
			t.Fatalf("preset %q rejected its own example %q", name, preset.Example)
		}
	}
}

func TestPatternBuilder(t *testing.T) {
	t.Parallel()

	exact := 5
	b := PatternBuilder{AllowedCharacters: []string{"digits"}, LengthExact: &exact}
	if got := b.Build(); got != "^[0-9]{5}$" {
		t.Fatalf("Build = %q", got)
	}
	re := regexp.MustCompile(b.Build())
	if !re.MatchString("12345") || re.MatchString("1234a") {
		t.Fatalf("built pattern has wrong semantics")
	}

	min, max := 2, 4
	b = PatternBuilder{
		AllowedCharacters: []string{"uppercase"},
		LengthMin:         &min,
		LengthMax:         &max,
		StartsWith:        "A.",
	}
	re = regexp.MustCompile(b.Build())
	if !re.MatchString("A.BC") {
		t.Fatalf("expected prefix match")
	}
	// The dot in the prefix is escaped, not a wildcard.
	if re.MatchString("AXBC") {
		t.Fatalf("prefix dot should be literal")
	}
}

func TestPatternBuilderDefaults(t *testing.T) {
	t.Parallel()

	b := PatternBuilder{}
	if got := b.Build(); got != "^.*$" {
		t.Fatalf("empty builder = %q, want ^.*$", got)
	}

	max := 3
	b = PatternBuilder{LengthMax: &max}
	if got := b.Build(); got != "^.{0,3}$" {
		t.Fatalf("max-only builder = %q", got)
	}
}
