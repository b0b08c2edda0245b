package version

import (
	"strings"
	"testing"
)

func withVersionVars(t *testing.T, v, commit, date string, fn func()) {
	t.Helper()
	origVersion, origCommit, origDate := version, gitCommit, buildDate
	defer func() {
		version, gitCommit, buildDate = origVersion, origCommit, origDate
	}()
	version, gitCommit, buildDate = v, commit, date
	fn()
}

func TestGet(t *testing.T) {
	if Get() == "" {
		t.Error("Get() returned empty string")
	}
}

func TestGet_Stamped(t *testing.T) {
	withVersionVars(t, "1.2.0", "", "", func() {
		if v := Get(); v != "1.2.0" {
			t.Errorf("expected 1.2.0, got %s", v)
		}
	})
}

func TestInfo(t *testing.T) {
	withVersionVars(t, "1.2.0", "abc1234", "2026-08-29", func() {
		info := Info()
		for _, want := range []string{"surveyvoice version 1.2.0", "commit: abc1234", "built: 2026-08-29"} {
			if !strings.Contains(info, want) {
				t.Errorf("Info() missing %q:\n%s", want, info)
			}
		}
	})
}

func TestLogAttrs(t *testing.T) {
	withVersionVars(t, "1.2.0", "abc1234", "", func() {
		attrs := LogAttrs()
		if len(attrs) != 4 {
			t.Fatalf("expected 4 attrs, got %v", attrs)
		}
		if attrs[0] != "version" || attrs[1] != "1.2.0" {
			t.Errorf("unexpected version attrs %v", attrs)
		}
	})
}
