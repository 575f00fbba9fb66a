package version

import "testing"

func TestString(t *testing.T) {
	oldV, oldSHA, oldTime := Version, GitSHA, BuildTime
	t.Cleanup(func() { Version, GitSHA, BuildTime = oldV, oldSHA, oldTime })

	Version, GitSHA, BuildTime = "1.2.0", "abc1234", "2026-10-18T09:00:00Z"
	want := "tagger 1.2.0 (commit abc1234, built 2026-10-18T09:00:00Z)"
	if got := String("tagger"); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
