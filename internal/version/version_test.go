package version

import "testing"

func TestString(t *testing.T) {
	if got, want := String("habitat-analyse"), "habitat-analyse dev (commit unknown, built unknown)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	defer func(v, sha, at string) { Version, GitSHA, BuildTime = v, sha, at }(Version, GitSHA, BuildTime)
	Version, GitSHA, BuildTime = "0.3.0", "abc1234", "2026-01-02T03:04:05Z"
	if got, want := String("habitat-import"), "habitat-import 0.3.0 (commit abc1234, built 2026-01-02T03:04:05Z)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
