package version

import "testing"

func TestString(t *testing.T) {
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	defer func() {
		Version, Commit, BuildTime = origVersion, origCommit, origBuildTime
	}()

	tests := []struct {
		name                   string
		version, commit, built string
		want                   string
	}{
		{"defaults", "dev", "unknown", "unknown", "dev (unknown) built unknown"},
		{"release", "0.3.1", "abc1234", "2025-11-01T18:00:00Z", "0.3.1 (abc1234) built 2025-11-01T18:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, Commit, BuildTime = tt.version, tt.commit, tt.built
			if got := String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}
