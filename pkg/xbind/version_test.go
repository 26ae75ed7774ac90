package xbind

import "testing"

func TestVersionInfo(t *testing.T) {
	info := VersionInfo()
	if len(info) == 0 {
		t.Error("VersionInfo() should not be empty")
	}
	if Version == "dev" {
		if info != "dev (unknown, unknown)" {
			t.Errorf("VersionInfo() = %q, want %q", info, "dev (unknown, unknown)")
		}
	}
}
