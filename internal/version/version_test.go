// ABOUTME: Tests for version reporting
// ABOUTME: Covers the product banner and link-time version overrides
package version

import (
	"fmt"
	"testing"
)

func TestString(t *testing.T) {
	saved := Version
	t.Cleanup(func() { Version = saved })

	tests := []struct {
		version string
		want    string
	}{
		{"0.1.0", "Podcast Recorder v0.1.0"},
		{"1.2.3-rc1", "Podcast Recorder v1.2.3-rc1"},
		{"dev", "Podcast Recorder vdev"},
	}

	for _, tt := range tests {
		Version = tt.version
		if got := String(); got != tt.want {
			t.Errorf("String() with Version %q = %q, want %q", tt.version, got, tt.want)
		}
	}
}

func TestDefaultVersionIsSemver(t *testing.T) {
	var major, minor, patch int
	if n, err := fmt.Sscanf(Version, "%d.%d.%d", &major, &minor, &patch); err != nil || n != 3 {
		t.Errorf("default Version %q is not major.minor.patch", Version)
	}
}
