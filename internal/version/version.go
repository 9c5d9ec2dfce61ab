// ABOUTME: Version and product identification
// ABOUTME: Version can be overridden at link time with -ldflags
package version

// Product is the application name shown in the TUI header and logs
const Product = "Podcast Recorder"

// Version is set with -ldflags "-X github.com/harperreed/podcast-recorder/internal/version.Version=..."
var Version = "0.1.0"

// String returns "Product vVersion"
func String() string {
	return Product + " v" + Version
}
