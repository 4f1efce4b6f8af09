// Package version provides build and version information for Banyan.
package version

// Version is the current release version of Banyan.
// This can be overridden at build time using:
//
//	go build -ldflags "-X github.com/banyan-robotics/banyan/internal/version.Version=x.y.z"
var Version = "1.0.0"
