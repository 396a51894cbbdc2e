// Package version exposes build metadata set with -ldflags, falling back to
// the VCS stamp embedded by the Go toolchain.
//
//	go build -ldflags "-X github.com/taskhive/taskhive/version.Version=v1.2.0"
package version
