// Package cmd holds build information shared by the commands, set at link time with
// -ldflags "-X github.com/circleci/etag-demo/cmd.Version=..."
package cmd

var (
	Version = "dev"
	Date    = "unknown"
)
