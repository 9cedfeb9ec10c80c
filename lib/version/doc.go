// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package version provides build version information for the tablebot
// binary.
//
// [GitCommit], [GitDirty], [BuildTime] and [Version] are injected at
// build time with -ldflags -X. When they are not (go install, test
// runs), [Commit] falls back to the VCS revision recorded by the Go
// toolchain in the binary's build info.
//
// [Short] is what the bot reports as its version in join metadata;
// [Info] and [Full] are for --version output.
package version
