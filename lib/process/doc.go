// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. [Fatal] reports
// an error from run() on stderr and exits; it is the one place the
// binary writes to stderr outside the structured logger, because the
// logger may not exist yet when configuration fails.
package process
