// Copyright 2026 The Tablebot Authors
// SPDX-License-Identifier: Apache-2.0

// Package secret provides a memory-safe buffer for the table auth
// token.
//
// Buffer allocates memory outside the Go heap via mmap(MAP_ANONYMOUS),
// tries to lock it into physical RAM via mlock, and marks it excluded
// from core dumps via madvise(MADV_DONTDUMP). On Close, the memory is
// zeroed, unlocked, and unmapped.
//
// Hosts that run the client unprivileged frequently have a zero
// RLIMIT_MEMLOCK. A failed mlock is not an error: the buffer is still
// off-heap, dump-excluded and zeroed on close, and [Buffer.Locked]
// reports the degraded state so the caller can log it once.
package secret
