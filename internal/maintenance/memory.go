// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package maintenance

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
)

func (o *Optimizer) memorySteps() []step {
	return []step{
		{"trim_cache_overflow", o.trimCacheOverflow},
		{"release_memory", o.releaseMemory},
	}
}

// trimCacheOverflow drops expired entries so the release step measures
// live data only.
func (o *Optimizer) trimCacheOverflow(context.Context) (string, error) {
	removed := o.cache.Cleanup()
	stats := o.cache.Stats()
	return fmt.Sprintf("dropped %d expired entries, %d live", removed, stats.Size), nil
}

// releaseMemory forces a collection and returns freed heap pages to
// the OS, reporting the delta.
func (o *Optimizer) releaseMemory(context.Context) (string, error) {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)

	runtime.GC()
	debug.FreeOSMemory()

	runtime.ReadMemStats(&after)
	freedKB := (int64(before.HeapAlloc) - int64(after.HeapAlloc)) / 1024
	if freedKB < 0 {
		freedKB = 0
	}
	return fmt.Sprintf("released %d KiB heap (%d KiB in use)", freedKB, after.HeapAlloc/1024), nil
}
