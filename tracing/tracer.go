// Package tracing provides hooks that record the accesses of a cache
// simulator into logs and databases.
package tracing

import (
	"log"

	"github.com/sarchlab/gemmcache/cache"
	"github.com/sarchlab/gemmcache/datarecording"
	"github.com/sarchlab/gemmcache/hooking"
)

// AccessTable is the table that holds one row per cache access.
const AccessTable = "cache_accesses"

// AccessEntry is a cache access as stored in the database.
type AccessEntry struct {
	RunID      string
	Seq        uint64
	Matrix     string
	Kind       string
	Address    uint64
	SetIndex   int
	Tag        uint64
	Hit        bool
	Evicted    bool
	EvictedTag uint64
}

func accessInfo(ctx hooking.HookCtx) (cache.AccessInfo, bool) {
	if ctx.Pos != cache.HookPosAccess {
		return cache.AccessInfo{}, false
	}

	info, ok := ctx.Item.(cache.AccessInfo)

	return info, ok
}

// A LogTracer is a hook that prints every cache access.
type LogTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a LogTracer that writes to the logger.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// Func prints the access.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	info, ok := accessInfo(ctx)
	if !ok {
		return
	}

	result := "miss"
	if info.Hit {
		result = "hit"
	}

	t.logger.Printf(
		"%d, %s, %s, 0x%x, %d, %d, %s\n",
		info.Seq,
		info.Matrix,
		info.Kind,
		info.Address,
		info.SetIndex,
		info.Tag,
		result,
	)
}

// A DBTracer is a hook that writes every cache access into a data recorder.
type DBTracer struct {
	recorder datarecording.DataRecorder
	runID    string
}

// NewDBTracer creates a DBTracer. Accesses are tagged with the run ID so
// that several runs can share a database.
func NewDBTracer(
	recorder datarecording.DataRecorder,
	runID string,
) *DBTracer {
	ensureTable(recorder, AccessTable, AccessEntry{})

	return &DBTracer{
		recorder: recorder,
		runID:    runID,
	}
}

// Func records the access.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	info, ok := accessInfo(ctx)
	if !ok {
		return
	}

	t.recorder.InsertData(AccessTable, AccessEntry{
		RunID:      t.runID,
		Seq:        info.Seq,
		Matrix:     info.Matrix.String(),
		Kind:       info.Kind.String(),
		Address:    info.Address,
		SetIndex:   info.SetIndex,
		Tag:        info.Tag,
		Hit:        info.Hit,
		Evicted:    info.Evicted,
		EvictedTag: info.EvictedTag,
	})
}

func ensureTable(
	recorder datarecording.DataRecorder,
	tableName string,
	sampleEntry any,
) {
	for _, t := range recorder.ListTables() {
		if t == tableName {
			return
		}
	}

	recorder.CreateTable(tableName, sampleEntry)
}
