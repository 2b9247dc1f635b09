/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transcript

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// Recorder receives completed entries. Implementations must tolerate
// concurrent calls.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Log is the default recorder: a one-line structured summary per
// invocation via clog. Prompts and outputs are sized, not echoed, since
// the loop already streams the interesting parts.
type Log struct{}

// Record logs the entry summary.
func (Log) Record(ctx context.Context, entry Entry) {
	clog.FromContext(ctx).With(
		"entry_id", entry.ID,
		"iteration", entry.Iteration,
		"marker", entry.Marker,
		"mode", entry.Mode,
		"duration_ms", entry.Duration().Milliseconds(),
		"output_bytes", len(entry.Output),
	).Info("agent invocation recorded")
}

// JSONL appends each entry as one JSON line, suitable for a transcript
// file that other tooling can replay.
type JSONL struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewJSONL creates a JSONL recorder writing to w.
func NewJSONL(w io.Writer) *JSONL {
	return &JSONL{enc: json.NewEncoder(w)}
}

// Record appends the entry. Encoding failures are logged, not returned;
// a broken transcript sink must not interrupt the loop.
func (j *JSONL) Record(ctx context.Context, entry Entry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.enc.Encode(entry); err != nil {
		clog.FromContext(ctx).With("error", err).Warn("failed to write transcript entry")
	}
}

// Multi fans an entry out to several recorders in parallel.
func Multi(recorders ...Recorder) Recorder {
	return multi(recorders)
}

type multi []Recorder

func (m multi) Record(ctx context.Context, entry Entry) {
	g := new(errgroup.Group)
	for _, r := range m {
		if r != nil {
			r := r
			g.Go(func() error {
				r.Record(ctx, entry)
				return nil
			})
		}
	}
	_ = g.Wait()
}
