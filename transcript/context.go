/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package transcript

import "context"

// contextKey is used for storing the recorder in context.Context
type contextKey string

const recorderKey contextKey = "transcript_recorder"

// WithRecorder attaches a recorder to the Go context.
func WithRecorder(ctx context.Context, rec Recorder) context.Context {
	return context.WithValue(ctx, recorderKey, rec)
}

// FromContext retrieves the recorder from the Go context, defaulting to
// the clog-backed Log recorder.
func FromContext(ctx context.Context) Recorder {
	if val := ctx.Value(recorderKey); val != nil {
		if rec, ok := val.(Recorder); ok {
			return rec
		}
	}
	return Log{}
}
