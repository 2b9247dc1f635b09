/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package transcript captures one record per agent invocation: the prompt
// sent, the raw output received, timing, and where in the loop it
// happened. Stuck loops are debugged from these records, so they favor
// completeness over size.
package transcript

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Entry is one complete agent invocation from prompt to transcript.
type Entry struct {
	ID        string    `json:"id"`
	Iteration int       `json:"iteration"`
	Marker    string    `json:"marker"`
	Mode      string    `json:"mode"`
	Prompt    string    `json:"prompt"`
	Output    string    `json:"output"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Error     string    `json:"error,omitempty"`
}

// Begin stamps a new entry for an invocation that is about to happen.
func Begin(iteration int, marker, mode, prompt string) *Entry {
	return &Entry{
		ID:        NewID(),
		Iteration: iteration,
		Marker:    marker,
		Mode:      mode,
		Prompt:    prompt,
		StartTime: time.Now(),
	}
}

// Complete fills in the invocation outcome.
func (e *Entry) Complete(output string, err error) {
	e.Output = output
	if err != nil {
		e.Error = err.Error()
	}
	e.EndTime = time.Now()
}

// Duration returns how long the invocation took, or the elapsed time so
// far when the entry is not complete yet.
func (e *Entry) Duration() time.Duration {
	if e.EndTime.IsZero() {
		return time.Since(e.StartTime)
	}
	return e.EndTime.Sub(e.StartTime)
}

// NewID generates a unique entry ID.
func NewID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp only if random generation fails
		return time.Now().Format("20060102-150405.000000")
	}
	// Format: YYYYMMDD-HHMMSS-RRRR where RRRR is random hex
	return fmt.Sprintf("%s-%s", time.Now().Format("20060102-150405"), hex.EncodeToString(b))
}
