/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// scanConcurrency bounds parallel file reads.
const scanConcurrency = 8

// PRDNotFoundError reports that the requirements document is absent. The
// caller distinguishes this from coverage gaps when choosing an exit code.
type PRDNotFoundError struct {
	Path string
}

func (e *PRDNotFoundError) Error() string {
	return fmt.Sprintf("PRD not found: %s", e.Path)
}

// Scanner classifies every requirement identifier in the PRD by scanning
// the configured directories for evidence.
type Scanner struct {
	cfg   Config
	idRE  *regexp.Regexp
	tagRE *regexp.Regexp
}

// New validates the config and compiles the identifier patterns.
func New(cfg Config) (*Scanner, error) {
	if cfg.PRD == "" {
		return nil, errors.New("scanner: prd path must not be empty")
	}
	if cfg.IDPattern == "" {
		return nil, errors.New("scanner: id pattern must not be empty")
	}
	idRE, err := regexp.Compile(`\b(` + cfg.IDPattern + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("scanner: compiling id pattern: %w", err)
	}
	// Tags are matched case-insensitively so "prd: f-01" still counts.
	tagRE, err := regexp.Compile(`(?i)PRD[:\s]+(` + cfg.IDPattern + `)\b`)
	if err != nil {
		return nil, fmt.Errorf("scanner: compiling tag pattern: %w", err)
	}
	return &Scanner{cfg: cfg, idRE: idRE, tagRE: tagRE}, nil
}

// Scan reads the PRD, gathers evidence from the test and source trees, and
// returns the classified result.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	prdPath := filepath.Join(s.cfg.Root, s.cfg.PRD)
	text, err := os.ReadFile(prdPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &PRDNotFoundError{Path: s.cfg.PRD}
		}
		return nil, fmt.Errorf("reading %s: %w", prdPath, err)
	}

	ids := s.extractIDs(string(text))
	byLower := make(map[string]string, len(ids))
	for _, id := range ids {
		byLower[strings.ToLower(id)] = id
	}

	testFiles, err := s.collect(s.cfg.TestDirs, s.cfg.TestExts)
	if err != nil {
		return nil, err
	}
	srcFiles, err := s.collect(s.cfg.SourceDirs, s.cfg.SourceExts)
	if err != nil {
		return nil, err
	}

	uiExt := make(map[string]bool, len(s.cfg.UIExts))
	for _, ext := range s.cfg.UIExts {
		uiExt[ext] = true
	}

	var (
		mu      sync.Mutex
		covered = map[string]bool{}
		partial = map[string]bool{}
	)
	record := func(into map[string]bool, id string) {
		mu.Lock()
		into[id] = true
		mu.Unlock()
	}

	g := new(errgroup.Group)
	g.SetLimit(scanConcurrency)

	for _, path := range testFiles {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				// Unreadable evidence files contribute nothing.
				return nil
			}
			for _, m := range s.tagRE.FindAllStringSubmatch(string(data), -1) {
				if id, ok := byLower[strings.ToLower(m[1])]; ok {
					record(covered, id)
				}
			}
			return nil
		})
	}

	for _, path := range srcFiles {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			content := string(data)
			for _, m := range s.tagRE.FindAllStringSubmatch(content, -1) {
				if id, ok := byLower[strings.ToLower(m[1])]; ok {
					record(partial, id)
				}
			}
			// Hints are case-insensitive substring checks. Implementation
			// hints deliberately consult only the first keyword (the
			// strongest signal); UI hints match on any keyword.
			lower := strings.ToLower(content)
			for id, words := range s.cfg.ImplHints {
				if len(words) > 0 && strings.Contains(lower, strings.ToLower(words[0])) {
					record(partial, id)
				}
			}
			if uiExt[filepath.Ext(path)] {
				for id, words := range s.cfg.UIHints {
					if containsAny(lower, words) {
						record(partial, id)
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{PRD: s.cfg.PRD, IDs: ids}
	for _, id := range ids {
		switch {
		case covered[id]:
			res.Covered = append(res.Covered, id)
		case partial[id]:
			res.Partial = append(res.Partial, id)
		default:
			res.Missing = append(res.Missing, id)
		}
	}
	// Debug level: when the loop invokes this tool it captures combined
	// output as the raw report, which must stay clean by default.
	clog.FromContext(ctx).Debugf("scanned %d test and %d source files: %d covered / %d partial / %d missing",
		len(testFiles), len(srcFiles), len(res.Covered), len(res.Partial), len(res.Missing))
	return res, nil
}

// extractIDs returns the sorted unique identifiers mentioned in the PRD.
func (s *Scanner) extractIDs(text string) []string {
	seen := map[string]bool{}
	var ids []string
	for _, m := range s.idRE.FindAllStringSubmatch(text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			ids = append(ids, m[1])
		}
	}
	sort.Strings(ids)
	return ids
}

// collect walks dirs under Root and returns files with one of the given
// extensions. Directories that don't exist contribute nothing.
func (s *Scanner) collect(dirs, exts []string) ([]string, error) {
	want := make(map[string]bool, len(exts))
	for _, ext := range exts {
		want[ext] = true
	}
	var files []string
	for _, dir := range dirs {
		root := filepath.Join(s.cfg.Root, dir)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			if want[filepath.Ext(path)] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", root, err)
		}
	}
	return files, nil
}

// containsAny reports whether any keyword occurs in the already-lowercased
// content.
func containsAny(lower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return true
		}
	}
	return false
}
