/*******************************************************************************
 * Copyright (c) 2024 Genome Research Ltd.
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

// package group partitions files by their extracted sample key (and mate tag)
// in to deterministically ordered groups ready for concatenation.

package group

import (
	"sort"

	"github.com/inconshreveable/log15"
	"github.com/wtsi-ssg/kvasir/internal/sorted"
	"github.com/wtsi-ssg/kvasir/pattern"
)

// Mate distinguishes the groups of a paired-end sample.
type Mate string

const (
	MateNone Mate = ""
	Mate1    Mate = "1"
	Mate2    Mate = "2"
)

// Group is the sorted set of files that share a sample key and mate. Files
// must not be altered once the Group has been built.
type Group struct {
	Key   string
	Mate  Mate
	Files []pattern.FileRecord
}

// Paths returns the paths of our Files, in order.
func (g *Group) Paths() []string {
	paths := make([]string, len(g.Files))

	for i, f := range g.Files {
		paths[i] = f.Path
	}

	return paths
}

// Empty returns true if there are no files in this group.
func (g *Group) Empty() bool {
	return len(g.Files) == 0
}

// Groups holds the Groups for every sample key found.
type Groups struct {
	// Keys are the distinct sample keys, sorted. Work on groups should be done
	// in this order.
	Keys []string

	// Paired is true if there are Mate1 and Mate2 groups per key, instead of
	// a single MateNone group.
	Paired bool

	groups map[string]map[Mate]*Group
}

// Build partitions the matched records by sample key. Unmatched records are
// logged and excluded. In paired mode each key gets a Mate1 and a Mate2 group;
// records with any other mate tag are in neither. Otherwise each key gets a
// single MateNone group. Each group's files are sorted by path.
//
// Empty groups are logged as warnings but still returned.
func Build(records []pattern.FileRecord, paired bool, logger log15.Logger) *Groups {
	byKey := make(map[string][]pattern.FileRecord)

	for _, r := range records {
		if r.EmptyKey() {
			logger.Warn("file matched pattern with an empty sample identifier", "path", r.Path)

			continue
		}

		if !r.Matched() {
			logger.Warn("file did not match pattern", "path", r.Path)

			continue
		}

		byKey[r.Key] = append(byKey[r.Key], r)
	}

	g := &Groups{
		Keys:   sorted.Keys(byKey),
		Paired: paired,
		groups: make(map[string]map[Mate]*Group, len(byKey)),
	}

	if len(g.Keys) == 0 {
		logger.Warn("no files matched the pattern")

		return g
	}

	logger.Info("found samples", "count", len(g.Keys), "samples", g.Keys)

	for _, key := range g.Keys {
		g.groups[key] = buildGroupsForKey(key, byKey[key], paired, logger)
	}

	return g
}

// buildGroupsForKey builds the group(s) for a single sample key.
func buildGroupsForKey(key string, records []pattern.FileRecord, paired bool,
	logger log15.Logger) map[Mate]*Group {
	if !paired {
		return map[Mate]*Group{
			MateNone: newGroup(key, MateNone, records, logger),
		}
	}

	var mate1, mate2 []pattern.FileRecord

	for _, r := range records {
		switch Mate(r.Mate) {
		case Mate1:
			mate1 = append(mate1, r)
		case Mate2:
			mate2 = append(mate2, r)
		default:
			logger.Debug("ignoring file with unknown mate tag", "sample", key, "mate", r.Mate, "path", r.Path)
		}
	}

	return map[Mate]*Group{
		Mate1: newGroup(key, Mate1, mate1, logger),
		Mate2: newGroup(key, Mate2, mate2, logger),
	}
}

// newGroup copies and sorts the records by path, warning if there are none.
func newGroup(key string, mate Mate, records []pattern.FileRecord, logger log15.Logger) *Group {
	files := make([]pattern.FileRecord, len(records))
	copy(files, records)

	sort.Slice(files, func(i, j int) bool {
		return files[i].Path < files[j].Path
	})

	if len(files) == 0 {
		logger.Warn("no matches found", "sample", key, "mate", string(mate))
	}

	return &Group{Key: key, Mate: mate, Files: files}
}

// Mates returns the mates each key has groups for, in processing order.
func (g *Groups) Mates() []Mate {
	if g.Paired {
		return []Mate{Mate1, Mate2}
	}

	return []Mate{MateNone}
}

// Get returns the group for the given key and mate, or nil if there isn't one.
func (g *Groups) Get(key string, mate Mate) *Group {
	return g.groups[key][mate]
}

// Each calls cb with every group, in sorted key order and then mate order.
func (g *Groups) Each(cb func(*Group)) {
	for _, key := range g.Keys {
		for _, mate := range g.Mates() {
			cb(g.Get(key, mate))
		}
	}
}
