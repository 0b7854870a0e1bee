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

// package pattern extracts sample identifiers and paired-end mate tags from
// file paths using a regular expression with capture groups.

package pattern

import (
	"regexp"

	"github.com/wtsi-ssg/kvasir/internal/errs"
)

// DefaultIDGroup and DefaultMateGroup are the capture groups used when the
// caller doesn't specify any.
const (
	DefaultIDGroup   = 1
	DefaultMateGroup = 2
)

// FileRecord is the result of applying a Pattern to a path. Groups is empty if
// the pattern didn't match.
type FileRecord struct {
	Path   string
	Groups []string

	// Key is the sample identifier, and Mate the mate tag (only set in
	// paired-end mode). Both are empty when there was no match.
	Key  string
	Mate string
}

// Matched returns true if the pattern matched this record's path and yielded a
// sample key. An id group that matched an empty string, or didn't participate
// in the match at all, yields no key, since an empty sample name can't be used
// to name outputs.
func (r FileRecord) Matched() bool {
	return len(r.Groups) > 0 && r.Key != ""
}

// EmptyKey returns true if the pattern matched this record's path but the id
// group was empty or didn't participate.
func (r FileRecord) EmptyKey() bool {
	return len(r.Groups) > 0 && r.Key == ""
}

// Pattern is a compiled regular expression plus the capture groups that hold
// the sample key and, in paired-end mode, the mate tag.
type Pattern struct {
	re        *regexp.Regexp
	idGroup   int
	mateGroup int
	paired    bool
}

// New compiles expr and checks that idGroup (and mateGroup, if paired) are
// capture groups that exist in it. Groups are numbered from 1, as in regexp.
// Any problem is returned as an errs.ConfigError.
func New(expr string, idGroup, mateGroup int, paired bool) (*Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errs.Config("invalid pattern %q: %w", expr, err)
	}

	n := re.NumSubexp()

	if idGroup < 1 || idGroup > n {
		return nil, errs.Config("id group %d out of range: pattern %q has %d capture groups", idGroup, expr, n)
	}

	if paired && (mateGroup < 1 || mateGroup > n) {
		return nil, errs.Config("mate group %d out of range: pattern %q has %d capture groups", mateGroup, expr, n)
	}

	return &Pattern{
		re:        re,
		idGroup:   idGroup,
		mateGroup: mateGroup,
		paired:    paired,
	}, nil
}

// Paired returns true if this Pattern extracts mate tags.
func (p *Pattern) Paired() bool {
	return p.paired
}

// String returns the source text of the pattern.
func (p *Pattern) String() string {
	return p.re.String()
}

// Extract searches (unanchored) for the pattern in path. If it matches, the
// returned record has all the capture groups along with the extracted Key and,
// if paired, Mate. A capture group that didn't participate in the match gives
// an empty string.
func (p *Pattern) Extract(path string) FileRecord {
	record := FileRecord{Path: path}

	m := p.re.FindStringSubmatch(path)
	if m == nil {
		return record
	}

	record.Groups = m[1:]
	record.Key = m[p.idGroup]

	if p.paired {
		record.Mate = m[p.mateGroup]
	}

	return record
}

// ExtractAll calls Extract on every path.
func (p *Pattern) ExtractAll(paths []string) []FileRecord {
	records := make([]FileRecord, len(paths))

	for i, path := range paths {
		records[i] = p.Extract(path)
	}

	return records
}
