package robots

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"math"
	"strconv"
	"strings"
)

/*
DeclarationParser

Responsibilities:
- Read a declaration stream line by line, once
- Group agent names with the rules that follow them
- Track the default group (first "*" group, else rules before any User-agent)

Groups are produced lazily; a caller that stops early never reads the rest
of the stream.
*/

// maxLineSize bounds a single declaration line.
const maxLineSize = 512 * 1024

// GroupIterator yields the rule groups of one declaration in order.
// It is single-pass and not safe for concurrent use.
type GroupIterator struct {
	stream  io.ReadCloser
	scanner *bufio.Scanner

	// pending is the group currently being built. accepting is true while
	// its agent list may still grow.
	pending   *RuleGroup
	accepting bool

	current   *RuleGroup
	wildcard  *RuleGroup
	agentless *RuleGroup
	sitemaps  []string

	firstLine bool
	done      bool
	closed    bool
	err       error
}

// Parse wraps stream in a GroupIterator. The iterator closes stream when
// it is exhausted; callers stopping early must call Close.
func Parse(stream io.ReadCloser) *GroupIterator {
	scanner := bufio.NewScanner(stream)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &GroupIterator{
		stream:    stream,
		scanner:   scanner,
		firstLine: true,
	}
}

// Next advances to the next group. It returns false at the end of the
// declaration or on a read error, see Err.
func (it *GroupIterator) Next() bool {
	it.current = nil
	if it.done {
		return false
	}

	for it.scanner.Scan() {
		field, value, ok := it.splitLine(it.scanner.Text())
		if !ok {
			continue
		}
		if finished := it.apply(field, value); finished != nil {
			it.emit(finished)
			return true
		}
	}

	if err := it.scanner.Err(); err != nil {
		it.err = &RobotsError{
			Message:   fmt.Sprintf("failed to read declaration: %v", err),
			Retryable: false,
			Cause:     ErrCauseParseError,
		}
	}

	it.finish()
	if it.pending != nil {
		finished := it.pending
		it.pending = nil
		it.emit(finished)
		return true
	}
	return false
}

// Group returns the group produced by the last successful Next.
func (it *GroupIterator) Group() *RuleGroup {
	return it.current
}

// Default consumes the rest of the declaration and returns the default
// group, nil when the declaration has neither a "*" group nor rules
// before its first User-agent line.
func (it *GroupIterator) Default() *RuleGroup {
	for it.Next() {
	}
	if it.wildcard != nil {
		return it.wildcard
	}
	return it.agentless
}

// Sitemaps returns the Sitemap values read so far.
func (it *GroupIterator) Sitemaps() []string {
	sitemaps := make([]string, len(it.sitemaps))
	copy(sitemaps, it.sitemaps)
	return sitemaps
}

// Err returns the error that ended iteration early, if any.
func (it *GroupIterator) Err() error {
	return it.err
}

// Close releases the underlying stream. It is safe to call more than once.
func (it *GroupIterator) Close() error {
	it.done = true
	it.current = nil
	if it.closed {
		return nil
	}
	it.closed = true
	return it.stream.Close()
}

// All returns the remaining groups as a range-over-func sequence. Breaking
// out of the loop closes the iterator.
func (it *GroupIterator) All() iter.Seq[*RuleGroup] {
	return func(yield func(*RuleGroup) bool) {
		for it.Next() {
			if !yield(it.Group()) {
				it.Close()
				return
			}
		}
	}
}

func (it *GroupIterator) emit(group *RuleGroup) {
	if it.wildcard == nil && group.IsWildcard() {
		it.wildcard = group
	}
	it.current = group
}

func (it *GroupIterator) finish() {
	it.done = true
	if !it.closed {
		it.closed = true
		it.stream.Close()
	}
}

// splitLine strips comments and whitespace and splits "field: value".
// The field name is lowercased.
func (it *GroupIterator) splitLine(line string) (field, value string, ok bool) {
	if it.firstLine {
		it.firstLine = false
		line = strings.TrimPrefix(line, "\ufeff")
	}
	if idx := strings.Index(line, "#"); idx != -1 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}
	colonIdx := strings.Index(line, ":")
	if colonIdx == -1 {
		return "", "", false
	}
	field = strings.ToLower(strings.TrimSpace(line[:colonIdx]))
	value = strings.TrimSpace(line[colonIdx+1:])
	return field, value, true
}

// apply feeds one line into the grouping state and returns a group when
// the line completed one.
func (it *GroupIterator) apply(field, value string) *RuleGroup {
	switch field {
	case "user-agent":
		if it.pending != nil && it.accepting {
			it.pending.agents = append(it.pending.agents, value)
			return nil
		}
		finished := it.pending
		it.pending = &RuleGroup{agents: []string{value}}
		it.accepting = true
		return finished

	case "allow", "disallow", "crawl-delay":
		group := it.ruleTarget()
		switch field {
		case "allow":
			if value != "" {
				group.addRule(Allow, normalizePattern(value))
			}
		case "disallow":
			// An empty Disallow allows everything.
			if value != "" {
				group.addRule(Disallow, normalizePattern(value))
			}
		case "crawl-delay":
			if seconds, ok := parseCrawlDelay(value); ok {
				group.setCrawlDelay(seconds)
			}
		}

	case "sitemap":
		if value != "" {
			it.sitemaps = append(it.sitemaps, value)
		}
	}
	return nil
}

// ruleTarget returns the group a rule line belongs to and closes agent
// accumulation on it.
func (it *GroupIterator) ruleTarget() *RuleGroup {
	if it.pending == nil {
		if it.agentless == nil {
			it.agentless = &RuleGroup{}
		}
		return it.agentless
	}
	it.accepting = false
	return it.pending
}

// normalizePattern ensures a pattern starts with "/" unless it opens with
// a wildcard, and escapes it the way request paths are escaped.
func normalizePattern(pattern string) string {
	if !strings.HasPrefix(pattern, "/") && !strings.HasPrefix(pattern, "*") {
		pattern = "/" + pattern
	}
	return escapePath(pattern)
}

// parseCrawlDelay accepts a non-negative number of seconds and truncates
// fractions.
func parseCrawlDelay(value string) (int, bool) {
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(seconds) || seconds < 0 {
		return 0, false
	}
	if seconds > math.MaxInt32 {
		return math.MaxInt32, true
	}
	return int(seconds), true
}
