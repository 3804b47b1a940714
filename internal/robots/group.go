package robots

import "strings"

type Directive int

const (
	Disallow Directive = iota
	Allow
)

func (d Directive) String() string {
	switch d {
	case Allow:
		return "Allow"
	case Disallow:
		return "Disallow"
	default:
		return "Unknown"
	}
}

// PathRule represents a single allow or disallow rule.
type PathRule struct {
	Directive Directive

	// The path pattern (may include wildcards * and $)
	Pattern string
}

// Matches reports whether path (escaped, without query) is covered by the rule.
func (r PathRule) Matches(path string) bool {
	return matchPattern(r.Pattern, path)
}

// RuleGroup is the set of rules declared for one or more agent names.
// A RuleGroup is immutable once the parser hands it out.
type RuleGroup struct {
	agents        []string
	rules         []PathRule
	crawlDelay    int
	hasCrawlDelay bool
}

func (g *RuleGroup) Agents() []string {
	agents := make([]string, len(g.agents))
	copy(agents, g.agents)
	return agents
}

func (g *RuleGroup) Rules() []PathRule {
	rules := make([]PathRule, len(g.rules))
	copy(rules, g.rules)
	return rules
}

// CrawlDelay returns the declared delay in whole seconds, 0 when none was declared.
func (g *RuleGroup) CrawlDelay() int {
	return g.crawlDelay
}

func (g *RuleGroup) HasCrawlDelay() bool {
	return g.hasCrawlDelay
}

// IsWildcard reports whether the group is declared for "*".
func (g *RuleGroup) IsWildcard() bool {
	for _, name := range g.agents {
		if strings.TrimSpace(name) == "*" {
			return true
		}
	}
	return false
}

// Matches reports whether the group applies to agent: any declared name is
// "*" or occurs case-insensitively inside agent.
func (g *RuleGroup) Matches(agent string) bool {
	return g.IsWildcard() || g.matchesName(agent)
}

// matchesName is Matches without the "*" catch-all.
func (g *RuleGroup) matchesName(agent string) bool {
	agentLower := strings.ToLower(agent)
	for _, name := range g.agents {
		nameLower := strings.ToLower(strings.TrimSpace(name))
		if nameLower == "" || nameLower == "*" {
			continue
		}
		if strings.Contains(agentLower, nameLower) {
			return true
		}
	}
	return false
}

// Allows decides path against the group's rules. The longest matching
// pattern wins and Allow wins a tie of equal length. A path no rule
// matches is allowed, as is the declaration itself.
func (g *RuleGroup) Allows(path string) bool {
	if path == "" {
		path = "/"
	}
	path = escapePath(path)
	if path == RobotsTxtPath {
		return true
	}

	allowed := true
	longest := -1
	for _, rule := range g.rules {
		if !rule.Matches(path) {
			continue
		}
		length := len(rule.Pattern)
		if length > longest || (length == longest && rule.Directive == Allow) {
			longest = length
			allowed = rule.Directive == Allow
		}
	}
	return allowed
}

func (g *RuleGroup) addRule(directive Directive, pattern string) {
	g.rules = append(g.rules, PathRule{Directive: directive, Pattern: pattern})
}

func (g *RuleGroup) setCrawlDelay(seconds int) {
	g.crawlDelay = seconds
	g.hasCrawlDelay = true
}
