package robots_test

import (
	"testing"

	"github.com/rohmanhakim/robotx/internal/robots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstGroup(t *testing.T, body string) *robots.RuleGroup {
	t.Helper()
	it := parseString(body)
	defer it.Close()
	require.True(t, it.Next(), "declaration has no group")
	return it.Group()
}

func TestRuleGroup_Matches(t *testing.T) {
	tests := []struct {
		name     string
		agents   string
		agent    string
		expected bool
	}{
		{name: "exact", agents: "User-agent: Fetchbot\n", agent: "Fetchbot", expected: true},
		{name: "substring of versioned agent", agents: "User-agent: Fetchbot\n", agent: "Fetchbot/2.0", expected: true},
		{name: "case insensitive", agents: "User-agent: fetchBOT\n", agent: "Mozilla/5.0 (compatible; FetchBot/2.0)", expected: true},
		{name: "no match", agents: "User-agent: Fetchbot\n", agent: "OtherBot/1.0", expected: false},
		{name: "wildcard", agents: "User-agent: *\n", agent: "anything", expected: true},
		{name: "any of several names", agents: "User-agent: a-bot\nUser-agent: b-bot\n", agent: "b-bot/3", expected: true},
		{name: "empty agent string", agents: "User-agent: Fetchbot\n", agent: "", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := firstGroup(t, tt.agents+"Disallow: /\n")
			assert.Equal(t, tt.expected, group.Matches(tt.agent))
		})
	}
}

func TestRuleGroup_IsWildcard(t *testing.T) {
	assert.True(t, firstGroup(t, "User-agent: *\nDisallow: /\n").IsWildcard())
	assert.True(t, firstGroup(t, "User-agent: a\nUser-agent: *\nDisallow: /\n").IsWildcard())
	assert.False(t, firstGroup(t, "User-agent: a\nDisallow: /\n").IsWildcard())
}

func TestRuleGroup_Allows(t *testing.T) {
	tests := []struct {
		name     string
		rules    string
		path     string
		expected bool
	}{
		{name: "no rules", rules: "", path: "/anything", expected: true},
		{name: "disallowed prefix", rules: "Disallow: /private\n", path: "/private/x", expected: false},
		{name: "outside prefix", rules: "Disallow: /private\n", path: "/public", expected: true},
		{name: "prefix is not segment aware", rules: "Disallow: /private\n", path: "/privateer", expected: false},
		{name: "longer allow wins", rules: "Allow: /dir/sub\nDisallow: /dir\n", path: "/dir/sub/file", expected: true},
		{name: "shorter allow loses", rules: "Allow: /dir\nDisallow: /dir/sub\n", path: "/dir/sub/file", expected: false},
		{name: "longer disallow wins regardless of order", rules: "Disallow: /dir\nAllow: /dir/sub\n", path: "/dir/other", expected: false},
		{name: "allow wins tie", rules: "Disallow: /page\nAllow: /page\n", path: "/page", expected: true},
		{name: "allow wins tie in either order", rules: "Allow: /page\nDisallow: /page\n", path: "/page", expected: true},
		{name: "disallow all", rules: "Disallow: /\n", path: "/", expected: false},
		{name: "empty path is root", rules: "Disallow: /\n", path: "", expected: false},
		{name: "wildcard in middle", rules: "Disallow: /*/secret\n", path: "/a/b/secret/c", expected: false},
		{name: "end anchor matches", rules: "Disallow: /*.php$\n", path: "/index.php", expected: false},
		{name: "end anchor rejects longer path", rules: "Disallow: /*.php$\n", path: "/index.php5", expected: true},
		{name: "anchored allow beats wildcard disallow", rules: "Disallow: /*\nAllow: /$\n", path: "/", expected: true},
		{name: "anchored allow only covers root", rules: "Disallow: /*\nAllow: /$\n", path: "/page", expected: false},
		{name: "case sensitive", rules: "Disallow: /Private\n", path: "/private", expected: true},
		{name: "robots.txt always allowed", rules: "Disallow: /\n", path: "/robots.txt", expected: true},
		{name: "utf-8 pattern against raw path", rules: "Disallow: /café\n", path: "/café/menu", expected: false},
		{name: "utf-8 pattern against escaped path", rules: "Disallow: /café\n", path: "/caf%C3%A9/menu", expected: false},
		{name: "escaped pattern against raw path", rules: "Disallow: /caf%c3%a9\n", path: "/café", expected: false},
		{name: "escaped pattern keeps literal bytes", rules: "Disallow: /caf%C3%A9\n", path: "/cafe", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			group := firstGroup(t, "User-agent: *\n"+tt.rules)
			assert.Equal(t, tt.expected, group.Allows(tt.path))
		})
	}
}

func TestRuleGroup_CrawlDelayDefaultsToZero(t *testing.T) {
	group := firstGroup(t, "User-agent: *\nDisallow: /x\n")
	assert.Equal(t, 0, group.CrawlDelay())
	assert.False(t, group.HasCrawlDelay())
}

func TestRuleGroup_GettersReturnCopies(t *testing.T) {
	group := firstGroup(t, "User-agent: a\nDisallow: /x\n")

	agents := group.Agents()
	agents[0] = "mutated"
	rules := group.Rules()
	rules[0].Pattern = "/mutated"

	assert.Equal(t, []string{"a"}, group.Agents())
	assert.Equal(t, "/x", group.Rules()[0].Pattern)
}

func TestDirective_String(t *testing.T) {
	assert.Equal(t, "Allow", robots.Allow.String())
	assert.Equal(t, "Disallow", robots.Disallow.String())
}
