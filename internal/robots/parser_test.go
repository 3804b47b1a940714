package robots_test

import (
	"io"
	"strings"
	"testing"

	"github.com/rohmanhakim/robotx/internal/robots"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseString(body string) *robots.GroupIterator {
	return robots.Parse(io.NopCloser(strings.NewReader(body)))
}

func collectGroups(t *testing.T, it *robots.GroupIterator) []*robots.RuleGroup {
	t.Helper()
	var groups []*robots.RuleGroup
	for group := range it.All() {
		groups = append(groups, group)
	}
	require.NoError(t, it.Err())
	return groups
}

func TestParse_GroupsAccumulateAgents(t *testing.T) {
	body := `User-agent: Fetchbot
User-agent: OtherBot
Disallow: /private

User-agent: *
Allow: /
`
	groups := collectGroups(t, parseString(body))

	require.Len(t, groups, 2)
	assert.Equal(t, []string{"Fetchbot", "OtherBot"}, groups[0].Agents())
	assert.Equal(t, []robots.PathRule{{Directive: robots.Disallow, Pattern: "/private"}}, groups[0].Rules())
	assert.Equal(t, []string{"*"}, groups[1].Agents())
	assert.Equal(t, []robots.PathRule{{Directive: robots.Allow, Pattern: "/"}}, groups[1].Rules())
}

func TestParse_UserAgentAfterRulesStartsNewGroup(t *testing.T) {
	body := `User-agent: a
Disallow: /x
User-agent: b
Disallow: /y
User-agent: c
`
	groups := collectGroups(t, parseString(body))

	require.Len(t, groups, 3)
	assert.Equal(t, []string{"a"}, groups[0].Agents())
	assert.Equal(t, []string{"b"}, groups[1].Agents())
	assert.Equal(t, []string{"c"}, groups[2].Agents())
	assert.Empty(t, groups[2].Rules())
}

func TestParse_LineHandling(t *testing.T) {
	body := "# leading comment\n" +
		"\n" +
		"  USER-AGENT :   Fetchbot   # trailing comment\n" +
		"this line has no colon\n" +
		"Unknown-Field: ignored\n" +
		"disallow: /a # note\n" +
		"ALLOW:/a/b\n"

	groups := collectGroups(t, parseString(body))

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"Fetchbot"}, groups[0].Agents())
	assert.Equal(t, []robots.PathRule{
		{Directive: robots.Disallow, Pattern: "/a"},
		{Directive: robots.Allow, Pattern: "/a/b"},
	}, groups[0].Rules())
}

func TestParse_UnknownFieldDoesNotCloseAgentRun(t *testing.T) {
	body := `User-agent: a
Host: example.com
User-agent: b
Disallow: /
`
	groups := collectGroups(t, parseString(body))

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"a", "b"}, groups[0].Agents())
}

func TestParse_EmptyDisallowProducesNoRule(t *testing.T) {
	body := `User-agent: *
Disallow:
`
	groups := collectGroups(t, parseString(body))

	require.Len(t, groups, 1)
	assert.Empty(t, groups[0].Rules())
	assert.True(t, groups[0].Allows("/anything"))
}

func TestParse_EmptyDisallowStillClosesAgentRun(t *testing.T) {
	body := `User-agent: a
Disallow:
User-agent: b
Disallow: /
`
	groups := collectGroups(t, parseString(body))

	require.Len(t, groups, 2)
	assert.Equal(t, []string{"a"}, groups[0].Agents())
	assert.Equal(t, []string{"b"}, groups[1].Agents())
}

func TestParse_PatternWithoutLeadingSlash(t *testing.T) {
	groups := collectGroups(t, parseString("User-agent: *\nDisallow: private\nDisallow: *.gif$\n"))

	require.Len(t, groups, 1)
	assert.Equal(t, []robots.PathRule{
		{Directive: robots.Disallow, Pattern: "/private"},
		{Directive: robots.Disallow, Pattern: "*.gif$"},
	}, groups[0].Rules())
}

func TestParse_PatternIsPercentEncoded(t *testing.T) {
	groups := collectGroups(t, parseString("User-agent: *\nDisallow: /café\nDisallow: /a%2fb\nAllow: /*ü$\nDisallow: /100%\n"))

	require.Len(t, groups, 1)
	assert.Equal(t, []robots.PathRule{
		{Directive: robots.Disallow, Pattern: "/caf%C3%A9"},
		{Directive: robots.Disallow, Pattern: "/a%2Fb"},
		{Directive: robots.Allow, Pattern: "/*%C3%BC$"},
		{Directive: robots.Disallow, Pattern: "/100%25"},
	}, groups[0].Rules())
}

func TestParse_CrawlDelay(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected int
		declared bool
	}{
		{name: "integer", value: "10", expected: 10, declared: true},
		{name: "fraction truncated", value: "2.9", expected: 2, declared: true},
		{name: "zero", value: "0", expected: 0, declared: true},
		{name: "negative ignored", value: "-3", expected: 0, declared: false},
		{name: "non numeric ignored", value: "soon", expected: 0, declared: false},
		{name: "empty ignored", value: "", expected: 0, declared: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groups := collectGroups(t, parseString("User-agent: *\nCrawl-delay: "+tt.value+"\n"))
			require.Len(t, groups, 1)
			assert.Equal(t, tt.expected, groups[0].CrawlDelay())
			assert.Equal(t, tt.declared, groups[0].HasCrawlDelay())
		})
	}
}

func TestParse_CrawlDelayLastValueWins(t *testing.T) {
	groups := collectGroups(t, parseString("User-agent: *\nCrawl-delay: 1\nCrawl-delay: 4\n"))
	require.Len(t, groups, 1)
	assert.Equal(t, 4, groups[0].CrawlDelay())
}

func TestParse_DefaultIsFirstWildcardGroup(t *testing.T) {
	body := `Disallow: /agentless

User-agent: Fetchbot
Disallow: /fetchbot

User-agent: *
Disallow: /first-wildcard

User-agent: *
Disallow: /second-wildcard
`
	it := parseString(body)
	def := it.Default()

	require.NotNil(t, def)
	assert.Equal(t, []robots.PathRule{{Directive: robots.Disallow, Pattern: "/first-wildcard"}}, def.Rules())
	assert.False(t, it.Next(), "Default must drain the declaration")
}

func TestParse_DefaultFallsBackToAgentlessGroup(t *testing.T) {
	body := `Disallow: /agentless
Crawl-delay: 3

User-agent: Fetchbot
Disallow: /fetchbot
`
	it := parseString(body)
	def := it.Default()

	require.NotNil(t, def)
	assert.Empty(t, def.Agents())
	assert.False(t, def.Allows("/agentless/page"))
	assert.Equal(t, 3, def.CrawlDelay())
}

func TestParse_AgentlessGroupIsNotYielded(t *testing.T) {
	groups := collectGroups(t, parseString("Disallow: /a\nUser-agent: b\nDisallow: /b\n"))

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"b"}, groups[0].Agents())
}

func TestParse_NoDefault(t *testing.T) {
	it := parseString("User-agent: Fetchbot\nDisallow: /\n")
	assert.Nil(t, it.Default())
}

func TestParse_EmptyDeclaration(t *testing.T) {
	it := parseString("")
	assert.False(t, it.Next())
	assert.Nil(t, it.Group())
	assert.Nil(t, it.Default())
	assert.NoError(t, it.Err())
}

func TestParse_Sitemaps(t *testing.T) {
	body := `Sitemap: https://example.com/sitemap.xml
User-agent: *
Disallow: /private
Sitemap: https://example.com/news.xml
`
	it := parseString(body)
	groups := collectGroups(t, it)

	require.Len(t, groups, 1)
	assert.Equal(t, []string{
		"https://example.com/sitemap.xml",
		"https://example.com/news.xml",
	}, it.Sitemaps())
	assert.Equal(t, []robots.PathRule{{Directive: robots.Disallow, Pattern: "/private"}}, groups[0].Rules())
}

func TestParse_ByteOrderMark(t *testing.T) {
	groups := collectGroups(t, parseString("\ufeffUser-agent: *\nDisallow: /x\n"))

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"*"}, groups[0].Agents())
}

func TestParse_ClosesStreamWhenExhausted(t *testing.T) {
	stream := trackedStream("User-agent: *\nDisallow: /\n")
	it := robots.Parse(stream)

	for it.Next() {
	}

	assert.True(t, stream.closed.Load())
}

func TestParse_BreakingOutOfAllClosesStream(t *testing.T) {
	stream := trackedStream("User-agent: a\nDisallow: /a\nUser-agent: b\nDisallow: /b\n")
	it := robots.Parse(stream)

	for range it.All() {
		break
	}

	assert.True(t, stream.closed.Load())
	assert.False(t, it.Next())
}

func TestParse_CloseIsIdempotent(t *testing.T) {
	it := robots.Parse(trackedStream("User-agent: a\nDisallow: /a\n"))

	assert.NoError(t, it.Close())
	assert.NoError(t, it.Close())
	assert.False(t, it.Next())
}

func TestParse_OverlongLineEndsWithError(t *testing.T) {
	body := "User-agent: a\nDisallow: /a\nDisallow: /" + strings.Repeat("x", 600*1024) + "\n"
	it := parseString(body)

	require.True(t, it.Next())
	group := it.Group()
	assert.Equal(t, []string{"a"}, group.Agents())
	assert.Equal(t, []robots.PathRule{{Directive: robots.Disallow, Pattern: "/a"}}, group.Rules())
	assert.False(t, it.Next())
	assert.Error(t, it.Err())
}

func TestParse_Idempotent(t *testing.T) {
	body := `User-agent: Fetchbot
Allow: /dir/sub
Disallow: /dir
Crawl-delay: 2

User-agent: *
Disallow: /*.php$
`
	paths := []string{"/", "/dir", "/dir/sub/file", "/dir/other", "/index.php", "/index.php?x", "/index.phpx"}

	first := collectGroups(t, parseString(body))
	second := collectGroups(t, parseString(body))

	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].Agents(), second[i].Agents())
		assert.Equal(t, first[i].CrawlDelay(), second[i].CrawlDelay())
		for _, path := range paths {
			assert.Equal(t, first[i].Allows(path), second[i].Allows(path), "group %d path %s", i, path)
		}
	}
}
