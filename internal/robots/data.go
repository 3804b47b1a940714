package robots

import (
	"net/url"
	"time"
)

type DecisionReason string

const (
	AllowedByRobots     DecisionReason = "allowed_by_robots"
	DisallowedByRobots  DecisionReason = "disallowed_by_robots"
	UserAgentNotMatched DecisionReason = "user_agent_not_matched"
	NoDeclaration       DecisionReason = "no_declaration"
	UnsupportedScheme   DecisionReason = "unsupported_scheme"
	DeclarationResource DecisionReason = "declaration_resource"
)

type Decision struct {
	Url url.URL

	Allowed bool

	// Why this decision was made (for logging/debugging)
	Reason DecisionReason

	// Crawl-delay declared by the selected group, nil when none was declared
	CrawlDelay *time.Duration
}
