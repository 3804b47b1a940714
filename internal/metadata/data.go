package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, metrics, reporting).

	Rules:
	 - ErrorCause is for observability only.
	 - It must never be used to derive retry, fallback, or allow/deny decisions.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown

Meaning:
  - The failure does not map cleanly to any known category.

# CauseNetworkFailure

Meaning:
  - Failure caused by network transport or remote availability.

Examples:
  - DNS resolution failures
  - Connection resets
  - robots.txt answered with a non-2xx status

# CausePolicyDisallow

Meaning:
  - A request was refused by an explicit rule.

Examples:
  - URL scheme outside http/https

# CauseContentInvalid

Meaning:
  - Content was fetched but could not be processed meaningfully.

Examples:
  - robots.txt line exceeding the scanner buffer

# CauseStorageFailure

Meaning:
  - Failure while persisting or reading a cached declaration.

Examples:
  - Disk full
  - Write permission errors
  - Rename failures
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CausePolicyDisallow
	CauseContentInvalid
	CauseStorageFailure
)

func (c ErrorCause) String() string {
	switch c {
	case CauseNetworkFailure:
		return "network_failure"
	case CausePolicyDisallow:
		return "policy_disallow"
	case CauseContentInvalid:
		return "content_invalid"
	case CauseStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

type ArtifactKind string

const (
	// ArtifactDeclaration is a robots.txt body persisted to the declaration cache.
	ArtifactDeclaration ArtifactKind = "declaration"
)

type Attribute struct {
	Key   AttributeKey
	Value string
}

func NewAttr(key AttributeKey, val string) Attribute {
	return Attribute{
		Key:   key,
		Value: val,
	}
}

type AttributeKey string

const (
	AttrURL         AttributeKey = "url"
	AttrHost        AttributeKey = "host"
	AttrPath        AttributeKey = "path"
	AttrAgent       AttributeKey = "agent"
	AttrCacheKey    AttributeKey = "cache_key"
	AttrContentHash AttributeKey = "content_hash"
	AttrBytes       AttributeKey = "bytes"
	AttrWritePath   AttributeKey = "write_path"
)
