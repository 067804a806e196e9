package metadata

/*
	ErrorCause is a closed, canonical classification used exclusively for
	observability (logging, reporting).

	Rules:
	 - ErrorCause MUST NOT influence control flow.
	 - ErrorCause values MUST have stable, package-agnostic semantics.
	 - Packages MAY map their local errors to ErrorCause,
	   but MUST NOT invent new meanings.

If a failure does not clearly match a defined cause, CauseUnknown MUST be used.
*/
type ErrorCause int

/*
Canonical ErrorCause Table

# CauseUnknown
  - Unexpected internal errors, recovered panics

# CauseNetworkFailure
  - TCP timeouts, DNS resolution failures, connection refused

# CauseContentInvalid
  - Non-HTML responses, unparsable documents

# CauseStorageFailure
  - Report or run-history write failures

# CauseAnalyzerFailure
  - A page analyzer returned an error
*/
const (
	CauseUnknown ErrorCause = iota
	CauseNetworkFailure
	CauseContentInvalid
	CauseStorageFailure
	CauseAnalyzerFailure
)

var causeNames = map[ErrorCause]string{
	CauseUnknown:         "unknown",
	CauseNetworkFailure:  "network_failure",
	CauseContentInvalid:  "content_invalid",
	CauseStorageFailure:  "storage_failure",
	CauseAnalyzerFailure: "analyzer_failure",
}

func (c ErrorCause) String() string {
	if name, ok := causeNames[c]; ok {
		return name
	}
	return causeNames[CauseUnknown]
}

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
	AttrURL        AttributeKey = "url"
	AttrHost       AttributeKey = "host"
	AttrDepth      AttributeKey = "depth"
	AttrHTTPStatus AttributeKey = "http_status"
	AttrAnalyzer   AttributeKey = "analyzer"
	AttrSession    AttributeKey = "session"
	AttrWritePath  AttributeKey = "write_path"
)

// RunStats is the terminal summary of one session run.
type RunStats struct {
	TotalURLs      int
	TotalTestCases int
	Passed         int
	Failed         int
	TransportErrs  int
	AnalyzerErrs   int
}
