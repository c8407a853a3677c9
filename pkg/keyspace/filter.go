package keyspace

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/aretw0/redistore/pkg/domain"
)

// ExpiredEvent is the keyspace notification payload sent when a key's TTL elapses.
const ExpiredEvent = "expired"

var expiredPayload = []byte(ExpiredEvent)

// Filter decides whether a pattern-subscription message is a genuine
// "expired" notification for one channel pattern and extracts the key
// matched by the pattern's wildcard.
type Filter struct {
	pattern string
	re      *regexp.Regexp
}

// NewFilter compiles a channel pattern holding exactly one '*' wildcard,
// e.g. "__keyspace@0__:users:*:trigger".
func NewFilter(pattern string) (*Filter, error) {
	if pattern == "" {
		return nil, &domain.ConfigError{Field: "keyspace", Reason: "pattern is required"}
	}
	if n := strings.Count(pattern, "*"); n != 1 {
		return nil, &domain.ConfigError{Field: "keyspace", Reason: "pattern must contain exactly one '*' wildcard"}
	}

	before, after, _ := strings.Cut(pattern, "*")
	re, err := regexp.Compile("^" + regexp.QuoteMeta(before) + "(.*)" + regexp.QuoteMeta(after) + "$")
	if err != nil {
		return nil, &domain.ConfigError{Field: "keyspace", Reason: err.Error()}
	}

	return &Filter{pattern: pattern, re: re}, nil
}

// Pattern returns the channel pattern the filter was compiled from.
func (f *Filter) Pattern() string {
	return f.pattern
}

// Match returns the captured key when payload is exactly "expired" and the
// message was delivered for this filter's pattern.
func (f *Filter) Match(pattern, channel string, payload []byte) (string, bool) {
	if !bytes.Equal(payload, expiredPayload) || pattern != f.pattern {
		return "", false
	}

	m := f.re.FindStringSubmatch(channel)
	if len(m) != 2 || m[1] == "" {
		return "", false
	}
	return m[1], true
}
