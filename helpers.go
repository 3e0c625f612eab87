package blogfs

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/araddon/dateparse"
	stripmd "github.com/writeas/go-strip-markdown"
)

const (
	moreMarker    = "<!--more-->"
	maxSummaryLen = 300
)

// BuildURL joins a base URL with path segments, ensuring a trailing slash.
func BuildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// parseDate interprets a metadata date. Strings go through dateparse;
// numbers are unix seconds.
func parseDate(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := dateparse.ParseAny(strings.TrimSpace(t))
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	case float64:
		return time.Unix(int64(t), 0).UTC(), true
	case int:
		return time.Unix(int64(t), 0).UTC(), true
	case int64:
		return time.Unix(t, 0).UTC(), true
	default:
		return time.Time{}, false
	}
}

func dateString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// newerThan orders dates descending. Parseable dates compare as instants
// and sort before unparseable ones, which compare by their string forms.
func newerThan(a, b interface{}) bool {
	ta, okA := parseDate(a)
	tb, okB := parseDate(b)
	switch {
	case okA && okB:
		return ta.After(tb)
	case okA != okB:
		return okA
	}
	return dateString(a) > dateString(b)
}

// summarize picks a plain-text summary for a blog: the metadata summary
// or description, the text before the more marker, or the first
// maxSummaryLen runes of the body.
func summarize(meta Metadata, content string) string {
	if s := meta.Summary(); s != "" {
		return s
	}
	if before, _, found := strings.Cut(content, moreMarker); found {
		return strings.TrimSpace(stripmd.Strip(before))
	}
	return truncate(strings.TrimSpace(stripmd.Strip(content)), maxSummaryLen)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "…"
}
