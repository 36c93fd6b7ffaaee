package api

import (
	"net/url"
	"strings"
	"time"
)

type Op string

const (
	OpEq  Op = "=="
	OpGte Op = ">="
	OpLt  Op = "<"
)

// Filter is one listing constraint, rendered as filters=field:op:value.
type Filter struct {
	Field string
	Op    Op
	Value string
}

func Eq(field, value string) Filter { return Filter{Field: field, Op: OpEq, Value: value} }

func Since(field string, t time.Time) Filter {
	return Filter{Field: field, Op: OpGte, Value: isoTime(t)}
}

func Before(field string, t time.Time) Filter {
	return Filter{Field: field, Op: OpLt, Value: isoTime(t)}
}

func (f Filter) String() string {
	return "filters=" + f.Field + ":" + string(f.Op) + ":" + url.QueryEscape(f.Value)
}

type Filters []Filter

// Encode joins the filters with '&'. Values are query-escaped; the backend
// splits the decoded parameter on ':' and parses them itself.
func (fs Filters) Encode() string {
	parts := make([]string, 0, len(fs))
	for _, f := range fs {
		parts = append(parts, f.String())
	}
	return strings.Join(parts, "&")
}

// isoTime matches the millisecond UTC form browsers emit for toISOString.
func isoTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
