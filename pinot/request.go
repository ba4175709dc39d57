package pinot

import (
	"strconv"
	"strings"
)

// Request is a single SQL query sent to a broker.
type Request struct {
	sql                 string
	trace               bool
	useMultistageEngine bool
	timeoutMs           int
}

// queryOptions renders the broker queryOptions string, e.g. "timeoutMs=500;useMultistageEngine=true".
func (r *Request) queryOptions() string {
	options := []string{"groupByMode=sql", "responseFormat=sql"}
	if r.timeoutMs > 0 {
		options = append(options, "timeoutMs="+strconv.Itoa(r.timeoutMs))
	}
	if r.useMultistageEngine {
		options = append(options, "useMultistageEngine=true")
	}
	return strings.Join(options, ";")
}

func (r *Request) body() map[string]string {
	body := map[string]string{
		"sql":          r.sql,
		"queryOptions": r.queryOptions(),
	}
	if r.trace {
		body["trace"] = "true"
	}
	return body
}
