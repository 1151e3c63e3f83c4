package report

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	cellPolicyOnce sync.Once
	cellPolicy     *bluemonday.Policy
)

// clean strips markup from a dataset-derived string before it reaches a
// template. Cell values and test messages are untrusted input; the report
// only ever renders them as text.
func clean(raw string) string {
	cellPolicyOnce.Do(func() {
		cellPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(cellPolicy.Sanitize(raw))
}

func cleanAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = clean(v)
	}
	return out
}
