package result

// Result is an ordered page of matching ids plus the total hit count.
// Total counts every match, not just the returned page.
type Result struct {
	ids   []string
	total int
}

// New creates a search result.
func New(ids []string, total int) Result {
	if ids == nil {
		ids = []string{}
	}
	return Result{ids: ids, total: total}
}

// Empty returns a result with no hits.
func Empty() Result { return New(nil, 0) }

// IDs returns the matching ids in engine order.
func (r *Result) IDs() []string { return r.ids }

// Total returns the number of matches across all pages.
func (r *Result) Total() int { return r.total }

// Len returns the number of ids on this page.
func (r *Result) Len() int { return len(r.ids) }
