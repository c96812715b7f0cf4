package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/search/filter"
	"github.com/kailas-cloud/marketindex/internal/domain/search/sortkey"
)

// Search runs q against its index.
// FT.SEARCH accepts a single SORTBY on a schema field, so multi-clause orderings, id
// ordering and ascending relevance go through FT.AGGREGATE, with a LIMIT 0 0 FT.SEARCH
// pipelined alongside for the exact total.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	query := buildQuery(q.Text, q.Filters)
	if needsAggregate(q.Sort) {
		return s.aggregate(ctx, q, query)
	}
	return s.search(ctx, q, query)
}

func needsAggregate(clauses []sortkey.Clause) bool {
	if len(clauses) > 1 {
		return true
	}
	return len(clauses) == 1 && (clauses[0].ID || clauses[0].Relevance && !clauses[0].Desc)
}

func (s *Store) search(ctx context.Context, q *db.Query, query string) (*db.SearchResult, error) {
	args := []string{q.Index, query, "NOCONTENT", "WITHSCORES"}
	if len(q.Sort) == 1 && !q.Sort[0].Relevance {
		args = append(args, "SORTBY", q.Sort[0].Field, direction(q.Sort[0].Desc))
	}
	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, searchError(db.OpSearch, err)
	}
	return parseSearchResult(q.Index, raw)
}

func (s *Store) aggregate(ctx context.Context, q *db.Query, query string) (*db.SearchResult, error) {
	args := []string{q.Index, query, "ADDSCORES", "LOAD", "1", "@__key"}

	sortArgs := make([]string, 0, 2*len(q.Sort))
	for _, c := range q.Sort {
		var name string
		switch {
		case c.Relevance:
			name = "@__score"
		case c.ID:
			name = "@__key"
		default:
			name = "@" + c.Field
		}
		sortArgs = append(sortArgs, name, direction(c.Desc))
	}
	args = append(args, "SORTBY", strconv.Itoa(len(sortArgs)))
	args = append(args, sortArgs...)
	args = append(args,
		"LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	)

	agg := s.b().Arbitrary("FT.AGGREGATE").Args(args...).Build()
	count := s.b().Arbitrary("FT.SEARCH").Args(q.Index, query, "LIMIT", "0", "0", "DIALECT", "2").Build()

	results := s.client.DoMulti(ctx, agg, count)

	rows, err := results[0].ToArray()
	if err != nil {
		return nil, searchError(db.OpAggregate, err)
	}
	countRaw, err := results[1].ToArray()
	if err != nil {
		return nil, searchError(db.OpSearch, err)
	}

	total, err := parseTotal(countRaw)
	if err != nil {
		return nil, err
	}
	entries := parseAggregateRows(q.Index, rows)
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

// searchError classifies engine rejections so callers can tell bad input from outages.
func searchError(op string, err error) error {
	switch {
	case isRedisErr(err, "syntax error"):
		return &db.Error{Op: op, Err: errors.Join(db.ErrQuerySyntax, err)}
	case isUnknownIndex(err):
		return &db.Error{Op: op, Err: errors.Join(db.ErrIndexNotFound, err)}
	}
	return &db.Error{Op: op, Err: err}
}

// --- Result parsing ---

func parseTotal(raw []rueidis.RedisMessage) (int, error) {
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, fmt.Errorf("parse total: %w", err)
	}
	return int(total), nil
}

// parseSearchResult reads NOCONTENT WITHSCORES replies: [total, key1, score1, key2, score2, ...].
func parseSearchResult(index string, raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	total, err := parseTotal(raw)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return &db.SearchResult{}, nil
	}

	entries := make([]db.SearchEntry, 0, (len(raw)-1)/2)
	for i := 1; i+1 < len(raw); i += 2 {
		key, err := raw[i].ToString()
		if err != nil {
			continue
		}
		entry := db.SearchEntry{ID: idOf(index, key)}
		if scoreStr, err := raw[i+1].ToString(); err == nil {
			entry.Score, _ = strconv.ParseFloat(scoreStr, 64)
		}
		entries = append(entries, entry)
	}

	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// parseAggregateRows reads FT.AGGREGATE replies: [n, [field, value, ...], ...].
func parseAggregateRows(index string, raw []rueidis.RedisMessage) []db.SearchEntry {
	if len(raw) <= 1 {
		return nil
	}
	entries := make([]db.SearchEntry, 0, len(raw)-1)
	for _, row := range raw[1:] {
		fields, err := row.ToArray()
		if err != nil {
			continue
		}
		m := parseFieldPairs(fields)
		key, ok := m["__key"]
		if !ok {
			continue
		}
		entry := db.SearchEntry{ID: idOf(index, key)}
		if s, ok := m["__score"]; ok {
			entry.Score, _ = strconv.ParseFloat(s, 64)
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

func idOf(index, key string) string {
	return strings.TrimPrefix(key, keyOf(index, ""))
}

// --- Query building ---

// buildQuery combines filters and free text. Nothing to match yields "*".
func buildQuery(text string, expr filter.Expression) string {
	parts := make([]string, 0, len(expr.Must())+1)
	for _, cond := range expr.Must() {
		if c := buildCondition(cond); c != "" {
			parts = append(parts, c)
		}
	}
	if t := strings.TrimSpace(text); t != "" {
		parts = append(parts, "("+t+")")
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

func buildCondition(cond filter.Condition) string {
	if cond.IsMatch() {
		return buildTagFilter(cond.Key(), cond.Values())
	}
	if cond.IsGeo() {
		return buildGeoFilter(cond.Key(), *cond.Geo())
	}
	return ""
}

func buildTagFilter(key string, values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return fmt.Sprintf("@%s:{%s}", key, strings.Join(escaped, " | "))
}

func buildGeoFilter(key string, g filter.Geo) string {
	return fmt.Sprintf("@%s:[%s %s %s km]", key, formatFloat(g.Lon()), formatFloat(g.Lat()), formatFloat(g.RadiusKm()))
}

var tagEscaper = strings.NewReplacer(
	`\`, `\\`,
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"[", "\\[",
	"]", "\\]",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)
