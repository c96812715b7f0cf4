package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable/field"
)

// Put replaces the hash of id in one MULTI/EXEC so readers never see a merged document.
func (s *Store) Put(ctx context.Context, index, id string, values []indexable.Value) error {
	if index == "" || id == "" {
		return fmt.Errorf("index and id are required")
	}
	key := keyOf(index, id)

	fields := encodeValues(values)
	cmds := make([]rueidis.Completed, 0, 4)
	cmds = append(cmds, s.b().Multi().Build())
	cmds = append(cmds, s.b().Del().Key(key).Build())
	if len(fields) > 0 {
		hset := s.b().Hset().Key(key).FieldValue()
		for _, f := range fields {
			hset = hset.FieldValue(f[0], f[1])
		}
		cmds = append(cmds, hset.Build())
	}
	cmds = append(cmds, s.b().Exec().Build())

	results := s.client.DoMulti(ctx, cmds...)
	for _, res := range results {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpPut, Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}

	// queued commands fail inside the EXEC reply, not on their own result
	replies, err := results[len(results)-1].ToArray()
	if err != nil {
		return &db.Error{Op: db.OpPut, Err: fmt.Errorf("key %s: exec: %w", key, err)}
	}
	for _, r := range replies {
		if err := r.Error(); err != nil {
			return &db.Error{Op: db.OpPut, Err: fmt.Errorf("key %s: %w", key, err)}
		}
	}
	return nil
}

// Delete removes the hash of id; a missing key is not an error.
func (s *Store) Delete(ctx context.Context, index, id string) error {
	cmd := s.b().Del().Key(keyOf(index, id)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// encodeValues renders values as hash field pairs in value order.
//
//	keyword  -> tags joined by ","
//	long     -> decimal
//	date     -> epoch milliseconds
//	boolean  -> "true" / "false"
//	geo      -> "lon,lat"
func encodeValues(values []indexable.Value) [][2]string {
	out := make([][2]string, 0, len(values))
	for _, v := range values {
		out = append(out, [2]string{v.Name, encodeValue(v)})
	}
	return out
}

func encodeValue(v indexable.Value) string {
	switch v.Kind {
	case field.Text:
		return v.Text
	case field.Keyword:
		return strings.Join(v.Keywords, db.TagSeparator)
	case field.Long:
		return strconv.FormatInt(v.Long, 10)
	case field.Date:
		return strconv.FormatInt(v.Time.UnixMilli(), 10)
	case field.Boolean:
		return strconv.FormatBool(v.Bool)
	case field.GeoPoint:
		return formatFloat(v.Geo.Lon) + "," + formatFloat(v.Geo.Lat)
	}
	return ""
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
