package chi

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/search/request"
)

// parseSearch maps query parameters onto a search request.
// lat, lon and radius_km go together; any one alone is a bad request.
func parseSearch(t indexable.Type, q url.Values, defaultLimit int) (request.Request, error) {
	crit := request.Criteria{
		ParentID:    q.Get("parent"),
		Slug:        q.Get("slug"),
		CategoryIDs: q["category"],
		SellerID:    q.Get("seller"),
		LocationID:  q.Get("location"),
	}

	near, err := parseNear(q)
	if err != nil {
		return request.Request{}, err
	}
	crit.Near = near

	offset, err := intParam(q, "offset", 0)
	if err != nil {
		return request.Request{}, err
	}
	limit, err := intParam(q, "limit", defaultLimit)
	if err != nil {
		return request.Request{}, err
	}

	return request.New(t,
		request.WithText(q.Get("q")),
		request.WithCriteria(crit),
		request.WithSort(q["sort"]...),
		request.WithOffset(offset),
		request.WithLimit(limit),
	)
}

func parseNear(q url.Values) (*request.Near, error) {
	lat, lon, radius := q.Get("lat"), q.Get("lon"), q.Get("radius_km")
	if lat == "" && lon == "" && radius == "" {
		return nil, nil
	}
	if lat == "" || lon == "" || radius == "" {
		return nil, fmt.Errorf("lat, lon and radius_km must be given together")
	}
	var n request.Near
	var err error
	if n.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
		return nil, fmt.Errorf("lat: %w", err)
	}
	if n.Lon, err = strconv.ParseFloat(lon, 64); err != nil {
		return nil, fmt.Errorf("lon: %w", err)
	}
	if n.RadiusKm, err = strconv.ParseFloat(radius, 64); err != nil {
		return nil, fmt.Errorf("radius_km: %w", err)
	}
	return &n, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return n, nil
}
