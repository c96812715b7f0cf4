package bleve

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/analysis/lang/fi"
	"github.com/blevesearch/bleve/v2/analysis/lang/sv"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/kailas-cloud/marketindex/internal/db"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable"
	"github.com/kailas-cloud/marketindex/internal/domain/indexable/field"
)

// analyzers maps locale analyzer names onto registered bleve analyzers.
var analyzers = map[string]string{
	"":   standard.Name,
	"fi": fi.AnalyzerName,
	"sv": sv.AnalyzerName,
	"en": en.AnalyzerName,
}

// analyzerFor falls back to the standard analyzer for languages bleve has no stemmer for.
func analyzerFor(name string) string {
	if a, ok := analyzers[name]; ok {
		return a
	}
	return standard.Name
}

// buildMapping turns a definition into a static mapping: unmapped attributes are ignored.
func buildMapping(def *db.IndexDefinition) (*mapping.IndexMappingImpl, error) {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentStaticMapping()
	for i := range def.Fields {
		f := &def.Fields[i]
		dm.AddFieldMappingsAt(f.Name, fieldMapping(f))
	}
	im.DefaultMapping = dm

	if err := im.Validate(); err != nil {
		return nil, err
	}
	return im, nil
}

func fieldMapping(f *db.IndexField) *mapping.FieldMapping {
	var fm *mapping.FieldMapping
	switch f.Type {
	case db.IndexFieldText:
		fm = bleve.NewTextFieldMapping()
		fm.Analyzer = analyzerFor(f.Analyzer)
		fm.IncludeInAll = true
	case db.IndexFieldTag:
		fm = bleve.NewKeywordFieldMapping()
		fm.Analyzer = keyword.Name
		fm.IncludeInAll = false
	case db.IndexFieldNumeric:
		fm = bleve.NewNumericFieldMapping()
		fm.IncludeInAll = false
	case db.IndexFieldDate:
		fm = bleve.NewDateTimeFieldMapping()
		fm.IncludeInAll = false
	case db.IndexFieldBool:
		fm = bleve.NewBooleanFieldMapping()
		fm.IncludeInAll = false
	case db.IndexFieldGeo:
		fm = bleve.NewGeoPointFieldMapping()
		fm.IncludeInAll = false
	default:
		fm = bleve.NewTextFieldMapping()
	}
	fm.Index = !f.NoIndex
	fm.Store = f.Sortable
	// distance filtering reads the exact point back from doc values
	fm.DocValues = f.Sortable || f.Type == db.IndexFieldGeo
	fm.IncludeTermVectors = false
	return fm
}

// toDocument converts typed values into the map bleve walks when indexing.
func toDocument(values []indexable.Value) map[string]any {
	doc := make(map[string]any, len(values))
	for _, v := range values {
		switch v.Kind {
		case field.Text:
			doc[v.Name] = v.Text
		case field.Keyword:
			doc[v.Name] = v.Keywords
		case field.Long:
			doc[v.Name] = float64(v.Long)
		case field.Date:
			doc[v.Name] = v.Time
		case field.Boolean:
			doc[v.Name] = v.Bool
		case field.GeoPoint:
			doc[v.Name] = map[string]any{"lat": v.Geo.Lat, "lon": v.Geo.Lon}
		}
	}
	return doc
}
