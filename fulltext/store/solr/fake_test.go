package solr

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/metadata"
)

// fakeSolr emulates the subset of the Solr HTTP API used by SolrIndexer.
type fakeSolr struct {
	mu         sync.Mutex
	docs       map[string]map[string]interface{}
	fields     []string
	bodies     []string
	updateURLs []string
	failMsg    string

	// When set, key range filters are ignored so every page repeats.
	ignoreAfter bool
}

func newFakeSolr(fields ...string) *fakeSolr {
	return &fakeSolr{docs: make(map[string]map[string]interface{}), fields: fields}
}

// fakeQuery is the part of a JSON request API body the fake understands.
type fakeQuery struct {
	Query  string   `json:"query"`
	Filter []string `json:"filter"`
	Sort   string   `json:"sort"`
	Limit  int      `json:"limit"`
	Fields []string `json:"fields"`
}

func (f *fakeSolr) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failMsg != "" {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"responseHeader": map[string]interface{}{"status": 500},
			"error":          map[string]interface{}{"code": 500, "msg": f.failMsg},
		})
		return
	}

	header := map[string]interface{}{"status": 0}
	var res map[string]interface{}
	switch {
	case strings.HasSuffix(r.URL.Path, "/solr/fulltext/schema/fields"):
		var fields []map[string]string
		for _, name := range f.fields {
			fields = append(fields, map[string]string{"name": name})
		}
		res = map[string]interface{}{"responseHeader": header, "fields": fields}
	case strings.HasSuffix(r.URL.Path, "/solr/fulltext/update"):
		body, _ := io.ReadAll(r.Body)
		f.bodies = append(f.bodies, strings.TrimSpace(string(body)))
		f.updateURLs = append(f.updateURLs, r.URL.RawQuery)
		f.applyUpdate(body)
		res = map[string]interface{}{"responseHeader": header}
	case strings.HasSuffix(r.URL.Path, "/solr/fulltext/query"):
		var q fakeQuery
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		numFound, docs := f.runQuery(q)
		res = map[string]interface{}{
			"responseHeader": header,
			"response":       map[string]interface{}{"numFound": numFound, "docs": docs},
		}
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(res)
}

func (f *fakeSolr) applyUpdate(body []byte) {
	var cmd struct {
		Delete json.RawMessage `json:"delete"`
	}
	if json.Unmarshal(body, &cmd) == nil && cmd.Delete != nil {
		var keys []string
		if json.Unmarshal(cmd.Delete, &keys) != nil {
			// Delete by query; the fake only supports *:*.
			keys = keys[:0]
			for key := range f.docs {
				keys = append(keys, key)
			}
		}
		for _, key := range keys {
			delete(f.docs, key)
		}
		return
	}

	var docs []map[string]interface{}
	_ = json.Unmarshal(body, &docs)
	for _, in := range docs {
		key := in[index.FieldKey].(string)
		doc := f.docs[key]
		if doc == nil {
			doc = map[string]interface{}{index.FieldKey: key}
			f.docs[key] = doc
		}

		for name, v := range in {
			if op, isOp := v.(map[string]interface{}); isOp {
				v = op["set"]
			}
			if index.IsEmptyValue(v) {
				delete(doc, name)
				continue
			}
			doc[name] = v
		}
	}
}

func (f *fakeSolr) runQuery(q fakeQuery) (int, []map[string]interface{}) {
	var matched []map[string]interface{}
	for key, doc := range f.docs {
		if f.matches(q, key, doc) {
			matched = append(matched, doc)
		}
	}

	sortField := strings.Fields(q.Sort + " " + index.FieldKey)[0]
	desc := strings.HasSuffix(q.Sort, " desc")
	sort.Slice(matched, func(i, j int) bool {
		if sortField == index.FieldKey {
			ki, kj := matched[i][index.FieldKey].(string), matched[j][index.FieldKey].(string)
			return (ki < kj) != desc
		}
		ti, _ := metadata.ParseTimestamp(matched[i][sortField])
		tj, _ := metadata.ParseTimestamp(matched[j][sortField])
		return ti.Before(tj) != desc
	})

	numFound := len(matched)
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}

	out := make([]map[string]interface{}, 0, len(matched))
	for _, doc := range matched {
		if len(q.Fields) == 0 {
			out = append(out, doc)
			continue
		}
		projected := make(map[string]interface{})
		for _, name := range q.Fields {
			if v, found := doc[name]; found {
				projected[name] = v
			}
		}
		out = append(out, projected)
	}
	return numFound, out
}

func (f *fakeSolr) matches(q fakeQuery, key string, doc map[string]interface{}) bool {
	if field := strings.TrimSuffix(q.Query, ":[* TO *]"); field != q.Query {
		if _, found := doc[field]; !found {
			return false
		}
	}

	termPrefix := "{!term f=" + index.FieldKey + "}"
	afterPrefix := index.FieldKey + ":{"
	for _, fq := range q.Filter {
		switch {
		case strings.HasPrefix(fq, termPrefix):
			if key != strings.TrimPrefix(fq, termPrefix) {
				return false
			}
		case strings.HasPrefix(fq, afterPrefix) && !f.ignoreAfter:
			after := unescapeQuery(strings.TrimSuffix(strings.TrimPrefix(fq, afterPrefix), " TO *]"))
			if key <= after {
				return false
			}
		}
	}
	return true
}

func unescapeQuery(s string) string {
	var sb strings.Builder
	escaped := false
	for _, c := range s {
		if c == '\\' && !escaped {
			escaped = true
			continue
		}
		escaped = false
		sb.WriteRune(c)
	}
	return sb.String()
}
