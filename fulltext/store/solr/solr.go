package solr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/annosync/annosync/fulltext/index"
	"github.com/annosync/annosync/metadata"
	solrgo "github.com/stevenferrer/solr-go"
	"golang.org/x/xerrors"
)

const (
	// The number of documents fetched by each records page.
	defaultPageSize = 500

	// The format used for writing date values.
	solrDateFormat = "2006-01-02T15:04:05.000Z"
)

type solrFieldsResponse struct {
	solrgo.BaseResponse
	Fields []struct {
		Name string `json:"name"`
	} `json:"fields"`
}

type solrError struct {
	Code int
	Msg  string
}

func (e solrError) Error() string {
	return fmt.Sprintf("solr error %d: %s", e.Code, e.Msg)
}

// responseError extracts the error reported in a Solr response body.
func responseError(base *solrgo.BaseResponse) error {
	if base == nil || base.Error == nil {
		return nil
	}
	return solrError{Code: base.Error.Code, Msg: base.Error.Msg}
}

// Compile-time check to ensure SolrIndexer implements index.Indexer.
var _ index.Indexer = (*SolrIndexer)(nil)

// SolrIndexer is an index.Indexer backed by a Solr core. Writes use Solr's
// atomic update syntax so that only the named fields are modified.
type SolrIndexer struct {
	client   *solrgo.JSONClient
	sender   solrgo.RequestSender
	coreURL  string
	core     string
	pageSize int
}

// NewSolrIndexer returns an indexer for the Solr core at coreURL (for example
// http://localhost:8983/solr/fulltext). Updates are committed within the
// specified interval; a zero interval makes every update commit immediately.
func NewSolrIndexer(coreURL string, commitWithin time.Duration) (*SolrIndexer, error) {
	baseURL, core, err := splitCoreURL(coreURL)
	if err != nil {
		return nil, xerrors.Errorf("invalid solr core URL: %w", err)
	}

	sender := &commitSender{
		next:         solrgo.NewDefaultRequestSender().WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
		commitWithin: commitWithin,
	}
	return &SolrIndexer{
		client:   solrgo.NewJSONClient(baseURL).WithRequestSender(sender),
		sender:   sender,
		coreURL:  baseURL + "/solr/" + core,
		core:     core,
		pageSize: defaultPageSize,
	}, nil
}

// splitCoreURL splits a core URL into the Solr base URL and the core name.
func splitCoreURL(coreURL string) (string, string, error) {
	u, err := url.ParseRequestURI(coreURL)
	if err != nil {
		return "", "", err
	}

	path := strings.TrimSuffix(u.Path, "/")
	at := strings.LastIndex(path, "/solr/")
	if at < 0 || at+len("/solr/") == len(path) {
		return "", "", xerrors.Errorf("path %q does not name a core", u.Path)
	}
	core := path[at+len("/solr/"):]
	u.Path, u.RawQuery = path[:at], ""
	return strings.TrimSuffix(u.String(), "/"), core, nil
}

// Exists returns true if a document with the specified key exists.
func (s *SolrIndexer) Exists(ctx context.Context, key string) (bool, error) {
	res, err := s.query(ctx, solrgo.NewQuery("*:*").
		Filters(termQuery(index.FieldKey, key)).
		Fields(index.FieldKey).
		Limit(1))
	if err != nil {
		return false, xerrors.Errorf("exists: %w", err)
	}
	return res.Response.NumFound > 0, nil
}

// FindByID returns the stored fields of a document.
func (s *SolrIndexer) FindByID(ctx context.Context, key string) (map[string]interface{}, error) {
	res, err := s.query(ctx, solrgo.NewQuery("*:*").
		Filters(termQuery(index.FieldKey, key)).
		Limit(1))
	if err != nil {
		return nil, xerrors.Errorf("find by ID: %w", err)
	}

	if len(res.Response.Documents) == 0 {
		return nil, xerrors.Errorf("find by ID: %w", index.ErrNotFound)
	}
	return res.Response.Documents[0], nil
}

// Schema returns the fields declared by the core's schema.
func (s *SolrIndexer) Schema(ctx context.Context) (*index.Schema, error) {
	res, err := s.sender.SendRequest(ctx, http.MethodGet, s.coreURL+"/schema/fields?wt=json", solrgo.JSON.String(), nil)
	if err != nil {
		return nil, xerrors.Errorf("schema: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	var fields solrFieldsResponse
	if err = json.NewDecoder(res.Body).Decode(&fields); err != nil {
		return nil, xerrors.Errorf("schema: %w", err)
	} else if err = responseError(&fields.BaseResponse); err != nil {
		return nil, xerrors.Errorf("schema: %w", err)
	}

	names := make([]string, len(fields.Fields))
	for i, f := range fields.Fields {
		names[i] = f.Name
	}
	return index.NewSchema(names...), nil
}

// Update sends a batch of atomic updates.
func (s *SolrIndexer) Update(ctx context.Context, updates []*index.Update) error {
	docs := make([]map[string]interface{}, 0, len(updates))
	for _, u := range updates {
		if u.Key == "" {
			return xerrors.Errorf("update: %w", index.ErrMissingKey)
		}
		docs = append(docs, atomicDoc(u))
	}

	if err := s.update(ctx, docs); err != nil {
		return xerrors.Errorf("update: %w", err)
	}
	return nil
}

// Delete removes a batch of documents by key.
func (s *SolrIndexer) Delete(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	if err := s.update(ctx, solrgo.M{"delete": keys}); err != nil {
		return xerrors.Errorf("delete: %w", err)
	}
	return nil
}

// LatestTimestamp returns the most recent value of field across all documents.
func (s *SolrIndexer) LatestTimestamp(ctx context.Context, field string) (time.Time, error) {
	res, err := s.query(ctx, solrgo.NewQuery(field+":[* TO *]").
		Sort(field+" desc").
		Fields(field).
		Limit(1))
	if err != nil {
		return time.Time{}, xerrors.Errorf("latest timestamp: %w", err)
	}

	if len(res.Response.Documents) == 0 {
		return time.Time{}, nil
	}

	ts, err := metadata.ParseTimestamp(res.Response.Documents[0][field])
	if err != nil {
		return time.Time{}, xerrors.Errorf("latest timestamp: %w", err)
	}
	return ts, nil
}

// Records returns an iterator over all documents in key order.
func (s *SolrIndexer) Records(ctx context.Context) (index.Iterator, error) {
	return &keysetIterator{ctx: ctx, s: s}, nil
}

func (s *SolrIndexer) query(ctx context.Context, q *solrgo.Query) (*solrgo.QueryResponse, error) {
	res, err := s.client.Query(ctx, s.core, q)
	if err != nil {
		return nil, err
	} else if err = responseError(res.BaseResponse); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *SolrIndexer) update(ctx context.Context, body interface{}) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}

	res, err := s.client.Update(ctx, s.core, solrgo.JSON, &buf)
	if err != nil {
		return err
	}
	return responseError(res.BaseResponse)
}

// commitSender adds the commit policy to every update request.
type commitSender struct {
	next         solrgo.RequestSender
	commitWithin time.Duration
}

func (cs *commitSender) SendRequest(ctx context.Context, method, urlStr, contentType string, body io.Reader) (*http.Response, error) {
	if u, err := url.Parse(urlStr); err == nil && strings.HasSuffix(u.Path, "/update") {
		params := u.Query()
		if cs.commitWithin > 0 {
			params.Set("commitWithin", strconv.FormatInt(cs.commitWithin.Milliseconds(), 10))
		} else {
			params.Set("commit", "true")
		}
		u.RawQuery = params.Encode()
		urlStr = u.String()
	}
	return cs.next.SendRequest(ctx, method, urlStr, contentType, body)
}

// atomicDoc converts an update into a Solr atomic update document. The key
// is sent as-is so Solr can locate the document to modify.
func atomicDoc(u *index.Update) map[string]interface{} {
	doc := make(map[string]interface{}, len(u.Fields)+1)
	for _, f := range u.Fields {
		if f.Name == index.FieldKey {
			continue
		}

		v := encodeValue(f.Value)
		if f.Op == index.OpSet {
			v = map[string]interface{}{"set": v}
		}
		doc[f.Name] = v
	}
	doc[index.FieldKey] = u.Key
	return doc
}

// encodeValue formats time values the way Solr date fields expect them.
func encodeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return val.UTC().Format(solrDateFormat)
	case []time.Time:
		out := make([]string, len(val))
		for i, t := range val {
			out[i] = t.UTC().Format(solrDateFormat)
		}
		return out
	default:
		return v
	}
}

// termQuery builds a filter query that matches a field value verbatim.
func termQuery(field, value string) string {
	return "{!term f=" + field + "}" + value
}

// afterQuery builds a filter query matching keys that sort after key.
func afterQuery(field, key string) string {
	return field + ":{" + solrgo.EscapeQueryChars(key) + " TO *]"
}
