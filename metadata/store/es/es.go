package es

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/annosync/annosync/metadata"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	"golang.org/x/xerrors"
)

// The default name of the elasticsearch index holding metadata documents.
const defaultIndexName = "metadata"

var esMappings = `
{
  "mappings" : {
    "dynamic": true,
    "date_detection": false,
    "properties": {
      "` + metadata.FieldID + `": {"type": "keyword"},
      "` + metadata.FieldModified + `": {"type": "date"}
    }
  }
}`

type esSearchRes struct {
	Hits esSearchResHits `json:"hits"`
}

type esSearchResHits struct {
	HitList []esHitWrapper `json:"hits"`
}

type esHitWrapper struct {
	DocSource map[string]interface{} `json:"_source"`
}

type esErrorRes struct {
	Error esError `json:"error"`
}

type esError struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

func (e esError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Reason)
}

// Compile-time check to ensure ElasticSearchStore implements metadata.Store.
var _ metadata.Store = (*ElasticSearchStore)(nil)

// ElasticSearchStore is a metadata.Store backed by an elasticsearch index.
type ElasticSearchStore struct {
	es         *elasticsearch.Client
	indexName  string
	refreshOpt func(*esapi.IndexRequest)
}

// NewElasticSearchStore creates a metadata store that talks to the specified
// elasticsearch nodes. If syncUpdates is true, writes become visible to
// searches before Put returns.
func NewElasticSearchStore(esNodes []string, syncUpdates bool) (*ElasticSearchStore, error) {
	cfg := elasticsearch.Config{
		Addresses: esNodes,
	}
	es, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if err = ensureIndex(es, defaultIndexName); err != nil {
		return nil, err
	}

	refreshOpt := es.Index.WithRefresh("false")
	if syncUpdates {
		refreshOpt = es.Index.WithRefresh("true")
	}

	return &ElasticSearchStore{
		es:         es,
		indexName:  defaultIndexName,
		refreshOpt: refreshOpt,
	}, nil
}

// Put inserts or replaces the metadata document for key.
func (s *ElasticSearchStore) Put(ctx context.Context, key string, fields map[string]interface{}) error {
	doc := make(map[string]interface{}, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	doc[metadata.FieldID] = key

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return xerrors.Errorf("put: %w", err)
	}

	res, err := s.es.Index(
		s.indexName,
		&buf,
		s.es.Index.WithContext(ctx),
		s.es.Index.WithDocumentID(docID(key)),
		s.refreshOpt,
	)
	if err != nil {
		return xerrors.Errorf("put: %w", err)
	}

	if err = unmarshalResponse(res, nil); err != nil {
		return xerrors.Errorf("put: %w", err)
	}
	return nil
}

// FindByID looks up the metadata document for key.
func (s *ElasticSearchStore) FindByID(ctx context.Context, key string) (*metadata.Document, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{
				metadata.FieldID: key,
			},
		},
		"from": 0,
		"size": 1,
	}

	searchRes, err := runSearch(ctx, s.es, s.indexName, query)
	if err != nil {
		return nil, xerrors.Errorf("find by ID: %w", err)
	}

	if len(searchRes.Hits.HitList) != 1 {
		return nil, xerrors.Errorf("find by ID: %w", metadata.ErrNotFound)
	}

	return metadata.NewDocument(searchRes.Hits.HitList[0].DocSource), nil
}

// docID maps a record key to an elasticsearch document ID. Record keys
// contain slashes which elasticsearch does not accept in URL paths.
func docID(key string) string {
	return strings.ReplaceAll(strings.TrimPrefix(key, "/"), "/", ":")
}

func ensureIndex(es *elasticsearch.Client, indexName string) error {
	mappingsReader := strings.NewReader(esMappings)
	res, err := es.Indices.Create(indexName, es.Indices.Create.WithBody(mappingsReader))
	if err != nil {
		return xerrors.Errorf("cannot create ES index: %w", err)
	} else if res.IsError() {
		err := unmarshalError(res)
		if esErr, valid := err.(esError); valid && esErr.Type == "resource_already_exists_exception" {
			return nil
		}
		return xerrors.Errorf("cannot create ES index: %w", err)
	}

	return nil
}

func runSearch(ctx context.Context, es *elasticsearch.Client, indexName string, searchQuery map[string]interface{}) (*esSearchRes, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchQuery); err != nil {
		return nil, err
	}

	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(indexName),
		es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}

	var esRes esSearchRes
	if err = unmarshalResponse(res, &esRes); err != nil {
		return nil, err
	}

	return &esRes, nil
}

func unmarshalError(res *esapi.Response) error {
	return unmarshalResponse(res, nil)
}

func unmarshalResponse(res *esapi.Response, to interface{}) error {
	defer func() { _ = res.Body.Close() }()

	if res.IsError() {
		var errRes esErrorRes
		if err := json.NewDecoder(res.Body).Decode(&errRes); err != nil {
			return err
		}

		return errRes.Error
	}

	if to == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(to)
}
