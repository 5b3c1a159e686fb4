// Package metadataindex wraps an Elasticsearch-compatible search/bulk
// surface behind a thin adapter (§6.3): callers pass a small Clause struct,
// never raw query-DSL JSON.
package metadataindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"

	"github.com/Baltic-RCC/RAO/internal/models"
)

// Clause is one bool/must term clause: field = value.
type Clause struct {
	Field string
	Value string
}

// Sort orders a search by field, ascending unless Desc is set.
type Sort struct {
	Field string
	Desc  bool
}

// Document is one hit or bulk-index payload: an id plus its source body.
type Document struct {
	ID     string
	Source map[string]any
}

// Index is the surface the builder/orchestrator use to query and write the
// metadata index. No query-DSL type leaks past this seam (spec §6.3).
type Index interface {
	Search(ctx context.Context, index string, must []Clause, size int, sort []Sort) ([]Document, error)
	Bulk(ctx context.Context, index string, docs []Document) error
}

// Client is the go-elasticsearch-backed Index implementation.
type Client struct {
	es *elasticsearch.Client
}

// NewClient wraps an already-configured *elasticsearch.Client.
func NewClient(es *elasticsearch.Client) *Client {
	return &Client{es: es}
}

// DocID derives a namespaced UUIDv5 document id over a caller-specified key
// tuple, per spec §6.3.
func DocID(namespace uuid.UUID, keyParts ...string) string {
	return uuid.NewSHA1(namespace, []byte(strings.Join(keyParts, "|"))).String()
}

// Search runs a bool/must query, paginating internally via scroll until
// size results are collected or the index is exhausted.
func (c *Client) Search(ctx context.Context, index string, must []Clause, size int, sort []Sort) ([]Document, error) {
	body, err := json.Marshal(searchBody(must, size, sort))
	if err != nil {
		return nil, fmt.Errorf("%w: marshal search body: %v", models.ErrTransientIO, err)
	}

	req := esapi.SearchRequest{
		Index:  []string{index},
		Body:   bytes.NewReader(body),
		Scroll: scrollWindow,
	}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, fmt.Errorf("%w: search %s: %v", models.ErrTransientIO, index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: search %s: status %s", models.ErrTransientIO, index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", models.ErrTransientIO, err)
	}

	docs := parsed.docs()
	scrollID := parsed.ScrollID
	for len(docs) < size && scrollID != "" && len(parsed.Hits.Hits) > 0 {
		next, nextScrollID, err := c.scroll(ctx, scrollID)
		if err != nil {
			return nil, err
		}
		if len(next) == 0 {
			break
		}
		docs = append(docs, next...)
		scrollID = nextScrollID
	}
	if len(docs) > size {
		docs = docs[:size]
	}
	return docs, nil
}

const scrollWindow = time.Minute

func (c *Client) scroll(ctx context.Context, scrollID string) ([]Document, string, error) {
	req := esapi.ScrollRequest{ScrollID: scrollID, Scroll: scrollWindow}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return nil, "", fmt.Errorf("%w: scroll: %v", models.ErrTransientIO, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, "", fmt.Errorf("%w: scroll: status %s", models.ErrTransientIO, res.Status())
	}
	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, "", fmt.Errorf("%w: decode scroll response: %v", models.ErrTransientIO, err)
	}
	return parsed.docs(), parsed.ScrollID, nil
}

// Bulk writes docs with an index action per document.
func (c *Client) Bulk(ctx context.Context, index string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	var buf bytes.Buffer
	for _, d := range docs {
		action := map[string]any{"index": map[string]any{"_index": index, "_id": d.ID}}
		actionLine, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("%w: marshal bulk action: %v", models.ErrTransientIO, err)
		}
		sourceLine, err := json.Marshal(d.Source)
		if err != nil {
			return fmt.Errorf("%w: marshal bulk source: %v", models.ErrTransientIO, err)
		}
		buf.Write(actionLine)
		buf.WriteByte('\n')
		buf.Write(sourceLine)
		buf.WriteByte('\n')
	}

	req := esapi.BulkRequest{Body: bytes.NewReader(buf.Bytes())}
	res, err := req.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("%w: bulk %s: %v", models.ErrTransientIO, index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: bulk %s: status %s", models.ErrTransientIO, index, res.Status())
	}
	return nil
}

func searchBody(must []Clause, size int, sort []Sort) map[string]any {
	terms := make([]map[string]any, 0, len(must))
	for _, c := range must {
		terms = append(terms, map[string]any{"term": map[string]any{c.Field: c.Value}})
	}
	body := map[string]any{
		"size":  size,
		"query": map[string]any{"bool": map[string]any{"must": terms}},
	}
	if len(sort) > 0 {
		sortSpec := make([]map[string]any, 0, len(sort))
		for _, s := range sort {
			order := "asc"
			if s.Desc {
				order = "desc"
			}
			sortSpec = append(sortSpec, map[string]any{s.Field: map[string]any{"order": order}})
		}
		body["sort"] = sortSpec
	}
	return body
}

type searchResponse struct {
	ScrollID string `json:"_scroll_id"`
	Hits     struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r searchResponse) docs() []Document {
	out := make([]Document, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		out = append(out, Document{ID: h.ID, Source: h.Source})
	}
	return out
}
