// internal/store/search/ranking_index.go
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"hostelverse-workers/internal/waitlist"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const rankingMapping = `{
  "mappings": {
    "properties": {
      "rankingId":      {"type": "keyword"},
      "hostelId":       {"type": "keyword"},
      "computedAt":     {"type": "date"},
      "applicantCount": {"type": "integer"},
      "applicants": {
        "type": "nested",
        "properties": {
          "userId": {"type": "keyword"},
          "rank":   {"type": "integer"},
          "score":  {"type": "float"}
        }
      }
    }
  }
}`

// RankingIndex stores the latest ranking snapshot per hostel, keyed by hostel id.
type RankingIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewRankingIndex(client *elasticsearch.Client, index string) *RankingIndex {
	return &RankingIndex{client: client, index: index}
}

// EnsureIndex creates the index with its mapping if it does not exist yet.
func (r *RankingIndex) EnsureIndex(ctx context.Context) error {
	res, err := esapi.IndicesExistsRequest{Index: []string{r.index}}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("check index %s: %w", r.index, err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{
		Index: r.index,
		Body:  strings.NewReader(rankingMapping),
	}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("create index %s: %w", r.index, err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(readBody(res.Body), "resource_already_exists_exception") {
		return fmt.Errorf("create index %s: %s", r.index, res.Status())
	}
	return nil
}

// Publish implements waitlist.Sink.
func (r *RankingIndex) Publish(ctx context.Context, snapshot waitlist.Snapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal ranking snapshot: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: snapshot.HostelID,
		Body:       bytes.NewReader(body),
	}.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("index ranking snapshot: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index ranking snapshot: %s: %s", res.Status(), readBody(res.Body))
	}
	return nil
}

// Latest returns the last published snapshot for hostelID, or false if none exists.
func (r *RankingIndex) Latest(ctx context.Context, hostelID string) (*waitlist.Snapshot, bool, error) {
	res, err := esapi.GetRequest{Index: r.index, DocumentID: hostelID}.Do(ctx, r.client)
	if err != nil {
		return nil, false, fmt.Errorf("get ranking snapshot: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		return nil, false, nil
	}
	if res.IsError() {
		return nil, false, fmt.Errorf("get ranking snapshot: %s", res.Status())
	}

	var doc struct {
		Source waitlist.Snapshot `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, false, fmt.Errorf("decode ranking snapshot: %w", err)
	}
	return &doc.Source, true, nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 4096))
	return string(b)
}
