package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/admin_dashboard/internal/models"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
)

const DefaultIndex = "clients"

const clientsMapping = `{
  "mappings": {
    "properties": {
      "name":    {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "email":   {"type": "text", "fields": {"raw": {"type": "keyword"}}},
      "balance": {"type": "double"},
      "tags":    {"type": "keyword"}
    }
  }
}`

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

// ClientIndex mirrors clients into an Elasticsearch index.
type ClientIndex struct {
	es    *elasticsearch.Client
	index string
}

type clientDoc struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Balance float64  `json:"balance"`
	Tags    []string `json:"tags,omitempty"`
}

func NewClient(ctx context.Context, cfg Config) (*ClientIndex, error) {
	l := logging.FromContext(ctx).With("component", "search")
	l.Info("es_connecting", "url", cfg.URL)

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: new client: %w", err)
	}

	res, err := es.Info(es.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("info", res)
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	l.Info("es_connected", "index", index)
	return &ClientIndex{es: es, index: index}, nil
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
func (c *ClientIndex) EnsureIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch: exists %s: %w", c.index, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(strings.NewReader(clientsMapping)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: create %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (c *ClientIndex) IndexClient(ctx context.Context, client *models.Client) error {
	doc := clientDoc{Name: client.Name, Email: client.Email, Balance: client.Balance}
	for _, t := range client.Tags {
		doc.Tags = append(doc.Tags, t.Name)
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("elasticsearch: encode client: %w", err)
	}

	res, err := c.es.Index(c.index, &buf,
		c.es.Index.WithContext(ctx),
		c.es.Index.WithDocumentID(strconv.FormatUint(uint64(client.ID), 10)),
		c.es.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: index client %d: %w", client.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// DeleteClient removes the document; a missing document is not an error.
func (c *ClientIndex) DeleteClient(ctx context.Context, id uint) error {
	res, err := c.es.Delete(c.index, strconv.FormatUint(uint64(id), 10),
		c.es.Delete.WithContext(ctx),
		c.es.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch: delete client %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete", res)
	}
	return nil
}

// SearchClients returns matching client ids, best match first.
func (c *ClientIndex) SearchClients(ctx context.Context, q string, limit int) ([]uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "email", "tags"},
				"fuzziness": "AUTO",
			},
		},
		"size":    limit,
		"_source": false,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("elasticsearch: encode query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch: search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("elasticsearch: decode search: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// Reindex pushes every client into the index, stopping at the first failure.
func (c *ClientIndex) Reindex(ctx context.Context, clients []models.Client) error {
	for i := range clients {
		if err := c.IndexClient(ctx, &clients[i]); err != nil {
			return err
		}
	}
	logging.FromContext(ctx).Info("es_reindexed", "index", c.index, "count", len(clients))
	return nil
}

var ErrResponse = errors.New("elasticsearch: error response")

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return fmt.Errorf("%w: %s: %s: %s", ErrResponse, op, res.Status(), bytes.TrimSpace(body))
}
