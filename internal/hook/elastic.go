package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/xcreports/xcallure/internal/model"
)

// ElasticSearchHook indexes stored reports so they can be queried next to
// device and application logs.
type ElasticSearchHook struct {
	client *elasticsearch.Client
	index  string

	log *slog.Logger
}

func NewElasticSearchHook(addresses []string, index string, log *slog.Logger) (*ElasticSearchHook, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	return &ElasticSearchHook{
		client: client,
		index:  index,
		log:    log,
	}, nil
}

func (h *ElasticSearchHook) Name() string {
	return "elastic-search"
}

func (h *ElasticSearchHook) Init() error {
	return nil
}

func (h *ElasticSearchHook) ReportStored(ctx context.Context, report model.TestResult) {
	body, err := json.Marshal(report)
	if err != nil {
		h.log.Error("unable to marshal report", "uuid", report.UUID, "error", err)
		return
	}

	res, err := h.client.Index(
		h.index,
		bytes.NewReader(body),
		h.client.Index.WithDocumentID(report.UUID),
		h.client.Index.WithContext(ctx),
	)
	if err != nil {
		h.log.Error("unable to index report", "uuid", report.UUID, "error", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		h.log.Error("unable to index report", "uuid", report.UUID, "status", res.Status())
	}
}
