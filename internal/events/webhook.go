package events

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/model"
)

// WebhookConfig holds configuration for batched webhook delivery
type WebhookConfig struct {
	// Endpoint receiving the POSTed batches
	URL string `yaml:"url"`

	// Bearer token sent with each batch
	APIKey string `yaml:"api_key,omitempty"`

	// Number of buffered events that triggers an immediate flush
	BatchSize int `yaml:"batch_size"`

	// Maximum time an event waits in the buffer
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// WebhookExporter batches events and POSTs them as JSON to a webhook
type WebhookExporter struct {
	config     WebhookConfig
	httpClient *retryablehttp.Client
	mutex      sync.Mutex
	batch      []model.Event
	lastExport time.Time
	exported   int
	cancel     context.CancelFunc
	done       chan struct{}
}

// webhookPayload is the body of one delivery
type webhookPayload struct {
	Events     []model.Event `json:"events"`
	ExportTime string        `json:"export_time"`
	Count      int           `json:"count"`
}

// NewWebhookExporter creates an exporter and starts its periodic flush loop
func NewWebhookExporter(config WebhookConfig) (*WebhookExporter, error) {
	if config.URL == "" {
		return nil, fmt.Errorf("webhook URL not configured")
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 50
	}
	if config.FlushInterval <= 0 {
		config.FlushInterval = time.Minute
	}

	e := &WebhookExporter{
		config:     config,
		httpClient: newWebhookClient(),
		batch:      make([]model.Event, 0, config.BatchSize),
		done:       make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	go e.periodicExport(ctx)

	logrus.WithField("url", config.URL).Info("Webhook event exporter initialized")
	return e, nil
}

func newWebhookClient() *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = nil
	client.HTTPClient = &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
			IdleConnTimeout: 90 * time.Second,
		},
	}
	return client
}

// Publish buffers the event, flushing when the batch is full
func (e *WebhookExporter) Publish(event model.Event) {
	e.mutex.Lock()
	e.batch = append(e.batch, event)
	full := len(e.batch) >= e.config.BatchSize
	e.mutex.Unlock()

	if full {
		go e.flush()
	}
}

func (e *WebhookExporter) periodicExport(ctx context.Context) {
	defer close(e.done)
	ticker := time.NewTicker(e.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.flush()
		case <-ctx.Done():
			return
		}
	}
}

// flush delivers the current batch. A failed delivery is logged and dropped.
func (e *WebhookExporter) flush() {
	e.mutex.Lock()
	if len(e.batch) == 0 {
		e.mutex.Unlock()
		return
	}
	events := e.batch
	e.batch = make([]model.Event, 0, e.config.BatchSize)
	e.mutex.Unlock()

	if err := e.post(events); err != nil {
		logrus.WithError(err).WithField("events", len(events)).Error("Failed to export events to webhook")
		return
	}

	e.mutex.Lock()
	e.lastExport = time.Now()
	e.exported += len(events)
	e.mutex.Unlock()
	logrus.Debugf("Exported %d events to webhook", len(events))
}

func (e *WebhookExporter) post(events []model.Event) error {
	body, err := json.Marshal(webhookPayload{
		Events:     events,
		ExportTime: time.Now().UTC().Format(time.RFC3339),
		Count:      len(events),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal events: %w", err)
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, e.config.URL, body)
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.config.APIKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned error status: %d", resp.StatusCode)
	}
	return nil
}

// Stop ends the flush loop and delivers whatever is still buffered
func (e *WebhookExporter) Stop() {
	e.cancel()
	<-e.done
	e.flush()
}

// Status reports buffer and delivery counters
func (e *WebhookExporter) Status() map[string]interface{} {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	status := map[string]interface{}{
		"batch_size":     e.config.BatchSize,
		"flush_interval": e.config.FlushInterval.String(),
		"current_batch":  len(e.batch),
		"exported":       e.exported,
	}
	if !e.lastExport.IsZero() {
		status["last_export"] = e.lastExport.Format(time.RFC3339)
	}
	return status
}
