package matchsim

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/matchxg/internal/domain/model"
	"github.com/okian/matchxg/pkg/logger"
)

// Submission outcomes.
const (
	resultRecorded  = "recorded"
	resultDuplicate = "duplicate"
	resultFailed    = "failed"
)

// HTTPClient wraps http.Client with JSON helpers.
type HTTPClient struct {
	client  *http.Client
	baseURL string
}

func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.client.Do(req)
}

// getJSON decodes a 200 response from path into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// teamStatsResponse mirrors GET /teams/{team}/stats.
type teamStatsResponse struct {
	Team  model.Team      `json:"team"`
	Shots int             `json:"shots"`
	Stats model.TeamStats `json:"stats"`
}

func (c *HTTPClient) teamStats(ctx context.Context, team model.Team) (model.TeamStats, error) {
	var out teamStatsResponse
	if err := c.getJSON(ctx, "/teams/"+string(team)+"/stats", &out); err != nil {
		return model.TeamStats{}, err
	}
	return out.Stats, nil
}

func (c *HTTPClient) events(ctx context.Context) ([]model.Event, error) {
	var out []model.Event
	if err := c.getJSON(ctx, "/events", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// submitEvents posts events with a pool of workers.
func submitEvents(ctx context.Context, cfg *Config, client *HTTPClient, events []Event, stats *Stats) {
	log := logger.Get().Named("submit")
	log.Info(ctx, "submitting events", logger.Int("events", len(events)), logger.Int("workers", cfg.Workers))

	var submitted, recorded, duplicate, failed atomic.Int64
	eventCh := make(chan Event, cfg.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range eventCh {
				result := submitSingleEvent(ctx, client, e)
				submitted.Add(1)
				switch result {
				case resultRecorded:
					recorded.Add(1)
				case resultDuplicate:
					duplicate.Add(1)
				default:
					failed.Add(1)
				}
				if cfg.Verbose {
					log.Debug(ctx, "event submitted",
						logger.String("event_id", e.EventID),
						logger.String("team", e.Team),
						logger.String("kind", e.Kind),
						logger.String("result", result))
				}
			}
		}()
	}

send:
	for _, e := range events {
		select {
		case <-ctx.Done():
			break send
		case eventCh <- e:
		}
	}
	close(eventCh)
	wg.Wait()

	stats.EventsSubmitted = int(submitted.Load())
	stats.EventsRecorded = int(recorded.Load())
	stats.EventsDuplicate = int(duplicate.Load())
	stats.EventsFailed = int(failed.Load())

	log.Info(ctx, "event submission completed",
		logger.Int("recorded", stats.EventsRecorded),
		logger.Int("duplicate", stats.EventsDuplicate),
		logger.Int("failed", stats.EventsFailed))
}

func submitSingleEvent(ctx context.Context, client *HTTPClient, e Event) string {
	resp, err := client.do(ctx, http.MethodPost, "/events", e)
	if err != nil {
		return resultFailed
	}
	defer func() { _ = resp.Body.Close() }()

	var ack AckResponse
	switch resp.StatusCode {
	case http.StatusCreated:
		return resultRecorded
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(&ack); err == nil && ack.Duplicate {
			return resultDuplicate
		}
		return resultFailed
	default:
		return resultFailed
	}
}
