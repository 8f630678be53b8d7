package layout

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/pdfstruct/internal/doctree"
	"github.com/dgallion1/pdfstruct/internal/structure"
)

// RemoteDetector calls an HTTP layout model service.
type RemoteDetector struct {
	baseURL     string
	apiKey      string
	samplePages int
	httpClient  *http.Client

	// backoff is swapped in tests.
	backoff func(attempt int) time.Duration
}

func NewRemoteDetector(baseURL, apiKey string, samplePages int) *RemoteDetector {
	return &RemoteDetector{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		samplePages: samplePages,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		backoff: Backoff,
	}
}

type detectRequest struct {
	Filename string `json:"filename"`
	PDF      string `json:"pdf"`
	Pages    int    `json:"pages"`
}

type detectResponse struct {
	Pages []struct {
		Page   int     `json:"page"`
		Height float64 `json:"height"`
		Blocks []struct {
			Type string  `json:"type"`
			X1   float64 `json:"x_1"`
			Y1   float64 `json:"y_1"`
			X2   float64 `json:"x_2"`
			Y2   float64 `json:"y_2"`
			Text string  `json:"text"`
		} `json:"blocks"`
	} `json:"pages"`
	Error string `json:"error"`
}

// Detect sends the original document bytes to the service, retrying
// transient failures with backoff.
func (d *RemoteDetector) Detect(ctx context.Context, doc *doctree.DocTree) ([]structure.PageLayout, error) {
	if len(doc.Source) == 0 {
		return nil, fmt.Errorf("layout service needs the source document")
	}
	pages := len(doc.Pages)
	if d.samplePages > 0 && d.samplePages < pages {
		pages = d.samplePages
	}
	body, err := json.Marshal(detectRequest{
		Filename: doc.Filename,
		PDF:      base64.StdEncoding.EncodeToString(doc.Source),
		Pages:    pages,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(d.backoff(attempt - 1)):
			}
		}
		layouts, err := d.detectOnce(ctx, body)
		if err == nil {
			return layouts, nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (d *RemoteDetector) detectOnce(ctx context.Context, body []byte) ([]structure.PageLayout, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/v1/detect", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if d.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+d.apiKey)
	}

	resp, err := d.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("layout service: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, &RetryableError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("layout service status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out detectResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("layout service error: %s", out.Error)
	}

	layouts := make([]structure.PageLayout, 0, len(out.Pages))
	for _, p := range out.Pages {
		blocks := make([]structure.Block, 0, len(p.Blocks))
		for _, b := range p.Blocks {
			blocks = append(blocks, structure.Block{
				Label:  structure.ParseLabel(b.Type),
				Top:    b.Y1,
				Bottom: b.Y2,
				Text:   strings.TrimSpace(b.Text),
			})
		}
		layouts = append(layouts, structure.PageLayout{
			Page:     p.Page,
			Geometry: structure.PageGeometry{Height: p.Height},
			Blocks:   blocks,
		})
	}
	return layouts, nil
}

// Close releases resources.
func (d *RemoteDetector) Close() {
	d.httpClient.CloseIdleConnections()
}
