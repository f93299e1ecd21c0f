package service

import (
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Barrier is the outbound contract to the physical barrier controller.
// Both calls are best effort: the controller's availability must never
// decide the outcome of a scan.
type Barrier interface {
	PulseOpen(seconds int)
	ForceClose()
}

// BarrierClient talks to the gate controller over HTTP with a short timeout.
// Errors are logged and swallowed.
type BarrierClient struct {
	baseURL string
	client  *http.Client
}

func NewBarrierClient(baseURL string) *BarrierClient {
	return &BarrierClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 800 * time.Millisecond},
	}
}

func (b *BarrierClient) PulseOpen(seconds int) {
	b.post("/pulse-open", url.Values{"seconds": {strconv.Itoa(seconds)}})
}

func (b *BarrierClient) ForceClose() {
	b.post("/force-close", nil)
}

func (b *BarrierClient) post(path string, form url.Values) {
	if b.baseURL == "" {
		return
	}
	resp, err := b.client.PostForm(b.baseURL+path, form)
	if err != nil {
		log.Printf("barrier controller unreachable (%s): %v", path, err)
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		log.Printf("barrier controller returned %s for %s", resp.Status, path)
	}
}

var _ Barrier = (*BarrierClient)(nil)
