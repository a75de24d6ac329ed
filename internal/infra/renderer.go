package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"calhaforte/internal/profile"
)

// RenderSegment is one leg of the profile sent to the renderer sidecar.
// HeadingDeg spares the sidecar from knowing the compass convention.
type RenderSegment struct {
	Direction  string `json:"direction"`
	HeadingDeg int    `json:"heading_deg"`
	SizeCm     string `json:"size_cm"`
}

// RenderPayload asks the sidecar to draw a bend profile. The sidecar stores
// the image and hands back an opaque reference.
type RenderPayload struct {
	Segments []RenderSegment `json:"segments"`
}

// RenderResponse is returned by the renderer sidecar.
type RenderResponse struct {
	DiagramRef string `json:"diagram_ref"`
}

// RendererClient is an HTTP client that delegates profile drawing to the
// renderer sidecar. Calls go through a circuit breaker so a dead sidecar
// fast-fails instead of stalling every quote submission.
type RendererClient struct {
	sidecarURL string
	httpClient *http.Client
	cb         *Breaker
}

func NewRendererClient(sidecarURL string, cb *Breaker) *RendererClient {
	return &RendererClient{
		sidecarURL: sidecarURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		cb:         cb,
	}
}

// Breaker exposes the circuit breaker for health reporting.
func (c *RendererClient) Breaker() *Breaker { return c.cb }

// Render sends a POST to the sidecar and returns the stored diagram reference.
func (c *RendererClient) Render(ctx context.Context, segments []profile.Segment) (string, error) {
	payload := RenderPayload{Segments: make([]RenderSegment, 0, len(segments))}
	for _, s := range segments {
		payload.Segments = append(payload.Segments, RenderSegment{
			Direction:  string(s.Direction),
			HeadingDeg: s.Direction.Heading(),
			SizeCm:     s.SizeCm.String(),
		})
	}

	var ref string
	err := c.cb.Do(func() error {
		body, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("renderer: marshal payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.sidecarURL+"/render", bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("renderer: create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("renderer: sidecar unreachable: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("renderer: sidecar returned %d", resp.StatusCode)
		}

		var result RenderResponse
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("renderer: decode response: %w", err)
		}
		ref = result.DiagramRef
		return nil
	})
	return ref, err
}
