// Package platform delivers outbound replies to the connector relay
// that owns the actual provider credentials.
package platform

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/domain"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/core/port/out"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/httputil"
	"github.com/Akashdb5/champa-cognitive-ai-inbox/pkg/logger"

	"github.com/google/uuid"
)

// RelayGateway implements out.PlatformGateway by POSTing send requests
// to the platform relay service.
type RelayGateway struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

func NewRelayGateway(baseURL string, client *http.Client) *RelayGateway {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	return &RelayGateway{
		baseURL: baseURL,
		client:  client,
		log:     logger.Default().WithField("component", "platform_gateway"),
	}
}

type relayRequest struct {
	UserID   string           `json:"user_id"`
	Platform string           `json:"platform"`
	Message  *out.SendRequest `json:"message"`
}

func (g *RelayGateway) Send(ctx context.Context, userID uuid.UUID, platform domain.Platform, req *out.SendRequest) (*out.SendResult, error) {
	payload, err := json.Marshal(&relayRequest{
		UserID:   userID.String(),
		Platform: string(platform),
		Message:  req,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal send request: %w", err)
	}

	url := g.baseURL + "/v1/messages/send"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build send request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send via relay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read relay response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("relay error: status %d", resp.StatusCode)
	}

	var result out.SendResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode relay response: %w", err)
	}

	if !result.Success {
		g.log.WithFields(map[string]any{
			"platform": string(platform),
			"status":   resp.StatusCode,
			"error":    result.Error,
		}).Warn("relay rejected send")
	}
	return &result, nil
}

var _ out.PlatformGateway = (*RelayGateway)(nil)
