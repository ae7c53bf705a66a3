package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"record_consensus_system/internal/consensus"
)

type webhookPublisher struct {
	client  *http.Client
	baseURL string
}

// NewWebhookPublisher posts events as JSON to an external notifier endpoint.
func NewWebhookPublisher(baseURL string) consensus.Publisher {
	return &webhookPublisher{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
	}
}

func (p *webhookPublisher) Publish(ctx context.Context, event consensus.Event) error {
	jsonData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("%s/%s", p.baseURL, "events"), bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}

	request.Header.Add("Content-Type", "application/json; charset=utf-8")

	response, err := p.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(response.Body)
		return errors.Errorf("notifier endpoint returned %d: %s", response.StatusCode, body)
	}

	return nil
}
