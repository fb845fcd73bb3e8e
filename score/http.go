package score

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// HTTPScorer calls the external scoring service (embedding + regression
// model) over HTTP. Only the raw base scores are taken from the service;
// the penalty is applied locally so there is a single penalty source.
type HTTPScorer struct {
	endpoint string
	client   *http.Client
}

func NewHTTPScorer(endpoint string, client *http.Client) *HTTPScorer {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPScorer{endpoint: endpoint, client: client}
}

type scoreRequest struct {
	Prompt string `json:"prompt"`
}

type dimensionScores struct {
	Clarity     float64 `json:"clarity" validate:"required,min=1,max=10"`
	Context     float64 `json:"context" validate:"required,min=1,max=10"`
	Relevance   float64 `json:"relevance" validate:"required,min=1,max=10"`
	Specificity float64 `json:"specificity" validate:"required,min=1,max=10"`
	Creativity  float64 `json:"creativity" validate:"required,min=1,max=10"`
}

type scoreResponse struct {
	Results []struct {
		BaseScores dimensionScores `json:"base_scores"`
	} `json:"results"`
	BaseScores *dimensionScores `json:"base_scores"`
}

func (s *HTTPScorer) Score(ctx context.Context, text string) (ScoreVector, error) {
	payload, err := json.Marshal(scoreRequest{Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("encode score request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint+"/evaluate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create score request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scoring service call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read scoring response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("scoring service returned status %d", resp.StatusCode)
	}

	var parsed scoreResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("parse scoring response: %w", err)
	}

	var dims dimensionScores
	switch {
	case len(parsed.Results) > 0:
		dims = parsed.Results[0].BaseScores
	case parsed.BaseScores != nil:
		dims = *parsed.BaseScores
	default:
		return nil, fmt.Errorf("scoring response carries no scores")
	}

	if err := validate.Struct(dims); err != nil {
		return nil, fmt.Errorf("invalid scoring response: %w", err)
	}

	return ScoreVector{
		Clarity:     round1(clip(dims.Clarity)),
		Context:     round1(clip(dims.Context)),
		Relevance:   round1(clip(dims.Relevance)),
		Specificity: round1(clip(dims.Specificity)),
		Creativity:  round1(clip(dims.Creativity)),
	}, nil
}
