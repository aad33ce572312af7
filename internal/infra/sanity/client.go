package sanity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"got-trivia-service/internal/domain"
)

// Client queries a Sanity-style content API for questions. Questions are
// tagged with a difficulty document; the opaque reference selects the pool.
// The HTTP client timeout bounds the engine's only suspension point.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// sanityQuestion mirrors the CMS document shape.
type sanityQuestion struct {
	ID   string `json:"_id"`
	Slug struct {
		Current string `json:"current"`
	} `json:"slug"`
	Question string   `json:"question"`
	Choices  []string `json:"choices"`
	Answer   string   `json:"answer"`
}

type queryResponse struct {
	Result []sanityQuestion `json:"result"`
}

func (c *Client) QuestionsByDifficulty(ctx context.Context, ref string) ([]domain.Question, error) {
	query := fmt.Sprintf(
		`*[_type == 'question' && references('%s')]{_id, slug{current}, question, choices, answer}`, ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?query="+url.QueryEscape(query), nil)
	if err != nil {
		return nil, fmt.Errorf("build query request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query content api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("content api returned %d", resp.StatusCode)
	}

	var parsed queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode content response: %w", err)
	}

	questions := make([]domain.Question, 0, len(parsed.Result))
	for _, doc := range parsed.Result {
		questions = append(questions, domain.Question{
			ID:      doc.ID,
			Slug:    doc.Slug.Current,
			Text:    doc.Question,
			Choices: doc.Choices,
			Answer:  doc.Answer,
		})
	}
	return questions, nil
}
