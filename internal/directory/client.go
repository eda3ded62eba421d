package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rickdex/pkg/models"
)

// DefaultBaseURL is the public character directory.
const DefaultBaseURL = "https://rickandmortyapi.com/api"

// maxBody caps how much of a response we are willing to read.
const maxBody = 4 << 20

// Query selects one page of the character listing.
type Query struct {
	Name    string // raw search text; the service does the matching
	Page    int    // 1-based; values below 2 are not sent
	Status  string
	Species string
	Gender  string
}

// Client talks to the character directory over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// ListCharacters fetches one page of characters matching q.
func (c *Client) ListCharacters(ctx context.Context, q Query) (*models.CharacterPage, error) {
	u, err := url.Parse(c.BaseURL + "/character")
	if err != nil {
		return nil, &Error{Op: "list", Kind: NetworkFailure, Err: fmt.Errorf("build url: %w", err)}
	}
	v := u.Query()
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if strings.TrimSpace(q.Name) != "" {
		v.Set("name", q.Name)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Species != "" {
		v.Set("species", q.Species)
	}
	if q.Gender != "" {
		v.Set("gender", q.Gender)
	}
	u.RawQuery = v.Encode()

	var page models.CharacterPage
	if err := c.getJSON(ctx, "list", u.String(), &page); err != nil {
		return nil, err
	}

	if page.Info.Pages < 1 {
		return nil, &Error{Op: "list", Kind: MalformedPayload, Err: fmt.Errorf("info.pages = %d", page.Info.Pages)}
	}
	for _, ch := range page.Results {
		if ch.ID < 1 {
			return nil, &Error{Op: "list", Kind: MalformedPayload, Err: fmt.Errorf("character id = %d", ch.ID)}
		}
	}
	if page.Results == nil {
		page.Results = []models.Character{}
	}
	return &page, nil
}

// GetCharacter fetches a single character by id.
func (c *Client) GetCharacter(ctx context.Context, id int) (*models.Character, error) {
	if id < 1 {
		return nil, &Error{Op: "get", Kind: ServiceError, Status: http.StatusNotFound, Err: fmt.Errorf("invalid id %d", id)}
	}

	var ch models.Character
	if err := c.getJSON(ctx, "get", c.BaseURL+"/character/"+strconv.Itoa(id), &ch); err != nil {
		return nil, err
	}
	if ch.ID != id {
		return nil, &Error{Op: "get", Kind: MalformedPayload, Err: fmt.Errorf("asked for id %d, got %d", id, ch.ID)}
	}
	return &ch, nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) getJSON(ctx context.Context, op, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{Op: op, Kind: NetworkFailure, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return &Error{Op: op, Kind: NetworkFailure, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &Error{Op: op, Kind: NetworkFailure, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := strings.TrimSpace(string(body))
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		return &Error{Op: op, Kind: ServiceError, Status: resp.StatusCode, Err: errors.New(msg)}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Op: op, Kind: MalformedPayload, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}
