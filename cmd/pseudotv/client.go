package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client wraps HTTP calls to the pseudotv daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new pseudotv API client.
func NewClient(serverURL string) *Client {
	return &Client{
		baseURL: serverURL + "/api/v1",
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx response from the daemon.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
}

// IsCode reports whether err is an APIError carrying code.
func IsCode(err error, code string) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func (c *Client) do(method, path string, query url.Values) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Message: string(body)}
		var er struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			apiErr.Code, apiErr.Message = er.Code, er.Error
		}
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) call(method, path string, query url.Values, result any) error {
	resp, err := c.do(method, path, query)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return json.NewDecoder(resp.Body).Decode(result)
}

func (c *Client) get(path string, query url.Values, result any) error {
	return c.call(http.MethodGet, path, query, result)
}

func (c *Client) post(path string, query url.Values, result any) error {
	return c.call(http.MethodPost, path, query, result)
}

// API response types (mirror server types)

type EntryResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ShowTitle     string `json:"show_title,omitempty"`
	SeasonNumber  int    `json:"season_number,omitempty"`
	EpisodeNumber int    `json:"episode_number,omitempty"`
	Section       string `json:"section"`
	Start         string `json:"start"`
	End           string `json:"end"`
	DayOfWeek     string `json:"day_of_week"`
	DurationMs    int64  `json:"duration_ms"`
	ExternalID    string `json:"external_id,omitempty"`
}

type NowPlayingResponse struct {
	EntryResponse
	RemainingMs int64 `json:"remaining_ms"`
}

type ListEntriesResponse struct {
	Items []EntryResponse `json:"items"`
	Total int             `json:"total"`
}

type WeeklyResponse struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Start      string `json:"start"`
	End        string `json:"end"`
	DayOfWeek  string `json:"day_of_week"`
	Section    string `json:"section"`
	StrictTime bool   `json:"strict_time"`
	TimeShift  string `json:"time_shift,omitempty"`
	OverlapMax string `json:"overlap_max,omitempty"`
}

type ListWeeklyResponse struct {
	Items []WeeklyResponse `json:"items"`
	Total int              `json:"total"`
}

type EpisodeResponse struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	ShowTitle     string `json:"show_title"`
	SeasonNumber  int    `json:"season_number"`
	EpisodeNumber int    `json:"episode_number"`
	DurationMs    int64  `json:"duration_ms"`
	ExternalID    string `json:"external_id,omitempty"`
	Section       string `json:"section,omitempty"`
}

type MediaResponse struct {
	Category   string `json:"category"`
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	ShowTitle  string `json:"show_title,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	ExternalID string `json:"external_id,omitempty"`
	Section    string `json:"section,omitempty"`
}

type RebuildResponse struct {
	Day     string `json:"day"`
	Entries int    `json:"entries"`
	Skipped int    `json:"skipped"`
	Fillers int    `json:"fillers"`
}

type EventResponse struct {
	ID         int64  `json:"id"`
	EventType  string `json:"event_type"`
	EntityType string `json:"entity_type"`
	EntityKey  string `json:"entity_key"`
	Payload    string `json:"payload"`
	OccurredAt string `json:"occurred_at"`
}

type ListEventsResponse struct {
	Items []EventResponse `json:"items"`
	Total int             `json:"total"`
}

// Client methods

func (c *Client) NowPlaying() (*NowPlayingResponse, error) {
	var resp NowPlayingResponse
	if err := c.get("/now-playing", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) UpNext(n int) (*ListEntriesResponse, error) {
	var resp ListEntriesResponse
	if err := c.get("/up-next", url.Values{"n": {strconv.Itoa(n)}}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) DailySchedule() (*ListEntriesResponse, error) {
	var resp ListEntriesResponse
	if err := c.get("/schedule/daily", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// WeeklySchedule lists the template, starting at hour fromHour when it is
// not negative.
func (c *Client) WeeklySchedule(fromHour int) (*ListWeeklyResponse, error) {
	var q url.Values
	if fromHour >= 0 {
		q = url.Values{"from": {strconv.Itoa(fromHour)}}
	}
	var resp ListWeeklyResponse
	if err := c.get("/schedule/weekly", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Rebuild regenerates the daily schedule. An empty day means today.
func (c *Client) Rebuild(day string) (*RebuildResponse, error) {
	var q url.Values
	if day != "" {
		q = url.Values{"day": {day}}
	}
	var resp RebuildResponse
	if err := c.post("/schedule/rebuild", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) PeekEpisode(show string) (*EpisodeResponse, error) {
	var resp EpisodeResponse
	if err := c.get("/shows/"+url.PathEscape(show)+"/next", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) NextEpisode(show string) (*EpisodeResponse, error) {
	var resp EpisodeResponse
	if err := c.post("/shows/"+url.PathEscape(show)+"/next", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Pick(category string, minDur, maxDur time.Duration) (*MediaResponse, error) {
	q := url.Values{}
	if minDur > 0 {
		q.Set("min", strconv.FormatFloat(minDur.Seconds(), 'f', -1, 64))
	}
	if maxDur > 0 {
		q.Set("max", strconv.FormatFloat(maxDur.Seconds(), 'f', -1, 64))
	}
	var resp MediaResponse
	if err := c.get("/pick/"+url.PathEscape(category), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Guide returns the XMLTV document for the current day.
func (c *Client) Guide() ([]byte, error) {
	resp, err := c.do(http.MethodGet, "/guide.xml", nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	return io.ReadAll(resp.Body)
}

func (c *Client) Events(limit int, entityType, entityKey string, since time.Time) (*ListEventsResponse, error) {
	q := url.Values{"limit": {strconv.Itoa(limit)}}
	if entityType != "" && entityKey != "" {
		q.Set("entity_type", entityType)
		q.Set("entity_key", entityKey)
	}
	if !since.IsZero() {
		q.Set("since", since.UTC().Format(time.RFC3339))
	}
	var resp ListEventsResponse
	if err := c.get("/events", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
