// Package jira is the ticketing collaborator: a thin client for the Jira
// REST API v2 used to create, find, comment on, delete and transition the
// release change-management ticket.
//
// Transient failures (network errors, 429, 5xx) are retried with capped
// exponential backoff here; callers never retry.
package jira

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/relcm/relcm/pkg/logging"
	"github.com/relcm/relcm/pkg/transition"
)

const apiPrefix = "/rest/api/2"

// Error is a structured remote failure carrying the HTTP status and the
// response body verbatim, so the operator sees exactly what Jira said.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("jira: status %d: %s", e.Status, e.Body)
}

// Ticket is a handle on a remote issue
type Ticket struct {
	Key    string
	Fields map[string]interface{}
}

// Field returns a raw issue field by name
func (t *Ticket) Field(name string) interface{} {
	if t == nil || t.Fields == nil {
		return nil
	}
	return t.Fields[name]
}

// Summary returns the issue summary field
func (t *Ticket) Summary() string {
	s, _ := t.Field("summary").(string)
	return s
}

// StatusName returns the display name of the issue status
func (t *Ticket) StatusName() string {
	status, _ := t.Field("status").(map[string]interface{})
	name, _ := status["name"].(string)
	return name
}

// Client talks to one Jira instance. Credentials and DryRun are mutable
// and set by the command shell before the first call.
type Client struct {
	BaseURL  string
	Username string
	Token    string
	DryRun   bool
	HTTP     *http.Client

	newBackOff func() backoff.BackOff
	log        zerolog.Logger
}

// New returns a client for the given base URL
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		newBackOff: func() backoff.BackOff {
			return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3)
		},
		log: logging.GetLogger("jira"),
	}
}

// Create creates a ticket from rendered issue fields
func (c *Client) Create(fields map[string]interface{}) (*Ticket, error) {
	if c.DryRun {
		key := dryRunKey(fields)
		c.log.Info().Str("key", key).Msg("dry-run: would create ticket")
		return &Ticket{Key: key, Fields: fields}, nil
	}
	var out struct {
		Key string `json:"key"`
	}
	if err := c.do(http.MethodPost, apiPrefix+"/issue", map[string]interface{}{"fields": fields}, &out); err != nil {
		return nil, err
	}
	c.log.Info().Str("key", out.Key).Msg("Created ticket")
	return &Ticket{Key: out.Key, Fields: fields}, nil
}

// Find returns the newest ticket in project whose summary matches the
// pattern, or nil when there is none.
func (c *Client) Find(project, summaryPattern string) (*Ticket, error) {
	jql := fmt.Sprintf("project = %q AND summary ~ %q ORDER BY created DESC", project, summaryPattern)
	tickets, err := c.Search(jql)
	if err != nil {
		return nil, err
	}
	if len(tickets) == 0 {
		return nil, nil
	}
	return tickets[0], nil
}

// Search runs a JQL query
func (c *Client) Search(jql string) ([]*Ticket, error) {
	req := map[string]interface{}{
		"jql":        jql,
		"maxResults": 50,
		"fields":     []string{"summary", "status"},
	}
	var out struct {
		Issues []struct {
			Key    string                 `json:"key"`
			Fields map[string]interface{} `json:"fields"`
		} `json:"issues"`
	}
	if err := c.do(http.MethodPost, apiPrefix+"/search", req, &out); err != nil {
		return nil, err
	}
	tickets := make([]*Ticket, 0, len(out.Issues))
	for _, issue := range out.Issues {
		tickets = append(tickets, &Ticket{Key: issue.Key, Fields: issue.Fields})
	}
	return tickets, nil
}

// Comment adds a comment to a ticket
func (c *Client) Comment(key, text string) error {
	if c.DryRun {
		c.log.Info().Str("key", key).Str("comment", text).Msg("dry-run: would comment")
		return nil
	}
	return c.do(http.MethodPost, apiPrefix+"/issue/"+key+"/comment", map[string]string{"body": text}, nil)
}

// Delete removes a ticket
func (c *Client) Delete(key string) error {
	if c.DryRun {
		c.log.Info().Str("key", key).Msg("dry-run: would delete ticket")
		return nil
	}
	return c.do(http.MethodDelete, apiPrefix+"/issue/"+key, nil, nil)
}

// Transition queries or executes a workflow transition. With an empty id
// it returns the available-transitions catalog for the ticket's current
// state, without side effects. With an id it executes the transition
// (fields and comment ride along in the same call) and returns the
// catalog for the resulting state.
func (c *Client) Transition(key, id string, fields map[string]interface{}, comment string) (transition.Catalog, error) {
	if id == "" {
		return c.catalog(key)
	}
	if c.DryRun {
		c.log.Info().Str("key", key).Str("transition", id).Msg("dry-run: would transition ticket")
		return c.catalog(key)
	}

	payload := map[string]interface{}{
		"transition": map[string]string{"id": id},
	}
	if len(fields) > 0 {
		payload["fields"] = fields
	}
	if comment != "" {
		payload["update"] = map[string]interface{}{
			"comment": []interface{}{
				map[string]interface{}{"add": map[string]string{"body": comment}},
			},
		}
	}
	if err := c.do(http.MethodPost, apiPrefix+"/issue/"+key+"/transitions", payload, nil); err != nil {
		return nil, err
	}
	c.log.Info().Str("key", key).Str("transition", id).Msg("Transitioned ticket")
	return c.catalog(key)
}

func (c *Client) catalog(key string) (transition.Catalog, error) {
	var out struct {
		Transitions []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"transitions"`
	}
	if err := c.do(http.MethodGet, apiPrefix+"/issue/"+key+"/transitions", nil, &out); err != nil {
		return nil, err
	}
	catalog := make(transition.Catalog, len(out.Transitions))
	for _, t := range out.Transitions {
		catalog[t.ID] = t.Name
	}
	return catalog, nil
}

func (c *Client) do(method, path string, body, out interface{}) error {
	op := func() error {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return backoff.Permanent(err)
			}
			reader = bytes.NewReader(data)
		}
		req, err := http.NewRequest(method, c.BaseURL+path, reader)
		if err != nil {
			return backoff.Permanent(err)
		}
		if c.Username != "" {
			req.SetBasicAuth(c.Username, c.Token)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.HTTP.Do(req)
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		remoteErr := &Error{Status: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		switch {
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return remoteErr
		case resp.StatusCode >= 400:
			return backoff.Permanent(remoteErr)
		}
		if out != nil && len(data) > 0 {
			if err := json.Unmarshal(data, out); err != nil {
				return backoff.Permanent(err)
			}
		}
		return nil
	}
	return backoff.Retry(op, c.newBackOff())
}

func dryRunKey(fields map[string]interface{}) string {
	project, _ := fields["project"].(map[string]interface{})
	if key, ok := project["key"].(string); ok && key != "" {
		return key + "-0"
	}
	return "DRY-0"
}
