// Package slack is the notification collaborator: it posts release
// messages to a channel via chat.postMessage.
package slack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/relcm/relcm/pkg/logging"
)

// DefaultAPIURL is the Slack Web API endpoint
const DefaultAPIURL = "https://slack.com/api"

// Client posts notifications. Token and DryRun are mutable and set by the
// command shell before the first call.
type Client struct {
	Token  string
	APIURL string
	DryRun bool
	HTTP   *http.Client

	log zerolog.Logger
}

// New returns a client using the default API endpoint
func New(token string) *Client {
	return &Client{
		Token:  token,
		APIURL: DefaultAPIURL,
		HTTP:   &http.Client{Timeout: 10 * time.Second},
		log:    logging.GetLogger("slack"),
	}
}

// Send posts a message to a channel. An API-level failure (ok: false) is
// surfaced as an error just like a transport failure.
func (c *Client) Send(channel, message string) error {
	if c.DryRun {
		c.log.Info().Str("channel", channel).Str("message", message).Msg("dry-run: would notify")
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"channel": channel,
		"text":    message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, strings.TrimRight(c.APIURL, "/")+"/chat.postMessage", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack: status %d", resp.StatusCode)
	}
	var out struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("slack: %s", out.Error)
	}
	c.log.Info().Str("channel", channel).Msg("Sent notification")
	return nil
}
