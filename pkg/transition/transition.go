// Package transition matches a requested workflow transition against the
// catalog the ticketing system reports for a ticket's current state, and
// assembles the rendered action to execute.
//
// The package is a stateless client-side matcher: the authoritative
// workflow lives server-side, transitions are opaque id/title pairs, and
// the catalog is fetched fresh on every invocation.
package transition

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/relcm/relcm/pkg/config"
	"github.com/relcm/relcm/pkg/template"
)

const (
	// DeployedToProduction is the canonical name of the transition that
	// marks a release as live. Selecting it always stamps the deployment
	// date field with today's date, whatever the configured fields say.
	DeployedToProduction = "deployed_to_production"

	deployDateField = "customfield_10820"
	dateLayout      = "2006-01-02"
)

var today = func() string { return time.Now().Format(dateLayout) }

// Catalog is a snapshot of the transitions available from a ticket's
// current state, mapping transition id to display title.
type Catalog map[string]string

// IDs returns the transition ids, numeric ids first in numeric order
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aerr := strconv.Atoi(ids[i])
		b, berr := strconv.Atoi(ids[j])
		if aerr == nil && berr == nil {
			return a < b
		}
		if (aerr == nil) != (berr == nil) {
			return aerr == nil
		}
		return ids[i] < ids[j]
	})
	return ids
}

// Match is a resolved transition: its remote id, canonical name and the
// display title the remote reported.
type Match struct {
	ID    string
	Name  string
	Title string
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Sanitize normalizes a display title or user token into a comparable
// key: lower-cased, with runs of non-alphanumeric characters collapsed to
// a single underscore. "Start Test", "start-test" and "start_test" all
// sanitize identically.
func Sanitize(s string) string {
	return strings.Trim(nonAlnum.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// Resolve matches a requested token against the catalog. A transition
// matches when its sanitized title equals the sanitized token, or when
// its raw id equals the token verbatim (ids are opaque and never
// sanitized).
func Resolve(token string, catalog Catalog) (Match, bool) {
	want := Sanitize(token)
	for _, id := range catalog.IDs() {
		title := catalog[id]
		if Sanitize(title) == want || id == token {
			return Match{ID: id, Name: Sanitize(title), Title: title}, true
		}
	}
	return Match{}, false
}

// Notification is a resolved Slack payload
type Notification struct {
	Channel string
	Message string
}

// Action is the rendered side effect for one transition: field
// assignments, an optional comment, and an optional notification. Absent
// parts stay zero and are omitted from execution.
type Action struct {
	Transition   Match
	Fields       map[string]interface{}
	Comment      string
	Notification *Notification
}

// Build loads the action configuration at transition.<canonicalName>,
// renders it through the template engine and extracts the parts. The
// notification is only present when both a message and a configured
// slack.channel exist.
func Build(m Match, cfg *config.Resolver, eng *template.Engine) *Action {
	act := &Action{Transition: m}

	rendered := eng.Render(cfg.Get("transition."+m.Name, nil))
	if frag, ok := rendered.(*config.Mapping); ok {
		if f, ok := frag.Get("fields"); ok {
			if fm, ok := config.Plain(f).(map[string]interface{}); ok {
				act.Fields = fm
			}
		}
		if c, ok := frag.Get("comment"); ok {
			act.Comment = JoinLines(c)
		}
		if s, ok := frag.Get("slack"); ok {
			message := JoinLines(s)
			channel := cfg.GetString("slack.channel", "")
			if message != "" && channel != "" {
				act.Notification = &Notification{Channel: channel, Message: message}
			}
		}
	}

	if m.Name == DeployedToProduction {
		if act.Fields == nil {
			act.Fields = make(map[string]interface{})
		}
		act.Fields[deployDateField] = today()
	}

	return act
}

// JoinLines renders a string-or-sequence configuration value as a single
// string, joining sequence elements with newlines.
func JoinLines(v config.Value) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []config.Value:
		lines := make([]string, len(t))
		for i, item := range t {
			lines[i] = JoinLines(item)
		}
		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(t)
	}
}
