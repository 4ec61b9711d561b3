// Package release orchestrates the change-management workflow: it wires
// the config resolver, template engine and transition engine to the
// ticketing and notification collaborators, one command per process.
package release

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/relcm/relcm/pkg/config"
	"github.com/relcm/relcm/pkg/display"
	"github.com/relcm/relcm/pkg/errors"
	"github.com/relcm/relcm/pkg/jira"
	"github.com/relcm/relcm/pkg/logging"
	"github.com/relcm/relcm/pkg/template"
	"github.com/relcm/relcm/pkg/transition"
)

const defaultVersionPattern = `^\d+\.\d+\.\d+$`

// Ticketer is the ticketing collaborator consumed by the driver
type Ticketer interface {
	Create(fields map[string]interface{}) (*jira.Ticket, error)
	Find(project, summaryPattern string) (*jira.Ticket, error)
	Search(jql string) ([]*jira.Ticket, error)
	Comment(key, text string) error
	Delete(key string) error
	Transition(key, id string, fields map[string]interface{}, comment string) (transition.Catalog, error)
}

// Notifier is the notification collaborator
type Notifier interface {
	Send(channel, message string) error
}

// Driver runs one workflow command against one release ticket
type Driver struct {
	Config    *config.Resolver
	Templates *template.Engine
	Tickets   Ticketer
	Notify    Notifier
	Out       *display.Printer

	log zerolog.Logger
}

// NewDriver wires a driver and stamps the rendering date into the
// template context.
func NewDriver(cfg *config.Resolver, eng *template.Engine, tickets Ticketer, notify Notifier, out *display.Printer) *Driver {
	eng.Set("date", time.Now().Format("2006-01-02"))
	return &Driver{
		Config:    cfg,
		Templates: eng,
		Tickets:   tickets,
		Notify:    notify,
		Out:       out,
		log:       logging.GetLogger("release"),
	}
}

// Create opens a new change-management ticket for a release version. The
// optional excludeBranch is exposed to templates as {exclude_branch}.
func (d *Driver) Create(version, excludeBranch string) error {
	if err := d.checkVersion(version); err != nil {
		return err
	}
	d.Templates.Set("version", version)
	if excludeBranch == "" {
		excludeBranch = "none"
	}
	d.Templates.Set("exclude_branch", excludeBranch)

	if err := d.Config.Require("issue.summary", "issue.project.key", "issue.issuetype.name"); err != nil {
		return err
	}

	rendered := d.Templates.Render(d.Config.Get("issue", nil))
	issue, ok := rendered.(*config.Mapping)
	if !ok {
		return errors.Newf(errors.ErrConfigRequire, "%s: issue section is not a mapping", d.Config.Name())
	}

	fields := issueFields(issue)
	summary, _ := fields["summary"].(string)
	if !strings.Contains(summary, version) {
		return errors.Newf(errors.ErrInvalidSummary,
			"rendered summary %q does not contain version %s", summary, version)
	}

	project := d.Config.GetString("issue.project.key", "")
	existing, err := d.Tickets.Find(project, summary)
	if err != nil {
		return err
	}
	if existing != nil {
		return errors.Newf(errors.ErrTicketExists,
			"release ticket %s already exists for version %s", existing.Key, version)
	}

	ticket, err := d.Tickets.Create(fields)
	if err != nil {
		return err
	}
	d.Templates.Set("ticket", ticket.Key)
	d.log.Info().Str("key", ticket.Key).Str("version", version).Msg("Created release ticket")
	d.Out.Successf("Created %s: %s", ticket.Key, summary)
	return nil
}

// Update drives the release ticket through its workflow. With an empty
// token it only reports the transitions available from the ticket's
// current state. With a token it resolves the matching transition,
// executes the rendered action, sends the notification when one is
// configured, and reports the catalog of the resulting state.
func (d *Driver) Update(version, token string) error {
	ticket, err := d.find(version)
	if err != nil {
		return err
	}

	catalog, err := d.Tickets.Transition(ticket.Key, "", nil, "")
	if err != nil {
		return err
	}

	if token == "" {
		d.Out.Catalog(catalog)
		return nil
	}

	match, ok := transition.Resolve(token, catalog)
	if !ok {
		d.Out.Catalog(catalog)
		return errors.Newf(errors.ErrInvalidTransition,
			"invalid transition %q for %s", token, ticket.Key)
	}

	action := transition.Build(match, d.Config, d.Templates)
	after, err := d.Tickets.Transition(ticket.Key, action.Transition.ID, action.Fields, action.Comment)
	if err != nil {
		return err
	}
	d.log.Info().Str("key", ticket.Key).Str("transition", match.Title).Msg("Applied transition")
	d.Out.Successf("Applied %q to %s", match.Title, ticket.Key)

	// The notification is a second, independent side effect: the ticket
	// has already transitioned, so the resulting catalog is reported even
	// when the send fails.
	var notifyErr error
	if n := action.Notification; n != nil {
		notifyErr = d.Notify.Send(n.Channel, n.Message)
	}
	d.Out.Catalog(after)
	return notifyErr
}

// Note adds a rendered comment to the release ticket
func (d *Driver) Note(version, message string) error {
	ticket, err := d.find(version)
	if err != nil {
		return err
	}
	text := d.Templates.RenderString(message)
	if err := d.Tickets.Comment(ticket.Key, text); err != nil {
		return err
	}
	d.Out.Successf("Commented on %s", ticket.Key)
	return nil
}

// Delete removes the release ticket
func (d *Driver) Delete(version string) error {
	ticket, err := d.find(version)
	if err != nil {
		return err
	}
	if err := d.Tickets.Delete(ticket.Key); err != nil {
		return err
	}
	d.Out.Successf("Deleted %s", ticket.Key)
	return nil
}

// List prints every release ticket in the project, matched by rendering
// the summary with a wildcard in place of the version.
func (d *Driver) List() error {
	pattern := d.Templates.RenderString(
		d.Config.GetString("issue.summary", ""),
		template.Vars{"version": "*"})
	project := d.Config.GetString("issue.project.key", "")

	jql := fmt.Sprintf("project = %q AND summary ~ %q ORDER BY created DESC", project, pattern)
	tickets, err := d.Tickets.Search(jql)
	if err != nil {
		return err
	}
	d.Out.Tickets(tickets)
	return nil
}

func (d *Driver) find(version string) (*jira.Ticket, error) {
	if err := d.checkVersion(version); err != nil {
		return nil, err
	}
	d.Templates.Set("version", version)

	summary := d.Templates.RenderString(d.Config.GetString("issue.summary", ""))
	project := d.Config.GetString("issue.project.key", "")

	ticket, err := d.Tickets.Find(project, summary)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, errors.Newf(errors.ErrTicketNotFound,
			"no release ticket found for version %s", version)
	}
	d.Templates.Set("ticket", ticket.Key)
	return ticket, nil
}

func (d *Driver) checkVersion(version string) error {
	pattern := d.Config.GetString("version-pattern", defaultVersionPattern)
	re, err := regexp.Compile(pattern)
	if err != nil {
		return errors.Wrapf(err, errors.ErrConfigParse,
			"%s: invalid version-pattern", d.Config.Name())
	}
	if !re.MatchString(version) {
		return errors.Newf(errors.ErrInvalidVersion,
			"version %q does not match pattern %s", version, pattern)
	}
	return nil
}

// issueFields flattens the rendered issue mapping into Jira creation
// fields. Line sequences (description) collapse into newline-joined
// strings; everything else keeps its structure.
func issueFields(issue *config.Mapping) map[string]interface{} {
	fields := make(map[string]interface{}, issue.Len())
	for _, k := range issue.Keys() {
		v, _ := issue.Get(k)
		if k == "description" {
			fields[k] = transition.JoinLines(v)
			continue
		}
		fields[k] = config.Plain(v)
	}
	return fields
}
