package display

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/relcm/relcm/pkg/jira"
	"github.com/relcm/relcm/pkg/transition"
)

func TestCatalogPlain(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Catalog(transition.Catalog{"21": "Start Test", "61": "Info Needed"})

	out := buf.String()
	assert.Contains(t, out, "Next transitions available:")
	assert.Contains(t, out, "21  Start Test")
	assert.Contains(t, out, "61  Info Needed")
}

func TestCatalogEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Catalog(transition.Catalog{})

	assert.Contains(t, buf.String(), "(none)")
}

func TestTickets(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Tickets([]*jira.Ticket{
		{Key: "CM-1", Fields: map[string]interface{}{
			"summary": "Release 1.0.0",
			"status":  map[string]interface{}{"name": "Closed"},
		}},
		{Key: "CM-2", Fields: map[string]interface{}{"summary": "Release 1.1.0"}},
	})

	out := buf.String()
	assert.Contains(t, out, "CM-1")
	assert.Contains(t, out, "Closed")
	assert.Contains(t, out, "Release 1.0.0")
	assert.Contains(t, out, "CM-2")
}

func TestTicketsEmpty(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, false)

	p.Tickets(nil)

	assert.Contains(t, buf.String(), "No release tickets found.")
}
