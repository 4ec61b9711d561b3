package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcm/relcm/pkg/config"
)

func TestRenderString(t *testing.T) {
	e := New()
	e.Set("version", "1.2.3")
	e.Set("ticket", "CM-42")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"single_variable", "Release {version}", "Release 1.2.3"},
		{"multiple_variables", "{ticket}: release {version}", "CM-42: release 1.2.3"},
		{"unknown_stays_verbatim", "Release {version} on {date}", "Release 1.2.3 on {date}"},
		{"no_placeholders", "plain text", "plain text"},
		{"braces_without_name", "{} {123}", "{} {123}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.RenderString(tt.input))
		})
	}
}

func TestRenderWalksNestedValues(t *testing.T) {
	doc, err := config.Parse("t.yaml", []byte(`
summary: 'Release {version}'
description:
  - 'Ticket for {version}'
  - second line
project:
  key: CM
count: 3
`))
	require.NoError(t, err)

	e := New()
	e.Set("version", "2.0.0")
	out := e.Render(doc).(*config.Mapping)

	summary, _ := out.Get("summary")
	assert.Equal(t, "Release 2.0.0", summary)
	desc, _ := out.Get("description")
	assert.Equal(t, []config.Value{"Ticket for 2.0.0", "second line"}, desc)
	count, _ := out.Get("count")
	assert.Equal(t, 3, count)

	// The source document is untouched.
	orig, _ := doc.Get("summary")
	assert.Equal(t, "Release {version}", orig)
}

func TestRenderKeysNeverSubstituted(t *testing.T) {
	doc, err := config.Parse("t.yaml", []byte("'{version}': value\n"))
	require.NoError(t, err)

	e := New()
	e.Set("version", "1.0.0")
	out := e.Render(doc).(*config.Mapping)

	assert.Equal(t, []string{"{version}"}, out.Keys())
}

func TestRenderOverrideIsolation(t *testing.T) {
	e := New()
	e.Set("version", "1.2.3")

	withOverride := e.RenderString("Release {version}", Vars{"version": "*"})
	assert.Equal(t, "Release *", withOverride)

	// The override must not have leaked into the persistent context.
	after := e.RenderString("Release {version}")
	assert.Equal(t, "Release 1.2.3", after)
	v, ok := e.Lookup("version")
	assert.True(t, ok)
	assert.Equal(t, "1.2.3", v)
}

func TestRenderOverrideForUnsetVariable(t *testing.T) {
	e := New()

	// Wildcard probe for an unset version, then a later real render.
	assert.Equal(t, "Release *", e.RenderString("Release {version}", Vars{"version": "*"}))
	assert.Equal(t, "Release {version}", e.RenderString("Release {version}"))
}
