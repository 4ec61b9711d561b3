package transition

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcm/relcm/pkg/config"
	"github.com/relcm/relcm/pkg/template"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"spaces", "Start Test", "start_test"},
		{"dashes", "start-test", "start_test"},
		{"underscores", "start_test", "start_test"},
		{"mixed_runs", "Deployed -- to  Production!", "deployed_to_production"},
		{"leading_trailing", "  Close ", "close"},
		{"digits_kept", "Level 2 Review", "level_2_review"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Sanitize(tt.input))
		})
	}
}

func TestResolve(t *testing.T) {
	catalog := Catalog{"21": "Start Test", "61": "Info Needed"}

	tests := []struct {
		name       string
		token      string
		expectID   string
		expectName string
		ok         bool
	}{
		{"by_name_dashed", "start-test", "21", "start_test", true},
		{"by_name_spaced", "Start Test", "21", "start_test", true},
		{"by_id", "21", "21", "start_test", true},
		{"other_name", "info_needed", "61", "info_needed", true},
		{"bogus", "bogus", "", "", false},
		{"id_not_sanitized", "2-1", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := Resolve(tt.token, catalog)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.expectID, m.ID)
				assert.Equal(t, tt.expectName, m.Name)
			}
		})
	}
}

func TestCatalogIDsNumericOrder(t *testing.T) {
	catalog := Catalog{"101": "c", "21": "a", "61": "b"}

	assert.Equal(t, []string{"21", "61", "101"}, catalog.IDs())
}

func TestCatalogIDsNonNumericLexical(t *testing.T) {
	catalog := Catalog{
		"beta":    "b",
		"alpha":   "a",
		"gamma":   "g",
		"delta":   "d",
		"epsilon": "e",
		"21":      "n",
	}

	want := []string{"21", "alpha", "beta", "delta", "epsilon", "gamma"}
	for i := 0; i < 10; i++ {
		assert.Equal(t, want, catalog.IDs())
	}
}

func testResolver(t *testing.T, content string) *config.Resolver {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	r, err := config.NewResolver(path)
	require.NoError(t, err)
	return r
}

func TestBuildFullAction(t *testing.T) {
	cfg := testResolver(t, `
slack:
  channel: '#releases'
transition:
  start_test:
    fields:
      assignee:
        name: qa-team
    comment:
      - 'Release {version} is on test.'
      - 'Please verify.'
    slack: 'Testing {version} ({ticket})'
`)
	eng := template.New()
	eng.Set("version", "1.2.3")
	eng.Set("ticket", "CM-7")

	act := Build(Match{ID: "21", Name: "start_test", Title: "Start Test"}, cfg, eng)

	assert.Equal(t, "21", act.Transition.ID)
	assert.Equal(t, map[string]interface{}{"assignee": map[string]interface{}{"name": "qa-team"}}, act.Fields)
	assert.Equal(t, "Release 1.2.3 is on test.\nPlease verify.", act.Comment)
	require.NotNil(t, act.Notification)
	assert.Equal(t, "#releases", act.Notification.Channel)
	assert.Equal(t, "Testing 1.2.3 (CM-7)", act.Notification.Message)
}

func TestBuildAbsentPartsStayEmpty(t *testing.T) {
	cfg := testResolver(t, "transition:\n  close:\n    comment: done\n")
	eng := template.New()

	act := Build(Match{ID: "31", Name: "close", Title: "Close"}, cfg, eng)

	assert.Nil(t, act.Fields)
	assert.Equal(t, "done", act.Comment)
	assert.Nil(t, act.Notification)
}

func TestBuildNoConfigFragment(t *testing.T) {
	cfg := testResolver(t, "slack:\n  channel: '#releases'\n")
	eng := template.New()

	act := Build(Match{ID: "41", Name: "reopen", Title: "Reopen"}, cfg, eng)

	assert.Nil(t, act.Fields)
	assert.Empty(t, act.Comment)
	assert.Nil(t, act.Notification)
}

func TestBuildSlackWithoutChannelIsDropped(t *testing.T) {
	cfg := testResolver(t, "transition:\n  close:\n    slack: 'message'\n")
	eng := template.New()

	act := Build(Match{ID: "31", Name: "close", Title: "Close"}, cfg, eng)

	assert.Nil(t, act.Notification)
}

func TestBuildDeployedToProductionStampsDate(t *testing.T) {
	orig := today
	today = func() string { return "2026-08-30" }
	defer func() { today = orig }()

	cfg := testResolver(t, "transition:\n  deployed_to_production:\n    comment: live\n")
	eng := template.New()

	act := Build(Match{ID: "51", Name: DeployedToProduction, Title: "Deployed to Production"}, cfg, eng)

	assert.Equal(t, "2026-08-30", act.Fields[deployDateField])
	assert.Equal(t, "live", act.Comment)
}

func TestJoinLines(t *testing.T) {
	assert.Equal(t, "", JoinLines(nil))
	assert.Equal(t, "one", JoinLines("one"))
	assert.Equal(t, "a\nb", JoinLines([]config.Value{"a", "b"}))
	assert.Equal(t, "42", JoinLines(42))
}
