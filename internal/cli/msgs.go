package cli

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort    = "Release change-management tickets from the command line"
	MsgCreateShort  = "Create the change-management ticket for a release"
	MsgUpdateShort  = "Move the release ticket through its workflow"
	MsgNoteShort    = "Add a comment to the release ticket"
	MsgDeleteShort  = "Delete the release ticket"
	MsgListShort    = "List release tickets in the project"
	MsgVersionShort = "Print version information"

	MsgRootLong = `relcm drives the change-management ticket that accompanies every
release: one ticket per version, moved through its workflow transition by
transition, with rendered comments and Slack notifications along the way.

Workflow documents are YAML files that may extend each other; tool
settings (Jira endpoint, credentials) live in
$XDG_CONFIG_HOME/relcm/relcm.toml or RELCM_* environment variables.`

	MsgUpdateLong = `Update moves the release ticket through its workflow. Without a
transition, it lists the transitions available from the ticket's current
state. With one, it applies the matching transition together with the
fields, comment and Slack notification configured for it.

Transitions match by name (case and punctuation insensitive, so
"start-test" matches "Start Test") or by numeric id.`

	// Flag descriptions
	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun  = "Preview remote calls without executing them"
	MsgFlagConfig  = "Workflow document to use (default from settings)"
	MsgFlagPretty  = "Force styled output even when not on a terminal"
	MsgFlagUser    = "Jira username (overrides settings)"
	MsgFlagToken   = "Jira API token (overrides settings)"
)
