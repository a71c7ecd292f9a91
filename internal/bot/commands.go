package bot

import (
	"regexp"
	"strings"
)

// CommandKind is the closed set of chat commands the bot understands.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdStatus
	CmdTomorrow
	CmdWeek
	CmdAdd
	CmdDone
	CmdDelete
	CmdHelp
	CmdNewFamily
	CmdJoin
	CmdFamily
	CmdHelpers
	CmdAddHelper
	CmdRemoveHelper
)

// ParsedCommand is the result of matching one incoming message.
type ParsedCommand struct {
	Kind CommandKind
	Args string
	Raw  string
}

// commandPatterns is an ordered list: the first matching pattern wins, so
// argument-taking commands must not shadow each other. Every arg-taking
// pattern captures the arguments in its second group.
var commandPatterns = []struct {
	kind CommandKind
	re   *regexp.Regexp
}{
	{CmdStatus, regexp.MustCompile(`(?i)^(status|today)$`)},
	{CmdTomorrow, regexp.MustCompile(`(?i)^(tomorrow)$`)},
	{CmdWeek, regexp.MustCompile(`(?i)^(week)$`)},
	{CmdAdd, regexp.MustCompile(`(?i)^(add|new)\s+(.+)$`)},
	{CmdDone, regexp.MustCompile(`(?i)^(done|complete)\s+(.+)$`)},
	{CmdAddHelper, regexp.MustCompile(`(?i)^(addhelper)\s+(.+)$`)},
	{CmdRemoveHelper, regexp.MustCompile(`(?i)^(removehelper)\s+(.+)$`)},
	{CmdDelete, regexp.MustCompile(`(?i)^(delete|remove)\s+(.+)$`)},
	{CmdHelp, regexp.MustCompile(`(?i)^(help|\?)$`)},
	{CmdNewFamily, regexp.MustCompile(`(?i)^(newfamily)\s+(.+)$`)},
	{CmdJoin, regexp.MustCompile(`(?i)^(join)\s+(\S+)$`)},
	{CmdFamily, regexp.MustCompile(`(?i)^(family)$`)},
	{CmdHelpers, regexp.MustCompile(`(?i)^(helpers)$`)},
}

// ParseCommand maps free-form message text to a command. A leading slash is
// tolerated so "/today" and "today" behave the same.
func ParseCommand(text string) ParsedCommand {
	trimmed := strings.TrimSpace(text)
	trimmed = strings.TrimPrefix(trimmed, "/")

	for _, p := range commandPatterns {
		m := p.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		args := ""
		if len(m) > 2 {
			args = strings.TrimSpace(m[2])
		}
		return ParsedCommand{Kind: p.kind, Args: args, Raw: trimmed}
	}

	return ParsedCommand{Kind: CmdUnknown, Raw: trimmed}
}
