package terminal

import (
	"fmt"
	"slices"
	"strings"
)

// Command describes one entry of the command reference.
type Command struct {
	Name    string `json:"name"`
	Usage   string `json:"usage"`
	Summary string `json:"summary"`
	// Hidden commands work but are left out of `help`.
	Hidden bool `json:"hidden,omitempty"`

	run func(s *Session, args []string)
}

// UnknownCommand is the name hooks receive for lines that match no command.
const UnknownCommand = "unknown"

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

var commands []*Command

var commandIndex map[string]*Command

func init() {
	commands = []*Command{
		{Name: "help", Usage: "help", Summary: "Show available commands", Hidden: true, run: (*Session).cmdHelp},
		{Name: "ls", Usage: "ls", Summary: "List directory contents", run: (*Session).cmdLs},
		{Name: "cd", Usage: "cd <dir>", Summary: "Change directory", run: (*Session).cmdCd},
		{Name: "cat", Usage: "cat <file>", Summary: "Display file contents", run: (*Session).cmdCat},
		{Name: "pwd", Usage: "pwd", Summary: "Print working directory", run: (*Session).cmdPwd},
		{Name: "clear", Usage: "clear", Summary: "Clear terminal", run: (*Session).cmdClear},
		{Name: "whoami", Usage: "whoami", Summary: "Display user info", run: (*Session).cmdWhoami},
		{Name: "goto", Usage: "goto <section>", Summary: "Navigate to section", run: (*Session).cmdGoto},
		{Name: "open", Usage: "open <url>", Summary: "Open external link", run: (*Session).cmdOpen},
		{Name: "download", Usage: "download resume", Summary: "Download resume PDF", run: (*Session).cmdDownload},
		{Name: "theme", Usage: "theme <dark|light>", Summary: "Switch theme", run: (*Session).cmdTheme},
		{Name: "matrix", Usage: "matrix", Summary: "Toggle Matrix rain effect", run: (*Session).cmdMatrix},
		{Name: "hacktype", Usage: "hacktype", Summary: "🎮 Start typing game!", run: (*Session).cmdHacktype},
		{Name: "exit", Usage: "exit", Summary: "Close terminal", run: (*Session).cmdExit},
		{Name: "sudo", Usage: "sudo <cmd>", Summary: "Run as superuser", Hidden: true, run: (*Session).cmdSudo},
		{Name: "rm", Usage: "rm <file>", Summary: "Remove files", Hidden: true, run: (*Session).cmdRm},
	}
	commandIndex = make(map[string]*Command, len(commands))
	for _, c := range commands {
		commandIndex[c.Name] = c
	}
}

// Reference returns the command table in help order.
func Reference() []Command {
	out := make([]Command, len(commands))
	for i, c := range commands {
		out[i] = *c
		out[i].run = nil
	}
	return out
}

// ParseCommand splits a raw line on whitespace. The command name is lower
// cased; arguments are returned verbatim. An empty or blank line yields an
// empty name.
func ParseCommand(raw string) (name string, args []string) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToLower(fields[0]), fields[1:]
}

func helpText() string {
	var b strings.Builder
	b.WriteString("Available Commands:\n")
	b.WriteString(rule)
	for _, c := range commands {
		if c.Hidden {
			continue
		}
		usage := c.Usage
		if pad := 16 - len(usage); pad > 0 {
			usage += strings.Repeat(" ", pad)
		} else {
			usage += " "
		}
		fmt.Fprintf(&b, "\n  %s%s", usage, c.Summary)
	}
	b.WriteString("\n")
	b.WriteString(rule)
	return b.String()
}

func (s *Session) cmdHelp(_ []string) {
	s.println(LineOutput, helpText())
}

func (s *Session) cmdLs(_ []string) {
	children, err := s.tree.List(s.cwd)
	if err != nil {
		// cwd always resolves to a directory
		s.println(LineError, fmt.Sprintf("ls: %v", err))
		return
	}
	if len(children) == 0 {
		s.println(LineOutput, "Empty directory")
		return
	}
	entries := make([]string, len(children))
	for i, n := range children {
		if n.IsDir() {
			entries[i] = "📁 " + n.Name() + "/"
		} else {
			entries[i] = "📄 " + n.Name()
		}
	}
	s.println(LineOutput, strings.Join(entries, "\n"))
}

func (s *Session) cmdCd(args []string) {
	target := ""
	if len(args) > 0 {
		target = args[0]
	}
	switch target {
	case "", "~":
		s.cwd = []string{s.tree.RootName()}
	case "..":
		if len(s.cwd) > 1 {
			s.cwd = s.cwd[:len(s.cwd)-1 : len(s.cwd)-1]
		}
	default:
		next := append(slices.Clip(s.cwd), target)
		if _, err := s.tree.ResolveDir(next); err != nil {
			s.println(LineError, "cd: no such directory: "+target)
			return
		}
		s.cwd = next
	}
}

func (s *Session) cmdCat(args []string) {
	if len(args) == 0 {
		s.println(LineError, "cat: missing file operand")
		return
	}
	name := args[0]
	n, err := s.tree.Resolve(append(slices.Clip(s.cwd), name))
	if err != nil || n.IsDir() {
		s.println(LineError, fmt.Sprintf("cat: %s: No such file", name))
		return
	}
	s.println(LineOutput, n.Content())
}

func (s *Session) cmdPwd(_ []string) {
	s.println(LineOutput, "/"+strings.Join(s.cwd, "/"))
}

func (s *Session) cmdClear(_ []string) {
	s.lines = nil
}

func (s *Session) cmdWhoami(_ []string) {
	s.println(LineOutput, s.profile.Banners.Whoami)
}

func (s *Session) cmdGoto(args []string) {
	var key string
	if len(args) > 0 {
		key = args[0]
	}
	section, ok := s.profile.Section(key)
	if !ok {
		s.println(LineError, "goto: unknown section. Available: "+strings.Join(s.profile.SectionKeys(), ", "))
		return
	}
	s.println(LineSystem, fmt.Sprintf("Navigating to %s...", key))

	dest := Destination{Key: section.Key, Target: section.Target, Kind: DestRoute}
	if section.IsAnchor() {
		dest.Target = section.Anchor()
		dest.Kind = DestAnchor
	}
	s.timers.schedule(s.opts.NavigateDelay, func() {
		invokeEffect(s.opts.Effects, "navigate", func(fx Effects) { fx.Navigate(dest) })
	})
}

func (s *Session) cmdOpen(args []string) {
	var key string
	if len(args) > 0 {
		key = args[0]
	}
	link, ok := s.profile.Link(key)
	if !ok {
		s.println(LineError, "open: unknown link. Available: "+strings.Join(s.profile.LinkKeys(), ", "))
		return
	}
	s.println(LineSystem, fmt.Sprintf("Opening %s...", key))
	invokeEffect(s.opts.Effects, "open_external", func(fx Effects) { fx.OpenExternal(link.URL) })
}

func (s *Session) cmdDownload(args []string) {
	if len(args) == 0 || args[0] != "resume" {
		s.println(LineError, "download: try 'download resume'")
		return
	}
	s.println(LineSystem, "Downloading resume...")
	resume := s.profile.Resume
	invokeEffect(s.opts.Effects, "download", func(fx Effects) { fx.DownloadResource(resume.Path, resume.Filename) })
}

func (s *Session) cmdTheme(args []string) {
	if len(args) == 0 || (args[0] != string(ThemeDark) && args[0] != string(ThemeLight)) {
		s.println(LineError, "theme: use 'theme dark' or 'theme light'")
		return
	}
	theme := Theme(args[0])
	s.println(LineSystem, fmt.Sprintf("Switching to %s mode...", theme))
	invokeEffect(s.opts.Effects, "set_theme", func(fx Effects) { fx.SetTheme(theme) })
}

func (s *Session) cmdMatrix(_ []string) {
	s.println(LineSystem, "Toggling Matrix rain effect...")
	invokeEffect(s.opts.Effects, "toggle_ambient", func(fx Effects) { fx.ToggleAmbientEffect() })
}

func (s *Session) cmdExit(_ []string) {
	s.println(LineSystem, "Goodbye! 👋")
	s.timers.schedule(s.opts.ExitDelay, func() {
		invokeEffect(s.opts.Effects, "close", func(fx Effects) { fx.CloseTerminal() })
	})
}

func (s *Session) cmdSudo(_ []string) {
	s.println(LineOutput, s.profile.Banners.Sudo)
}

func (s *Session) cmdRm(args []string) {
	if slices.Contains(args, "-rf") && slices.Contains(args, "/") {
		s.println(LineError, "Nice try! 😏 But this terminal is read-only.")
		return
	}
	s.println(LineError, "rm: operation not permitted (read-only filesystem)")
}

func (s *Session) cmdHacktype(_ []string) {
	s.startRound()
}
