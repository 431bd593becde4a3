package terminal

import (
	"encoding/json"
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jngonzales/portfolio/internal/content"
	"github.com/jngonzales/portfolio/internal/logging"
)

func TestNewSession(t *testing.T) {
	h := newHarness(t)
	lines := h.s.Lines()
	if len(lines) != 3 {
		t.Fatalf("initial scrollback has %d lines, want 3", len(lines))
	}
	if lines[0].Kind != LineASCII || lines[1].Kind != LineSystem || lines[2].Kind != LineSystem {
		t.Errorf("unexpected initial kinds: %v %v %v", lines[0].Kind, lines[1].Kind, lines[2].Kind)
	}
	if got := h.s.Cwd(); !slices.Equal(got, []string{"home"}) {
		t.Errorf("Cwd() = %v, want [home]", got)
	}
	if got := h.s.Prompt(); got != "jn@portfolio:~/home$" {
		t.Errorf("Prompt() = %q", got)
	}
	if h.s.Mode() != ModeShell {
		t.Errorf("Mode() = %v, want shell", h.s.Mode())
	}
}

func TestSubmitEchoesInputFirst(t *testing.T) {
	inputs := []string{
		"help", "ls", "cd projects", "cd ..", "cat about.md", "cat nope", "pwd", "whoami",
		"goto about", "goto nowhere", "open github", "download resume", "theme dark",
		"matrix", "sudo rm", "rm -rf /", "foobar", "", "   ",
	}
	h := newHarness(t)
	for _, in := range inputs {
		prompt := h.s.Prompt()
		out := h.submitOutput(in)
		if len(out) == 0 {
			t.Fatalf("%q: no lines appended", in)
		}
		if out[0].Kind != LineInput || out[0].Text != in || out[0].Prompt != prompt {
			t.Errorf("%q: first line = %+v, want input echo with prompt %q", in, out[0], prompt)
		}
		for _, l := range out[1:] {
			if l.Kind == LineInput {
				t.Errorf("%q: extra input line %+v", in, l)
			}
		}
	}
}

func TestLineString(t *testing.T) {
	l := Line{Kind: LineInput, Text: "ls", Prompt: "jn@portfolio:~/home$"}
	if got := l.String(); got != "jn@portfolio:~/home$ ls" {
		t.Errorf("String() = %q", got)
	}
	if got := (Line{Kind: LineError, Text: "boom"}).String(); got != "boom" {
		t.Errorf("String() = %q", got)
	}
}

func TestSnapshotJSONUsesNames(t *testing.T) {
	h := newHarness(t)
	h.s.Submit("nope")

	data, err := json.Marshal(struct {
		Lines []Line     `json:"lines"`
		Game  GameStatus `json:"game"`
	}{h.s.Lines(), h.s.Game()})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"kind":"error"`) || !strings.Contains(string(data), `"phase":"idle"`) {
		t.Errorf("encoded snapshot = %s", data)
	}

	var back struct {
		Lines []Line     `json:"lines"`
		Game  GameStatus `json:"game"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !slices.Equal(back.Lines, h.s.Lines()) {
		t.Errorf("decoded lines differ: %+v", back.Lines)
	}

	var k LineKind
	if err := k.UnmarshalText([]byte("blink")); err == nil {
		t.Error("unknown kind decoded without error")
	}
}

func TestClearTruncatesScrollback(t *testing.T) {
	h := newHarness(t)
	h.s.Submit("ls")
	h.s.Submit("clear")
	if n := len(h.s.Lines()); n != 0 {
		t.Errorf("scrollback has %d lines after clear, want 0", n)
	}
	if got := h.s.History(); !slices.Equal(got, []string{"ls", "clear"}) {
		t.Errorf("History() = %v", got)
	}
}

func TestEmptyInputDoesNotTouchHistory(t *testing.T) {
	h := newHarness(t)
	out := h.submitOutput("   ")
	if len(out) != 1 {
		t.Errorf("empty input appended %d lines, want 1", len(out))
	}
	if len(h.s.History()) != 0 {
		t.Errorf("History() = %v, want empty", h.s.History())
	}
	if len(h.cmds) != 0 {
		t.Errorf("OnCommand called for empty input: %v", h.cmds)
	}
}

func TestCd(t *testing.T) {
	h := newHarness(t)

	out := h.submitOutput("cd ..")
	if len(out) != 1 || !slices.Equal(h.s.Cwd(), []string{"home"}) {
		t.Errorf("cd .. at root: cwd=%v lines=%v", h.s.Cwd(), out)
	}

	for _, dir := range []string{"projects", "skills"} {
		before := h.s.Cwd()
		h.s.Submit("cd " + dir)
		if got := h.s.Cwd(); !slices.Equal(got, append(slices.Clone(before), dir)) {
			t.Errorf("cd %s: cwd = %v", dir, got)
		}
		h.s.Submit("cd ..")
		if got := h.s.Cwd(); !slices.Equal(got, before) {
			t.Errorf("cd %s; cd ..: cwd = %v, want %v", dir, got, before)
		}
	}

	tests := []struct {
		arg  string
		want string
	}{
		{"nope", "cd: no such directory: nope"},
		{"about.md", "cd: no such directory: about.md"},
		{"Projects", "cd: no such directory: Projects"},
	}
	for _, tt := range tests {
		h.s.Submit("cd " + tt.arg)
		last := h.lastLine(t)
		if last.Kind != LineError || last.Text != tt.want {
			t.Errorf("cd %s: last line = %+v, want error %q", tt.arg, last, tt.want)
		}
		if !slices.Equal(h.s.Cwd(), []string{"home"}) {
			t.Errorf("cd %s changed cwd to %v", tt.arg, h.s.Cwd())
		}
	}

	h.s.Submit("cd projects")
	if h.s.Prompt() != "jn@portfolio:~/home/projects$" {
		t.Errorf("Prompt() = %q", h.s.Prompt())
	}
	h.s.Submit("pwd")
	if got := h.lastLine(t).Text; got != "/home/projects" {
		t.Errorf("pwd = %q", got)
	}
	h.s.Submit("cd ~")
	if !slices.Equal(h.s.Cwd(), []string{"home"}) {
		t.Errorf("cd ~: cwd = %v", h.s.Cwd())
	}
	h.s.Submit("cd skills")
	h.s.Submit("cd")
	if !slices.Equal(h.s.Cwd(), []string{"home"}) {
		t.Errorf("cd: cwd = %v", h.s.Cwd())
	}
}

func TestLs(t *testing.T) {
	h := newHarness(t)
	h.s.Submit("ls")
	want := "📄 about.md\n📁 projects/\n📁 skills/\n📄 resume.pdf\n📄 contact.json"
	if got := h.lastLine(t); got.Kind != LineOutput || got.Text != want {
		t.Errorf("ls = %q, want %q", got.Text, want)
	}

	h.s.Submit("cd projects")
	h.s.Submit("LS")
	if got := h.lastLine(t).Text; got != "📄 dealflow.md\n📄 portfolio.md\n📄 linkhub.md" {
		t.Errorf("ls in projects = %q", got)
	}
}

const tinyProfile = `
owner: {name: T, user: t, host: box}
banners: {welcome: hi}
filesystem:
  name: root
  children:
    - name: empty
      type: directory
    - name: notes.txt
      content: hello
hacktype:
  prompts: ["abcde"]
`

func TestLsEmptyDirectory(t *testing.T) {
	p, err := content.Parse([]byte(tinyProfile))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	h := newHarnessWithProfile(t, p)
	if n := len(h.s.Lines()); n != 1 {
		t.Errorf("initial scrollback has %d lines, want 1", n)
	}
	h.s.Submit("cd empty")
	h.s.Submit("ls")
	if got := h.lastLine(t).Text; got != "Empty directory" {
		t.Errorf("ls = %q, want Empty directory", got)
	}
	if h.s.Prompt() != "t@box:~/root/empty$" {
		t.Errorf("Prompt() = %q", h.s.Prompt())
	}
}

func TestCat(t *testing.T) {
	h := newHarness(t)

	about, _ := h.profile.FileContent("about.md")
	h.s.Submit("cat about.md")
	if got := h.lastLine(t); got.Kind != LineOutput || got.Text != about {
		t.Errorf("cat about.md = %q", got.Text)
	}

	h.s.Submit("cat resume.pdf")
	if got := h.lastLine(t).Text; got != "[Binary File: resume.pdf]\nDownload: /resume.pdf" {
		t.Errorf("cat resume.pdf = %q", got)
	}

	errs := map[string]string{
		"cat":          "cat: missing file operand",
		"cat projects": "cat: projects: No such file",
		"cat nope.txt": "cat: nope.txt: No such file",
		"cat About.md": "cat: About.md: No such file",
	}
	for in, want := range errs {
		h.s.Submit(in)
		if got := h.lastLine(t); got.Kind != LineError || got.Text != want {
			t.Errorf("%s: got %+v, want error %q", in, got, want)
		}
	}

	linkhub, _ := h.profile.FileContent("projects/linkhub.md")
	h.s.Submit("cd projects")
	h.s.Submit("cat linkhub.md")
	if got := h.lastLine(t).Text; got != linkhub {
		t.Errorf("cat linkhub.md = %q", got)
	}
}

func TestRmNeverMutates(t *testing.T) {
	h := newHarness(t)
	count := h.s.tree.Count()
	tests := []struct {
		in   string
		want string
	}{
		{"rm -rf /", "Nice try! 😏 But this terminal is read-only."},
		{"rm / -rf", "Nice try! 😏 But this terminal is read-only."},
		{"rm about.md", "rm: operation not permitted (read-only filesystem)"},
		{"rm -rf", "rm: operation not permitted (read-only filesystem)"},
		{"rm -r /", "rm: operation not permitted (read-only filesystem)"},
		{"rm", "rm: operation not permitted (read-only filesystem)"},
	}
	for _, tt := range tests {
		h.s.Submit(tt.in)
		if got := h.lastLine(t); got.Kind != LineError || got.Text != tt.want {
			t.Errorf("%s: got %+v, want %q", tt.in, got, tt.want)
		}
	}
	if h.s.tree.Count() != count {
		t.Errorf("tree changed size: %d -> %d", count, h.s.tree.Count())
	}
	h.s.Submit("cat about.md")
	if h.lastLine(t).Kind != LineOutput {
		t.Error("about.md no longer readable after rm")
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newHarness(t)
	for i, in := range []string{"foobar", "FooBar --x"} {
		out := h.submitOutput(in)
		if len(out) != 2 || out[1].Kind != LineError {
			t.Fatalf("%q: got %v", in, out)
		}
		token := strings.Fields(in)[0]
		if !strings.Contains(out[1].Text, token) || !strings.Contains(out[1].Text, "help") {
			t.Errorf("%q: error %q should name %q and hint help", in, out[1].Text, token)
		}
		if len(h.s.History()) != i+1 {
			t.Errorf("%q: history length %d, want %d", in, len(h.s.History()), i+1)
		}
		if !slices.Equal(h.s.Cwd(), []string{"home"}) {
			t.Errorf("%q: cwd changed to %v", in, h.s.Cwd())
		}
	}
	if !slices.Equal(h.cmds, []string{UnknownCommand, UnknownCommand}) {
		t.Errorf("OnCommand names = %v", h.cmds)
	}
	if h.s.Stats().Commands != 2 {
		t.Errorf("Stats().Commands = %d", h.s.Stats().Commands)
	}
}

func TestHelpListsVisibleCommands(t *testing.T) {
	h := newHarness(t)
	h.s.Submit("HELP")
	text := h.lastLine(t).Text
	for _, want := range []string{
		"Available Commands:",
		"  ls              List directory contents",
		"  download resume Download resume PDF",
		"  theme <dark|light> Switch theme",
		"  hacktype        🎮 Start typing game!",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("help missing %q", want)
		}
	}
	for _, hidden := range []string{"sudo", "rm "} {
		if strings.Contains(text, hidden) {
			t.Errorf("help should not list %q", hidden)
		}
	}
	if len(Reference()) != len(commands) {
		t.Errorf("Reference() has %d entries", len(Reference()))
	}
}

func TestGotoDelaysNavigation(t *testing.T) {
	h := newHarness(t)

	h.s.Submit("goto projects")
	if got := h.lastLine(t); got.Kind != LineSystem || got.Text != "Navigating to projects..." {
		t.Errorf("goto notice = %+v", got)
	}
	h.sched.Advance(499 * time.Millisecond)
	if len(h.fx.calls) != 0 {
		t.Fatalf("navigation fired early: %v", h.fx.calls)
	}
	h.sched.Advance(time.Millisecond)
	if !slices.Equal(h.fx.calls, []string{"navigate anchor projects"}) {
		t.Errorf("calls = %v", h.fx.calls)
	}

	h.fx.calls = nil
	h.s.Submit("goto blog")
	h.s.Submit("goto home")
	h.sched.Advance(time.Second)
	if !slices.Equal(h.fx.calls, []string{"navigate route /blog", "navigate route /"}) {
		t.Errorf("calls = %v", h.fx.calls)
	}

	for _, in := range []string{"goto nowhere", "goto"} {
		h.s.Submit(in)
		want := "goto: unknown section. Available: home, about, projects, contact, blog"
		if got := h.lastLine(t); got.Kind != LineError || got.Text != want {
			t.Errorf("%s: got %+v", in, got)
		}
	}
	if h.s.Pending() != 0 {
		t.Errorf("Pending() = %d after errors", h.s.Pending())
	}
}

func TestImmediateEffects(t *testing.T) {
	tests := []struct {
		in     string
		notice string
		call   string
	}{
		{"open github", "Opening github...", "open https://github.com/jngonzales"},
		{"download resume", "Downloading resume...", "download /resume.pdf JN_Gonzales_Resume.pdf"},
		{"theme light", "Switching to light mode...", "theme light"},
		{"matrix", "Toggling Matrix rain effect...", "ambient"},
	}
	for _, tt := range tests {
		h := newHarness(t)
		h.s.Submit(tt.in)
		if got := h.lastLine(t); got.Kind != LineSystem || got.Text != tt.notice {
			t.Errorf("%s: notice = %+v", tt.in, got)
		}
		if !slices.Equal(h.fx.calls, []string{tt.call}) {
			t.Errorf("%s: calls = %v", tt.in, h.fx.calls)
		}
	}
}

func TestEffectArgumentErrors(t *testing.T) {
	tests := map[string]string{
		"open myspace":    "open: unknown link. Available: github, linkedin, twitter",
		"download cv":     "download: try 'download resume'",
		"download":        "download: try 'download resume'",
		"theme solarized": "theme: use 'theme dark' or 'theme light'",
		"theme":           "theme: use 'theme dark' or 'theme light'",
	}
	h := newHarness(t)
	for in, want := range tests {
		h.s.Submit(in)
		if got := h.lastLine(t); got.Kind != LineError || got.Text != want {
			t.Errorf("%s: got %+v, want %q", in, got, want)
		}
	}
	if len(h.fx.calls) != 0 {
		t.Errorf("effects invoked on errors: %v", h.fx.calls)
	}
}

func TestExitClosesAfterDelay(t *testing.T) {
	h := newHarness(t)
	h.s.Submit("exit")
	if got := h.lastLine(t).Text; got != "Goodbye! 👋" {
		t.Errorf("farewell = %q", got)
	}
	if len(h.fx.calls) != 0 {
		t.Fatal("close fired immediately")
	}
	h.sched.Advance(500 * time.Millisecond)
	if !slices.Equal(h.fx.calls, []string{"close"}) {
		t.Errorf("calls = %v", h.fx.calls)
	}
}

func TestCloseCancelsPendingEffects(t *testing.T) {
	h := newHarness(t)
	h.s.Submit("goto about")
	h.s.Submit("exit")
	if h.s.Pending() != 2 {
		t.Fatalf("Pending() = %d, want 2", h.s.Pending())
	}
	h.s.Close()
	h.sched.Advance(time.Minute)
	if len(h.fx.calls) != 0 {
		t.Errorf("effects fired after Close: %v", h.fx.calls)
	}
	if h.s.Pending() != 0 || !h.s.Closed() {
		t.Errorf("Pending() = %d Closed() = %v", h.s.Pending(), h.s.Closed())
	}

	n := len(h.s.Lines())
	h.s.Submit("ls")
	h.s.SetInput("x")
	h.s.Enter()
	if len(h.s.Lines()) != n || h.s.Input() != "" {
		t.Error("closed session accepted input")
	}
}

func TestHistoryRecall(t *testing.T) {
	h := newHarness(t)
	h.s.RecallPrevious()
	if h.s.Input() != "" {
		t.Errorf("recall on empty history set input %q", h.s.Input())
	}

	for _, cmd := range []string{"A", "B", "C"} {
		h.s.SetInput(cmd)
		h.s.Enter()
	}

	for _, want := range []string{"C", "B", "A", "A"} {
		h.s.RecallPrevious()
		if got := h.s.Input(); got != want {
			t.Errorf("RecallPrevious() input = %q, want %q", got, want)
		}
	}
	h.s.RecallNext()
	if got := h.s.Input(); got != "B" {
		t.Errorf("RecallNext() input = %q, want B", got)
	}
	h.s.RecallNext()
	h.s.RecallNext()
	if got := h.s.Input(); got != "" {
		t.Errorf("RecallNext() past newest input = %q, want empty", got)
	}

	h.s.RecallPrevious()
	h.s.RecallPrevious()
	h.s.SetInput("edited")
	h.s.RecallPrevious()
	if got := h.s.Input(); got != "C" {
		t.Errorf("after edit RecallPrevious() = %q, want C", got)
	}

	h.s.Submit("ls")
	h.s.RecallPrevious()
	if got := h.s.Input(); got != "ls" {
		t.Errorf("after submit RecallPrevious() = %q, want ls", got)
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		cwd  string
		in   string
		want string
	}{
		{"", "cat ab", "cat about.md"},
		{"", "cd p", "cd projects"},
		{"", "cd PRO", "cd projects"},
		{"", "s", "skills"},
		{"", "  cat  re", "  cat  resume.pdf"},
		{"", "cat x", "cat x"},
		{"", "cat ", "cat "},
		{"projects", "cat l", "cat linkhub.md"},
		{"projects", "cat d", "cat dealflow.md"},
		{"projects", "cat ab", "cat ab"},
	}
	for _, tt := range tests {
		h := newHarness(t)
		if tt.cwd != "" {
			h.s.Submit("cd " + tt.cwd)
		}
		h.s.SetInput(tt.in)
		h.s.Complete()
		if got := h.s.Input(); got != tt.want {
			t.Errorf("complete %q in %q = %q, want %q", tt.in, tt.cwd, got, tt.want)
		}
	}
}

func TestTypingEdits(t *testing.T) {
	h := newHarness(t)
	h.typeString("pwdé")
	h.s.Backspace()
	if got := h.s.Input(); got != "pwd" {
		t.Errorf("Input() = %q", got)
	}
	h.s.Enter()
	if got := h.lastLine(t).Text; got != "/home" {
		t.Errorf("pwd = %q", got)
	}
	if h.s.Input() != "" {
		t.Errorf("input not cleared after Enter: %q", h.s.Input())
	}
}

func TestClearScreen(t *testing.T) {
	h := newHarness(t)
	h.s.Submit("ls")
	h.s.ClearScreen()
	if n := len(h.s.Lines()); n != 0 {
		t.Errorf("scrollback has %d lines", n)
	}
	if got := h.s.History(); !slices.Equal(got, []string{"ls"}) {
		t.Errorf("History() = %v", got)
	}
}

type panickingEffects struct{ NopEffects }

func (panickingEffects) OpenExternal(string) { panic("window blocked") }

func TestPanickingEffectIsRecovered(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	logging.Replace(zap.New(core))
	defer logging.InitDefault()

	sched := newFakeScheduler()
	s := New(Options{Profile: content.MustDefault(), Effects: panickingEffects{}, Scheduler: sched})
	s.Submit("open github")
	s.Submit("pwd")

	if got := s.Lines()[len(s.Lines())-1].Text; got != "/home" {
		t.Errorf("session unusable after panic, last line %q", got)
	}
	entries := logs.FilterMessage("terminal effect panicked").All()
	if len(entries) != 1 || entries[0].ContextMap()["effect"] != "open_external" {
		t.Errorf("unexpected log entries: %v", entries)
	}
}
