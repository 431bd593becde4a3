// Package content holds the declarative site profile: the virtual
// filesystem, navigation tables, typing prompts and banner copy shown by the
// portfolio terminals.
package content

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jngonzales/portfolio/internal/vfs"
)

//go:embed profile.yaml
var defaultProfile []byte

type Owner struct {
	Name  string `yaml:"name"`
	User  string `yaml:"user"`
	Host  string `yaml:"host"`
	Title string `yaml:"title"`
}

type Banners struct {
	Logo    string `yaml:"logo"`
	Welcome string `yaml:"welcome"`
	Hint    string `yaml:"hint"`
	Whoami  string `yaml:"whoami"`
	Sudo    string `yaml:"sudo"`
}

// Section is a `goto` destination. Targets beginning with "/#" are in-page
// anchors, everything else is a route.
type Section struct {
	Key    string `yaml:"key"`
	Target string `yaml:"target"`
}

// IsAnchor reports whether the section scrolls within the home page.
func (s Section) IsAnchor() bool {
	return strings.HasPrefix(s.Target, "/#")
}

// Anchor returns the element id for anchor sections.
func (s Section) Anchor() string {
	return strings.TrimPrefix(s.Target, "/#")
}

type Link struct {
	Key string `yaml:"key"`
	URL string `yaml:"url"`
}

type Resume struct {
	Path     string `yaml:"path"`
	Filename string `yaml:"filename"`
}

type Hacktype struct {
	Prompts []string `yaml:"prompts"`
}

type CardCommand struct {
	Name  string   `yaml:"name"`
	Lines []string `yaml:"lines"`
}

type Card struct {
	Prompt    string        `yaml:"prompt"`
	Welcome   string        `yaml:"welcome"`
	Cleared   string        `yaml:"cleared"`
	Commands  []CardCommand `yaml:"commands"`
	MatrixOn  []string      `yaml:"matrix_on"`
	MatrixOff []string      `yaml:"matrix_off"`
}

// Profile is the complete fixed content of the site.
type Profile struct {
	Owner      Owner     `yaml:"owner"`
	Banners    Banners   `yaml:"banners"`
	Filesystem vfs.Entry `yaml:"filesystem"`
	Sections   []Section `yaml:"sections"`
	Links      []Link    `yaml:"links"`
	Resume     Resume    `yaml:"resume"`
	Hacktype   Hacktype  `yaml:"hacktype"`
	Card       Card      `yaml:"card"`

	tree *vfs.Tree
}

// Default returns the embedded profile.
func Default() (*Profile, error) {
	return Parse(defaultProfile)
}

// MustDefault is Default for package initialisation and tests.
func MustDefault() *Profile {
	p, err := Default()
	if err != nil {
		panic(fmt.Sprintf("embedded profile: %v", err))
	}
	return p
}

// Load reads a profile from path. An empty path yields the embedded one.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return Parse(b)
}

// Parse decodes and validates a YAML profile and builds its filesystem.
func Parse(b []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	tree, err := vfs.Build(p.Filesystem)
	if err != nil {
		return nil, fmt.Errorf("profile filesystem: %w", err)
	}
	p.tree = tree
	return &p, nil
}

func (p *Profile) validate() error {
	if p.Owner.User == "" || p.Owner.Host == "" {
		return fmt.Errorf("profile: owner user and host are required")
	}
	if len(p.Hacktype.Prompts) == 0 {
		return fmt.Errorf("profile: at least one hacktype prompt is required")
	}
	for _, prompt := range p.Hacktype.Prompts {
		if prompt == "" {
			return fmt.Errorf("profile: empty hacktype prompt")
		}
	}
	seen := make(map[string]bool)
	for _, s := range p.Sections {
		if s.Key == "" || s.Target == "" {
			return fmt.Errorf("profile: section needs key and target")
		}
		if seen["section:"+s.Key] {
			return fmt.Errorf("profile: duplicate section %q", s.Key)
		}
		seen["section:"+s.Key] = true
	}
	for _, l := range p.Links {
		if l.Key == "" || l.URL == "" {
			return fmt.Errorf("profile: link needs key and url")
		}
		if seen["link:"+l.Key] {
			return fmt.Errorf("profile: duplicate link %q", l.Key)
		}
		seen["link:"+l.Key] = true
	}
	for _, c := range p.Card.Commands {
		if c.Name != strings.ToLower(c.Name) {
			return fmt.Errorf("profile: card command %q must be lower case", c.Name)
		}
	}
	return nil
}

// Tree returns the immutable filesystem built from the profile.
func (p *Profile) Tree() *vfs.Tree {
	return p.tree
}

// Section looks up a goto destination by key.
func (p *Profile) Section(key string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// SectionKeys lists section keys in declaration order.
func (p *Profile) SectionKeys() []string {
	keys := make([]string, len(p.Sections))
	for i, s := range p.Sections {
		keys[i] = s.Key
	}
	return keys
}

// Link looks up an external link by key.
func (p *Profile) Link(key string) (Link, bool) {
	for _, l := range p.Links {
		if l.Key == key {
			return l, true
		}
	}
	return Link{}, false
}

// LinkKeys lists link keys in declaration order.
func (p *Profile) LinkKeys() []string {
	keys := make([]string, len(p.Links))
	for i, l := range p.Links {
		keys[i] = l.Key
	}
	return keys
}

// CardCommand looks up a bento card command.
func (p *Profile) CardCommand(name string) ([]string, bool) {
	for _, c := range p.Card.Commands {
		if c.Name == name {
			return c.Lines, true
		}
	}
	return nil, false
}

// FileContent returns the content of the file at the slash separated path
// below the filesystem root, e.g. "about.md" or "projects/linkhub.md".
func (p *Profile) FileContent(rel string) (string, bool) {
	path := []string{p.tree.RootName()}
	for _, seg := range strings.Split(strings.Trim(rel, "/"), "/") {
		if seg != "" {
			path = append(path, seg)
		}
	}
	n, err := p.tree.Resolve(path)
	if err != nil || n.IsDir() {
		return "", false
	}
	return n.Content(), true
}
