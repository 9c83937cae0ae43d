package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/styles"
)

// Document is the declarative rule file: extra styles and the rule list.
type Document struct {
	Styles map[string]styles.Style `yaml:"styles,omitempty"`
	Rules  []RuleSpec              `yaml:"rules"`
}

// RuleSpec is the declarative form of a Rule.
type RuleSpec struct {
	Name     string        `yaml:"name,omitempty"`
	Priority int           `yaml:"priority,omitempty"`
	Match    []MatcherSpec `yaml:"match"`
}

// MatcherSpec is the declarative form of a Matcher. Pattern fields are
// pointers so that an explicit empty pattern (kind: "") differs from an
// absent one.
type MatcherSpec struct {
	Kind     *string       `yaml:"kind,omitempty"`
	NotKind  *string       `yaml:"not_kind,omitempty"`
	Regex    *string       `yaml:"regex,omitempty"`
	NotRegex *string       `yaml:"not_regex,omitempty"`
	Contains []MatcherSpec `yaml:"contains,omitempty"`
	Hl       string        `yaml:"hl,omitempty"`
	HlRegex  *string       `yaml:"hlregex,omitempty"`
	Mod      string        `yaml:"mod,omitempty"`
}

// Str returns a pointer to s, for building specs in code.
func Str(s string) *string {
	return &s
}

// ErrNoRules is returned for a document without any rule.
var ErrNoRules = errors.New("no rules defined")

// Parse decodes a YAML rule document. Unknown keys are rejected so that a
// misspelt predicate does not silently match everything.
func Parse(data []byte) (Document, error) {
	var doc Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return doc, ErrNoRules
		}
		return doc, fmt.Errorf("parsing rules: %w", err)
	}

	// A key written without a value decodes to its zero value, which would
	// silently drop the predicate. Find those on the node tree.
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return doc, fmt.Errorf("parsing rules: %w", err)
	}
	if err := checkNullMatcherKeys(&root); err != nil {
		return doc, err
	}
	return doc, nil
}

// checkNullMatcherKeys rejects matcher keys whose value is null ("kind:",
// "contains: ~"), at any contains depth.
func checkNullMatcherKeys(root *yaml.Node) error {
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil
	}
	list := mappingValue(root.Content[0], "rules")
	if list == nil || list.Kind != yaml.SequenceNode {
		return nil
	}
	for i, rule := range list.Content {
		label := fmt.Sprintf("rule %d", i)
		if name := mappingValue(rule, "name"); name != nil && name.Kind == yaml.ScalarNode && name.Value != "" {
			label = fmt.Sprintf("rule %d (%s)", i, name.Value)
		}
		if err := checkNullSequence(mappingValue(rule, "match"), ""); err != nil {
			return fmt.Errorf("%s: %w", label, err)
		}
	}
	return nil
}

func checkNullSequence(seq *yaml.Node, prefix string) error {
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	for j, m := range seq.Content {
		if m.Kind != yaml.MappingNode {
			continue
		}
		where := fmt.Sprintf("%s%d", prefix, j)
		for k := 0; k+1 < len(m.Content); k += 2 {
			key, val := m.Content[k].Value, m.Content[k+1]
			if !isNull(val) {
				continue
			}
			if key == "contains" {
				return fmt.Errorf("matcher %s: contains needs at least one matcher", where)
			}
			return fmt.Errorf("matcher %s: %s needs a value", where, key)
		}
		if err := checkNullSequence(mappingValue(m, "contains"), where+".contains."); err != nil {
			return err
		}
	}
	return nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for k := 0; k+1 < len(m.Content); k += 2 {
		if m.Content[k].Value == key {
			return m.Content[k+1]
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.ShortTag() == "!!null"
}

// Load parses and compiles a YAML rule document. The document's styles are
// layered over a copy of base.
func Load(data []byte, base *styles.Registry) (*Set, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Compile(doc, base)
}

// LoadFile reads and compiles a rule file.
func LoadFile(path string, base *styles.Registry) (*Set, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the user-configured rules file
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	set, err := Load(data, base)
	if err != nil {
		log.ErrorErr(log.CatRules, "Failed to load rules", err, "path", path)
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info(log.CatRules, "Loaded rules", "path", path, "rules", set.Len(), "styles", set.Styles.Len())
	return set, nil
}

// Compile validates a document and compiles every regex it contains.
// Any configuration error fails the whole set.
func Compile(doc Document, base *styles.Registry) (*Set, error) {
	if len(doc.Rules) == 0 {
		return nil, ErrNoRules
	}

	reg := styles.NewRegistry()
	if base != nil {
		reg = base.Clone()
	}
	for _, name := range sortedStyleNames(doc.Styles) {
		if err := reg.Set(name, doc.Styles[name]); err != nil {
			return nil, err
		}
	}

	set := &Set{Styles: reg, Rules: make([]*Rule, 0, len(doc.Rules))}
	for i, rs := range doc.Rules {
		rule, err := compileRule(rs, reg)
		if err != nil {
			if rs.Name != "" {
				return nil, fmt.Errorf("rule %d (%s): %w", i, rs.Name, err)
			}
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		set.Rules = append(set.Rules, rule)
	}
	return set, nil
}

func compileRule(rs RuleSpec, reg *styles.Registry) (*Rule, error) {
	if len(rs.Match) == 0 {
		return nil, fmt.Errorf("match is required")
	}
	seq, err := compileSequence(rs.Match, reg, "")
	if err != nil {
		return nil, err
	}
	return &Rule{Name: rs.Name, Priority: rs.Priority, Sequence: seq}, nil
}

func compileSequence(specs []MatcherSpec, reg *styles.Registry, path string) (Sequence, error) {
	seq := make(Sequence, 0, len(specs))
	for i, ms := range specs {
		where := fmt.Sprintf("%s%d", path, i)
		m, err := compileMatcher(ms, reg, where)
		if err != nil {
			return nil, fmt.Errorf("matcher %s: %w", where, err)
		}
		seq = append(seq, m)
	}
	return seq, nil
}

func compileMatcher(ms MatcherSpec, reg *styles.Registry, where string) (*Matcher, error) {
	mod, err := ParseModifier(ms.Mod)
	if err != nil {
		return nil, err
	}
	m := &Matcher{Mod: mod, Hl: ms.Hl, Source: ms}

	if mod.Anchor() {
		if ms.hasPredicate() || ms.Hl != "" || ms.HlRegex != nil {
			return nil, fmt.Errorf("anchor %q cannot have predicates or highlights", ms.Mod)
		}
		return m, nil
	}
	if !ms.hasPredicate() {
		return nil, fmt.Errorf("at least one of kind, not_kind, regex, not_regex or contains is required")
	}

	if m.Kind, err = compileFull("kind", ms.Kind); err != nil {
		return nil, err
	}
	if m.NotKind, err = compileFull("not_kind", ms.NotKind); err != nil {
		return nil, err
	}
	if m.Regex, err = compileSearch("regex", ms.Regex); err != nil {
		return nil, err
	}
	if m.NotRegex, err = compileSearch("not_regex", ms.NotRegex); err != nil {
		return nil, err
	}
	if m.HlRegex, err = compileSearch("hlregex", ms.HlRegex); err != nil {
		return nil, err
	}

	if ms.Contains != nil {
		if len(ms.Contains) == 0 {
			return nil, fmt.Errorf("contains needs at least one matcher")
		}
		inner, err := compileSequence(ms.Contains, reg, where+".contains.")
		if err != nil {
			return nil, err
		}
		m.Contains = append(inner, endAnchor)
	}

	if m.HlRegex != nil && m.Hl == "" {
		return nil, fmt.Errorf("hlregex requires hl")
	}
	if m.Hl != "" && !reg.Has(m.Hl) {
		return nil, fmt.Errorf("hl: unknown style %q", m.Hl)
	}
	return m, nil
}

func (ms MatcherSpec) hasPredicate() bool {
	return ms.Kind != nil || ms.NotKind != nil || ms.Regex != nil || ms.NotRegex != nil || ms.Contains != nil
}

// compileFull compiles a pattern that must match the whole subject.
func compileFull(field string, pattern *string) (*regexp.Regexp, error) {
	if pattern == nil {
		return nil, nil
	}
	re, err := regexp.Compile("^(?:" + *pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return re, nil
}

func compileSearch(field string, pattern *string) (*regexp.Regexp, error) {
	if pattern == nil {
		return nil, nil
	}
	re, err := regexp.Compile(*pattern)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}
	return re, nil
}

func sortedStyleNames(m map[string]styles.Style) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
