package rules

import (
	_ "embed"

	"github.com/zjrosen/cmdhl/internal/styles"
)

//go:embed default_rules.yaml
var defaultRules []byte

// DefaultRules returns the built-in rule file contents.
func DefaultRules() []byte {
	return append([]byte(nil), defaultRules...)
}

// Default compiles the built-in rules against the given style registry.
func Default(reg *styles.Registry) (*Set, error) {
	return Load(defaultRules, reg)
}
