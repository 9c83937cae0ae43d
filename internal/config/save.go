package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/styles"
)

// SaveThemePreset updates theme.preset in the config file.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveThemePreset(configPath, preset string) error {
	if _, ok := styles.Presets[preset]; !ok {
		return fmt.Errorf("unknown theme preset %q", preset)
	}
	return setScalar(configPath, []string{"theme", "preset"}, preset)
}

// SaveRulesFile updates rules_file in the config file.
func SaveRulesFile(configPath, rulesFile string) error {
	return setScalar(configPath, []string{"rules_file"}, rulesFile)
}

// setScalar writes value at the key path, creating intermediate mappings
// as needed.
func setScalar(configPath string, keys []string, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("parsing config: top level is not a mapping")
	}

	node := root
	for i, key := range keys {
		last := i == len(keys)-1
		child := lookup(node, key)
		switch {
		case child == nil && last:
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: key},
				&yaml.Node{Kind: yaml.ScalarNode, Value: value},
			)
		case child == nil:
			child = &yaml.Node{Kind: yaml.MappingNode}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: key}, child)
			node = child
		case last:
			child.Kind = yaml.ScalarNode
			child.Tag = ""
			child.Value = value
			child.Content = nil
		default:
			if child.Kind != yaml.MappingNode {
				child.Kind = yaml.MappingNode
				child.Tag = ""
				child.Value = ""
				child.Content = nil
			}
			node = child
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(configPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	log.Debug(log.CatConfig, "Saved config value", "path", configPath, "key", keys, "value", value)
	return nil
}

// lookup returns the value node for key in a mapping node.
func lookup(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(m.Content)-1; i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}
