package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// priorityKeys is the fixed ordering used when a config file is generated;
// provider blocks follow in alphabetical order.
var priorityKeys = []string{
	"default",
	"language",
	"style",
	"emoji",
	"load_tokens_from",
	"prompt_file",
	"squash_prompt_file",
}

// Write serializes the configuration to path with the fixed key ordering,
// creating parent directories as needed.
func (c *Config) Write(path string) error {
	root := &yaml.Node{Kind: yaml.MappingNode}

	add := func(key string, value interface{}) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(value); err != nil {
			return fmt.Errorf("failed to encode config key %s: %w", key, err)
		}
		root.Content = append(root.Content, keyNode, valueNode)
		return nil
	}

	globals := map[string]interface{}{
		"default":            c.Default,
		"language":           c.Language,
		"style":              c.Style,
		"emoji":              c.Emoji,
		"load_tokens_from":   c.LoadTokensFrom,
		"prompt_file":        c.PromptFile,
		"squash_prompt_file": c.SquashPromptFile,
	}
	for _, key := range priorityKeys {
		if err := add(key, globals[key]); err != nil {
			return err
		}
	}

	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := add(name, c.Providers[name]); err != nil {
			return err
		}
	}

	data, err := yaml.Marshal(root)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
