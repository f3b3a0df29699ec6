package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Emoji is the tri-state emoji preference: instruct the model to use
// emojis, to avoid them, or say nothing at all.
type Emoji int8

const (
	EmojiNone Emoji = iota
	EmojiOn
	EmojiOff
)

// UnmarshalYAML accepts a boolean, null, or any casing of the string "none".
func (e *Emoji) UnmarshalYAML(node *yaml.Node) error {
	switch node.Tag {
	case "!!null":
		*e = EmojiNone
		return nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			*e = EmojiOn
		} else {
			*e = EmojiOff
		}
		return nil
	case "!!str":
		if strings.EqualFold(strings.TrimSpace(node.Value), "none") {
			*e = EmojiNone
			return nil
		}
	}
	return fmt.Errorf("emoji must be true, false, or none (got %q)", node.Value)
}

func (e Emoji) MarshalYAML() (interface{}, error) {
	switch e {
	case EmojiOn:
		return true, nil
	case EmojiOff:
		return false, nil
	default:
		return "none", nil
	}
}
