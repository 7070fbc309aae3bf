package token

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Decode reads a token document. Both JSON and YAML are accepted, either as a
// bare list or under a top-level "tokens" key. Each entry is a [CLASS, lexeme]
// pair or a {class, lexeme} mapping:
//
//	tokens:
//	  - [K_SELECT, SELECT]
//	  - {class: WS, lexeme: " "}
//	  - [ID, name]
func Decode(data []byte) ([]Token, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode token document: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var tokens []Token
		if err := doc.Decode(&tokens); err != nil {
			return nil, err
		}
		return tokens, nil
	case yaml.MappingNode:
		var wrapper struct {
			Tokens []Token `yaml:"tokens"`
		}
		if err := doc.Decode(&wrapper); err != nil {
			return nil, err
		}
		return wrapper.Tokens, nil
	default:
		return nil, fmt.Errorf("line %d: token document must be a list or a mapping", doc.Line)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Token) UnmarshalYAML(value *yaml.Node) error {
	var class, lexeme string
	switch value.Kind {
	case yaml.SequenceNode:
		if len(value.Content) != 2 {
			return fmt.Errorf("line %d: token pair must have 2 elements, got %d", value.Line, len(value.Content))
		}
		class, lexeme = value.Content[0].Value, value.Content[1].Value
	case yaml.MappingNode:
		var entry struct {
			Class  string `yaml:"class"`
			Lexeme string `yaml:"lexeme"`
		}
		if err := value.Decode(&entry); err != nil {
			return err
		}
		class, lexeme = entry.Class, entry.Lexeme
	default:
		return fmt.Errorf("line %d: token must be a pair or a mapping", value.Line)
	}

	sym, err := Lookup(class)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	t.Class = sym
	t.Lexeme = lexeme
	return nil
}

// MarshalYAML implements yaml.Marshaler, writing the compact pair form.
func (t Token) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{
		Kind:  yaml.SequenceNode,
		Style: yaml.FlowStyle,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: t.Class.String()},
			{Kind: yaml.ScalarNode, Style: yaml.DoubleQuotedStyle, Value: t.Lexeme},
		},
	}
	return node, nil
}
