package requests

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const (
	literalNone  = "None"
	literalTrue  = "True"
	literalFalse = "False"
)

// ParseMetadata turns request metadata into a mapping. Mappings pass through;
// text holding a literal mapping such as {'a': 1, 'tags': ['x'], 'ok': True}
// is decoded; anything else, malformed text included, yields an empty mapping.
func ParseMetadata(raw any) map[string]any {
	switch typed := raw.(type) {
	case map[string]any:
		return typed
	case string:
		parsed, ok := parseLiteralMapping(typed)
		if !ok {
			return map[string]any{}
		}
		return parsed
	default:
		return map[string]any{}
	}
}

// String literals are decoded first and rewritten as YAML double-quoted
// scalars, so the flow-mapping grammar of yaml.v3 covers the rest of the
// literal syntax; scalars are then checked against the literal forms.
func parseLiteralMapping(text string) (map[string]any, bool) {
	requoted, requoteOK := requoteStringLiterals(text)
	if !requoteOK {
		return nil, false
	}
	var document yaml.Node
	if err := yaml.Unmarshal([]byte(requoted), &document); err != nil {
		return nil, false
	}
	if document.Kind != yaml.DocumentNode || len(document.Content) != 1 {
		return nil, false
	}
	root := document.Content[0]
	if root.Kind != yaml.MappingNode || root.Style&yaml.FlowStyle == 0 {
		return nil, false
	}
	value, ok := literalValue(root)
	if !ok {
		return nil, false
	}
	return value.(map[string]any), true
}

func literalValue(node *yaml.Node) (any, bool) {
	switch node.Kind {
	case yaml.MappingNode:
		mapping := make(map[string]any, len(node.Content)/2)
		for index := 0; index+1 < len(node.Content); index += 2 {
			key, keyOK := literalValue(node.Content[index])
			if !keyOK {
				return nil, false
			}
			switch key.(type) {
			case map[string]any, []any:
				return nil, false
			}
			value, valueOK := literalValue(node.Content[index+1])
			if !valueOK {
				return nil, false
			}
			mapping[fmt.Sprint(key)] = value
		}
		return mapping, true
	case yaml.SequenceNode:
		items := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			item, ok := literalValue(child)
			if !ok {
				return nil, false
			}
			items = append(items, item)
		}
		return items, true
	case yaml.ScalarNode:
		return literalScalar(node)
	default:
		return nil, false
	}
}

func literalScalar(node *yaml.Node) (any, bool) {
	if node.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
		return node.Value, true
	}
	switch node.Value {
	case literalNone:
		return nil, true
	case literalTrue:
		return true, true
	case literalFalse:
		return false, true
	}
	if integer, intErr := strconv.ParseInt(node.Value, 10, 64); intErr == nil {
		return integer, true
	}
	if !strings.ContainsAny(node.Value, "0123456789") {
		return nil, false
	}
	if float, floatErr := strconv.ParseFloat(node.Value, 64); floatErr == nil {
		return float, true
	}
	return nil, false
}

var simpleEscapes = map[rune]rune{
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
	'a':  '\a',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'v':  '\v',
}

var hexEscapeWidths = map[rune]int{
	'x': 2,
	'u': 4,
	'U': 8,
}

const maxOctalEscapeDigits = 3

// requoteStringLiterals replaces every single- or double-quoted string
// literal with a double-quoted scalar holding the decoded text. An
// unterminated literal or a broken escape fails the whole text.
func requoteStringLiterals(text string) (string, bool) {
	var builder strings.Builder
	runes := []rune(text)
	for index := 0; index < len(runes); index++ {
		current := runes[index]
		if current != '\'' && current != '"' {
			builder.WriteRune(current)
			continue
		}
		decoded, closingIndex, ok := decodeStringLiteral(runes, index)
		if !ok {
			return "", false
		}
		builder.WriteString(strconv.Quote(decoded))
		index = closingIndex
	}
	return builder.String(), true
}

// decodeStringLiteral reads the literal opened at start and returns its text
// and the index of the closing quote. Unknown escapes keep their backslash.
func decodeStringLiteral(runes []rune, start int) (string, int, bool) {
	quote := runes[start]
	var decoded strings.Builder
	for index := start + 1; index < len(runes); index++ {
		current := runes[index]
		switch current {
		case quote:
			return decoded.String(), index, true
		case '\n':
			return "", 0, false
		case '\\':
		default:
			decoded.WriteRune(current)
			continue
		}

		index++
		if index >= len(runes) {
			return "", 0, false
		}
		escaped := runes[index]
		if escaped == '\n' {
			continue
		}
		if replacement, simple := simpleEscapes[escaped]; simple {
			decoded.WriteRune(replacement)
			continue
		}
		if width, hex := hexEscapeWidths[escaped]; hex {
			value, ok := parseEscapeDigits(runes, index+1, width, 16)
			if !ok || !utf8.ValidRune(value) {
				return "", 0, false
			}
			decoded.WriteRune(value)
			index += width
			continue
		}
		if escaped >= '0' && escaped <= '7' {
			width := 1
			for width < maxOctalEscapeDigits && index+width < len(runes) && runes[index+width] >= '0' && runes[index+width] <= '7' {
				width++
			}
			value, _ := parseEscapeDigits(runes, index, width, 8)
			decoded.WriteRune(value)
			index += width - 1
			continue
		}
		decoded.WriteRune('\\')
		decoded.WriteRune(escaped)
	}
	return "", 0, false
}

func parseEscapeDigits(runes []rune, start int, digits int, base int) (rune, bool) {
	end := start + digits
	if end > len(runes) {
		return 0, false
	}
	value, err := strconv.ParseUint(string(runes[start:end]), base, 32)
	if err != nil {
		return 0, false
	}
	return rune(value), true
}
