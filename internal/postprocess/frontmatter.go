// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package postprocess

import (
	"bytes"
	"strings"

	"go.yaml.in/yaml/v3"
)

// NormalizeFrontmatter canonicalizes the YAML frontmatter block the OCR
// prompt asks models to emit for page hashtags. Tags are trimmed, stripped
// of a leading #, and deduplicated; the block is re-emitted with two-space
// indentation and a block-style list. Documents without a parseable leading
// frontmatter block pass through unchanged, same permissive policy as the
// delimiter pipeline. Idempotent.
func NormalizeFrontmatter(text string) string {
	body, rest, ok := splitFrontmatter(text)
	if !ok {
		return text
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(body), &doc); err != nil {
		return text
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return text
	}
	root := doc.Content[0]

	normalizeTagList(root)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return text
	}
	enc.Close()

	return "---\n" + buf.String() + "---\n" + rest
}

// splitFrontmatter separates a leading --- fenced YAML block from the rest
// of the document. rest keeps everything after the closing fence line.
func splitFrontmatter(text string) (body, rest string, ok bool) {
	if !strings.HasPrefix(text, "---\n") {
		return "", "", false
	}

	remainder := text[len("---\n"):]
	idx := strings.Index(remainder, "\n---")
	if idx < 0 {
		return "", "", false
	}

	after := remainder[idx+len("\n---"):]
	// The closing fence must occupy its own line.
	if after != "" && !strings.HasPrefix(after, "\n") {
		return "", "", false
	}
	rest = strings.TrimPrefix(after, "\n")

	return remainder[:idx+1], rest, true
}

// normalizeTagList cleans up the value of the tags key in place: forces
// block style, trims each entry, strips a leading #, and drops empties and
// duplicates while preserving order.
func normalizeTagList(mapping *yaml.Node) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if key.Value != "tags" || value.Kind != yaml.SequenceNode {
			continue
		}

		value.Style = 0
		seen := make(map[string]bool)
		var kept []*yaml.Node
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode {
				kept = append(kept, item)
				continue
			}
			tag := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(item.Value), "#"))
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			item.Value = tag
			item.Style = 0
			kept = append(kept, item)
		}
		value.Content = kept
	}
}
