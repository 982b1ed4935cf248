// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func stripped(input string, width int) string {
	return ansi.Strip(Markdown(input, DefaultTheme, width))
}

func raw(input string, width int) string {
	return Markdown(input, DefaultTheme, width)
}

func TestMarkdown_Empty(t *testing.T) {
	if result := Markdown("", DefaultTheme, 80); result != "" {
		t.Errorf("expected empty string for empty input, got %q", result)
	}
}

func TestMarkdown_ParagraphReflow(t *testing.T) {
	input := "This is a paragraph that was\nwritten at a narrow width with\nhard line breaks embedded in it."
	result := stripped(input, 120)

	if strings.Contains(result, "\n") {
		t.Errorf("expected no newlines at width=120, got:\n%s", result)
	}
	if !strings.Contains(result, "was written at") {
		t.Errorf("expected soft break converted to space, got:\n%s", result)
	}
}

func TestMarkdown_ParagraphReflowNarrow(t *testing.T) {
	input := "This is a paragraph that should be wrapped at the target width."
	result := stripped(input, 30)

	for _, line := range strings.Split(result, "\n") {
		if len(line) > 30 {
			t.Errorf("line exceeds width 30: %q (len=%d)", line, len(line))
		}
	}
}

func TestMarkdown_Heading(t *testing.T) {
	input := "# Heading One\n\n## Heading Two"
	result := stripped(input, 80)

	if !strings.Contains(result, "Heading One") || !strings.Contains(result, "Heading Two") {
		t.Errorf("missing heading text, got:\n%s", result)
	}
	if raw(input, 80) == result {
		t.Error("expected ANSI styling in heading output")
	}
}

func TestMarkdown_Emphasis(t *testing.T) {
	input := "This is *italic* and **bold** text."
	result := stripped(input, 80)

	if !strings.Contains(result, "italic") || !strings.Contains(result, "bold") {
		t.Errorf("missing emphasized text, got:\n%s", result)
	}
	if raw(input, 80) == result {
		t.Error("expected ANSI styling in emphasis output")
	}
}

func TestMarkdown_CodeSpan(t *testing.T) {
	result := stripped("Use the `DispatchOnce` function.", 80)
	if !strings.Contains(result, "DispatchOnce") {
		t.Error("missing code span text")
	}
}

func TestMarkdown_FencedCodeBlockPreservesContent(t *testing.T) {
	input := "Text before.\n\n```go\nfunc main() {\n\tfmt.Println(\"hi\")\n}\n```\n\nText after."
	result := stripped(input, 80)

	if !strings.Contains(result, "func main()") {
		t.Error("missing code block content")
	}
	if !strings.Contains(result, "Text before.") || !strings.Contains(result, "Text after.") {
		t.Error("missing surrounding text")
	}
}

func TestMarkdown_FencedCodeBlockHighlighted(t *testing.T) {
	rawResult := raw("```go\npackage main\n```", 80)
	if !strings.Contains(rawResult, "\x1b[") {
		t.Error("expected ANSI escapes from syntax highlighting")
	}
}

func TestMarkdown_UnorderedList(t *testing.T) {
	result := stripped("- Item one\n- Item two", 80)
	if !strings.Contains(result, "Item one") || !strings.Contains(result, "Item two") {
		t.Errorf("missing list items, got:\n%s", result)
	}
}

func TestMarkdown_Blockquote(t *testing.T) {
	result := stripped("> Queued for delivery.", 80)
	if !strings.Contains(result, "│") {
		t.Errorf("expected blockquote prefix, got:\n%s", result)
	}
	if !strings.Contains(result, "Queued for delivery.") {
		t.Error("missing blockquote content")
	}
}

func TestMarkdown_Link(t *testing.T) {
	result := stripped("See [the log](https://example.com) for details.", 80)
	if !strings.Contains(result, "the log") {
		t.Error("missing link text")
	}
	if !strings.Contains(result, "(https://example.com)") {
		t.Errorf("missing link URL, got:\n%s", result)
	}
}

func TestMarkdown_ThematicBreak(t *testing.T) {
	result := stripped("Before.\n\n---\n\nAfter.", 40)
	if !strings.Contains(result, "───") {
		t.Errorf("expected horizontal rule, got:\n%s", result)
	}
}

func TestMarkdown_Table(t *testing.T) {
	input := "| Agent | Status |\n|------|-----|\n| bob | fresh |\n| carol | stale |"
	result := stripped(input, 80)

	if !strings.Contains(result, "Agent") || !strings.Contains(result, "bob") || !strings.Contains(result, "carol") {
		t.Errorf("missing table content, got:\n%s", result)
	}
}
