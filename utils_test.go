package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanClipboardText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  hello  ", "hello"},
		{"line endings and tabs", "a\r\nb\tc\r", "a\nb c"},
		{"control characters", "a\x00b\x07c", "abc"},
		{
			"rtf",
			`{\rtf1\ansi{\fonttbl\f0\fswiss Helvetica;}{\colortbl;\red255\green0\blue0;}\f0\pard Hello \b World\b0\par Caf\'e9 \{x\}}`,
			"Hello World\nCafé {x}",
		},
		{
			"html",
			`<html><body><p>One &amp; two</p><div>Three<br>Four</div></body></html>`,
			"One & two\nThree\nFour",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanClipboardText(tt.in))
		})
	}
}

func TestClipboardLines(t *testing.T) {
	assert.Equal(t, []string{"one", "two"}, clipboardLines("  one\n\n two \n"))
	assert.Empty(t, clipboardLines(" \n\t\n"))
}

func TestFileBaseName(t *testing.T) {
	assert.Equal(t, "a_b_ c", fileBaseName("a/b: c"))
	assert.Equal(t, "mindmap", fileBaseName("   "))
	assert.Equal(t, "Roadmap", fileBaseName("Roadmap"))
}
