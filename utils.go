package main

import (
	"html"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
)

func (m *model) getCurrentBuffer() *Buffer {
	if len(m.buffers) == 0 || m.currentBufferIndex < 0 || m.currentBufferIndex >= len(m.buffers) {
		return nil
	}
	return &m.buffers[m.currentBufferIndex]
}

func (m *model) getDocument() *Document {
	if buf := m.getCurrentBuffer(); buf != nil {
		return buf.doc
	}
	return nil
}

// openBuffer wraps a map in a document and makes it the current buffer.
// A map that is already open is switched to instead.
func (m *model) openBuffer(mm *Map, state ViewportState) *Document {
	for i, buf := range m.buffers {
		if buf.doc.Map.ID == mm.ID {
			m.currentBufferIndex = i
			return buf.doc
		}
	}
	changes := &changeTracker{}
	doc := NewDocument(mm, m.config, m.estimator, changes, m.logger)
	doc.Viewport.Restore(state)
	m.buffers = append(m.buffers, Buffer{doc: doc, changes: changes, saved: true})
	m.currentBufferIndex = len(m.buffers) - 1
	m.syncOrigin()
	return doc
}

func (m *model) closeBuffer(index int) {
	if index < 0 || index >= len(m.buffers) {
		return
	}
	m.buffers = append(m.buffers[:index], m.buffers[index+1:]...)
	if m.currentBufferIndex >= len(m.buffers) {
		m.currentBufferIndex = len(m.buffers) - 1
	}
	if m.currentBufferIndex < 0 {
		m.currentBufferIndex = 0
	}
	m.syncOrigin()
}

func (m *model) switchBuffer(step int) {
	if len(m.buffers) < 2 {
		return
	}
	m.currentBufferIndex = (m.currentBufferIndex + step + len(m.buffers)) % len(m.buffers)
}

// barRows is the number of screen rows above the canvas.
func (m *model) barRows() int {
	if len(m.buffers) > 1 {
		return 1
	}
	return 0
}

// canvasSize is the drawable area between the buffer bar and the status line.
func (m *model) canvasSize() (int, int) {
	w := m.width
	h := m.height - m.barRows() - 1
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}

func (m *model) canvasCenter() Point {
	w, h := m.canvasSize()
	return Point{X: float64(w) / 2, Y: float64(h)/2 + float64(m.barRows())}
}

// syncOrigin keeps every viewport's container origin below the buffer bar,
// so terminal mouse cells can be passed through as screen points.
func (m *model) syncOrigin() {
	origin := Point{Y: float64(m.barRows())}
	for _, buf := range m.buffers {
		buf.doc.Viewport.Origin = origin
	}
}

func (m *model) saveBuffer(buf *Buffer) error {
	if err := m.store.Save(buf.doc.Map, buf.doc.Viewport); err != nil {
		return err
	}
	buf.saved = true
	buf.changes.dirty = false
	return nil
}

// flushChanges drains the change trackers after an update. Content changes
// are saved right away when autosave is on.
func (m *model) flushChanges() {
	for i := range m.buffers {
		buf := &m.buffers[i]
		buf.changes.moved = false
		if !buf.changes.dirty {
			continue
		}
		buf.saved = false
		if !m.config.Autosave {
			buf.changes.dirty = false
			continue
		}
		if err := m.saveBuffer(buf); err != nil {
			m.logger.Error("autosave failed", "map", buf.doc.Map.ID, "error", err)
			m.errorMessage = "autosave failed: " + err.Error()
			buf.changes.dirty = false
		}
	}
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "<") &&
		(strings.Contains(t, "<html") || strings.Contains(t, "<body") || strings.Contains(t, "<div") || strings.Contains(t, "<p"))
}

// cleanClipboardText turns rich clipboard content into plain lines.
func cleanClipboardText(text string) string {
	switch {
	case isRTF(text):
		text = stripRTF(text)
	case isHTML(text):
		text = stripHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t':
			result.WriteRune(' ')
		case r == '\n' || r >= 32:
			result.WriteRune(r)
		}
	}
	return strings.TrimSpace(result.String())
}

// rtfDestinations are groups whose content is never document text.
var rtfDestinations = []string{"\\fonttbl", "\\colortbl", "\\stylesheet", "\\info", "\\*"}

// stripRTF drops control words, control symbols and destination groups,
// keeping \par and \line as newlines and decoding \'hh escapes.
func stripRTF(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '{' {
			if skipRTFGroup(runes, i) {
				i = matchingBrace(runes, i)
			}
			continue
		}
		if r == '}' {
			continue
		}
		if r != '\\' {
			if r != '\n' && r != '\r' {
				result.WriteRune(r)
			}
			continue
		}
		if i+1 >= len(runes) {
			break
		}
		next := runes[i+1]
		switch {
		case next == '\\' || next == '{' || next == '}':
			result.WriteRune(next)
			i++
		case next == '\'' && i+3 < len(runes):
			if v, err := strconv.ParseUint(string(runes[i+2:i+4]), 16, 8); err == nil {
				result.WriteRune(rune(v))
			}
			i += 3
		case isASCIILetter(next):
			j := i + 1
			for j < len(runes) && isASCIILetter(runes[j]) {
				j++
			}
			word := string(runes[i+1 : j])
			for j < len(runes) && (runes[j] == '-' || (runes[j] >= '0' && runes[j] <= '9')) {
				j++
			}
			if j < len(runes) && runes[j] == ' ' {
				j++
			}
			if word == "par" || word == "line" {
				result.WriteRune('\n')
			}
			i = j - 1
		default:
			i++
		}
	}
	return result.String()
}

func skipRTFGroup(runes []rune, open int) bool {
	rest := string(runes[open+1 : min(open+12, len(runes))])
	for _, d := range rtfDestinations {
		if strings.HasPrefix(rest, d) {
			return true
		}
	}
	return false
}

// matchingBrace returns the index of the brace closing the group opened at
// open, or the last index when the group is unterminated.
func matchingBrace(runes []rune, open int) int {
	depth := 0
	for i := open; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(runes) - 1
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// stripHTML removes tags, treating block-level closes as line breaks.
func stripHTML(text string) string {
	var result strings.Builder
	var tag strings.Builder
	inTag := false
	for _, r := range text {
		switch {
		case r == '<':
			inTag = true
			tag.Reset()
		case r == '>' && inTag:
			inTag = false
			fields := strings.Fields(strings.ToLower(tag.String()))
			if len(fields) == 0 {
				continue
			}
			switch fields[0] {
			case "br", "br/", "/p", "/div", "/li", "/h1", "/h2", "/h3":
				result.WriteRune('\n')
			}
		case inTag:
			tag.WriteRune(r)
		default:
			result.WriteRune(r)
		}
	}
	return html.UnescapeString(result.String())
}

// clipboardLines splits cleaned clipboard text into non-empty node texts.
func clipboardLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(cleanClipboardText(text), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
