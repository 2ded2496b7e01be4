package core

// value.go splits raw input into lines, rows and logical cell values.
//
// The row splitter keeps quotes in the cells it returns; ParseValue strips
// one enclosing pair later. A comma is a delimiter when an even number of
// quote characters follows it on the same line, which for well-formed rows
// means the comma sits outside every quoted field.

import (
	"bytes"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SplitLines splits text on "\n" and "\r\n".
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// SplitRow splits a line into raw cells on commas outside quoted fields.
func SplitRow(line string) []string {
	remaining := strings.Count(line, `"`)

	cells := make([]string, 0, strings.Count(line, ",")+1)
	start := 0
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '"':
			remaining--
		case ',':
			if remaining%2 == 0 {
				cells = append(cells, line[start:i])
				start = i + 1
			}
		}
	}
	return append(cells, line[start:])
}

// ParseValue turns a raw cell into its logical values: one enclosing quote
// pair is stripped, the text is split on '/' and ',', and each piece is
// trimmed. Empty pieces are kept.
func ParseValue(cell string) []string {
	text := cell
	if len(text) >= 2 && text[0] == '"' && text[len(text)-1] == '"' {
		text = text[1 : len(text)-1]
	} else if text == `"` {
		// A lone quote both begins and ends the cell.
		text = ""
	}

	pieces := splitAny(text, "/,")
	for i, p := range pieces {
		pieces[i] = strings.TrimSpace(p)
	}
	return pieces
}

// cellAt returns the parsed values at pos, or nil when the row is too short.
func cellAt(row []string, pos int) []string {
	if pos < 0 || pos >= len(row) {
		return nil
	}
	return ParseValue(row[pos])
}

// splitAny splits s around every byte in seps, keeping empty pieces.
func splitAny(s, seps string) []string {
	out := make([]string, 0, 1)
	start := 0
	for i := 0; i < len(s); i++ {
		if strings.IndexByte(seps, s[i]) >= 0 {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}

// sanitizeInput drops a leading UTF-8 BOM and replaces invalid UTF-8 sequences.
func sanitizeInput(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}
