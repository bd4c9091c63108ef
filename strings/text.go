package strings

import (
	"fmt"
	"strconv"
	"strings"
)

// ExportText renders s as the human-editable text form used by the
// extraction and translation tools.
func ExportText(s *Store) string {
	blocks := s.Blocks()
	var sb strings.Builder
	fmt.Fprintf(&sb, "STRINGS.PAK: %d string blocks.\n", len(blocks))
	for _, block := range blocks {
		strs := s.Strings(block)
		fmt.Fprintf(&sb, "\nblock: %04d; %d strings.\n", block, len(strs))
		for i, str := range strs {
			fmt.Fprintf(&sb, "%d: %s\n", i, escapeText(str))
		}
	}
	return sb.String()
}

// ImportText parses the text form back into a Store.
func ImportText(text string) (*Store, error) {
	store := NewStore()
	var curBlock uint16
	haveBlock := false

	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "STRINGS.PAK:"):
			continue
		case strings.HasPrefix(line, "block:"):
			rest := strings.TrimPrefix(line, "block:")
			parts := strings.SplitN(rest, ";", 2)
			if len(parts) < 1 {
				return nil, fmt.Errorf("strings: line %d: malformed block header", lineNo+1)
			}
			id, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
			if err != nil {
				return nil, fmt.Errorf("strings: line %d: bad block id: %w", lineNo+1, err)
			}
			curBlock = uint16(id)
			haveBlock = true
		default:
			if !haveBlock {
				return nil, fmt.Errorf("strings: line %d: string entry before any block header", lineNo+1)
			}
			idx, rest, ok := splitIndexLine(line)
			if !ok {
				return nil, fmt.Errorf("strings: line %d: malformed string entry", lineNo+1)
			}
			if err := store.Set(curBlock, idx, unescapeText(rest)); err != nil {
				return nil, err
			}
		}
	}
	return store, nil
}

func splitIndexLine(line string) (int, string, bool) {
	i := strings.Index(line, ":")
	if i < 0 {
		return 0, "", false
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[:i]))
	if err != nil {
		return 0, "", false
	}
	rest := line[i+1:]
	if strings.HasPrefix(rest, " ") {
		rest = rest[1:]
	}
	return n, rest, true
}

func escapeText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\\':
			sb.WriteString(`\\`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func unescapeText(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				sb.WriteByte('\n')
				i++
				continue
			case 't':
				sb.WriteByte('\t')
				i++
				continue
			case '\\':
				sb.WriteByte('\\')
				i++
				continue
			}
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
