// Package legacyproto implements the Legacy-era text/XML framing (C1/C2):
// newline-terminated `&`-split lines, ticket XML parsing, and the STag
// state-message envelope. Grounded on
// original_source/InternetGamesServer/Win7/PlayerSocket.cpp.
package legacyproto

import "strings"

// SplitLine splits one `\r\n`-terminated Legacy line on `&` into ordered
// fields, matching the original's StringSplit(message, "&").
func SplitLine(line string) []string {
	return strings.Split(line, "&")
}

// ExtractLines pulls complete `\r\n`-terminated lines off the front of buf,
// returning the lines found and the unconsumed remainder — the same
// incremental accumulate-then-split loop as ProcessMessages.
func ExtractLines(buf string) (lines []string, remainder string) {
	for {
		idx := strings.Index(buf, "\r\n")
		if idx < 0 {
			return lines, buf
		}
		line := buf[:idx]
		buf = buf[idx+2:]
		if line != "" {
			lines = append(lines, line)
		}
	}
}
