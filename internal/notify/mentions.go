// Colloquy - Community Q&A Forum Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/colloquy

package notify

import (
	"regexp"
	"strings"
)

// maxMentions caps how many distinct users one post can notify.
const maxMentions = 10

var mentionPattern = regexp.MustCompile(`@([A-Za-z0-9][A-Za-z0-9_-]{1,38})`)

// Mentions extracts @username references from a post body. Usernames
// are deduplicated case-insensitively and returned in order of first
// appearance.
func Mentions(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		key := strings.ToLower(m[1])
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, m[1])
		if len(names) == maxMentions {
			break
		}
	}
	return names
}

// snippet returns a short excerpt of a post body for notification text.
func snippet(body string) string {
	body = strings.TrimSpace(body)
	const max = 120
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max]) + "…"
}
