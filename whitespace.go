package stache

import "strings"

// standaloneKinds are the tag kinds eligible for standalone-line
// whitespace stripping. Variable, Unescaped, and Close-adjacent
// content-bearing tags are never standalone.
var standaloneKinds = map[TokenKind]bool{
	TokenSectionOpen:  true,
	TokenInvertedOpen: true,
	TokenClose:        true,
	TokenComment:      true,
	TokenPartial:      true,
	TokenSetDelimiter: true,
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}

// buildTokens runs the standalone-whitespace pass and synthesizes the
// final Token stream: a Text token for each gap between tags (clipped per
// the standalone rule when it applies), one token per tag, and a trailing
// EOF. It is a pure function of (src, tags), so running it twice on the
// same input is trivially idempotent — the property tested in
// whitespace_test.go.
func buildTokens(src string, tags []tagMatch) []*Token {
	tokens := make([]*Token, 0, len(tags)*2+1)
	cursor := 0

	for _, tm := range tags {
		lineStart, lineEnd, standalone, indent := standaloneBounds(src, tm)

		textEnd := tm.start
		if standalone {
			textEnd = lineStart
		}
		if textEnd > cursor {
			tokens = append(tokens, &Token{Kind: TokenText, Text: src[cursor:textEnd]})
		}

		tok := &Token{
			Kind:       tm.kind,
			KeyText:    tm.keyText,
			NewOpen:    tm.newOpen,
			NewClose:   tm.newClose,
			Standalone: standalone,
			Line:       tm.line,
			Col:        tm.col,
		}
		if standalone && tm.kind == TokenPartial {
			tok.Indent = indent
		}
		tokens = append(tokens, tok)

		if standalone {
			cursor = lineEnd
		} else {
			cursor = tm.end
		}
	}

	if cursor < len(src) {
		tokens = append(tokens, &Token{Kind: TokenText, Text: src[cursor:]})
	}
	tokens = append(tokens, &Token{Kind: TokenEOF})
	return tokens
}

// standaloneBounds reports whether tm sits alone on its source line — only
// whitespace besides the tag itself — and, if so, the byte range to strip:
// the leading indentation run back to the previous newline (or start of
// file) and the single trailing newline (or end of file).
func standaloneBounds(src string, tm tagMatch) (lineStart, lineEnd int, standalone bool, indent string) {
	if !standaloneKinds[tm.kind] {
		return 0, 0, false, ""
	}

	lineStart = 0
	if nl := strings.LastIndexByte(src[:tm.start], '\n'); nl >= 0 {
		lineStart = nl + 1
	}
	if !isBlank(src[lineStart:tm.start]) {
		return 0, 0, false, ""
	}

	rest := src[tm.end:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		if !isBlank(rest[:nl]) {
			return 0, 0, false, ""
		}
		lineEnd = tm.end + nl + 1
	} else {
		if !isBlank(rest) {
			return 0, 0, false, ""
		}
		lineEnd = len(src)
	}

	return lineStart, lineEnd, true, src[lineStart:tm.start]
}
