// Package postprocess recovers the JSON object from LLM output that did not
// arrive as a bare object.
//
// Only wrapping around the object is removed; text inside it is never
// touched.
package postprocess

import (
	"regexp"
	"strings"
)

// ExtractJSON returns the JSON object embedded in an LLM response:
//  1. Leading thinking / reasoning block removal
//  2. Markdown code fence unwrapping
//  3. Trimming to the outermost {...}
//
// Text with no object is returned trimmed, so the caller's decoder reports
// the failure.
func ExtractJSON(text string) string {
	text = removeLeadingThinking(text)
	text = unwrapCodeFence(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end < start {
		return strings.TrimSpace(text)
	}
	return text[start : end+1]
}

// --- thinking blocks ---

// leadingThinkingRe matches one complete <thinking>…</thinking> style block at
// the start of the text. Each tag variant is listed explicitly because Go's
// RE2 engine does not support backreferences.
var leadingThinkingRe = regexp.MustCompile(
	`(?is)^\s*(?:<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>)`,
)

// removeLeadingThinking drops the reasoning blocks some models emit before
// their answer. An unclosed block is left alone.
func removeLeadingThinking(text string) string {
	for {
		loc := leadingThinkingRe.FindStringIndex(text)
		if loc == nil {
			return strings.TrimSpace(text)
		}
		text = text[loc[1]:]
	}
}

// --- code fences ---

// codeFenceRe matches a leading fenced block, with an optional language tag.
var codeFenceRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n?(.*?)```")

func unwrapCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if m := codeFenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}
