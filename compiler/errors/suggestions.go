package errors

import (
	"fmt"
	"sort"
	"strings"
)

// typeKeywords are the built-in type names offered as corrections
var typeKeywords = []string{
	"bool", "byte", "char",
	"int8", "int16", "int32", "int64",
	"uint8", "uint16", "uint32", "uint64",
	"float32", "float64",
	"string", "wstring",
}

// suggestFix generates fix suggestions based on error code
func suggestFix(err CompilerError) *FixSuggestion {
	switch err.Code {
	case ErrExpectedType:
		return suggestTypeKeyword(err)
	case ErrExpectedEquals:
		return suggestEquals(err)
	case ErrUnterminatedComment:
		return &FixSuggestion{
			Description: "Close the block comment with '*/'",
			NewCode:     "*/",
			Confidence:  0.9,
		}
	case ErrDuplicateMember:
		return &FixSuggestion{
			Description: "Rename one of the members; names must be unique within a message",
			Confidence:  0.7,
		}
	case ErrInvalidServiceSpec:
		return &FixSuggestion{
			Description: "A service has exactly one '---' line between request and response",
			Confidence:  0.8,
		}
	case ErrInvalidActionSpec:
		return &FixSuggestion{
			Description: "An action has exactly two '---' lines separating goal, result and feedback",
			Confidence:  0.8,
		}
	default:
		return nil
	}
}

// suggestTypeKeyword proposes the closest built-in type for a misspelt one
func suggestTypeKeyword(err CompilerError) *FixSuggestion {
	line, ok := err.errorLine()
	if !ok {
		return nil
	}
	start := err.Context.Highlight.Start
	if start < 0 || start >= len(line) {
		return nil
	}
	word := line[start:]
	if i := strings.IndexAny(word, " \t[<"); i >= 0 {
		word = word[:i]
	}
	if word == "" {
		return nil
	}

	matches := FindSimilar(word, typeKeywords, 2, 1)
	if len(matches) == 0 {
		return nil
	}
	return &FixSuggestion{
		Description: fmt.Sprintf("Did you mean '%s'?", matches[0]),
		OldCode:     strings.TrimSpace(line),
		NewCode:     strings.TrimSpace(strings.Replace(line, word, matches[0], 1)),
		Confidence:  0.8,
	}
}

// suggestEquals proposes NAME=value for a constant missing its value
func suggestEquals(err CompilerError) *FixSuggestion {
	line, ok := err.errorLine()
	if !ok {
		return nil
	}
	trimmed := strings.TrimSpace(line)
	return &FixSuggestion{
		Description: "Constants need a value: TYPE NAME=value",
		OldCode:     trimmed,
		NewCode:     trimmed + "=<value>",
		Confidence:  0.6,
	}
}

// FindSimilar returns up to limit candidates within maxDistance edits of
// target, closest first.
func FindSimilar(target string, candidates []string, maxDistance, limit int) []string {
	type match struct {
		value    string
		distance int
	}

	var found []match
	for _, candidate := range candidates {
		d := levenshtein(strings.ToLower(target), strings.ToLower(candidate))
		if d <= maxDistance {
			found = append(found, match{candidate, d})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].distance < found[j].distance
	})

	result := make([]string, 0, limit)
	for i := 0; i < len(found) && i < limit; i++ {
		result = append(result, found[i].value)
	}
	return result
}

// levenshtein is the minimum number of single-byte edits turning s1 into s2
func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
