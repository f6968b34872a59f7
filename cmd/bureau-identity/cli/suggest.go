// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// maxSuggestDistance is the largest edit distance still worth
// suggesting; it catches dropped, doubled and swapped characters.
const maxSuggestDistance = 3

// closest returns the candidate nearest to word, or "" if none is
// within maxSuggestDistance. Ties go to the earliest candidate.
func closest(word string, candidates []string) string {
	best, bestDistance := "", maxSuggestDistance+1
	for _, candidate := range candidates {
		if distance := levenshtein(word, candidate); distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	return best
}

func suggestCommand(unknown string, commands []*Command) string {
	names := make([]string, 0, len(commands))
	for _, command := range commands {
		names = append(names, command.Name)
	}
	return closest(unknown, names)
}

// suggestFlag finds the first long flag in args that flagSet does not
// define and returns the nearest defined flag as "--name", or "".
func suggestFlag(args []string, flagSet *pflag.FlagSet) string {
	if flagSet == nil {
		return ""
	}
	for _, arg := range args {
		if arg == "--" {
			return ""
		}
		name, isLong := strings.CutPrefix(arg, "--")
		if !isLong {
			continue
		}
		name, _, _ = strings.Cut(name, "=")
		if flagSet.Lookup(name) != nil {
			continue
		}

		var defined []string
		flagSet.VisitAll(func(flag *pflag.Flag) { defined = append(defined, flag.Name) })
		if suggestion := closest(name, defined); suggestion != "" {
			return "--" + suggestion
		}
		return ""
	}
	return ""
}

// levenshtein returns the edit distance between a and b in runes.
func levenshtein(a, b string) int {
	source, target := []rune(a), []rune(b)
	row := make([]int, len(target)+1)
	for column := range row {
		row[column] = column
	}
	for i, sourceRune := range source {
		diagonal := row[0]
		row[0] = i + 1
		for j, targetRune := range target {
			above := row[j+1]
			substitution := diagonal
			if sourceRune != targetRune {
				substitution++
			}
			row[j+1] = min(above+1, row[j]+1, substitution)
			diagonal = above
		}
	}
	return row[len(target)]
}
