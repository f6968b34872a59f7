// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package etcfiles

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/bureau-foundation/bureau-identity/lib/atomicfile"
)

// passwdEntry is one parsed line of passwd(5).
type passwdEntry struct {
	Name     string
	Password string
	UID      uint32
	GID      uint32
	Gecos    string
	Home     string
	Shell    string
}

func (e passwdEntry) String() string {
	return strings.Join([]string{
		e.Name,
		e.Password,
		strconv.FormatUint(uint64(e.UID), 10),
		strconv.FormatUint(uint64(e.GID), 10),
		e.Gecos,
		e.Home,
		e.Shell,
	}, ":")
}

// groupEntry is one parsed line of group(5).
type groupEntry struct {
	Name     string
	Password string
	GID      uint32
	Members  []string
}

func (e groupEntry) String() string {
	return strings.Join([]string{
		e.Name,
		e.Password,
		strconv.FormatUint(uint64(e.GID), 10),
		strings.Join(e.Members, ","),
	}, ":")
}

func (e groupEntry) hasMember(user string) bool {
	for _, member := range e.Members {
		if member == user {
			return true
		}
	}
	return false
}

// line is one line of a database file. Exactly one of passwd and group
// is set for a parsed entry; both are nil for a line kept only as raw
// text.
type line struct {
	raw    string
	passwd *passwdEntry
	group  *groupEntry
}

// table is a database file held in memory with its original layout.
type table struct {
	path  string
	lines []line
}

func parsePasswdLine(text string) *passwdEntry {
	fields := strings.Split(text, ":")
	if len(fields) != 7 || !parseable(fields[0]) {
		return nil
	}
	uid, err := parseID(fields[2])
	if err != nil {
		return nil
	}
	gid, err := parseID(fields[3])
	if err != nil {
		return nil
	}
	return &passwdEntry{
		Name:     fields[0],
		Password: fields[1],
		UID:      uid,
		GID:      gid,
		Gecos:    fields[4],
		Home:     fields[5],
		Shell:    fields[6],
	}
}

func parseGroupLine(text string) *groupEntry {
	fields := strings.Split(text, ":")
	if len(fields) != 4 || !parseable(fields[0]) {
		return nil
	}
	gid, err := parseID(fields[2])
	if err != nil {
		return nil
	}
	return &groupEntry{
		Name:     fields[0],
		Password: fields[1],
		GID:      gid,
		Members:  splitMembers(fields[3]),
	}
}

// splitMembers parses a comma-separated member list. Empty items from
// stray commas ("a,,b", "a,") are dropped.
func splitMembers(field string) []string {
	var members []string
	for _, member := range strings.Split(field, ",") {
		if member != "" {
			members = append(members, member)
		}
	}
	return members
}

// parseable excludes comment lines and NIS compat entries ("+", "-")
// from lookups.
func parseable(name string) bool {
	return name != "" && name[0] != '#' && name[0] != '+' && name[0] != '-'
}

func parseID(text string) (uint32, error) {
	value, err := strconv.ParseUint(text, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint32(value), nil
}

// readTable loads path, parsing each line with parse. parse receives
// the line text and fills the entry fields of the line it returns.
func readTable(path string, parse func(string) line) (*table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	result := &table{path: path}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return result, nil
	}
	for _, raw := range strings.Split(text, "\n") {
		result.lines = append(result.lines, parse(raw))
	}
	return result, nil
}

func readPasswd(path string) (*table, error) {
	return readTable(path, func(raw string) line {
		return line{raw: raw, passwd: parsePasswdLine(raw)}
	})
}

func readGroup(path string) (*table, error) {
	return readTable(path, func(raw string) line {
		return line{raw: raw, group: parseGroupLine(raw)}
	})
}

// readRaw loads a file whose lines are only ever appended to or matched
// by their first field (shadow, gshadow).
func readRaw(path string) (*table, error) {
	return readTable(path, func(raw string) line {
		return line{raw: raw}
	})
}

// encode renders the table back to file content. Parsed entries are
// re-rendered from their fields so edits take effect; raw lines are
// written as they were read.
func (t *table) encode() []byte {
	var builder strings.Builder
	for _, current := range t.lines {
		switch {
		case current.passwd != nil:
			builder.WriteString(current.passwd.String())
		case current.group != nil:
			builder.WriteString(current.group.String())
		default:
			builder.WriteString(current.raw)
		}
		builder.WriteByte('\n')
	}
	return []byte(builder.String())
}

// save rewrites the file in place of the one read, keeping its mode and
// ownership.
func (t *table) save() error {
	if err := atomicfile.Replace(t.path, t.encode()); err != nil {
		return fmt.Errorf("writing %s: %w", t.path, err)
	}
	return nil
}

// findRaw returns the index of the first raw line whose first
// colon-separated field is name, or -1.
func (t *table) findRaw(name string) int {
	for index, current := range t.lines {
		first, _, _ := strings.Cut(current.raw, ":")
		if first == name {
			return index
		}
	}
	return -1
}
