package domain

import (
	"regexp"
	"slices"
	"strings"

	"github.com/svit-erp/portalgate/internal/errors"
)

// wildcardSuffix is the table's spelling of "anything below this prefix".
const wildcardSuffix = "(.*)"

// PolicyEntry is one row of the access policy table as written in configuration.
type PolicyEntry struct {
	Pattern string `json:"pattern"` // Path regexp; a "(.*)" suffix matches everything below the prefix
	Roles   []Kind `json:"roles"`   // Kinds allowed on matching paths (non-empty)
}

// PolicyRule is a compiled PolicyEntry.
type PolicyRule struct {
	Pattern string
	Roles   []Kind
	re      *regexp.Regexp
}

// Matches reports whether the rule applies to path.
func (r *PolicyRule) Matches(path string) bool {
	return r.re.MatchString(path)
}

// Allows reports whether kind is in the rule's role set.
func (r *PolicyRule) Allows(kind Kind) bool {
	return slices.Contains(r.Roles, kind)
}

// PolicyTable is the ordered, immutable list of compiled access rules. It is safe for
// concurrent use once built.
type PolicyTable struct {
	rules []*PolicyRule
}

// NewPolicyTable compiles entries in order. Every pattern must compile and every entry must
// name at least one known kind; the first offending entry is reported.
func NewPolicyTable(entries []PolicyEntry) (*PolicyTable, error) {
	rules := make([]*PolicyRule, 0, len(entries))
	for i, entry := range entries {
		rule, err := compileEntry(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "policy entry %d (%q)", i, entry.Pattern)
		}
		rules = append(rules, rule)
	}
	return &PolicyTable{rules: rules}, nil
}

// compileEntry turns an entry into a rule anchored at the start of the path, so "/admin"
// covers "/admin/students" but never "/list/admin".
func compileEntry(entry PolicyEntry) (*PolicyRule, error) {
	pattern := strings.TrimSpace(entry.Pattern)
	if pattern == "" || !strings.HasPrefix(strings.TrimPrefix(pattern, "^"), "/") {
		return nil, errors.Wrap(ErrInvalidPolicy, "pattern must start with /")
	}
	if len(entry.Roles) == 0 {
		return nil, errors.Wrap(ErrInvalidPolicy, "role set must not be empty")
	}

	roles := make([]Kind, 0, len(entry.Roles))
	for _, role := range entry.Roles {
		if !role.IsValid() {
			return nil, errors.Wrapf(ErrInvalidPolicy, "unknown role %q", role)
		}
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}

	// Every "(.*)" becomes ".*", not only the first one. The group wraps alternations so that
	// each branch is anchored.
	expr := strings.ReplaceAll(strings.TrimPrefix(pattern, "^"), wildcardSuffix, ".*")
	re, err := regexp.Compile("^(?:" + expr + ")")
	if err != nil {
		return nil, errors.Wrap(ErrInvalidPolicy, err.Error())
	}

	return &PolicyRule{Pattern: pattern, Roles: roles, re: re}, nil
}

// Match returns the first rule that applies to path, scanning top to bottom.
func (t *PolicyTable) Match(path string) (*PolicyRule, bool) {
	for _, rule := range t.rules {
		if rule.Matches(path) {
			return rule, true
		}
	}
	return nil, false
}

// Len returns the number of rules.
func (t *PolicyTable) Len() int {
	return len(t.rules)
}

// Entries returns the table in its configuration form, preserving order.
func (t *PolicyTable) Entries() []PolicyEntry {
	entries := make([]PolicyEntry, 0, len(t.rules))
	for _, rule := range t.rules {
		entries = append(entries, PolicyEntry{Pattern: rule.Pattern, Roles: slices.Clone(rule.Roles)})
	}
	return entries
}

// DefaultPolicyEntries is the portal's built-in table, mirroring the navigation menu: each
// kind owns its landing area and the shared list pages are open to the kinds that see them.
func DefaultPolicyEntries() []PolicyEntry {
	all := []Kind{KindAdmin, KindTeacher, KindStudent, KindParent}
	staff := []Kind{KindAdmin, KindTeacher}

	return []PolicyEntry{
		{Pattern: "/admin(.*)", Roles: []Kind{KindAdmin}},
		{Pattern: "/student(.*)", Roles: []Kind{KindStudent}},
		{Pattern: "/teacher(.*)", Roles: []Kind{KindTeacher}},
		{Pattern: "/parent(.*)", Roles: []Kind{KindParent}},
		{Pattern: "/list/teachers", Roles: staff},
		{Pattern: "/list/students", Roles: staff},
		{Pattern: "/list/parents", Roles: staff},
		{Pattern: "/list/subjects", Roles: []Kind{KindAdmin}},
		{Pattern: "/list/classes", Roles: staff},
		{Pattern: "/list/lessons", Roles: staff},
		{Pattern: "/list/exams", Roles: all},
		{Pattern: "/list/assignments", Roles: all},
		{Pattern: "/list/results", Roles: all},
		{Pattern: "/list/attendance", Roles: all},
		{Pattern: "/list/events", Roles: all},
		{Pattern: "/list/messages", Roles: all},
		{Pattern: "/list/announcements", Roles: all},
		{Pattern: "/list/placements", Roles: []Kind{KindAdmin, KindTeacher, KindStudent}},
		{Pattern: "/list/feedback", Roles: all},
	}
}
