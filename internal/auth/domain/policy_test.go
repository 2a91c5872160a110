package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

func TestNewPolicyTable(t *testing.T) {
	t.Run("Success_CompilesDefaultTable", func(t *testing.T) {
		table, err := NewPolicyTable(DefaultPolicyEntries())
		require.NoError(t, err)
		assert.Equal(t, len(DefaultPolicyEntries()), table.Len())
	})

	t.Run("Success_DeduplicatesRoles", func(t *testing.T) {
		table, err := NewPolicyTable([]PolicyEntry{
			{Pattern: "/list/teachers", Roles: []Kind{KindAdmin, KindAdmin, KindTeacher}},
		})
		require.NoError(t, err)
		assert.Equal(t, []Kind{KindAdmin, KindTeacher}, table.Entries()[0].Roles)
	})

	t.Run("Error_EmptyRoleSet", func(t *testing.T) {
		_, err := NewPolicyTable([]PolicyEntry{{Pattern: "/admin", Roles: nil}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPolicy)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		_, err := NewPolicyTable([]PolicyEntry{{Pattern: "/admin", Roles: []Kind{"janitor"}}})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPolicy)
		assert.Contains(t, err.Error(), "janitor")
	})

	t.Run("Error_PatternDoesNotCompile", func(t *testing.T) {
		_, err := NewPolicyTable([]PolicyEntry{
			{Pattern: "/ok", Roles: []Kind{KindAdmin}},
			{Pattern: "/broken(", Roles: []Kind{KindAdmin}},
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPolicy)
		assert.Contains(t, err.Error(), "policy entry 1")
	})

	t.Run("Error_PatternNotAbsolute", func(t *testing.T) {
		_, err := NewPolicyTable([]PolicyEntry{{Pattern: "admin", Roles: []Kind{KindAdmin}}})
		assert.ErrorIs(t, err, ErrInvalidPolicy)
	})
}

func TestPolicyTable_Match(t *testing.T) {
	table, err := NewPolicyTable([]PolicyEntry{
		{Pattern: "/admin(.*)", Roles: []Kind{KindAdmin}},
		{Pattern: "/list/teachers", Roles: []Kind{KindAdmin, KindTeacher}},
		{Pattern: "/list(.*)", Roles: []Kind{KindAdmin}},
		{Pattern: "/reports|/exports(.*)", Roles: []Kind{KindAdmin}},
		{Pattern: "^/audit(.*)/(.*)", Roles: []Kind{KindAdmin}},
	})
	require.NoError(t, err)

	tests := []struct {
		name            string
		path            string
		expectedMatch   bool
		expectedPattern string
	}{
		{"Success_WildcardSuffixMatchesPrefix", "/admin/students", true, "/admin(.*)"},
		{"Success_WildcardSuffixMatchesBarePrefix", "/admin", true, "/admin(.*)"},
		{"Success_FirstMatchWins", "/list/teachers", true, "/list/teachers"},
		{"Success_PlainPatternMatchesSubPath", "/list/teachers/42", true, "/list/teachers"},
		{"Success_LaterRuleWhenEarlierDoesNotMatch", "/list/subjects", true, "/list(.*)"},
		{"Success_AnchoredAtStart", "/history/admin", false, ""},
		{"Success_AlternationFirstBranch", "/reports/2024", true, "/reports|/exports(.*)"},
		{"Success_AlternationSecondBranch", "/exports/csv", true, "/reports|/exports(.*)"},
		{"Success_AlternationAnchoredOnEveryBranch", "/x/exports", false, ""},
		{"Success_ExplicitCaretAndRepeatedWildcard", "/audit/2024/logins", true, "^/audit(.*)/(.*)"},
		{"Success_NoRule", "/profile", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, ok := table.Match(tt.path)
			assert.Equal(t, tt.expectedMatch, ok)
			if tt.expectedMatch {
				require.NotNil(t, rule)
				assert.Equal(t, tt.expectedPattern, rule.Pattern)
			} else {
				assert.Nil(t, rule)
			}
		})
	}
}

func TestPolicyRule_Allows(t *testing.T) {
	table, err := NewPolicyTable([]PolicyEntry{
		{Pattern: "/list/placements", Roles: []Kind{KindAdmin, KindTeacher, KindStudent}},
	})
	require.NoError(t, err)

	rule, ok := table.Match("/list/placements")
	require.True(t, ok)

	assert.True(t, rule.Allows(KindStudent))
	assert.False(t, rule.Allows(KindParent))
}

func TestPolicyTable_EntriesPreservesOrder(t *testing.T) {
	entries := DefaultPolicyEntries()
	table, err := NewPolicyTable(entries)
	require.NoError(t, err)

	out := table.Entries()
	require.Len(t, out, len(entries))
	for i := range entries {
		assert.Equal(t, entries[i].Pattern, out[i].Pattern)
	}

	// Mutating the copy must not affect the table.
	out[0].Roles[0] = KindParent
	rule, _ := table.Match("/admin")
	assert.True(t, rule.Allows(KindAdmin))
	assert.False(t, rule.Allows(KindParent))
}
