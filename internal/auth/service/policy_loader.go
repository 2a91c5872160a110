package service

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
	apperrors "github.com/svit-erp/portalgate/internal/errors"
)

// DefaultPolicyJSONPath selects the rule array inside a policy document.
const DefaultPolicyJSONPath = "routes"

// LoadPolicyTable builds the access policy table. With an empty file the built-in
// navigation table is used; otherwise the array at jsonPath inside the file is compiled.
// Any invalid entry fails the whole load.
func LoadPolicyTable(file, jsonPath string) (*authDomain.PolicyTable, error) {
	if strings.TrimSpace(file) == "" {
		return authDomain.NewPolicyTable(authDomain.DefaultPolicyEntries())
	}

	data, err := os.ReadFile(file) //nolint:gosec // operator-provided path
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	entries, err := ParsePolicyEntries(data, jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", file, err)
	}

	return authDomain.NewPolicyTable(entries)
}

// ParsePolicyEntries extracts policy entries from a JSON document. jsonPath is a gjson
// path to an array of {"pattern": "...", "roles": ["..."]} objects; an empty path means
// the document itself is the array.
func ParsePolicyEntries(data []byte, jsonPath string) ([]authDomain.PolicyEntry, error) {
	if !gjson.ValidBytes(data) {
		return nil, apperrors.Wrap(authDomain.ErrInvalidPolicy, "document is not valid JSON")
	}

	var routes gjson.Result
	if strings.TrimSpace(jsonPath) == "" {
		routes = gjson.ParseBytes(data)
	} else {
		routes = gjson.GetBytes(data, jsonPath)
	}

	if !routes.Exists() {
		return nil, apperrors.Wrapf(authDomain.ErrInvalidPolicy, "path %q not found", jsonPath)
	}
	if !routes.IsArray() {
		return nil, apperrors.Wrapf(authDomain.ErrInvalidPolicy, "path %q is not an array", jsonPath)
	}

	items := routes.Array()
	entries := make([]authDomain.PolicyEntry, 0, len(items))
	for i, item := range items {
		entry, err := parsePolicyEntry(item)
		if err != nil {
			return nil, apperrors.Wrapf(err, "entry %d", i)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parsePolicyEntry(value gjson.Result) (authDomain.PolicyEntry, error) {
	if !value.IsObject() {
		return authDomain.PolicyEntry{}, apperrors.Wrap(authDomain.ErrInvalidPolicy, "entry is not an object")
	}

	pattern := value.Get("pattern")
	if pattern.Type != gjson.String {
		return authDomain.PolicyEntry{}, apperrors.Wrap(authDomain.ErrInvalidPolicy, "pattern must be a string")
	}

	roles := value.Get("roles")
	if !roles.IsArray() {
		return authDomain.PolicyEntry{}, apperrors.Wrap(authDomain.ErrInvalidPolicy, "roles must be an array")
	}

	entry := authDomain.PolicyEntry{Pattern: pattern.String()}
	for _, role := range roles.Array() {
		if role.Type != gjson.String {
			return authDomain.PolicyEntry{}, apperrors.Wrap(authDomain.ErrInvalidPolicy, "roles must be strings")
		}
		entry.Roles = append(entry.Roles, authDomain.Kind(role.String()))
	}

	return entry, nil
}
