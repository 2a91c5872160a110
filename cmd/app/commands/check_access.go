package commands

import (
	"fmt"
	"io"

	authDomain "github.com/svit-erp/portalgate/internal/auth/domain"
)

// checkAccessResult is the JSON shape of a check-access decision.
type checkAccessResult struct {
	Role     string `json:"role,omitempty"`
	Path     string `json:"path"`
	Outcome  string `json:"outcome"`
	Location string `json:"location,omitempty"`
	Pattern  string `json:"pattern,omitempty"`
	Reason   string `json:"reason"`
}

// RunCheckAccess prints the decision the gatekeeper would take for a caller of role requesting
// path. An empty role stands for a caller without a session.
func RunCheckAccess(
	gatekeeper *authDomain.Gatekeeper,
	role, path, format string,
	writer io.Writer,
) error {
	var identity *authDomain.Identity
	if role != "" {
		kind, err := authDomain.ParseKind(role)
		if err != nil {
			return err
		}
		identity = &authDomain.Identity{ID: "check-access", Username: "check-access", Role: kind}
	}

	decision := gatekeeper.DecideFor(path, identity)
	result := checkAccessResult{
		Role:     role,
		Path:     path,
		Outcome:  decision.Outcome.String(),
		Location: decision.Location,
		Pattern:  decision.Pattern,
		Reason:   decision.Reason,
	}

	if format == "json" {
		return writeJSON(writer, result)
	}

	_, _ = fmt.Fprintf(writer, "Outcome: %s\n", result.Outcome)
	if result.Location != "" {
		_, _ = fmt.Fprintf(writer, "Location: %s\n", result.Location)
	}
	if result.Pattern != "" {
		_, _ = fmt.Fprintf(writer, "Rule: %s\n", result.Pattern)
	}
	_, _ = fmt.Fprintf(writer, "Reason: %s\n", result.Reason)
	return nil
}
