// Package deps looks up the external programs the configured engines shell
// out to.
package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// Requirement names a program and where to get it.
type Requirement struct {
	Name    string
	Command string
	// Purpose is shown next to a missing requirement.
	Purpose string
	// Package is the usual distribution package that provides Command.
	Package  string
	Optional bool
}

// Status is a Requirement resolved against PATH.
type Status struct {
	Requirement
	Available bool
	Path      string
	Detail    string
}

// Check resolves every requirement in order.
func Check(reqs ...Requirement) []Status {
	out := make([]Status, len(reqs))
	for i, req := range reqs {
		out[i] = Resolve(req)
	}
	return out
}

// Resolve looks req.Command up on PATH. A command containing a slash is
// checked as given.
func Resolve(req Requirement) Status {
	req.Command = strings.TrimSpace(req.Command)
	status := Status{Requirement: req}
	if req.Command == "" {
		status.Detail = "command not configured"
		return status
	}
	path, err := exec.LookPath(req.Command)
	if err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", req.Command)
		return status
	}
	status.Available, status.Path = true, path
	return status
}

// MissingRequired filters statuses down to unavailable, non-optional entries.
func MissingRequired(statuses []Status) []Status {
	var missing []Status
	for _, s := range statuses {
		if !s.Available && !s.Optional {
			missing = append(missing, s)
		}
	}
	return missing
}

// InstallHint is a one-line suggestion for a missing requirement.
func (s Status) InstallHint() string {
	hint := fmt.Sprintf("Install %s (%s)", s.Name, s.Command)
	if s.Package != "" {
		hint += ", package " + s.Package
	}
	if s.Purpose != "" {
		hint += ": " + s.Purpose
	}
	return hint
}
