package controller

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/focusd/internal/types"
)

// SessionSpec is the parsed form of a start argument:
// "workspaces@durationMinutes", either part optional.
type SessionSpec struct {
	Workspaces  []types.WorkspaceID
	WorkMinutes int // 0 means use the configured default
	Warnings    []string
}

// ParseSessionSpec parses a comma-separated workspace list with an optional
// duration suffix. Invalid tokens are skipped with a warning, never fatal.
func ParseSessionSpec(input string) SessionSpec {
	var spec SessionSpec

	workspacePart := input
	if at := strings.IndexByte(input, '@'); at >= 0 {
		workspacePart = input[:at]
		durationPart := strings.TrimSpace(input[at+1:])
		if minutes, err := strconv.Atoi(durationPart); err == nil && minutes > 0 {
			spec.WorkMinutes = minutes
		} else {
			spec.Warnings = append(spec.Warnings,
				fmt.Sprintf("failed to parse duration %q, using default", durationPart))
		}
	}

	for _, token := range strings.Split(workspacePart, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		id, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			spec.Warnings = append(spec.Warnings,
				fmt.Sprintf("failed to parse workspace ID %q", token))
			continue
		}
		if id < 1 {
			spec.Warnings = append(spec.Warnings,
				fmt.Sprintf("invalid workspace ID %q: must be >= 1", token))
			continue
		}
		spec.Workspaces = append(spec.Workspaces, types.WorkspaceID(id))
	}

	return spec
}

// FormatMMSS formats seconds as MM:SS.
func FormatMMSS(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func joinWorkspaces(ids []types.WorkspaceID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}
	return strings.Join(parts, ", ")
}
