package domain

import (
	"fmt"
	"strings"
)

// ResolveDisplayName picks the label shown for a team. Precedence is fixed:
// team name, then owner name, then a synthetic "Team <rosterID>". Display
// names are presentation only; ranking, anti-gaming, and backtest logic key
// on roster id exclusively.
func ResolveDisplayName(teamName, ownerName string, rosterID int) string {
	if s := strings.TrimSpace(teamName); s != "" {
		return s
	}
	if s := strings.TrimSpace(ownerName); s != "" {
		return s
	}
	return fmt.Sprintf("Team %d", rosterID)
}
