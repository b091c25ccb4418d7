package http

import (
	"net/http"
	"strings"

	"finanzas/internal/identity"
)

// sanitizeInput trims and removes control characters except tab and newlines.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// ownerOf returns the owner set by requireOwner. Handlers behind it can rely
// on a non-empty value.
func ownerOf(r *http.Request) string {
	owner, _ := identity.OwnerFrom(r.Context())
	return owner
}

func attachment(filename string) string {
	return `attachment; filename="` + filename + `"`
}
