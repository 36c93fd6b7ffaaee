package domain

import (
	"regexp"
	"strings"
)

type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	CreatedAt Timestamp `json:"createdAt"`
	UpdatedAt Timestamp `json:"updatedAt"`
}

var dottedLocalPartRe = regexp.MustCompile(`^(\w+)\.(\w+)@`)

// DeriveNames fills in first and last name from the email when the backend
// has none stored: "jane.doe@x" gives jane/doe, anything else gives the
// first character of the email and an empty last name.
func (p UserProfile) DeriveNames() UserProfile {
	if p.FirstName != "" || p.Email == "" {
		return p
	}
	if m := dottedLocalPartRe.FindStringSubmatch(p.Email); len(m) == 3 {
		p.FirstName = m[1]
		p.LastName = m[2]
		return p
	}
	p.FirstName = string([]rune(p.Email)[:1])
	p.LastName = ""
	return p
}

func (p UserProfile) DisplayName() string {
	name := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if name == "" {
		return p.Email
	}
	return name
}

func Initials(first, last string) string {
	var b strings.Builder
	if r := []rune(first); len(r) > 0 {
		b.WriteRune(r[0])
	}
	if r := []rune(last); len(r) > 0 {
		b.WriteRune(r[0])
	}
	return strings.ToUpper(b.String())
}
