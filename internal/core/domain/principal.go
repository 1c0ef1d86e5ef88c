package domain

import (
	"strings"
	"time"
)

// Role discriminates the two principal kinds. It is fixed at creation.
type Role string

const (
	RoleAgent     Role = "agent"
	RoleDemandeur Role = "demandeur"
)

// AuthenticationOrder is the lookup precedence used at login: the first role
// holding the email wins.
var AuthenticationOrder = []Role{RoleAgent, RoleDemandeur}

func (r Role) Valid() bool {
	return r == RoleAgent || r == RoleDemandeur
}

// Principal is an authenticated actor: an internal agent or an external demandeur.
type Principal struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Nom          string    `json:"nom"`
	Prenom       string    `json:"prenom"`
	Entreprise   *string   `json:"entreprise"`
	Telephone    *string   `json:"telephone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// DisplayName is "Prenom Nom", falling back to the email.
func (p *Principal) DisplayName() string {
	name := strings.TrimSpace(p.Prenom + " " + p.Nom)
	if name == "" {
		return p.Email
	}
	return name
}

// Actor is the identity recovered from a validated session token.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

func (a Actor) IsAgent() bool {
	return a.Role == RoleAgent
}

// NormalizeEmail lower-cases and trims an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// OptionalString trims s and returns nil when nothing is left, so optional
// columns hold null rather than "".
func OptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
