package domain

import "github.com/google/uuid"

// Member is owned by the identity collaborator. We only ever reference it
// by ID; display fields come from session claims and are never authoritative.
type Member struct {
	ID          uuid.UUID
	DisplayName string
	Role        MemberRole
	Verified    bool
}

type MemberRole string

const (
	RoleStudent   MemberRole = "student"
	RoleAlumni    MemberRole = "alumni"
	RoleProfessor MemberRole = "professor"
)
