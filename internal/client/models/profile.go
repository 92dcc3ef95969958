package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/timex"
)

// Profile is the per-user profile row. ID equals the owning user's ID.
// Nullable columns are pointers.
type Profile struct {
	ID        string
	FullName  *string
	Birthday  *time.Time
	Age       *int
	AvatarRef *string
	UpdatedAt time.Time
	CreatedAt time.Time
}

// Clone returns a deep copy so callers cannot mutate shared state.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	c := *p
	c.FullName = clonePtr(p.FullName)
	c.Birthday = clonePtr(p.Birthday)
	c.Age = clonePtr(p.Age)
	c.AvatarRef = clonePtr(p.AvatarRef)
	return &c
}

// DisplayName is the full name or "" when unset.
func (p *Profile) DisplayName() string {
	if p == nil || p.FullName == nil {
		return ""
	}
	return *p.FullName
}

// BirthdayString renders the birthday as YYYY-MM-DD, "" when unset.
func (p *Profile) BirthdayString() string {
	if p == nil || p.Birthday == nil {
		return ""
	}
	return timex.FormatDate(*p.Birthday)
}

// ProfilePatch is a partial update of a profile row. Nil fields are left
// unchanged by the store; UpdatedAt is always written.
type ProfilePatch struct {
	FullName  *string
	Birthday  *time.Time
	Age       *int
	AvatarRef *string
	UpdatedAt time.Time
}

// FieldsPatch is the user-editable subset of a profile.
type FieldsPatch struct {
	FullName *string
	Birthday *time.Time
}

// Empty reports whether the patch changes nothing.
func (f FieldsPatch) Empty() bool {
	return f.FullName == nil && f.Birthday == nil
}

// NormalizeName trims whitespace and collapses inner runs of spaces.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
