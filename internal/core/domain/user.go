package domain

import "strings"

type User struct {
	ID        string
	Username  string
	FirstName string
	LastName  string
}

// Name : "Prénom Nom", comme affiché côté client
func (u *User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RelationStatus est utilisé pour l'UI (bouton Follow / "Vous suit")
type RelationStatus struct {
	IsFollowing  bool // Actor suit Target
	IsFollowedBy bool // Target suit Actor
}
