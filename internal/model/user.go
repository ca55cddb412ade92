// Package model defines the data structures used throughout the application.
package model

import (
	"slices"
	"time"
)

// User is one player account.
//
// Username is the stable, human-readable key other records refer to: the
// Following list stores usernames, not IDs. The ID is an internal xid used as
// the storage primary key.
//
// PasswordHash never leaves the server; the json tag hides it.
type User struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	KnowledgePoints int       `json:"knowledgePoints"`
	Following       []string  `json:"following"`
	Avatar          string    `json:"avatar,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Follows reports whether target is in the user's following list.
func (u *User) Follows(target string) bool {
	return slices.Contains(u.Following, target)
}

// PlayerScore is one row of a ranking.
type PlayerScore struct {
	Username        string `json:"username"`
	KnowledgePoints int    `json:"knowledgePoints"`
}

// Score projects a user onto a ranking row.
func (u *User) Score() PlayerScore {
	return PlayerScore{Username: u.Username, KnowledgePoints: u.KnowledgePoints}
}

// PlayerView is the league-scoped leaderboard for one player.
//
// LeaguePeers and FollowingPeers are returned separately. Merging the
// player's own row into the following list is a presentation decision left to
// the client.
type PlayerView struct {
	CurrentLeague  string        `json:"currentLeague"`
	LeaguePeers    []PlayerScore `json:"sortedPlayers"`
	FollowingPeers []PlayerScore `json:"followingPlayers"`
}

// Profile is the public view of a player.
type Profile struct {
	Username        string  `json:"username"`
	KnowledgePoints int     `json:"knowledgePoints"`
	League          string  `json:"league"`
	Avatar          *string `json:"avatar"`
}
