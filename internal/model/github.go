package model

import "time"

// GitHubUserData wraps the stored GitHub profile of a user.
type GitHubUserData struct {
	User GitHubUser `json:"user"`
}

// GitHubUser is the subset of the GitHub users API kept locally.
// URL-related properties are not included.
type GitHubUser struct {
	Login           string    `json:"login"`
	ID              int64     `json:"id"`
	NodeID          string    `json:"node_id"`
	GravatarID      string    `json:"gravatar_id"`
	Type            string    `json:"type"` // "User" or "Organization"
	SiteAdmin       bool      `json:"site_admin"`
	Name            *string   `json:"name,omitempty"`
	Company         *string   `json:"company,omitempty"`
	Blog            *string   `json:"blog,omitempty"`
	Location        *string   `json:"location,omitempty"`
	Hireable        *bool     `json:"hireable,omitempty"`
	Bio             *string   `json:"bio,omitempty"`
	TwitterUsername *string   `json:"twitter_username,omitempty"`
	PublicRepos     int       `json:"public_repos"`
	PublicGists     int       `json:"public_gists"`
	Followers       int       `json:"followers"`
	Following       int       `json:"following"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
