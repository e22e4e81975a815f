package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Platform identifies the code hosting service a user belongs to.
type Platform string

const (
	PlatformBitbucket Platform = "Bitbucket"
	PlatformGitHub    Platform = "GitHub"
	PlatformGitLab    Platform = "GitLab"
	PlatformGitea     Platform = "Gitea"
)

// ErrUnknownPlatform is returned when a platform name is not recognized.
var ErrUnknownPlatform = errors.New("unknown platform")

var platforms = []Platform{PlatformBitbucket, PlatformGitHub, PlatformGitLab, PlatformGitea}

// ParsePlatform resolves a platform name case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	s = strings.TrimSpace(s)
	for _, p := range platforms {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPlatform, s)
}

// IsValid checks if the platform is one of the known platforms.
func (p Platform) IsValid() bool {
	_, err := ParsePlatform(string(p))
	return err == nil
}

// PlatformUser carries the platform-specific profile of a user.
// Only GitHub profiles are stored; the other platforms have no payload.
type PlatformUser struct {
	Type   Platform
	GitHub *GitHubUserData
}

type platformUserJSON struct {
	Type Platform        `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// MarshalJSON encodes the user as {"type": ..., "data": ...}.
func (p PlatformUser) MarshalJSON() ([]byte, error) {
	out := platformUserJSON{Type: p.Type}
	if p.Type == PlatformGitHub && p.GitHub != nil {
		data, err := json.Marshal(p.GitHub)
		if err != nil {
			return nil, err
		}
		out.Data = data
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the {"type": ..., "data": ...} form.
func (p *PlatformUser) UnmarshalJSON(b []byte) error {
	var in platformUserJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}

	platform, err := ParsePlatform(string(in.Type))
	if err != nil {
		return err
	}

	*p = PlatformUser{Type: platform}
	if platform == PlatformGitHub && len(in.Data) > 0 && string(in.Data) != "null" {
		var data GitHubUserData
		if err := json.Unmarshal(in.Data, &data); err != nil {
			return fmt.Errorf("decode github user: %w", err)
		}
		p.GitHub = &data
	}
	return nil
}
