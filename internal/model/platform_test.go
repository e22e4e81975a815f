package model

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParsePlatform(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  Platform
	}{
		{"GitHub", PlatformGitHub},
		{"github", PlatformGitHub},
		{" GITLAB ", PlatformGitLab},
		{"gitea", PlatformGitea},
		{"bitbucket", PlatformBitbucket},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePlatform(tt.input)
			if err != nil {
				t.Fatalf("ParsePlatform(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParsePlatform(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePlatform_Unknown(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "sourcehut", "git hub"} {
		if _, err := ParsePlatform(input); !errors.Is(err, ErrUnknownPlatform) {
			t.Errorf("ParsePlatform(%q) error = %v, want ErrUnknownPlatform", input, err)
		}
		if Platform(input).IsValid() {
			t.Errorf("Platform(%q).IsValid() = true", input)
		}
	}
}

func TestPlatformUser_MarshalJSON_GitHub(t *testing.T) {
	t.Parallel()

	name := "The Octocat"
	pu := PlatformUser{
		Type: PlatformGitHub,
		GitHub: &GitHubUserData{User: GitHubUser{
			Login:     "octocat",
			ID:        583231,
			Name:      &name,
			Followers: 10,
			CreatedAt: time.Date(2011, 1, 25, 18, 44, 36, 0, time.UTC),
		}},
	}

	data, err := json.Marshal(pu)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	body := string(data)
	for _, want := range []string{`"type":"GitHub"`, `"data":{"user":{"login":"octocat"`, `"name":"The Octocat"`} {
		if !strings.Contains(body, want) {
			t.Errorf("marshaled JSON %s missing %s", body, want)
		}
	}
	if strings.Contains(body, `"bio"`) {
		t.Errorf("absent optional fields should be omitted: %s", body)
	}

	var decoded PlatformUser
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.GitHub == nil || decoded.GitHub.User.Login != "octocat" {
		t.Errorf("decoded GitHub payload = %+v", decoded.GitHub)
	}
}

func TestPlatformUser_MarshalJSON_UnitVariant(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(PlatformUser{Type: PlatformGitLab})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `{"type":"GitLab"}` {
		t.Errorf("Marshal() = %s, want {\"type\":\"GitLab\"}", data)
	}
}

func TestPlatformUser_UnmarshalJSON_UnknownType(t *testing.T) {
	t.Parallel()

	var pu PlatformUser
	if err := json.Unmarshal([]byte(`{"type":"Forgejo"}`), &pu); !errors.Is(err, ErrUnknownPlatform) {
		t.Errorf("Unmarshal() error = %v, want ErrUnknownPlatform", err)
	}
}

func TestUserAvatar_Filename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		avatar UserAvatar
		want   string
	}{
		{UserAvatar{ID: 12, Ext: "png"}, "12.png"},
		{UserAvatar{ID: 7}, "7"},
	}

	for _, tt := range tests {
		if got := tt.avatar.Filename(); got != tt.want {
			t.Errorf("Filename() = %q, want %q", got, tt.want)
		}
	}
}

func TestFullUser_GitHubProfile(t *testing.T) {
	t.Parallel()

	var nilUser *FullUser
	if nilUser.GitHubProfile() != nil {
		t.Error("nil user should have no profile")
	}

	u := &FullUser{PlatformUser: PlatformUser{Type: PlatformGitea}}
	if u.GitHubProfile() != nil {
		t.Error("gitea user should have no GitHub profile")
	}

	u.PlatformUser = PlatformUser{Type: PlatformGitHub, GitHub: &GitHubUserData{User: GitHubUser{Login: "x"}}}
	if p := u.GitHubProfile(); p == nil || p.Login != "x" {
		t.Errorf("GitHubProfile() = %+v", p)
	}
}
