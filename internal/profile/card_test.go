package profile

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/gitchest/gitchest/internal/assets"
	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/service"
	"github.com/gitchest/gitchest/internal/timefmt"
)

func strPtr(s string) *string { return &s }

func sampleUser() *model.FullUser {
	return &model.FullUser{
		User:      "octocat",
		CreatedAt: time.Date(2024, 1, 7, 23, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 7, 23, 59, 0, 0, time.UTC),
		Avatar:    "/data/assets/avatars/1.png",
		PlatformUser: model.PlatformUser{
			Type: model.PlatformGitHub,
			GitHub: &model.GitHubUserData{User: model.GitHubUser{
				Login:     "octocat",
				Name:      strPtr("The Octocat"),
				Blog:      strPtr("https://github.blog"),
				Followers: 20,
				Following: 3,
				CreatedAt: time.Date(2011, 1, 25, 18, 44, 36, 0, time.UTC),
				UpdatedAt: time.Date(2023, 12, 25, 0, 0, 0, 0, time.UTC),
			}},
		},
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	card := Render(sampleUser(), now, assets.ConvertFileSrc)

	if card.AvatarURL != assets.ConvertFileSrc("/data/assets/avatars/1.png") {
		t.Errorf("AvatarURL = %q", card.AvatarURL)
	}
	if card.Login != "octocat" || card.Name != "The Octocat" || card.Blog != "https://github.blog" || card.Bio != "" {
		t.Errorf("identity = %+v", card)
	}
	if card.Followers != 20 || card.Following != 3 {
		t.Errorf("followers = %d/%d", card.Followers, card.Following)
	}

	rows := card.Rows()
	wantLabels := []string{LabelAccountCreated, LabelAccountUpdated, LabelLastSynced, LabelAdded}
	wantAgo := []string{"13y ago", "2w ago", "1m ago", "1h ago"}
	if len(rows) != len(wantLabels) {
		t.Fatalf("rows = %+v", rows)
	}
	for i, r := range rows {
		if r.Label != wantLabels[i] {
			t.Errorf("row %d label = %q, want %q", i, r.Label, wantLabels[i])
		}
		if r.Ago != wantAgo[i] {
			t.Errorf("row %d ago = %q, want %q", i, r.Ago, wantAgo[i])
		}
	}

	synced := sampleUser().UpdatedAt
	if rows[2].Date != timefmt.Format(synced, timefmt.Options{OnlyDate: true}) ||
		rows[2].Time != timefmt.Format(synced, timefmt.Options{OnlyTime: true}) {
		t.Errorf("Last Synced row = %+v", rows[2])
	}
}

func TestRender_UnitPlatform(t *testing.T) {
	t.Parallel()

	u := &model.FullUser{User: "someone", PlatformUser: model.PlatformUser{Type: model.PlatformGitLab}}
	card := Render(u, time.Now(), nil)

	if card.AvatarURL != "" || len(card.Account) != 0 || len(card.Sync) != 2 {
		t.Errorf("card = %+v", card)
	}
}

func TestCard_WriteText(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	if err := Render(sampleUser(), now, nil).WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"octocat\n",
		"The Octocat\n",
		"avatar: /data/assets/avatars/1.png\n",
		"20 followers  3 following\n",
		"Account Created",
		"Added to Database",
		"13y ago",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteState(&buf, State{Loading: true}, time.Now(), nil); err != nil {
		t.Fatalf("WriteState() error = %v", err)
	}
	if buf.String() != "Loading\n" {
		t.Errorf("output = %q", buf.String())
	}

	buf.Reset()
	_ = WriteState(&buf, State{Err: service.KindNotFound}, time.Now(), nil)
	if buf.Len() != 0 {
		t.Errorf("failed load output = %q, want empty", buf.String())
	}

	buf.Reset()
	_ = WriteState(&buf, State{User: sampleUser()}, time.Now(), nil)
	if !strings.HasPrefix(buf.String(), "octocat\n") {
		t.Errorf("output = %q", buf.String())
	}
}
