package profile

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/timefmt"
)

// Row labels used on the card.
const (
	LabelAccountCreated = "Account Created"
	LabelAccountUpdated = "Account Updated"
	LabelLastSynced     = "Last Synced"
	LabelAdded          = "Added to Database"
)

// TimeRow is one timestamp line: date, clock and elapsed time.
type TimeRow struct {
	Label string `json:"label"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Ago   string `json:"ago"`
}

// NewTimeRow formats t relative to now.
func NewTimeRow(label string, t, now time.Time) TimeRow {
	return TimeRow{
		Label: label,
		Date:  timefmt.Format(t, timefmt.Options{OnlyDate: true}),
		Time:  timefmt.Format(t, timefmt.Options{OnlyTime: true}),
		Ago:   timefmt.Since(t, now) + " ago",
	}
}

// Card is the rendered profile. Empty strings are omitted when displayed.
type Card struct {
	AvatarURL string `json:"avatar_url"`
	Login     string `json:"login"`
	Name      string `json:"name,omitempty"`
	Blog      string `json:"blog,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`
	// Account holds the platform account timestamps; empty for platforms
	// without a stored profile.
	Account []TimeRow `json:"account"`
	// Sync holds the local timestamps.
	Sync []TimeRow `json:"sync"`
}

// Render builds the card for u at now. convert turns the avatar file path
// into a URL; nil leaves the path unchanged.
func Render(u *model.FullUser, now time.Time, convert func(string) string) Card {
	card := Card{
		Login: u.User,
		Sync: []TimeRow{
			NewTimeRow(LabelLastSynced, u.UpdatedAt, now),
			NewTimeRow(LabelAdded, u.CreatedAt, now),
		},
	}

	if u.Avatar != "" {
		card.AvatarURL = u.Avatar
		if convert != nil {
			card.AvatarURL = convert(u.Avatar)
		}
	}

	if gh := u.GitHubProfile(); gh != nil {
		card.Name = deref(gh.Name)
		card.Blog = deref(gh.Blog)
		card.Bio = deref(gh.Bio)
		card.Followers = gh.Followers
		card.Following = gh.Following
		card.Account = []TimeRow{
			NewTimeRow(LabelAccountCreated, gh.CreatedAt, now),
			NewTimeRow(LabelAccountUpdated, gh.UpdatedAt, now),
		}
	}

	return card
}

// Rows returns every timestamp row in display order.
func (c Card) Rows() []TimeRow {
	rows := make([]TimeRow, 0, len(c.Account)+len(c.Sync))
	rows = append(rows, c.Account...)
	return append(rows, c.Sync...)
}

// WriteText writes the card as plain text for terminals.
func (c Card) WriteText(w io.Writer) error {
	var b strings.Builder

	b.WriteString(c.Login + "\n")
	if c.Name != "" {
		b.WriteString(c.Name + "\n")
	}
	if c.Blog != "" {
		b.WriteString(c.Blog + "\n")
	}
	if c.Bio != "" {
		b.WriteString(c.Bio + "\n")
	}
	if c.AvatarURL != "" {
		b.WriteString("avatar: " + c.AvatarURL + "\n")
	}
	if len(c.Account) > 0 {
		fmt.Fprintf(&b, "%d followers  %d following\n", c.Followers, c.Following)
	}
	b.WriteString("\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range c.Rows() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Label, r.Date, r.Time, r.Ago)
	}
	return tw.Flush()
}

// WriteState writes the page for s: "Loading" while a load is pending, the
// card once loaded and nothing after a failed load.
func WriteState(w io.Writer, s State, now time.Time, convert func(string) string) error {
	switch {
	case s.Loading:
		_, err := io.WriteString(w, "Loading\n")
		return err
	case s.User == nil:
		return nil
	}
	return Render(s.User, now, convert).WriteText(w)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
