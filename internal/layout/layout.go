// Package layout describes the application shell: the header and the sidebar
// navigation with its active link.
package layout

import "strings"

// Title is shown in the header.
const Title = "Git Chest"

// Section groups sidebar links by their position.
type Section string

const (
	SectionMain   Section = "main"
	SectionAction Section = "action"
	SectionFooter Section = "footer"
)

// Link is one sidebar entry.
type Link struct {
	Title       string  `json:"title"`
	Href        string  `json:"href"`
	Icon        string  `json:"icon"`
	ActiveIcon  string  `json:"active_icon"`
	ActiveClass string  `json:"active_class,omitempty"`
	Section     Section `json:"section"`
	Active      bool    `json:"active"`
}

var links = []Link{
	{Title: "Directory", Href: "/", Icon: "folder", ActiveIcon: "folder-open", Section: SectionMain},
	{Title: "Favorites", Href: "/favorites", Icon: "heart-outline", ActiveIcon: "heart", ActiveClass: "text-rose-500", Section: SectionMain},
	{Title: "Inbox", Href: "/watching", Icon: "inbox-outline", ActiveIcon: "inbox", ActiveClass: "text-lime-500", Section: SectionMain},
	{Title: "Explore", Href: "/explore", Icon: "rocket-outline", ActiveIcon: "rocket", ActiveClass: "text-cyan-400", Section: SectionMain},
	{Title: "Analysis", Href: "/analysis", Icon: "chart-pie-outline", ActiveIcon: "chart-pie", ActiveClass: "text-purple-500", Section: SectionMain},
	{Title: "Search", Href: "/search", Icon: "magnifying-glass-outline", ActiveIcon: "magnifying-glass", ActiveClass: "text-primary", Section: SectionMain},
	{Title: "Add Repository", Href: "/add", Icon: "plus", ActiveIcon: "plus", Section: SectionAction},
	{Title: "Settings", Href: "/settings", Icon: "cog-outline", ActiveIcon: "cog", ActiveClass: "text-primary", Section: SectionFooter},
}

// Links returns the sidebar entries in display order.
func Links() []Link {
	out := make([]Link, len(links))
	copy(out, links)
	return out
}

// BaseURL is "/" followed by the first segment of pathname. Links are
// matched against it, so "/user?id=3" and "/user/repos" both map to "/user".
func BaseURL(pathname string) string {
	if i := strings.IndexAny(pathname, "?#"); i >= 0 {
		pathname = pathname[:i]
	}
	segments := strings.Split(pathname, "/")
	if len(segments) < 2 {
		return "/"
	}
	return "/" + segments[1]
}

// Sidebar is the navigation rendered for a path.
type Sidebar struct {
	Title   string `json:"title"`
	BaseURL string `json:"base_url"`
	Links   []Link `json:"links"`
}

// ForPath returns the sidebar with the link matching pathname marked active.
// At most one link is active.
func ForPath(pathname string) Sidebar {
	base := BaseURL(pathname)
	out := Links()
	for i := range out {
		out[i].Active = out[i].Href == base
	}
	return Sidebar{Title: Title, BaseURL: base, Links: out}
}

// Active returns the active link, if any.
func (s Sidebar) Active() (Link, bool) {
	for _, l := range s.Links {
		if l.Active {
			return l, true
		}
	}
	return Link{}, false
}
