package dirs

import (
	"log/slog"
	"path/filepath"
)

type dataKind int

const (
	kindAvatars dataKind = iota
	kindAvatar
	kindReadmeAssets
)

// DataPath names a location under the data directory.
type DataPath struct {
	kind dataKind
	file string
	user string
	repo string
}

// Avatars is the directory holding all user avatars.
func Avatars() DataPath {
	return DataPath{kind: kindAvatars}
}

// Avatar is a single avatar file inside Avatars.
func Avatar(file string) DataPath {
	return DataPath{kind: kindAvatar, file: file}
}

// ReadmeAssets is the directory holding README images of a repository.
func ReadmeAssets(user, repo string) DataPath {
	return DataPath{kind: kindReadmeAssets, user: user, repo: repo}
}

// Path returns the absolute location of p.
func (d Dirs) Path(p DataPath) string {
	switch p.kind {
	case kindAvatar:
		return filepath.Join(d.Data, "assets", "avatars", p.file)
	case kindReadmeAssets:
		return filepath.Join(d.Data, "assets", "repos", p.user, p.repo, "readme")
	default:
		return filepath.Join(d.Data, "assets", "avatars")
	}
}

// Ensure creates the directory needed to write p and returns its path.
// For a file path only the parent directory is created.
func (d Dirs) Ensure(logger *slog.Logger, p DataPath) (string, error) {
	dir := d.Path(p)
	if p.kind == kindAvatar {
		dir = d.Path(Avatars())
	}
	if err := EnsureDir(logger, dir); err != nil {
		return "", err
	}
	return d.Path(p), nil
}
