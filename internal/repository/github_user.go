package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gitchest/gitchest/internal/model"
)

// UpsertGitHubUser stores the GitHub profile of a user.
func (r *Repository) UpsertGitHubUser(ctx context.Context, userID int64, gh *model.GitHubUser) error {
	query := `
		INSERT INTO github_users (
			user_id, github_id, login, node_id, gravatar_id, type, site_admin,
			name, company, blog, location, hireable, bio, twitter_username,
			public_repos, public_gists, followers, following, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (user_id) DO UPDATE SET
			github_id = EXCLUDED.github_id,
			login = EXCLUDED.login,
			node_id = EXCLUDED.node_id,
			gravatar_id = EXCLUDED.gravatar_id,
			type = EXCLUDED.type,
			site_admin = EXCLUDED.site_admin,
			name = EXCLUDED.name,
			company = EXCLUDED.company,
			blog = EXCLUDED.blog,
			location = EXCLUDED.location,
			hireable = EXCLUDED.hireable,
			bio = EXCLUDED.bio,
			twitter_username = EXCLUDED.twitter_username,
			public_repos = EXCLUDED.public_repos,
			public_gists = EXCLUDED.public_gists,
			followers = EXCLUDED.followers,
			following = EXCLUDED.following,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		userID,
		gh.ID,
		gh.Login,
		gh.NodeID,
		gh.GravatarID,
		gh.Type,
		gh.SiteAdmin,
		gh.Name,
		gh.Company,
		gh.Blog,
		gh.Location,
		gh.Hireable,
		gh.Bio,
		gh.TwitterUsername,
		gh.PublicRepos,
		gh.PublicGists,
		gh.Followers,
		gh.Following,
		gh.CreatedAt,
		gh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert github user: %w", err)
	}

	return nil
}

// GetGitHubUser retrieves the stored GitHub profile of a user.
func (r *Repository) GetGitHubUser(ctx context.Context, userID int64) (*model.GitHubUser, error) {
	query := `
		SELECT github_id, login, node_id, gravatar_id, type, site_admin,
		       name, company, blog, location, hireable, bio, twitter_username,
		       public_repos, public_gists, followers, following, created_at, updated_at
		FROM github_users
		WHERE user_id = $1
	`

	var gh model.GitHubUser
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&gh.ID,
		&gh.Login,
		&gh.NodeID,
		&gh.GravatarID,
		&gh.Type,
		&gh.SiteAdmin,
		&gh.Name,
		&gh.Company,
		&gh.Blog,
		&gh.Location,
		&gh.Hireable,
		&gh.Bio,
		&gh.TwitterUsername,
		&gh.PublicRepos,
		&gh.PublicGists,
		&gh.Followers,
		&gh.Following,
		&gh.CreatedAt,
		&gh.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGitHubUserNotFound
		}
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	return &gh, nil
}
