package storage

import (
	"context"
	"fmt"

	"github.com/jbplumbing/autopost/internal/core/domain"
)

// InsertPost persists a published post and returns its generated ID.
func (db *DB) InsertPost(ctx context.Context, post domain.Post) (string, error) {
	var id string

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO posts (keyword, title, content, image_url, status, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		post.Keyword, post.Title, post.Content, post.ImageURL, post.Status, post.Category,
	).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("insert post: %w", err)
	}

	return id, nil
}

// RecentPosts returns the latest posts, newest first.
func (db *DB) RecentPosts(ctx context.Context, limit int) ([]domain.Post, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, keyword, title, content, image_url, status, category, created_at
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post

	for rows.Next() {
		var p domain.Post
		if err := rows.Scan(&p.ID, &p.Keyword, &p.Title, &p.Content, &p.ImageURL, &p.Status, &p.Category, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}

		posts = append(posts, p)
	}

	return posts, rows.Err()
}
