package core

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// ErrInvalidPostInput marks malformed post payloads so handlers can map them
// to a validation failure instead of a server error.
var ErrInvalidPostInput = errors.New("invalid post input")

type Post struct {
	ID          int64     `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Banner      string    `json:"banner"`
	Body        string    `json:"body"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostCreateInput carries the fields accepted when creating a post.
// Status defaults to draft when empty.
type PostCreateInput struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Banner      string `json:"banner"`
	Body        string `json:"body"`
	Status      string `json:"status"`
}

// PostUpdateInput updates only the fields that are non-nil.
type PostUpdateInput struct {
	Slug        *string `json:"slug"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Banner      *string `json:"banner"`
	Body        *string `json:"body"`
	Status      *string `json:"status"`
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, input PostCreateInput) (*Post, error)
	Update(ctx context.Context, id int64, input PostUpdateInput) (*Post, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Get(ctx context.Context, id int64) (*Post, error)
	List(ctx context.Context, includeDrafts bool) ([]Post, error)
}

func validStatus(s string) bool {
	return s == StatusPublished || s == StatusDraft
}

// PgPostRepository implements PostRepository using pgxpool.
type PgPostRepository struct {
	db *pgxpool.Pool
}

func NewPgPostRepository(db *pgxpool.Pool) *PgPostRepository {
	return &PgPostRepository{db: db}
}

func (r *PgPostRepository) Create(ctx context.Context, input PostCreateInput) (*Post, error) {
	slug := strings.TrimSpace(input.Slug)
	title := strings.TrimSpace(input.Title)
	if slug == "" || title == "" {
		return nil, fmt.Errorf("%w: slug and title are required", ErrInvalidPostInput)
	}
	status := input.Status
	if status == "" {
		status = StatusDraft
	}
	if !validStatus(status) {
		return nil, fmt.Errorf("%w: status must be published or draft", ErrInvalidPostInput)
	}

	const q = `
INSERT INTO posts (slug, title, description, banner, body, status)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING id, created_at, updated_at
`
	p := Post{
		Slug:        slug,
		Title:       title,
		Description: input.Description,
		Banner:      input.Banner,
		Body:        input.Body,
		Status:      status,
	}
	if err := r.db.QueryRow(ctx, q, p.Slug, p.Title, p.Description, p.Banner, p.Body, p.Status).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Update applies a partial update and returns the new row.
func (r *PgPostRepository) Update(ctx context.Context, id int64, input PostUpdateInput) (*Post, error) {
	var sets []string
	var args []any

	if input.Slug != nil {
		slug := strings.TrimSpace(*input.Slug)
		if slug == "" {
			return nil, fmt.Errorf("%w: slug must not be empty", ErrInvalidPostInput)
		}
		sets = append(sets, "slug=$"+strconv.Itoa(len(args)+1))
		args = append(args, slug)
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidPostInput)
		}
		sets = append(sets, "title=$"+strconv.Itoa(len(args)+1))
		args = append(args, title)
	}
	if input.Description != nil {
		sets = append(sets, "description=$"+strconv.Itoa(len(args)+1))
		args = append(args, *input.Description)
	}
	if input.Banner != nil {
		sets = append(sets, "banner=$"+strconv.Itoa(len(args)+1))
		args = append(args, *input.Banner)
	}
	if input.Body != nil {
		sets = append(sets, "body=$"+strconv.Itoa(len(args)+1))
		args = append(args, *input.Body)
	}
	if input.Status != nil {
		if !validStatus(*input.Status) {
			return nil, fmt.Errorf("%w: status must be published or draft", ErrInvalidPostInput)
		}
		sets = append(sets, "status=$"+strconv.Itoa(len(args)+1))
		args = append(args, *input.Status)
	}
	if len(sets) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidPostInput)
	}

	sets = append(sets, "updated_at=now()")
	args = append(args, id)
	q := "UPDATE posts SET " + strings.Join(sets, ", ") +
		" WHERE id=$" + strconv.Itoa(len(args)) +
		" RETURNING id, slug, title, description, banner, body, status, created_at, updated_at"

	var p Post
	if err := r.db.QueryRow(ctx, q, args...).Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Banner, &p.Body, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Delete removes a post and reports whether a row existed.
func (r *PgPostRepository) Delete(ctx context.Context, id int64) (bool, error) {
	const q = `DELETE FROM posts WHERE id=$1`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PgPostRepository) Get(ctx context.Context, id int64) (*Post, error) {
	const q = `SELECT id, slug, title, description, banner, body, status, created_at, updated_at FROM posts WHERE id=$1`
	var p Post
	if err := r.db.QueryRow(ctx, q, id).Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Banner, &p.Body, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns posts newest-first. Drafts are included only when requested.
func (r *PgPostRepository) List(ctx context.Context, includeDrafts bool) ([]Post, error) {
	q := `SELECT id, slug, title, description, banner, body, status, created_at, updated_at FROM posts`
	var args []any
	if !includeDrafts {
		q += ` WHERE status=$1`
		args = append(args, StatusPublished)
	}
	q += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Banner, &p.Body, &p.Status, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
