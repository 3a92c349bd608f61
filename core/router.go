package core

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// postWithViews decorates a post with its Redis-backed view count.
type postWithViews struct {
	Post
	Views int64 `json:"views"`
}

// NewRouter constructs the Gin engine with routes wired.
func NewRouter(cfg Config, tokens *TokenService, authService AuthService, posts PostRepository, views *PostViews) *gin.Engine {
	r := gin.Default()

	r.Use(CORSMiddleware(cfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/register", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Name     string `json:"name"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
			return
		}

		ctx := c.Request.Context()
		if _, err := authService.Register(ctx, req.Email, req.Name, req.Password); err != nil {
			switch {
			case errors.Is(err, ErrMissingFields):
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			case errors.Is(err, ErrEmailTaken):
				respondError(c, http.StatusConflict, "CONFLICT", "email already registered")
			default:
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to create user")
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "user successfully created"})
	})

	r.POST("/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
			return
		}

		ctx := c.Request.Context()
		token, _, err := authService.Login(ctx, req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, ErrUserNotFound):
				respondError(c, http.StatusNotFound, "NOT_FOUND", "user not found")
			case errors.Is(err, ErrInvalidCredentials):
				respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
			default:
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "login failed")
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	r.POST("/post", RequireAuth(tokens), func(c *gin.Context) {
		var req PostCreateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
			return
		}

		ctx := c.Request.Context()
		post, err := posts.Create(ctx, req)
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidPostInput):
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			case isUniqueViolation(err):
				respondError(c, http.StatusConflict, "CONFLICT", "slug already exists")
			default:
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to save post")
			}
			return
		}
		c.JSON(http.StatusOK, post)
	})

	r.PUT("/post/:id", RequireAuth(tokens), func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
			return
		}
		var req PostUpdateInput
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid json")
			return
		}

		ctx := c.Request.Context()
		post, err := posts.Update(ctx, id, req)
		if err != nil {
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				respondError(c, http.StatusNotFound, "NOT_FOUND", "post not found")
			case errors.Is(err, ErrInvalidPostInput):
				respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
			case isUniqueViolation(err):
				respondError(c, http.StatusConflict, "CONFLICT", "slug already exists")
			default:
				respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to update post")
			}
			return
		}
		c.JSON(http.StatusOK, post)
	})

	r.DELETE("/post/:id", RequireAuth(tokens), func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
			return
		}

		ctx := c.Request.Context()
		deleted, err := posts.Delete(ctx, id)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to delete post")
			return
		}
		if !deleted {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "post not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "post deleted"})
	})

	r.GET("/post", OptionalAuth(tokens), func(c *gin.Context) {
		claims := currentClaims(c)

		ctx := c.Request.Context()
		items, err := posts.List(ctx, claims != nil)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to fetch posts")
			return
		}

		decorated := make([]postWithViews, len(items))
		ids := make([]int64, len(items))
		for i, p := range items {
			decorated[i] = postWithViews{Post: p}
			ids[i] = p.ID
		}
		// View counts are cosmetic; a Redis failure degrades to zeros.
		if counts, err := views.Counts(ctx, ids); err == nil {
			for i := range decorated {
				decorated[i].Views = counts[i]
			}
		} else {
			log.Printf("failed to load view counts: %v", err)
		}

		message := "published posts"
		if claims != nil {
			message = "all posts"
		}
		c.JSON(http.StatusOK, gin.H{"posts": decorated, "message": message})
	})

	r.GET("/post/:id", OptionalAuth(tokens), func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil || id <= 0 {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
			return
		}

		ctx := c.Request.Context()
		post, err := posts.Get(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				respondError(c, http.StatusNotFound, "NOT_FOUND", "post not found")
				return
			}
			respondError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "failed to fetch post")
			return
		}
		// Drafts are only visible with an identity attached.
		if post.Status != StatusPublished && currentClaims(c) == nil {
			respondError(c, http.StatusNotFound, "NOT_FOUND", "post not found")
			return
		}

		count, err := views.Hit(ctx, post.ID)
		if err != nil {
			log.Printf("failed to count view for post %d: %v", post.ID, err)
			count = 0
		}
		c.JSON(http.StatusOK, postWithViews{Post: *post, Views: count})
	})

	return r
}
