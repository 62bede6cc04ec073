package handlers

import (
	"fmt"
	"net/http"

	"chirp/application/services"
	"chirp/pkg/auth"
	"chirp/pkg/common"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PostHandler handles posts, comments and likes
type PostHandler struct {
	service  *services.PostService
	logger   *zap.Logger
	maxBytes int64
}

// NewPostHandler creates a new post handler
func NewPostHandler(service *services.PostService, logger *zap.Logger, maxBytes int64) *PostHandler {
	return &PostHandler{
		service:  service,
		logger:   logger,
		maxBytes: maxBytes,
	}
}

// CreatePostRequest represents the request body for creating a post.
// Image is raw image data (data URI or bare base64); the text/image
// presence rule lives in the service.
type CreatePostRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

// CommentRequest represents the request body for commenting on a post
type CommentRequest struct {
	Text string `json:"text"`
}

// All handles GET /api/posts/all
func (h *PostHandler) All(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetAll(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	if len(posts) == 0 {
		common.RespondMessage(w, "no posts")
		return
	}
	common.RespondJSON(w, http.StatusOK, posts)
}

// Following handles GET /api/posts/following
func (h *PostHandler) Following(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	posts, err := h.service.GetFollowing(r.Context(), actor.ID)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, posts)
}

// ByUser handles GET /api/posts/user/{username}
func (h *PostHandler) ByUser(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	posts, err := h.service.GetByUsername(r.Context(), username)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, posts)
}

// Liked handles GET /api/posts/likes/{id}
func (h *PostHandler) Liked(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	posts, err := h.service.GetLiked(r.Context(), userID)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, posts)
}

// Create handles POST /api/posts/create
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	var req CreatePostRequest
	if err := common.DecodeJSONBody(r, &req, h.maxBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.service.Create(r.Context(), actor.ID, req.Text, req.Image)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// Like handles POST /api/posts/like/{id}, toggling the actor's like
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	postID := chi.URLParam(r, "id")

	result, err := h.service.LikeOrUnlike(r.Context(), actor.ID, postID)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}

	verb := "unliked"
	if result.Liked {
		verb = "liked"
	}
	common.RespondMessage(w, fmt.Sprintf("%s %s post: %s", actor.Username, verb, result.Post.Text))
}

// Comment handles POST /api/posts/comment/{id}
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	postID := chi.URLParam(r, "id")

	var req CommentRequest
	if err := common.DecodeJSONBody(r, &req, h.maxBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := h.service.Comment(r.Context(), actor.ID, postID, req.Text)
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, err := auth.UserFromContext(r.Context())
	if err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	postID := chi.URLParam(r, "id")

	if err := h.service.Delete(r.Context(), actor.ID, postID); err != nil {
		common.RespondAppError(w, h.logger, err)
		return
	}
	common.RespondMessage(w, "post deleted successfully")
}
