// Package stub is a local stand-in for the remote pet-feed backend.
// It serves the endpoints the client core consumes, backed by an
// in-memory store, for development and integration tests.
package stub

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/petresgate/feedcore/domain"
	"github.com/petresgate/feedcore/internal/stub/request"
)

// ResponseError represent the response error struct
type ResponseError struct {
	Message string `json:"message"`
}

// Handler represent the httphandler for the stub backend
type Handler struct {
	store *Store
}

// NewRouter builds a gin engine serving the consumed endpoints.
func NewRouter(store *Store) *gin.Engine {
	route := gin.Default()
	h := &Handler{store: store}

	route.GET("/publications", h.List)
	route.GET("/publications/search", h.Search)
	route.GET("/publications/:id/likes", h.LikeStatus)
	route.POST("/publications/like", h.ToggleLike)
	route.POST("/publications", h.Create)
	route.GET("/users/:id", h.GetUser)

	return route
}

// List will return the full publication collection
func (h *Handler) List(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.List())
}

// Search will return publications matching the q param
func (h *Handler) Search(c *gin.Context) {
	query := c.Query("q")
	res := h.store.Search(query)
	if res == nil {
		res = []domain.Publication{}
	}
	c.JSON(http.StatusOK, res)
}

// LikeStatus reports whether the given user liked the publication
func (h *Handler) LikeStatus(c *gin.Context) {
	idP, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}
	userID, err := strconv.ParseInt(c.Query("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: domain.ErrBadParamInput.Error()})
		return
	}

	liked, err := h.store.Liked(int64(idP), userID)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// ToggleLike flips a like record
func (h *Handler) ToggleLike(c *gin.Context) {
	var req request.LikeToggle
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	liked, err := h.store.ToggleLike(req.PublicationID, req.UserID)
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// Create stores a new publication from the request body
func (h *Handler) Create(c *gin.Context) {
	var req request.Publication
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ResponseError{Message: err.Error()})
		return
	}

	np := req.ToDomain()
	stored := h.store.Create(&np)
	c.JSON(http.StatusCreated, stored)
}

// GetUser returns a user profile by id
func (h *Handler) GetUser(c *gin.Context) {
	idP, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, ResponseError{Message: domain.ErrNotFound.Error()})
		return
	}

	user, err := h.store.User(int64(idP))
	if err != nil {
		c.JSON(getStatusCode(err), ResponseError{Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// getStatusCode will get the code of the error
func getStatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}

	logrus.Error(err)
	switch err {
	case domain.ErrInternalServerError:
		return http.StatusInternalServerError
	case domain.ErrNotFound:
		return http.StatusNotFound
	case domain.ErrBadParamInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
