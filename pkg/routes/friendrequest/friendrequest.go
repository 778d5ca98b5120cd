// Package friendrequest exposes read endpoints over friend request and
// contact state, mainly for debugging and support tooling.
package friendrequest

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/contact"
	"github.com/Ramsey-B/clover/internal/repositories/friendrequest"
)

// Handler serves friend request and contact read endpoints
type Handler struct {
	requests *friendrequest.Repository
	contacts *contact.Repository
}

// NewHandler creates a new handler
func NewHandler(requests *friendrequest.Repository, contacts *contact.Repository) *Handler {
	return &Handler{
		requests: requests,
		contacts: contacts,
	}
}

// Register registers routes on the given group
func (h *Handler) Register(g *echo.Group) {
	g.GET("/users/:uid/friend_requests", h.ListFriendRequests)
	g.GET("/users/:uid/contacts", h.ListContacts)
}

// ListFriendRequests returns pending friend requests addressed to a user
func (h *Handler) ListFriendRequests(c echo.Context) error {
	ctx := c.Request().Context()

	uid := c.Param("uid")
	if uid == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "uid is required")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	requests, err := h.requests.ListByReceiver(ctx, uid, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, requests)
}

// ListContacts returns a user's contacts
func (h *Handler) ListContacts(c echo.Context) error {
	ctx := c.Request().Context()

	uid := c.Param("uid")
	if uid == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "uid is required")
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	contacts, err := h.contacts.ListByOwner(ctx, uid, limit)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, contacts)
}
