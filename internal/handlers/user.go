package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pantry-pal/apiserver/internal/services"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
)

// UserHandler provides the public user-profile endpoints.
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// UserRouter registers user routes on the given router.
func UserRouter(r chi.Router, users *services.UserService) {
	handler := NewUserHandler(users)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Get("/{userID}", handler.Get)
	})
}

// PublicProfile is the projection of a user exposed to other users.
type PublicProfile struct {
	ID      string `json:"_id"`
	Display string `json:"display"`
	Avatar  string `json:"avatar,omitempty"`
}

// UserListResponse is the search response payload.
type UserListResponse struct {
	TotalRecords    int64           `json:"totalRecords"`
	FilteredRecords int             `json:"filteredRecords"`
	Users           []PublicProfile `json:"users"`
}

// Get returns the public profile of a single user.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No user found with that id")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "Failed to execute query")
		return
	}

	writeJSON(w, http.StatusOK, publicProfile(user))
}

// List returns public profiles matching the request's query parameters.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := store.ParseSearchOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	users, total, err := h.users.Search(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to execute query")
		return
	}

	profiles := make([]PublicProfile, 0, len(users))
	for _, user := range users {
		profiles = append(profiles, publicProfile(user))
	}

	writeJSON(w, http.StatusOK, UserListResponse{
		TotalRecords:    total,
		FilteredRecords: len(profiles),
		Users:           profiles,
	})
}

func publicProfile(user types.User) PublicProfile {
	return PublicProfile{
		ID:      user.ID.Hex(),
		Display: user.Display,
		Avatar:  user.Avatar,
	}
}
