package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pantry-pal/apiserver/internal/services"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IngredientHandler provides HTTP handlers for ingredients.
type IngredientHandler struct {
	ingredients *services.IngredientService
	users       *services.UserService
}

func NewIngredientHandler(ingredients *services.IngredientService, users *services.UserService) *IngredientHandler {
	return &IngredientHandler{ingredients: ingredients, users: users}
}

// IngredientRouter registers ingredient routes on the given router.
func IngredientRouter(r chi.Router, ingredients *services.IngredientService, users *services.UserService, sessionMiddleware func(http.Handler) http.Handler) {
	handler := NewIngredientHandler(ingredients, users)

	r.Route("/ingredients", func(r chi.Router) {
		r.Get("/", handler.List)
		if sessionMiddleware != nil {
			r.With(sessionMiddleware).Post("/", handler.Create)
		} else {
			r.Post("/", handler.Create)
		}
	})
}

// IngredientListResponse is the search response payload.
type IngredientListResponse struct {
	TotalRecords    int64                  `json:"totalRecords"`
	FilteredRecords int                    `json:"filteredRecords"`
	Ingredients     []ingredientWithAuthor `json:"ingredients"`
}

type ingredientWithAuthor struct {
	types.Ingredient
	Author types.UserRef `json:"author"`
}

// List returns ingredients matching the request's query parameters,
// enriched with each author's public profile.
func (h *IngredientHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := store.ParseSearchOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ingredients, total, err := h.ingredients.Search(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to execute query")
		return
	}

	enriched := make([]ingredientWithAuthor, 0, len(ingredients))
	for _, ingredient := range ingredients {
		ref, err := h.users.GetRef(r.Context(), ingredient.Author.Hex())
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Failed to execute query")
			return
		}
		// Search listings omit the image payload.
		ingredient.Image = ""
		enriched = append(enriched, ingredientWithAuthor{Ingredient: ingredient, Author: ref})
	}

	writeJSON(w, http.StatusOK, IngredientListResponse{
		TotalRecords:    total,
		FilteredRecords: len(enriched),
		Ingredients:     enriched,
	})
}

// IngredientCreatePayload is the create request body.
type IngredientCreatePayload struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Create stores a new ingredient authored by the logged-in user.
func (h *IngredientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}

	var payload IngredientCreatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || strings.TrimSpace(payload.Name) == "" {
		writeError(w, http.StatusUnprocessableEntity, "Missing ingredient name in the request")
		return
	}

	author, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}

	created, err := h.ingredients.Create(r.Context(), types.Ingredient{
		Author: author,
		Name:   strings.TrimSpace(payload.Name),
		Image:  payload.Image,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to create an ingredient with provided properties")
		return
	}

	writeJSON(w, http.StatusOK, created)
}
