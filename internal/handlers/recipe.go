package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/pantry-pal/apiserver/internal/services"
	"github.com/pantry-pal/apiserver/internal/store"
	"github.com/pantry-pal/apiserver/types"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeHandler provides HTTP handlers for recipes.
type RecipeHandler struct {
	recipes *services.RecipeService
	users   *services.UserService
}

func NewRecipeHandler(recipes *services.RecipeService, users *services.UserService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, users: users}
}

// RecipeRouter registers recipe routes on the given router. Reads are open;
// writes go through the session middleware when one is supplied (the
// browser surface applies it router-wide instead).
func RecipeRouter(r chi.Router, recipes *services.RecipeService, users *services.UserService, sessionMiddleware func(http.Handler) http.Handler) {
	handler := NewRecipeHandler(recipes, users)

	withSession := func(r chi.Router) chi.Router {
		if sessionMiddleware != nil {
			return r.With(sessionMiddleware)
		}
		return r
	}

	r.Route("/recipes", func(r chi.Router) {
		r.Get("/", handler.List)
		withSession(r).Post("/", handler.Create)
		r.Route("/{recipeID}", func(r chi.Router) {
			r.Get("/", handler.Get)
			withSession(r).Patch("/", handler.Update)
			withSession(r).Delete("/", handler.Delete)
		})
	})
}

// RecipeListResponse is the search response payload.
type RecipeListResponse struct {
	TotalRecords    int64              `json:"totalRecords"`
	FilteredRecords int                `json:"filteredRecords"`
	Recipes         []recipeWithAuthor `json:"recipes"`
}

// recipeWithAuthor replaces the stored author id with the public author
// projection for display.
type recipeWithAuthor struct {
	types.Recipe
	Author types.UserRef `json:"author"`
}

// List returns recipes matching the request's query parameters, enriched
// with each author's public profile. Enrichment builds a new slice; the
// stored records are never mutated.
func (h *RecipeHandler) List(w http.ResponseWriter, r *http.Request) {
	opts, err := store.ParseSearchOptions(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	recipes, total, err := h.recipes.Search(r.Context(), opts)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to execute query")
		return
	}

	enriched, err := h.withAuthors(r, recipes)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to execute query")
		return
	}

	writeJSON(w, http.StatusOK, RecipeListResponse{
		TotalRecords:    total,
		FilteredRecords: len(enriched),
		Recipes:         enriched,
	})
}

// Get returns a single recipe and records the view.
func (h *RecipeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "recipeID")

	recipe, err := h.recipes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No recipe found with that id")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "Failed to execute query")
		return
	}

	// A lost hit count never fails the read.
	if err := h.recipes.RecordHit(r.Context(), id); err != nil {
		log.Warn().Err(err).Str("recipeId", id).Msg("failed to record recipe hit")
	}

	writeJSON(w, http.StatusOK, recipe)
}

// RecipeUpsertPayload is the create/update request body. Pointer fields
// distinguish "absent" from "zero" on partial updates.
type RecipeUpsertPayload struct {
	Name        *string  `json:"name"`
	Ingredients []string `json:"ingredients"`
	Directions  *string  `json:"directions"`
	Tags        []string `json:"tags"`
	Image       *string  `json:"image"`
	Rating      *float64 `json:"rating"`
	Difficulty  *int     `json:"difficulty"`
}

// Create stores a new recipe authored by the logged-in user.
func (h *RecipeHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgNotLoggedIn)
		return
	}

	var payload RecipeUpsertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "No body included in request")
		return
	}

	if message, ok := validateRecipe(payload); !ok {
		writeError(w, http.StatusUnprocessableEntity, message)
		return
	}

	author, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgInvalidToken)
		return
	}

	ingredients, err := parseObjectIDs(payload.Ingredients)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid ingredient id in request")
		return
	}

	recipe := types.Recipe{
		Author:      author,
		Name:        strings.TrimSpace(*payload.Name),
		Ingredients: ingredients,
		Directions:  *payload.Directions,
		Tags:        payload.Tags,
		Image:       *payload.Image,
	}
	if payload.Rating != nil {
		recipe.Rating = *payload.Rating
	}
	if payload.Difficulty != nil {
		recipe.Difficulty = *payload.Difficulty
	}

	created, err := h.recipes.Create(r.Context(), recipe)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Failed to create a recipe with provided properties")
		return
	}

	writeJSON(w, http.StatusOK, created)
}

// Update applies a partial update to a recipe the logged-in user authored.
func (h *RecipeHandler) Update(w http.ResponseWriter, r *http.Request) {
	recipe, userID, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var payload RecipeUpsertPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "No body included in request")
		return
	}

	fields := bson.M{}
	if payload.Name != nil {
		name := strings.TrimSpace(*payload.Name)
		if name == "" {
			writeError(w, http.StatusUnprocessableEntity, "Recipe name is required")
			return
		}
		fields["name"] = name
	}
	if payload.Directions != nil {
		fields["directions"] = *payload.Directions
	}
	if payload.Image != nil {
		fields["image"] = *payload.Image
	}
	if payload.Tags != nil {
		fields["tags"] = payload.Tags
	}
	if payload.Ingredients != nil {
		ingredients, err := parseObjectIDs(payload.Ingredients)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "Invalid ingredient id in request")
			return
		}
		fields["ingredients"] = ingredients
	}
	if payload.Rating != nil {
		fields["rating"] = *payload.Rating
	}
	if payload.Difficulty != nil {
		fields["difficulty"] = *payload.Difficulty
	}
	if len(fields) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "No recipe fields included in request")
		return
	}

	updated, err := h.recipes.Update(r.Context(), recipe.ID.Hex(), fields)
	if err != nil {
		log.Error().Err(err).Str("recipeId", recipe.ID.Hex()).Str("userId", userID).Msg("recipe update failed")
		writeError(w, http.StatusUnprocessableEntity, "Recipe update failed")
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a recipe the logged-in user authored.
func (h *RecipeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	recipe, _, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := h.recipes.Delete(r.Context(), recipe.ID.Hex()); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Recipe delete failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Recipe deleted"})
}

// loadOwned fetches the addressed recipe and checks the logged-in user
// authored it. It writes the rejection itself and reports ok=false.
func (h *RecipeHandler) loadOwned(w http.ResponseWriter, r *http.Request) (types.Recipe, string, bool) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, msgNotLoggedIn)
		return types.Recipe{}, "", false
	}

	recipe, err := h.recipes.Get(r.Context(), chi.URLParam(r, "recipeID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "No recipe found with that id")
			return types.Recipe{}, "", false
		}
		writeError(w, http.StatusUnprocessableEntity, "Failed to execute query")
		return types.Recipe{}, "", false
	}

	if recipe.Author.Hex() != userID {
		writeError(w, http.StatusForbidden, "Only the author may modify this recipe")
		return types.Recipe{}, "", false
	}
	return recipe, userID, true
}

// withAuthors builds a new slice pairing each recipe with its author's
// public projection.
func (h *RecipeHandler) withAuthors(r *http.Request, recipes []types.Recipe) ([]recipeWithAuthor, error) {
	enriched := make([]recipeWithAuthor, 0, len(recipes))
	refs := make(map[string]types.UserRef)

	for _, recipe := range recipes {
		authorID := recipe.Author.Hex()
		ref, seen := refs[authorID]
		if !seen {
			loaded, err := h.users.GetRef(r.Context(), authorID)
			if err != nil {
				return nil, err
			}
			ref = loaded
			refs[authorID] = ref
		}
		enriched = append(enriched, recipeWithAuthor{Recipe: recipe, Author: ref})
	}
	return enriched, nil
}

func validateRecipe(payload RecipeUpsertPayload) (string, bool) {
	if payload.Name == nil || strings.TrimSpace(*payload.Name) == "" {
		return "Recipe name is required", false
	}
	if payload.Directions == nil || *payload.Directions == "" {
		return "Recipes require directions", false
	}
	if payload.Image == nil || *payload.Image == "" {
		return "Recipes require some image to display the end result", false
	}
	return "", true
}

func parseObjectIDs(raw []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, value := range raw {
		id, err := primitive.ObjectIDFromHex(strings.TrimSpace(value))
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
