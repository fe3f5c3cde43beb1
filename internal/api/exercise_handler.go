package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mesoforge/mesocycle-app/internal/domain"
	"mesoforge/mesocycle-app/internal/service"
)

// ExerciseHandler holds the catalog service dependency.
type ExerciseHandler struct {
	catalogService service.CatalogService
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(catalogService service.CatalogService) *ExerciseHandler {
	return &ExerciseHandler{catalogService: catalogService}
}

// --- DTOs ---

// ExerciseRequest defines the expected JSON for creating or updating a
// catalog exercise.
type ExerciseRequest struct {
	Name             string   `json:"name" binding:"required"`
	Description      string   `json:"description"`
	PrimaryMuscles   []string `json:"primaryMuscles" binding:"required,min=1"`
	SecondaryMuscles []string `json:"secondaryMuscles"`
	Pattern          string   `json:"pattern"`
	Equipment        string   `json:"equipment"`
}

// ExerciseResponse is the DTO for returning catalog entries.
type ExerciseResponse struct {
	ID               string    `json:"id"`
	TrainerID        string    `json:"trainerId"`
	Name             string    `json:"name"`
	Description      string    `json:"description,omitempty"`
	PrimaryMuscles   []string  `json:"primaryMuscles"`
	SecondaryMuscles []string  `json:"secondaryMuscles,omitempty"`
	Pattern          string    `json:"pattern,omitempty"`
	Equipment        string    `json:"equipment,omitempty"`
	HasVideo         bool      `json:"hasVideo"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type VideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

func muscleStrings(groups []domain.MuscleGroup) []string {
	out := make([]string, len(groups))
	for i, mg := range groups {
		out[i] = string(mg)
	}
	return out
}

func parseMuscles(raw []string) ([]domain.MuscleGroup, bool) {
	out := make([]domain.MuscleGroup, 0, len(raw))
	for _, s := range raw {
		mg, ok := domain.ParseMuscleGroup(s)
		if !ok {
			return nil, false
		}
		out = append(out, mg)
	}
	return out, true
}

// MapExerciseToResponse converts a domain.Exercise to its DTO.
func MapExerciseToResponse(ex *domain.Exercise) ExerciseResponse {
	if ex == nil {
		return ExerciseResponse{}
	}
	return ExerciseResponse{
		ID:               ex.ID.Hex(),
		TrainerID:        ex.TrainerID.Hex(),
		Name:             ex.Name,
		Description:      ex.Description,
		PrimaryMuscles:   muscleStrings(ex.PrimaryMuscles),
		SecondaryMuscles: muscleStrings(ex.SecondaryMuscles),
		Pattern:          string(ex.Pattern),
		Equipment:        ex.Equipment,
		HasVideo:         ex.VideoObjectKey != "",
		CreatedAt:        ex.CreatedAt,
		UpdatedAt:        ex.UpdatedAt,
	}
}

// MapExercisesToResponse converts a slice of exercises to DTOs.
func MapExercisesToResponse(exercises []domain.Exercise) []ExerciseResponse {
	responses := make([]ExerciseResponse, len(exercises))
	for i, ex := range exercises {
		responses[i] = MapExerciseToResponse(&ex)
	}
	return responses
}

func (h *ExerciseHandler) exerciseInputFromRequest(c *gin.Context) (service.ExerciseInput, bool) {
	var req ExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return service.ExerciseInput{}, false
	}
	primary, ok := parseMuscles(req.PrimaryMuscles)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Unknown muscle group in primaryMuscles.")
		return service.ExerciseInput{}, false
	}
	secondary, ok := parseMuscles(req.SecondaryMuscles)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "Unknown muscle group in secondaryMuscles.")
		return service.ExerciseInput{}, false
	}
	return service.ExerciseInput{
		Name:             req.Name,
		Description:      req.Description,
		PrimaryMuscles:   primary,
		SecondaryMuscles: secondary,
		Pattern:          domain.MovementPattern(req.Pattern),
		Equipment:        req.Equipment,
	}, true
}

// --- Handler Methods ---

// CreateExercise adds a catalog entry for the authenticated trainer.
func (h *ExerciseHandler) CreateExercise(c *gin.Context) {
	input, ok := h.exerciseInputFromRequest(c)
	if !ok {
		return
	}
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	exercise, err := h.catalogService.CreateExercise(c.Request.Context(), trainerID, input)
	if err != nil {
		if errors.Is(err, service.ErrValidationFailed) {
			abortWithError(c, http.StatusBadRequest, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create exercise.")
		}
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

// ListExercises returns the catalog, optionally filtered by ?muscle=.
func (h *ExerciseHandler) ListExercises(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := c.Query("muscle"); raw != "" {
		mg, ok := domain.ParseMuscleGroup(raw)
		if !ok {
			abortWithError(c, http.StatusBadRequest, "Unknown muscle group.")
			return
		}
		exercises, err := h.catalogService.GetExercisesTargeting(ctx, mg)
		if err != nil {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
			return
		}
		c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
		return
	}

	exercises, err := h.catalogService.GetAllExercises(ctx)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercises.")
		return
	}
	c.JSON(http.StatusOK, MapExercisesToResponse(exercises))
}

// GetExercise returns one catalog entry.
func (h *ExerciseHandler) GetExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}
	exercise, err := h.catalogService.GetExerciseByID(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to retrieve exercise.")
		}
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// UpdateExercise modifies a catalog entry owned by the trainer.
func (h *ExerciseHandler) UpdateExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}
	input, ok := h.exerciseInputFromRequest(c)
	if !ok {
		return
	}
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	exercise, err := h.catalogService.UpdateExercise(c.Request.Context(), trainerID, exerciseID, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		case errors.Is(err, service.ErrValidationFailed):
			abortWithError(c, http.StatusBadRequest, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to update exercise.")
		}
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

// DeleteExercise removes a catalog entry owned by the trainer.
func (h *ExerciseHandler) DeleteExercise(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	if err := h.catalogService.DeleteExercise(c.Request.Context(), trainerID, exerciseID); err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to delete exercise.")
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestVideoUpload issues a presigned PUT URL for the exercise's demo clip.
func (h *ExerciseHandler) RequestVideoUpload(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}
	var req VideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	trainerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}

	url, err := h.catalogService.RequestVideoUploadURL(c.Request.Context(), trainerID, exerciseID, req.ContentType)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrExerciseNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrExerciseAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to create upload URL.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": url})
}

// GetVideoURL issues a presigned GET URL for the exercise's demo clip.
func (h *ExerciseHandler) GetVideoURL(c *gin.Context) {
	exerciseID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}

	url, err := h.catalogService.VideoDownloadURL(c.Request.Context(), exerciseID)
	if err != nil {
		if errors.Is(err, service.ErrExerciseNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
		} else {
			abortWithError(c, http.StatusInternalServerError, "Failed to create download URL.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// objectIDFromToken extracts the authenticated user's id as an ObjectID,
// writing the error response itself on failure.
func objectIDFromToken(c *gin.Context) (primitive.ObjectID, bool) {
	idStr, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format in token.")
		return primitive.NilObjectID, false
	}
	return id, true
}
