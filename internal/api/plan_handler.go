package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"mesoforge/mesocycle-app/internal/domain"
	"mesoforge/mesocycle-app/internal/planner"
	"mesoforge/mesocycle-app/internal/service"
)

// dateLayout is the wire format for calendar dates in plan mutation requests.
const dateLayout = "2006-01-02"

// PlanHandler holds the plan service dependency.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

// GeneratePlanRequest is the JSON body for plan generation and regeneration.
type GeneratePlanRequest struct {
	Weeks               int            `json:"weeks" binding:"required"`
	DaysPerWeek         int            `json:"daysPerWeek" binding:"required"`
	WeeklyVolumeTargets map[string]int `json:"weeklyVolumeTargets" binding:"required"`
	RepMin              int            `json:"repMin" binding:"required"`
	RepMax              int            `json:"repMax" binding:"required"`
	WeeklyVolumeRamp    float64        `json:"weeklyVolumeRamp"`
	Strategy            string         `json:"strategy"`
	Deload              bool           `json:"deload"`
	Focus               string         `json:"focus"`
	StartDate           string         `json:"startDate"` // YYYY-MM-DD, optional
	Seed                uint64         `json:"seed"`
}

// PlanResponse bundles the serialized plan, any generation warnings, and the
// projected calendar grid.
type PlanResponse struct {
	Plan     *domain.MesocyclePlan `json:"plan"`
	Warnings []planner.Warning     `json:"warnings,omitempty"`
	Calendar []planner.DayCell     `json:"calendar"`
}

type EnsureDayRequest struct {
	Generation int64  `json:"generation"`
	Date       string `json:"date" binding:"required"`
}

type AddExerciseRequest struct {
	Generation int64    `json:"generation"`
	Date       string   `json:"date" binding:"required"`
	ExerciseID string   `json:"exercise" binding:"required"`
	Sets       int      `json:"sets" binding:"required"`
	Reps       [2]int   `json:"reps" binding:"required"`
	RPE        *float64 `json:"rpe"`
}

type RemoveExerciseRequest struct {
	Generation     int64  `json:"generation"`
	PrescriptionID string `json:"prescriptionId" binding:"required"`
}

type ReorderExercisesRequest struct {
	Generation int64  `json:"generation"`
	Date       string `json:"date" binding:"required"`
	FromIndex  *int   `json:"fromIndex" binding:"required"`
	ToIndex    *int   `json:"toIndex" binding:"required"`
}

type MoveWorkoutRequest struct {
	Generation      int64  `json:"generation"`
	SourceDate      string `json:"sourceDate" binding:"required"`
	DestinationDate string `json:"destinationDate" binding:"required"`
}

func mapPlanResult(result *service.PlanResult) PlanResponse {
	return PlanResponse{Plan: result.Plan, Warnings: result.Warnings, Calendar: result.Calendar}
}

func (r GeneratePlanRequest) toPlanInput() (domain.PlanInput, error) {
	targets := make(map[domain.MuscleGroup]int, len(r.WeeklyVolumeTargets))
	for raw, sets := range r.WeeklyVolumeTargets {
		mg, ok := domain.ParseMuscleGroup(raw)
		if !ok {
			return domain.PlanInput{}, &domain.InputError{Field: "weeklyVolumeTargets", Message: "unknown muscle group " + raw}
		}
		targets[mg] = sets
	}
	input := domain.PlanInput{
		Weeks:               r.Weeks,
		DaysPerWeek:         r.DaysPerWeek,
		WeeklyVolumeTargets: targets,
		DefaultRepRange:     domain.RepRange{r.RepMin, r.RepMax},
		WeeklyVolumeRamp:    r.WeeklyVolumeRamp,
		Strategy:            domain.Strategy(r.Strategy),
		Deload:              r.Deload,
		Focus:               domain.MuscleGroup(r.Focus),
		Seed:                r.Seed,
	}
	if r.StartDate != "" {
		start, err := time.Parse(dateLayout, r.StartDate)
		if err != nil {
			return domain.PlanInput{}, &domain.InputError{Field: "startDate", Message: "must be YYYY-MM-DD"}
		}
		input.StartDate = start
	}
	return domain.NewPlanInput(input)
}

// --- Handler Methods ---

// GeneratePlan creates a new mesocycle for the authenticated user.
func (h *PlanHandler) GeneratePlan(c *gin.Context) {
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ownerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	input, err := req.toPlanInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.planService.Generate(c.Request.Context(), ownerID, input)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusCreated, mapPlanResult(result))
}

// RegeneratePlan discards the plan's schedule and generates it fresh. Any
// mutation built against the prior generation becomes stale.
func (h *PlanHandler) RegeneratePlan(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	var req GeneratePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	input, err := req.toPlanInput()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.planService.Regenerate(c.Request.Context(), ownerID, planID, input)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanResult(result))
}

// GetActivePlan returns the caller's active mesocycle with its calendar.
func (h *PlanHandler) GetActivePlan(c *gin.Context) {
	ownerID, ok := objectIDFromToken(c)
	if !ok {
		return
	}
	result, err := h.planService.ActivePlan(c.Request.Context(), ownerID)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanResult(result))
}

// GetPlan returns one plan by id.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	result, err := h.planService.GetPlan(c.Request.Context(), ownerID, planID)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanResult(result))
}

// ValidatePlan runs the invariant check and returns any violations.
func (h *PlanHandler) ValidatePlan(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	result, err := h.planService.ValidatePlan(c.Request.Context(), ownerID, planID)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": result.Valid(), "violations": result.Violations})
}

// DeletePlan removes a plan.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	if err := h.planService.DeletePlan(c.Request.Context(), ownerID, planID); err != nil {
		respondPlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// EnsureDay creates an empty workout on the given date if none exists.
func (h *PlanHandler) EnsureDay(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	var req EnsureDayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	result, err := h.planService.EnsureDay(c.Request.Context(), ownerID, planID, req.Generation, date)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanResult(result))
}

// AddExercise appends or merges a prescription on a date.
func (h *PlanHandler) AddExercise(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	var req AddExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exercise ID format.")
		return
	}
	rpe := planner.DefaultRPE
	if req.RPE != nil {
		rpe = *req.RPE
	}
	defaults := planner.ExerciseDefaults{
		Sets: req.Sets,
		Reps: domain.RepRange{req.Reps[0], req.Reps[1]},
		RPE:  rpe,
	}

	result, err := h.planService.AddExercise(c.Request.Context(), ownerID, planID, req.Generation, date, exerciseID, defaults)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanResult(result))
}

// RemoveExercise deletes a prescription by id.
func (h *PlanHandler) RemoveExercise(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	var req RemoveExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	result, err := h.planService.RemoveExercise(c.Request.Context(), ownerID, planID, req.Generation, req.PrescriptionID)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanResult(result))
}

// ReorderExercises permutes prescriptions within one day.
func (h *PlanHandler) ReorderExercises(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	var req ReorderExercisesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	result, err := h.planService.ReorderExercises(c.Request.Context(), ownerID, planID, req.Generation, date, *req.FromIndex, *req.ToIndex)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanResult(result))
}

// MoveWorkout moves or swaps a workout between dates.
func (h *PlanHandler) MoveWorkout(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	var req MoveWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	src, ok := parseDate(c, req.SourceDate)
	if !ok {
		return
	}
	dst, ok := parseDate(c, req.DestinationDate)
	if !ok {
		return
	}

	result, err := h.planService.MoveWorkout(c.Request.Context(), ownerID, planID, req.Generation, src, dst)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapPlanResult(result))
}

// GetCalendar returns just the projected grid for a plan.
func (h *PlanHandler) GetCalendar(c *gin.Context) {
	planID, ownerID, ok := planAndOwnerIDs(c)
	if !ok {
		return
	}
	result, err := h.planService.GetPlan(c.Request.Context(), ownerID, planID)
	if err != nil {
		respondPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendar": result.Calendar})
}

// --- helpers ---

func planAndOwnerIDs(c *gin.Context) (planID, ownerID primitive.ObjectID, ok bool) {
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	ownerID, ok = objectIDFromToken(c)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}
	return planID, ownerID, true
}

func parseDate(c *gin.Context, raw string) (time.Time, bool) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Dates must be YYYY-MM-DD.")
		return time.Time{}, false
	}
	return date, true
}

// respondPlanError maps service and planner errors onto HTTP statuses.
func respondPlanError(c *gin.Context, err error) {
	var inputErr *domain.InputError
	switch {
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, planner.ErrDayNotFound),
		errors.Is(err, planner.ErrExerciseNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrStalePlan):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, planner.ErrDateOutOfRange),
		errors.Is(err, planner.ErrIndexOutOfRange),
		errors.Is(err, planner.ErrBadPrescription),
		errors.As(err, &inputErr):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Internal server error.")
	}
}
