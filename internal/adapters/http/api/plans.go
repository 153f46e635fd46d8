package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	service "github.com/datenight/planner/internal/app"
	"github.com/datenight/planner/internal/domain/model"
	"github.com/datenight/planner/internal/domain/plan"
)

const maxPlanBodyBytes = 1 << 20

// PlanDependencies defines the interface for plan building.
type PlanDependencies interface {
	BuildPlan(ctx context.Context, req service.PlanRequest) (service.PlanResult, error)
}

// PlanHandler handles plan requests.
type PlanHandler struct {
	deps PlanDependencies
}

// NewPlanHandler creates a new plan handler.
func NewPlanHandler(deps PlanDependencies) *PlanHandler {
	return &PlanHandler{deps: deps}
}

// planRequest mirrors the OpenAPI schema for POST /v1/plans.
type planRequest struct {
	Mode            string            `json:"mode" validate:"omitempty,oneof=both restaurant_only activity_only"`
	Center          *model.Coordinate `json:"center"`
	Restaurant      *searchParams     `json:"restaurant"`
	Activity        *searchParams     `json:"activity"`
	Preferences     *preferencesBody  `json:"preferences"`
	RestaurantIndex *int              `json:"restaurantIndex" validate:"omitempty,gte=0"`
	ActivityIndex   *int              `json:"activityIndex" validate:"omitempty,gte=0"`
}

func (p planRequest) toService() (service.PlanRequest, error) {
	if err := model.ValidateStruct(p); err != nil {
		return service.PlanRequest{}, err
	}
	out := service.PlanRequest{
		Mode:            model.PlanMode(p.Mode),
		Preferences:     p.Preferences.preferences(),
		RestaurantIndex: p.RestaurantIndex,
		ActivityIndex:   p.ActivityIndex,
	}
	if out.Mode == "" {
		out.Mode = model.PlanBoth
	}
	if p.Center != nil {
		out.Center = *p.Center
	}

	var err error
	if out.Mode != model.PlanActivityOnly {
		if p.Restaurant == nil {
			return service.PlanRequest{}, fmt.Errorf("%w: restaurant search is required for mode %s", model.ErrInvalidRequest, out.Mode)
		}
		if out.Restaurants, err = p.Restaurant.request(model.SearchRestaurants); err != nil {
			return service.PlanRequest{}, err
		}
	}
	if out.Mode != model.PlanRestaurantOnly {
		if p.Activity == nil {
			return service.PlanRequest{}, fmt.Errorf("%w: activity search is required for mode %s", model.ErrInvalidRequest, out.Mode)
		}
		if out.Activities, err = p.Activity.request(model.SearchActivities); err != nil {
			return service.PlanRequest{}, err
		}
	}
	return out, nil
}

// HandlePostPlan handles POST /v1/plans requests.
func (h *PlanHandler) HandlePostPlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_plan"
	var body planRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPlanBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	req, err := body.toService()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	res, err := h.deps.BuildPlan(r.Context(), req)
	switch {
	case errors.Is(err, plan.ErrEmptyPlan):
		writeError(w, http.StatusUnprocessableEntity, "empty_plan", WrapKind(op, ErrEmptyPlan, err))
		return
	case errors.Is(err, model.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
		return
	}
	writeJSON(w, http.StatusCreated, toPlanResponse(res))
}
