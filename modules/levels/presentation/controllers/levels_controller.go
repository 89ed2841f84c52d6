package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
	"github.com/iota-uz/levels/modules/levels/presentation/mappers"
	"github.com/iota-uz/levels/modules/levels/presentation/viewmodels"
	"github.com/iota-uz/levels/modules/levels/services"
	"github.com/iota-uz/levels/pkg/serrors"
)

type LevelsController struct {
	levels      *services.LevelService
	cascade     *services.CascadeService
	replication *services.ReplicationService
	query       *services.QueryService
	tiers       tier.Repository
	basePath    string
}

func NewLevelsController(
	levels *services.LevelService,
	cascade *services.CascadeService,
	replication *services.ReplicationService,
	query *services.QueryService,
	tiers tier.Repository,
) *LevelsController {
	return &LevelsController{
		levels:      levels,
		cascade:     cascade,
		replication: replication,
		query:       query,
		tiers:       tiers,
		basePath:    "/levels/api",
	}
}

func (c *LevelsController) Key() string {
	return c.basePath
}

func (c *LevelsController) Register(r *mux.Router) {
	api := r.PathPrefix(c.basePath).Subrouter()

	api.HandleFunc("/tiers", c.ListTiers).Methods(http.MethodGet)

	api.HandleFunc("/levels", c.ListLevels).Methods(http.MethodGet)
	api.HandleFunc("/levels", c.CreateLevel).Methods(http.MethodPost)
	api.HandleFunc("/levels/{id}", c.GetLevel).Methods(http.MethodGet)
	api.HandleFunc("/levels/{id}", c.UpdateLevel).Methods(http.MethodPatch)
	api.HandleFunc("/levels/{id}:delete-subtree", c.DeleteSubtree).Methods(http.MethodPost)
	api.HandleFunc("/levels/{id}:replicate", c.ReplicateSubtree).Methods(http.MethodPost)

	api.HandleFunc("/activities/{id}:copy", c.CopyActivity).Methods(http.MethodPost)
	api.HandleFunc("/activities/{id}", c.DeleteActivity).Methods(http.MethodDelete)
	api.HandleFunc("/level-activities", c.ListActivities).Methods(http.MethodGet)

	api.HandleFunc("/tree", c.GetTree).Methods(http.MethodGet)
}

type tierResponse struct {
	ID            uuid.UUID `json:"id"`
	Label         string    `json:"label"`
	ChainPosition int       `json:"chain_position"`
	Color         string    `json:"color"`
}

type levelResponse struct {
	ID                 uuid.UUID  `json:"id"`
	TierID             uuid.UUID  `json:"tier_id"`
	ParentID           *uuid.UUID `json:"parent_id,omitempty"`
	Name               string     `json:"name"`
	IsTemplate         bool       `json:"is_template"`
	IsGeneric          bool       `json:"is_generic"`
	IsMaintainableUnit bool       `json:"is_maintainable_unit"`
	Icon               *string    `json:"icon,omitempty"`
	Comment            *string    `json:"comment,omitempty"`
	Owner              *string    `json:"owner,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

type levelRequest struct {
	TierID             uuid.UUID  `json:"tier_id"`
	ParentID           *uuid.UUID `json:"parent_id"`
	Name               string     `json:"name"`
	IsTemplate         bool       `json:"is_template"`
	IsGeneric          bool       `json:"is_generic"`
	IsMaintainableUnit bool       `json:"is_maintainable_unit"`
	Icon               *string    `json:"icon"`
	Comment            *string    `json:"comment"`
	Owner              *string    `json:"owner"`
}

type activityResponse struct {
	ID              uuid.UUID `json:"id"`
	LevelID         uuid.UUID `json:"level_id"`
	AttributeTypeID uuid.UUID `json:"attribute_type_id"`
	DisplayOrder    int       `json:"display_order"`
	Description     string    `json:"description"`

	FailureMode          *string    `json:"failure_mode,omitempty"`
	FailureEffect        *string    `json:"failure_effect,omitempty"`
	MTTF                 *float64   `json:"mttf,omitempty"`
	MTTFUnit             *string    `json:"mttf_unit,omitempty"`
	FailureConsequenceID *uuid.UUID `json:"failure_consequence_id,omitempty"`
	MaintenanceClassID   *uuid.UUID `json:"maintenance_class_id,omitempty"`
	AccessConditionID    *uuid.UUID `json:"access_condition_id,omitempty"`
	TaskFrequency        *float64   `json:"task_frequency,omitempty"`
	FrequencyUnit        *string    `json:"frequency_unit,omitempty"`
	Duration             *float64   `json:"duration,omitempty"`
	ResourceCount        *int32     `json:"resource_count,omitempty"`
	DisciplineID         *uuid.UUID `json:"discipline_id,omitempty"`
}

type enrichedActivityResponse struct {
	activityResponse

	LevelName     string     `json:"level_name"`
	LevelTierID   uuid.UUID  `json:"level_tier_id"`
	LevelParentID *uuid.UUID `json:"level_parent_id,omitempty"`
	TierColor     string     `json:"tier_color"`

	DisciplineLabel         *string `json:"discipline_label,omitempty"`
	MaintenanceClassLabel   *string `json:"maintenance_class_label,omitempty"`
	AccessConditionLabel    *string `json:"access_condition_label,omitempty"`
	FailureConsequenceLabel *string `json:"failure_consequence_label,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *LevelsController) ListTiers(w http.ResponseWriter, r *http.Request) {
	tiers, err := c.tiers.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]tierResponse, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, tierResponse{
			ID:            t.ID,
			Label:         t.Label,
			ChainPosition: int(t.ChainPosition),
			Color:         t.Color,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]tierResponse{"data": out})
}

func (c *LevelsController) ListLevels(w http.ResponseWriter, r *http.Request) {
	params := &level.FindParams{}
	q := r.URL.Query()
	var err error
	if params.TierID, err = parseUUIDQuery(q.Get("tier_id")); err != nil {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_QUERY", "tier_id is invalid")
		return
	}
	if params.ParentID, err = parseUUIDQuery(q.Get("parent_id")); err != nil {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_QUERY", "parent_id is invalid")
		return
	}
	params.RootsOnly = q.Get("roots") == "true"

	found, err := c.levels.List(r.Context(), params)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]levelResponse, 0, len(found))
	for _, l := range found {
		out = append(out, toLevelResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string][]levelResponse{"data": out})
}

func (c *LevelsController) GetLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	l, err := c.levels.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLevelResponse(l))
}

func (c *LevelsController) CreateLevel(w http.ResponseWriter, r *http.Request) {
	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_BODY", "request body is not valid JSON")
		return
	}
	created, err := c.levels.Create(r.Context(), req.toEntity(uuid.Nil))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLevelResponse(created))
}

func (c *LevelsController) UpdateLevel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_BODY", "request body is not valid JSON")
		return
	}
	updated, err := c.levels.Update(r.Context(), req.toEntity(id))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLevelResponse(updated))
}

func (c *LevelsController) DeleteSubtree(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := c.cascade.DeleteLevelSubtree(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLevelResponse(deleted))
}

func (c *LevelsController) ReplicateSubtree(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	// The body is optional: replicating in place needs no target parent.
	var req struct {
		TargetParentID *uuid.UUID `json:"target_parent_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_BODY", "request body is not valid JSON")
		return
	}
	newRoot, err := c.replication.ReplicateSubtree(r.Context(), id, req.TargetParentID)
	if err != nil {
		writeError(w, err)
		return
	}
	if newRoot == nil {
		writeAPIError(w, http.StatusNotFound, "LEVEL_NOT_FOUND", "level not found")
		return
	}
	writeJSON(w, http.StatusCreated, toLevelResponse(newRoot))
}

func (c *LevelsController) CopyActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		TargetLevelID uuid.UUID `json:"target_level_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_BODY", "request body is not valid JSON")
		return
	}
	if req.TargetLevelID == uuid.Nil {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_BODY", "target_level_id is required")
		return
	}
	created, err := c.replication.CopyActivity(r.Context(), id, req.TargetLevelID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toActivityResponse(created))
}

func (c *LevelsController) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := c.cascade.DeleteActivity(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toActivityResponse(deleted))
}

func (c *LevelsController) ListActivities(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_QUERY", err.Error())
		return
	}
	rows, err := c.query.QueryActivities(r.Context(), f)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]enrichedActivityResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, enrichedActivityResponse{
			activityResponse:        toActivityResponse(&row.Activity),
			LevelName:               row.LevelName,
			LevelTierID:             row.LevelTierID,
			LevelParentID:           row.LevelParentID,
			TierColor:               row.TierColor,
			DisciplineLabel:         row.DisciplineLabel,
			MaintenanceClassLabel:   row.MaintenanceClassLabel,
			AccessConditionLabel:    row.AccessConditionLabel,
			FailureConsequenceLabel: row.FailureConsequenceLabel,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]enrichedActivityResponse{"data": out})
}

func (c *LevelsController) GetTree(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tiers, err := c.tiers.List(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	found, err := c.levels.List(ctx, &level.FindParams{})
	if err != nil {
		writeError(w, err)
		return
	}
	rows, err := c.query.QueryActivities(ctx, nil)
	if err != nil {
		writeError(w, err)
		return
	}
	activities := make([]*activity.Activity, 0, len(rows))
	for _, row := range rows {
		a := row.Activity
		activities = append(activities, &a)
	}

	opts := mappers.TreeOptions{DetectRootTier: r.URL.Query().Get("detect_root_tier") == "true"}
	tree := mappers.BuildTree(tiers, found, activities, opts)
	writeJSON(w, http.StatusOK, map[string][]viewmodels.TreeNode{"data": tree})
}

func (req levelRequest) toEntity(id uuid.UUID) *level.Level {
	return &level.Level{
		ID:                 id,
		TierID:             req.TierID,
		ParentID:           req.ParentID,
		Name:               req.Name,
		IsTemplate:         req.IsTemplate,
		IsGeneric:          req.IsGeneric,
		IsMaintainableUnit: req.IsMaintainableUnit,
		Icon:               req.Icon,
		Comment:            req.Comment,
		Owner:              req.Owner,
	}
}

func toLevelResponse(l *level.Level) levelResponse {
	return levelResponse{
		ID:                 l.ID,
		TierID:             l.TierID,
		ParentID:           l.ParentID,
		Name:               l.Name,
		IsTemplate:         l.IsTemplate,
		IsGeneric:          l.IsGeneric,
		IsMaintainableUnit: l.IsMaintainableUnit,
		Icon:               l.Icon,
		Comment:            l.Comment,
		Owner:              l.Owner,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

func toActivityResponse(a *activity.Activity) activityResponse {
	return activityResponse{
		ID:                   a.ID,
		LevelID:              a.LevelID,
		AttributeTypeID:      a.AttributeTypeID,
		DisplayOrder:         a.DisplayOrder,
		Description:          a.Description,
		FailureMode:          a.FailureMode,
		FailureEffect:        a.FailureEffect,
		MTTF:                 a.MTTF,
		MTTFUnit:             a.MTTFUnit,
		FailureConsequenceID: a.FailureConsequenceID,
		MaintenanceClassID:   a.MaintenanceClassID,
		AccessConditionID:    a.AccessConditionID,
		TaskFrequency:        a.TaskFrequency,
		FrequencyUnit:        a.FrequencyUnit,
		Duration:             a.Duration,
		ResourceCount:        a.ResourceCount,
		DisciplineID:         a.DisciplineID,
	}
}

func filterFromQuery(r *http.Request) (*activity.Filter, error) {
	q := r.URL.Query()
	f := &activity.Filter{}
	var err error
	if f.LevelID, err = parseUUIDQuery(q.Get("level_id")); err != nil {
		return nil, errors.New("level_id is invalid")
	}
	if f.DisciplineID, err = parseUUIDQuery(q.Get("discipline_id")); err != nil {
		return nil, errors.New("discipline_id is invalid")
	}
	if f.AccessConditionID, err = parseUUIDQuery(q.Get("access_condition_id")); err != nil {
		return nil, errors.New("access_condition_id is invalid")
	}
	if f.MaintenanceClassID, err = parseUUIDQuery(q.Get("maintenance_class_id")); err != nil {
		return nil, errors.New("maintenance_class_id is invalid")
	}
	if f.FailureConsequenceID, err = parseUUIDQuery(q.Get("failure_consequence_id")); err != nil {
		return nil, errors.New("failure_consequence_id is invalid")
	}
	if raw := q.Get("task_frequency"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, errors.New("task_frequency is invalid")
		}
		f.TaskFrequency = &v
	}
	if raw := q.Get("frequency_unit"); raw != "" {
		f.FrequencyUnit = &raw
	}
	return f, nil
}

func parseUUIDQuery(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, http.StatusBadRequest, "LEVELS_INVALID_ID", "id is not a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	var base *serrors.BaseError
	if !errors.As(err, &base) {
		writeAPIError(w, http.StatusInternalServerError, "LEVELS_INTERNAL", "internal error")
		return
	}
	status := http.StatusInternalServerError
	switch serrors.KindOf(err) {
	case serrors.KindNotFound:
		status = http.StatusNotFound
	case serrors.KindValidation:
		status = http.StatusBadRequest
	case serrors.KindPartialFailure:
		status = http.StatusConflict
	}
	writeAPIError(w, status, base.Code, base.Message)
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, apiError{Code: code, Message: message})
}

func writeJSON[T any](w http.ResponseWriter, status int, payload T) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
