package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/levels/modules/levels/domain/entities/activity"
	"github.com/iota-uz/levels/modules/levels/domain/entities/level"
	"github.com/iota-uz/levels/modules/levels/domain/entities/tier"
	"github.com/iota-uz/levels/modules/levels/presentation/controllers"
	"github.com/iota-uz/levels/modules/levels/services"
	"github.com/iota-uz/levels/pkg/constants"
	"github.com/iota-uz/levels/pkg/eventbus"
	"github.com/iota-uz/levels/pkg/itf"
)

type env struct {
	router     *mux.Router
	tiers      *itf.TierRepository
	levels     *itf.LevelRepository
	activities *itf.ActivityRepository
	values     *itf.ValueRepository
}

func newEnv(t *testing.T) *env {
	t.Helper()

	log := itf.NopLogger()
	tiers := itf.NewTierRepository()
	levels := itf.NewLevelRepository()
	activities := itf.NewActivityRepository(levels, tiers)
	values := itf.NewValueRepository()
	bus := eventbus.NewEventPublisher(log)
	cfg := services.Config{}

	controller := controllers.NewLevelsController(
		services.NewLevelService(cfg, log, levels, tiers),
		services.NewCascadeService(log, bus, levels, activities, values),
		services.NewReplicationService(cfg, log, bus, levels, activities, values, tiers),
		services.NewQueryService(log, levels, activities),
		tiers,
	)

	router := mux.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), constants.TxKey, struct{}{})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	controller.Register(router)

	return &env{router: router, tiers: tiers, levels: levels, activities: activities, values: values}
}

func (e *env) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload.Code
}

func TestLevelsController_GetLevel_InvalidID(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/levels/api/levels/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "LEVELS_INVALID_ID", decodeError(t, rec))
}

func TestLevelsController_GetLevel_NotFound(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, http.MethodGet, "/levels/api/levels/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "LEVEL_NOT_FOUND", decodeError(t, rec))
}

func TestLevelsController_CreateAndGetLevel(t *testing.T) {
	e := newEnv(t)
	area := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Area", ChainPosition: tier.ChainArea})

	rec := e.do(t, http.MethodPost, "/levels/api/levels", `{"tier_id":"`+area.ID.String()+`","name":"Plant"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID   uuid.UUID `json:"id"`
		Name string    `json:"name"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.Equal(t, "Plant", created.Name)

	rec = e.do(t, http.MethodGet, "/levels/api/levels/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestLevelsController_CreateLevel_EmptyNameRejected(t *testing.T) {
	e := newEnv(t)
	area := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Area", ChainPosition: tier.ChainArea})

	rec := e.do(t, http.MethodPost, "/levels/api/levels", `{"tier_id":"`+area.ID.String()+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "LEVEL_NAME_REQUIRED", decodeError(t, rec))
}

func TestLevelsController_DeleteSubtree(t *testing.T) {
	e := newEnv(t)
	area := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Area", ChainPosition: tier.ChainArea})
	process := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Process", ChainPosition: tier.ChainProcess})

	root := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: area.ID, Name: "Plant"})
	child := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: process.ID, ParentID: &root.ID, Name: "Crushing"})

	rec := e.do(t, http.MethodPost, "/levels/api/levels/"+root.ID.String()+":delete-subtree", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, e.levels.Has(root.ID))
	require.False(t, e.levels.Has(child.ID))

	rec = e.do(t, http.MethodPost, "/levels/api/levels/"+root.ID.String()+":delete-subtree", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLevelsController_ReplicateSubtree(t *testing.T) {
	e := newEnv(t)
	area := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Area", ChainPosition: tier.ChainArea})
	process := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Process", ChainPosition: tier.ChainProcess})

	target := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: area.ID, Name: "North plant"})
	template := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: process.ID, Name: "Crushing template", IsTemplate: true})

	rec := e.do(t, http.MethodPost, "/levels/api/levels/"+template.ID.String()+":replicate",
		`{"target_parent_id":"`+target.ID.String()+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		ID         uuid.UUID  `json:"id"`
		ParentID   *uuid.UUID `json:"parent_id"`
		IsTemplate bool       `json:"is_template"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEqual(t, template.ID, created.ID)
	require.NotNil(t, created.ParentID)
	require.Equal(t, target.ID, *created.ParentID)
	require.False(t, created.IsTemplate)
}

func TestLevelsController_ListActivities_FiltersBySubtree(t *testing.T) {
	e := newEnv(t)
	area := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Area", ChainPosition: tier.ChainArea})
	process := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Process", ChainPosition: tier.ChainProcess})

	root := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: area.ID, Name: "Plant"})
	crushing := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: process.ID, ParentID: &root.ID, Name: "Crushing"})
	milling := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: process.ID, ParentID: &root.ID, Name: "Milling"})

	e.activities.Seed(&activity.Activity{ID: uuid.New(), LevelID: crushing.ID, Description: "Inspect jaw"})
	e.activities.Seed(&activity.Activity{ID: uuid.New(), LevelID: milling.ID, Description: "Check mill"})

	rec := e.do(t, http.MethodGet, "/levels/api/level-activities?level_id="+crushing.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data []struct {
			Description string `json:"description"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	require.Equal(t, "Inspect jaw", payload.Data[0].Description)
}

func TestLevelsController_GetTree(t *testing.T) {
	e := newEnv(t)
	area := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Area", ChainPosition: tier.ChainArea})
	process := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Process", ChainPosition: tier.ChainProcess})

	root := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: area.ID, Name: "Plant"})
	e.levels.Seed(&level.Level{ID: uuid.New(), TierID: process.ID, ParentID: &root.ID, Name: "Crushing"})

	rec := e.do(t, http.MethodGet, "/levels/api/tree", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data []struct {
			ID       uuid.UUID `json:"id"`
			Kind     string    `json:"kind"`
			Children []struct {
				Name string `json:"name"`
			} `json:"children"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Data, 1)
	require.Equal(t, root.ID, payload.Data[0].ID)
	require.Equal(t, "level", payload.Data[0].Kind)
	require.Len(t, payload.Data[0].Children, 1)
	require.Equal(t, "Crushing", payload.Data[0].Children[0].Name)
}

func TestLevelsController_DeleteActivity(t *testing.T) {
	e := newEnv(t)
	tr := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Area", ChainPosition: tier.ChainArea})
	lvl := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: tr.ID, Name: "Plant"})
	act := e.activities.Seed(&activity.Activity{ID: uuid.New(), LevelID: lvl.ID, AttributeTypeID: uuid.New(), Description: "Swap filters"})

	rec := e.do(t, http.MethodDelete, "/levels/api/activities/"+act.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, e.activities.Has(act.ID))

	rec = e.do(t, http.MethodDelete, "/levels/api/activities/"+act.ID.String(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "ACTIVITY_NOT_FOUND", decodeError(t, rec))
}

func TestLevelsController_ReplicateSubtree_TargetInsideSource(t *testing.T) {
	e := newEnv(t)
	tr := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "Process", ChainPosition: tier.ChainProcess})
	sys := e.tiers.Seed(&tier.Tier{ID: uuid.New(), Label: "System", ChainPosition: tier.ChainSystem})
	root := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: tr.ID, Name: "Flotation"})
	child := e.levels.Seed(&level.Level{ID: uuid.New(), TierID: sys.ID, ParentID: &root.ID, Name: "Rougher cells"})

	rec := e.do(t, http.MethodPost, "/levels/api/levels/"+root.ID.String()+":replicate",
		`{"target_parent_id":"`+child.ID.String()+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "LEVEL_REPLICATE_TARGET_IN_SUBTREE", decodeError(t, rec))
	require.Equal(t, 2, e.levels.Len())
}
