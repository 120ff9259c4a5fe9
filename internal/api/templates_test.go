package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/macrolog/backend/internal/models"
	"github.com/pageza/macrolog/backend/internal/service"
	"github.com/pageza/macrolog/backend/internal/types"
)

func createTemplate(t *testing.T, env *testEnv, values types.MacroValues) models.FoodTemplate {
	t.Helper()
	w := env.do(t, http.MethodPost, "/api/v1/templates", types.CreateTemplateRequest{MacroValues: values})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		Template models.FoodTemplate `json:"template"`
	}
	decode(t, w, &body)
	return body.Template
}

func TestTemplateLifecycle(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/templates", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"templates":[]}`, w.Body.String())

	oats := createTemplate(t, env, types.MacroValues{Name: "Overnight oats", Calories: 320, Protein: 12.44, Carbs: 48.2, Fat: 8.75})
	assert.Equal(t, 12.4, oats.Protein)
	assert.Equal(t, 8.8, oats.Fat)
	assert.Zero(t, oats.UseCount)
	createTemplate(t, env, types.MacroValues{Name: "Egg", Calories: 78})

	w = env.do(t, http.MethodPost, "/api/v1/templates/"+oats.ID.String()+"/use", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var used service.UsedTemplate
	decode(t, w, &used)
	assert.Equal(t, 1, used.Template.UseCount)
	assert.Equal(t, service.ManualInput{Name: "Overnight oats", Calories: 320, Protein: 12, Carbs: 48, Fat: 9}, used.Prefill)

	w = env.do(t, http.MethodGet, "/api/v1/templates", nil)
	var listed struct {
		Templates []models.FoodTemplate `json:"templates"`
	}
	decode(t, w, &listed)
	require.Len(t, listed.Templates, 2)
	assert.Equal(t, oats.ID, listed.Templates[0].ID)

	w = env.do(t, http.MethodGet, "/api/v1/templates?q=egg", nil)
	decode(t, w, &listed)
	require.Len(t, listed.Templates, 1)
	assert.Equal(t, "Egg", listed.Templates[0].Name)

	w = env.do(t, http.MethodGet, "/api/v1/templates/"+oats.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	for i := 0; i < 2; i++ {
		w = env.do(t, http.MethodDelete, "/api/v1/templates/"+oats.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	w = env.do(t, http.MethodPost, "/api/v1/templates/"+oats.ID.String()+"/use", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTemplateValidation(t *testing.T) {
	env := setupTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/v1/templates", types.CreateTemplateRequest{
		MacroValues: types.MacroValues{Name: "", Calories: 100},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"name"`)

	w = env.do(t, http.MethodPost, "/api/v1/templates/not-a-uuid/use", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/templates/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
