package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"daily-diet/internal/repository/sqlite"
	"daily-diet/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	mealRepo := sqlite.NewMealRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, mealRepo.Init(ctx))

	router := gin.New()
	handler := NewHandler(service.NewUserService(userRepo), service.NewMealService(mealRepo))
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerUser(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/users", "", gin.H{
		"name":     "John Doe",
		"email":    email,
		"password": "123456",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	token, _ := decodeBody(t, w)["session_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createMeal(t *testing.T, router *gin.Engine, token string, body gin.H) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/meals", token, body)
	require.Equal(t, http.StatusCreated, w.Code)

	meal, _ := decodeBody(t, w)["meal"].(map[string]any)
	id, _ := meal["id"].(string)
	require.NotEmpty(t, id)
	return id
}

func mealBody(name string, onDiet bool) gin.H {
	return gin.H{
		"name":        name,
		"description": "",
		"date":        "2024-01-01",
		"time":        "12:00",
		"is_on_diet":  onDiet,
	}
}

func TestRegister_CreatesUserAndSetsCookie(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", "", gin.H{
		"name":     "John Doe",
		"email":    "johndoe@example.com",
		"password": "123456",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	body := decodeBody(t, w)
	assert.NotEmpty(t, body["session_token"])
	assert.Contains(t, w.Header().Get("Set-Cookie"), sessionCookieName+"=")

	user, _ := body["user"].(map[string]any)
	require.NotNil(t, user)
	assert.Equal(t, "johndoe@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")
}

func TestRegister_DuplicateEmailConflict(t *testing.T) {
	router := newTestRouter(t)

	registerUser(t, router, "dup@example.com")
	w := doJSON(t, router, http.MethodPost, "/api/users", "", gin.H{
		"name":     "Second",
		"email":    "dup@example.com",
		"password": "654321",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestRegister_ShortPasswordRejected(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/users", "", gin.H{
		"name":     "John",
		"email":    "john@example.com",
		"password": "12345",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMealRoutes_RequireSession(t *testing.T) {
	router := newTestRouter(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/meals"},
		{http.MethodGet, "/api/meals"},
		{http.MethodGet, "/api/meals/some-id"},
		{http.MethodPut, "/api/meals/some-id"},
		{http.MethodDelete, "/api/meals/some-id"},
		{http.MethodGet, "/api/meals/metrics"},
	} {
		w := doJSON(t, router, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s without token", tc.method, tc.path)

		w = doJSON(t, router, tc.method, tc.path, "not-a-real-token", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s with bogus token", tc.method, tc.path)
	}
}

func TestSession_TokenViaCookie(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "cookie@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/meals", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
}

func TestMeal_CreateAndReadBack(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@example.com")

	id := createMeal(t, router, token, gin.H{
		"name":        "Lunch",
		"description": "Salad",
		"date":        "2024-01-01",
		"time":        "12:00",
		"is_on_diet":  true,
	})

	w := doJSON(t, router, http.MethodGet, "/api/meals/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	meal, _ := decodeBody(t, w)["meal"].(map[string]any)
	require.NotNil(t, meal)
	assert.Equal(t, "Lunch", meal["name"])
	assert.Equal(t, "Salad", meal["description"])
	assert.Equal(t, "2024-01-01", meal["date"])
	assert.Equal(t, "12:00", meal["time"])
	assert.Equal(t, true, meal["is_on_diet"])
	assert.NotEmpty(t, meal["created_at"])
}

func TestMeal_CreateRejectsBadDate(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@example.com")

	w := doJSON(t, router, http.MethodPost, "/api/meals", token, gin.H{
		"name":       "Lunch",
		"date":       "01/01/2024",
		"is_on_diet": true,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMeal_UpdateReplacesFields(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@example.com")
	id := createMeal(t, router, token, mealBody("Lunch", true))

	w := doJSON(t, router, http.MethodPut, "/api/meals/"+id, token, gin.H{
		"name":        "Dinner",
		"description": "Pizza",
		"date":        "2024-02-02",
		"time":        "20:00",
		"is_on_diet":  false,
	})
	require.Equal(t, http.StatusOK, w.Code)

	meal, _ := decodeBody(t, w)["meal"].(map[string]any)
	assert.Equal(t, "Dinner", meal["name"])
	assert.Equal(t, "2024-02-02", meal["date"])
	assert.Equal(t, false, meal["is_on_diet"])
}

func TestMeal_DeleteThenGone(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@example.com")
	id := createMeal(t, router, token, mealBody("Lunch", true))

	w := doJSON(t, router, http.MethodDelete, "/api/meals/"+id, token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/meals/"+id, token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMeal_InvisibleToOtherUsers(t *testing.T) {
	router := newTestRouter(t)
	alice := registerUser(t, router, "alice@example.com")
	bob := registerUser(t, router, "bob@example.com")

	id := createMeal(t, router, alice, mealBody("Lunch", true))

	w := doJSON(t, router, http.MethodGet, "/api/meals/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodPut, "/api/meals/"+id, bob, mealBody("Hijacked", false))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/meals/"+id, bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// alice still sees her meal, unchanged
	w = doJSON(t, router, http.MethodGet, "/api/meals/"+id, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	meal, _ := decodeBody(t, w)["meal"].(map[string]any)
	assert.Equal(t, "Lunch", meal["name"])
}

func TestMetrics_EmptyHistory(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@example.com")

	w := doJSON(t, router, http.MethodGet, "/api/meals/metrics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	metrics, _ := decodeBody(t, w)["metrics"].(map[string]any)
	assert.EqualValues(t, 0, metrics["total_meals"])
	assert.EqualValues(t, 0, metrics["best_on_diet_streak"])
}

func TestMetrics_StreakOverCreationOrder(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "a@example.com")

	// oldest to newest: three on-diet meals, then one off-diet. Newest-first
	// that history reads [false, true, true, true], so the best streak is 3.
	for i, onDiet := range []bool{true, true, true, false} {
		createMeal(t, router, token, mealBody(fmt.Sprintf("meal-%d", i), onDiet))
	}

	w := doJSON(t, router, http.MethodGet, "/api/meals/metrics", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	metrics, _ := decodeBody(t, w)["metrics"].(map[string]any)
	assert.EqualValues(t, 4, metrics["total_meals"])
	assert.EqualValues(t, 3, metrics["total_on_diet"])
	assert.EqualValues(t, 1, metrics["total_off_diet"])
	assert.EqualValues(t, 3, metrics["best_on_diet_streak"])
}
