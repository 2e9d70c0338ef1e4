package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/pkg/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type harness struct {
	t   *testing.T
	app *App
	db  *gorm.DB
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite", Path: "file:" + uuid.NewString() + "?mode=memory"},
		JWT:      config.JWTConfig{Secret: "e2e-secret-e2e-secret-e2e-secret!", ExpireTime: time.Hour},
	}
	db, err := database.InitDB(&cfg.Database, true)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return &harness{t: t, app: New(cfg, db, nil), db: db}
}

func (h *harness) do(method, path, token string, body interface{}) (int, envelope) {
	h.t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(h.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.app.Router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w.Code, env
}

// user 注册并按需调整角色后登录，返回令牌和用户 ID
func (h *harness) user(email string, role model.UserRole) (string, uint) {
	h.t.Helper()
	code, env := h.do(http.MethodPost, "/api/register", "", map[string]string{
		"name": "u", "email": email, "password": "password1",
	})
	require.Equal(h.t, http.StatusCreated, code, env.Message)
	var u model.User
	require.NoError(h.t, json.Unmarshal(env.Data, &u))
	if role != model.Student {
		require.NoError(h.t, h.db.Model(&model.User{}).Where("id = ?", u.ID).Update("role", role).Error)
	}

	code, env = h.do(http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": "password1"})
	require.Equal(h.t, http.StatusOK, code, env.Message)
	var login struct {
		Token string `json:"token"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &login))
	return login.Token, u.ID
}

func (h *harness) create(path, token string, body interface{}) uint {
	h.t.Helper()
	code, env := h.do(http.MethodPost, path, token, body)
	require.Equal(h.t, http.StatusCreated, code, env.Message)
	var out struct {
		ID uint `json:"id"`
	}
	require.NoError(h.t, json.Unmarshal(env.Data, &out))
	return out.ID
}

type seeded struct {
	testID             uint
	q1, q2             uint
	a1, a2, a3, a4, a5 uint
}

// seed 两道题：q1 正确 a1；q2 正确 a3、a4
func (h *harness) seed(teacher string) seeded {
	var s seeded
	course := h.create("/api/courses", teacher, map[string]interface{}{"name": "Go"})
	lesson := h.create("/api/lessons", teacher, map[string]interface{}{"title": "L1", "courseId": course})
	s.testID = h.create("/api/tests", teacher, map[string]interface{}{"title": "Quiz", "lessonId": lesson})
	s.q1 = h.create("/api/questions", teacher, map[string]interface{}{"text": "q1", "testId": s.testID})
	s.q2 = h.create("/api/questions", teacher, map[string]interface{}{"text": "q2", "testId": s.testID})
	s.a1 = h.create("/api/answers", teacher, map[string]interface{}{"text": "a1", "isCorrect": true, "questionId": s.q1})
	s.a2 = h.create("/api/answers", teacher, map[string]interface{}{"text": "a2", "questionId": s.q1})
	s.a3 = h.create("/api/answers", teacher, map[string]interface{}{"text": "a3", "isCorrect": true, "questionId": s.q2})
	s.a4 = h.create("/api/answers", teacher, map[string]interface{}{"text": "a4", "isCorrect": true, "questionId": s.q2})
	s.a5 = h.create("/api/answers", teacher, map[string]interface{}{"text": "a5", "questionId": s.q2})
	return s
}

func submitBody(sel map[uint][]uint) map[string]interface{} {
	answers := map[string][]uint{}
	for q, ids := range sel {
		answers[fmt.Sprint(q)] = ids
	}
	return map[string]interface{}{"answers": answers}
}

func TestSubmitFlow(t *testing.T) {
	h := newHarness(t)
	teacher, _ := h.user("teacher@example.com", model.Teacher)
	student, studentID := h.user("student@example.com", model.Student)
	s := h.seed(teacher)
	submitPath := fmt.Sprintf("/api/tests/%d/submit", s.testID)

	cases := []struct {
		sel   map[uint][]uint
		score int
	}{
		{map[uint][]uint{s.q1: {s.a1}, s.q2: {s.a3, s.a4}}, 2},
		{map[uint][]uint{s.q1: {s.a1, s.a2}, s.q2: {s.a3}}, 0},
		{map[uint][]uint{s.q1: {s.a1}, s.q2: {s.a3}}, 1},
	}
	for _, tc := range cases {
		code, env := h.do(http.MethodPost, submitPath, student, submitBody(tc.sel))
		require.Equal(t, http.StatusCreated, code, env.Message)
		var view struct {
			TestResultID uint      `json:"testResultId"`
			TestID       uint      `json:"testId"`
			StudentID    uint      `json:"studentId"`
			Score        int       `json:"score"`
			CompletedAt  time.Time `json:"completedAt"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &view))
		assert.Equal(t, tc.score, view.Score)
		assert.Equal(t, s.testID, view.TestID)
		assert.Equal(t, studentID, view.StudentID)
		assert.NotZero(t, view.TestResultID)
		assert.False(t, view.CompletedAt.IsZero())
	}

	code, env := h.do(http.MethodGet, fmt.Sprintf("/api/tests/%d/results/me", s.testID), student, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":3`)

	code, env = h.do(http.MethodGet, "/api/results/me", student, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":3`)

	code, env = h.do(http.MethodGet, fmt.Sprintf("/api/tests/%d/results", s.testID), teacher, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"total":3`)

	code, _ = h.do(http.MethodGet, fmt.Sprintf("/api/tests/%d/results", s.testID), student, nil)
	assert.Equal(t, http.StatusForbidden, code)
}

func TestSubmitErrors(t *testing.T) {
	h := newHarness(t)
	teacher, _ := h.user("teacher@example.com", model.Teacher)
	admin, _ := h.user("admin@example.com", model.Admin)
	student, _ := h.user("student@example.com", model.Student)
	s := h.seed(teacher)
	submitPath := fmt.Sprintf("/api/tests/%d/submit", s.testID)
	valid := submitBody(map[uint][]uint{s.q1: {s.a1}})

	code, _ := h.do(http.MethodPost, submitPath, "", valid)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = h.do(http.MethodPost, submitPath, teacher, valid)
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = h.do(http.MethodPost, submitPath, admin, valid)
	assert.Equal(t, http.StatusForbidden, code)

	// 非学生即使请求体非法也先得到 403
	code, _ = h.do(http.MethodPost, submitPath, teacher, `{"answers":`)
	assert.Equal(t, http.StatusForbidden, code)

	for _, body := range []string{`{"answers":{"x":[1]}}`, `{"answers":[1,2]}`, `{}`, `not json`, `{"answers":{"1":[1.5]}}`} {
		code, _ = h.do(http.MethodPost, submitPath, student, body)
		assert.Equal(t, http.StatusBadRequest, code, body)
	}

	for _, path := range []string{"/api/tests/99999/submit", "/api/tests/abc/submit", "/api/tests/0/submit"} {
		code, _ = h.do(http.MethodPost, path, student, valid)
		assert.Equal(t, http.StatusNotFound, code, path)
	}

	var count int64
	h.db.Model(&model.TestResult{}).Count(&count)
	assert.Zero(t, count)

	// 外部题目 ID 被忽略
	code, env := h.do(http.MethodPost, submitPath, student, `{"answers":{"424242":[1]}}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Contains(t, string(env.Data), `"score":0`)

	// 只按规范写法匹配题目 ID
	body := fmt.Sprintf(`{"answers":{"%d":[%d],"0%d":[%d],"4294967296":[1]}}`, s.q1, s.a1, s.q1, s.a2)
	code, env = h.do(http.MethodPost, submitPath, student, body)
	require.Equal(t, http.StatusCreated, code)
	assert.Contains(t, string(env.Data), `"score":1`)
}

func TestStudentsCannotSeeAnswerKey(t *testing.T) {
	h := newHarness(t)
	teacher, _ := h.user("teacher@example.com", model.Teacher)
	student, _ := h.user("student@example.com", model.Student)
	s := h.seed(teacher)

	for _, path := range []string{
		fmt.Sprintf("/api/tests/%d", s.testID),
		fmt.Sprintf("/api/questions?testId=%d", s.testID),
		fmt.Sprintf("/api/questions/%d", s.q1),
		fmt.Sprintf("/api/answers?questionId=%d", s.q2),
		fmt.Sprintf("/api/answers/%d", s.a1),
	} {
		code, env := h.do(http.MethodGet, path, student, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.NotContains(t, string(env.Data), "isCorrect", path)

		code, env = h.do(http.MethodGet, path, teacher, nil)
		require.Equal(t, http.StatusOK, code, path)
		assert.Contains(t, string(env.Data), "isCorrect", path)
	}
}

func TestCatalogRoleGates(t *testing.T) {
	h := newHarness(t)
	teacher, _ := h.user("teacher@example.com", model.Teacher)
	student, studentID := h.user("student@example.com", model.Student)
	admin, _ := h.user("admin@example.com", model.Admin)
	s := h.seed(teacher)

	code, _ := h.do(http.MethodPost, "/api/courses", student, map[string]string{"name": "nope"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = h.do(http.MethodDelete, fmt.Sprintf("/api/tests/%d", s.testID), student, nil)
	assert.Equal(t, http.StatusForbidden, code)

	h.create("/api/courses", admin, map[string]string{"name": "by admin"})

	code, _ = h.do(http.MethodGet, "/api/courses", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	code, _ = h.do(http.MethodGet, "/api/courses/abc", student, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = h.do(http.MethodGet, "/api/lessons?courseId=-1", student, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	// 角色变更下一次请求即生效，旧令牌仍可用
	code, _ = h.do(http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", studentID), teacher, map[string]string{"role": "teacher"})
	assert.Equal(t, http.StatusForbidden, code)
	code, _ = h.do(http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", studentID), admin, map[string]string{"role": "teacher"})
	require.Equal(t, http.StatusOK, code)
	code, _ = h.do(http.MethodPost, "/api/courses", student, map[string]string{"name": "promoted"})
	assert.Equal(t, http.StatusCreated, code)

	code, _ = h.do(http.MethodPatch, fmt.Sprintf("/api/admin/users/%d/role", studentID), admin, map[string]string{"role": "root"})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestDeleteTestRemovesResults(t *testing.T) {
	h := newHarness(t)
	teacher, _ := h.user("teacher@example.com", model.Teacher)
	student, _ := h.user("student@example.com", model.Student)
	s := h.seed(teacher)

	code, _ := h.do(http.MethodPost, fmt.Sprintf("/api/tests/%d/submit", s.testID), student, `{"answers":{}}`)
	require.Equal(t, http.StatusCreated, code)

	code, _ = h.do(http.MethodDelete, fmt.Sprintf("/api/tests/%d", s.testID), teacher, nil)
	require.Equal(t, http.StatusOK, code)

	var count int64
	h.db.Model(&model.TestResult{}).Count(&count)
	assert.Zero(t, count)

	code, _ = h.do(http.MethodGet, fmt.Sprintf("/api/tests/%d", s.testID), student, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestOperationalEndpoints(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"cache":"disabled"`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil)
	w = httptest.NewRecorder()
	h.app.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "/api/tests/{id}/submit"))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestConfigCallbacks(t *testing.T) {
	h := newHarness(t)
	next := *h.app.Config
	next.Log.Level = "debug"
	next.RateLimit = config.RateLimitConfig{MaxRequests: 1, WindowMinutes: 60}
	h.app.applyConfig(&next)

	code, _ := h.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = h.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, code)
}
