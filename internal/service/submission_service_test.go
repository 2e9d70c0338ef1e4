package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"lms_backend/internal/identity"
	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	mu    sync.Mutex
	tests map[uint]*model.Test
	err   error
	loads int
}

func (f *fakeCatalog) LoadTestAggregate(_ context.Context, id uint) (*model.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tests[id]
	if !ok {
		return nil, util.ErrTestNotFound
	}
	return t, nil
}

type fakeResults struct {
	mu      sync.Mutex
	nextID  uint
	err     error
	records []model.TestResult
}

func (f *fakeResults) Append(_ context.Context, r *model.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	r.ID = f.nextID
	r.CompletedAt = time.Now().UTC()
	f.records = append(f.records, *r)
	return nil
}

func (f *fakeResults) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records)
}

type fakeRoles map[uint]model.UserRole

func (f fakeRoles) Role(_ context.Context, p identity.Principal) (model.UserRole, error) {
	role, ok := f[p.UserID]
	if !ok {
		return "", util.ErrUnauthorized
	}
	return role, nil
}

const (
	studentID uint = 1
	teacherID uint = 2
	adminID   uint = 3
)

// 测试 10：q1 正确 {11}，错误 {12}；q2 正确 {21,22}，错误 {23}
func scenarioTest() *model.Test {
	return &model.Test{
		CatalogBase: model.CatalogBase{ID: 10},
		Title:       "scenario",
		Questions: []model.Question{
			{CatalogBase: model.CatalogBase{ID: 1}, TestID: 10, Answers: []model.Answer{
				{CatalogBase: model.CatalogBase{ID: 11}, QuestionID: 1, IsCorrect: true},
				{CatalogBase: model.CatalogBase{ID: 12}, QuestionID: 1},
			}},
			{CatalogBase: model.CatalogBase{ID: 2}, TestID: 10, Answers: []model.Answer{
				{CatalogBase: model.CatalogBase{ID: 21}, QuestionID: 2, IsCorrect: true},
				{CatalogBase: model.CatalogBase{ID: 22}, QuestionID: 2, IsCorrect: true},
				{CatalogBase: model.CatalogBase{ID: 23}, QuestionID: 2},
			}},
		},
	}
}

func newSubmissionFixture() (*SubmissionService, *fakeCatalog, *fakeResults) {
	catalog := &fakeCatalog{tests: map[uint]*model.Test{
		10: scenarioTest(),
		20: {CatalogBase: model.CatalogBase{ID: 20}, Title: "empty"},
	}}
	results := &fakeResults{}
	roles := fakeRoles{studentID: model.Student, teacherID: model.Teacher, adminID: model.Admin}
	return NewSubmissionService(catalog, results, roles), catalog, results
}

func submit(svc *SubmissionService, user uint, testID, answers string) (*SubmissionView, error) {
	return svc.Submit(context.Background(), identity.Principal{UserID: user}, SubmitRequest{
		TestID:  testID,
		Answers: json.RawMessage(answers),
	})
}

func TestSubmitScenarioScores(t *testing.T) {
	cases := []struct {
		name    string
		answers string
		score   int
	}{
		{"all correct", `{"1":[11],"2":[21,22]}`, 2},
		{"superset and subset", `{"1":[11,12],"2":[21]}`, 0},
		{"one correct", `{"1":[11],"2":[21]}`, 1},
		{"order and duplicates ignored", `{"1":[11,11],"2":[22,21]}`, 2},
		{"numeric strings", `{"1":["11"],"2":["21","22"]}`, 2},
		{"foreign question ignored", `{"1":[11],"2":[21,22],"999":[1,2,3]}`, 2},
		{"empty object", `{}`, 0},
		{"null selections", `{"1":null,"2":null}`, 0},
		{"question id beyond 32 bits ignored", `{"1":[11],"2":[21,22],"4294967296":[1]}`, 2},
		{"overflowing question id ignored", `{"1":[11],"2":[21,22],"99999999999999999999999":[1]}`, 2},
		{"zero question id ignored", `{"0":[12],"1":[11],"2":[21,22]}`, 2},
		{"leading zero key is not question 1", `{"1":[11],"01":[12],"2":[21,22]}`, 2},
		{"leading zero key alone selects nothing", `{"01":[11],"2":[21,22]}`, 1},
		{"unknown answer id fails its question", `{"1":[11,0],"2":[21,22]}`, 1},
		{"overflowing answer id fails its question", `{"1":[11,99999999999999999999999],"2":[21,22]}`, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, results := newSubmissionFixture()
			view, err := submit(svc, studentID, "10", tc.answers)
			require.NoError(t, err)
			assert.Equal(t, tc.score, view.Score)
			assert.Equal(t, uint(10), view.TestID)
			assert.Equal(t, studentID, view.StudentID)
			assert.Equal(t, 2, view.QuestionCount)
			assert.NotZero(t, view.TestResultID)
			assert.False(t, view.CompletedAt.IsZero())
			assert.Equal(t, 1, results.count())
		})
	}
}

func TestSubmitEmptyTestScoresZero(t *testing.T) {
	svc, _, _ := newSubmissionFixture()
	view, err := submit(svc, studentID, "20", `{"1":[11]}`)
	require.NoError(t, err)
	assert.Zero(t, view.Score)
	assert.Zero(t, view.QuestionCount)
}

func TestSubmitAuthorization(t *testing.T) {
	cases := []struct {
		name string
		user uint
		want error
	}{
		{"anonymous", 0, util.ErrUnauthorized},
		{"unknown user", 77, util.ErrUnauthorized},
		{"teacher", teacherID, util.ErrForbidden},
		{"admin", adminID, util.ErrForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, catalog, results := newSubmissionFixture()
			_, err := submit(svc, tc.user, "10", `{"1":[11]}`)
			assert.ErrorIs(t, err, tc.want)
			assert.Zero(t, catalog.loads)
			assert.Zero(t, results.count())
		})
	}
}

type countingRoles struct {
	fakeRoles
	mu    sync.Mutex
	calls int
}

func (c *countingRoles) Role(ctx context.Context, p identity.Principal) (model.UserRole, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.fakeRoles.Role(ctx, p)
}

func TestSubmitReusesResolvedRole(t *testing.T) {
	roles := &countingRoles{fakeRoles: fakeRoles{studentID: model.Student, teacherID: model.Teacher}}
	catalog := &fakeCatalog{tests: map[uint]*model.Test{10: scenarioTest()}}
	svc := NewSubmissionService(catalog, &fakeResults{}, roles)
	req := SubmitRequest{TestID: "10", Answers: json.RawMessage(`{"1":[11]}`)}
	student := identity.Principal{UserID: studentID}

	ctx := identity.WithResolvedRole(context.Background(), student, model.Student)
	view, err := svc.Submit(ctx, student, req)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Score)
	assert.Zero(t, roles.calls)

	teacher := identity.Principal{UserID: teacherID}
	ctx = identity.WithResolvedRole(context.Background(), teacher, model.Teacher)
	_, err = svc.Submit(ctx, teacher, req)
	assert.ErrorIs(t, err, util.ErrForbidden)
	assert.Zero(t, roles.calls)

	// 属于其他用户的记录不被采用
	_, err = svc.Submit(ctx, student, req)
	require.NoError(t, err)
	assert.Equal(t, 1, roles.calls)
}

func TestSubmitRejectsMalformedPayload(t *testing.T) {
	payloads := []string{
		``,
		`null`,
		`[]`,
		`"answers"`,
		`42`,
		`{"a":[11]}`,
		`{"-1":[11]}`,
		`{" 1":[11]}`,
		`{"1a":[11]}`,
		`{"1":[1.5]}`,
		`{"1":[-11]}`,
		`{"1":[1e3]}`,
		`{"1":["1.0"]}`,
		`{"1":[true]}`,
		`{"1":["x"]}`,
		`{"1":[[11]]}`,
		`{"1":11}`,
		`{"1":"11"}`,
		`{"1":{"11":true}}`,
		`{"1":[11]`,
	}
	for _, payload := range payloads {
		t.Run(payload, func(t *testing.T) {
			svc, catalog, results := newSubmissionFixture()
			_, err := submit(svc, studentID, "10", payload)
			assert.ErrorIs(t, err, util.ErrInvalidSubmission)
			assert.Zero(t, catalog.loads, "validation must happen before loading")
			assert.Zero(t, results.count())
		})
	}
}

func TestSubmitBadTestIDIsNotFound(t *testing.T) {
	svc, catalog, results := newSubmissionFixture()
	for _, id := range []string{"", "abc", "0", "-3", "1.5"} {
		_, err := submit(svc, studentID, id, `{}`)
		assert.ErrorIs(t, err, util.ErrTestNotFound, id)
	}
	assert.Zero(t, catalog.loads)
	assert.Zero(t, results.count())
}

func TestSubmitUnknownTest(t *testing.T) {
	svc, _, results := newSubmissionFixture()
	_, err := submit(svc, studentID, "404", `{}`)
	assert.ErrorIs(t, err, util.ErrTestNotFound)
	assert.Zero(t, results.count())
}

func TestSubmitStoreFailures(t *testing.T) {
	svc, catalog, results := newSubmissionFixture()
	catalog.err = util.StoreError("load test aggregate", errors.New("connection reset"))
	_, err := submit(svc, studentID, "10", `{}`)
	assert.ErrorIs(t, err, util.ErrStoreUnavailable)
	assert.Zero(t, results.count())

	catalog.err = nil
	results.err = util.StoreError("append test result", errors.New("disk full"))
	_, err = submit(svc, studentID, "10", `{}`)
	assert.ErrorIs(t, err, util.ErrStoreUnavailable)
	assert.Equal(t, 2, catalog.loads, "no internal retry")
}

func TestResubmissionCreatesNewRecord(t *testing.T) {
	svc, _, results := newSubmissionFixture()
	first, err := submit(svc, studentID, "10", `{"1":[11]}`)
	require.NoError(t, err)
	second, err := submit(svc, studentID, "10", `{"1":[11],"2":[21,22]}`)
	require.NoError(t, err)

	assert.NotEqual(t, first.TestResultID, second.TestResultID)
	assert.Equal(t, 1, first.Score)
	assert.Equal(t, 2, second.Score)
	require.Equal(t, 2, results.count())
	assert.Equal(t, 1, results.records[0].Score)
}

func TestSubmitStoresNormalizedAnswers(t *testing.T) {
	svc, _, results := newSubmissionFixture()
	_, err := submit(svc, studentID, "10", `{"2":["22",21,21],"1":null}`)
	require.NoError(t, err)
	require.Equal(t, 1, results.count())
	assert.JSONEq(t, `{"1":[],"2":[21,22]}`, string(results.records[0].Answers))
}

func TestConcurrentSubmissions(t *testing.T) {
	svc, _, results := newSubmissionFixture()
	const n = 50

	var wg sync.WaitGroup
	ids := make(chan uint, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			answers := `{"1":[11],"2":[21,22]}`
			want := 2
			if i%2 == 1 {
				answers = `{"1":[12]}`
				want = 0
			}
			view, err := submit(svc, studentID, "10", answers)
			if assert.NoError(t, err) {
				assert.Equal(t, want, view.Score)
				ids <- view.TestResultID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := map[uint]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate result id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, results.count())
}
