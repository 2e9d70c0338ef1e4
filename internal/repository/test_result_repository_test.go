package repository

import (
	"sync"
	"testing"
	"time"

	"lms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAssignsIDAndTimestamp(t *testing.T) {
	db := openTestDB(t)
	f := seedCatalog(t, db)
	repo := NewTestResultRepository(db)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	repo.Now = func() time.Time { return fixed }

	r := &model.TestResult{ID: 99, TestID: f.test.ID, StudentID: f.student.ID, Score: 2, QuestionCount: 2}
	require.NoError(t, repo.Append(bg, r))
	assert.NotZero(t, r.ID)
	assert.NotEqual(t, uint(99), r.ID)
	assert.True(t, fixed.Equal(r.CompletedAt))
}

func TestAppendKeepsEveryAttempt(t *testing.T) {
	db := openTestDB(t)
	f := seedCatalog(t, db)
	repo := NewTestResultRepository(db)

	first := &model.TestResult{TestID: f.test.ID, StudentID: f.student.ID, Score: 1, QuestionCount: 2}
	second := &model.TestResult{TestID: f.test.ID, StudentID: f.student.ID, Score: 2, QuestionCount: 2}
	require.NoError(t, repo.Append(bg, first))
	require.NoError(t, repo.Append(bg, second))
	assert.NotEqual(t, first.ID, second.ID)

	page, err := repo.ListByTestAndStudent(bg, f.test.ID, f.student.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), page.Total)
	// 最新的在前
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, 1, page.Items[1].Score)
}

func TestAppendConcurrent(t *testing.T) {
	db := openTestDB(t)
	f := seedCatalog(t, db)
	repo := NewTestResultRepository(db)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Append(bg, &model.TestResult{TestID: f.test.ID, StudentID: f.student.ID, Score: 1, QuestionCount: 2}))
		}()
	}
	wg.Wait()

	page, err := repo.ListByTest(bg, f.test.ID, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(10), page.Total)
}

func TestListByStudentAndTest(t *testing.T) {
	db := openTestDB(t)
	f := seedCatalog(t, db)
	repo := NewTestResultRepository(db)

	other := model.User{Name: "other", Email: "other@example.com", Password: "x", Role: model.Student}
	require.NoError(t, db.Create(&other).Error)

	require.NoError(t, repo.Append(bg, &model.TestResult{TestID: f.test.ID, StudentID: f.student.ID, Score: 1}))
	require.NoError(t, repo.Append(bg, &model.TestResult{TestID: f.test.ID, StudentID: other.ID, Score: 0}))

	mine, err := repo.ListByStudent(bg, f.student.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.Total)

	all, err := repo.ListByTest(bg, f.test.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	none, err := repo.ListByTestAndStudent(bg, f.test.ID+100, f.student.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, none.Total)
	assert.Empty(t, none.Items)
}
