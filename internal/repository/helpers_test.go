package repository

import (
	"context"
	"testing"

	"lms_backend/internal/model"
	"lms_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := database.SQLiteDSN("file:" + uuid.NewString() + "?mode=memory")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

type fixture struct {
	teacher model.User
	student model.User
	course  model.Course
	lesson  model.Lesson
	test    model.Test
	// q1: a1 正确、a2 错误；q2: a3、a4 正确，a5 错误
	q1, q2             model.Question
	a1, a2, a3, a4, a5 model.Answer
}

func seedCatalog(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{}
	f.teacher = model.User{Name: "teacher", Email: uuid.NewString() + "@t.example", Password: "x", Role: model.Teacher}
	f.student = model.User{Name: "student", Email: uuid.NewString() + "@s.example", Password: "x", Role: model.Student}
	require.NoError(t, db.Create(&f.teacher).Error)
	require.NoError(t, db.Create(&f.student).Error)

	f.course = model.Course{Name: "Go", Description: "d", OwnerID: f.teacher.ID}
	require.NoError(t, db.Create(&f.course).Error)
	f.lesson = model.Lesson{Title: "L1", Content: "c", CourseID: f.course.ID, OwnerID: f.teacher.ID}
	require.NoError(t, db.Create(&f.lesson).Error)
	f.test = model.Test{Title: "T1", Description: "d", LessonID: f.lesson.ID, OwnerID: f.teacher.ID}
	require.NoError(t, db.Create(&f.test).Error)

	f.q1 = model.Question{TestID: f.test.ID, Text: "q1"}
	f.q2 = model.Question{TestID: f.test.ID, Text: "q2"}
	require.NoError(t, db.Create(&f.q1).Error)
	require.NoError(t, db.Create(&f.q2).Error)

	f.a1 = model.Answer{QuestionID: f.q1.ID, Text: "a1", IsCorrect: true}
	f.a2 = model.Answer{QuestionID: f.q1.ID, Text: "a2"}
	f.a3 = model.Answer{QuestionID: f.q2.ID, Text: "a3", IsCorrect: true}
	f.a4 = model.Answer{QuestionID: f.q2.ID, Text: "a4", IsCorrect: true}
	f.a5 = model.Answer{QuestionID: f.q2.ID, Text: "a5"}
	for _, a := range []*model.Answer{&f.a1, &f.a2, &f.a3, &f.a4, &f.a5} {
		require.NoError(t, db.Create(a).Error)
	}
	return f
}

func revisionOf(t *testing.T, db *gorm.DB, testID uint) int {
	t.Helper()
	var test model.Test
	require.NoError(t, db.First(&test, testID).Error)
	return test.Revision
}

var bg = context.Background()
