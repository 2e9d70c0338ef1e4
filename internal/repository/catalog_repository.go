package repository

import (
	"context"
	"database/sql"
	"errors"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

type CatalogRepository struct {
	DB    *gorm.DB
	Cache *CatalogCache
	// snapshot 加载测试聚合时的事务选项，nil 表示使用驱动默认
	snapshot *sql.TxOptions
}

func NewCatalogRepository(db *gorm.DB, cache *CatalogCache, snapshot *sql.TxOptions) *CatalogRepository {
	return &CatalogRepository{DB: db, Cache: cache, snapshot: snapshot}
}

func (r *CatalogRepository) txOptions() []*sql.TxOptions {
	if r.snapshot == nil {
		return nil
	}
	return []*sql.TxOptions{r.snapshot}
}

func notFoundOr(err error, notFound error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return util.StoreError(op, err)
}

// LoadTestAggregate 在同一个只读快照事务内加载测试、全部题目及其选项，
// 返回的值在评分期间不会再查询数据库。
func (r *CatalogRepository) LoadTestAggregate(ctx context.Context, testID uint) (*model.Test, error) {
	var test model.Test
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&test, testID).Error; err != nil {
			return err
		}
		if cached, ok := r.Cache.Get(ctx, test.ID, test.Revision); ok {
			test = *cached
			return nil
		}
		var questions []model.Question
		err := tx.Where("test_id = ?", test.ID).
			Scopes(preloadAnswers).
			Order("id asc").
			Find(&questions).Error
		if err != nil {
			return err
		}
		test.Questions = questions
		r.Cache.Put(ctx, &test)
		return nil
	}, r.txOptions()...)
	if err != nil {
		return nil, notFoundOr(err, util.ErrTestNotFound, "load test aggregate")
	}
	return &test, nil
}

func preloadAnswers(db *gorm.DB) *gorm.DB {
	return db.Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") })
}

// bumpRevision 必须在修改题目/选项的同一事务内调用
func bumpRevision(tx *gorm.DB, testID uint) error {
	res := tx.Model(&model.Test{}).Where("id = ?", testID).
		UpdateColumn("revision", gorm.Expr("revision + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrTestNotFound
	}
	return nil
}

type ListFilter struct {
	ParentID uint
	Page     int
	Limit    int
}

// paginate scopes 只作用于取数据的查询，不参与计数
func paginate[T any](ctx context.Context, query *gorm.DB, f ListFilter, op string, scopes ...func(*gorm.DB) *gorm.DB) ([]T, int64, error) {
	var total int64
	var items []T
	var zero T
	if err := query.WithContext(ctx).Model(&zero).Count(&total).Error; err != nil {
		return nil, 0, util.StoreError(op, err)
	}
	offset := (f.Page - 1) * f.Limit
	if err := query.WithContext(ctx).Scopes(scopes...).Order("id asc").Offset(offset).Limit(f.Limit).Find(&items).Error; err != nil {
		return nil, 0, util.StoreError(op, err)
	}
	return items, total, nil
}

// ---- 课程 ----

func (r *CatalogRepository) CreateCourse(ctx context.Context, c *model.Course) error {
	if err := r.DB.WithContext(ctx).Omit("Owner", "Lessons").Create(c).Error; err != nil {
		return util.StoreError("create course", err)
	}
	return nil
}

func (r *CatalogRepository) FindCourse(ctx context.Context, id uint) (*model.Course, error) {
	var c model.Course
	if err := r.DB.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFoundOr(err, util.ErrNotFound, "find course")
	}
	return &c, nil
}

func (r *CatalogRepository) ListCourses(ctx context.Context, f ListFilter) ([]model.Course, int64, error) {
	return paginate[model.Course](ctx, r.DB, f, "list courses")
}

func (r *CatalogRepository) UpdateCourse(ctx context.Context, c *model.Course) error {
	if err := r.DB.WithContext(ctx).Omit("Owner", "Lessons").Save(c).Error; err != nil {
		return util.StoreError("update course", err)
	}
	return nil
}

func (r *CatalogRepository) DeleteCourse(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &model.Course{}, id, "delete course")
}

// ---- 课时 ----

func (r *CatalogRepository) CreateLesson(ctx context.Context, l *model.Lesson) error {
	if _, err := r.FindCourse(ctx, l.CourseID); err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Omit("Owner", "Tests").Create(l).Error; err != nil {
		return util.StoreError("create lesson", err)
	}
	return nil
}

func (r *CatalogRepository) FindLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	var l model.Lesson
	if err := r.DB.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, notFoundOr(err, util.ErrNotFound, "find lesson")
	}
	return &l, nil
}

func (r *CatalogRepository) ListLessons(ctx context.Context, f ListFilter) ([]model.Lesson, int64, error) {
	query := r.DB
	if f.ParentID > 0 {
		query = query.Where("course_id = ?", f.ParentID)
	}
	return paginate[model.Lesson](ctx, query, f, "list lessons")
}

func (r *CatalogRepository) UpdateLesson(ctx context.Context, l *model.Lesson) error {
	if err := r.DB.WithContext(ctx).Omit("Owner", "Tests").Save(l).Error; err != nil {
		return util.StoreError("update lesson", err)
	}
	return nil
}

func (r *CatalogRepository) DeleteLesson(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &model.Lesson{}, id, "delete lesson")
}

// ---- 测试 ----

func (r *CatalogRepository) CreateTest(ctx context.Context, t *model.Test) error {
	if _, err := r.FindLesson(ctx, t.LessonID); err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Omit("Owner", "Questions").Create(t).Error; err != nil {
		return util.StoreError("create test", err)
	}
	return nil
}

func (r *CatalogRepository) FindTest(ctx context.Context, id uint) (*model.Test, error) {
	var t model.Test
	if err := r.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		return nil, notFoundOr(err, util.ErrTestNotFound, "find test")
	}
	return &t, nil
}

func (r *CatalogRepository) ListTests(ctx context.Context, f ListFilter) ([]model.Test, int64, error) {
	query := r.DB
	if f.ParentID > 0 {
		query = query.Where("lesson_id = ?", f.ParentID)
	}
	return paginate[model.Test](ctx, query, f, "list tests")
}

// UpdateTest 只更新标题/描述，并递增 revision
func (r *CatalogRepository) UpdateTest(ctx context.Context, t *model.Test) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Test{}).Where("id = ?", t.ID).Updates(map[string]interface{}{
			"title":       t.Title,
			"description": t.Description,
			"revision":    gorm.Expr("revision + 1"),
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return util.ErrTestNotFound
		}
		return tx.First(t, t.ID).Error
	})
	if errors.Is(err, util.ErrTestNotFound) {
		return err
	}
	if err != nil {
		return util.StoreError("update test", err)
	}
	return nil
}

func (r *CatalogRepository) DeleteTest(ctx context.Context, id uint) error {
	return r.deleteByID(ctx, &model.Test{}, id, "delete test")
}

// ---- 题目 ----

func (r *CatalogRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpRevision(tx, q.TestID); err != nil {
			return err
		}
		return tx.Omit("Answers").Create(q).Error
	})
	return mutationError(err, "create question")
}

func (r *CatalogRepository) FindQuestion(ctx context.Context, id uint) (*model.Question, error) {
	var q model.Question
	err := r.DB.WithContext(ctx).Scopes(preloadAnswers).First(&q, id).Error
	if err != nil {
		return nil, notFoundOr(err, util.ErrNotFound, "find question")
	}
	return &q, nil
}

func (r *CatalogRepository) ListQuestions(ctx context.Context, f ListFilter) ([]model.Question, int64, error) {
	query := r.DB
	if f.ParentID > 0 {
		query = query.Where("test_id = ?", f.ParentID)
	}
	return paginate[model.Question](ctx, query, f, "list questions", preloadAnswers)
}

func (r *CatalogRepository) UpdateQuestion(ctx context.Context, q *model.Question) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpRevision(tx, q.TestID); err != nil {
			return err
		}
		return tx.Model(&model.Question{}).Where("id = ?", q.ID).Update("text", q.Text).Error
	})
	return mutationError(err, "update question")
}

func (r *CatalogRepository) DeleteQuestion(ctx context.Context, id uint) error {
	q, err := r.FindQuestion(ctx, id)
	if err != nil {
		return err
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpRevision(tx, q.TestID); err != nil {
			return err
		}
		return tx.Delete(&model.Question{}, id).Error
	})
	return mutationError(err, "delete question")
}

// ---- 选项 ----

func (r *CatalogRepository) CreateAnswer(ctx context.Context, a *model.Answer) error {
	q, err := r.FindQuestion(ctx, a.QuestionID)
	if err != nil {
		return err
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpRevision(tx, q.TestID); err != nil {
			return err
		}
		return tx.Create(a).Error
	})
	return mutationError(err, "create answer")
}

func (r *CatalogRepository) FindAnswer(ctx context.Context, id uint) (*model.Answer, error) {
	var a model.Answer
	if err := r.DB.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, notFoundOr(err, util.ErrNotFound, "find answer")
	}
	return &a, nil
}

func (r *CatalogRepository) ListAnswers(ctx context.Context, f ListFilter) ([]model.Answer, int64, error) {
	query := r.DB
	if f.ParentID > 0 {
		query = query.Where("question_id = ?", f.ParentID)
	}
	return paginate[model.Answer](ctx, query, f, "list answers")
}

func (r *CatalogRepository) UpdateAnswer(ctx context.Context, a *model.Answer) error {
	q, err := r.FindQuestion(ctx, a.QuestionID)
	if err != nil {
		return err
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpRevision(tx, q.TestID); err != nil {
			return err
		}
		return tx.Model(&model.Answer{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
			"text":       a.Text,
			"is_correct": a.IsCorrect,
		}).Error
	})
	return mutationError(err, "update answer")
}

func (r *CatalogRepository) DeleteAnswer(ctx context.Context, id uint) error {
	a, err := r.FindAnswer(ctx, id)
	if err != nil {
		return err
	}
	q, err := r.FindQuestion(ctx, a.QuestionID)
	if err != nil {
		return err
	}
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpRevision(tx, q.TestID); err != nil {
			return err
		}
		return tx.Delete(&model.Answer{}, id).Error
	})
	return mutationError(err, "delete answer")
}

func (r *CatalogRepository) deleteByID(ctx context.Context, m interface{}, id uint, op string) error {
	res := r.DB.WithContext(ctx).Delete(m, id)
	if res.Error != nil {
		return util.StoreError(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return util.ErrNotFound
	}
	return nil
}

func mutationError(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, util.ErrTestNotFound) || errors.Is(err, util.ErrNotFound) {
		return err
	}
	return util.StoreError(op, err)
}
