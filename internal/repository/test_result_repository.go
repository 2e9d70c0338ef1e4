package repository

import (
	"context"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/util"

	"gorm.io/gorm"
)

// TestResultRepository 测试结果只追加存储，没有更新和删除方法
type TestResultRepository struct {
	DB  *gorm.DB
	Now func() time.Time
}

func NewTestResultRepository(db *gorm.DB) *TestResultRepository {
	return &TestResultRepository{DB: db, Now: time.Now}
}

// Append 写入新结果，由服务端分配 ID 和完成时间
func (r *TestResultRepository) Append(ctx context.Context, result *model.TestResult) error {
	result.ID = 0
	result.CompletedAt = r.Now().UTC()
	if err := r.DB.WithContext(ctx).Omit("Test", "Student").Create(result).Error; err != nil {
		return util.StoreError("append test result", err)
	}
	return nil
}

type ResultPage struct {
	Items []model.TestResult
	Total int64
}

func (r *TestResultRepository) list(ctx context.Context, query *gorm.DB, page, limit int) (*ResultPage, error) {
	var total int64
	if err := query.WithContext(ctx).Model(&model.TestResult{}).Count(&total).Error; err != nil {
		return nil, util.StoreError("count test results", err)
	}

	var items []model.TestResult
	offset := (page - 1) * limit
	err := query.WithContext(ctx).
		Order("completed_at desc, id desc").
		Offset(offset).Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, util.StoreError("list test results", err)
	}
	return &ResultPage{Items: items, Total: total}, nil
}

func (r *TestResultRepository) ListByTestAndStudent(ctx context.Context, testID, studentID uint, page, limit int) (*ResultPage, error) {
	return r.list(ctx, r.DB.Where("test_id = ? AND student_id = ?", testID, studentID), page, limit)
}

func (r *TestResultRepository) ListByTest(ctx context.Context, testID uint, page, limit int) (*ResultPage, error) {
	return r.list(ctx, r.DB.Where("test_id = ?", testID), page, limit)
}

func (r *TestResultRepository) ListByStudent(ctx context.Context, studentID uint, page, limit int) (*ResultPage, error) {
	return r.list(ctx, r.DB.Where("student_id = ?", studentID), page, limit)
}
