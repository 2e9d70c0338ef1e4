package service

import (
	"context"

	"lms_backend/internal/repository"
)

// ResultService 测试结果的只读查询
type ResultService struct {
	Results *repository.TestResultRepository
	Catalog *repository.CatalogRepository
}

func NewResultService(results *repository.TestResultRepository, catalog *repository.CatalogRepository) *ResultService {
	return &ResultService{Results: results, Catalog: catalog}
}

func (s *ResultService) ListMine(ctx context.Context, studentID uint, page, limit int) (*repository.ResultPage, error) {
	return s.Results.ListByStudent(ctx, studentID, page, limit)
}

func (s *ResultService) ListMineForTest(ctx context.Context, testID, studentID uint, page, limit int) (*repository.ResultPage, error) {
	if _, err := s.Catalog.FindTest(ctx, testID); err != nil {
		return nil, err
	}
	return s.Results.ListByTestAndStudent(ctx, testID, studentID, page, limit)
}

func (s *ResultService) ListForTest(ctx context.Context, testID uint, page, limit int) (*repository.ResultPage, error) {
	if _, err := s.Catalog.FindTest(ctx, testID); err != nil {
		return nil, err
	}
	return s.Results.ListByTest(ctx, testID, page, limit)
}
