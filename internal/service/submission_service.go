package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lms_backend/internal/identity"
	"lms_backend/internal/model"
	"lms_backend/internal/scoring"
	"lms_backend/internal/util"
	"lms_backend/pkg/logger"
	"lms_backend/pkg/monitoring"
	"lms_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// CatalogReader 返回完整加载的测试聚合，调用方不会再回查数据库
type CatalogReader interface {
	LoadTestAggregate(ctx context.Context, testID uint) (*model.Test, error)
}

// ResultAppender 测试结果的唯一写入方
type ResultAppender interface {
	Append(ctx context.Context, result *model.TestResult) error
}

type SubmissionService struct {
	Catalog CatalogReader
	Results ResultAppender
	Roles   identity.RoleOracle
}

func NewSubmissionService(catalog CatalogReader, results ResultAppender, roles identity.RoleOracle) *SubmissionService {
	return &SubmissionService{Catalog: catalog, Results: results, Roles: roles}
}

// SubmitRequest 原始提交。TestID 来自路径参数，Answers 为请求体中的 answers 字段。
type SubmitRequest struct {
	TestID  string
	Answers json.RawMessage
}

// SubmissionView 提交成功后的返回值
// swagger:model SubmissionView
type SubmissionView struct {
	TestResultID  uint      `json:"testResultId"`
	TestID        uint      `json:"testId"`
	StudentID     uint      `json:"studentId"`
	Score         int       `json:"score"`
	QuestionCount int       `json:"questionCount"`
	CompletedAt   time.Time `json:"completedAt"`
}

// Submit 鉴权、校验、加载快照、评分并追加一条结果。
// 任一步骤失败都不会写入任何数据；内部不做重试。
func (s *SubmissionService) Submit(ctx context.Context, p identity.Principal, req SubmitRequest) (view *SubmissionView, err error) {
	start := time.Now()
	ctx, span := tracing.Start(ctx, "SubmissionService.Submit",
		attribute.Int64("user.id", int64(p.UserID)),
		attribute.String("test.id", req.TestID),
	)
	defer func() {
		outcome := outcomeOf(err)
		if err != nil {
			tracing.Fail(span, err)
			s.logFailure(p, req.TestID, outcome, err)
			monitoring.ObserveSubmission(outcome, 0, 0, time.Since(start))
		} else {
			span.SetAttributes(attribute.Int("score", view.Score))
			monitoring.ObserveSubmission(outcome, view.Score, view.QuestionCount, time.Since(start))
		}
		span.End()
	}()

	if err := s.authorize(ctx, p); err != nil {
		return nil, err
	}

	// 非法的测试 ID 与不存在的测试同样处理
	testID, ok := util.ParseID(req.TestID)
	if !ok {
		return nil, util.ErrTestNotFound
	}
	sub, err := parseAnswers(req.Answers)
	if err != nil {
		return nil, err
	}

	test, err := s.Catalog.LoadTestAggregate(ctx, testID)
	if err != nil {
		return nil, err
	}

	breakdown := scoring.Evaluate(test, sub)
	score := breakdown.Score
	for _, q := range breakdown.Questions {
		if q.Unscorable {
			logger.Log.Warn("question has no correct answer",
				zap.Uint("testID", test.ID),
				zap.Uint("questionID", q.QuestionID))
		}
	}

	answers, err := normalizedAnswers(sub)
	if err != nil {
		return nil, err
	}
	result := &model.TestResult{
		TestID:        test.ID,
		StudentID:     p.UserID,
		Score:         score,
		QuestionCount: len(test.Questions),
		Answers:       datatypes.JSON(answers),
	}
	if err := s.Results.Append(ctx, result); err != nil {
		return nil, err
	}

	logger.Log.Info("test submitted",
		zap.Uint("testId", result.TestID),
		zap.Uint("studentId", result.StudentID),
		zap.Uint("resultId", result.ID),
		zap.Int("score", result.Score),
		zap.Int("questions", result.QuestionCount),
	)
	return viewOf(result), nil
}

// authorize 只允许学生提交，管理员和教师同样被拒绝
func (s *SubmissionService) authorize(ctx context.Context, p identity.Principal) error {
	if p.Anonymous() {
		return util.ErrUnauthorized
	}
	role, ok := identity.ResolvedRole(ctx, p)
	if !ok {
		var err error
		if role, err = s.Roles.Role(ctx, p); err != nil {
			return err
		}
	}
	if role != model.Student {
		return util.ErrForbidden
	}
	return nil
}

func viewOf(r *model.TestResult) *SubmissionView {
	return &SubmissionView{
		TestResultID:  r.ID,
		TestID:        r.TestID,
		StudentID:     r.StudentID,
		Score:         r.Score,
		QuestionCount: r.QuestionCount,
		CompletedAt:   r.CompletedAt,
	}
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return monitoring.OutcomeScored
	case errors.Is(err, util.ErrUnauthorized):
		return monitoring.OutcomeUnauthorized
	case errors.Is(err, util.ErrForbidden):
		return monitoring.OutcomeForbidden
	case errors.Is(err, util.ErrInvalidSubmission):
		return monitoring.OutcomeInvalid
	case errors.Is(err, util.ErrTestNotFound):
		return monitoring.OutcomeNotFound
	}
	return monitoring.OutcomeStoreError
}

func (s *SubmissionService) logFailure(p identity.Principal, testID, outcome string, err error) {
	fields := []zap.Field{
		zap.Uint("userId", p.UserID),
		zap.String("testId", testID),
		zap.String("outcome", outcome),
		zap.Error(err),
	}
	if outcome == monitoring.OutcomeStoreError {
		logger.Log.Error("submission failed", fields...)
		return
	}
	logger.Log.Warn("submission rejected", fields...)
}
