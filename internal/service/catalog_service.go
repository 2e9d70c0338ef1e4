package service

import (
	"context"
	"strings"
	"time"

	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"
)

// CatalogService 课程/课时/测试/题目/选项的增删改查。
// 父级关系在创建后不可修改。
type CatalogService struct {
	Repo *repository.CatalogRepository
}

func NewCatalogService(repo *repository.CatalogRepository) *CatalogService {
	return &CatalogService{Repo: repo}
}

// swagger:model CourseInput
type CourseInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// swagger:model LessonInput
type LessonInput struct {
	Title    string `json:"title" binding:"required"`
	Content  string `json:"content"`
	CourseID uint   `json:"courseId"`
}

// swagger:model TestInput
type TestInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	LessonID    uint   `json:"lessonId"`
}

// swagger:model QuestionInput
type QuestionInput struct {
	Text   string `json:"text" binding:"required"`
	TestID uint   `json:"testId"`
}

// swagger:model AnswerInput
type AnswerInput struct {
	Text       string `json:"text" binding:"required"`
	IsCorrect  bool   `json:"isCorrect"`
	QuestionID uint   `json:"questionId"`
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return util.InvalidInput("%s is required", field)
	}
	return nil
}

func requiredParent(field string, id uint) error {
	if id == 0 {
		return util.InvalidInput("%s is required", field)
	}
	return nil
}

// ---- 课程 ----

func (s *CatalogService) ListCourses(ctx context.Context, f repository.ListFilter) ([]model.Course, int64, error) {
	return s.Repo.ListCourses(ctx, f)
}

func (s *CatalogService) GetCourse(ctx context.Context, id uint) (*model.Course, error) {
	return s.Repo.FindCourse(ctx, id)
}

func (s *CatalogService) CreateCourse(ctx context.Context, ownerID uint, in CourseInput) (*model.Course, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	c := &model.Course{Name: strings.TrimSpace(in.Name), Description: in.Description, OwnerID: ownerID}
	if err := s.Repo.CreateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id uint, in CourseInput) (*model.Course, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	c, err := s.Repo.FindCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Description = in.Description
	if err := s.Repo.UpdateCourse(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id uint) error {
	return s.Repo.DeleteCourse(ctx, id)
}

// ---- 课时 ----

func (s *CatalogService) ListLessons(ctx context.Context, f repository.ListFilter) ([]model.Lesson, int64, error) {
	return s.Repo.ListLessons(ctx, f)
}

func (s *CatalogService) GetLesson(ctx context.Context, id uint) (*model.Lesson, error) {
	return s.Repo.FindLesson(ctx, id)
}

func (s *CatalogService) CreateLesson(ctx context.Context, ownerID uint, in LessonInput) (*model.Lesson, error) {
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	if err := requiredParent("courseId", in.CourseID); err != nil {
		return nil, err
	}
	l := &model.Lesson{Title: strings.TrimSpace(in.Title), Content: in.Content, CourseID: in.CourseID, OwnerID: ownerID}
	if err := s.Repo.CreateLesson(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *CatalogService) UpdateLesson(ctx context.Context, id uint, in LessonInput) (*model.Lesson, error) {
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	l, err := s.Repo.FindLesson(ctx, id)
	if err != nil {
		return nil, err
	}
	l.Title = strings.TrimSpace(in.Title)
	l.Content = in.Content
	if err := s.Repo.UpdateLesson(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *CatalogService) DeleteLesson(ctx context.Context, id uint) error {
	return s.Repo.DeleteLesson(ctx, id)
}

// ---- 测试 ----

func (s *CatalogService) ListTests(ctx context.Context, f repository.ListFilter) ([]model.Test, int64, error) {
	return s.Repo.ListTests(ctx, f)
}

// GetTest 返回测试及其全部题目和选项
func (s *CatalogService) GetTest(ctx context.Context, id uint) (*model.Test, error) {
	return s.Repo.LoadTestAggregate(ctx, id)
}

func (s *CatalogService) CreateTest(ctx context.Context, ownerID uint, in TestInput) (*model.Test, error) {
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	if err := requiredParent("lessonId", in.LessonID); err != nil {
		return nil, err
	}
	t := &model.Test{Title: strings.TrimSpace(in.Title), Description: in.Description, LessonID: in.LessonID, OwnerID: ownerID}
	if err := s.Repo.CreateTest(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) UpdateTest(ctx context.Context, id uint, in TestInput) (*model.Test, error) {
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	t := &model.Test{CatalogBase: model.CatalogBase{ID: id}, Title: strings.TrimSpace(in.Title), Description: in.Description}
	if err := s.Repo.UpdateTest(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) DeleteTest(ctx context.Context, id uint) error {
	return s.Repo.DeleteTest(ctx, id)
}

// ---- 题目 ----

func (s *CatalogService) ListQuestions(ctx context.Context, f repository.ListFilter) ([]model.Question, int64, error) {
	return s.Repo.ListQuestions(ctx, f)
}

func (s *CatalogService) GetQuestion(ctx context.Context, id uint) (*model.Question, error) {
	return s.Repo.FindQuestion(ctx, id)
}

func (s *CatalogService) CreateQuestion(ctx context.Context, in QuestionInput) (*model.Question, error) {
	if err := required("text", in.Text); err != nil {
		return nil, err
	}
	if err := requiredParent("testId", in.TestID); err != nil {
		return nil, err
	}
	q := &model.Question{Text: strings.TrimSpace(in.Text), TestID: in.TestID}
	if err := s.Repo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *CatalogService) UpdateQuestion(ctx context.Context, id uint, in QuestionInput) (*model.Question, error) {
	if err := required("text", in.Text); err != nil {
		return nil, err
	}
	q, err := s.Repo.FindQuestion(ctx, id)
	if err != nil {
		return nil, err
	}
	q.Text = strings.TrimSpace(in.Text)
	if err := s.Repo.UpdateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *CatalogService) DeleteQuestion(ctx context.Context, id uint) error {
	return s.Repo.DeleteQuestion(ctx, id)
}

// ---- 选项 ----

func (s *CatalogService) ListAnswers(ctx context.Context, f repository.ListFilter) ([]model.Answer, int64, error) {
	return s.Repo.ListAnswers(ctx, f)
}

func (s *CatalogService) GetAnswer(ctx context.Context, id uint) (*model.Answer, error) {
	return s.Repo.FindAnswer(ctx, id)
}

func (s *CatalogService) CreateAnswer(ctx context.Context, in AnswerInput) (*model.Answer, error) {
	if err := required("text", in.Text); err != nil {
		return nil, err
	}
	if err := requiredParent("questionId", in.QuestionID); err != nil {
		return nil, err
	}
	a := &model.Answer{Text: strings.TrimSpace(in.Text), IsCorrect: in.IsCorrect, QuestionID: in.QuestionID}
	if err := s.Repo.CreateAnswer(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CatalogService) UpdateAnswer(ctx context.Context, id uint, in AnswerInput) (*model.Answer, error) {
	if err := required("text", in.Text); err != nil {
		return nil, err
	}
	a, err := s.Repo.FindAnswer(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Text = strings.TrimSpace(in.Text)
	a.IsCorrect = in.IsCorrect
	if err := s.Repo.UpdateAnswer(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CatalogService) DeleteAnswer(ctx context.Context, id uint) error {
	return s.Repo.DeleteAnswer(ctx, id)
}

// ---- 学生视图 ----

// PublicAnswer 不含正确性标记的选项
// swagger:model PublicAnswer
type PublicAnswer struct {
	ID         uint      `json:"id"`
	QuestionID uint      `json:"questionId"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// swagger:model PublicQuestion
type PublicQuestion struct {
	ID        uint           `json:"id"`
	TestID    uint           `json:"testId"`
	Text      string         `json:"text"`
	Answers   []PublicAnswer `json:"answers"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// swagger:model PublicTest
type PublicTest struct {
	ID          uint             `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	LessonID    uint             `json:"lessonId"`
	OwnerID     uint             `json:"ownerId"`
	Questions   []PublicQuestion `json:"questions"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func PublicAnswerOf(a model.Answer) PublicAnswer {
	return PublicAnswer{ID: a.ID, QuestionID: a.QuestionID, Text: a.Text, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt}
}

func PublicAnswers(in []model.Answer) []PublicAnswer {
	out := make([]PublicAnswer, 0, len(in))
	for _, a := range in {
		out = append(out, PublicAnswerOf(a))
	}
	return out
}

func PublicQuestionOf(q model.Question) PublicQuestion {
	return PublicQuestion{
		ID:        q.ID,
		TestID:    q.TestID,
		Text:      q.Text,
		Answers:   PublicAnswers(q.Answers),
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}
}

func PublicQuestions(in []model.Question) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(in))
	for _, q := range in {
		out = append(out, PublicQuestionOf(q))
	}
	return out
}

func PublicTestOf(t *model.Test) PublicTest {
	return PublicTest{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		LessonID:    t.LessonID,
		OwnerID:     t.OwnerID,
		Questions:   PublicQuestions(t.Questions),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
