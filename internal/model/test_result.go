package model

import (
	"time"

	"gorm.io/datatypes"
)

// TestResult 一次提交的评分记录，只追加，不更新。
// 随所属测试级联删除。
// swagger:model TestResult
type TestResult struct {
	ID            uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	TestID        uint           `gorm:"index:idx_result_test_student,priority:1;not null" json:"testId"`
	Test          *Test          `gorm:"foreignKey:TestID;constraint:OnDelete:CASCADE" json:"-"`
	StudentID     uint           `gorm:"index:idx_result_test_student,priority:2;index:idx_result_student;not null" json:"studentId"`
	Student       *User          `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Score         int            `gorm:"not null" json:"score"`
	QuestionCount int            `gorm:"not null;default:0" json:"questionCount"`
	Answers       datatypes.JSON `json:"answers,omitempty"`
	CompletedAt   time.Time      `gorm:"index;not null" json:"completedAt"`
}

func (TestResult) TableName() string {
	return "test_results"
}
