package model

// Test 测试。Revision 在测试本身或其题目/选项发生任何修改时递增，
// 仅用于缓存键，不参与评分。
// swagger:model Test
type Test struct {
	CatalogBase
	Title       string     `gorm:"size:255;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	LessonID    uint       `gorm:"index;not null" json:"lessonId"`
	OwnerID     uint       `gorm:"index;not null" json:"ownerId"`
	Owner       *User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Revision    int        `gorm:"not null;default:0" json:"revision"`
	Questions   []Question `gorm:"constraint:OnDelete:CASCADE" json:"questions,omitempty"`
}

func (Test) TableName() string {
	return "tests"
}

// swagger:model Question
type Question struct {
	CatalogBase
	TestID  uint     `gorm:"index;not null" json:"testId"`
	Text    string   `gorm:"type:text;not null" json:"text"`
	Answers []Answer `gorm:"constraint:OnDelete:CASCADE" json:"answers,omitempty"`
}

func (Question) TableName() string {
	return "questions"
}

// swagger:model Answer
type Answer struct {
	CatalogBase
	QuestionID uint   `gorm:"index;not null" json:"questionId"`
	Text       string `gorm:"size:255;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (Answer) TableName() string {
	return "answers"
}
