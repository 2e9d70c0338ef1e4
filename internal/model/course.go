package model

// swagger:model Course
type Course struct {
	CatalogBase
	Name        string   `gorm:"size:255;not null" json:"name"`
	Description string   `gorm:"type:text" json:"description"`
	OwnerID     uint     `gorm:"index;not null" json:"ownerId"`
	Owner       *User    `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Lessons     []Lesson `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Lesson
type Lesson struct {
	CatalogBase
	Title    string `gorm:"size:255;not null" json:"title"`
	Content  string `gorm:"type:text" json:"content"`
	CourseID uint   `gorm:"index;not null" json:"courseId"`
	OwnerID  uint   `gorm:"index;not null" json:"ownerId"`
	Owner    *User  `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"-"`
	Tests    []Test `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (Lesson) TableName() string {
	return "lessons"
}
