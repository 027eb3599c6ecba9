package entity

import "time"

type Student struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"createdAt"`
}

type Enrollment struct {
	ID         string    `json:"id"` // userID_courseID
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// Progress is the playback state of one content item for one student.
type Progress struct {
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	SectionID string    `json:"sectionId"`
	ContentID string    `json:"contentId"`
	Position  float64   `json:"position"` // Seconds
	Duration  float64   `json:"duration"`
	Completed bool      `json:"completed"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	CourseID  string    `json:"courseId"`
	SectionID string    `json:"sectionId"`
	ContentID string    `json:"contentId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CourseProgress summarises the progress of one student in one course.
type CourseProgress struct {
	CourseID  string      `json:"courseId"`
	Total     int         `json:"total"`
	Completed int         `json:"completed"`
	Percent   int         `json:"percent"`
	Items     []*Progress `json:"items"`
}
