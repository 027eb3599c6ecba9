package entity

import "time"

type ContentType string

const (
	ContentTypeVideo ContentType = "video"
	ContentTypePDF   ContentType = "pdf"
	ContentTypeFile  ContentType = "file"
)

func (t ContentType) Valid() bool {
	switch t {
	case ContentTypeVideo, ContentTypePDF, ContentTypeFile:
		return true
	}

	return false
}

type Course struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`     // Markdown source
	DescriptionHTML string    `json:"descriptionHtml"` // Rendered from Description
	Thumbnail       string    `json:"thumbnail"`
	CategoryID      string    `json:"categoryId"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type Section struct {
	ID       string     `json:"id"`
	CourseID string     `json:"courseId"`
	Name     string     `json:"name"`
	Order    int        `json:"order"`
	Contents []*Content `json:"contents,omitempty"`
}

type Content struct {
	ID          string      `json:"id"`
	SectionID   string      `json:"sectionId"`
	Type        ContentType `json:"type"`
	Name        string      `json:"name"`
	URL         string      `json:"url"`
	SubtitleURL string      `json:"subtitleUrl,omitempty"`
	Order       int         `json:"order"`
}

type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Order     int       `json:"order"`
	CreatedAt time.Time `json:"createdAt"`
}

type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"bodyHtml"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats are the dashboard counters.
type Stats struct {
	Courses             int `json:"totalCourses" yaml:"courses"`
	Sections            int `json:"totalSections" yaml:"sections"`
	Videos              int `json:"totalVideos" yaml:"videos"`
	PDFs                int `json:"totalPdfs" yaml:"pdfs"`
	Students            int `json:"students" yaml:"students"`
	Enrollments         int `json:"enrollments" yaml:"enrollments"`
	ActiveAnnouncements int `json:"activeAnnouncements" yaml:"active_announcements"`
	RecentSignups       int `json:"recentSignups" yaml:"recent_signups"`
}

type PopularCourse struct {
	*Course
	EnrollmentCount int `json:"enrollmentCount"`
}

// CourseDetail is a course with its ordered sections and contents.
type CourseDetail struct {
	*Course
	Sections []*Section `json:"sections"`
}

// CourseMeta is the optional front matter of a course description.
type CourseMeta struct {
	Title     string `yaml:"title"`
	Category  string `yaml:"category"`
	Thumbnail string `yaml:"thumbnail"`
}

// Document is rendered markdown.
type Document struct {
	HTML string
	Meta *CourseMeta // Nil when the source has no front matter
}
