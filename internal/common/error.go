package common

import "fmt"

var (
	ErrTokenNotConfigured  = fmt.Errorf("hugging face token is not configured")
	ErrInvalidCredential   = fmt.Errorf("invalid or expired credential")
	ErrRemoteNotFound      = fmt.Errorf("remote repository or path not found")
	ErrRemoteRequestFailed = fmt.Errorf("remote request failed")

	ErrNothingToImport  = fmt.Errorf("nothing to import")
	ErrImportInProgress = fmt.Errorf("import process has already started")
	ErrUnknownSource    = fmt.Errorf("unknown import source")

	ErrCourseNotFound       = fmt.Errorf("course not found")
	ErrSectionNotFound      = fmt.Errorf("section not found")
	ErrContentNotFound      = fmt.Errorf("content not found")
	ErrCategoryNotFound     = fmt.Errorf("category not found")
	ErrAnnouncementNotFound = fmt.Errorf("announcement not found")
	ErrStudentNotFound      = fmt.Errorf("student not found")
	ErrNoteNotFound         = fmt.Errorf("note not found")
	ErrNotEnrolled          = fmt.Errorf("student is not enrolled in the course")
	ErrStudentDisabled      = fmt.Errorf("student account is disabled")

	ErrBadRequest   = fmt.Errorf("bad request")
	ErrInvalidPath  = fmt.Errorf("invalid path")
	ErrUnauthorized = fmt.Errorf("unauthorized")
)
