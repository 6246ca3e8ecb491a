package models

// RoleType defines the user role type
type RoleType string

const (
	RoleNormal         RoleType = "NORMAL"
	RoleContentManager RoleType = "CONTENT_MANAGER"
	RoleSuperuser      RoleType = "SUPERUSER"
)

// Difficulty represents the difficulty level of a course
type Difficulty string

const (
	DifficultyJunior       Difficulty = "junior"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// CourseStatus represents the publication state of a course
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
)

// ContentType fixes which payload columns of a Content row are meaningful
type ContentType string

const (
	ContentTypeText  ContentType = "text"
	ContentTypeImage ContentType = "image"
	ContentTypeVideo ContentType = "video"
)

// ValidDifficulty reports whether d is one of the known difficulty levels.
func ValidDifficulty(d Difficulty) bool {
	switch d {
	case DifficultyJunior, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// ValidCourseStatus reports whether s is one of the known course statuses.
func ValidCourseStatus(s CourseStatus) bool {
	switch s {
	case CourseStatusDraft, CourseStatusPublished:
		return true
	}
	return false
}
