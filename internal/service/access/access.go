package access

import (
	"CourseForge/internal/app_errors"
	"CourseForge/internal/models"
)

// Decision is the result of a single authorization predicate.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Reason: reason}
}

// Predicate checks one rule against the authenticated principal.
type Predicate func(principal *models.User) Decision

func IsInstructor(principal *models.User) Decision {
	switch principal.Role {
	case models.RoleInstructor:
		return allow()
	case models.RoleStudent:
		return deny("instructor role required")
	default:
		return deny("unknown role")
	}
}

func IsStudent(principal *models.User) Decision {
	switch principal.Role {
	case models.RoleStudent:
		return allow()
	case models.RoleInstructor:
		return deny("student role required")
	default:
		return deny("unknown role")
	}
}

// CourseOwner gates mutations on an existing course. A failed check means
// 403, never 404: course existence is not hidden from authenticated users.
func CourseOwner(course *models.Course) Predicate {
	return func(principal *models.User) Decision {
		if course.InstructorID == principal.ID {
			return allow()
		}
		return deny("you are not the course instructor")
	}
}

func EnrollmentOwner(enrollment *models.Enrollment) Predicate {
	return func(principal *models.User) Decision {
		if enrollment.StudentID == principal.ID {
			return allow()
		}
		return deny("you are not the enrollment owner")
	}
}

// Require evaluates predicates in order and converts the first denial into
// a typed error. A nil principal fails authentication before any predicate
// runs, which maps to 401 rather than 403.
func Require(principal *models.User, predicates ...Predicate) error {
	if principal == nil {
		return app_errors.Authentication("authentication required")
	}
	for _, predicate := range predicates {
		if decision := predicate(principal); !decision.Allowed {
			return app_errors.Authorization(decision.Reason)
		}
	}
	return nil
}
