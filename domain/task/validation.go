package task

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Validate checks t against the entity rules and returns every violation.
func Validate(t *Task) FieldErrors {
	var errs FieldErrors

	title := strings.TrimSpace(t.Title)
	switch {
	case title == "":
		errs.Add("title", "Task title is required")
	case utf8.RuneCountInString(title) > MaxTitleLength:
		errs.Add("title", fmt.Sprintf("Task title cannot be more than %d characters", MaxTitleLength))
	}

	if utf8.RuneCountInString(strings.TrimSpace(t.Description)) > MaxDescriptionLength {
		errs.Add("description", fmt.Sprintf("Description cannot be more than %d characters", MaxDescriptionLength))
	}

	if !t.Status.IsValid() {
		errs.Add("status", fmt.Sprintf("`%s` is not a valid status", t.Status))
	}

	return errs
}
