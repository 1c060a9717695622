package validation

import (
	"fmt"
	"regexp"
)

const (
	MinWorkers = 1
	MaxWorkers = 20
	MaxPages   = 50
)

var (
	photoIDPattern  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

func ValidateWorkerCount(workers int) error {
	if workers < MinWorkers || workers > MaxWorkers {
		return fmt.Errorf("worker count must be between %d and %d, got %d", MinWorkers, MaxWorkers, workers)
	}
	return nil
}

func ValidatePageCount(pages int) error {
	if pages < 1 || pages > MaxPages {
		return fmt.Errorf("page count must be between 1 and %d, got %d", MaxPages, pages)
	}
	return nil
}

// ValidatePhotoID accepts the URL-safe slugs the API uses as photo IDs.
func ValidatePhotoID(id string) error {
	if !photoIDPattern.MatchString(id) {
		return fmt.Errorf("invalid photo ID: %q", id)
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return fmt.Errorf("invalid username: %q (letters, digits and underscores only)", username)
	}
	return nil
}

func ValidateNonEmptyString(fieldName, value string) error {
	if value == "" {
		return fmt.Errorf("%s cannot be empty", fieldName)
	}
	return nil
}
