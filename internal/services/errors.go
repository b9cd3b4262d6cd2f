package services

import (
	"errors"
	"fmt"
	"strings"

	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/utils"
	"gorm.io/gorm"
)

// lookupError turns a missing record into a NotFound for resource and wraps anything else.
func lookupError(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierrors.Missing(resource)
	}
	return fmt.Errorf("failed to find %s: %w", resource, err)
}

func validateDocument(field, document string, required bool) error {
	if document == "" {
		if required {
			return apierrors.InvalidField(field, "A document link is required")
		}
		return nil
	}
	if !utils.IsDocumentURL(document) {
		return apierrors.InvalidField(field, "Document must be a link starting with http://, https:// or ftp://")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
