package policy

import (
	"fmt"
	"path/filepath"
	"strings"

	apperrors "github.com/zatekoja/parkdiscovery/pkg/errors"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// ValidateImage accepts jpg, jpeg, png and gif files no larger than maxBytes.
// A non-positive maxBytes disables the size check.
func ValidateImage(filename string, size, maxBytes int64) error {
	if !imageExtensions[strings.ToLower(filepath.Ext(filename))] {
		return apperrors.NewValidationError("Only image files are allowed!")
	}
	if maxBytes > 0 && size > maxBytes {
		return apperrors.NewValidationError(fmt.Sprintf("Image must be at most %d MB.", maxBytes/(1024*1024)))
	}
	return nil
}
