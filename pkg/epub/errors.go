package epub

import (
	"errors"
	"fmt"
)

// ErrInvalidContainer is returned (wrapped) when a file is not a readable
// EPUB: not a zip archive, no package document, or an unusable spine.
var ErrInvalidContainer = errors.New("invalid EPUB container")

func invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidContainer)...)
}
