package ranking

import (
	"errors"
	"fmt"

	"github.com/feedhub/feedrank/internal/entities"
)

// ErrInvalidPostData is matched by every *InvalidPostDataError.
var ErrInvalidPostData = errors.New("invalid post data")

// InvalidPostDataError is returned when a post can't be scored.
type InvalidPostDataError struct {
	PostID string
	Reason string
}

func (e *InvalidPostDataError) Error() string {
	return fmt.Sprintf("%s: post %q: %s", ErrInvalidPostData, e.PostID, e.Reason)
}

// Is ...
func (e *InvalidPostDataError) Is(target error) bool {
	return target == ErrInvalidPostData
}

func validate(p *entities.Post) error {
	if p == nil {
		return &InvalidPostDataError{Reason: "post is nil"}
	}

	invalid := func(reason string) error {
		return &InvalidPostDataError{PostID: p.ID, Reason: reason}
	}

	switch {
	case p.ID == "":
		return invalid("empty id")
	case p.CreatedAt.IsZero():
		return invalid("missing created_at")
	case p.CommentsCount < 0:
		return invalid("negative comments count")
	case p.Views < 0:
		return invalid("negative views")
	case p.Shares < 0:
		return invalid("negative shares")
	}

	return nil
}

func validateAll(posts []*entities.Post) error {
	for _, p := range posts {
		if err := validate(p); err != nil {
			return err
		}
	}

	return nil
}
