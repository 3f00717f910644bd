package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFetchFailed      = errors.New("fetch failed")
	ErrInvalidPageIndex = errors.New("invalid page index")
	ErrPageOutOfRange   = errors.New("page out of range")
)

// FetchError reports a page fetch that did not succeed. StatusCode is zero
// for transport and decode failures.
type FetchError struct {
	PageIndex  int
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch page %d: status %d: %v", e.PageIndex, e.StatusCode, e.Err)
	}

	return fmt.Sprintf("fetch page %d: %v", e.PageIndex, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}
