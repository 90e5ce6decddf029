package apiclient

import (
	"errors"
	"fmt"
)

var (
	ErrFetchProjects          = errors.New("failed to fetch projects")
	ErrFetchProject           = errors.New("failed to fetch project")
	ErrCreateProject          = errors.New("failed to create project")
	ErrFetchPrograms          = errors.New("failed to fetch programs")
	ErrFetchProductionConfigs = errors.New("failed to fetch production configs")
	ErrFetchUser              = errors.New("failed to fetch user")
	ErrAuthenticate           = errors.New("failed to authenticate")
	ErrRefresh                = errors.New("failed to refresh")

	// ErrNoData is the cause recorded when a response carries no payload
	ErrNoData = errors.New("response contained no data")
)

// StatusError is the cause recorded when the backend answers with a non 2xx status
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// StatusCode returns the backend status carried by err, or 0 when there is none
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
