package agents

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedAgent = errors.New("unsupported agent")
	ErrEmptyResponse    = errors.New("empty agent response")
)

// UnsupportedAgentError reports a case whose agent name matches no role.
type UnsupportedAgentError struct {
	Agent  string
	CaseID string
}

func (e *UnsupportedAgentError) Error() string {
	return fmt.Sprintf("Unsupported agent '%s' for case '%s'.", e.Agent, e.CaseID)
}

func (e *UnsupportedAgentError) Is(target error) bool { return target == ErrUnsupportedAgent }

// EmptyResponseError reports an agent that answered with blank text.
type EmptyResponseError struct {
	Agent  string
	CaseID string
}

func (e *EmptyResponseError) Error() string {
	return fmt.Sprintf("Agent '%s' returned an empty response for case '%s'.", e.Agent, e.CaseID)
}

func (e *EmptyResponseError) Is(target error) bool { return target == ErrEmptyResponse }
