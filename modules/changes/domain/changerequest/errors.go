package changerequest

import "fmt"

// ValidationError reports a field that blocks a request from being submitted
// or applied.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// UnsupportedEntityError is returned for entity types the commit path cannot write.
type UnsupportedEntityError struct {
	EntityType string
}

func (e *UnsupportedEntityError) Error() string {
	name := e.EntityType
	if name == "" {
		name = "unknown"
	}
	return "unsupported entity type: " + name
}
