package pathfinder

import (
	"errors"
	"fmt"
)

// ErrorType classifies the failures raised by the path finder.
type ErrorType string

const (
	ErrorTypeGeometry ErrorType = "geometry"
	ErrorTypeState    ErrorType = "state"
	ErrorTypePair     ErrorType = "pair"
	ErrorTypeConfig   ErrorType = "config"
)

var (
	ErrSceneFinished    = errors.New("scene already finished")
	ErrSceneNotFinished = errors.New("scene not finished")
	ErrDegenerate       = errors.New("degenerate geometry")
	ErrSelfIntersection = errors.New("self-intersecting polygon")
	ErrSinkFull         = errors.New("sink full")
	ErrSinkClosed       = errors.New("sink closed")
)

// GeometryError reports malformed scene input detected while feeding or finishing a scene.
type GeometryError struct {
	Type       ErrorType
	Entity     string // "building", "wall", "ground", "topography"
	ID         int
	Operation  string
	Underlying error
}

// NewGeometryError creates a geometry error for one scene entity.
func NewGeometryError(op, entity string, id int, err error) *GeometryError {
	return &GeometryError{
		Type:       ErrorTypeGeometry,
		Entity:     entity,
		ID:         id,
		Operation:  op,
		Underlying: err,
	}
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%s %s failed for %s #%d: %v", e.Type, e.Operation, e.Entity, e.ID, e.Underlying)
}

func (e *GeometryError) Unwrap() error { return e.Underlying }

// StateError is raised (as a panic value) when the scene lifecycle is misused.
type StateError struct {
	Type       ErrorType
	Operation  string
	Underlying error
}

func newStateError(op string, err error) *StateError {
	return &StateError{Type: ErrorTypeState, Operation: op, Underlying: err}
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s error in %s: %v", e.Type, e.Operation, e.Underlying)
}

func (e *StateError) Unwrap() error { return e.Underlying }

// PairError isolates the failure of a single source/receiver pair.
type PairError struct {
	Type       ErrorType
	SourceID   int64
	ReceiverID int64
	Underlying error
}

// NewPairError wraps err with the pair identifiers.
func NewPairError(sourceID, receiverID int64, err error) *PairError {
	return &PairError{Type: ErrorTypePair, SourceID: sourceID, ReceiverID: receiverID, Underlying: err}
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%s source=%d receiver=%d: %v", e.Type, e.SourceID, e.ReceiverID, e.Underlying)
}

func (e *PairError) Unwrap() error { return e.Underlying }

// ConfigError reports an invalid configuration section.
type ConfigError struct {
	Type       ErrorType
	Section    string
	Field      string
	Underlying error
}

// NewConfigError creates a configuration error.
func NewConfigError(section, field string, err error) *ConfigError {
	return &ConfigError{Type: ErrorTypeConfig, Section: section, Field: field, Underlying: err}
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s error in %s.%s: %v", e.Type, e.Section, e.Field, e.Underlying)
	}
	return fmt.Sprintf("%s error in %s: %v", e.Type, e.Section, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }
