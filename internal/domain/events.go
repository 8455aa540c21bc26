package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueryChanged      EventType = "QueryChanged"
	EventPipelineStarted   EventType = "PipelineStarted"
	EventResultsPublished  EventType = "ResultsPublished"
	EventDatasetChanged    EventType = "DatasetChanged"
	EventPipelineSuspended EventType = "PipelineSuspended"
	EventPipelineResumed   EventType = "PipelineResumed"
	EventConfigLoaded      EventType = "ConfigLoaded"
	EventConfigSaved       EventType = "ConfigSaved"
	EventError             EventType = "Error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QueryChangedEvent is emitted for every query edit, before debouncing
type QueryChangedEvent struct {
	Query string
}

func (e QueryChangedEvent) Type() EventType { return EventQueryChanged }

// PipelineStartedEvent is emitted when a recompute begins.
// Filtered is false for blank queries, which skip the processing delay.
type PipelineStartedEvent struct {
	Query    string
	Filtered bool
}

func (e PipelineStartedEvent) Type() EventType { return EventPipelineStarted }

// ResultsPublishedEvent is emitted after a result list has been published
type ResultsPublishedEvent struct {
	Query    string
	Count    int
	Duration time.Duration
}

func (e ResultsPublishedEvent) Type() EventType { return EventResultsPublished }

// DatasetChangedEvent is emitted when the candidate set is replaced
type DatasetChangedEvent struct {
	Count int
}

func (e DatasetChangedEvent) Type() EventType { return EventDatasetChanged }

// PipelineSuspendedEvent is emitted when the grace window expires with no result subscribers
type PipelineSuspendedEvent struct{}

func (e PipelineSuspendedEvent) Type() EventType { return EventPipelineSuspended }

// PipelineResumedEvent is emitted when a subscriber returns to a suspended pipeline
type PipelineResumedEvent struct {
	Recomputed bool
}

func (e PipelineResumedEvent) Type() EventType { return EventPipelineResumed }

// ConfigLoadedEvent is emitted after configuration is read
type ConfigLoadedEvent struct {
	Path string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted after configuration is written
type ConfigSavedEvent struct {
	Path string
}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }
