package types

import "fmt"

// Stage represents a lifecycle stage of a data collection
type Stage string

const (
	StageDraft          Stage = "draft"
	StagePTARequired    Stage = "pta_required"
	StagePTAInProgress  Stage = "pta_in_progress"
	StagePTAReview      Stage = "pta_review"
	StagePIARequired    Stage = "pia_required"
	StagePIAInProgress  Stage = "pia_in_progress"
	StagePIAReview      Stage = "pia_review"
	StageImplementation Stage = "implementation"
	StageActive         Stage = "active"
	StageRetirement     Stage = "retirement"
	StageArchived       Stage = "archived"
)

// AllStages returns all lifecycle stages in workflow order
func AllStages() []Stage {
	return []Stage{
		StageDraft,
		StagePTARequired,
		StagePTAInProgress,
		StagePTAReview,
		StagePIARequired,
		StagePIAInProgress,
		StagePIAReview,
		StageImplementation,
		StageActive,
		StageRetirement,
		StageArchived,
	}
}

// IsValid checks if the stage is valid
func (s Stage) IsValid() bool {
	for _, stage := range AllStages() {
		if s == stage {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the stage has no successor
func (s Stage) IsTerminal() bool {
	return s == StageArchived
}

// String returns the string representation of the stage
func (s Stage) String() string {
	return string(s)
}

// ParseStage parses a string into a Stage
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if !stage.IsValid() {
		return "", fmt.Errorf("invalid stage: %s", s)
	}
	return stage, nil
}

// StageStatus represents the progress of a collection within its current stage
type StageStatus string

const (
	StageStatusPending    StageStatus = "pending"
	StageStatusInProgress StageStatus = "in_progress"
	StageStatusCompleted  StageStatus = "completed"
	StageStatusBlocked    StageStatus = "blocked"
)

// IsValid checks if the stage status is valid
func (s StageStatus) IsValid() bool {
	switch s {
	case StageStatusPending, StageStatusInProgress, StageStatusCompleted, StageStatusBlocked:
		return true
	default:
		return false
	}
}

// Normalize returns the status, treating empty as StageStatusPending
func (s StageStatus) Normalize() StageStatus {
	if s == "" {
		return StageStatusPending
	}
	return s
}

// String returns the string representation of the stage status
func (s StageStatus) String() string {
	return string(s)
}
