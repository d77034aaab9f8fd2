package models

// ProjectStatus is the single source of truth for where a proposal sits in
// its lifecycle.
type ProjectStatus string

const (
	// ProjectDraft is editable and deletable by its proponent.
	ProjectDraft ProjectStatus = "draft"
	// ProjectAwaitingEvaluatorAssignment has been submitted and numbered.
	ProjectAwaitingEvaluatorAssignment ProjectStatus = "awaiting_evaluator_assignment"
	// ProjectFullyEvaluated has every assigned evaluation concluded.
	ProjectFullyEvaluated ProjectStatus = "fully_evaluated"
	ProjectApproved       ProjectStatus = "approved"
	ProjectRejected       ProjectStatus = "rejected"
	ProjectInExecution    ProjectStatus = "in_execution"
	ProjectCompleted      ProjectStatus = "completed"
	// ProjectWithPendencies is an approved project whose habilitação
	// documents were found deficient.
	ProjectWithPendencies ProjectStatus = "with_pendencies"
)

func (s ProjectStatus) String() string { return string(s) }

// IsValid returns true if the status is a known project status.
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectDraft, ProjectAwaitingEvaluatorAssignment, ProjectFullyEvaluated,
		ProjectApproved, ProjectRejected, ProjectInExecution, ProjectCompleted,
		ProjectWithPendencies:
		return true
	default:
		return false
	}
}

// CanTransitionTo returns true if the status can move to target.
func (s ProjectStatus) CanTransitionTo(target ProjectStatus) bool {
	switch s {
	case ProjectDraft:
		return target == ProjectAwaitingEvaluatorAssignment
	case ProjectAwaitingEvaluatorAssignment:
		return target == ProjectFullyEvaluated
	case ProjectFullyEvaluated:
		return target == ProjectApproved || target == ProjectRejected
	case ProjectApproved:
		return target == ProjectInExecution || target == ProjectWithPendencies
	case ProjectWithPendencies:
		// manual administrative resolution only
		return target == ProjectApproved
	case ProjectInExecution:
		return target == ProjectCompleted
	case ProjectRejected, ProjectCompleted:
		return false
	default:
		return false
	}
}

// IsTerminal reports whether no transition leaves s.
func (s ProjectStatus) IsTerminal() bool {
	return s == ProjectRejected || s == ProjectCompleted
}

// EvaluationStatus tracks a single evaluator's work on a project.
type EvaluationStatus string

const (
	EvaluationAwaitingEvaluator EvaluationStatus = "awaiting_evaluator"
	EvaluationInProgress        EvaluationStatus = "in_progress"
	EvaluationConcluded         EvaluationStatus = "concluded"
)

func (s EvaluationStatus) String() string { return string(s) }

func (s EvaluationStatus) IsValid() bool {
	switch s {
	case EvaluationAwaitingEvaluator, EvaluationInProgress, EvaluationConcluded:
		return true
	default:
		return false
	}
}

// CanTransitionTo enforces the forward-only evaluation flow.
func (s EvaluationStatus) CanTransitionTo(target EvaluationStatus) bool {
	switch s {
	case EvaluationAwaitingEvaluator:
		return target == EvaluationInProgress
	case EvaluationInProgress:
		return target == EvaluationConcluded
	default:
		return false
	}
}

// DocumentStatus tracks a habilitação document.
type DocumentStatus string

const (
	DocumentPending   DocumentStatus = "pending"
	DocumentSubmitted DocumentStatus = "submitted"
	DocumentApproved  DocumentStatus = "approved"
	DocumentRejected  DocumentStatus = "rejected"
)

func (s DocumentStatus) String() string { return string(s) }

func (s DocumentStatus) IsValid() bool {
	switch s {
	case DocumentPending, DocumentSubmitted, DocumentApproved, DocumentRejected:
		return true
	default:
		return false
	}
}

// CanTransitionTo allows re-submission after a rejection; an approved
// document is final.
func (s DocumentStatus) CanTransitionTo(target DocumentStatus) bool {
	switch s {
	case DocumentPending, DocumentRejected:
		return target == DocumentSubmitted
	case DocumentSubmitted:
		return target == DocumentSubmitted || target == DocumentApproved || target == DocumentRejected
	default:
		return false
	}
}
