package model

import "time"

type ProjectStatus string

const (
	ProjectProposal   ProjectStatus = "proposal"
	ProjectPlanning   ProjectStatus = "planning"
	ProjectApproved   ProjectStatus = "approved"
	ProjectInProgress ProjectStatus = "in-progress"
	ProjectOnPause    ProjectStatus = "on-pause"
	ProjectFinished   ProjectStatus = "finished"
	ProjectCancelled  ProjectStatus = "cancelled"
)

// ProjectStatuses lists every valid project status, in lifecycle order.
var ProjectStatuses = []ProjectStatus{
	ProjectProposal,
	ProjectPlanning,
	ProjectApproved,
	ProjectInProgress,
	ProjectOnPause,
	ProjectFinished,
	ProjectCancelled,
}

// projectTransitions is the full transition table. A status missing from a
// row's set is an illegal move; finished and cancelled are terminal.
var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectProposal:   {ProjectPlanning, ProjectCancelled},
	ProjectPlanning:   {ProjectApproved, ProjectCancelled},
	ProjectApproved:   {ProjectInProgress, ProjectCancelled},
	ProjectInProgress: {ProjectOnPause, ProjectFinished, ProjectCancelled},
	ProjectOnPause:    {ProjectInProgress, ProjectCancelled},
	ProjectFinished:   {},
	ProjectCancelled:  {},
}

func (s ProjectStatus) Valid() bool {
	_, ok := projectTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	for _, t := range projectTransitions[s] {
		if t == next {
			return true
		}
	}
	return false
}

// AcceptsTasks reports whether new tasks may be created under a project in
// this status. Proposal projects don't accept tasks yet; finished and
// cancelled projects don't accept more.
func (s ProjectStatus) AcceptsTasks() bool {
	switch s {
	case ProjectProposal, ProjectFinished, ProjectCancelled:
		return false
	}
	return true
}

// AcceptsTaskMoves reports whether a task may be reassigned into a project in
// this status. Only projects still being scoped take transfers.
func (s ProjectStatus) AcceptsTaskMoves() bool {
	return s == ProjectProposal || s == ProjectPlanning
}

type Project struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	UserOwner   int64         `json:"userOwner"`
	Status      ProjectStatus `json:"status"`
	IsDeleted   bool          `json:"-"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
