package growthtree

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

type OutcomeState string

const (
	// OutcomeAssigned: the new record was written and the view reloaded.
	OutcomeAssigned OutcomeState = "assigned"
	// OutcomeConfirmationRequired: the student already has distinct
	// in-progress work; the operator must decide whether to replace it.
	OutcomeConfirmationRequired OutcomeState = "confirmation_required"
	// OutcomeCancelled: the operator declined; nothing was written.
	OutcomeCancelled OutcomeState = "cancelled"
)

// Outcome is the result of one assignment run. A ConfirmationRequired
// outcome carries a continuation: in-process callers invoke Resolve with
// the operator's choice, the HTTP layer re-requests with the decision.
type Outcome struct {
	State     OutcomeState            `json:"state"`
	Next      *NextActivity           `json:"next,omitempty"`
	Replacing []StudentActivityRecord `json:"replacing,omitempty"`
	Assigned  *StudentActivityRecord  `json:"assigned,omitempty"`
	View      *PathView               `json:"view,omitempty"`

	resolve func(ctx context.Context, replace bool) (Outcome, error)
}

// Resolve continues a ConfirmationRequired outcome with the operator's
// decision.
func (o Outcome) Resolve(ctx context.Context, replace bool) (Outcome, error) {
	if o.resolve == nil {
		return Outcome{}, errors.New("outcome does not await confirmation")
	}
	return o.resolve(ctx, replace)
}

// nowFunc is swapped in tests.
var nowFunc = time.Now

// ArrangeNextActivity runs the assignment state machine:
// probe the store, re-select the next activity fresh, check for conflicts
// with the student's in-progress work, then write the new record and
// reload. replace carries the operator's decision for the replacement
// conflict; nil means not asked yet.
//
// There is no store-level locking against other operators assigning the
// same student concurrently; the fresh re-read closes the stale-UI race
// within a session only.
func (svc *service) ArrangeNextActivity(ctx context.Context, studentID, treeID string, replace *bool) (Outcome, error) {
	if err := svc.repo.Ping(ctx); err != nil {
		return Outcome{}, newAssignmentError(StoreUnavailable, err)
	}
	return svc.assignNext(ctx, studentID, treeID, replace)
}

func (svc *service) assignNext(ctx context.Context, studentID, treeID string, replace *bool) (Outcome, error) {
	// re-select fresh rather than trusting stale UI state
	view := svc.loadState(ctx, studentID, treeID)
	if view == nil {
		return Outcome{}, newAssignmentError(NothingToAssign, errors.New("tree has no learning path"))
	}

	// first incomplete activity in document order, before the
	// no-double-offer rule is applied
	next := selectNext(view.Nodes, nil)
	if next == nil {
		return Outcome{}, newAssignmentError(NothingToAssign, errors.New("path fully completed"))
	}

	current, err := svc.inProgressRecords(ctx, studentID)
	if err != nil {
		return Outcome{}, newAssignmentError(StoreUnavailable, errors.Wrap(err, "querying in-progress records"))
	}
	busy := inProgressSet(current)

	if next.RealActivityID != "" && busy[next.RealActivityID] {
		// conflict of redundancy: the candidate is already underway, so
		// silently take the next one that is not.
		if next = selectNext(view.Nodes, busy); next == nil {
			return Outcome{}, newAssignmentError(AllActivitiesBusy,
				errors.New("every remaining activity is already in progress"))
		}
	} else if len(current) > 0 {
		// conflict of replacement: distinct in-progress work exists and
		// gets closed out only on explicit operator confirmation.
		if replace == nil {
			out := Outcome{State: OutcomeConfirmationRequired, Next: next, Replacing: current}
			out.resolve = func(ctx context.Context, rep bool) (Outcome, error) {
				return svc.assignNext(ctx, studentID, treeID, &rep)
			}
			return out, nil
		}
		if !*replace {
			return Outcome{State: OutcomeCancelled, Next: next}, nil
		}

		now := nowFunc().UTC()
		for _, rec := range current {
			patch := ActivityPatch{Status: StatusCompleted, CompletedAt: now}
			if err := svc.repo.UpdateStudentActivity(ctx, rec.ID, patch); err != nil {
				return Outcome{}, classifyWriteError(errors.Wrapf(err, "completing record %s", rec.ID))
			}
		}
	}

	rec := StudentActivityRecord{
		StudentID:    studentID,
		ActivityID:   next.RealActivityID,
		TreeID:       treeID,
		ActivityType: ActivityTypeOngoing,
		Status:       StatusInProgress,
		AssignedAt:   nowFunc().UTC(),
	}
	created, err := svc.repo.InsertStudentActivity(ctx, rec)
	if err != nil {
		return Outcome{}, classifyWriteError(errors.Wrap(err, "inserting student activity"))
	}

	svc.notifyAssignment(ctx, studentID, next)

	// reload so the displayed state reflects the new assignment
	return Outcome{
		State:    OutcomeAssigned,
		Next:     next,
		Assigned: &created,
		View:     svc.loadState(ctx, studentID, treeID),
	}, nil
}
