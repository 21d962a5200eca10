package registration

import (
	"fmt"

	"github.com/ppdb/admissions-backend/internal/domain/models"
)

// Event is the closed set of triggers that move a registration between
// statuses. Every status change in this package goes through Transition;
// the only direct assignment is the initial draft status set on creation.
type Event string

const (
	EventSubmit       Event = "submit"
	EventVerify       Event = "verify"
	EventReject       Event = "reject"
	EventAccept       Event = "accept"
	EventEnroll       Event = "enroll"
	EventPeriodEnd    Event = "period_end"
	EventDeadlinePass Event = "deadline_pass"
)

// Transition returns the resulting status of applying event to from, or an
// error if the event is not valid from that status. This is the single
// source of truth for the diagram in spec §4.5 — the verification and
// selection modules reuse it rather than re-deriving the diagram.
func Transition(from models.RegistrationStatus, event Event) (models.RegistrationStatus, error) {
	switch from {
	case models.StatusDraft:
		switch event {
		case EventSubmit:
			return models.StatusSubmitted, nil
		case EventPeriodEnd:
			return models.StatusDraft, nil // left in draft, non-selectable
		}
	case models.StatusSubmitted:
		switch event {
		case EventVerify:
			return models.StatusVerified, nil
		case EventReject:
			return models.StatusRejected, nil
		}
	case models.StatusVerified:
		switch event {
		case EventAccept:
			return models.StatusAccepted, nil
		case EventReject:
			return models.StatusRejected, nil
		}
	case models.StatusAccepted:
		switch event {
		case EventEnroll:
			return models.StatusEnrolled, nil
		case EventDeadlinePass:
			return models.StatusExpired, nil
		}
	}
	return "", fmt.Errorf("transisi tidak valid: %s tidak dapat menerima peristiwa %q", from, event)
}
