package service

// Notification kinds handed to the sink.
const (
	NotifyPostSubmitted        = "post_submitted_for_approval"
	NotifyPostApproved         = "post_approved"
	NotifyPostChangesRequested = "post_changes_requested"
	NotifyReviewInvite         = "review_invite"
	NotifyTeamInvitation       = "team_invitation"
)

// Notifier is the outbound notification sink. Implementations are fire
// and forget; delivery failures never surface to the caller.
type Notifier interface {
	Notify(kind, recipient string, data map[string]string)
}

func notify(n Notifier, kind, recipient string, data map[string]string) {
	if n == nil || recipient == "" {
		return
	}
	n.Notify(kind, recipient, data)
}
