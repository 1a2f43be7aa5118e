package service

import (
	"fmt"

	"gatherly/sessionhub/internal/model"
)

// decideJoin is the join policy engine. It maps (session, requester, invite)
// to the membership status a join attempt should get, or the error that
// rejects it. Capacity is deliberately not checked here: admission happens
// atomically at the store when the entry is committed.
//
// Every join entry point (registered, guest, invite link) routes through this
// one function.
func decideJoin(session *model.Session, requester model.Identity, hasValidInvite bool) (model.MembershipStatus, error) {
	if requester.IsRegistered() && requester.UserID == session.CreatorID {
		return "", fmt.Errorf("%w: cannot join own session", ErrNotAuthorized)
	}
	if !session.IsActive() {
		return "", ErrSessionInactive
	}

	switch session.JoinPolicy {
	case model.JoinPolicyInviteOnly:
		if !hasValidInvite {
			return "", ErrPolicyViolation
		}
		return model.MembershipStatusConfirmed, nil
	case model.JoinPolicyCurated:
		// A valid invite bypasses curation; otherwise the request waits for
		// the host and reserves no capacity slot.
		if hasValidInvite {
			return model.MembershipStatusConfirmed, nil
		}
		return model.MembershipStatusPending, nil
	default:
		return model.MembershipStatusConfirmed, nil
	}
}
