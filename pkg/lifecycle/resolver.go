// Package lifecycle interprets raw create/delete mutations on the
// friend_requests and contacts tables and decides which friend-request
// lifecycle transition actually happened, who gets notified, and which
// mutations are side effects of another transition and must stay silent.
//
// Accepting a request produces three uncoordinated writes (two contact rows,
// one request deletion) whose CDC events arrive in any order. There is no
// lock or transaction spanning them; the resolver compensates with
// existence checks against durable store state, biased so that a refusal
// notification is never sent after an acceptance.
package lifecycle

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/tracing"
)

// TransitionKind identifies a fresh lifecycle transition
type TransitionKind string

const (
	RequestCreated  TransitionKind = "request_created"
	RequestAccepted TransitionKind = "request_accepted"
	RequestRefused  TransitionKind = "request_refused"
)

// Transition is a resolved lifecycle change: the actor caused it, the
// recipient gets notified about it. A nil *Transition from a classify
// method means the mutation was suppressed.
type Transition struct {
	Kind         TransitionKind
	ActorUID     string
	RecipientUID string
}

// ContactChecker answers whether a contact row exists for an (owner, other)
// pair. The check runs against durable store state, not against the event
// stream, which is what makes it order-tolerant.
type ContactChecker interface {
	Exists(ctx context.Context, ownerUID, otherUID string) (bool, error)
}

// Resolver classifies record mutations into transitions
type Resolver struct {
	contacts ContactChecker
	logger   ectologger.Logger
}

// NewResolver creates a new lifecycle resolver
func NewResolver(contacts ContactChecker, logger ectologger.Logger) *Resolver {
	return &Resolver{
		contacts: contacts,
		logger:   logger,
	}
}

// ClassifyRequestCreated handles a new friend_requests row. Creation has no
// competing cause, so it always notifies: the receiver learns the sender
// asked.
func (r *Resolver) ClassifyRequestCreated(receiverUID, senderUID string) *Transition {
	return &Transition{
		Kind:         RequestCreated,
		ActorUID:     senderUID,
		RecipientUID: receiverUID,
	}
}

// ClassifyContactCreated handles a new contacts row. Contacts are written
// symmetrically for both parties; only the original requester's row should
// notify. The row's is_sender flag marks the accepter's own copy, which is a
// side effect of the accept and stays silent. Disambiguating on the flag
// instead of re-checking the request record keeps the outcome identical in
// both delivery orders: by the time either contact event is handled, the
// request row may already be gone.
func (r *Resolver) ClassifyContactCreated(ownerUID, otherUID string, isSender bool) *Transition {
	if isSender {
		return nil
	}
	return &Transition{
		Kind:         RequestAccepted,
		ActorUID:     otherUID,
		RecipientUID: ownerUID,
	}
}

// ClassifyRequestDeleted handles a deleted friend_requests row. The row is
// deleted both on explicit refusal and as cleanup once an accept created the
// contact rows. The deciding fact is whether a contact for the pair exists
// now: the accept flow writes contacts before deleting the request, so by
// the time this deletion is observed an acceptance is always visible.
//
// When the store lookup fails the deletion is suppressed rather than
// reported as a refusal: a missed refusal notice is recoverable, a refusal
// notice after an acceptance is not.
func (r *Resolver) ClassifyRequestDeleted(ctx context.Context, receiverUID, senderUID string) *Transition {
	ctx, span := tracing.StartSpan(ctx, "lifecycle.Resolver.ClassifyRequestDeleted")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"receiver_uid": receiverUID,
		"sender_uid":   senderUID,
	})

	accepted, err := r.contacts.Exists(ctx, senderUID, receiverUID)
	if err != nil {
		log.WithError(err).Warn("Contact existence check failed, suppressing ambiguous request deletion")
		return nil
	}

	if accepted {
		log.Debug("Request deletion is accept-flow cleanup, suppressing")
		return nil
	}

	return &Transition{
		Kind:         RequestRefused,
		ActorUID:     receiverUID,
		RecipientUID: senderUID,
	}
}
