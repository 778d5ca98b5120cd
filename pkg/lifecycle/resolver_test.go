package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeContacts struct {
	mu   sync.Mutex
	rows map[[2]string]bool
	err  error
}

func newFakeContacts() *fakeContacts {
	return &fakeContacts{rows: make(map[[2]string]bool)}
}

func (f *fakeContacts) add(ownerUID, otherUID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[[2]string{ownerUID, otherUID}] = true
}

func (f *fakeContacts) Exists(_ context.Context, ownerUID, otherUID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.rows[[2]string{ownerUID, otherUID}], nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestClassifyRequestCreated(t *testing.T) {
	r := NewResolver(newFakeContacts(), noopLogger())

	transition := r.ClassifyRequestCreated("bob", "alice")
	require.NotNil(t, transition)
	assert.Equal(t, RequestCreated, transition.Kind)
	assert.Equal(t, "alice", transition.ActorUID)
	assert.Equal(t, "bob", transition.RecipientUID)
}

func TestClassifyContactCreated_NotifiesOriginalSender(t *testing.T) {
	r := NewResolver(newFakeContacts(), noopLogger())

	// alice's own contact row, created when bob accepted her request
	transition := r.ClassifyContactCreated("alice", "bob", false)
	require.NotNil(t, transition)
	assert.Equal(t, RequestAccepted, transition.Kind)
	assert.Equal(t, "bob", transition.ActorUID)
	assert.Equal(t, "alice", transition.RecipientUID)
}

func TestClassifyContactCreated_MirrorRowSuppressed(t *testing.T) {
	r := NewResolver(newFakeContacts(), noopLogger())

	// bob's own row carries is_sender since bob performed the accept
	transition := r.ClassifyContactCreated("bob", "alice", true)
	assert.Nil(t, transition)
}

func TestClassifyRequestDeleted_RefusalWhenNoContact(t *testing.T) {
	r := NewResolver(newFakeContacts(), noopLogger())

	transition := r.ClassifyRequestDeleted(context.Background(), "bob", "alice")
	require.NotNil(t, transition)
	assert.Equal(t, RequestRefused, transition.Kind)
	assert.Equal(t, "bob", transition.ActorUID)
	assert.Equal(t, "alice", transition.RecipientUID)
}

func TestClassifyRequestDeleted_SuppressedWhenContactExists(t *testing.T) {
	contacts := newFakeContacts()
	contacts.add("alice", "bob")
	r := NewResolver(contacts, noopLogger())

	transition := r.ClassifyRequestDeleted(context.Background(), "bob", "alice")
	assert.Nil(t, transition)
}

func TestClassifyRequestDeleted_SuppressedOnStoreError(t *testing.T) {
	contacts := newFakeContacts()
	contacts.err = errors.New("connection refused")
	r := NewResolver(contacts, noopLogger())

	transition := r.ClassifyRequestDeleted(context.Background(), "bob", "alice")
	assert.Nil(t, transition)
}

// Acceptance produces three CDC events (two contact creates and one request
// delete) with no delivery order guarantee. Whatever the order, the outcome
// must be exactly one acceptance notification and no refusal.
func TestAcceptance_AnyDeliveryOrder(t *testing.T) {
	type event func(r *Resolver) *Transition

	contactForAlice := func(r *Resolver) *Transition {
		return r.ClassifyContactCreated("alice", "bob", false)
	}
	contactForBob := func(r *Resolver) *Transition {
		return r.ClassifyContactCreated("bob", "alice", true)
	}
	requestDeleted := func(r *Resolver) *Transition {
		return r.ClassifyRequestDeleted(context.Background(), "bob", "alice")
	}

	orders := map[string][]event{
		"contacts first": {contactForAlice, contactForBob, requestDeleted},
		"delete first":   {requestDeleted, contactForAlice, contactForBob},
		"interleaved":    {contactForAlice, requestDeleted, contactForBob},
	}

	for name, order := range orders {
		t.Run(name, func(t *testing.T) {
			// the accept flow writes both contact rows before deleting the
			// request, so the rows are durably present for every delivery order
			contacts := newFakeContacts()
			contacts.add("alice", "bob")
			contacts.add("bob", "alice")
			r := NewResolver(contacts, noopLogger())

			accepted := 0
			for _, ev := range order {
				if transition := ev(r); transition != nil {
					require.Equal(t, RequestAccepted, transition.Kind)
					assert.Equal(t, "bob", transition.ActorUID)
					assert.Equal(t, "alice", transition.RecipientUID)
					accepted++
				}
			}
			assert.Equal(t, 1, accepted)
		})
	}
}
