package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/lifecycle"
)

type fakeContacts struct {
	rows map[[2]string]bool
	err  error
}

func (f *fakeContacts) Exists(_ context.Context, ownerUID, otherUID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.rows[[2]string{ownerUID, otherUID}], nil
}

type fakeDispatcher struct {
	transitions []*lifecycle.Transition
	err         error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, transition *lifecycle.Transition) error {
	if f.err != nil {
		return f.err
	}
	f.transitions = append(f.transitions, transition)
	return nil
}

type fakeEmitter struct {
	transitions []*lifecycle.Transition
	err         error
}

func (f *fakeEmitter) EmitTransition(_ context.Context, transition *lifecycle.Transition) error {
	if f.err != nil {
		return f.err
	}
	f.transitions = append(f.transitions, transition)
	return nil
}

func noopLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func newResolver(contacts *fakeContacts) *lifecycle.Resolver {
	if contacts == nil {
		contacts = &fakeContacts{rows: map[[2]string]bool{}}
	}
	return lifecycle.NewResolver(contacts, noopLogger())
}

func message(value string) *kafka.IncomingMessage {
	return &kafka.IncomingMessage{
		Topic: "clover.public.friend_requests",
		Value: []byte(value),
	}
}

func TestRequestProcessor_Create(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	emitter := &fakeEmitter{}
	p := NewRequestProcessor(noopLogger(), newResolver(nil), dispatcher, emitter)

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {
			"after": {"receiver_uid": "bob", "sender_uid": "alice"},
			"op": "c"
		}
	}`))
	require.NoError(t, err)
	require.Len(t, dispatcher.transitions, 1)

	transition := dispatcher.transitions[0]
	assert.Equal(t, lifecycle.RequestCreated, transition.Kind)
	assert.Equal(t, "alice", transition.ActorUID)
	assert.Equal(t, "bob", transition.RecipientUID)

	require.Len(t, emitter.transitions, 1)
	assert.Equal(t, transition, emitter.transitions[0])
}

func TestRequestProcessor_DeleteWithoutContactIsRefusal(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	p := NewRequestProcessor(noopLogger(), newResolver(nil), dispatcher, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {
			"before": {"receiver_uid": "bob", "sender_uid": "alice"},
			"after": null,
			"op": "d"
		}
	}`))
	require.NoError(t, err)
	require.Len(t, dispatcher.transitions, 1)

	transition := dispatcher.transitions[0]
	assert.Equal(t, lifecycle.RequestRefused, transition.Kind)
	assert.Equal(t, "bob", transition.ActorUID)
	assert.Equal(t, "alice", transition.RecipientUID)
}

func TestRequestProcessor_DeleteWithContactIsSuppressed(t *testing.T) {
	contacts := &fakeContacts{rows: map[[2]string]bool{{"alice", "bob"}: true}}
	dispatcher := &fakeDispatcher{}
	p := NewRequestProcessor(noopLogger(), newResolver(contacts), dispatcher, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {
			"before": {"receiver_uid": "bob", "sender_uid": "alice"},
			"after": null,
			"op": "d"
		}
	}`))
	require.NoError(t, err)
	assert.Empty(t, dispatcher.transitions)
}

func TestRequestProcessor_UpdateIgnored(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	p := NewRequestProcessor(noopLogger(), newResolver(nil), dispatcher, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {
			"before": {"receiver_uid": "bob", "sender_uid": "alice"},
			"after": {"receiver_uid": "bob", "sender_uid": "alice", "message": "edited"},
			"op": "u"
		}
	}`))
	require.NoError(t, err)
	assert.Empty(t, dispatcher.transitions)
}

func TestRequestProcessor_MalformedMessage(t *testing.T) {
	p := NewRequestProcessor(noopLogger(), newResolver(nil), &fakeDispatcher{}, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`not json`))
	assert.Error(t, err)
}

func TestRequestProcessor_MissingAfterImageSkipped(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	p := NewRequestProcessor(noopLogger(), newResolver(nil), dispatcher, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`{"payload": {"after": null, "op": "c"}}`))
	require.NoError(t, err)
	assert.Empty(t, dispatcher.transitions)
}

func TestRequestProcessor_DispatchErrorPropagates(t *testing.T) {
	dispatcher := &fakeDispatcher{err: errors.New("db down")}
	p := NewRequestProcessor(noopLogger(), newResolver(nil), dispatcher, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {"after": {"receiver_uid": "bob", "sender_uid": "alice"}, "op": "c"}
	}`))
	assert.Error(t, err)
}

func TestRequestProcessor_EmitterErrorIsSwallowed(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	emitter := &fakeEmitter{err: errors.New("kafka down")}
	p := NewRequestProcessor(noopLogger(), newResolver(nil), dispatcher, emitter)

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {"after": {"receiver_uid": "bob", "sender_uid": "alice"}, "op": "c"}
	}`))
	assert.NoError(t, err)
	assert.Len(t, dispatcher.transitions, 1)
}

func TestContactProcessor_CreateNotifiesSender(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	p := NewContactProcessor(noopLogger(), newResolver(nil), dispatcher, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {
			"after": {"owner_uid": "alice", "other_uid": "bob", "is_sender": false},
			"op": "c"
		}
	}`))
	require.NoError(t, err)
	require.Len(t, dispatcher.transitions, 1)

	transition := dispatcher.transitions[0]
	assert.Equal(t, lifecycle.RequestAccepted, transition.Kind)
	assert.Equal(t, "bob", transition.ActorUID)
	assert.Equal(t, "alice", transition.RecipientUID)
}

func TestContactProcessor_MirrorRowSuppressed(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	p := NewContactProcessor(noopLogger(), newResolver(nil), dispatcher, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {
			"after": {"owner_uid": "bob", "other_uid": "alice", "is_sender": true},
			"op": "c"
		}
	}`))
	require.NoError(t, err)
	assert.Empty(t, dispatcher.transitions)
}

func TestContactProcessor_DeleteIgnored(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	p := NewContactProcessor(noopLogger(), newResolver(nil), dispatcher, &fakeEmitter{})

	err := p.ProcessMessage(context.Background(), message(`{
		"payload": {
			"before": {"owner_uid": "bob", "other_uid": "alice"},
			"after": null,
			"op": "d"
		}
	}`))
	require.NoError(t, err)
	assert.Empty(t, dispatcher.transitions)
}
