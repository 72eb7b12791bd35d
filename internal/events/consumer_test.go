package events

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	got chan Notification
	err error
}

func (s *recordingSink) Notify(_ context.Context, n Notification) error {
	if s.err != nil {
		return s.err
	}
	s.got <- n
	return nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func eventMessage(t *testing.T, ev *Event) *message.Message {
	t.Helper()
	payload, err := json.Marshal(ev)
	require.NoError(t, err)
	return message.NewMessage(ev.ID, payload)
}

func TestDispatcher_CommentNotifiesSubmissionOwner(t *testing.T) {
	sink := &recordingSink{got: make(chan Notification, 1)}
	d := NewDispatcher(sink, quietLogger())

	ev := NewCommentCreatedEvent(CommentCreatedEvent{CommentID: 1, SubmissionID: 2, CourseID: 3, FieldIndex: 0, CommenterID: "inst", OwnerID: "stu1"})
	require.NoError(t, d.Handle(eventMessage(t, ev)))

	n := <-sink.got
	assert.Equal(t, ev.ID, n.EventID)
	assert.Equal(t, "stu1", n.RecipientID)
	assert.Equal(t, uint(3), n.CourseID)
	assert.Equal(t, "New comment on field 1 of your submission", n.Subject)
}

func TestDispatcher_SkipsWhatNeedsNoNotification(t *testing.T) {
	sink := &recordingSink{got: make(chan Notification, 1)}
	d := NewDispatcher(sink, quietLogger())

	own := NewCommentCreatedEvent(CommentCreatedEvent{CommenterID: "stu1", OwnerID: "stu1"})
	require.NoError(t, d.Handle(eventMessage(t, own)))
	require.NoError(t, d.Handle(eventMessage(t, NewSubmissionEvent(EventSubmissionCreated, SubmissionEvent{SubmissionID: 1}))))
	require.NoError(t, d.Handle(message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	assert.Empty(t, sink.got)
}

func TestDispatcher_SinkFailureNacks(t *testing.T) {
	d := NewDispatcher(&recordingSink{err: errors.New("smtp down")}, quietLogger())
	err := d.Handle(eventMessage(t, NewTemplatePublishedEvent(1, 2, "Quiz", 1, "inst")))
	assert.ErrorContains(t, err, "smtp down")
}

func TestRunConsumer(t *testing.T) {
	logger := quietLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{Persistent: true}, watermill.NewSlogLogger(logger))
	defer pubSub.Close()

	ev := NewTemplatePublishedEvent(4, 9, "Project report", 3, "inst")
	require.NoError(t, pubSub.Publish("course-events", eventMessage(t, ev)))

	sink := &recordingSink{got: make(chan Notification, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunConsumer(ctx, pubSub, "course-events", NewDispatcher(sink, logger), logger) }()

	select {
	case n := <-sink.got:
		assert.Equal(t, uint(9), n.CourseID)
		assert.Empty(t, n.RecipientID)
		assert.Equal(t, "New form available: Project report", n.Subject)
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not delivered")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}
