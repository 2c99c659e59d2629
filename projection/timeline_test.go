package projection

import (
	"context"
	"group-lab/domain/event"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestTimeline_Consume_MessagePosted(t *testing.T) {
	timeline := NewTimeline("Bob")
	ctx := context.Background()
	group := uuid.New()
	at := time.Date(2023, 12, 3, 0, 40, 58, 0, time.UTC)

	evt1 := event.MessagePosted{ID: uuid.New(), Group: group, Seq: 0, Author: "Alice", Content: "Hello Bob", At: at}
	evt2 := event.MessagePosted{ID: uuid.New(), Group: group, Seq: 1, Author: "Clara", Content: "Hi Bob", At: at.Add(time.Second)}

	require.NoError(t, timeline.Consume(ctx, evt1))
	require.NoError(t, timeline.Consume(ctx, evt2))

	messages := timeline.Messages()
	require.Len(t, messages, 2)
	require.Equal(t, "Alice", messages[0].SenderName)
	require.Equal(t, "Clara", messages[1].SenderName)
	require.Equal(t, "Hi Bob", messages[1].Text)
}

func TestTimeline_Ignores_Duplicates_And_Other_Events(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("Bob")
	ctx := context.Background()
	group := uuid.New()
	evt := event.MessagePosted{ID: uuid.New(), Group: group, Author: "Alice", Content: "once", At: time.Now()}

	req.NoError(timeline.Consume(ctx, evt))
	req.NoError(timeline.Consume(ctx, evt))
	req.NoError(timeline.Consume(ctx, event.MemberJoined{Group: group, UserID: uuid.New(), Username: "Clara"}))

	req.Len(timeline.Messages(), 1)
}

func TestTimeline_Orders_By_Sequence_Within_Group(t *testing.T) {
	req := require.New(t)
	timeline := NewTimeline("Bob")
	ctx := context.Background()
	group, other := uuid.New(), uuid.New()
	at := time.Date(2023, 12, 3, 0, 40, 58, 0, time.UTC)

	req.NoError(timeline.Consume(ctx, event.MessagePosted{ID: uuid.New(), Group: group, Seq: 1, Content: "second", At: at}))
	req.NoError(timeline.Consume(ctx, event.MessagePosted{ID: uuid.New(), Group: group, Seq: 0, Content: "first", At: at}))
	req.NoError(timeline.Consume(ctx, event.MessagePosted{ID: uuid.New(), Group: other, Seq: 0, Content: "elsewhere", At: at}))

	messages := timeline.Group(group)
	req.Len(messages, 2)
	req.Equal("first", messages[0].Text)
	req.Equal("second", messages[1].Text)
	req.Len(timeline.Group(other), 1)
}
