package audit

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventTypeAccessDenied, EventStatusDenied)

	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
	assert.Equal(t, EventTypeAccessDenied, event.EventType)
	assert.Equal(t, EventStatusDenied, event.Status)

	second := NewEvent(EventTypeAccessDenied, EventStatusDenied)
	assert.NotEqual(t, event.ID, second.ID)
}

func TestEventJSONRoundTrip(t *testing.T) {
	event := NewEvent(EventTypeFieldsRejected, EventStatusDenied)
	event.Subject = "user-1"
	event.Function = "members"
	event.Action = "write"
	event.Collection = "members"
	event.RecordID = "m-1"
	event.Region = "Utrecht"
	event.RejectedFields = []string{"iban", "contribution"}

	data, err := event.ToJSON()
	require.NoError(t, err)

	decoded, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, event.ID, decoded.ID)
	assert.Equal(t, event.EventType, decoded.EventType)
	assert.Equal(t, event.RejectedFields, decoded.RejectedFields)
	assert.Equal(t, "Utrecht", decoded.Region)
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	logger, err := NewFileLogger(path)
	require.NoError(t, err)

	ctx := context.Background()
	for _, et := range []EventType{EventTypeRecordCreate, EventTypeRecordDelete} {
		require.NoError(t, logger.Log(ctx, NewEvent(et, EventStatusSuccess)))
	}
	require.NoError(t, logger.Close())

	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var events []*Event
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		event, err := FromJSON(scanner.Bytes())
		require.NoError(t, err)
		events = append(events, event)
	}
	require.NoError(t, scanner.Err())

	require.Len(t, events, 2)
	assert.Equal(t, EventTypeRecordCreate, events[0].EventType)
	assert.Equal(t, EventTypeRecordDelete, events[1].EventType)
}

func TestFileLoggerAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		logger, err := NewFileLogger(path)
		require.NoError(t, err)
		require.NoError(t, logger.Log(ctx, NewEvent(EventTypeAuthLogin, EventStatusSuccess)))
		require.NoError(t, logger.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	assert.Equal(t, 2, lines, "reopening the log must append, not truncate")
}

func TestMemoryLogger(t *testing.T) {
	logger := NewMemoryLogger()
	ctx := context.Background()

	require.NoError(t, logger.Log(ctx, NewEvent(EventTypeAccessDenied, EventStatusDenied)))
	require.NoError(t, logger.Log(ctx, NewEvent(EventTypeRecordUpdate, EventStatusSuccess)))

	events := logger.Events()
	require.Len(t, events, 2)

	// The snapshot must not expose internal state.
	events[0] = nil
	assert.NotNil(t, logger.Events()[0])
}

func TestNopLogger(t *testing.T) {
	var logger Logger = NopLogger{}
	assert.NoError(t, logger.Log(context.Background(), NewEvent(EventTypeAuthLogin, EventStatusSuccess)))
	assert.NoError(t, logger.Close())
}
