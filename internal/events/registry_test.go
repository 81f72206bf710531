// internal/events/registry_test.go
package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Unmarshal(t *testing.T) {
	registry := NewRegistry()
	registry.Register(EventFileOrganized, func() Event { return &FileOrganized{} })

	raw := RawEvent{
		EventType: EventFileOrganized,
		Payload:   `{"type":"organize.file.organized","run_id":"run-7","occurred_at":"2024-01-01T00:00:00Z","operation_id":"op-1","source":"/in/a.mkv","destination":"/out/Show/Show S01E01.mkv","mode":"move","size_bytes":1024}`,
	}

	event, err := registry.Unmarshal(raw)
	require.NoError(t, err)

	organized, ok := event.(*FileOrganized)
	require.True(t, ok)
	assert.Equal(t, "run-7", organized.RunID())
	assert.Equal(t, "op-1", organized.OperationID)
	assert.Equal(t, "/out/Show/Show S01E01.mkv", organized.Destination)
	assert.Equal(t, int64(1024), organized.SizeBytes)
}

func TestRegistry_UnmarshalUnknownType(t *testing.T) {
	registry := NewRegistry()

	raw := RawEvent{
		EventType: "unknown.event",
		Payload:   `{}`,
	}

	_, err := registry.Unmarshal(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown event type")
}

func TestRegistry_UnmarshalInvalidJSON(t *testing.T) {
	registry := NewRegistry()
	registry.Register(EventScanStarted, func() Event { return &ScanStarted{} })

	raw := RawEvent{
		EventType: EventScanStarted,
		Payload:   `{invalid json`,
	}

	_, err := registry.Unmarshal(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal event payload")
}

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry()

	eventTypes := []string{
		EventScanStarted,
		EventScanProgress,
		EventScanCompleted,
		EventFileOrganized,
		EventFileSkipped,
		EventFileFailed,
		EventOrganizeProgress,
		EventRunCompleted,
		EventRollbackCompleted,
		EventBackupsPurged,
	}

	for _, eventType := range eventTypes {
		t.Run(eventType, func(t *testing.T) {
			raw := RawEvent{
				EventType: eventType,
				Payload:   `{"type":"` + eventType + `","run_id":"run-1","occurred_at":"2024-01-01T00:00:00Z"}`,
			}
			event, err := registry.Unmarshal(raw)
			require.NoError(t, err, "Failed to unmarshal %s", eventType)
			assert.Equal(t, eventType, event.EventType())
			assert.Equal(t, "run-1", event.RunID())
		})
	}
}

func TestRegistry_UnmarshalRunCompleted(t *testing.T) {
	registry := DefaultRegistry()

	raw := RawEvent{
		EventType: EventRunCompleted,
		Payload:   `{"type":"run.completed","run_id":"run-9","occurred_at":"2024-01-01T12:00:00Z","organized":12,"skipped":2,"failed":1,"conflicts":1,"duplicates":1,"duration_ms":420}`,
	}

	event, err := registry.Unmarshal(raw)
	require.NoError(t, err)

	done, ok := event.(*RunCompleted)
	require.True(t, ok)
	assert.Equal(t, 12, done.Organized)
	assert.Equal(t, 1, done.Failed)
	assert.Equal(t, int64(420), done.DurationMS)
	assert.False(t, done.AllSucceeded())
}
