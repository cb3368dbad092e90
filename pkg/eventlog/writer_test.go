package eventlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"handoff/pkg/audit"
	"handoff/pkg/proto"
	"handoff/pkg/status"
)

func doneSnapshot() status.Snapshot {
	return status.New(status.Seed{AIState: proto.StateDone, AIQueueStatus: proto.QueueCompleted}).Snapshot()
}

func TestNewWriterCreatesFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")

	writer, err := NewWriter(dir)
	require.NoError(t, err)
	defer writer.Close()

	current := writer.CurrentLogFile()
	require.NotEmpty(t, current)
	_, err = os.Stat(current)
	assert.NoError(t, err)
	assert.Equal(t, "events-"+time.Now().Format("2006-01-02")+".jsonl", filepath.Base(current))
}

func TestWriteAndReadEvents(t *testing.T) {
	writer, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	defer writer.Close()

	ctx := context.Background()
	entry := audit.NewEntry("run-1", 1,
		proto.RoutingDecision{NextAgent: proto.AgentReasoning, Rationale: "r"},
		proto.AgentReasoning,
		status.Result{"action": "ANALYZE", "analysis": "healthy"},
		doneSnapshot(),
		time.Now().UTC(),
	)
	require.NoError(t, writer.Record(ctx, &entry))
	require.NoError(t, writer.Finish(ctx, &audit.Summary{RunID: "run-1", Iterations: 2, Reason: "DONE", Final: doneSnapshot()}))

	events, err := ReadEvents(writer.CurrentLogFile())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, KindEntry, events[0].Kind)
	require.NotNil(t, events[0].Entry)
	assert.Equal(t, "run-1", events[0].Entry.RunID)
	assert.Equal(t, proto.StateDone, events[0].Entry.Status.AIState)
	assert.Equal(t, "healthy", events[0].Entry.Result["analysis"])
	assert.Nil(t, events[0].Summary)

	assert.Equal(t, KindSummary, events[1].Kind)
	require.NotNil(t, events[1].Summary)
	assert.Equal(t, "DONE", events[1].Summary.Reason)
}

func TestRotation(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewWriter(dir)
	require.NoError(t, err)
	defer writer.Close()

	writer.now = func() time.Time { return time.Date(2030, 1, 2, 0, 0, 1, 0, time.UTC) }
	require.NoError(t, writer.Finish(context.Background(), &audit.Summary{RunID: "later", Final: status.New(status.Seed{}).Snapshot()}))
	assert.Equal(t, filepath.Join(dir, "events-2030-01-02.jsonl"), writer.CurrentLogFile())

	files, err := ListLogFiles(dir)
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCloseTwice(t *testing.T) {
	writer, err := NewWriter(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	require.NoError(t, writer.Close())
	assert.Empty(t, writer.CurrentLogFile())
}

func TestReadEventsRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events-bad.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{not json}\n"), 0644))
	_, err := ReadEvents(path)
	assert.Error(t, err)
}
