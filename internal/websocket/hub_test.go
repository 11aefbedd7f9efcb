package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

func newRunningHub() *Hub {
	h := NewHub()
	go h.Run()
	return h
}

func newTestClient(submissionID string, buffer int) *Client {
	return &Client{
		SubmissionID: submissionID,
		Send:         make(chan []byte, buffer),
	}
}

// receive waits for one frame from the client or fails the test.
func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case data, ok := <-c.Send:
		if !ok {
			t.Fatal("send channel closed before a frame arrived")
		}
		return data
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a frame")
		return nil
	}
}

func TestHubDeliversStatusToSubscriber(t *testing.T) {
	hub := newRunningHub()
	client := newTestClient("sub-1", 4)
	hub.Register(client)

	hub.BroadcastStatus("sub-1", model.ProcessState{
		Phase:      model.PhaseRunning,
		StatusText: model.StatusAnalyzing,
	})

	var msg model.WSStatusMessage
	require.NoError(t, json.Unmarshal(receive(t, client), &msg))

	assert.Equal(t, model.WSMessageTypeStatus, msg.Type)
	assert.Equal(t, "sub-1", msg.SubmissionID)
	assert.Equal(t, model.PhaseRunning, msg.Phase)
	assert.Equal(t, model.StatusAnalyzing, msg.StatusText)
}

func TestHubDeliversCompleteToSubscriber(t *testing.T) {
	hub := newRunningHub()
	client := newTestClient("sub-1", 4)
	hub.Register(client)

	hub.BroadcastComplete("sub-1", "/resume/sub-1")

	var msg model.WSCompleteMessage
	require.NoError(t, json.Unmarshal(receive(t, client), &msg))

	assert.Equal(t, model.WSMessageTypeComplete, msg.Type)
	assert.Equal(t, "sub-1", msg.SubmissionID)
	assert.Equal(t, "/resume/sub-1", msg.Redirect)
}

func TestHubDeliversErrorToSubscriber(t *testing.T) {
	hub := newRunningHub()
	client := newTestClient("sub-1", 4)
	hub.Register(client)

	hub.BroadcastError("sub-1", "ANALYSIS_FAILED", "Analysis timed out")

	var msg model.WSErrorMessage
	require.NoError(t, json.Unmarshal(receive(t, client), &msg))

	assert.Equal(t, model.WSMessageTypeError, msg.Type)
	assert.Equal(t, "sub-1", msg.SubmissionID)
	assert.Equal(t, "ANALYSIS_FAILED", msg.Error.Code)
	assert.Equal(t, "Analysis timed out", msg.Error.Message)
}

func TestHubDoesNotCrossSubmissions(t *testing.T) {
	hub := newRunningHub()
	subscriber := newTestClient("sub-1", 4)
	bystander := newTestClient("sub-2", 4)
	hub.Register(subscriber)
	hub.Register(bystander)

	hub.BroadcastComplete("sub-1", "/resume/sub-1")

	receive(t, subscriber)
	select {
	case data := <-bystander.Send:
		t.Fatalf("bystander received %s", data)
	default:
	}
}

func TestHubBroadcastFansOutToAllSubscribers(t *testing.T) {
	hub := newRunningHub()
	first := newTestClient("sub-1", 4)
	second := newTestClient("sub-1", 4)
	hub.Register(first)
	hub.Register(second)

	hub.BroadcastStatus("sub-1", model.ProcessState{Phase: model.PhaseRunning, StatusText: model.StatusSavingData})

	receive(t, first)
	receive(t, second)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := newRunningHub()
	client := newTestClient("sub-1", 4)
	hub.Register(client)

	hub.Unregister(client)

	select {
	case _, ok := <-client.Send:
		assert.False(t, ok, "expected send channel to be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the send channel to close")
	}
}

// A subscriber whose buffer is full is evicted rather than blocking the
// hub, and sending to it afterwards is a no-op instead of a panic.
func TestHubEvictsSlowSubscriber(t *testing.T) {
	hub := newRunningHub()
	client := newTestClient("sub-1", 1)
	hub.Register(client)

	hub.BroadcastStatus("sub-1", model.ProcessState{Phase: model.PhaseRunning, StatusText: model.StatusConvertingPDF})
	hub.BroadcastStatus("sub-1", model.ProcessState{Phase: model.PhaseRunning, StatusText: model.StatusUploadingImage})

	receive(t, client)
	select {
	case _, ok := <-client.Send:
		assert.False(t, ok, "expected eviction to close the send channel")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for eviction")
	}

	assert.False(t, client.trySend([]byte(`{"type":"pong"}`)))
}

func TestStatusFrameMatchesStatusMessageShape(t *testing.T) {
	frame := StatusFrame("sub-1", model.IdleState())
	require.NotNil(t, frame)

	var msg model.WSStatusMessage
	require.NoError(t, json.Unmarshal(frame, &msg))

	assert.Equal(t, model.WSMessageTypeStatus, msg.Type)
	assert.Equal(t, "sub-1", msg.SubmissionID)
	assert.Equal(t, model.PhaseIdle, msg.Phase)
	assert.Empty(t, msg.StatusText)
}
