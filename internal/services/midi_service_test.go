package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"church-hub/internal/models"
)

type recordingWriter struct {
	mu     sync.Mutex
	writes []ledState
}

func (w *recordingWriter) WriteLED(note byte, on bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.writes = append(w.writes, ledState{note: note, on: on})
	return nil
}

func (w *recordingWriter) count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.writes)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) BroadcastEvent(msgType string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, msgType)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	copy(out, p.events)
	return out
}

func fastMIDIService(writer LEDWriter) *MIDIService {
	ms := NewMIDIService(writer)
	ms.settleDelay = 10 * time.Millisecond
	ms.reassertDelay = 20 * time.Millisecond
	return ms
}

func awaitWrites(t *testing.T, w *recordingWriter, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for w.count() < want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d LED writes, got %d", want, w.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSetLEDWritesOnlyWhileConnected(t *testing.T) {
	writer := &recordingWriter{}
	ms := NewMIDIService(writer)
	defer ms.Close()

	ms.SetLED(36, true)
	assert.Equal(t, 0, writer.count())

	ms.HandleDevicesConnected([]models.MIDIDevice{{ID: "d1", Name: "Launchpad"}})
	ms.SetLED(37, true)
	awaitWrites(t, writer, 1)
}

func TestReconnectReassertsLEDStateTwice(t *testing.T) {
	writer := &recordingWriter{}
	ms := fastMIDIService(writer)
	defer ms.Close()

	ms.SetLED(36, true)
	ms.HandleDevicesConnected([]models.MIDIDevice{{ID: "d1", Name: "Launchpad"}})

	// Settle-delay assert plus the later redundant one.
	awaitWrites(t, writer, 2)
	writer.mu.Lock()
	for _, w := range writer.writes {
		assert.Equal(t, byte(36), w.note)
		assert.True(t, w.on)
	}
	writer.mu.Unlock()
}

func TestDisconnectCancelsPendingReasserts(t *testing.T) {
	writer := &recordingWriter{}
	ms := fastMIDIService(writer)
	defer ms.Close()

	ms.SetLED(36, true)
	ms.HandleDevicesConnected([]models.MIDIDevice{{ID: "d1", Name: "Launchpad"}})
	ms.HandleDevicesDisconnected()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0, writer.count())
}

func TestConnectivityEventsReachPublisher(t *testing.T) {
	publisher := &recordingPublisher{}
	ms := NewMIDIService(nil)
	defer ms.Close()
	ms.SetPublisher(publisher)

	ms.HandleDevicesConnected([]models.MIDIDevice{{ID: "d1", Name: "Launchpad"}})
	ms.HandleDevicesDisconnected()
	ms.HandleMessage(models.MIDIMessage{Status: 0x90, Data1: 36, Data2: 127})

	require.Equal(t, []string{
		EventMIDIConnectionStatus,
		EventMIDIDevices,
		EventMIDIConnectionStatus,
		EventMIDIDevices,
		EventMIDIMessage,
	}, publisher.types())
	assert.False(t, ms.Connected())
}

func TestSetAllLEDsWritesEveryKnownPad(t *testing.T) {
	writer := &recordingWriter{}
	ms := NewMIDIService(writer)
	defer ms.Close()

	ms.HandleDevicesConnected([]models.MIDIDevice{{ID: "d1", Name: "Launchpad"}})
	ms.SetLED(36, true)
	ms.SetLED(37, true)
	before := writer.count()

	ms.SetAllLEDs(false)
	awaitWrites(t, writer, before+2)

	require.Len(t, ms.Devices(), 1)
	assert.Equal(t, "d1", ms.Devices()[0].ID)
}
