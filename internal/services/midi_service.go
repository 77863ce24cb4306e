package services

import (
	"log"
	"sync"
	"time"

	"church-hub/internal/models"
)

// LEDWriter is the hardware output port for controller pad LEDs. The real
// implementation talks to the MIDI subsystem; tests substitute a recorder.
type LEDWriter interface {
	WriteLED(note byte, on bool) error
}

// EventPublisher pushes device-level events to all connected observers.
type EventPublisher interface {
	BroadcastEvent(msgType string, payload interface{})
}

// Fan-out message types for device events.
const (
	EventMIDIMessage          = "midi_message"
	EventMIDIConnectionStatus = "midi_connection_status"
	EventMIDIDevices          = "midi_devices"
)

const (
	// deviceSettleDelay is how long a freshly reconnected controller needs
	// before its LED state can be trusted. Tuned to device settle time, not
	// network latency.
	deviceSettleDelay = 200 * time.Millisecond

	// reassertDelay is the gap before the second LED assertion. The device
	// may silently reset its LEDs on its own reconnect; redundant
	// re-assertion is the only recovery for state we cannot observe.
	reassertDelay = 500 * time.Millisecond
)

// MIDIService tracks controller connectivity and desired LED state, and
// relays raw MIDI input to the fan-out channel.
//
// On reconnect it runs a two-step scheduled assert: write the desired LED
// state after the settle delay, then write it once more after a further
// delay. Two timers, deliberately not a retry loop.
type MIDIService struct {
	mu        sync.Mutex
	writer    LEDWriter
	publisher EventPublisher
	connected bool
	devices   []models.MIDIDevice
	leds      map[byte]bool

	settleDelay   time.Duration
	reassertDelay time.Duration
	settleTimer   *time.Timer
	reassertTimer *time.Timer
}

// NewMIDIService creates a new MIDI service
func NewMIDIService(writer LEDWriter) *MIDIService {
	return &MIDIService{
		writer:        writer,
		leds:          make(map[byte]bool),
		settleDelay:   deviceSettleDelay,
		reassertDelay: reassertDelay,
	}
}

// SetPublisher attaches the fan-out channel.
func (ms *MIDIService) SetPublisher(p EventPublisher) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.publisher = p
}

// Connected reports current device connectivity.
func (ms *MIDIService) Connected() bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.connected
}

// Devices returns the last seen device list.
func (ms *MIDIService) Devices() []models.MIDIDevice {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := make([]models.MIDIDevice, len(ms.devices))
	copy(out, ms.devices)
	return out
}

// HandleDevicesConnected records the device list, notifies observers and
// schedules the two-phase LED re-assertion.
func (ms *MIDIService) HandleDevicesConnected(devices []models.MIDIDevice) {
	ms.mu.Lock()
	ms.connected = true
	ms.devices = make([]models.MIDIDevice, len(devices))
	copy(ms.devices, devices)
	ms.stopTimersLocked()
	ms.settleTimer = time.AfterFunc(ms.settleDelay, ms.reassertLEDs)
	ms.reassertTimer = time.AfterFunc(ms.settleDelay+ms.reassertDelay, ms.reassertLEDs)
	publisher := ms.publisher
	snapshot := make([]models.MIDIDevice, len(devices))
	copy(snapshot, devices)
	ms.mu.Unlock()

	log.Printf("MIDI devices connected: %d", len(snapshot))
	if publisher != nil {
		publisher.BroadcastEvent(EventMIDIConnectionStatus, models.MIDIConnectionStatus{Connected: true})
		publisher.BroadcastEvent(EventMIDIDevices, snapshot)
	}
}

// HandleDevicesDisconnected clears connectivity and notifies observers.
// Desired LED state is kept for the next reconnect.
func (ms *MIDIService) HandleDevicesDisconnected() {
	ms.mu.Lock()
	ms.connected = false
	ms.devices = nil
	ms.stopTimersLocked()
	publisher := ms.publisher
	ms.mu.Unlock()

	log.Println("MIDI devices disconnected")
	if publisher != nil {
		publisher.BroadcastEvent(EventMIDIConnectionStatus, models.MIDIConnectionStatus{Connected: false})
		publisher.BroadcastEvent(EventMIDIDevices, []models.MIDIDevice{})
	}
}

// HandleMessage relays one raw MIDI input event to observers.
func (ms *MIDIService) HandleMessage(msg models.MIDIMessage) {
	ms.mu.Lock()
	publisher := ms.publisher
	ms.mu.Unlock()

	if publisher != nil {
		publisher.BroadcastEvent(EventMIDIMessage, msg)
	}
}

// SetLED records the desired state for one pad LED and writes it out when a
// device is connected.
func (ms *MIDIService) SetLED(note byte, on bool) {
	ms.mu.Lock()
	ms.leds[note] = on
	connected := ms.connected
	writer := ms.writer
	ms.mu.Unlock()

	if connected && writer != nil {
		if err := writer.WriteLED(note, on); err != nil {
			log.Printf("Failed to write LED %d: %v", note, err)
		}
	}
}

// SetAllLEDs sets every known pad LED at once.
func (ms *MIDIService) SetAllLEDs(on bool) {
	ms.mu.Lock()
	for note := range ms.leds {
		ms.leds[note] = on
	}
	states := ms.ledSnapshotLocked()
	connected := ms.connected
	writer := ms.writer
	ms.mu.Unlock()

	if !connected || writer == nil {
		return
	}
	for _, s := range states {
		if err := writer.WriteLED(s.note, s.on); err != nil {
			log.Printf("Failed to write LED %d: %v", s.note, err)
		}
	}
}

// Close stops any pending reassert timers.
func (ms *MIDIService) Close() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.stopTimersLocked()
}

type ledState struct {
	note byte
	on   bool
}

func (ms *MIDIService) ledSnapshotLocked() []ledState {
	out := make([]ledState, 0, len(ms.leds))
	for note, on := range ms.leds {
		out = append(out, ledState{note: note, on: on})
	}
	return out
}

func (ms *MIDIService) reassertLEDs() {
	ms.mu.Lock()
	states := ms.ledSnapshotLocked()
	connected := ms.connected
	writer := ms.writer
	ms.mu.Unlock()

	if !connected || writer == nil {
		return
	}
	log.Printf("Re-asserting %d LED states after device reconnect", len(states))
	for _, s := range states {
		if err := writer.WriteLED(s.note, s.on); err != nil {
			log.Printf("Failed to re-assert LED %d: %v", s.note, err)
		}
	}
}

func (ms *MIDIService) stopTimersLocked() {
	if ms.settleTimer != nil {
		ms.settleTimer.Stop()
		ms.settleTimer = nil
	}
	if ms.reassertTimer != nil {
		ms.reassertTimer.Stop()
		ms.reassertTimer = nil
	}
}
