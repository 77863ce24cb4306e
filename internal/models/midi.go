package models

// MIDIDevice describes one attached MIDI device.
type MIDIDevice struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsInput  bool   `json:"isInput"`
	IsOutput bool   `json:"isOutput"`
}

// MIDIMessage is one raw MIDI event relayed to observers.
type MIDIMessage struct {
	Status    byte  `json:"status"`
	Data1     byte  `json:"data1"`
	Data2     byte  `json:"data2"`
	Timestamp int64 `json:"timestamp"`
}

// MIDIConnectionStatus is pushed whenever device connectivity changes.
type MIDIConnectionStatus struct {
	Connected bool `json:"connected"`
}

// SetLEDInput is the client request to light or clear one pad LED.
type SetLEDInput struct {
	Note byte `json:"note"`
	On   bool `json:"on"`
}

// SetAllLEDsInput is the client request to set every pad LED at once.
type SetAllLEDsInput struct {
	On bool `json:"on"`
}
