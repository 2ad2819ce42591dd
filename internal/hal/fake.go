package hal

import "fmt"

// FakeADC is a test double that returns scripted conversion results
// per channel. Each Read on a channel consumes the next sample; when a
// channel's samples are exhausted, the last one repeats.
type FakeADC struct {
	// Samples contains the scripted raw values for each channel.
	Samples map[int][]int

	// index tracks the current position per channel.
	index map[int]int

	// ReadError, if set, will be returned by Read.
	ReadError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeADC creates a FakeADC with the given per-channel samples.
func NewFakeADC(samples map[int][]int) *FakeADC {
	return &FakeADC{
		Samples: samples,
		index:   make(map[int]int),
	}
}

// Read returns the next scripted sample for the channel.
func (f *FakeADC) Read(channel int) (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}

	samples, ok := f.Samples[channel]
	if !ok || len(samples) == 0 {
		return 0, fmt.Errorf("no samples configured for channel %d", channel)
	}

	i := f.index[channel]
	sample := samples[i]
	if i < len(samples)-1 {
		f.index[channel] = i + 1
	}

	return sample, nil
}

// Close marks the ADC as closed.
func (f *FakeADC) Close() error {
	f.Closed = true
	return nil
}

// Reset rewinds all channels to their first sample.
func (f *FakeADC) Reset() {
	f.index = make(map[int]int)
	f.Closed = false
}

// PinWrite records a single digital output write.
type PinWrite struct {
	Pin  int
	High bool
}

// FakePins records digital output writes for test assertions.
type FakePins struct {
	// Writes contains every write in order.
	Writes []PinWrite

	// Levels holds the most recent level written to each pin.
	Levels map[int]bool

	// SetError, if set, will be returned by Set.
	SetError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakePins creates a FakePins for testing.
func NewFakePins() *FakePins {
	return &FakePins{Levels: make(map[int]bool)}
}

// Set records the write.
func (f *FakePins) Set(pin int, high bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Writes = append(f.Writes, PinWrite{Pin: pin, High: high})
	f.Levels[pin] = high
	return nil
}

// Close marks the pins as closed.
func (f *FakePins) Close() error {
	f.Closed = true
	return nil
}

// FakeClock is a manually advanced millisecond counter.
type FakeClock struct {
	ms uint32
}

// Now returns the current counter value. Assign it where a Clock is needed.
func (c *FakeClock) Now() uint32 {
	return c.ms
}

// Advance moves the counter forward.
func (c *FakeClock) Advance(ms uint32) {
	c.ms += ms
}

// Set jumps the counter to an absolute value. Useful for wrap tests.
func (c *FakeClock) Set(ms uint32) {
	c.ms = ms
}
