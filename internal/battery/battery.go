package battery

import (
	"context"
	"errors"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Status is the battery state shown in the timeline footer.
type Status struct {
	// Percent is the battery level in 0–100%.
	Percent int `json:"percent"`
	// VoltageMv is the battery voltage in millivolts, 0 if unknown.
	VoltageMv int `json:"voltage_mv"`
}

// Reader obtains battery information.
type Reader interface {
	Read(ctx context.Context) (Status, error)
}

// PiSugar3 registers.
const (
	regVoltageHigh = 0x22
	regVoltageLow  = 0x23
	regPercent     = 0x2A

	defaultAddr = 0x57
)

type mockReader struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewMockReader returns a Reader producing random percentages, for
// development machines without the battery board.
func NewMockReader() Reader {
	return &mockReader{rnd: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (m *mockReader) Read(_ context.Context) (Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{Percent: 20 + m.rnd.Intn(81)}, nil
}

type i2cReader struct {
	busName string
	addr    uint16
}

// NewI2CReader returns a Reader talking to a PiSugar3-style controller.
// busName "" selects the default bus. Nothing is opened until Read.
func NewI2CReader(busName string, addr uint16) Reader {
	return &i2cReader{busName: busName, addr: addr}
}

func (r *i2cReader) Read(_ context.Context) (Status, error) {
	if runtime.GOOS != "linux" {
		return Status{}, errors.New("battery: i2c reader unavailable on this platform")
	}
	if _, err := host.Init(); err != nil {
		return Status{}, err
	}

	bus, err := i2creg.Open(r.busName)
	if err != nil {
		return Status{}, err
	}
	defer bus.Close()

	dev := &i2c.Dev{Bus: bus, Addr: r.addr}
	readReg := func(reg byte) (byte, error) {
		buf := []byte{0}
		if err := dev.Tx([]byte{reg}, buf); err != nil {
			return 0, err
		}
		return buf[0], nil
	}

	high, err := readReg(regVoltageHigh)
	if err != nil {
		return Status{}, err
	}
	low, err := readReg(regVoltageLow)
	if err != nil {
		return Status{}, err
	}
	pct, err := readReg(regPercent)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Percent:   min(int(pct), 100),
		VoltageMv: int(uint16(high)<<8 | uint16(low)),
	}, nil
}

// DefaultReader tries the I2C controller and falls back to the mock when it
// cannot be read.
func DefaultReader() Reader {
	if runtime.GOOS != "linux" {
		return NewMockReader()
	}
	r := NewI2CReader("", defaultAddr)
	if _, err := r.Read(context.Background()); err != nil {
		return NewMockReader()
	}
	return r
}

// Cached wraps a Reader and reuses the last good status for TTL.
type Cached struct {
	reader Reader
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	status    Status
	updatedAt time.Time
	ok        bool
}

func NewCached(r Reader, ttl time.Duration) *Cached {
	return &Cached{reader: r, ttl: ttl, now: time.Now}
}

func (c *Cached) Read(ctx context.Context) (Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ok && c.now().Sub(c.updatedAt) < c.ttl {
		return c.status, nil
	}
	st, err := c.reader.Read(ctx)
	if err != nil {
		return Status{}, err
	}
	c.status, c.updatedAt, c.ok = st, c.now(), true
	return st, nil
}
