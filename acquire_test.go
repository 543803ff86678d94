package pulseox

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSensor plays both collaborator roles like the real probe does,
// returning scripted values depending on the selected channel.
type fakeSensor struct {
	ch      Channel
	strobes []Channel
	red     func() uint16
	ir      func() uint16
}

func (f *fakeSensor) SetChannel(ch Channel) {
	f.ch = ch
	f.strobes = append(f.strobes, ch)
}

func (f *fakeSensor) Sample() uint16 {
	if f.ch == ChannelRed {
		return f.red()
	}
	return f.ir()
}

func constSignal(v uint16) func() uint16 {
	return func() uint16 { return v }
}

func scripted(values ...uint16) func() uint16 {
	i := 0
	return func() uint16 {
		v := values[i%len(values)]
		i++
		return v
	}
}

func stubClock(a *Acquirer) *time.Time {
	at := time.Unix(0, 0)
	a.now = func() time.Time { return at }
	a.sleep = func(d time.Duration) { at = at.Add(d) }
	return &at
}

func TestAcquirerAlternatesChannels(t *testing.T) {
	sensor := &fakeSensor{red: constSignal(111), ir: constSignal(222)}
	a := NewAcquirer(sensor, sensor, 5*time.Millisecond)
	stubClock(a)

	pair, err := a.Tick()
	require.NoError(t, err)

	assert.Equal(t, []Channel{ChannelRed, ChannelIR}, sensor.strobes)
	assert.Equal(t, uint16(111), pair.Red.Value)
	assert.Equal(t, uint16(222), pair.IR.Value)
	assert.Equal(t, ChannelRed, pair.Red.Channel)
	assert.Equal(t, ChannelIR, pair.IR.Channel)
}

func TestAcquirerPairTimestampsClose(t *testing.T) {
	const settle = 5 * time.Millisecond
	sensor := &fakeSensor{red: constSignal(111), ir: constSignal(222)}
	a := NewAcquirer(sensor, sensor, settle)
	stubClock(a)

	pair, err := a.Tick()
	require.NoError(t, err)

	gap := pair.IR.At.Sub(pair.Red.At)
	assert.Greater(t, gap, time.Duration(0))
	assert.LessOrEqual(t, gap, settle, "pair samples must sit within one channel-switch interval")
}

func TestAcquirerCarriesLastValidOnFailure(t *testing.T) {
	sensor := &fakeSensor{
		red: constSignal(300),
		ir:  scripted(200, InvalidSample, 250),
	}
	a := NewAcquirer(sensor, sensor, 5*time.Millisecond)
	stubClock(a)

	pair, err := a.Tick()
	require.NoError(t, err)
	require.Equal(t, uint16(200), pair.IR.Value)

	pair, err = a.Tick()
	assert.ErrorIs(t, err, ErrInvalidSample)
	assert.Equal(t, uint16(200), pair.IR.Value, "a failed read repeats the last valid value")
	assert.Equal(t, uint16(300), pair.Red.Value, "the healthy channel is unaffected")

	pair, err = a.Tick()
	require.NoError(t, err)
	assert.Equal(t, uint16(250), pair.IR.Value)
}

func TestAcquirerInvalidBeforeAnyValid(t *testing.T) {
	sensor := &fakeSensor{
		red: constSignal(InvalidSample),
		ir:  constSignal(InvalidSample),
	}
	a := NewAcquirer(sensor, sensor, 5*time.Millisecond)
	stubClock(a)

	pair, err := a.Tick()
	assert.ErrorIs(t, err, ErrInvalidSample)
	assert.Equal(t, uint16(0), pair.Red.Value)
	assert.Equal(t, uint16(0), pair.IR.Value)
	assert.NotEqual(t, InvalidSample, pair.Red.Value, "the sentinel must never reach the pipeline")
}
