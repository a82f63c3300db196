package pathogen

import (
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOutbreakStartsActiveWithSeededInfected(t *testing.T) {
	o := NewOutbreak(uuid.New(), "A1", "t1", 5, 10)

	assert.True(t, o.Active)
	assert.Equal(t, 10.0, o.CurrentInfected)
	assert.Equal(t, 10.0, o.TotalInfected)
	assert.Equal(t, SeverityMinor, o.Severity)
}

func TestUpdateOnInactiveOutbreakIsNoop(t *testing.T) {
	o := NewOutbreak(uuid.New(), "A1", "t1", 0, 10)
	o.Active = false
	before := *o

	r := rand.New(rand.NewSource(1))
	p := New("flu", KindVirus, "A1", 0, r)
	o.Update(p, 1000, 0)

	assert.Equal(t, before, *o)
}

func TestUpdateGrowsInfectionUnderHighTransmissibility(t *testing.T) {
	o := NewOutbreak(uuid.New(), "A1", "t1", 0, 50)
	p := &Pathogen{Virulence: 0.1, Transmissibility: 1.0, Latency: 1.0}

	o.Update(p, 10_000, 0)

	assert.Greater(t, o.TotalInfected, 50.0)
	assert.Greater(t, o.PeakInfected, 0.0)
}

func TestUpdateNewInfectionsCappedAtTenPercentOfSusceptible(t *testing.T) {
	o := NewOutbreak(uuid.New(), "A1", "t1", 0, 1)
	p := &Pathogen{Virulence: 0.01, Transmissibility: 1.0, Latency: 1.0}

	o.Update(p, 100, 0)

	assert.LessOrEqual(t, o.TotalInfected, 1+10.0+1e-6)
}

func TestUpdateEscalatesSeverityAsInfectionRateRises(t *testing.T) {
	o := NewOutbreak(uuid.New(), "A1", "t1", 0, 40)
	p := &Pathogen{Virulence: 0.3, Transmissibility: 1.0, Latency: 1.0}

	for i := 0; i < 20 && o.Active; i++ {
		o.Update(p, 100, 0)
	}

	require.NotEqual(t, SeverityMinor, o.Severity)
}

func TestUpdateDeactivatesWhenInfectionBurnsOut(t *testing.T) {
	o := NewOutbreak(uuid.New(), "A1", "t1", 0, 1)
	p := &Pathogen{Virulence: 1.0, Transmissibility: 0, Latency: 0}

	for i := 0; i < 30 && o.Active; i++ {
		o.Update(p, 1000, 0)
	}

	assert.False(t, o.Active)
	assert.Equal(t, 0.0, o.CurrentInfected)
}

func TestDiseasePressureZeroWhenInactiveOrNoPopulation(t *testing.T) {
	o := NewOutbreak(uuid.New(), "A1", "t1", 0, 10)
	o.Active = false
	assert.Equal(t, 0.0, o.DiseasePressure(100))

	o.Active = true
	assert.Equal(t, 0.0, o.DiseasePressure(0))
}

func TestDiseasePressureReflectsDeathShare(t *testing.T) {
	o := NewOutbreak(uuid.New(), "A1", "t1", 0, 10)
	o.TotalDeaths = 5
	assert.InDelta(t, 0.05, o.DiseasePressure(100), 1e-9)
}
