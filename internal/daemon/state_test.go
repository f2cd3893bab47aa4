package daemon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateBumpGenerationIncrements(t *testing.T) {
	s := NewState()
	assert.EqualValues(t, 0, s.Generation())
	assert.EqualValues(t, 1, s.BumpGeneration())
	assert.EqualValues(t, 2, s.BumpGeneration())
	assert.EqualValues(t, 2, s.Generation())
}

func TestStateTouchResetsIdle(t *testing.T) {
	s := NewState()
	time.Sleep(5 * time.Millisecond)
	before := s.IdleFor()
	s.Touch()
	after := s.IdleFor()
	assert.Less(t, after, before)
}

func TestStateRootsLoadedIsACopy(t *testing.T) {
	s := NewState()
	roots := []string{"/p"}
	s.SetRootsLoaded(roots)
	roots[0] = "/mutated"
	assert.Equal(t, []string{"/p"}, s.RootsLoaded())
}

func TestStateActiveWatchers(t *testing.T) {
	s := NewState()
	s.SetActiveWatchers(3)
	assert.Equal(t, 3, s.ActiveWatchers())
}
