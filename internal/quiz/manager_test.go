package quiz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/quizwhiz/internal/curriculum"
)

func TestManagerStartGet(t *testing.T) {
	m := NewManager(Deps{Acquirer: &fakeAcquirer{}}, Config{Duration: time.Hour})
	defer m.Close(context.Background())

	s, err := m.Start(curriculum.Mathematics, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = m.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = m.Start(curriculum.Mathematics, 42)
	assert.Error(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestManagerRemoveFinalizes(t *testing.T) {
	reports := &fakeReports{}
	m := NewManager(Deps{Acquirer: &fakeAcquirer{}, Reports: reports}, Config{Duration: time.Hour})

	s, err := m.Start(curriculum.Mathematics, 3)
	require.NoError(t, err)

	m.Remove(context.Background(), s.ID())
	assert.Equal(t, 0, m.Len())
	assert.ErrorIs(t, s.Err(), ErrSessionFinished)
	assert.Equal(t, 1, reports.count())
}

func TestManagerPrune(t *testing.T) {
	m := NewManager(Deps{Acquirer: &fakeAcquirer{}}, Config{Duration: time.Hour, Linger: time.Minute})
	defer m.Close(context.Background())

	live, err := m.Start(curriculum.Mathematics, 3)
	require.NoError(t, err)
	done, err := m.Start(curriculum.Mathematics, 3)
	require.NoError(t, err)
	done.FinalizeReport(context.Background())

	assert.Zero(t, m.Prune(time.Now()))
	assert.Equal(t, 2, m.Len())

	assert.Equal(t, 1, m.Prune(time.Now().Add(2*time.Minute)))
	_, err = m.Get(done.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(live.ID())
	assert.NoError(t, err)
}

func TestManagerRunClosesOnCancel(t *testing.T) {
	m := NewManager(Deps{Acquirer: &fakeAcquirer{}}, Config{Duration: time.Hour, PruneInterval: 10 * time.Millisecond})
	s, err := m.Start(curriculum.Mathematics, 3)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- m.Run(ctx) }()
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
	assert.True(t, Ended(s.Err()))
}
