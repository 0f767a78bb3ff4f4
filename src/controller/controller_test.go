package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/interfaces/mock"
	"fx-dashboard/src/logger"
	"fx-dashboard/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var pairs = []string{"EUR/USD", "USD/JPY", "GBP/USD"}

// -----------------------------------------------------------------------------
// helpers
// -----------------------------------------------------------------------------

type frameRecorder struct {
	mu     sync.Mutex
	frames []models.MDashboardFrame
}

func (r *frameRecorder) Render(frame models.MDashboardFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
}

func (r *frameRecorder) Frames() []models.MDashboardFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.MDashboardFrame(nil), r.frames...)
}

func (r *frameRecorder) Last() models.MDashboardFrame {
	frames := r.Frames()
	return frames[len(frames)-1]
}

func at(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.UTC)
}

func sample(hour, minute int, value float64) models.MSamplePoint {
	return models.MSamplePoint{TimestampUTC: at(hour, minute), Value: value}
}

func samplePtr(hour, minute int, value float64) *models.MSamplePoint {
	p := sample(hour, minute, value)
	return &p
}

func newController(t *testing.T, gw *mock.MockIGateway, capacity int) (*SyncController, *frameRecorder) {
	t.Helper()
	rec := &frameRecorder{}
	c, err := NewSyncController(gw, rec, Options{
		Instruments:    pairs,
		BufferCapacity: capacity,
		Location:       time.UTC,
	}, logger.NewNopLogger())
	require.NoError(t, err)
	return c, rec
}

func start(t *testing.T, c *SyncController) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errCh
	})
}

// waitSettled blocks until every gateway result has been applied by the loop.
func waitSettled(t *testing.T, c *SyncController) models.MDashboardStatus {
	t.Helper()
	var status models.MDashboardStatus
	require.Eventually(t, func() bool {
		st, err := c.Status(context.Background())
		if err != nil {
			return false
		}
		status = st
		return st.InFlight == 0 && st.State != StateLoading
	}, 2*time.Second, 5*time.Millisecond)
	return status
}

func values(points []models.MSamplePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

func waitClosed(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("gateway call never started")
	}
}

func assertNeverRendered(t *testing.T, rec *frameRecorder, value float64) {
	t.Helper()
	for _, f := range rec.Frames() {
		for _, p := range f.Points {
			assert.NotEqual(t, value, p.Value, "stale value rendered in %+v", f)
		}
	}
}

func waitShowing(t *testing.T, c *SyncController, instrument string, inFlight int) {
	t.Helper()
	require.Eventually(t, func() bool {
		st, err := c.Status(context.Background())
		return err == nil && st.Instrument == instrument && st.State == StateReady && st.InFlight == inFlight
	}, 2*time.Second, 5*time.Millisecond)
}

// -----------------------------------------------------------------------------
// tests
// -----------------------------------------------------------------------------

func TestNewSyncControllerRequiresInstruments(t *testing.T) {
	_, err := NewSyncController(nil, nil, Options{}, logger.NewNopLogger())
	assert.Error(t, err)
}

func TestActivateRoundTrip(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	gomock.InOrder(
		gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).
			Return([]models.MSamplePoint{sample(10, 0, 1.10)}, nil),
		gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").
			Return(samplePtr(10, 1, 1.11), nil),
	)

	c, rec := newController(t, gw, 600)
	start(t, c)

	st := waitSettled(t, c)
	assert.Equal(t, "EUR/USD", st.Instrument)
	assert.Equal(t, StateReady, st.State)
	assert.Nil(t, st.Filter)
	require.Len(t, st.Points, 2)
	assert.Equal(t, at(10, 0), st.Points[0].TimestampUTC)
	assert.Equal(t, at(10, 1), st.Points[1].TimestampUTC)

	last := rec.Last()
	assert.Equal(t, models.FrameAppend, last.Type)
	assert.Equal(t, 1, last.Appended)
	assert.Equal(t, []models.MLabeledPoint{{Label: "10:00", Value: 1.10}, {Label: "10:01", Value: 1.11}}, last.Points)
	assert.Empty(t, last.Notice)
}

func TestBufferStaysBounded(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	history := make([]models.MSamplePoint, 600)
	for i := range history {
		history[i] = models.MSamplePoint{TimestampUTC: at(0, 0).Add(time.Duration(i) * time.Minute), Value: float64(i)}
	}

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(history, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(samplePtr(12, 0, 600), nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(samplePtr(12, 1, 601), nil)

	c, _ := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	require.NoError(t, c.PeriodicTick())
	st := waitSettled(t, c)

	require.Len(t, st.Points, 600)
	assert.Equal(t, 2.0, st.Points[0].Value)
	assert.Equal(t, 601.0, st.Points[599].Value)
}

func TestStaleResponsesAreDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	releaseEUR := make(chan struct{})
	releaseJPY := make(chan struct{})

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).
		DoAndReturn(func(ctx context.Context, _ string, _ *models.MDateRange) ([]models.MSamplePoint, error) {
			<-releaseEUR
			return []models.MSamplePoint{sample(9, 0, 9.99)}, nil
		})
	gw.EXPECT().FetchHistory(gomock.Any(), "USD/JPY", gomock.Nil()).
		DoAndReturn(func(ctx context.Context, _ string, _ *models.MDateRange) ([]models.MSamplePoint, error) {
			<-releaseJPY
			return []models.MSamplePoint{sample(9, 0, 150.5)}, nil
		})
	gw.EXPECT().FetchHistory(gomock.Any(), "GBP/USD", gomock.Nil()).
		Return([]models.MSamplePoint{sample(10, 0, 1.27)}, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "GBP/USD").Return(nil, nil)

	c, rec := newController(t, gw, 600)
	start(t, c)

	require.NoError(t, c.SwitchInstrument(DirectionNext))
	require.NoError(t, c.SwitchInstrument(DirectionNext))

	require.Eventually(t, func() bool {
		st, err := c.Status(context.Background())
		return err == nil && st.Instrument == "GBP/USD" && st.State == StateReady
	}, 2*time.Second, 5*time.Millisecond)

	close(releaseJPY)
	close(releaseEUR)

	st := waitSettled(t, c)
	assert.Equal(t, "GBP/USD", st.Instrument)
	assert.Equal(t, uint64(3), st.Generation)
	assert.Equal(t, []float64{1.27}, values(st.Points))

	for _, f := range rec.Frames() {
		if len(f.Points) > 0 {
			assert.Equal(t, "GBP/USD", f.Instrument, "stale frame rendered: %+v", f)
		}
	}
}

func TestDeleteRangeWithoutBoundsMakesNoCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	c, rec := newController(t, gw, 600)

	err := c.DeleteRange("EUR/USD", models.MDateRange{})
	assert.ErrorIs(t, err, helpers.ErrInvalidRange)
	assert.Empty(t, rec.Frames())
}

func TestDeleteRangeRequeriesEvenWhenDeleteFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	from := at(8, 0)
	rng := models.MDateRange{Start: &from}

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).
		Return([]models.MSamplePoint{sample(7, 0, 1.0), sample(8, 30, 1.1)}, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(nil, nil)
	gomock.InOrder(
		gw.EXPECT().DeleteRange(gomock.Any(), "EUR/USD", rng).
			Return(helpers.NewGatewayUnavailable("delete history EUR/USD", context.DeadlineExceeded)),
		gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Eq(&rng)).
			Return([]models.MSamplePoint{sample(8, 30, 1.1)}, nil),
	)

	c, rec := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	require.NoError(t, c.DeleteRange("EUR/USD", rng))

	require.Eventually(t, func() bool {
		st, err := c.Status(context.Background())
		return err == nil && st.Generation == 2 && st.InFlight == 0 && st.State == StateReady
	}, 2*time.Second, 5*time.Millisecond)

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	require.NotNil(t, st.Filter)
	assert.Equal(t, []float64{1.1}, values(st.Points))
	assert.True(t, rec.Last().Filtered)
}

func TestFreshSampleArrivingAfterSwitchIsDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	entered := make(chan struct{})
	release := make(chan struct{})

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).
		Return([]models.MSamplePoint{sample(9, 0, 1.10)}, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").
		DoAndReturn(func(ctx context.Context, _ string) (*models.MSamplePoint, error) {
			close(entered)
			<-release
			return samplePtr(9, 1, 9.99), nil
		})
	gw.EXPECT().FetchHistory(gomock.Any(), "USD/JPY", gomock.Nil()).
		Return([]models.MSamplePoint{sample(10, 0, 150)}, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "USD/JPY").Return(nil, nil)

	c, rec := newController(t, gw, 600)
	start(t, c)
	waitClosed(t, entered)

	require.NoError(t, c.SwitchInstrument(DirectionNext))
	waitShowing(t, c, "USD/JPY", 1)

	close(release)

	st := waitSettled(t, c)
	assert.Equal(t, "USD/JPY", st.Instrument)
	assert.Equal(t, uint64(2), st.Generation)
	assert.Equal(t, []float64{150}, values(st.Points))
	assertNeverRendered(t, rec, 9.99)
}

func TestFilteredHistoryArrivingAfterSwitchIsDropped(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	from := at(9, 0)
	rng := models.MDateRange{Start: &from}
	entered := make(chan struct{})
	release := make(chan struct{})

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(nil, nil)
	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Eq(&rng)).
		DoAndReturn(func(ctx context.Context, _ string, _ *models.MDateRange) ([]models.MSamplePoint, error) {
			close(entered)
			<-release
			return []models.MSamplePoint{sample(9, 30, 9.99)}, nil
		})
	gw.EXPECT().FetchHistory(gomock.Any(), "USD/JPY", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "USD/JPY").Return(samplePtr(10, 0, 150), nil)

	c, rec := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	require.NoError(t, c.ApplyFilter(rng))
	waitClosed(t, entered)

	require.NoError(t, c.SwitchInstrument(DirectionNext))
	waitShowing(t, c, "USD/JPY", 1)

	close(release)

	st := waitSettled(t, c)
	assert.Equal(t, "USD/JPY", st.Instrument)
	assert.Equal(t, uint64(3), st.Generation)
	assert.Nil(t, st.Filter)
	assert.Equal(t, []float64{150}, values(st.Points))
	assert.False(t, rec.Last().Filtered)
	assertNeverRendered(t, rec, 9.99)
}

func TestDeleteCompletingAfterSwitchDoesNotRequery(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	from := at(8, 0)
	rng := models.MDateRange{Start: &from}
	entered := make(chan struct{})
	release := make(chan struct{})

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(nil, nil)
	gw.EXPECT().DeleteRange(gomock.Any(), "EUR/USD", rng).
		DoAndReturn(func(ctx context.Context, _ string, _ models.MDateRange) error {
			close(entered)
			<-release
			return nil
		})
	gw.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), gomock.Eq(&rng)).Times(0)
	gw.EXPECT().FetchHistory(gomock.Any(), "USD/JPY", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "USD/JPY").Return(samplePtr(10, 0, 150), nil)

	c, rec := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	require.NoError(t, c.DeleteRange("EUR/USD", rng))
	waitClosed(t, entered)

	require.NoError(t, c.SwitchInstrument(DirectionNext))
	waitShowing(t, c, "USD/JPY", 1)

	close(release)

	st := waitSettled(t, c)
	assert.Equal(t, "USD/JPY", st.Instrument)
	assert.Equal(t, uint64(2), st.Generation)
	assert.Nil(t, st.Filter)
	assert.Equal(t, []float64{150}, values(st.Points))
	assert.False(t, rec.Last().Filtered)
}

func TestDeleteOfOtherInstrumentDoesNotRequery(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	from := at(8, 0)
	rng := models.MDateRange{Start: &from}

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(samplePtr(10, 0, 1.1), nil)
	gw.EXPECT().DeleteRange(gomock.Any(), "GBP/USD", rng).Return(nil)
	gw.EXPECT().FetchHistory(gomock.Any(), gomock.Any(), gomock.Eq(&rng)).Times(0)

	c, _ := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	require.NoError(t, c.DeleteRange("GBP/USD", rng))

	st := waitSettled(t, c)
	assert.Equal(t, "EUR/USD", st.Instrument)
	assert.Equal(t, uint64(1), st.Generation)
	assert.Nil(t, st.Filter)
	assert.Equal(t, []float64{1.1}, values(st.Points))
}

func TestApplyFilterThenSwitchShowsDefaultWindow(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	from, to := at(9, 0), at(9, 30)
	rng := models.MDateRange{Start: &from, End: &to}

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(nil, nil)
	// filtered view has no fresh sample
	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Eq(&rng)).
		Return([]models.MSamplePoint{sample(9, 10, 1.09)}, nil)
	gw.EXPECT().FetchHistory(gomock.Any(), "USD/JPY", gomock.Nil()).
		Return([]models.MSamplePoint{sample(10, 0, 151.0)}, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "USD/JPY").Return(samplePtr(10, 1, 151.1), nil)

	c, rec := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	require.NoError(t, c.ApplyFilter(rng))
	st := waitSettled(t, c)
	require.NotNil(t, st.Filter)
	assert.Equal(t, []float64{1.09}, values(st.Points))
	assert.True(t, rec.Last().Filtered)

	require.NoError(t, c.SwitchInstrument(DirectionNext))
	st = waitSettled(t, c)
	assert.Equal(t, "USD/JPY", st.Instrument)
	assert.Nil(t, st.Filter)
	assert.Equal(t, []float64{151.0, 151.1}, values(st.Points))
	assert.False(t, rec.Last().Filtered)
}

func TestClearFilterReactivates(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	from := at(9, 0)
	rng := models.MDateRange{Start: &from}

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(nil, nil).Times(2)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(samplePtr(10, 0, 1.1), nil).Times(2)
	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Eq(&rng)).Return(nil, nil)

	c, _ := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	require.NoError(t, c.ApplyFilter(rng))
	waitSettled(t, c)

	require.NoError(t, c.ClearFilter())
	st := waitSettled(t, c)
	assert.Nil(t, st.Filter)
	assert.Equal(t, uint64(3), st.Generation)
	assert.Equal(t, []float64{1.1}, values(st.Points))
}

func TestPeriodicTickAfterSwitchUsesFireTimeInstrument(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	releaseTick := make(chan struct{})

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(nil, nil)
	gomock.InOrder(
		gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(nil, nil),
		gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").
			DoAndReturn(func(ctx context.Context, _ string) (*models.MSamplePoint, error) {
				<-releaseTick
				return samplePtr(10, 5, 1.12), nil
			}),
	)
	gw.EXPECT().FetchHistory(gomock.Any(), "USD/JPY", gomock.Nil()).Return(nil, nil)
	gomock.InOrder(
		gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "USD/JPY").Return(nil, nil),
		gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "USD/JPY").Return(samplePtr(10, 6, 152.0), nil),
	)

	c, rec := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	// tick on EUR/USD stays pending across the switch
	require.NoError(t, c.PeriodicTick())
	require.NoError(t, c.SwitchInstrument(DirectionNext))
	require.Eventually(t, func() bool {
		st, err := c.Status(context.Background())
		return err == nil && st.Instrument == "USD/JPY" && st.InFlight == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, c.PeriodicTick())
	close(releaseTick)

	st := waitSettled(t, c)
	assert.Equal(t, "USD/JPY", st.Instrument)
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, []float64{152.0}, values(st.Points))

	for _, f := range rec.Frames() {
		for _, p := range f.Points {
			assert.NotEqual(t, 1.12, p.Value)
		}
	}
}

func TestTickDuringLoadIsHeldBehindHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	releaseHistory := make(chan struct{})

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).
		DoAndReturn(func(ctx context.Context, _ string, _ *models.MDateRange) ([]models.MSamplePoint, error) {
			<-releaseHistory
			return []models.MSamplePoint{sample(10, 0, 1.10)}, nil
		})
	gomock.InOrder(
		gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(samplePtr(10, 1, 1.11), nil),
		gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(samplePtr(10, 2, 1.12), nil),
	)

	c, _ := newController(t, gw, 600)
	start(t, c)

	require.NoError(t, c.PeriodicTick())
	require.Eventually(t, func() bool {
		st, err := c.Status(context.Background())
		return err == nil && st.InFlight == 1 && st.State == StateLoading
	}, 2*time.Second, 5*time.Millisecond)

	close(releaseHistory)

	st := waitSettled(t, c)
	assert.Equal(t, []float64{1.10, 1.11, 1.12}, values(st.Points))
}

func TestHistoryFailureStillSamples(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).
		Return(nil, helpers.NewGatewayUnavailable("fetch history EUR/USD", context.DeadlineExceeded))
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(samplePtr(10, 1, 1.11), nil)

	c, _ := newController(t, gw, 600)
	start(t, c)

	st := waitSettled(t, c)
	assert.Equal(t, StateReady, st.State)
	assert.Equal(t, []float64{1.11}, values(st.Points))
}

func TestEmptyInstrumentShowsNotice(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return([]models.MSamplePoint{}, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(nil, nil)

	c, rec := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	last := rec.Last()
	assert.Empty(t, last.Points)
	assert.Equal(t, "No data for EUR/USD", last.Notice)
	assert.Equal(t, StateReady, last.State)
}

func TestActivateUnknownInstrument(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	c, _ := newController(t, gw, 600)
	assert.ErrorIs(t, c.Activate("AUD/USD"), helpers.ErrUnknownInstrument)
	assert.ErrorIs(t, c.DeleteRange("AUD/USD", models.MDateRange{Start: new(time.Time)}), helpers.ErrUnknownInstrument)
}

func TestActivateSelectsInstrument(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)

	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(nil, nil)
	gw.EXPECT().FetchHistory(gomock.Any(), "GBP/USD", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "GBP/USD").Return(samplePtr(11, 0, 1.27), nil)

	c, _ := newController(t, gw, 600)
	start(t, c)
	waitSettled(t, c)

	require.NoError(t, c.Activate("GBP/USD"))
	st := waitSettled(t, c)
	assert.Equal(t, "GBP/USD", st.Instrument)
	assert.Equal(t, []float64{1.27}, values(st.Points))
}

func TestRunLifecycle(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := mock.NewMockIGateway(ctrl)
	gw.EXPECT().FetchHistory(gomock.Any(), "EUR/USD", gomock.Nil()).Return(nil, nil)
	gw.EXPECT().FetchAndPersistFreshSample(gomock.Any(), "EUR/USD").Return(nil, nil)

	c, _ := newController(t, gw, 600)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()

	waitSettled(t, c)
	assert.True(t, c.Running())
	assert.ErrorIs(t, c.Run(ctx), ErrAlreadyRunning)

	cancel()
	require.NoError(t, <-errCh)
	assert.False(t, c.Running())

	_, err := c.Status(context.Background())
	assert.ErrorIs(t, err, ErrControllerStopped)
	assert.ErrorIs(t, c.PeriodicTick(), ErrControllerStopped)
}
