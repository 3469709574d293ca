package geocode

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"news-atlas/internal/retry"
)

type fakeProvider struct {
	mu      sync.Mutex
	answers map[string]Coordinates
	errs    map[string][]error
	calls   []string
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{answers: map[string]Coordinates{}, errs: map[string][]error{}}
}

func (f *fakeProvider) Geocode(_ context.Context, query string) (Coordinates, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, query)
	if queued := f.errs[query]; len(queued) > 0 {
		f.errs[query] = queued[1:]
		return Coordinates{}, queued[0]
	}
	if c, ok := f.answers[query]; ok {
		return c, nil
	}
	return Coordinates{}, ErrNotFound
}

func (f *fakeProvider) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func testPolicy() retry.Policy {
	return retry.Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}
}

var paris = Coordinates{Lat: 48.8566, Lng: 2.3522}

func TestResolveCachesSuccess(t *testing.T) {
	primary := newFakeProvider()
	primary.answers["Paris, France"] = paris
	r := NewResolver(primary, nil, nil, testPolicy())

	first := r.Resolve(context.Background(), "Paris, France")
	second := r.Resolve(context.Background(), "  paris,   FRANCE ")

	assert.Equal(t, paris, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, primary.callCount())
}

func TestResolveCachesFailure(t *testing.T) {
	primary := newFakeProvider()
	secondary := newFakeProvider()
	c := NewMemoryCache()
	r := NewResolver(primary, secondary, c, testPolicy())

	assert.True(t, r.Resolve(context.Background(), "Atlantis").IsZero())
	callsAfterFirst := primary.callCount() + secondary.callCount()
	assert.True(t, r.Resolve(context.Background(), "Atlantis").IsZero())
	assert.Equal(t, callsAfterFirst, primary.callCount()+secondary.callCount())

	cached, ok := c.Get(context.Background(), "atlantis")
	assert.True(t, ok)
	assert.True(t, cached.IsZero())
}

func TestResolveRetriesTransientThenSucceeds(t *testing.T) {
	primary := newFakeProvider()
	primary.errs["Paris, France"] = []error{ErrTransient, ErrTransient}
	primary.answers["Paris, France"] = paris
	r := NewResolver(primary, nil, nil, testPolicy())

	assert.Equal(t, paris, r.Resolve(context.Background(), "Paris, France"))
	assert.Equal(t, 3, primary.callCount())
}

func TestResolveStopsOnNonTransientAndFallsBack(t *testing.T) {
	primary := newFakeProvider()
	secondary := newFakeProvider()
	secondary.answers["Reichstag, Berlin, Germany"] = Coordinates{Lat: 52.5186, Lng: 13.3762}
	r := NewResolver(primary, secondary, nil, testPolicy())

	got := r.Resolve(context.Background(), "Reichstag, Berlin, Germany")
	assert.Equal(t, Coordinates{Lat: 52.5186, Lng: 13.3762}, got)
	assert.Equal(t, 1, primary.callCount(), "not-found must not be retried")
	assert.Equal(t, 1, secondary.callCount())
}

func TestResolveSimplifiedVariantThroughSecondary(t *testing.T) {
	primary := newFakeProvider()
	secondary := newFakeProvider()
	secondary.answers["Obscure Hall, Springfield"] = Coordinates{Lat: 39.78, Lng: -89.65}
	r := NewResolver(primary, secondary, nil, testPolicy())

	got := r.Resolve(context.Background(), "Obscure Hall, Springfield, Illinois, USA")
	assert.Equal(t, Coordinates{Lat: 39.78, Lng: -89.65}, got)
	assert.Equal(t, []string{"Obscure Hall, Springfield, Illinois, USA", "Obscure Hall, Springfield"}, secondary.calls)
}

func TestResolveUnknownSkipsNetwork(t *testing.T) {
	primary := newFakeProvider()
	r := NewResolver(primary, nil, nil, testPolicy())

	assert.True(t, r.Resolve(context.Background(), "Unknown").IsZero())
	assert.True(t, r.Resolve(context.Background(), "   ").IsZero())
	assert.Equal(t, 0, primary.callCount())
}

func TestResolveDoesNotCacheCancelledLookups(t *testing.T) {
	primary := newFakeProvider()
	primary.errs["Paris, France"] = []error{ErrTransient}
	c := NewMemoryCache()
	r := NewResolver(primary, nil, c, retry.Policy{MaxAttempts: 3, BaseDelay: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.True(t, r.Resolve(ctx, "Paris, France").IsZero())
	assert.Equal(t, 0, c.Len())
}

func TestSimplify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Spanish Parliament, Madrid, Spain", "Spanish Parliament, Madrid"},
		{"A, B, C, Country", "A, B"},
		{"Madrid, Spain", "Madrid"},
		{"Tokyo", "Tokyo"},
		{" , Lyon , France", "Lyon"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Simplify(tt.in))
		})
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(ErrTransient))
	assert.True(t, IsTransient(context.DeadlineExceeded))
	assert.False(t, IsTransient(ErrNotFound))
	assert.False(t, IsTransient(context.Canceled))
	assert.False(t, IsTransient(errors.New("bad request")))
}
