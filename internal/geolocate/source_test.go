package geolocate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingLocator struct {
	calls  atomic.Int32
	coords Coords
	err    error
	delay  time.Duration
}

func (l *countingLocator) Locate(ctx context.Context, _ Options) (Coords, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		select {
		case <-time.After(l.delay):
		case <-ctx.Done():
			return Coords{}, &PositionError{Code: Timeout, Err: ctx.Err()}
		}
	}
	return l.coords, l.err
}

func TestSourceInitialState(t *testing.T) {
	s := NewSource(&countingLocator{}, Options{})
	st := s.State()
	if !st.Loading || st.Coords != nil || st.Err != "" {
		t.Fatalf("initial state = %+v, want loading", st)
	}
}

func TestSourceSuccess(t *testing.T) {
	loc := &countingLocator{coords: Coords{Latitude: 51.5, Longitude: -0.12}}
	s := NewSource(loc, Options{HighAccuracy: true})

	st := s.Acquire(context.Background())
	if st.Loading || st.Err != "" {
		t.Fatalf("state = %+v", st)
	}
	if st.Coords == nil || st.Coords.Latitude != 51.5 || st.Coords.Longitude != -0.12 {
		t.Fatalf("coords = %+v", st.Coords)
	}
}

func TestSourcePermissionDenied(t *testing.T) {
	s := NewSource(DeniedLocator{}, Options{})

	st := s.Acquire(context.Background())
	if st.Loading {
		t.Error("still loading")
	}
	if st.Coords != nil {
		t.Errorf("coords = %+v, want nil", st.Coords)
	}
	if st.Err != "User denied geolocation request." {
		t.Errorf("err = %q", st.Err)
	}
}

func TestSourceErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unavailable", &PositionError{Code: PositionUnavailable}, "Location information is unavailable."},
		{"timeout", &PositionError{Code: Timeout}, "An unknown error occurred."},
		{"wrapped denied", fmt.Errorf("locate: %w", &PositionError{Code: PermissionDenied}), "User denied geolocation request."},
		{"plain error", errors.New("boom"), "An unknown error occurred."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSource(&countingLocator{err: tt.err}, Options{})
			if got := s.Acquire(context.Background()).Err; got != tt.want {
				t.Errorf("err = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSourceNotSupported(t *testing.T) {
	s := NewSource(nil, Options{})

	st := s.State()
	if st.Loading || st.Coords != nil {
		t.Fatalf("state = %+v", st)
	}
	if st.Err != "Geolocation is not supported on this system." {
		t.Errorf("err = %q", st.Err)
	}
	if got := s.Acquire(context.Background()); got.Err != st.Err {
		t.Errorf("Acquire changed state: %+v", got)
	}
}

func TestSourceLocatesOnce(t *testing.T) {
	loc := &countingLocator{coords: Coords{Latitude: 1, Longitude: 2}, delay: 20 * time.Millisecond}
	s := NewSource(loc, Options{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Acquire(context.Background())
		}()
	}
	wg.Wait()
	s.Acquire(context.Background())

	if n := loc.calls.Load(); n != 1 {
		t.Fatalf("Locate called %d times, want 1", n)
	}
}

func TestSourceTimeout(t *testing.T) {
	loc := &countingLocator{delay: time.Second}
	s := NewSource(loc, Options{Timeout: 10 * time.Millisecond})

	st := s.Acquire(context.Background())
	if st.Loading || st.Coords != nil {
		t.Fatalf("state = %+v", st)
	}
	if st.Err != "An unknown error occurred." {
		t.Errorf("err = %q", st.Err)
	}
}

func TestStateSnapshotIsCopy(t *testing.T) {
	s := NewSource(StaticLocator{Coords: Coords{Latitude: 10, Longitude: 20}}, Options{})
	st := s.Acquire(context.Background())
	st.Coords.Latitude = 99

	if got := s.State().Coords.Latitude; got != 10 {
		t.Errorf("latitude = %v, snapshot leaked", got)
	}
}

func TestIPLocator(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  bool
		wantCode ErrorCode
	}{
		{name: "success", status: http.StatusOK, body: `{"status":"success","lat":48.85,"lon":2.35}`},
		{name: "lookup failed", status: http.StatusOK, body: `{"status":"fail","message":"private range"}`, wantErr: true, wantCode: PositionUnavailable},
		{name: "server error", status: http.StatusBadGateway, body: `oops`, wantErr: true, wantCode: PositionUnavailable},
		{name: "bad json", status: http.StatusOK, body: `{`, wantErr: true, wantCode: PositionUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := NewIPLocator(srv.URL, srv.Client()).Locate(context.Background(), Options{})
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Locate: %v", err)
				}
				if got.Latitude != 48.85 || got.Longitude != 2.35 {
					t.Errorf("coords = %+v", got)
				}
				return
			}
			var pe *PositionError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *PositionError", err)
			}
			if pe.Code != tt.wantCode {
				t.Errorf("code = %v, want %v", pe.Code, tt.wantCode)
			}
		})
	}
}

func TestFromSetting(t *testing.T) {
	tests := []struct {
		setting string
		want    any
		wantErr bool
	}{
		{setting: "", want: &IPLocator{}},
		{setting: "auto", want: &IPLocator{}},
		{setting: "off", want: DeniedLocator{}},
		{setting: "none", want: nil},
		{setting: "51.5, -0.12", want: StaticLocator{Coords: Coords{Latitude: 51.5, Longitude: -0.12}}},
		{setting: "91,0", wantErr: true},
		{setting: "0,181", wantErr: true},
		{setting: "somewhere", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.setting, func(t *testing.T) {
			loc, err := FromSetting(tt.setting, "", nil)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %T", loc)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromSetting: %v", err)
			}
			switch want := tt.want.(type) {
			case nil:
				if loc != nil {
					t.Errorf("locator = %T, want nil", loc)
				}
			case *IPLocator:
				if _, ok := loc.(*IPLocator); !ok {
					t.Errorf("locator = %T, want *IPLocator", loc)
				}
			default:
				if loc != want {
					t.Errorf("locator = %#v, want %#v", loc, want)
				}
			}
		})
	}
}
