package transit_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/nocturna"
	"github.com/eaprelsky/nocturna-tg/internal/domain"
	"github.com/eaprelsky/nocturna-tg/internal/services/transit"
)

// fakeNocturna имитирует сервис расчётов с учётом живых карт
type fakeNocturna struct {
	mu              sync.Mutex
	nextID          int
	charts          map[string]bool
	failCreate      bool
	synastryAspects []string
}

func (f *fakeNocturna) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /charts", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failCreate && f.nextID > 0 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		id := fmt.Sprintf("chart-%d", f.nextID)
		f.nextID++
		f.charts[id] = true
		fmt.Fprintf(w, `{"success":true,"data":{"id":%q}}`, id)
	})

	mux.HandleFunc("DELETE /charts/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		id := r.PathValue("id")
		if !f.charts[id] {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"error":"chart not found"}`))
			return
		}
		delete(f.charts, id)
		w.Write([]byte(`{"success":true}`))
	})

	mux.HandleFunc("POST /charts/{id}/synastry", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			TargetChartID string   `json:"target_chart_id"`
			Aspects       []string `json:"aspects"`
		}
		json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		f.synastryAspects = req.Aspects
		if !f.charts[r.PathValue("id")] || !f.charts[req.TargetChartID] {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"success":false,"error":"chart not found"}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":{"aspects":[
			{"planet1":"SATURN","planet2":"SUN","aspect_type":"SQUARE","orb":0.8,"applying":true}
		]}}`))
	})

	mux.HandleFunc("POST /calculations/planetary-positions", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"positions":[
			{"planet":"SUN","longitude":70.5,"sign":"GEMINI","degree":10,"minute":30,"is_retrograde":false}
		]}}`))
	})

	mux.HandleFunc("POST /calculations/houses", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"houses":[
			{"number":1,"longitude":150.0,"sign":"VIRGO","degree":0,"minute":0}
		]}}`))
	})

	return mux
}

func (f *fakeNocturna) aliveCharts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.charts)
}

func newE2EService(t *testing.T, fake *fakeNocturna) *transit.Service {
	t.Helper()

	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := nocturna.NewClient(&nocturna.Config{
		BaseURL:    srv.URL,
		MaxRetries: 0,
		Timeout:    5,
	}, log)

	return transit.New(client, time.UTC, log)
}

func TestComputePersonal_EndToEnd(t *testing.T) {
	fake := &fakeNocturna{charts: map[string]bool{}}
	svc := newE2EService(t, fake)

	natal := domain.Moment{
		Date: "1990-05-15", Time: "14:30:00",
		Latitude: 55.7558, Longitude: 37.6173, Timezone: "Europe/Moscow",
	}

	result, err := svc.ComputePersonal(context.Background(), natal, domain.Moment{}, 1.0)
	require.NoError(t, err)

	require.Len(t, result.Aspects, 1)
	assert.Equal(t, "SATURN", result.Aspects[0].Planet1)
	assert.Len(t, result.NatalPositions, 1)
	assert.Len(t, result.NatalHouses, 1)
	assert.True(t, strings.HasPrefix(result.TransitDate, "20"))

	assert.Equal(t, 0, fake.aliveCharts(), "обе карты должны быть удалены после расчёта")
	assert.Equal(t, domain.MajorAspects, fake.synastryAspects,
		"запрос синастрии должен ограничивать аспекты мажорным набором")
}

func TestComputePersonal_EndToEnd_TransitCreateFailure(t *testing.T) {
	fake := &fakeNocturna{charts: map[string]bool{}, failCreate: true}
	svc := newE2EService(t, fake)

	natal := domain.Moment{
		Date: "1990-05-15", Time: "14:30:00",
		Latitude: 55.7558, Longitude: 37.6173, Timezone: "Europe/Moscow",
	}

	_, err := svc.ComputePersonal(context.Background(), natal, domain.Moment{}, 1.0)
	require.Error(t, err)
	assert.Equal(t, domain.StepTransitChartCreate, domain.FailedStep(err))
	assert.True(t, nocturna.IsKind(err, nocturna.KindServer))

	assert.Equal(t, 0, fake.aliveCharts(), "натальная карта должна быть удалена при сбое")
}
