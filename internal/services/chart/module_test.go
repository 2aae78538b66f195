package chart

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaprelsky/nocturna-tg/internal/adapters/secondary/chartrender"
	"github.com/eaprelsky/nocturna-tg/internal/domain"
)

type stubAPI struct {
	positions []domain.PlanetPosition
	houses    []domain.HouseCusp

	positionsErr error
	housesErr    error
}

func (s *stubAPI) CreateChart(_ context.Context, _ domain.Moment) (domain.ChartID, error) {
	return "", fmt.Errorf("not implemented")
}

func (s *stubAPI) GetChart(_ context.Context, _ domain.ChartID) (json.RawMessage, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubAPI) DeleteChart(_ context.Context, _ domain.ChartID) error {
	return fmt.Errorf("not implemented")
}

func (s *stubAPI) CalculatePositions(_ context.Context, _ domain.Moment) ([]domain.PlanetPosition, error) {
	return s.positions, s.positionsErr
}

func (s *stubAPI) CalculateHouses(_ context.Context, _ domain.Moment) ([]domain.HouseCusp, error) {
	return s.houses, s.housesErr
}

func (s *stubAPI) CalculateAspects(_ context.Context, _ domain.Moment, _ float64) ([]domain.Aspect, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubAPI) CalculateSynastry(_ context.Context, _, _ domain.ChartID, _ []string, _ float64) ([]domain.Aspect, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubS3 struct {
	savedPath        string
	savedData        []byte
	savedContentType string
	saveErr          error
}

func (s *stubS3) SaveFile(_ context.Context, path string, data []byte, contentType string) error {
	s.savedPath = path
	s.savedData = data
	s.savedContentType = contentType
	return s.saveErr
}

func (s *stubS3) GetFile(_ context.Context, _ string) ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}

func (s *stubS3) GetPresignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://s3.local/" + path, nil
}

func testPositions() []domain.PlanetPosition {
	return []domain.PlanetPosition{
		{Planet: "SUN", Longitude: 54.1, Latitude: 0.0},
		{Planet: "MOON", Longitude: 120.5, Latitude: 4.2, IsRetrograde: false},
		{Planet: "MERCURY", Longitude: 40.0, IsRetrograde: true},
	}
}

func testHouses() []domain.HouseCusp {
	houses := make([]domain.HouseCusp, 0, 12)
	for i := 12; i >= 1; i-- {
		houses = append(houses, domain.HouseCusp{Number: i, Longitude: float64(i) * 30})
	}
	return houses
}

func renderServer(t *testing.T, image []byte, lastBody *map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if lastBody != nil {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, lastBody))
		}
		resp := map[string]any{
			"success": true,
			"data": map[string]any{
				"image": base64.StdEncoding.EncodeToString(image),
				"size":  len(image),
			},
			"meta": map[string]any{"renderTime": 42},
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func testService(t *testing.T, rendererURL string, api *stubAPI, s3 *stubS3) *Service {
	t.Helper()
	renderer := chartrender.NewClient(&chartrender.Config{
		BaseURL:    rendererURL,
		Timeout:    5,
		MaxRetries: 1,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	svc := New(api, renderer, s3, time.UTC, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time {
		return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	}
	return svc
}

func TestGenerateCurrentChart(t *testing.T) {
	image := []byte("png-bytes")
	var body map[string]any
	server := renderServer(t, image, &body)
	defer server.Close()

	api := &stubAPI{positions: testPositions(), houses: testHouses()}
	s3 := &stubS3{}
	svc := testService(t, server.URL, api, s3)

	url, err := svc.GenerateCurrentChart(context.Background(), 55.7558, 37.6173)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "https://s3.local/charts/current/"), url)
	assert.True(t, strings.HasSuffix(s3.savedPath, ".png"))
	assert.Equal(t, image, s3.savedData)
	assert.Equal(t, "image/png", s3.savedContentType)

	// Планеты уходят рендереру в нижнем регистре
	planets, ok := body["planets"].(map[string]any)
	require.True(t, ok, "planets missing in render payload")
	assert.Contains(t, planets, "sun")
	assert.Contains(t, planets, "mercury")

	mercury := planets["mercury"].(map[string]any)
	assert.Equal(t, true, mercury["retrograde"])

	// Дома отсортированы по номеру
	houses, ok := body["houses"].([]any)
	require.True(t, ok, "houses missing in render payload")
	require.Len(t, houses, 12)
	first := houses[0].(map[string]any)
	assert.InDelta(t, 30.0, first["lon"], 0.001)
}

func TestGenerateCurrentChart_UnknownPlanetSkipped(t *testing.T) {
	var body map[string]any
	server := renderServer(t, []byte("img"), &body)
	defer server.Close()

	api := &stubAPI{
		positions: append(testPositions(), domain.PlanetPosition{Planet: "CHIRON", Longitude: 10}),
		houses:    testHouses(),
	}
	svc := testService(t, server.URL, api, &stubS3{})

	_, err := svc.GenerateCurrentChart(context.Background(), 55.7558, 37.6173)
	require.NoError(t, err)

	planets := body["planets"].(map[string]any)
	assert.NotContains(t, planets, "chiron")
	assert.NotContains(t, planets, "CHIRON")
}

func TestGenerateCurrentChart_NoPositions(t *testing.T) {
	server := renderServer(t, []byte("img"), nil)
	defer server.Close()

	api := &stubAPI{positions: nil, houses: testHouses()}
	svc := testService(t, server.URL, api, &stubS3{})

	_, err := svc.GenerateCurrentChart(context.Background(), 55.7558, 37.6173)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "позиции")
}

func TestGenerateCurrentChart_TooFewHouses(t *testing.T) {
	server := renderServer(t, []byte("img"), nil)
	defer server.Close()

	api := &stubAPI{
		positions: testPositions(),
		houses:    testHouses()[:5],
	}
	svc := testService(t, server.URL, api, &stubS3{})

	_, err := svc.GenerateCurrentChart(context.Background(), 55.7558, 37.6173)
	require.Error(t, err)
}

func TestGenerateTransitChart(t *testing.T) {
	var body map[string]any
	server := renderServer(t, []byte("biwheel"), &body)
	defer server.Close()

	s3 := &stubS3{}
	svc := testService(t, server.URL, &stubAPI{}, s3)

	transit := &domain.PersonalTransit{
		TransitDate:      "2024-06-01",
		TransitTime:      "12:00:00",
		NatalPositions:   testPositions(),
		NatalHouses:      testHouses(),
		TransitPositions: testPositions(),
	}

	url, err := svc.GenerateTransitChart(context.Background(), transit)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "https://s3.local/charts/transit/"), url)

	// Момент внешнего колеса уходит рендереру в ISO-формате
	transitWheel := body["transit"].(map[string]any)
	assert.Equal(t, "2024-06-01T12:00:00", transitWheel["datetime"])

	natalWheel := body["natal"].(map[string]any)
	assert.Contains(t, natalWheel, "planets")
	assert.Contains(t, natalWheel, "houses")
}

func TestGenerateTransitChart_EmptyTransitRejected(t *testing.T) {
	server := renderServer(t, []byte("img"), nil)
	defer server.Close()

	svc := testService(t, server.URL, &stubAPI{}, &stubS3{})

	_, err := svc.GenerateTransitChart(context.Background(), &domain.PersonalTransit{
		NatalPositions: testPositions(),
		NatalHouses:    testHouses(),
	})
	require.Error(t, err)
}

func TestStore_SaveFailure(t *testing.T) {
	server := renderServer(t, []byte("img"), nil)
	defer server.Close()

	api := &stubAPI{positions: testPositions(), houses: testHouses()}
	s3 := &stubS3{saveErr: fmt.Errorf("bucket unavailable")}
	svc := testService(t, server.URL, api, s3)

	_, err := svc.GenerateCurrentChart(context.Background(), 55.7558, 37.6173)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "сохранения")
}
