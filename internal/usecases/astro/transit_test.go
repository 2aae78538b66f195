package astro

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eaprelsky/nocturna-tg/internal/domain"
	"github.com/eaprelsky/nocturna-tg/internal/ports/cache"
	"github.com/eaprelsky/nocturna-tg/internal/ports/kafka"
)

type stubUserRepo struct {
	user     *domain.User
	birth    *domain.UserBirthData
	birthErr error
	chartIDs map[int64]string
	upserted []int64
}

func (r *stubUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	r.upserted = append(r.upserted, user.TelegramID)
	return nil
}

func (r *stubUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	if r.user == nil || r.user.TelegramID != telegramID {
		return nil, nil
	}
	return r.user, nil
}

func (r *stubUserRepo) SetBirthData(ctx context.Context, data *domain.UserBirthData) error {
	r.birth = data
	return nil
}

func (r *stubUserRepo) GetBirthData(ctx context.Context, telegramID int64) (*domain.UserBirthData, error) {
	if r.birthErr != nil {
		return nil, r.birthErr
	}
	if r.birth == nil {
		return nil, domain.ErrNoBirthData
	}
	return r.birth, nil
}

func (r *stubUserRepo) SetChartID(ctx context.Context, telegramID int64, chartID string) error {
	if r.chartIDs == nil {
		r.chartIDs = map[int64]string{}
	}
	r.chartIDs[telegramID] = chartID
	return nil
}

func (r *stubUserRepo) DeleteBirthData(ctx context.Context, telegramID int64) error {
	r.birth = nil
	return nil
}

type stubTransitService struct {
	personal    *domain.PersonalTransit
	personalErr error
	current     *domain.CurrentTransit
	currentErr  error

	currentCalls int
}

func (s *stubTransitService) ComputePersonal(ctx context.Context, natal, transit domain.Moment, orbMultiplier float64) (*domain.PersonalTransit, error) {
	if s.personalErr != nil {
		return nil, s.personalErr
	}
	return s.personal, nil
}

func (s *stubTransitService) Current(ctx context.Context, latitude, longitude float64) (*domain.CurrentTransit, error) {
	s.currentCalls++
	if s.currentErr != nil {
		return nil, s.currentErr
	}
	return s.current, nil
}

type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (c *memCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	val, ok := c.data[key]
	if !ok {
		return "", cache.ErrNotFound
	}
	return val, nil
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Exists(ctx context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *memCache) Close() error { return nil }

type stubProducer struct {
	sent    [][]byte
	userIDs []int64
	err     error
}

func (p *stubProducer) SendTransitComputed(ctx context.Context, requestID uuid.UUID, userID int64, transit []byte) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, transit)
	p.userIDs = append(p.userIDs, userID)
	return nil
}

func (p *stubProducer) Close() error { return nil }

func testBirthData() *domain.UserBirthData {
	return &domain.UserBirthData{
		UserID:    42,
		BirthDate: "1990-05-15",
		BirthTime: "14:30:00",
		Timezone:  "Europe/Moscow",
		Latitude:  55.7558,
		Longitude: 37.6173,
	}
}

func testPersonalTransit() *domain.PersonalTransit {
	applying := true
	return &domain.PersonalTransit{
		TransitDate: "2024-06-01",
		TransitTime: "12:00:00",
		Aspects: []domain.Aspect{
			{Planet1: "SUN", Planet2: "SATURN", AspectType: "SQUARE", Orb: 0.8, Applying: &applying},
		},
	}
}

func newTestService(repo *stubUserRepo, transit *stubTransitService, producer kafka.IKafkaProducer, memcache cache.Cache) *Service {
	return New(repo, transit, nil, nil, nil, producer, memcache,
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestPersonalTransitReport(t *testing.T) {
	repo := &stubUserRepo{birth: testBirthData()}
	transit := &stubTransitService{personal: testPersonalTransit()}
	producer := &stubProducer{}

	svc := newTestService(repo, transit, producer, nil)

	report, err := svc.PersonalTransitReport(context.Background(), 42, 1.0)
	require.NoError(t, err)
	assert.Contains(t, report.Text, "Персональные транзиты")
	assert.Contains(t, report.Text, "Сатурн")

	require.Len(t, producer.sent, 1)
	assert.Equal(t, []int64{42}, producer.userIDs)

	var published domain.PersonalTransit
	require.NoError(t, json.Unmarshal(producer.sent[0], &published))
	assert.Equal(t, "2024-06-01", published.TransitDate)
}

func TestPersonalTransitReport_NoBirthData(t *testing.T) {
	svc := newTestService(&stubUserRepo{}, &stubTransitService{}, nil, nil)

	_, err := svc.PersonalTransitReport(context.Background(), 42, 1.0)
	assert.ErrorIs(t, err, domain.ErrNoBirthData)
}

func TestPersonalTransitReport_StepErrorPassedThrough(t *testing.T) {
	repo := &stubUserRepo{birth: testBirthData()}
	transit := &stubTransitService{
		personalErr: domain.WrapStepError(domain.StepSynastry, errors.New("boom")),
	}

	svc := newTestService(repo, transit, nil, nil)

	_, err := svc.PersonalTransitReport(context.Background(), 42, 1.0)
	require.Error(t, err)
	assert.Equal(t, domain.StepSynastry, domain.FailedStep(err))
}

func TestPersonalTransitReport_ProducerFailureIgnored(t *testing.T) {
	repo := &stubUserRepo{birth: testBirthData()}
	transit := &stubTransitService{personal: testPersonalTransit()}
	producer := &stubProducer{err: errors.New("kafka down")}

	svc := newTestService(repo, transit, producer, nil)

	report, err := svc.PersonalTransitReport(context.Background(), 42, 1.0)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Text)
}

func TestCurrentTransitReport_CachesResult(t *testing.T) {
	transit := &stubTransitService{
		current: &domain.CurrentTransit{
			Date: "2024-06-01", Time: "12:00:00",
			Positions: []domain.PlanetPosition{{Planet: "SUN", Sign: "GEMINI", Degree: 10, Minute: 30}},
		},
	}
	memcache := newMemCache()

	svc := newTestService(&stubUserRepo{}, transit, nil, memcache)

	first, err := svc.CurrentTransitReport(context.Background(), 55.75, 37.61, false)
	require.NoError(t, err)
	assert.Contains(t, first.Text, "Солнце")
	assert.Equal(t, 1, transit.currentCalls)

	second, err := svc.CurrentTransitReport(context.Background(), 55.75, 37.61, false)
	require.NoError(t, err)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, 1, transit.currentCalls, "повторный запрос должен идти из кэша")
}

func TestCurrentTransitReport_DefaultCoordinates(t *testing.T) {
	transit := &stubTransitService{
		current: &domain.CurrentTransit{Date: "2024-06-01", Time: "12:00:00"},
	}
	svc := newTestService(&stubUserRepo{}, transit, nil, nil)

	_, err := svc.CurrentTransitReport(context.Background(), 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1, transit.currentCalls)
}

func TestUpdateCachedPositions(t *testing.T) {
	transit := &stubTransitService{
		current: &domain.CurrentTransit{
			Positions: []domain.PlanetPosition{{Planet: "SUN"}, {Planet: "MOON"}},
		},
	}
	memcache := newMemCache()

	svc := newTestService(&stubUserRepo{}, transit, nil, memcache)

	require.NoError(t, svc.UpdateCachedPositions(context.Background()))

	cached, err := memcache.Get(context.Background(), positionsCacheKey)
	require.NoError(t, err)

	var positions []domain.PlanetPosition
	require.NoError(t, json.Unmarshal([]byte(cached), &positions))
	assert.Len(t, positions, 2)
}

func TestUpdateCachedPositions_NoCacheConfigured(t *testing.T) {
	transit := &stubTransitService{}
	svc := newTestService(&stubUserRepo{}, transit, nil, nil)

	require.NoError(t, svc.UpdateCachedPositions(context.Background()))
	assert.Equal(t, 0, transit.currentCalls)
}

func TestGetUser(t *testing.T) {
	repo := &stubUserRepo{user: &domain.User{TelegramID: 42}}
	svc := newTestService(repo, &stubTransitService{}, nil, nil)

	user, err := svc.GetUser(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, int64(42), user.TelegramID)

	missing, err := svc.GetUser(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, missing, "незарегистрированный пользователь возвращается как nil")
}

func TestSetBirthData_Validation(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(repo, &stubTransitService{}, nil, nil)
	svc.API = &stubNocturnaAPI{}

	tests := []struct {
		name   string
		mutate func(*domain.UserBirthData)
	}{
		{"bad date", func(d *domain.UserBirthData) { d.BirthDate = "15.05.1990" }},
		{"bad time", func(d *domain.UserBirthData) { d.BirthTime = "14:30" }},
		{"bad timezone", func(d *domain.UserBirthData) { d.Timezone = "Mars/Olympus" }},
		{"bad latitude", func(d *domain.UserBirthData) { d.Latitude = 120 }},
		{"bad longitude", func(d *domain.UserBirthData) { d.Longitude = -200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := testBirthData()
			tt.mutate(data)
			err := svc.SetBirthData(context.Background(), data)
			require.Error(t, err)
			assert.True(t, domain.IsBusinessError(err))
		})
	}
	assert.Nil(t, repo.birth, "невалидные данные не должны сохраняться")
}

type stubNocturnaAPI struct {
	createErr error
}

func (s *stubNocturnaAPI) CreateChart(ctx context.Context, m domain.Moment) (domain.ChartID, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	return "chart-natal", nil
}

func (s *stubNocturnaAPI) GetChart(ctx context.Context, id domain.ChartID) (json.RawMessage, error) {
	return nil, nil
}
func (s *stubNocturnaAPI) DeleteChart(ctx context.Context, id domain.ChartID) error { return nil }
func (s *stubNocturnaAPI) CalculatePositions(ctx context.Context, m domain.Moment) ([]domain.PlanetPosition, error) {
	return nil, nil
}
func (s *stubNocturnaAPI) CalculateHouses(ctx context.Context, m domain.Moment) ([]domain.HouseCusp, error) {
	return nil, nil
}
func (s *stubNocturnaAPI) CalculateAspects(ctx context.Context, m domain.Moment, orbMultiplier float64) ([]domain.Aspect, error) {
	return nil, nil
}
func (s *stubNocturnaAPI) CalculateSynastry(ctx context.Context, id, target domain.ChartID, aspects []string, orbMultiplier float64) ([]domain.Aspect, error) {
	return nil, nil
}

func TestSetBirthData_SavesAndCreatesChart(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(repo, &stubTransitService{}, nil, nil)
	svc.API = &stubNocturnaAPI{}

	require.NoError(t, svc.SetBirthData(context.Background(), testBirthData()))
	require.NotNil(t, repo.birth)
	assert.Equal(t, "chart-natal", repo.chartIDs[42])
}

func TestSetBirthData_ChartFailureDoesNotRollBack(t *testing.T) {
	repo := &stubUserRepo{}
	svc := newTestService(repo, &stubTransitService{}, nil, nil)
	svc.API = &stubNocturnaAPI{createErr: errors.New("api down")}

	require.NoError(t, svc.SetBirthData(context.Background(), testBirthData()))
	require.NotNil(t, repo.birth)
	assert.Empty(t, repo.chartIDs)
}
