package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/services"
	"github.com/stitts-dev/hr-parlay/pkg/config"
	"github.com/stitts-dev/hr-parlay/pkg/logger"
	"github.com/stitts-dev/hr-parlay/pkg/utils"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// envelope mirrors utils.Response with the payload left raw.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *utils.AppError `json:"error"`
	Meta    *utils.Meta     `json:"meta"`
}

type RouterTestSuite struct {
	suite.Suite
	db     *gorm.DB
	slate  *services.SlateService
	router *gin.Engine
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)
	s.db = db

	store := services.NewParlayStore(db)
	s.Require().NoError(store.AutoMigrate())

	log := logger.Discard()
	reconciler := services.NewReconciler(services.ReconcilerOptions{
		Breakers: services.NewCircuitBreakerService(1, time.Minute, log),
		Season:   2025,
		Timeout:  time.Second,
	}, log)
	s.slate = services.NewSlateService(reconciler, store, services.SlateOptions{SkipLiveData: true}, log)

	s.router = NewRouter(Dependencies{
		Config: &config.Config{CorsOrigins: []string{"http://localhost:5173"}},
		Slate:  s.slate,
		Logger: log,
	})
}

func (s *RouterTestSuite) TearDownTest() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}

func (s *RouterTestSuite) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &env)
	}
	return w, env
}

func (s *RouterTestSuite) loadSlate() *services.Slate {
	w, env := s.do(http.MethodGet, "/api/v1/games", nil)
	s.Require().Equal(http.StatusOK, w.Code)

	var slate services.Slate
	s.Require().NoError(json.Unmarshal(env.Data, &slate))
	s.Require().NotEmpty(slate.Boards)
	return &slate
}

func (s *RouterTestSuite) TestHealthAndReady() {
	w, _ := s.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)

	w, _ = s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, w.Code)
	var health map[string]interface{}
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &health))
	s.Equal("ok", health["status"])
	s.Contains(health, "breakers")
	s.NotContains(health, "refresher")

	s.loadSlate()

	w, _ = s.do(http.MethodGet, "/ready", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *RouterTestSuite) TestListGames_NextSlate() {
	w, env := s.do(http.MethodGet, "/api/v1/games", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.True(env.Success)
	s.Require().NotNil(env.Meta)
	s.Equal(models.SourceFallback, env.Meta.Source)
	s.Equal(time.Now().UTC().Format("2006-01-02"), env.Meta.Date)
	s.Positive(env.Meta.Total)
}

func (s *RouterTestSuite) TestListGames_DateValidation() {
	w, env := s.do(http.MethodGet, "/api/v1/games?date=06/01/2025", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(env.Error)
	s.Equal(utils.ErrCodeValidation, env.Error.Code)

	far := time.Now().UTC().AddDate(1, 0, 0).Format("2006-01-02")
	w, env = s.do(http.MethodGet, "/api/v1/games?date="+far, nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Require().NotNil(env.Error)
	s.Equal(utils.ErrCodeDateOutOfRange, env.Error.Code)

	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	w, env = s.do(http.MethodGet, "/api/v1/games?date="+tomorrow, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal(tomorrow, env.Meta.Date)
}

func (s *RouterTestSuite) TestGetGameAndOdds() {
	slate := s.loadSlate()
	gameID := slate.Boards[0].Game.ID

	w, env := s.do(http.MethodGet, "/api/v1/games/"+itoa(gameID), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var board services.Board
	s.Require().NoError(json.Unmarshal(env.Data, &board))
	s.Equal(gameID, board.Game.ID)
	s.NotEmpty(board.Players)
	for i := 1; i < len(board.Players); i++ {
		s.GreaterOrEqual(board.Players[i-1].Recommendation.Score, board.Players[i].Recommendation.Score)
	}

	w, env = s.do(http.MethodGet, "/api/v1/games/"+itoa(gameID)+"/odds", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.True(env.Meta.Estimated)
	var odds models.OddsSnapshot
	s.Require().NoError(json.Unmarshal(env.Data, &odds))
	s.Equal("Est.", odds.HomeBook)
	var display struct {
		HomeDisplay struct {
			Text  string `json:"text"`
			Class string `json:"class"`
		} `json:"home_display"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &display))
	s.Equal(models.FormatMoneyline(odds.HomeML), display.HomeDisplay.Text)
	s.Equal(models.MoneylineClass(odds.HomeML), display.HomeDisplay.Class)

	w, _ = s.do(http.MethodGet, "/api/v1/games/424242", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/games/abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestGetGame_NoSlate() {
	w, env := s.do(http.MethodGet, "/api/v1/games/1", nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Equal(utils.ErrCodeServiceUnavailable, env.Error.Code)
}

func (s *RouterTestSuite) TestParks() {
	w, env := s.do(http.MethodGet, "/api/v1/parks", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(30, env.Meta.Total)

	w, env = s.do(http.MethodGet, "/api/v1/parks/cin", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var park map[string]interface{}
	s.Require().NoError(json.Unmarshal(env.Data, &park))
	s.Equal("CIN", park["team"])
	s.Equal("hot", park["class"])

	w, _ = s.do(http.MethodGet, "/api/v1/parks/XYZ", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestParlayLifecycle() {
	s.loadSlate()

	w, env := s.do(http.MethodPost, "/api/v1/parlay/save", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(utils.ErrCodeEmptyParlay, env.Error.Code)

	w, env = s.do(http.MethodPost, "/api/v1/parlay/toggle", map[string]int{"game_id": 1, "player_id": 6})
	s.Require().Equal(http.StatusOK, w.Code)
	var toggled struct {
		Added  bool `json:"added"`
		Parlay struct {
			Count         int                `json:"count"`
			AvgParkFactor int                `json:"avg_park_factor"`
			Picks         []models.Selection `json:"picks"`
		} `json:"parlay"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &toggled))
	s.True(toggled.Added)
	s.Equal(1, toggled.Parlay.Count)
	s.Equal(118, toggled.Parlay.AvgParkFactor)
	s.Equal("ARI @ CIN", toggled.Parlay.Picks[0].GameLabel)

	// selection flag shows on the board
	w, env = s.do(http.MethodGet, "/api/v1/games/1", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var board services.Board
	s.Require().NoError(json.Unmarshal(env.Data, &board))
	selected := 0
	for _, p := range board.Players {
		if p.Selected {
			selected++
			s.Equal(6, p.ID)
		}
	}
	s.Equal(1, selected)

	w, env = s.do(http.MethodPost, "/api/v1/parlay/save", nil)
	s.Require().Equal(http.StatusCreated, w.Code)
	var saved models.SavedParlay
	s.Require().NoError(json.Unmarshal(env.Data, &saved))
	s.Equal(1, saved.PickCount)

	w, env = s.do(http.MethodGet, "/api/v1/parlay", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"count":0`)

	w, env = s.do(http.MethodGet, "/api/v1/parlays", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal(1, env.Meta.Total)

	w, env = s.do(http.MethodGet, "/api/v1/parlays/"+saved.ID.String(), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var detail struct {
		ID            string             `json:"id"`
		AvgParkFactor int                `json:"avg_park_factor"`
		Picks         []models.Selection `json:"picks"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &detail))
	s.Equal(saved.ID.String(), detail.ID)
	s.Equal(118, detail.AvgParkFactor)
	s.Require().Len(detail.Picks, 1)
	s.Equal("Christian Walker", detail.Picks[0].PlayerName)

	w, _ = s.do(http.MethodGet, "/api/v1/parlays/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/v1/parlays/"+saved.ID.String(), nil)
	s.Equal(http.StatusNoContent, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/v1/parlays/"+saved.ID.String(), nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/api/v1/parlays/"+saved.ID.String(), nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodDelete, "/api/v1/parlays/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *RouterTestSuite) TestToggle_InvalidInputLeavesParlayAlone() {
	s.loadSlate()

	w, _ := s.do(http.MethodPost, "/api/v1/parlay/toggle", map[string]int{"game_id": 1, "player_id": 999999})
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPost, "/api/v1/parlay/toggle", map[string]string{"game_id": "one"})
	s.Equal(http.StatusBadRequest, w.Code)

	s.Zero(s.slate.Selections().Len())
}

func (s *RouterTestSuite) TestClearParlay() {
	s.loadSlate()
	_, _ = s.do(http.MethodPost, "/api/v1/parlay/toggle", map[string]int{"game_id": 1, "player_id": 6})
	s.Require().Equal(1, s.slate.Selections().Len())

	w, _ := s.do(http.MethodDelete, "/api/v1/parlay", nil)
	s.Equal(http.StatusOK, w.Code)
	s.Zero(s.slate.Selections().Len())
}

func (s *RouterTestSuite) TestUnconfiguredSources() {
	for _, path := range []string{
		"/api/v1/players/665742/advanced",
		"/api/v1/pitchers/543037",
		"/api/v1/leaders",
	} {
		w, env := s.do(http.MethodGet, path, nil)
		s.Equal(http.StatusServiceUnavailable, w.Code, path)
		s.Equal(utils.ErrCodeServiceUnavailable, env.Error.Code, path)
	}
}

func (s *RouterTestSuite) TestOptionalRoutesAbsent() {
	w, _ := s.do(http.MethodGet, "/ws", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodGet, "/proxy/health", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterTestSuite) TestPprofOnlyOutsideProduction() {
	for env, want := range map[string]int{"development": http.StatusOK, "production": http.StatusNotFound} {
		router := NewRouter(Dependencies{
			Config: &config.Config{Env: env, EnablePprof: true},
			Slate:  s.slate,
			Logger: logger.Discard(),
		})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil))
		s.Equal(want, w.Code, env)
	}
}

func TestRouterTestSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}

func itoa(i int) string {
	b, _ := json.Marshal(i)
	return string(b)
}
