package router

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/musiq-backend/internal/audio"
	"github.com/stemsi/musiq-backend/internal/cache"
	"github.com/stemsi/musiq-backend/internal/config"
	"github.com/stemsi/musiq-backend/internal/document"
	"github.com/stemsi/musiq-backend/internal/generator"
	"github.com/stemsi/musiq-backend/internal/handler"
	"github.com/stemsi/musiq-backend/internal/middleware"
	"github.com/stemsi/musiq-backend/internal/model"
	"github.com/stemsi/musiq-backend/internal/repository"
	"github.com/stemsi/musiq-backend/internal/response"
	"github.com/stemsi/musiq-backend/internal/score"
	"github.com/stemsi/musiq-backend/internal/service"
	"github.com/stemsi/musiq-backend/internal/validator"
	ws "github.com/stemsi/musiq-backend/internal/websocket"
)

const gMajorScore = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <work><work-title>Minuet</work-title></work>
  <part-list><score-part id="P1"><part-name>Piano</part-name></score-part></part-list>
  <part id="P1">
    <measure number="1">
      <attributes>
        <divisions>1</divisions>
        <key><fifths>1</fifths><mode>major</mode></key>
        <time><beats>3</beats><beat-type>4</beat-type></time>
      </attributes>
      <note><pitch><step>G</step><octave>4</octave></pitch><duration>1</duration></note>
      <note><pitch><step>B</step><octave>4</octave></pitch><duration>1</duration></note>
      <note><pitch><step>D</step><octave>5</octave></pitch><duration>1</duration></note>
    </measure>
  </part>
</score-partwise>`

type stubAudio struct{}

func (stubAudio) Analyze(context.Context, string, []byte) (*audio.RhythmResult, error) {
	return &audio.RhythmResult{Label: "왈츠", Classifier: "centroid-1", Features: audio.Features{BPM: 96}}, nil
}

func (stubAudio) Labels() []string { return audio.DefaultLabels }

type envelope struct {
	Data       json.RawMessage      `json:"data"`
	Error      *response.ErrorBody  `json:"error"`
	Pagination *response.Pagination `json:"pagination"`
}

type testApp struct {
	router http.Handler
}

func newTestApp(t *testing.T, limiter middleware.Limiter, history ...*service.HistoryService) *testApp {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	cfg := &config.Config{
		GinMode:          "test",
		JWTSecret:        "router-secret",
		JWTExpiry:        time.Hour,
		AdminEmail:       "admin@musiq.local",
		AdminPassHash:    string(hash),
		UploadDir:        t.TempDir(),
		MaxUploadBytes:   1 << 20,
		DocumentTTL:      time.Hour,
		AnalysisCacheTTL: time.Hour,
	}
	log := zerolog.Nop()

	authService := service.NewAuthService(cfg)
	mediaService := service.NewMediaService(cfg)
	questionService := service.NewQuestionService(cfg, generator.NewStaticGenerator(), stubAudio{},
		score.NewAnalyzer(log), cache.NewMemoryCache(100), nil, nil, log)

	handlers := &Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Catalog:  handler.NewCatalogHandler(),
		Question: handler.NewQuestionHandler(questionService, mediaService),
		Media:    handler.NewMediaHandler(mediaService),
		History:  handler.NewHistoryHandler(nil),
		WS:       handler.NewWSHandler(questionService, mediaService, log, nil),
	}
	if len(history) > 0 {
		handlers.History = handler.NewHistoryHandler(history[0])
	}
	r := SetupRouter(Dependencies{Auth: authService, GenerateLimiter: limiter, Log: log}, handlers, cfg)
	return &testApp{router: r}
}

func init() {
	validator.Setup()
}

func (a *testApp) do(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func jsonRequest(method, path, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path string, fields map[string][]string, files map[string][2]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, values := range fields {
		for _, v := range values {
			require.NoError(t, w.WriteField(name, v))
		}
	}
	for field, f := range files {
		part, err := w.CreateFormFile(field, f[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(f[1]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decodeGeneration(t *testing.T, env envelope) model.GenerationResponse {
	t.Helper()
	var out model.GenerationResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotNil(t, out.Generation)
	return out
}

// ─── Public routes ──────────────────────────────────────────────────────────

func TestHealthAndCatalog(t *testing.T) {
	app := newTestApp(t, nil)

	w, _ := app.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := app.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "public, max-age=300", w.Header().Get("Cache-Control"))

	var catalog struct {
		QuestionTypes []model.QuestionTypeInfo `json:"question_types"`
		AnswerTypes   []model.AnswerTypeInfo   `json:"answer_types"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &catalog))
	require.Len(t, catalog.QuestionTypes, 4)
	assert.Equal(t, "유형 1: 음악사 (텍스트)", catalog.QuestionTypes[0].Label)
	assert.True(t, catalog.QuestionTypes[3].RequiresScore)
	assert.Len(t, catalog.AnswerTypes, 4)
}

func TestGenerateValidation(t *testing.T) {
	app := newTestApp(t, nil)

	w, env := app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate", `{"question_types":[]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrQuestionTypeRequired, env.Error.Code)
	assert.Equal(t, "문항 유형을 하나 이상 선택하세요.", env.Error.Message)

	w, env = app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate", `{"question_types":["유형 7: 합창"]}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrUnsupportedQuestionType, env.Error.Code)

	w, env = app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate", `{"question_types":["MUSIC_HISTORY"],"score_upload_id":"nope"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
	assert.Contains(t, env.Error.Fields, "score_upload_id")
}

func TestGenerateAndDownload(t *testing.T) {
	app := newTestApp(t, nil)

	w, env := app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate",
		`{"question_types":["유형 1: 음악사 (텍스트)"],"answer_types":["유형 2: 객관식 (텍스트형)"]}`))
	require.Equal(t, http.StatusOK, w.Code)
	out := decodeGeneration(t, env)
	assert.Equal(t, model.GenerationStatusGenerated, out.Generation.Status)
	assert.Contains(t, out.Generation.Text, "모차르트")
	assert.Equal(t, "/api/v1/questions/"+out.Generation.ID.String()+"/document", out.DocumentURL)

	w, env = app.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/questions/"+out.Generation.ID.String(), nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, out.Generation.Text, decodeGeneration(t, env).Generation.Text)

	w, _ = app.do(t, httptest.NewRequest(http.MethodGet, out.DocumentURL, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, document.MIMEType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), document.Filename)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, "PK", w.Body.String()[:2])

	w, env = app.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/questions/not-a-uuid/document", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrInvalidID, env.Error.Code)

	w, env = app.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/questions/7f0c1bd4-5b7e-4c1e-9a59-0d5c4f7d9a10", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.ErrNotFound, env.Error.Code)
}

// documentXML unpacks word/document.xml from a DOCX response body.
func documentXML(t *testing.T, pkg []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(raw)
	}
	t.Fatal("word/document.xml missing")
	return ""
}

func TestDownloadedDocumentCarriesText(t *testing.T) {
	tests := []struct {
		questionType model.QuestionType
		files        map[string][2]string
	}{
		{model.QuestionTypeMusicHistory, nil},
		{model.QuestionTypeRhythmHarmony, map[string][2]string{"audio": {"beat.wav", "RIFF"}}},
		{model.QuestionTypeScoreEvaluation, map[string][2]string{"score": {"minuet.musicxml", gMajorScore}}},
		{model.QuestionTypeComprehensive, map[string][2]string{
			"audio": {"beat.wav", "RIFF"},
			"score": {"minuet.musicxml", gMajorScore},
		}},
	}
	for _, tt := range tests {
		t.Run(string(tt.questionType), func(t *testing.T) {
			app := newTestApp(t, nil)

			req := multipartRequest(t, "/api/v1/questions/generate",
				map[string][]string{"question_types": {string(tt.questionType)}}, tt.files)
			w, env := app.do(t, req)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			out := decodeGeneration(t, env)
			require.Equal(t, model.GenerationStatusGenerated, out.Generation.Status)

			w, _ = app.do(t, httptest.NewRequest(http.MethodGet, out.DocumentURL, nil))
			require.Equal(t, http.StatusOK, w.Code)

			body := documentXML(t, w.Body.Bytes())
			assert.Contains(t, body, escapeXML(document.DefaultHeading))
			for _, line := range strings.Split(out.Generation.Text, "\n") {
				for _, seg := range strings.Split(line, "\t") {
					if seg != "" {
						assert.Contains(t, body, escapeXML(seg))
					}
				}
			}
		})
	}
}

func escapeXML(s string) string {
	var b bytes.Buffer
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

func TestGenerateMultipart(t *testing.T) {
	app := newTestApp(t, nil)

	req := multipartRequest(t, "/api/v1/questions/generate",
		map[string][]string{"question_types": {"SCORE_EVALUATION"}, "answer_types": {"FREE_RESPONSE"}},
		map[string][2]string{"score": {"minuet.musicxml", gMajorScore}})
	w, env := app.do(t, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	g := decodeGeneration(t, env).Generation
	wantKey := score.NewKey(7, score.Major).Korean()
	assert.Equal(t, wantKey, g.DetectedKey)
	assert.Equal(t, "minuet.musicxml", g.ScoreName)
	assert.Contains(t, g.Text, "모범 답안: "+wantKey)

	req = multipartRequest(t, "/api/v1/questions/generate",
		map[string][]string{"question_types": {"RHYTHM_HARMONY"}},
		map[string][2]string{"audio": {"minuet.musicxml", gMajorScore}})
	w, env = app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrUploadKindWrong, env.Error.Code)
}

func TestGenerateMissingFileFallback(t *testing.T) {
	app := newTestApp(t, nil)

	w, env := app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate", `{"question_types":["COMPREHENSIVE"]}`))
	require.Equal(t, http.StatusOK, w.Code)
	g := decodeGeneration(t, env).Generation
	assert.Equal(t, model.GenerationStatusFallback, g.Status)
	assert.Equal(t, service.MissingAudioText+"\n"+service.MissingScoreText, g.Text)
}

func TestUploadThenGenerate(t *testing.T) {
	app := newTestApp(t, nil)

	req := multipartRequest(t, "/api/v1/media/upload", nil, map[string][2]string{"file": {"minuet.xml", gMajorScore}})
	w, env := app.do(t, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var up model.Upload
	require.NoError(t, json.Unmarshal(env.Data, &up))
	assert.Equal(t, model.UploadKindScore, up.Kind)

	body := `{"question_types":["악보평가"],"score_upload_id":"` + up.ID.String() + `"}`
	w, env = app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate", body))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.GenerationStatusGenerated, decodeGeneration(t, env).Generation.Status)

	body = `{"question_types":["리듬"],"audio_upload_id":"` + up.ID.String() + `"}`
	w, env = app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrUploadKindWrong, env.Error.Code)

	req = multipartRequest(t, "/api/v1/media/upload", nil, map[string][2]string{"file": {"notes.pdf", "%PDF"}})
	w, env = app.do(t, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrUnsupportedFile, env.Error.Code)

	w, env = app.do(t, multipartRequest(t, "/api/v1/media/upload", nil, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrFileRequired, env.Error.Code)
}

func TestExportDocument(t *testing.T) {
	app := newTestApp(t, nil)

	w, _ := app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/document", `{"text":"Q1. 직접 작성한 문항"}`))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, document.MIMEType, w.Header().Get("Content-Type"))

	w, env := app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/document", `{"text":""}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrValidation, env.Error.Code)
}

func TestGenerateRateLimited(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app := newTestApp(t, middleware.NewRateLimiter(ctx, 1, time.Hour))

	w, _ := app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate", `{"question_types":["MUSIC_HISTORY"]}`))
	assert.Equal(t, http.StatusOK, w.Code)

	w, env := app.do(t, jsonRequest(http.MethodPost, "/api/v1/questions/generate", `{"question_types":["MUSIC_HISTORY"]}`))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.ErrRateLimitExceeded, env.Error.Code)

	w, _ = app.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/catalog", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

// ─── Admin routes ───────────────────────────────────────────────────────────

func TestAdminLoginAndHistoryDisabled(t *testing.T) {
	app := newTestApp(t, nil)

	w, env := app.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/admin/history", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrTokenRequired, env.Error.Code)

	w, env = app.do(t, jsonRequest(http.MethodPost, "/api/v1/auth/admin/login", `{"email":"admin@musiq.local","password":"wrong-pass"}`))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, response.ErrInvalidCredentials, env.Error.Code)

	w, env = app.do(t, jsonRequest(http.MethodPost, "/api/v1/auth/admin/login", `{"email":"admin@musiq.local","password":"admin-pass"}`))
	require.Equal(t, http.StatusOK, w.Code)
	var login model.AdminLoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	require.NotEmpty(t, login.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/history", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w, env = app.do(t, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, response.ErrHistoryDisabled, env.Error.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/auth/admin/me", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w, _ = app.do(t, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin@musiq.local")
}

type memoryHistory struct {
	items []model.Generation
}

func (m *memoryHistory) GetByID(_ context.Context, id uuid.UUID) (*model.Generation, error) {
	for i := range m.items {
		if m.items[i].ID == id {
			return &m.items[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memoryHistory) ListPaginated(_ context.Context, qt model.QuestionType, limit, offset int) ([]model.Generation, int, error) {
	var out []model.Generation
	for _, g := range m.items {
		if qt == "" || g.QuestionType == qt {
			out = append(out, g)
		}
	}
	total := len(out)
	if offset >= total {
		return nil, total, nil
	}
	return out[offset:min(offset+limit, total)], total, nil
}

func (m *memoryHistory) Delete(_ context.Context, id uuid.UUID) error {
	for i := range m.items {
		if m.items[i].ID == id {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func TestHistoryRoutes(t *testing.T) {
	store := &memoryHistory{}
	for i := 0; i < 3; i++ {
		store.items = append(store.items, model.Generation{
			ID:           uuid.New(),
			QuestionType: model.QuestionTypeMusicHistory,
			AnswerType:   model.AnswerTypeMCText,
			Text:         "Q1. 저장된 문항",
			Status:       model.GenerationStatusGenerated,
		})
	}
	store.items = append(store.items, model.Generation{
		ID:           uuid.New(),
		QuestionType: model.QuestionTypeRhythmHarmony,
		Text:         service.MissingAudioText,
		Status:       model.GenerationStatusFallback,
	})

	app := newTestApp(t, nil, service.NewHistoryService(store))
	token, err := service.NewAuthService(&config.Config{JWTSecret: "router-secret", JWTExpiry: time.Hour}).
		GenerateAdminToken("admin@musiq.local")
	require.NoError(t, err)

	authed := func(method, path string) *http.Request {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	w, env := app.do(t, authed(http.MethodGet, "/api/v1/admin/history?question_type=MUSIC_HISTORY&page=2&per_page=2"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var items []model.Generation
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 1)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 3, env.Pagination.TotalItems)
	assert.Equal(t, 2, env.Pagination.TotalPages)

	w, env = app.do(t, authed(http.MethodGet, "/api/v1/admin/history?question_type=jazz"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, response.ErrValidation, env.Error.Code)

	id := store.items[3].ID.String()
	w, env = app.do(t, authed(http.MethodGet, "/api/v1/admin/history/"+id))
	require.Equal(t, http.StatusOK, w.Code)
	var g model.Generation
	require.NoError(t, json.Unmarshal(env.Data, &g))
	assert.Equal(t, model.GenerationStatusFallback, g.Status)

	w, _ = app.do(t, authed(http.MethodGet, "/api/v1/admin/history/"+id+"/document?token="+token))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, document.MIMEType, w.Header().Get("Content-Type"))

	w, _ = app.do(t, authed(http.MethodDelete, "/api/v1/admin/history/"+id))
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = app.do(t, authed(http.MethodDelete, "/api/v1/admin/history/"+id))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, response.ErrNotFound, env.Error.Code)
}

// ─── WebSocket ──────────────────────────────────────────────────────────────

func TestGenerateStream(t *testing.T) {
	app := newTestApp(t, nil)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/generate"
	conn, _, err := gorillaws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "ping"}))
	var pong ws.PongResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)

	require.NoError(t, conn.WriteJSON(ws.GenerateRequest{Action: ws.ActionGenerate}))
	var errResp ws.ErrorResponse
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, ws.EventError, errResp.Event)
	assert.Equal(t, string(response.ErrQuestionTypeRequired), errResp.Code)

	require.NoError(t, conn.WriteJSON(ws.GenerateRequest{
		Action:        ws.ActionGenerate,
		QuestionTypes: []string{"MUSIC_HISTORY"},
		AnswerTypes:   []string{"TRUE_FALSE"},
	}))

	var stages []string
	for {
		var raw map[string]any
		require.NoError(t, conn.ReadJSON(&raw))
		if raw["event"] == string(ws.EventProgress) {
			stages = append(stages, raw["stage"].(string))
			continue
		}
		require.Equal(t, string(ws.EventGenerated), raw["event"])
		gen := raw["generation"].(map[string]any)
		assert.Equal(t, "TRUE_FALSE", gen["answer_type"])
		assert.True(t, strings.HasSuffix(gen["text"].(string), "정답: O"))
		break
	}
	assert.Equal(t, []string{"generating", "done"}, stages)

	require.NoError(t, conn.WriteJSON(map[string]string{"action": "dance"}))
	require.NoError(t, conn.ReadJSON(&errResp))
	assert.Equal(t, string(response.ErrInvalidPayload), errResp.Code)
}
