package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/stemsi/musiq-backend/internal/response"
	"github.com/stemsi/musiq-backend/internal/service"
	ws "github.com/stemsi/musiq-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams generation progress over a WebSocket.
type WSHandler struct {
	questionService *service.QuestionService
	mediaService    *service.MediaService
	log             zerolog.Logger
	upgrader        websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(questionService *service.QuestionService, mediaService *service.MediaService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		questionService: questionService,
		mediaService:    mediaService,
		log:             log.With().Str("component", "ws_handler").Logger(),
		upgrader:        buildUpgrader(allowedOrigins),
	}
}

// GenerateStream godoc
// WS /ws/v1/generate
// Upgrades to WebSocket. Each generate action streams progress events and
// ends with a generated event; ping is answered with pong.
func (h *WSHandler) GenerateStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("remote_ip", c.ClientIP()).Logger()
	wsLog.Debug().Msg("Client connected")

	for {
		raw, err := ws.ReadMessage(conn)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		var env ws.RequestEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			h.writeCode(conn, response.ErrInvalidPayload)
			continue
		}

		switch env.Action {
		case ws.ActionPing:
			_ = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		case ws.ActionGenerate:
			var req ws.GenerateRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				h.writeCode(conn, response.ErrInvalidPayload)
				continue
			}
			if err := h.handleGenerate(c, conn, &req); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		default:
			wsLog.Warn().Str("action", string(env.Action)).Msg("Unknown action")
			_ = ws.WriteError(conn, string(response.ErrInvalidPayload), "unknown action: "+string(env.Action))
		}
	}
}

// handleGenerate runs one generation and streams its stages. It returns an
// error only when the connection can no longer be written to.
func (h *WSHandler) handleGenerate(c *gin.Context, conn *websocket.Conn, req *ws.GenerateRequest) error {
	in := service.GenerateInput{
		QuestionTypes: req.QuestionTypes,
		AnswerTypes:   req.AnswerTypes,
	}
	if err := resolveUploads(h.mediaService, &in, req.AudioUploadID, req.ScoreUploadID); err != nil {
		_, code := errorCode(err)
		return h.writeCode(conn, code)
	}

	var writeErr error
	progress := func(stage service.Stage) {
		if writeErr != nil {
			return
		}
		writeErr = ws.WriteTyped(conn, ws.ProgressResponse{Event: ws.EventProgress, Stage: string(stage)})
	}

	g, err := h.questionService.Generate(c.Request.Context(), in, progress)
	if err != nil {
		_, code := errorCode(err)
		if code == response.ErrInternal {
			h.log.Error().Err(err).Msg("Generation error")
		}
		return h.writeCode(conn, code)
	}
	if writeErr != nil {
		return writeErr
	}

	return ws.WriteTyped(conn, ws.GeneratedResponse{
		Event:       ws.EventGenerated,
		Generation:  g,
		DocumentURL: documentURL(g.ID),
	})
}

func (h *WSHandler) writeCode(conn *websocket.Conn, code response.ErrCode) error {
	return ws.WriteError(conn, string(code), response.GetMessage(code))
}
