package controller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"dealagent-be/internal/dto"
	"dealagent-be/internal/pkg/serverutils"
	"dealagent-be/internal/service"
	"dealagent-be/pkg/agent"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetChatHistory(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	StreamChat(ctx *fiber.Ctx) error
	StreamChatWS(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/session", c.CreateSession)
	h.Get("/session", c.GetAllSessions)
	h.Get("/session/:id/history", c.GetChatHistory)
	h.Delete("/session/:id", c.DeleteSession)
	h.Post("/stream", c.StreamChat)

	// Websocket handshakes cannot carry the Authorization header from a
	// browser, so /ws authenticates via query token outside the middleware.
	r.Get("/chat/v1/ws", c.StreamChatWS)
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.chatService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *chatController) GetAllSessions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.chatService.GetAllSessions(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", res))
}

func (c *chatController) GetChatHistory(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.chatService.GetChatHistory(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get chat history", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	if err := c.chatService.DeleteSession(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

// StreamChat answers one question over SSE. Content chunks arrive as
// `data: {"token": ...}` frames, followed by a `{"done": true}` frame, then a
// final frame with the full answer and followup suggestions.
func (c *chatController) StreamChat(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.StreamChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set("Content-Type", "text/event-stream")
	ctx.Set("Cache-Control", "no-cache")
	ctx.Set("Connection", "keep-alive")
	ctx.Set("X-Accel-Buffering", "no")

	// The writer runs after this handler returns, so it must not touch the
	// fiber context. Everything it needs is captured above.
	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		writeEvent := func(event dto.StreamChatEvent) {
			payload, err := json.Marshal(event)
			if err != nil {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			w.Flush()
		}

		onToken := func(token string) {
			if token == agent.DoneToken {
				writeEvent(dto.StreamChatEvent{Done: true})
				return
			}
			writeEvent(dto.StreamChatEvent{Token: token})
		}

		res, err := c.chatService.StreamChat(context.Background(), userId, &req, onToken)
		if err != nil {
			fmt.Fprintf(w, "data: {\"error\": %q}\n\n", err.Error())
			w.Flush()
			return
		}

		writeEvent(dto.StreamChatEvent{
			Final:     true,
			Answer:    res.Answer,
			Found:     res.Found,
			Followups: res.Followups,
		})
	}))

	return nil
}

// StreamChatWS serves the websocket variant of StreamChat. Each text frame
// from the client is one StreamChatRequest; the answer comes back as the same
// token/done/final event frames the SSE endpoint emits.
func (c *chatController) StreamChatWS(ctx *fiber.Ctx) error {
	tokenStr := ctx.Query("token")
	if tokenStr == "" {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIdStr, ok := claims["user_id"].(string)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		for {
			var req dto.StreamChatRequest
			if err := conn.ReadJSON(&req); err != nil {
				return
			}
			if err := serverutils.ValidateRequest(req); err != nil {
				conn.WriteJSON(fiber.Map{"error": err.Error()})
				continue
			}

			onToken := func(tok string) {
				if tok == agent.DoneToken {
					conn.WriteJSON(dto.StreamChatEvent{Done: true})
					return
				}
				conn.WriteJSON(dto.StreamChatEvent{Token: tok})
			}

			res, err := c.chatService.StreamChat(context.Background(), userId, &req, onToken)
			if err != nil {
				conn.WriteJSON(fiber.Map{"error": err.Error()})
				continue
			}

			conn.WriteJSON(dto.StreamChatEvent{
				Final:     true,
				Answer:    res.Answer,
				Found:     res.Found,
				Followups: res.Followups,
			})
		}
	})(ctx)
}
