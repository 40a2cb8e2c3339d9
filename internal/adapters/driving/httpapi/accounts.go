package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/custodia-labs/docqa/internal/core/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type newChatRequest struct {
	Question string `json:"question"`
	Email    string `json:"email"`
}

type recentChatsRequest struct {
	Email string `json:"email"`
}

type chatJSON struct {
	ChatID    int64     `json:"chat_id"`
	Title     string    `json:"title"`
	UserEmail string    `json:"user_email"`
	Messages  []string  `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
}

type messagesRequest struct {
	Messages []string `json:"messages"`
}

type dependencyJSON struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

type healthResponse struct {
	Status    map[string]bool           `json:"status"`
	UptimeSec int                       `json:"uptime_sec"`
	Checks    map[string]dependencyJSON `json:"checks"`
	Time      string                    `json:"time"`
}

func (s *Server) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	user, err := s.services.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		return c.JSON(http.StatusForbidden, map[string]string{"Error": "Invalid credentials"})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, loginResponse{Name: user.Username, Email: user.Email, Role: user.Role})
}

func (s *Server) health(c echo.Context) error {
	report := s.services.Health.Check(c.Request().Context())

	resp := healthResponse{
		Status:    map[string]bool{"ok": report.OK},
		UptimeSec: int(report.Uptime.Seconds()),
		Checks:    make(map[string]dependencyJSON, len(report.Checks)),
		Time:      report.Time.Format(time.RFC3339),
	}
	for name, st := range report.Checks {
		resp.Checks[name] = dependencyJSON{OK: st.OK, Err: st.Error}
	}

	status := http.StatusOK
	if !report.OK {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, resp)
}

func (s *Server) newChat(c echo.Context) error {
	var req newChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	id, err := s.services.Chat.Create(c.Request().Context(), req.Email, req.Question)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, map[string]any{"message": "Insert successful", "chatId": id})
}

func (s *Server) recentChats(c echo.Context) error {
	var req recentChatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	chats, err := s.services.Chat.Recent(c.Request().Context(), req.Email)
	if err != nil {
		return err
	}

	out := make([]chatJSON, len(chats))
	for i, ch := range chats {
		out[i] = chatJSON{
			ChatID:    ch.ID,
			Title:     ch.Title,
			UserEmail: ch.UserEmail,
			Messages:  ch.Messages,
			CreatedAt: ch.CreatedAt,
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"chats": out})
}

func (s *Server) chatHistory(c echo.Context) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}

	messages, err := s.services.Chat.History(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if messages == nil {
		messages = []string{}
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": messages})
}

func (s *Server) appendChatHistory(c echo.Context) error {
	id, err := chatID(c)
	if err != nil {
		return err
	}
	var req messagesRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid json")
	}

	updated, err := s.services.Chat.Append(c.Request().Context(), id, req.Messages)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{"chatId": id, "updated": updated})
}

func chatID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "chat id must be an integer")
	}
	return id, nil
}
