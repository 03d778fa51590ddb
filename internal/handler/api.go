package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/k-negishi/calendar-task-dashboard/internal/domain"
	"github.com/k-negishi/calendar-task-dashboard/internal/storage"
	"github.com/k-negishi/calendar-task-dashboard/internal/usecase"
)

type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type analyzeTaskRequest struct {
	TaskDescription string `json:"taskDescription"`
	UserEmail       string `json:"userEmail"`
	UserName        string `json:"userName"`
}

type analyzeTaskData struct {
	Title string `json:"title"`
}

type analyzeTaskResponse struct {
	Type domain.ItemType `json:"type"`
	Data analyzeTaskData `json:"data"`
	DBID int64           `json:"dbId"`
}

type todoResponse struct {
	ID         int64           `json:"id"`
	Title      string          `json:"title"`
	Priority   domain.Priority `json:"priority"`
	Completed  bool            `json:"completed"`
	ColorClass string          `json:"colorClass"`
}

type toggleTodoRequest struct {
	Completed bool `json:"completed"`
}

type createReminderRequest struct {
	Title     string `json:"title"`
	StartTime string `json:"startTime"`
	UserEmail string `json:"userEmail"`
	UserName  string `json:"userName"`
}

type reminderResponse struct {
	ID        int64           `json:"id"`
	Type      domain.ItemType `json:"type"`
	Title     string          `json:"title"`
	StartTime string          `json:"startTime"`
}

// ChatStatus GET /api/chat
func (h *Handler) ChatStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, chatResponse{Reply: usecase.ChatStatusReply})
}

// Chat POST /api/chat
// 生成AIへの接続に失敗した場合は 500 で表示用の返信を返す
func (h *Handler) Chat(c echo.Context) error {
	if h.chat == nil {
		return unavailable(c)
	}
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid request body")
	}

	reply, err := h.chat.Reply(c.Request().Context(), req.Messages)
	if err != nil {
		h.logger.Error("チャットの返信に失敗しました", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, chatResponse{Reply: reply})
	}
	return c.JSON(http.StatusOK, chatResponse{Reply: reply})
}

// AnalyzeTask POST /api/analyze-task
func (h *Handler) AnalyzeTask(c echo.Context) error {
	if h.tasks == nil {
		return unavailable(c)
	}
	var req analyzeTaskRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid request body")
	}

	result, err := h.tasks.Execute(c.Request().Context(), usecase.AnalyzeTaskInput{
		TaskDescription: req.TaskDescription,
		UserEmail:       req.UserEmail,
		UserName:        req.UserName,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrTaskDescriptionRequired) {
			return writeError(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("タスクの解析に失敗しました", zap.Error(err))
		return writeError(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, analyzeTaskResponse{
		Type: result.Type,
		Data: analyzeTaskData{Title: result.Title},
		DBID: result.DBID,
	})
}

// ListTodos GET /api/todos?email=
func (h *Handler) ListTodos(c echo.Context) error {
	if h.todos == nil {
		return unavailable(c)
	}

	views, err := h.todos.List(c.Request().Context(), c.QueryParam("email"))
	if err != nil {
		h.logger.Error("TODOの取得に失敗しました", zap.Error(err))
		return writeError(c, http.StatusInternalServerError, "failed to load todos")
	}

	resp := make([]todoResponse, 0, len(views))
	for _, v := range views {
		resp = append(resp, todoResponse{
			ID:         v.ID,
			Title:      v.Title,
			Priority:   v.Priority,
			Completed:  v.Completed,
			ColorClass: v.ColorClass,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// ToggleTodo POST /api/todos/:id/toggle
func (h *Handler) ToggleTodo(c echo.Context) error {
	if h.todos == nil {
		return unavailable(c)
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "invalid todo id")
	}
	var req toggleTodoRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid request body")
	}

	if err := h.todos.SetCompleted(c.Request().Context(), id, req.Completed); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return writeError(c, http.StatusNotFound, "todo not found")
		}
		h.logger.Error("TODOの更新に失敗しました", zap.Int64("id", id), zap.Error(err))
		return writeError(c, http.StatusInternalServerError, "failed to update todo")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"id": id, "completed": req.Completed})
}

// CreateReminder POST /api/reminders
func (h *Handler) CreateReminder(c echo.Context) error {
	if h.reminders == nil {
		return unavailable(c)
	}
	var req createReminderRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid request body")
	}
	start, err := time.Parse(time.RFC3339, req.StartTime)
	if err != nil {
		return writeError(c, http.StatusBadRequest, "startTime must be RFC3339")
	}

	item, err := h.reminders.CreateReminder(c.Request().Context(), usecase.CreateReminderInput{
		Title:     req.Title,
		StartTime: start,
		UserEmail: req.UserEmail,
		UserName:  req.UserName,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrReminderTitleRequired) {
			return writeError(c, http.StatusBadRequest, err.Error())
		}
		h.logger.Error("リマインダーの登録に失敗しました", zap.Error(err))
		return writeError(c, http.StatusInternalServerError, "failed to create reminder")
	}

	return c.JSON(http.StatusCreated, reminderResponse{
		ID:        item.ID,
		Type:      item.Type,
		Title:     item.Title,
		StartTime: start.In(h.location).Format(time.RFC3339),
	})
}
