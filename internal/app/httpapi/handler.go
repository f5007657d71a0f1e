// Package httpapi exposes the REST surface consumed by the web and mobile
// clients.
package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/intizom/intizom/internal/app"
	"github.com/intizom/intizom/internal/app/domain/user"
	"github.com/intizom/intizom/internal/app/metrics"
	"github.com/intizom/intizom/internal/app/services/finance"
	"github.com/intizom/intizom/internal/app/services/goals"
	"github.com/intizom/intizom/internal/app/services/habits"
	"github.com/intizom/intizom/internal/app/services/principles"
	"github.com/intizom/intizom/internal/app/services/tasks"
	"github.com/intizom/intizom/internal/config"
	"github.com/intizom/intizom/internal/errors"
	"github.com/intizom/intizom/internal/middleware"
	"github.com/intizom/intizom/pkg/logger"
)

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app *app.Application
	log *logger.Logger
}

// NewHandler returns the router exposing the REST API. Disabled features are
// simply not mounted.
func NewHandler(application *app.Application, features config.Features, log *logger.Logger) http.Handler {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log}

	r := chi.NewRouter()

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/register", h.register)
		r.Post("/auth/login", h.login)
		r.Post("/auth/refresh", h.refresh)

		r.Get("/me", h.me)
		r.Put("/me", h.updateMe)
		r.Post("/me/pin", h.setPIN)
		r.Post("/me/pin/verify", h.verifyPIN)
		r.Delete("/me/pin", h.clearPIN)

		if features.Habits {
			r.Route("/habits", func(r chi.Router) {
				r.Use(h.planGate)
				r.Get("/", h.listHabits)
				r.Post("/", h.createHabit)
				r.Get("/month", h.habitsMonth)
				r.Get("/{id}", h.getHabit)
				r.Patch("/{id}", h.updateHabit)
				r.Delete("/{id}", h.deleteHabit)
				r.Post("/{id}/complete", h.completeHabit)
				r.Delete("/{id}/complete", h.uncompleteHabit)
				r.Post("/{id}/toggle-date", h.toggleHabitDate)
				r.Post("/{id}/pause", h.pauseHabit)
				r.Post("/{id}/resume", h.resumeHabit)
			})
		}

		if features.Tasks {
			r.Route("/tasks", func(r chi.Router) {
				r.Use(h.planGate)
				r.Get("/", h.listTasks)
				r.Post("/", h.createTask)
				r.Get("/{id}", h.getTask)
				r.Patch("/{id}", h.updateTask)
				r.Delete("/{id}", h.deleteTask)
				r.Post("/{id}/move", h.moveTask)
				r.Post("/{id}/subtasks", h.addSubTask)
				r.Patch("/{id}/subtasks/{subID}", h.updateSubTask)
				r.Delete("/{id}/subtasks/{subID}", h.deleteSubTask)
				r.Post("/{id}/subtasks/{subID}/toggle", h.toggleSubTask)
			})
		}

		if features.Goals {
			r.Route("/goals", func(r chi.Router) {
				r.Use(h.planGate)
				r.Get("/", h.listGoals)
				r.Post("/", h.createGoal)
				r.Get("/{id}", h.getGoal)
				r.Patch("/{id}", h.updateGoal)
				r.Delete("/{id}", h.deleteGoal)
				r.Put("/{id}/progress", h.setGoalProgress)
				r.Post("/{id}/milestones", h.addMilestone)
				r.Patch("/{id}/milestones/{mid}", h.updateMilestone)
				r.Delete("/{id}/milestones/{mid}", h.deleteMilestone)
				r.Post("/{id}/milestones/{mid}/toggle", h.toggleMilestone)
			})
		}

		if features.Finance {
			r.Route("/transactions", func(r chi.Router) {
				r.Use(h.planGate)
				r.Get("/", h.listTransactions)
				r.Post("/", h.createTransaction)
				r.Get("/stats", h.financeStats)
				r.Delete("/{id}", h.deleteTransaction)
			})
		}

		if features.Principles {
			r.Route("/principles", func(r chi.Router) {
				r.Use(h.planGate)
				r.Get("/", h.listPrinciples)
				r.Post("/", h.createPrinciple)
				r.Patch("/{id}", h.updatePrinciple)
				r.Delete("/{id}", h.deletePrinciple)
				r.Post("/{id}/check", h.togglePrinciple)
			})
		}

		if features.Notifications {
			r.Get("/notifications", h.listNotifications)
			r.Post("/notifications/{id}/read", h.readNotification)
		}

		r.Route("/admin", func(r chi.Router) {
			r.Use(h.adminOnly)
			r.Get("/users", h.adminListUsers)
			r.Delete("/users/{id}", h.adminDeleteUser)
			r.Post("/users/{id}/plan", h.adminSetPlan)
			r.Post("/broadcast", h.adminBroadcast)
			r.Post("/sweep-trials", h.adminSweepTrials)
		})
	})

	return r
}

// SkipAuthPaths lists the endpoints served without a bearer token.
func SkipAuthPaths() []string {
	return []string{
		"/healthz",
		"/metrics",
		"/api/v1/auth/register",
		"/api/v1/auth/login",
		"/api/v1/auth/refresh",
	}
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- auth -------------------------------------------------------------------

type authResponse struct {
	User         user.User `json:"user"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	u, pair, err := h.app.Users.Register(r.Context(), payload.Email, payload.Name, payload.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, authResponse{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, ExpiresAt: pair.ExpiresAt})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	u, pair, err := h.app.Users.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: u, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, ExpiresAt: pair.ExpiresAt})
}

func (h *handler) refresh(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	pair, err := h.app.Users.Refresh(r.Context(), payload.RefreshToken)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// --- profile ----------------------------------------------------------------

func (h *handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.app.Users.Get(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) updateMe(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	u, err := h.app.Users.UpdateName(r.Context(), middleware.GetUserID(r.Context()), payload.Name)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) setPIN(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	if err := h.app.Users.SetPIN(r.Context(), middleware.GetUserID(r.Context()), payload.PIN); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) verifyPIN(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	if err := h.app.Users.VerifyPIN(r.Context(), middleware.GetUserID(r.Context()), payload.PIN); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"valid": true})
}

func (h *handler) clearPIN(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PIN string `json:"pin"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	if err := h.app.Users.ClearPIN(r.Context(), middleware.GetUserID(r.Context()), payload.PIN); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- habits -----------------------------------------------------------------

func (h *handler) listHabits(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Habits.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) createHabit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Frequency   string `json:"frequency"`
		Color       string `json:"color"`
		Icon        string `json:"icon"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	created, err := h.app.Habits.Create(r.Context(), middleware.GetUserID(r.Context()), habits.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Frequency:   payload.Frequency,
		Color:       payload.Color,
		Icon:        payload.Icon,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getHabit(w http.ResponseWriter, r *http.Request) {
	ws, err := h.app.Habits.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *handler) updateHabit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		Frequency   *string `json:"frequency"`
		Color       *string `json:"color"`
		Icon        *string `json:"icon"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	updated, err := h.app.Habits.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), habits.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Category:    payload.Category,
		Frequency:   payload.Frequency,
		Color:       payload.Color,
		Icon:        payload.Icon,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteHabit(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Habits.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) completeHabit(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Note string `json:"note"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := decodeJSON(r.Body, &payload); err != nil {
			h.writeError(w, r, errors.Validation("invalid request body"))
			return
		}
	}
	ws, err := h.app.Habits.Complete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), payload.Note)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *handler) uncompleteHabit(w http.ResponseWriter, r *http.Request) {
	ws, err := h.app.Habits.Uncomplete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

func (h *handler) toggleHabitDate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Date string `json:"date"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	res, err := h.app.Habits.ToggleDate(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), payload.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handler) pauseHabit(w http.ResponseWriter, r *http.Request) {
	updated, err := h.app.Habits.Pause(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) resumeHabit(w http.ResponseWriter, r *http.Request) {
	updated, err := h.app.Habits.Resume(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) habitsMonth(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.writeError(w, r, errors.Validation("year query parameter is required"))
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil {
		h.writeError(w, r, errors.Validation("month query parameter is required"))
		return
	}
	view, err := h.app.Habits.MonthView(r.Context(), middleware.GetUserID(r.Context()), year, month)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// --- tasks ------------------------------------------------------------------

func (h *handler) listTasks(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Tasks.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) createTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Status      string     `json:"status"`
		Priority    string     `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		Position    int        `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	in := tasks.CreateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		Position:    payload.Position,
	}
	if payload.DueDate != nil {
		in.DueDate = *payload.DueDate
	}
	created, err := h.app.Tasks.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getTask(w http.ResponseWriter, r *http.Request) {
	detail, err := h.app.Tasks.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		Status      *string    `json:"status"`
		Priority    *string    `json:"priority"`
		DueDate     *time.Time `json:"due_date"`
		Position    *int       `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	updated, err := h.app.Tasks.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), tasks.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Status:      payload.Status,
		Priority:    payload.Priority,
		DueDate:     payload.DueDate,
		Position:    payload.Position,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Tasks.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) moveTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Status   string `json:"status"`
		Position int    `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	moved, err := h.app.Tasks.Move(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), payload.Status, payload.Position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

func (h *handler) addSubTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title    string `json:"title"`
		Position int    `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	created, err := h.app.Tasks.AddSubTask(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), payload.Title, payload.Position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateSubTask(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title    *string `json:"title"`
		Position *int    `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	updated, err := h.app.Tasks.UpdateSubTask(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "subID"), payload.Title, payload.Position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) toggleSubTask(w http.ResponseWriter, r *http.Request) {
	toggled, err := h.app.Tasks.ToggleSubTask(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "subID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}

func (h *handler) deleteSubTask(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Tasks.DeleteSubTask(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "subID")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- goals ------------------------------------------------------------------

func (h *handler) listGoals(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Goals.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) createGoal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		TargetDate  *time.Time `json:"target_date"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	in := goals.CreateInput{Title: payload.Title, Description: payload.Description}
	if payload.TargetDate != nil {
		in.TargetDate = *payload.TargetDate
	}
	created, err := h.app.Goals.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) getGoal(w http.ResponseWriter, r *http.Request) {
	detail, err := h.app.Goals.Get(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *handler) updateGoal(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       *string    `json:"title"`
		Description *string    `json:"description"`
		TargetDate  *time.Time `json:"target_date"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	updated, err := h.app.Goals.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), goals.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		TargetDate:  payload.TargetDate,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Goals.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) setGoalProgress(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Progress int `json:"progress"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	updated, err := h.app.Goals.SetProgress(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), payload.Progress)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) addMilestone(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title    string `json:"title"`
		Position int    `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	created, err := h.app.Goals.AddMilestone(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), payload.Title, payload.Position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updateMilestone(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title    *string `json:"title"`
		Position *int    `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	updated, err := h.app.Goals.UpdateMilestone(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "mid"), payload.Title, payload.Position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) toggleMilestone(w http.ResponseWriter, r *http.Request) {
	toggled, err := h.app.Goals.ToggleMilestone(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "mid"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toggled)
}

func (h *handler) deleteMilestone(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Goals.DeleteMilestone(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "mid")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- finance ----------------------------------------------------------------

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Finance.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Type       string     `json:"type"`
		Amount     int64      `json:"amount"`
		Category   string     `json:"category"`
		Note       string     `json:"note"`
		OccurredAt *time.Time `json:"occurred_at"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	in := finance.CreateInput{
		Type:     payload.Type,
		Amount:   payload.Amount,
		Category: payload.Category,
		Note:     payload.Note,
	}
	if payload.OccurredAt != nil {
		in.OccurredAt = *payload.OccurredAt
	}
	created, err := h.app.Finance.Create(r.Context(), middleware.GetUserID(r.Context()), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Finance.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) financeStats(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		h.writeError(w, r, errors.Validation("year query parameter is required"))
		return
	}
	stats, err := h.app.Finance.Stats(r.Context(), middleware.GetUserID(r.Context()), year)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- principles -------------------------------------------------------------

func (h *handler) listPrinciples(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Principles.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) createPrinciple(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Position    int    `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	created, err := h.app.Principles.Create(r.Context(), middleware.GetUserID(r.Context()), payload.Title, payload.Description, payload.Position)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) updatePrinciple(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Position    *int    `json:"position"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	updated, err := h.app.Principles.Update(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), principles.UpdateInput{
		Title:       payload.Title,
		Description: payload.Description,
		Position:    payload.Position,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deletePrinciple(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Principles.Delete(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) togglePrinciple(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Date string `json:"date"`
	}
	if r.Body != nil && r.ContentLength > 0 {
		if err := decodeJSON(r.Body, &payload); err != nil {
			h.writeError(w, r, errors.Validation("invalid request body"))
			return
		}
	}
	ws, err := h.app.Principles.ToggleCheck(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"), payload.Date)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ws)
}

// --- notifications ----------------------------------------------------------

func (h *handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	items, err := h.app.Notifications.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handler) readNotification(w http.ResponseWriter, r *http.Request) {
	n, err := h.app.Notifications.MarkRead(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// --- admin ------------------------------------------------------------------

func (h *handler) adminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.app.Users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *handler) adminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// adminSetPlan grants pro outright or extends the trial by a day count.
func (h *handler) adminSetPlan(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Plan string `json:"plan"`
		Days int    `json:"days"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	var (
		u   user.User
		err error
	)
	switch payload.Plan {
	case "pro":
		u, err = h.app.Subscriptions.GrantPro(r.Context(), chi.URLParam(r, "id"))
	case "trial":
		u, err = h.app.Subscriptions.ExtendTrial(r.Context(), chi.URLParam(r, "id"), payload.Days)
	default:
		err = errors.Validation("plan must be pro or trial")
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (h *handler) adminBroadcast(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Title string `json:"title"`
		Body  string `json:"body"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		h.writeError(w, r, errors.Validation("invalid request body"))
		return
	}
	sent, err := h.app.Notifications.Broadcast(r.Context(), payload.Title, payload.Body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"sent": sent})
}

func (h *handler) adminSweepTrials(w http.ResponseWriter, r *http.Request) {
	h.app.Sweeper.Sweep(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

// --- middleware -------------------------------------------------------------

// planGate denies mutating requests from accounts whose plan lapsed. Reads
// stay available so an expired user can still see their data.
func (h *handler) planGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		if err := h.app.Subscriptions.Gate(r.Context(), middleware.GetUserID(r.Context())); err != nil {
			h.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) adminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if middleware.GetUserRole(r.Context()) != string(user.RoleAdmin) {
			h.writeError(w, r, errors.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- helpers ----------------------------------------------------------------

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError renders the uniform error envelope. Only server-side failures
// are logged.
func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	se := errors.GetServiceError(err)
	if se == nil {
		se = errors.Internal("unexpected error", err)
	}
	if se.HTTPStatus >= http.StatusInternalServerError {
		h.log.WithError(err).
			WithField("path", r.URL.Path).
			WithField("method", r.Method).
			Error("request failed")
	}
	writeJSON(w, se.HTTPStatus, map[string]interface{}{
		"statusCode": se.HTTPStatus,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"path":       r.URL.Path,
		"message":    se.Message,
	})
}
