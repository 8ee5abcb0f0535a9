package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nova-wellness/nova/internal/app/expr"
	"github.com/nova-wellness/nova/internal/domain"
)

const defaultListLimit = 50

// ─── Users ──────────────────────────────────────────────────────────────────

type createUserRequest struct {
	UserID string `json:"user_id,omitempty"`
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.UserID == "" {
		req.UserID = uuid.NewString()
	}

	state := domain.NewGamificationState(req.UserID, time.Now())
	if err := s.users.CreateUser(state); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusCreated, state)
}

func (s *Server) handleGamification(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	state, err := s.users.GetGamification(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeData(w, http.StatusOK, state)
}

// ─── Activities ─────────────────────────────────────────────────────────────

type logActivityRequest struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req logActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.logger.Log(userID, domain.ActivityType(req.Type), req.Value)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, domain.ErrUnknownActivityType),
			errors.Is(err, domain.ErrNegativeValue):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeData(w, http.StatusCreated, res)
}

func (s *Server) handleListActivities(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	activities, err := s.logger.History(userID, queryLimit(r))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"activities": activities,
	})
}

// ─── Rewards ────────────────────────────────────────────────────────────────

func (s *Server) handleListRewards(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	state, err := s.users.GetGamification(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if state == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	entries, err := s.rewards.History(userID, queryLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"balance": state.NovaCoins,
		"entries": entries,
	})
}

// ─── Quests ─────────────────────────────────────────────────────────────────

type createQuestRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Condition   string           `json:"condition"`
	RewardCoins int64            `json:"reward_coins"`
	Badge       *domain.BadgeDef `json:"badge,omitempty"`
}

func (s *Server) handleCreateQuest(w http.ResponseWriter, r *http.Request) {
	var req createQuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	q, err := s.catalog.Create(domain.Quest{
		Title:       req.Title,
		Description: req.Description,
		Condition:   req.Condition,
		RewardCoins: req.RewardCoins,
		Badge:       req.Badge,
		IsActive:    true,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrQuestExists):
			writeError(w, http.StatusConflict, err.Error())
		case isQuestValidationError(err):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeData(w, http.StatusCreated, q)
}

func isQuestValidationError(err error) bool {
	var parseErr *expr.ParseError
	return errors.Is(err, domain.ErrQuestTitleMissing) ||
		errors.Is(err, domain.ErrEmptyCondition) ||
		errors.Is(err, domain.ErrNegativeReward) ||
		errors.As(err, &parseErr)
}

func (s *Server) handleListQuests(w http.ResponseWriter, r *http.Request) {
	quests, err := s.catalog.ListActive()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, map[string]interface{}{
		"quests": quests,
	})
}

func (s *Server) handleGetQuest(w http.ResponseWriter, r *http.Request) {
	q, err := s.catalog.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrQuestNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, q)
}

// queryLimit parses ?limit=, defaulting and clamping to sane bounds.
func queryLimit(r *http.Request) int {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	return limit
}
