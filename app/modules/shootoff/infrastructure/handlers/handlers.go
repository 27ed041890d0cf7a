// Package shootoffhandlers exposes the engine's operations over HTTP. Each
// named domain failure maps to its own response code and machine-readable
// error code so the calling UI can explain why an action is unavailable.
package shootoffhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	shootoffservice "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/application"
	shootoffdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/shootoff/domain"
	standingsservice "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/application"
	standingsdomain "github.com/georgewallace/claytargettracker-sub002/app/modules/standings/domain"
	"github.com/georgewallace/claytargettracker-sub002/pkg/jwt"
)

// Handlers serves the shoot-off control surface.
type Handlers struct {
	shootOffs shootoffservice.Service
	standings standingsservice.Service
	logger    *slog.Logger
}

// NewHandlers creates the HTTP handlers.
func NewHandlers(shootOffs shootoffservice.Service, standings standingsservice.Service, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		shootOffs: shootOffs,
		standings: standings,
		logger:    logger,
	}
}

// Routes mounts the control surface. All routes require an authenticated
// operator; mutating routes additionally require a managing role.
func (h *Handlers) Routes(tokens jwt.Service, limiter *IPRateLimiter) chi.Router {
	r := chi.NewRouter()
	r.Use(RateLimit(limiter))
	r.Use(Authenticate(tokens))

	r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Post("/ties/detect", h.DetectTies)
		r.Get("/shootoffs", h.ListShootOffs)
	})

	r.Route("/shootoffs", func(r chi.Router) {
		r.Get("/{shootOffID}", h.GetShootOff)

		r.Group(func(r chi.Router) {
			r.Use(RequireManager)
			r.Post("/", h.CreateShootOff)
			r.Post("/{shootOffID}/start", h.StartShootOff)
			r.Post("/{shootOffID}/cancel", h.CancelShootOff)
			r.Post("/{shootOffID}/rounds", h.OpenRound)
			r.Post("/{shootOffID}/rounds/{roundID}/scores", h.RecordRoundScores)
			r.Post("/{shootOffID}/winner", h.DeclareWinner)
		})
	})

	return r
}

// detectTiesRequest is the tie-detection input.
type detectTiesRequest struct {
	DisciplineID       *uuid.UUID `json:"disciplineId,omitempty"`
	Scope              string     `json:"scope"`
	Places             []int      `json:"places"`
	TopN               int        `json:"topN"`
	PerfectScoreOnly   bool       `json:"perfectScoreOnly"`
	MaxAttainableScore int        `json:"maxAttainableScore"`
}

// DetectTies runs tie detection for a tournament's current standings.
func (h *Handlers) DetectTies(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuid.Parse(chi.URLParam(r, "tournamentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid tournament id")
		return
	}

	var req detectTiesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	scope := standingsdomain.Scope(req.Scope)
	if scope == "" {
		scope = standingsdomain.ScopeOverall
	}

	groups, err := h.standings.DetectTies(r.Context(), tournamentID, req.DisciplineID, scope, standingsdomain.TriggerPolicy{
		Places:             req.Places,
		TopN:               req.TopN,
		PerfectScoreOnly:   req.PerfectScoreOnly,
		MaxAttainableScore: req.MaxAttainableScore,
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"tieGroups": groups})
}

// createShootOffRequest is the shoot-off creation input.
type createShootOffRequest struct {
	TournamentID     uuid.UUID   `json:"tournamentId"`
	DisciplineID     *uuid.UUID  `json:"disciplineId,omitempty"`
	Position         int         `json:"position"`
	CompetitorIDs    []uuid.UUID `json:"competitorIds"`
	ClaimedTiedScore int         `json:"claimedTiedScore"`
	Format           string      `json:"format"`
}

// CreateShootOff creates a pending shoot-off for a verified tie.
func (h *Handlers) CreateShootOff(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	var req createShootOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	view, err := h.shootOffs.CreateShootOff(r.Context(), actor, shootoffservice.CreateShootOffInput{
		TournamentID:     req.TournamentID,
		DisciplineID:     req.DisciplineID,
		Position:         req.Position,
		CompetitorIDs:    req.CompetitorIDs,
		ClaimedTiedScore: req.ClaimedTiedScore,
		Format:           shootoffdomain.Format(req.Format),
	})
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, view)
}

// GetShootOff returns the full aggregate.
func (h *Handlers) GetShootOff(w http.ResponseWriter, r *http.Request) {
	shootOffID, err := uuid.Parse(chi.URLParam(r, "shootOffID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid shoot-off id")
		return
	}

	view, err := h.shootOffs.GetShootOff(r.Context(), shootOffID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// ListShootOffs lists a tournament's shoot-offs.
func (h *Handlers) ListShootOffs(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := uuid.Parse(chi.URLParam(r, "tournamentID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid tournament id")
		return
	}

	var status *shootoffdomain.Status
	if v := r.URL.Query().Get("status"); v != "" {
		st := shootoffdomain.Status(v)
		status = &st
	}

	views, err := h.shootOffs.ListShootOffs(r.Context(), tournamentID, status)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"shootOffs": views})
}

// StartShootOff moves a pending shoot-off to in_progress.
func (h *Handlers) StartShootOff(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.shootOffs.StartShootOff)
}

// CancelShootOff terminally cancels a shoot-off.
func (h *Handlers) CancelShootOff(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.shootOffs.CancelShootOff)
}

func (h *Handlers) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, actor shootoffservice.ActorContext, id uuid.UUID) (*shootoffservice.ShootOffView, error)) {
	actor, _ := ActorFromContext(r.Context())

	shootOffID, err := uuid.Parse(chi.URLParam(r, "shootOffID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid shoot-off id")
		return
	}

	view, err := op(r.Context(), actor, shootOffID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// OpenRound opens the next round.
func (h *Handlers) OpenRound(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	shootOffID, err := uuid.Parse(chi.URLParam(r, "shootOffID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid shoot-off id")
		return
	}

	round, err := h.shootOffs.OpenRound(r.Context(), actor, shootOffID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, round)
}

// recordScoresRequest is the round scoring input.
type recordScoresRequest struct {
	Scores []struct {
		ParticipantID uuid.UUID `json:"participantId"`
		TargetsHit    int       `json:"targetsHit"`
	} `json:"scores"`
}

// RecordRoundScores records the open round's scores and applies elimination.
func (h *Handlers) RecordRoundScores(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	shootOffID, err := uuid.Parse(chi.URLParam(r, "shootOffID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid shoot-off id")
		return
	}
	roundID, err := uuid.Parse(chi.URLParam(r, "roundID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid round id")
		return
	}

	var req recordScoresRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	scores := make([]shootoffservice.RoundScoreInput, 0, len(req.Scores))
	for _, sc := range req.Scores {
		scores = append(scores, shootoffservice.RoundScoreInput{
			ParticipantID: sc.ParticipantID,
			TargetsHit:    sc.TargetsHit,
		})
	}

	result, err := h.shootOffs.RecordRoundScores(r.Context(), actor, shootOffID, roundID, scores)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// declareWinnerRequest is the winner confirmation input.
type declareWinnerRequest struct {
	CompetitorID uuid.UUID `json:"competitorId"`
}

// DeclareWinner confirms the sole survivor and completes the shoot-off.
func (h *Handlers) DeclareWinner(w http.ResponseWriter, r *http.Request) {
	actor, _ := ActorFromContext(r.Context())

	shootOffID, err := uuid.Parse(chi.URLParam(r, "shootOffID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid shoot-off id")
		return
	}

	var req declareWinnerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
		return
	}

	view, err := h.shootOffs.DeclareWinner(r.Context(), actor, shootOffID, req.CompetitorID)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, view)
}

// serviceError maps service failures onto distinct response codes.
func (h *Handlers) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *shootoffservice.ValidationError
	var invalidTieErr *shootoffservice.InvalidTieError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, "validation_error", validationErr.Error())
	case errors.As(err, &invalidTieErr):
		writeError(w, http.StatusUnprocessableEntity, "invalid_tie", invalidTieErr.Error())
	case errors.Is(err, shootoffservice.ErrShootOffNotFound),
		errors.Is(err, shootoffservice.ErrRoundNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, shootoffservice.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	case errors.Is(err, shootoffservice.ErrPreviousRoundIncomplete):
		writeError(w, http.StatusConflict, "previous_round_incomplete", err.Error())
	case errors.Is(err, shootoffservice.ErrInsufficientActiveParticipants):
		writeError(w, http.StatusConflict, "insufficient_active_participants", err.Error())
	case errors.Is(err, shootoffservice.ErrRoundAlreadyCompleted):
		writeError(w, http.StatusConflict, "round_already_completed", err.Error())
	case errors.Is(err, shootoffservice.ErrNotSoleSurvivor):
		writeError(w, http.StatusConflict, "not_sole_survivor", err.Error())
	case errors.Is(err, shootoffservice.ErrAlreadyDecided):
		writeError(w, http.StatusConflict, "already_decided", err.Error())
	case errors.Is(err, shootoffservice.ErrWinnerNotParticipant),
		errors.Is(err, shootoffservice.ErrWinnerEliminated):
		writeError(w, http.StatusConflict, "invalid_winner", err.Error())
	case errors.Is(err, shootoffservice.ErrConflict):
		// Retryable: the caller should re-fetch current state and retry.
		writeError(w, http.StatusConflict, "concurrent_modification", err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "Unhandled service error", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
