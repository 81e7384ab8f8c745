package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	models "FxSignals/internal/domain/models"
	"FxSignals/internal/service/ratelimit"
	"FxSignals/internal/usecase"
	xhttp "FxSignals/pkg/http"
	xlogger "FxSignals/pkg/logger"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const welcomeMessage = "Welcome to the Forex Trading Signals API"

// Options tune the HTTP surface.
type Options struct {
	// WaitTimeout bounds how long POST /api/signals?wait=true blocks.
	WaitTimeout time.Duration
	// AllowOrigins is checked on websocket upgrades. Empty means same origin only.
	AllowOrigins []string
}

// SignalsEchoHandler serves parameters, submissions and lifecycle snapshots.
type SignalsEchoHandler struct {
	logger   *xlogger.Logger
	ctrl     *usecase.Controller
	pub      *usecase.Publisher
	rec      *usecase.Recorder
	limiter  *ratelimit.Limiter
	opts     Options
	upgrader websocket.Upgrader
}

func NewSignalsEchoHandler(
	logger *xlogger.Logger,
	ctrl *usecase.Controller,
	pub *usecase.Publisher,
	rec *usecase.Recorder,
	limiter *ratelimit.Limiter,
	opts Options,
) *SignalsEchoHandler {
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 30 * time.Second
	}
	h := &SignalsEchoHandler{
		logger:  logger,
		ctrl:    ctrl,
		pub:     pub,
		rec:     rec,
		limiter: limiter,
		opts:    opts,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(opts.AllowOrigins),
	}
	return h
}

func (h *SignalsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Welcome)
	e.GET("/health", h.Health)

	g := e.Group("/api")
	g.GET("/params", h.GetParams)
	g.PUT("/params", h.UpdateParams)
	g.POST("/signals", h.Submit, h.rateLimit)
	g.GET("/state", h.State)
	g.GET("/history", h.History)
	g.GET("/history/:id", h.Outcome)
	g.GET("/stream", h.Stream)
}

func (h *SignalsEchoHandler) Welcome(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"message": welcomeMessage})
}

func (h *SignalsEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{
		"status": "ok",
		"phase":  string(h.ctrl.State().Phase),
	})
}

func (h *SignalsEchoHandler) GetParams(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.ctrl.Params().Snapshot())
}

// UpdateParams stores the given fields verbatim. Nothing is validated until submit.
func (h *SignalsEchoHandler) UpdateParams(c echo.Context) error {
	req := &models.UpdateParamsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	return xhttp.SuccessResponse(c, h.ctrl.Params().Apply(*req))
}

// Submit applies optional parameter overrides and starts a request.
func (h *SignalsEchoHandler) Submit(c echo.Context) error {
	req := &models.UpdateParamsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	sub, err := h.ctrl.SubmitWith(c.Request().Context(), *req)
	if err != nil {
		if errors.Is(err, models.ErrSubmissionInFlight) {
			return xhttp.AppErrorResponse(c, xhttp.ConflictError(err.Error()))
		}
		var se *models.SignalError
		if errors.As(err, &se) && se.Kind == models.KindValidation {
			return xhttp.BadRequestResponse(c, se.Fields)
		}
		h.logger.Error("submit failed", xlogger.Error(err))
		return xhttp.InternalServerErrorResponse(c)
	}

	if !xhttp.ParseBool(c.QueryParam("wait")) {
		return xhttp.AcceptedResponse(c, stateResponse(h.ctrl.State()))
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.opts.WaitTimeout)
	defer cancel()
	s, err := sub.Wait(ctx)
	if err != nil {
		h.logger.Debug("wait for submission ended early",
			xlogger.String("submission_id", sub.ID),
			xlogger.Error(err),
		)
		return xhttp.AcceptedResponse(c, stateResponse(h.ctrl.State()))
	}
	return xhttp.SuccessResponse(c, stateResponse(s))
}

func (h *SignalsEchoHandler) State(c echo.Context) error {
	return xhttp.SuccessResponse(c, stateResponse(h.ctrl.State()))
}

func (h *SignalsEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rows, err := h.rec.Recent(c.Request().Context(), req.N)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load history").WithError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

// Outcome returns the stored terminal outcome of one submission.
func (h *SignalsEchoHandler) Outcome(c echo.Context) error {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("id must be a submission id").WithParam("id", id))
	}

	o, err := h.rec.Outcome(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrOutcomeNotFound) {
			return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no outcome for this submission").WithParam("id", id))
		}
		h.logger.Error("outcome usecase error", xlogger.String("submission_id", id), xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("could not load outcome").WithError(err))
	}
	return xhttp.SuccessResponse(c, o)
}

func (h *SignalsEchoHandler) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many submissions, slow down"))
		}
		return next(c)
	}
}

func stateResponse(s models.State) models.StateResponse {
	return models.StateResponse{State: s, Visibility: usecase.VisibilityOf(s)}
}
