package http

import (
	"log/slog"
	"net/http"

	"parcellocker/internal/core/application/usecases/commands"
	"parcellocker/internal/core/application/usecases/queries"
	"parcellocker/internal/core/domain/model/kernel"
	"parcellocker/internal/core/domain/model/locker"
	"parcellocker/internal/core/domain/services"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers are the use cases the HTTP API exposes.
type Handlers struct {
	ProvisionLocker          commands.ProvisionLockerCommandHandler
	SetLockerStatus          commands.SetLockerStatusCommandHandler
	DepositParcel            commands.DepositParcelCommandHandler
	PickUpParcel             commands.PickUpParcelCommandHandler
	RetractParcel            commands.RetractParcelCommandHandler
	MarkParcelMissing        commands.MarkParcelMissingCommandHandler
	DisputePickup            commands.DisputePickupCommandHandler
	RequestPinRegeneration   commands.RequestPinRegenerationCommandHandler
	RequestTokenRegeneration commands.RequestTokenRegenerationCommandHandler
	RedeemGenerationToken    commands.RedeemGenerationTokenCommandHandler
	ForceReissuePin          commands.ForceReissuePinCommandHandler

	GetParcel   queries.GetParcelQueryHandler
	ListLockers queries.ListLockersQueryHandler
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	handlers Handlers
	logger   *slog.Logger
}

func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger.With("component", "http"),
	}
}

// Register mounts every route on e. Requests under /api/v1 are validated
// against the OpenAPI document first; endpoints that accept or hand out a
// secret then go through limiter.
func (s *Server) Register(e *echo.Echo, limiter *RateLimiter) error {
	doc, err := OpenAPI()
	if err != nil {
		return err
	}
	validate, err := requestValidator(doc)
	if err != nil {
		return err
	}

	e.GET("/health", s.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1", validate)
	throttled := limiter.Middleware()

	api.GET("/lockers", s.GetLockers)
	api.POST("/lockers", s.CreateLocker)
	api.PUT("/lockers/:id/status", s.SetLockerStatus)

	api.POST("/parcels", s.CreateParcel)
	api.GET("/parcels/:id", s.GetParcel)
	api.POST("/parcels/:id/pickup", s.PickUpParcel, throttled)
	api.POST("/parcels/:id/retract", s.RetractParcel)
	api.POST("/parcels/:id/missing", s.MarkParcelMissing)
	api.POST("/parcels/:id/dispute", s.DisputePickup, throttled)
	api.POST("/parcels/:id/pin/regenerate", s.RegeneratePin, throttled)
	api.POST("/parcels/:id/pin/reissue", s.ForceReissuePin)
	api.POST("/parcels/:id/token/regenerate", s.RegenerateToken, throttled)
	api.POST("/parcels/:id/token/redeem", s.RedeemToken, throttled)
	return nil
}

func (s *Server) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GetLockers handles GET /api/v1/lockers.
func (s *Server) GetLockers(c echo.Context) error {
	lockers, err := s.handlers.ListLockers.Handle(c.Request().Context(), queries.NewListLockersQuery())
	if err != nil {
		return s.fail(c, err)
	}

	response := make([]Locker, len(lockers))
	for i, l := range lockers {
		response[i] = Locker{ID: l.ID, Label: l.Label, Size: l.Size, Status: l.Status}
	}
	return c.JSON(http.StatusOK, response)
}

// CreateLocker handles POST /api/v1/lockers.
func (s *Server) CreateLocker(c echo.Context) error {
	var body NewLocker
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	size, err := locker.ParseSizeClass(body.Size)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewProvisionLockerCommand(body.ID, body.Label, size)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.ProvisionLocker.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusCreated)
}

// SetLockerStatus handles PUT /api/v1/lockers/:id/status.
func (s *Server) SetLockerStatus(c echo.Context) error {
	id, err := lockerID(c)
	if err != nil {
		return badRequest(c, "invalid locker id")
	}

	var body LockerStatusChange
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	target, err := locker.ParseStatus(body.Status)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewSetLockerStatusCommand(id, target, body.Admin)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.SetLockerStatus.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateParcel handles POST /api/v1/parcels: reserve a locker and deposit.
func (s *Server) CreateParcel(c echo.Context) error {
	var body NewParcel
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	size, err := locker.ParseSizeClass(body.Size)
	if err != nil {
		return s.fail(c, err)
	}

	mode := services.DeliverPIN
	if body.Delivery == "token" {
		mode = services.DeliverToken
	}

	cmd, err := commands.NewDepositParcelCommand(size, body.Recipient, mode)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.DepositParcel.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusCreated, DepositedParcel{
		ParcelID:    result.ParcelID.String(),
		LockerID:    result.LockerID,
		LockerLabel: result.LockerLabel,
		LockerSize:  result.LockerSize.String(),
		DepositedAt: result.DepositedAt,
		PINExpiry:   result.PINExpiry,
		TokenExpiry: result.TokenExpiry,
		Notified:    result.Notified,
	})
}

// GetParcel handles GET /api/v1/parcels/:id.
func (s *Server) GetParcel(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	query, err := queries.NewGetParcelQuery(id)
	if err != nil {
		return s.fail(c, err)
	}

	view, err := s.handlers.GetParcel.Handle(c.Request().Context(), query)
	if err != nil {
		return s.fail(c, err)
	}

	return c.JSON(http.StatusOK, Parcel{
		ID:              view.ID.String(),
		Status:          view.Status,
		Size:            view.Size,
		LockerID:        view.LockerID,
		LockerLabel:     view.LockerLabel,
		DepositedAt:     view.DepositedAt,
		PickedUpAt:      view.PickedUpAt,
		ReminderSentAt:  view.ReminderSentAt,
		CredentialState: view.CredentialState,
		PINExpiry:       view.PINExpiry,
		PINExpired:      view.PINExpired,
		TokenExpiry:     view.TokenExpiry,
	})
}

// PickUpParcel handles POST /api/v1/parcels/:id/pickup.
func (s *Server) PickUpParcel(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body PickUp
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewPickUpParcelCommand(id, body.PIN)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.PickUpParcel.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, PickedUp{LockerID: result.LockerID, LockerLabel: result.LockerLabel})
}

// RetractParcel handles POST /api/v1/parcels/:id/retract.
func (s *Server) RetractParcel(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	cmd, err := commands.NewRetractParcelCommand(id)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.RetractParcel.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// MarkParcelMissing handles POST /api/v1/parcels/:id/missing.
func (s *Server) MarkParcelMissing(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body MissingReport
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewMarkParcelMissingCommand(id, body.ReportedBy)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.MarkParcelMissing.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DisputePickup handles POST /api/v1/parcels/:id/dispute.
func (s *Server) DisputePickup(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body Claim
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewDisputePickupCommand(id, body.Identifier)
	if err != nil {
		return s.fail(c, err)
	}

	if err = s.handlers.DisputePickup.Handle(c.Request().Context(), cmd); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// RegeneratePin handles POST /api/v1/parcels/:id/pin/regenerate. The new PIN
// goes to the recipient only.
func (s *Server) RegeneratePin(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body Claim
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewRequestPinRegenerationCommand(id, body.Identifier)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.RequestPinRegeneration.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusAccepted, Regenerated{Expiry: result.Expiry, Notified: result.Notified})
}

// RegenerateToken handles POST /api/v1/parcels/:id/token/regenerate.
func (s *Server) RegenerateToken(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body Claim
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewRequestTokenRegenerationCommand(id, body.Identifier)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.RequestTokenRegeneration.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusAccepted, Regenerated{Expiry: result.Expiry, Notified: result.Notified})
}

// RedeemToken handles POST /api/v1/parcels/:id/token/redeem. Whoever holds the
// token receives the PIN directly.
func (s *Server) RedeemToken(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body Redeem
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewRedeemGenerationTokenCommand(id, body.Token)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.RedeemGenerationToken.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, RedeemedPIN{PIN: result.PIN, Expiry: result.Expiry})
}

// ForceReissuePin handles POST /api/v1/parcels/:id/pin/reissue (admin).
func (s *Server) ForceReissuePin(c echo.Context) error {
	id, err := parcelID(c)
	if err != nil {
		return s.fail(c, err)
	}

	var body AdminAction
	if err = c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	cmd, err := commands.NewForceReissuePinCommand(id, body.Admin)
	if err != nil {
		return s.fail(c, err)
	}

	result, err := s.handlers.ForceReissuePin.Handle(c.Request().Context(), cmd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusAccepted, Regenerated{Expiry: result.Expiry, Notified: result.Notified})
}

var pathParam = runtime.BindStyledParameterOptions{
	ParamLocation: runtime.ParamLocationPath,
	Explode:       false,
	Required:      true,
}

func lockerID(c echo.Context) (int, error) {
	var id int
	err := runtime.BindStyledParameterWithOptions("simple", "id", c.Param("id"), &id, pathParam)
	return id, err
}

// parcelID binds the :id path parameter. A malformed id is reported as not
// found, like any unknown parcel.
func parcelID(c echo.Context) (kernel.UUID, error) {
	raw := c.Param("id")
	var bound openapi_types.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", "id", raw, &bound, pathParam); err != nil {
		return kernel.UUID{}, errNotFound(raw)
	}
	id, err := kernel.UUIDFromBytes(bound[:])
	if err != nil {
		return kernel.UUID{}, errNotFound(raw)
	}
	return id, nil
}
