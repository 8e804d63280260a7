// Package httpapi serves the planner over JSON with gin.
package httpapi

import (
	"github.com/rs/zerolog"

	"household-planner/internal/service"
)

// Services are the use cases the API exposes.
type Services struct {
	Members  *service.MemberService
	Tasks    *service.TaskService
	Ledger   *service.LedgerService
	Insights *service.InsightsService
	Rollover *service.RolloverService
	Gate     *service.RolloverGate
}

type Handler struct {
	logger        zerolog.Logger
	svc           Services
	adminPassword string
}

func New(logger zerolog.Logger, svc Services, adminPassword string) *Handler {
	return &Handler{
		logger:        logger.With().Str("component", "http").Logger(),
		svc:           svc,
		adminPassword: adminPassword,
	}
}
