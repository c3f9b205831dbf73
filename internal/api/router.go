package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/meridianbank/core-banking/internal/api/handler"
	"github.com/meridianbank/core-banking/internal/api/middleware"
	"github.com/meridianbank/core-banking/internal/core/ports"
	"github.com/meridianbank/core-banking/internal/core/rbac"
)

// Dependencies carries everything the router needs. Services are assembled
// in main so their lifecycles (audit dispatcher in particular) are owned
// there.
type Dependencies struct {
	Auth      ports.AuthService
	Guard     ports.Guard
	Accounts  ports.AccountService
	Transfers ports.TransferService
	Audit     ports.AuditService
	Users     ports.UserService

	Mongo  *mongo.Database
	Redis  *redis.Client
	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("banking"))

	authed := middleware.Auth(deps.Guard)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	rbacHandler := handler.NewRBACHandler()
	accountHandler := handler.NewAccountHandler(deps.Accounts)
	transferHandler := handler.NewTransferHandler(deps.Transfers)
	auditHandler := handler.NewAuditHandler(deps.Audit)
	adminHandler := handler.NewAdminHandler(deps.Users)

	// --- Auth ---
	e.POST("/api/auth/register", authHandler.Register)
	e.POST("/api/auth/login", authHandler.Login)
	e.POST("/api/auth/validate", authHandler.Validate, authed)
	e.POST("/api/auth/change-password", authHandler.ChangePassword, authed,
		middleware.Require(deps.Guard, rbac.ActionManageOwnProfile))

	// --- RBAC introspection (diagnostic, read-only) ---
	e.POST("/api/rbac/check", rbacHandler.Check)
	e.GET("/api/rbac/permissions/:role", rbacHandler.Permissions)

	// --- Accounts ---
	e.POST("/api/accounts", accountHandler.Create, authed,
		middleware.Require(deps.Guard, rbac.ActionCreateAccounts))
	e.GET("/api/accounts", accountHandler.List, authed,
		middleware.RequireAny(deps.Guard, rbac.ActionViewOwnAccounts, rbac.ActionViewAllAccounts))
	e.PATCH("/api/accounts/:id/status", accountHandler.UpdateStatus, authed,
		middleware.Require(deps.Guard, rbac.ActionFreezeAccounts))

	// --- Transfers ---
	e.POST("/api/transfers/internal", transferHandler.Internal, authed,
		middleware.Require(deps.Guard, rbac.ActionInternalTransfers))
	e.POST("/api/transfers/external", transferHandler.External, authed,
		middleware.Require(deps.Guard, rbac.ActionExternalTransfers))
	e.GET("/api/transactions", transferHandler.ListTransactions, authed,
		middleware.RequireAny(deps.Guard, rbac.ActionViewOwnTxns, rbac.ActionViewAllTxns))

	// --- Audit ledger ---
	e.POST("/api/audit/log", auditHandler.Record, authed)
	e.GET("/api/audit/logs", auditHandler.List, authed,
		middleware.Require(deps.Guard, rbac.ActionViewAuditLogs))
	e.GET("/api/audit/logs/:id/verify", auditHandler.Verify, authed,
		middleware.Require(deps.Guard, rbac.ActionViewAuditLogs))

	// --- User administration ---
	e.GET("/api/admin/users", adminHandler.ListUsers, authed,
		middleware.Require(deps.Guard, rbac.ActionManageUserRoles))
	e.POST("/api/admin/users", adminHandler.CreateUser, authed,
		middleware.Require(deps.Guard, rbac.ActionManageUserRoles))
	e.PATCH("/api/admin/users/:id/role", adminHandler.UpdateUserRole, authed,
		middleware.Require(deps.Guard, rbac.ActionManageUserRoles))

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
