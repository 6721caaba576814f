// Package api exposes the application over REST. Handlers stay thin:
// they decode the request, call a service or repository, and wrap the
// outcome in a uniform envelope.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"

	"minipaint/internal/config"
	"minipaint/internal/database/repositories"
	"minipaint/internal/services/backup"
	"minipaint/internal/services/drive"
	"minipaint/internal/services/guideform"
	"minipaint/internal/services/imaging"
	"minipaint/internal/services/progress"
	"minipaint/internal/services/pubsub"
	"minipaint/internal/services/session"
)

// Server holds the handler dependencies.
type Server struct {
	cfg *config.Config

	batchRepo   *repositories.BatchRepository
	paintRepo   *repositories.PaintRepository
	settingRepo *repositories.UserSettingRepository
	accessRepo  *repositories.AccessRepository

	sessions  *session.Service
	progress  *progress.Service
	guides    *guideform.Service
	backup    *backup.Service
	drive     *drive.Service
	optimizer *imaging.Optimizer
	pubsub    *pubsub.PubSub

	upgrader websocket.Upgrader
}

// Deps bundles everything a Server needs.
type Deps struct {
	Config      *config.Config
	BatchRepo   *repositories.BatchRepository
	PaintRepo   *repositories.PaintRepository
	SettingRepo *repositories.UserSettingRepository
	AccessRepo  *repositories.AccessRepository
	Sessions    *session.Service
	Progress    *progress.Service
	Guides      *guideform.Service
	Backup      *backup.Service
	Drive       *drive.Service
	Optimizer   *imaging.Optimizer
	PubSub      *pubsub.PubSub
}

// NewServer creates a Server from its dependencies.
func NewServer(deps Deps) *Server {
	return &Server{
		cfg:         deps.Config,
		batchRepo:   deps.BatchRepo,
		paintRepo:   deps.PaintRepo,
		settingRepo: deps.SettingRepo,
		accessRepo:  deps.AccessRepo,
		sessions:    deps.Sessions,
		progress:    deps.Progress,
		guides:      deps.Guides,
		backup:      deps.Backup,
		drive:       deps.Drive,
		optimizer:   deps.Optimizer,
		pubsub:      deps.PubSub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // Allow all origins for WebSocket
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   []string{s.cfg.CORSOrigin, "http://localhost:3000", "http://localhost:4000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		Debug:            s.cfg.IsDevelopment(),
	})
	router.Use(corsMiddleware.Handler)

	// Public routes.
	router.Post("/auth/register", s.handleRegister)
	router.Post("/auth/login", s.handleLogin)
	router.Get("/images/{fileID}", s.handleImageProxy)
	router.Get("/ws", s.handleWebSocket)

	// Authenticated routes.
	router.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Post("/auth/logout", s.handleLogout)
		r.Get("/auth/me", s.handleMe)

		r.Get("/batches", s.handleListBatches)
		r.Post("/batches", s.handleCreateBatch)
		r.Post("/batches/{batchID}/archive", s.handleArchiveBatch)
		r.Delete("/batches/{batchID}", s.handleDeleteBatch)
		r.Post("/batches/{batchID}/jobs", s.handleCreateJob)
		r.Put("/jobs/{jobID}/items", s.handleReplaceJobItems)
		r.Post("/jobs/{jobID}/start", s.handleStartJob)
		r.Post("/jobs/{jobID}/revert", s.handleRevertJob)
		r.Post("/jobs/{jobID}/review", s.handleOpenReview)
		r.Get("/review", s.handleGetReview)
		r.Post("/review/items/{itemID}", s.handleSetFailedQuantity)
		r.Post("/review/confirm", s.handleConfirmCompletion)
		r.Post("/review/cancel", s.handleCancelReview)
		r.Delete("/reprints/{reprintID}", s.handleAcknowledgeReprint)

		r.Get("/paints/brands", s.handleListBrands)
		r.Get("/paints/brands/{brandID}/paints", s.handleListBrandPaints)
		r.Get("/paints/brands/{brandID}/sets", s.handleListBrandSets)
		r.Get("/paints/owned", s.handleListOwned)
		r.Post("/paints/owned", s.handleAddOwned)
		r.Delete("/paints/owned/{ownedID}", s.handleRemoveOwned)
		r.Get("/paints/owned/stats", s.handleOwnedStats)
		r.Get("/paints/custom", s.handleListCustom)
		r.Post("/paints/custom", s.handleCreateCustom)
		r.Put("/paints/custom/{paintID}", s.handleUpdateCustom)
		r.Delete("/paints/custom/{paintID}", s.handleDeleteCustom)
		r.Get("/paints/wishlist", s.handleListWishlist)
		r.Post("/paints/wishlist", s.handleAddWishlist)
		r.Delete("/paints/wishlist/{wishlistID}", s.handleRemoveWishlist)

		r.Get("/guides", s.handleListGuides)
		r.Delete("/guides/{guideID}", s.handleDeleteGuide)
		r.Get("/guides/export", s.handleExportGuides)
		r.Post("/guides/import", s.handleImportGuides)
		r.Get("/guides/form", s.handleGetForm)
		r.Post("/guides/form/create", s.handleFormCreate)
		r.Post("/guides/form/edit/{guideID}", s.handleFormEdit)
		r.Post("/guides/form/field", s.handleFormSetField)
		r.Post("/guides/form/steps", s.handleFormAddStep)
		r.Delete("/guides/form/steps/{stepIdx}", s.handleFormRemoveStep)
		r.Post("/guides/form/steps/{stepIdx}/description", s.handleFormSetStepDescription)
		r.Post("/guides/form/steps/{stepIdx}/paints", s.handleFormAddPaint)
		r.Delete("/guides/form/steps/{stepIdx}/paints/{paintIdx}", s.handleFormRemovePaint)
		r.Post("/guides/form/steps/{stepIdx}/paints/{paintIdx}/ratio", s.handleFormSetPaintRatio)
		r.Post("/guides/form/steps/{stepIdx}/layers", s.handleFormAddLayer)
		r.Post("/guides/form/steps/{stepIdx}/collapse", s.handleFormToggleCollapse)
		r.Post("/guides/form/close", s.handleFormRequestClose)
		r.Post("/guides/form/discard", s.handleFormConfirmDiscard)
		r.Post("/guides/form/discard/cancel", s.handleFormCancelDiscard)
		r.Post("/guides/form/save", s.handleFormSave)

		r.Get("/settings", s.handleGetSettings)
		r.Get("/settings/drive/connect", s.handleDriveConnect)
		r.Get("/settings/drive/callback", s.handleDriveCallback)
		r.Post("/settings/drive/disconnect", s.handleDriveDisconnect)
		r.Post("/settings/drive/upload", s.handleDriveUpload)
	})

	// Admin routes.
	router.Group(func(r chi.Router) {
		r.Use(s.requireUser)
		r.Use(s.requireAdmin)

		r.Get("/admin/tokens", s.handleListTokens)
		r.Post("/admin/tokens", s.handleGenerateToken)
		r.Post("/admin/tokens/{tokenID}/revoke", s.handleRevokeToken)
		r.Get("/admin/bans", s.handleListBans)
		r.Post("/admin/bans", s.handleBanUser)
		r.Delete("/admin/bans/{banID}", s.handleUnbanUser)
	})

	return router
}
