package http_handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/anthanhphan/gosdk/logger"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/config"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/domain"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/port"
	"github.com/anthanhphan/olfactory-dashboard/internal/api/service"
	"github.com/anthanhphan/olfactory-dashboard/pkg/resilience"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const (
	uploadField       = "files"
	defaultFluorLimit = 200
)

// BackendHealth reports the circuit state of the backend connection.
type BackendHealth interface {
	BreakerState() resilience.CircuitBreakerState
}

// Services groups what the HTTP surface serves.
type Services struct {
	Workspaces   *service.WorkspaceRegistry
	Registration port.RegistrationService
	Catalog      port.CatalogService
	Charts       port.ChartService
	Backend      BackendHealth
	Modalities   []string
}

type Server struct {
	app *fiber.App
	cfg *config.Config
	svc Services
}

func NewServer(cfg *config.Config, svc Services) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.App.MaxUploadBytes),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{
		app: app,
		cfg: cfg,
		svc: svc,
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.handleHealth)
	s.app.Get("/modalities", s.handleModalities)

	ws := s.app.Group("/workspaces")
	ws.Post("/", s.handleCreateWorkspace)
	ws.Delete("/:id", s.handleDropWorkspace)
	ws.Get("/:id/files", s.handleListQueue)
	ws.Post("/:id/files", s.handleAddFiles)
	ws.Delete("/:id/files/:index", s.handleRemoveFile)
	ws.Delete("/:id/files", s.handleResetQueue)
	ws.Post("/:id/register", s.handleRegister)

	s.app.Get("/subjects", s.handleSubjects)
	s.app.Get("/files", s.handleFiles)
	s.app.Get("/scrna/samples", s.handleSamples)
	s.app.Get("/scrna/clusters", s.handleClusters)
	s.app.Get("/scrna/markers", s.handleMarkers)
	s.app.Get("/fluor/summary", s.handleFluorSummary)
	s.app.Get("/overview", s.handleOverview)

	charts := s.app.Group("/charts")
	charts.Get("/rabies-load", s.handleRabiesChart)
	charts.Get("/double-injection", s.handleDoubleInjectionChart)
	charts.Get("/scrna-clusters", s.handleClusterChart)
	charts.Get("/scrna-markers", s.handleMarkerChart)
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) sendJSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	body := fiber.Map{"status": "ok"}
	if s.svc.Backend != nil {
		body["backend"] = s.svc.Backend.BreakerState()
	}
	return c.JSON(body)
}

func (s *Server) handleModalities(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"modalities": s.svc.Modalities})
}

// fileView is one row of the queue table.
type fileView struct {
	Index     int             `json:"index"`
	Name      string          `json:"name"`
	Size      int64           `json:"size"`
	SizeHuman string          `json:"size_human"`
	Category  domain.Category `json:"category"`
}

func queueView(files []domain.QueuedFile) []fileView {
	out := make([]fileView, 0, len(files))
	for i, f := range files {
		out = append(out, fileView{
			Index:     i,
			Name:      f.Name,
			Size:      f.Size,
			SizeHuman: domain.HumanSize(f.Size),
			Category:  f.Category,
		})
	}
	return out
}

func (s *Server) handleCreateWorkspace(c *fiber.Ctx) error {
	ws, err := s.svc.Workspaces.Create()
	if err != nil {
		logger.Errorw("Workspace creation failed", "error", err.Error())
		return s.sendJSONError(c, fiber.StatusInternalServerError, "Failed to create workspace")
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"workspace_id": ws.ID})
}

func (s *Server) handleDropWorkspace(c *fiber.Ctx) error {
	if err := s.svc.Workspaces.Drop(c.Params("id")); err != nil {
		return s.workspaceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListQueue(c *fiber.Ctx) error {
	ws, err := s.svc.Workspaces.Get(c.Params("id"))
	if err != nil {
		return s.workspaceError(c, err)
	}

	var files []domain.QueuedFile
	ws.With(func(q *service.UploadQueue) {
		files = q.Snapshot()
	})
	return c.JSON(fiber.Map{"files": queueView(files)})
}

func (s *Server) handleAddFiles(c *fiber.Ctx) error {
	ws, err := s.svc.Workspaces.Get(c.Params("id"))
	if err != nil {
		return s.workspaceError(c, err)
	}

	form, err := c.MultipartForm()
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Content-Type must be multipart/form-data")
	}
	headers := form.File[uploadField]
	if len(headers) == 0 {
		return s.sendJSONError(c, fiber.StatusBadRequest, fmt.Sprintf("Missing '%s' part", uploadField))
	}

	candidates := make([]domain.RawFile, 0, len(headers))
	for _, fh := range headers {
		raw, err := readUpload(fh)
		if err != nil {
			logger.Warnw("Upload part unreadable", "workspace_id", ws.ID, "file_name", fh.Filename, "error", err.Error())
			return s.sendJSONError(c, fiber.StatusBadRequest, err.Error())
		}
		candidates = append(candidates, raw)
	}

	var (
		result domain.AddResult
		files  []domain.QueuedFile
	)
	ws.With(func(q *service.UploadQueue) {
		result = q.Add(candidates)
		files = q.Snapshot()
	})

	if len(result.Rejected) > 0 {
		logger.Infow("Unsupported files rejected", "workspace_id", ws.ID, "rejected", result.Rejected)
	}

	accepted := make([]string, 0, len(result.Accepted))
	for _, f := range result.Accepted {
		accepted = append(accepted, f.Name)
	}
	return c.JSON(fiber.Map{
		"accepted": accepted,
		"rejected": result.Rejected,
		"warning":  result.Warning(),
		"files":    queueView(files),
	})
}

// readUpload copies a multipart file into memory; fiber releases the request
// buffers once the handler returns.
func readUpload(fh *multipart.FileHeader) (domain.RawFile, error) {
	f, err := fh.Open()
	if err != nil {
		return domain.RawFile{}, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return domain.RawFile{}, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return domain.RawFile{
		Name:    fh.Filename,
		Size:    fh.Size,
		Payload: domain.BytesPayload(data),
	}, nil
}

func (s *Server) handleRemoveFile(c *fiber.Ctx) error {
	ws, err := s.svc.Workspaces.Get(c.Params("id"))
	if err != nil {
		return s.workspaceError(c, err)
	}
	index, err := c.ParamsInt("index")
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid file index")
	}

	var files []domain.QueuedFile
	ws.With(func(q *service.UploadQueue) {
		q.RemoveAt(index)
		files = q.Snapshot()
	})
	return c.JSON(fiber.Map{"files": queueView(files)})
}

func (s *Server) handleResetQueue(c *fiber.Ctx) error {
	ws, err := s.svc.Workspaces.Get(c.Params("id"))
	if err != nil {
		return s.workspaceError(c, err)
	}
	ws.With(func(q *service.UploadQueue) {
		q.Clear()
	})
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	ws, err := s.svc.Workspaces.Get(c.Params("id"))
	if err != nil {
		return s.workspaceError(c, err)
	}

	var form domain.FormFields
	if err := c.BodyParser(&form); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid registration form")
	}

	summary, err := ws.Submit(c.Context(), s.svc.Registration, form)
	if err != nil {
		var (
			validationErr *domain.ValidationError
			transportErr  *domain.TransportError
		)
		switch {
		case errors.As(err, &validationErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": validationErr.Message,
				"code":  validationErr.Code,
			})
		case errors.Is(err, port.ErrSubmissionInFlight):
			return s.sendJSONError(c, fiber.StatusConflict, err.Error())
		case errors.As(err, &transportErr):
			return s.sendJSONError(c, fiber.StatusBadGateway, transportErr.Message)
		default:
			logger.Errorw("Registration failed", "workspace_id", ws.ID, "error", err.Error())
			return s.sendJSONError(c, fiber.StatusInternalServerError, "Registration failed")
		}
	}

	return c.JSON(fiber.Map{
		"summary": summary,
		"message": summary.Message(),
	})
}

func (s *Server) workspaceError(c *fiber.Ctx, err error) error {
	if errors.Is(err, port.ErrWorkspaceNotFound) {
		return s.sendJSONError(c, fiber.StatusNotFound, err.Error())
	}
	logger.Errorw("Workspace lookup failed", "workspace_id", c.Params("id"), "error", err.Error())
	return s.sendJSONError(c, fiber.StatusInternalServerError, err.Error())
}

func (s *Server) catalogResult(c *fiber.Ctx, v any, err error) error {
	if err != nil {
		logger.Warnw("Catalog request failed", "path", c.Path(), "error", err.Error())
		return s.sendJSONError(c, fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(v)
}

func (s *Server) handleSubjects(c *fiber.Ctx) error {
	subjects, err := s.svc.Catalog.ListSubjects(c.Context())
	return s.catalogResult(c, subjects, err)
}

func (s *Server) handleFiles(c *fiber.Ctx) error {
	files, err := s.svc.Catalog.ListFiles(c.Context())
	return s.catalogResult(c, files, err)
}

func (s *Server) handleSamples(c *fiber.Ctx) error {
	samples, err := s.svc.Catalog.ListSamples(c.Context())
	return s.catalogResult(c, samples, err)
}

func (s *Server) handleClusters(c *fiber.Ctx) error {
	sampleID := strings.TrimSpace(c.Query("sample_id"))
	if sampleID == "" {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'sample_id' query parameter")
	}
	clusters, err := s.svc.Catalog.ListClusters(c.Context(), sampleID)
	return s.catalogResult(c, clusters, err)
}

func (s *Server) handleMarkers(c *fiber.Ctx) error {
	sampleID := strings.TrimSpace(c.Query("sample_id"))
	clusterID := strings.TrimSpace(c.Query("cluster_id"))
	if sampleID == "" || clusterID == "" {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'sample_id' or 'cluster_id' query parameter")
	}
	markers, err := s.svc.Catalog.ListMarkers(c.Context(), sampleID, clusterID)
	return s.catalogResult(c, markers, err)
}

func (s *Server) handleFluorSummary(c *fiber.Ctx) error {
	query := domain.FluorQuery{
		ExperimentType: c.Query("experiment_type"),
		Hemisphere:     domain.HemisphereFilter(c.Query("hemisphere")),
		SubjectID:      c.Query("subject_id"),
		RegionID:       c.Query("region_id"),
		Limit:          c.QueryInt("limit", defaultFluorLimit),
	}
	rows, err := s.svc.Catalog.FluorSummary(c.Context(), query)
	return s.catalogResult(c, rows, err)
}

func (s *Server) handleOverview(c *fiber.Ctx) error {
	return c.JSON(s.svc.Catalog.Overview(c.Context()))
}

func chartFilter(c *fiber.Ctx) domain.ChartFilter {
	return domain.ChartFilter{
		Hemisphere: c.Query("hemisphere"),
		SubjectID:  c.Query("subject_id"),
	}
}

func (s *Server) handleRabiesChart(c *fiber.Ctx) error {
	return c.JSON(s.svc.Charts.RabiesLoad(c.Context(), chartFilter(c)))
}

func (s *Server) handleDoubleInjectionChart(c *fiber.Ctx) error {
	return c.JSON(s.svc.Charts.DoubleInjection(c.Context(), chartFilter(c)))
}

func (s *Server) handleClusterChart(c *fiber.Ctx) error {
	return c.JSON(s.svc.Charts.ClusterSizes(c.Context(), c.Query("sample_id")))
}

func (s *Server) handleMarkerChart(c *fiber.Ctx) error {
	return c.JSON(s.svc.Charts.MarkerHeatmap(c.Context(), c.Query("sample_id"), c.Query("cluster_id")))
}
