package internal

import (
	"context"
	"database/sql"
	"embed"
	"net/http"
	"os"
	"time"

	"kern-inventory-api/internal/config"
	"kern-inventory-api/internal/handlers"
	"kern-inventory-api/pkg/register"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

//go:embed openapi
var openapiFS embed.FS

type Server struct {
	DB      *sql.DB
	Pool    *pgxpool.Pool
	Router  *chi.Mux
	Metrics *Metrics
	Engine  *register.Engine
	Log     *zap.Logger
	Cfg     *config.Config
}

func NewServer(dsn string, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	// Also create a pgxpool for the importer
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		db.Close()
		return nil, err
	}

	metrics := NewMetrics()

	s := &Server{
		DB:      db,
		Pool:    pool,
		Router:  chi.NewRouter(),
		Metrics: metrics,
		Engine:  register.New(newPgSource(db), log),
		Log:     log,
		Cfg:     cfg,
	}

	s.Router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := w.Write([]byte("ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})
	s.Router.Get("/dbping", func(w http.ResponseWriter, r *http.Request) {
		if err := s.DB.PingContext(r.Context()); err != nil {
			http.Error(w, "db: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if _, err := w.Write([]byte("db: ok")); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	s.mountDocs(s.Router)

	if os.Getenv("ENABLE_METRICS") == "true" {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	s.mountRoutes(s.Router)

	return s, nil
}

// Close properly shuts down the server and cleans up resources
func (s *Server) Close(ctx context.Context) error {
	if s.Pool != nil {
		s.Pool.Close()
	}
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// mountDocs serves the OpenAPI spec and Swagger UI
func (s *Server) mountDocs(mux *chi.Mux) {
	if os.Getenv("ENABLE_SWAGGER") != "true" {
		return
	}

	// Serve the raw YAML
	mux.HandleFunc("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := openapiFS.ReadFile("openapi/openapi.yaml")
		if err != nil {
			http.Error(w, "Failed to read OpenAPI spec", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		if _, err := w.Write(data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	})

	mux.HandleFunc("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(200)
		w.Write([]byte(`<!doctype html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Kern Inventory API - Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
    <style>
        body { margin: 0; background: #f7f7f7; }
        .swagger-ui .topbar { background: #1f2937; border-bottom: 3px solid #3b82f6; }
        .swagger-ui .topbar .download-url-wrapper { display: none; }
    </style>
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: '/openapi.yaml',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [
                    SwaggerUIBundle.presets.apis,
                    SwaggerUIBundle.presets.standalone
                ],
                layout: "StandaloneLayout",
                tryItOutEnabled: true
            });
        };
    </script>
</body>
</html>`))
	})
}

func (s *Server) mountRoutes(r chi.Router) {
	// Computed master register
	r.Get("/enhanced-list", s.enhancedList)
	r.Get("/enhanced-list/paginated", s.enhancedListPaginated)
	r.Get("/master-list", s.masterList)

	// Type tables
	r.Get("/tools", s.listTools)
	r.Get("/tools/{id}", s.getTool)
	r.Post("/tools", s.createTool)
	r.Put("/tools/{id}", s.updateTool)
	r.Delete("/tools/{id}", s.deleteTool)

	r.Get("/mmds", s.listMMDs)
	r.Get("/mmds/{id}", s.getMMD)
	r.Post("/mmds", s.createMMD)
	r.Put("/mmds/{id}", s.updateMMD)
	r.Delete("/mmds/{id}", s.deleteMMD)

	r.Get("/assets-consumables", s.listAssets)
	r.Get("/assets-consumables/full-details", s.fullAssetDetails)
	r.Get("/assets-consumables/{id}", s.getAsset)
	r.Post("/assets-consumables", s.createAsset)
	r.Put("/assets-consumables/{id}", s.updateAsset)
	r.Delete("/assets-consumables/{id}", s.deleteAsset)

	// Cross-type detail merge
	r.Get("/item-details/{itemId}/{itemType}", s.itemDetails)
	r.Put("/item-details/{itemId}/{itemType}", s.updateItemDetails)

	// Ledgers
	r.Get("/maintenance", s.listMaintenance)
	r.Get("/maintenance/{itemId}", s.maintenanceByItem)
	r.Post("/maintenance", s.createMaintenance)
	r.Put("/maintenance/{id:[0-9]+}", s.updateMaintenance)
	r.Delete("/maintenance/{id:[0-9]+}", s.deleteMaintenance)

	r.Get("/allocation", s.listAllocations)
	r.Get("/allocation/{itemId}", s.allocationsByItem)
	r.Post("/allocation", s.createAllocation)
	r.Put("/allocation/{id:[0-9]+}", s.updateAllocation)
	r.Delete("/allocation/{id:[0-9]+}", s.deleteAllocation)

	// Service scheduling
	r.Get("/next-service/last-service-date/{itemType}/{itemId}", s.lastServiceDate)
	r.Get("/next-service/frequency/{itemType}/{itemId}", s.maintenanceFrequency)
	r.Post("/next-service/calculate", s.calculateNextService)
	r.Post("/next-service/update", s.updateNextService)

	// Quality templating
	r.Get("/quality/final-products", s.qcLookup("qc_final_products"))
	r.Get("/quality/materials/{productId}", s.qcMaterialsByProduct)
	r.Get("/quality/validation-types", s.qcLookup("qc_validation_types"))
	r.Get("/quality/units", s.qcLookup("qc_units"))
	r.Get("/quality/control-point-types", s.qcLookup("qc_control_point_types"))
	r.Get("/quality/templates", s.listQCTemplates)
	r.Post("/quality/templates", s.createQCTemplate)
	r.Post("/quality/control-points", s.createQCControlPoint)
	r.Get("/quality/control-points/{templateId}", s.qcControlPointsByTemplate)
	r.Delete("/quality/control-points/{id}", s.deleteQCControlPoint)

	// Excel bulk import
	importsHandler := handlers.NewImportsHandler(s.Pool, s.Log)
	r.Post("/imports/excel", importsHandler.UploadExcel)
}
