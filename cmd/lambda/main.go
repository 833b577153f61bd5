package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/yourusername/linkbot/internal/config"
	"github.com/yourusername/linkbot/internal/db"
	"github.com/yourusername/linkbot/internal/handlers"
	"github.com/yourusername/linkbot/internal/middleware"
	"github.com/yourusername/linkbot/internal/services/admin"
	"github.com/yourusername/linkbot/internal/services/encryption"
	"github.com/yourusername/linkbot/internal/services/logging"
	"github.com/yourusername/linkbot/internal/services/monitoring"
)

// Router maps HTTP routes to handlers. The service only exposes the
// webhook root, so matching is exact method + path.
type Router struct {
	routes []route
}

type route struct {
	method  string
	path    string
	handler http.HandlerFunc
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{}
}

// Handle registers a handler for a method and path
func (router *Router) Handle(method, path string, handler http.HandlerFunc) {
	router.routes = append(router.routes, route{
		method:  method,
		path:    path,
		handler: handler,
	})
}

// ServeHTTP handles incoming HTTP requests
func (router *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, rt := range router.routes {
		if rt.method == r.Method && rt.path == r.URL.Path {
			rt.handler(w, r)
			return
		}
	}
	http.Error(w, "Not Found.", http.StatusNotFound)
}

// appServices holds all initialized services for the application.
type appServices struct {
	cfg                *config.Config
	securityLogger     *logging.SecurityLogger
	monitor            *monitoring.CloudWatchMonitor
	rateLimiter        *middleware.GlobalRateLimiter
	interactionHandler *handlers.InteractionHandler
}

// initServices loads configuration and initializes all services.
func initServices() (*appServices, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	publicKey, err := cfg.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("cannot verify interactions: %w", err)
	}

	// The admin token may be stored KMS-encrypted; decrypt it once here
	adminToken := cfg.AdminAPIToken
	if encryption.IsEncrypted(adminToken) {
		encryptionSvc, err := encryption.NewService(cfg.KMSKeyID)
		if err != nil {
			return nil, fmt.Errorf("failed to init encryption service: %w", err)
		}
		adminToken, err = encryptionSvc.Decrypt(adminToken)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt admin API token: %w", err)
		}
	}

	securityLogger := logging.NewSecurityLogger()

	monitor, err := monitoring.NewCloudWatchMonitor(cfg.IsProduction())
	if err != nil {
		log.Printf("[MONITORING_WARN] Failed to init CloudWatch monitor: %v", err)
	}

	// Wire up middleware with the shared observability services
	middleware.SetSecurityLogger(securityLogger)
	middleware.SetMonitor(monitor)

	adminClient := admin.NewClient(cfg.AdminAPIURL, adminToken)

	interactionHandler := handlers.NewInteractionHandler(
		publicKey,
		cfg.DiscordAppID,
		cfg.AllowedUserIDs,
		adminClient,
		securityLogger,
		monitor,
	)

	// Discord delivers interactions well below this rate; the limiter only
	// guards against direct abuse of the public URL.
	rateLimiter := middleware.NewGlobalRateLimiter(25, 50)

	return &appServices{
		cfg:                cfg,
		securityLogger:     securityLogger,
		monitor:            monitor,
		rateLimiter:        rateLimiter,
		interactionHandler: interactionHandler,
	}, nil
}

// setupRoutes configures the webhook routes
func setupRoutes(router *Router, svc *appServices) {
	withHeaders := middleware.SecurityHeadersMiddleware

	// Liveness check
	router.Handle("GET", "/", withHeaders(svc.interactionHandler.Liveness))

	// Discord interactions webhook (rate limited, signature verified in the handler)
	router.Handle("POST", "/", svc.rateLimiter.Middleware(withHeaders(svc.interactionHandler.HandleInteraction)))
}

// connectAuditDB opens the optional audit database. The service runs
// without it; audit writes are simply skipped.
func connectAuditDB(svc *appServices) {
	if svc.cfg.DatabaseURL == "" || db.Pool != nil {
		return
	}
	if err := db.Connect(svc.cfg.DatabaseURL); err != nil {
		log.Printf("[DB_WARN] Audit database unavailable, continuing without audit trail: %v", err)
	}
}

// Handler is the Lambda function handler (API Gateway HTTP API v2 payload format)
func Handler(ctx context.Context, request events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	svc, err := initServices()
	if err != nil {
		log.Printf("[INIT_ERROR] %v", err)
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "Service initialization failed"}`,
		}, nil
	}

	connectAuditDB(svc)

	router := NewRouter()
	setupRoutes(router, svc)

	httpReq, err := convertAPIGatewayV2Request(request)
	if err != nil {
		log.Printf("[LAMBDA_ERROR] Failed to convert request: %v", err)
		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusInternalServerError,
			Body:       `{"error": "Internal server error"}`,
		}, nil
	}

	rw := newResponseWriter()
	router.ServeHTTP(rw, httpReq.WithContext(ctx))

	respHeaders := make(map[string]string)
	for key, values := range rw.headers {
		if len(values) > 0 {
			respHeaders[key] = values[len(values)-1]
		}
	}

	return events.APIGatewayV2HTTPResponse{
		StatusCode: rw.statusCode,
		Headers:    respHeaders,
		Body:       rw.body.String(),
	}, nil
}

// convertAPIGatewayV2Request converts API Gateway v2 HTTP request to http.Request.
// The body must survive byte-for-byte: signature verification runs over the
// raw bytes, so a base64-encoded body is decoded rather than re-serialized.
func convertAPIGatewayV2Request(req events.APIGatewayV2HTTPRequest) (*http.Request, error) {
	method := req.RequestContext.HTTP.Method
	path := req.RawPath
	if path == "" {
		path = req.RequestContext.HTTP.Path
	}

	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 body: %w", err)
		}
		body = string(decoded)
	}

	httpReq, err := http.NewRequest(method, path, strings.NewReader(body))
	if err != nil {
		return nil, err
	}

	// Copy headers (v2 sends single string per header, multi-values are comma-joined)
	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// responseWriter implements http.ResponseWriter for Lambda
// IMPORTANT: Header() returns a reference to the persistent headers map
// so that w.Header().Set(...) works correctly.
type responseWriter struct {
	statusCode  int
	headers     http.Header
	body        *bytes.Buffer
	wroteHeader bool
}

func newResponseWriter() *responseWriter {
	return &responseWriter{
		statusCode: http.StatusOK,
		headers:    make(http.Header),
		body:       &bytes.Buffer{},
	}
}

func (rw *responseWriter) Header() http.Header {
	return rw.headers
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.wroteHeader {
		rw.wroteHeader = true
	}
	return rw.body.Write(b)
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.wroteHeader {
		rw.statusCode = statusCode
		rw.wroteHeader = true
	}
}

func main() {
	// Check if running in Lambda
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(Handler)
	} else {
		// Local development mode
		log.Println("Starting linkbot interaction endpoint on :8080")

		// Load .env file for local development
		loadEnvFile()

		svc, err := initServices()
		if err != nil {
			log.Fatalf("Service initialization failed: %v", err)
		}
		log.Println("Configuration loaded and services initialized")

		if svc.cfg.DatabaseURL != "" {
			if err := db.Connect(svc.cfg.DatabaseURL); err != nil {
				log.Printf("Warning: audit database unavailable: %v", err)
			} else {
				defer db.Close()
				log.Println("Connected to audit database")
			}
		}

		router := NewRouter()
		setupRoutes(router, svc)

		log.Println("Interaction endpoint listening on http://localhost:8080")
		if err := http.ListenAndServe(":8080", router); err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	}
}

// loadEnvFile loads environment variables from .env file for local development
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		log.Println("No .env file found - using system environment variables")
		return // .env file is optional
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			// Don't override existing env vars
			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	}
	log.Println("Loaded environment from .env")
}
