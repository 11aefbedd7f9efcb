package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/auth"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/client"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/handler"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/middleware"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/service"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/state"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/store"
	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/worker"
	ws "github.com/shubhamsonni/AI-Resume-Analyzer/internal/websocket"
)

const testJWTSecret = "test-secret-for-e2e"

// testApp wires the API exactly like main.go, but redis-free: the in-memory
// record store stands in for Redis, the queue is an inline runner that
// drives the pipeline worker synchronously, and all collaborators are mocks.
type testApp struct {
	app      *fiber.App
	records  *store.MemoryStore
	tracker  *state.Tracker
	storage  *client.MockStorageClient
	convert  *client.MockConverter
	feedback *client.MockFeedbackClient
	worker   *worker.SubmissionWorker
}

// inlineRunner satisfies service.TaskEnqueuer by running the pipeline in
// place of a queue. The worker's error is swallowed exactly as a real queue
// would swallow it; callers observe failures through the status endpoint.
type inlineRunner struct {
	worker *worker.SubmissionWorker
}

func (r *inlineRunner) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	_ = r.worker.ProcessTask(context.Background(), task)
	return &asynq.TaskInfo{ID: "inline", Queue: "analysis"}, nil
}

func setupApp(t *testing.T) *testApp {
	return setupAppWithBudget(t, 5*time.Second)
}

func setupAppWithBudget(t *testing.T, budget time.Duration) *testApp {
	t.Helper()

	records := store.NewMemoryStore()
	tracker := state.NewTracker()
	storage := client.NewMockStorageClient()
	convert := client.NewMockConverter()
	feedback := client.NewMockFeedbackClient()

	hub := ws.NewHub()
	go hub.Run()

	runner := &inlineRunner{}
	submissionService := service.NewSubmissionService(records, runner, tracker, storage)
	submissionWorker := worker.NewSubmissionWorker(submissionService, storage, convert, feedback, hub, budget)
	runner.worker = submissionWorker

	validate := validator.New()
	submissionHandler := handler.NewSubmissionHandler(submissionService, validate)
	authHandler := handler.NewAuthHandler(nil, testJWTSecret)
	authMiddleware := middleware.NewLegacyAuthMiddleware(testJWTSecret)

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"timestamp": time.Now().Unix()})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"redis":   records.Ping(c.Context()) == nil,
				"storage": true,
				"convert": true,
				"ai":      true,
				"auth":    true,
			},
		})
	})
	app.Get("/auth/verify", authHandler.Verify)

	api := app.Group("/api", authMiddleware.Authenticate())

	submissions := api.Group("/submissions")
	submissions.Post("/", submissionHandler.Start)
	submissions.Get("/", submissionHandler.List)
	submissions.Delete("/", submissionHandler.Wipe)
	submissions.Get("/:id", submissionHandler.Get)
	submissions.Get("/:id/status", submissionHandler.Status)
	submissions.Post("/:id/reset", submissionHandler.Reset)

	return &testApp{
		app:      app,
		records:  records,
		tracker:  tracker,
		storage:  storage,
		convert:  convert,
		feedback: feedback,
		worker:   submissionWorker,
	}
}

// generateToken creates a legacy HMAC JWT token for test requests.
func generateToken(t *testing.T) string {
	t.Helper()
	claims := auth.LegacyClaims{
		UserID: "test-user-123",
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "resume-analyzer-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// submissionForm describes one multipart submission request.
type submissionForm struct {
	fileName    string
	contentType string
	fileBody    []byte
	fields      map[string]string
}

func defaultForm() submissionForm {
	return submissionForm{
		fileName:    "resume.pdf",
		contentType: "application/pdf",
		fileBody:    []byte("%PDF-1.4 test resume"),
		fields: map[string]string{
			"companyName":    "Acme",
			"jobTitle":       "Backend Engineer",
			"jobDescription": "Build and run Go services",
		},
	}
}

// postSubmission performs an authenticated multipart POST /api/submissions.
// An empty fileName omits the file part entirely.
func postSubmission(t *testing.T, app *fiber.App, form submissionForm) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if form.fileName != "" {
		partHeader := textproto.MIMEHeader{}
		partHeader.Set("Content-Disposition", `form-data; name="resume"; filename="`+form.fileName+`"`)
		partHeader.Set("Content-Type", form.contentType)
		part, err := mw.CreatePart(partHeader)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(form.fileBody); err != nil {
			t.Fatalf("failed to write file part: %v", err)
		}
	}

	for k, v := range form.fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}

	req, err := http.NewRequest(http.MethodPost, "/api/submissions/", &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+generateToken(t))

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
