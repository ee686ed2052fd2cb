//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/stemsi/testcraft-backend/internal/config"
	"github.com/stemsi/testcraft-backend/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	defaultBaseURL  = "http://localhost:8080/api/v1"
	defaultRedisURL = "redis://localhost:6379/0"
	teacherPass     = "password123"
)

var (
	baseURL      string
	redisURL     string
	teacherEmail string
	token        string
	classID      string
	itemID       string
	testID       string
)

func TestMain(m *testing.M) {
	// Load .env if present (ignore error)
	_ = godotenv.Load("../../.env")

	baseURL = os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	redisURL = os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = defaultRedisURL
	}

	// A fresh account per run keeps reruns independent of leftover data.
	teacherEmail = fmt.Sprintf("e2e_%d@example.com", time.Now().UnixNano())

	os.Exit(m.Run())
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestE2EFlow(t *testing.T) {
	// Step 1: Sign up
	t.Run("Signup", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/auth/signup", map[string]string{
			"name":     "E2E Teacher",
			"email":    teacherEmail,
			"password": teacherPass,
		})
		require.Equal(t, http.StatusCreated, resp.status, resp.raw)
	})

	// Step 1b: Same email again (Expect 409)
	t.Run("SignupDuplicate", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/auth/signup", map[string]string{
			"name":     "Someone Else",
			"email":    teacherEmail,
			"password": teacherPass,
		})
		assert.Equal(t, http.StatusConflict, resp.status, resp.raw)
	})

	// Step 2: Login
	t.Run("Login", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/auth/login", map[string]string{
			"email":    teacherEmail,
			"password": teacherPass,
		})
		require.Equal(t, http.StatusOK, resp.status, resp.raw)

		var body model.LoginResponse
		resp.decode(t, &body)
		token = body.Token
		require.NotEmpty(t, token)
	})

	// Step 3: Class
	t.Run("CreateClass", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/teacher/classes", map[string]string{"name": "  7A  "})
		require.Equal(t, http.StatusCreated, resp.status, resp.raw)

		var body struct{ Class model.Class }
		resp.decode(t, &body)
		assert.Equal(t, "7A", body.Class.Name)
		classID = body.Class.ID
	})

	// Step 4: Bank item written in plain mode
	t.Run("CreateItem", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/teacher/items", map[string]any{
			"title":          "Addition",
			"body_text":      "What is 2+2",
			"authoring_mode": "plain",
			"choices": []map[string]string{
				{"text": "4"}, {"text": "5"}, {"text": "22"},
			},
			"correct_choice_index": 0,
		})
		require.Equal(t, http.StatusCreated, resp.status, resp.raw)

		var body struct{ Item model.Item }
		resp.decode(t, &body)
		itemID = body.Item.ID
		require.NotEmpty(t, itemID)
	})

	// Step 5: Test assembled from the bank
	t.Run("CreateTest", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/teacher/tests", map[string]any{
			"name":        "Weekly Quiz",
			"class_names": []string{"7A"},
			"item_ids":    []string{itemID},
		})
		require.Equal(t, http.StatusCreated, resp.status, resp.raw)

		var body struct{ Test model.Test }
		resp.decode(t, &body)
		require.Len(t, body.Test.Questions, 1)
		testID = body.Test.ID
	})

	// Step 6: Publish
	t.Run("PublishTest", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/teacher/tests/"+testID+"/publish", map[string]any{
			"class_ids": []string{classID},
		})
		require.Equal(t, http.StatusOK, resp.status, resp.raw)

		var body struct{ Test model.TestOverview }
		resp.decode(t, &body)
		assert.True(t, body.Test.Status.FullyPublished)

		resp = call(t, http.MethodGet, "/teacher/classes/"+classID+"/published-tests", nil)
		require.Equal(t, http.StatusOK, resp.status, resp.raw)
		assert.Contains(t, resp.raw, testID)
	})

	// Step 7: A finished attempt flows through the ingest queue
	t.Run("IngestScore", func(t *testing.T) {
		opts, err := redis.ParseURL(redisURL)
		require.NoError(t, err)
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		score := 1
		at := time.Now().UTC()
		raw, err := json.Marshal(model.ScoreRecord{
			StudentIdentifier: "e2e-student",
			TestID:            testID,
			TestTitle:         "Weekly Quiz",
			ClassID:           classID,
			Score:             &score,
			QuestionTimesMs:   []float64{4200},
			AnswerDetails: []model.AnswerDetail{
				{QuestionIndex: 0, SelectedIndex: 0, CorrectIndex: 0, SelectedText: "4", CorrectText: "4"},
			},
			Timestamp: &at,
		})
		require.NoError(t, err)
		require.NoError(t, rdb.RPush(context.Background(), config.WorkerKey.ScoreRecordsQueue, raw).Err())

		assert.Eventually(t, func() bool {
			resp := call(t, http.MethodGet, "/teacher/classes/"+classID+"/analytics", nil)
			return resp.status == http.StatusOK && bytes.Contains([]byte(resp.raw), []byte(`"class_average_percent":100`))
		}, 15*time.Second, 500*time.Millisecond)
	})

	// Step 8: Per-test statistics and export
	t.Run("TestStats", func(t *testing.T) {
		resp := call(t, http.MethodGet, "/teacher/classes/"+classID+"/analytics/tests/"+testID, nil)
		require.Equal(t, http.StatusOK, resp.status, resp.raw)

		resp = call(t, http.MethodGet, "/teacher/classes/"+classID+"/analytics/tests/"+testID+"/export", nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.NotEmpty(t, resp.raw)
	})

	// Step 9: Logout invalidates the session
	t.Run("Logout", func(t *testing.T) {
		resp := call(t, http.MethodPost, "/auth/logout", nil)
		require.Equal(t, http.StatusOK, resp.status, resp.raw)

		resp = call(t, http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.status, resp.raw)
	})
}

type result struct {
	status int
	raw    string
}

func (r result) decode(t *testing.T, v any) {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal([]byte(r.raw), &env))
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func call(t *testing.T, method, path string, body any) result {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	return result{status: resp.StatusCode, raw: string(raw)}
}
