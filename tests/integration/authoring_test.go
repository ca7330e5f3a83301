package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bandbooster-authoring/internal/dto"
	"bandbooster-authoring/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	tableStructure = `{
		"title": "Library opening hours",
		"headers": ["Day", "Hours"],
		"rows": [
			["Monday", "9am to <input>"],
			["Sunday", "<input> to 4pm"]
		]
	}`
	summaryStructure = `{
		"title": "Glacier formation",
		"text": "Snow compacts into ice over ___ years and flows ___ downhill."
	}`
)

// authorToken inserts a fresh staff row and returns a valid access token
// for it along with the staff ID.
func authorToken(t *testing.T) (string, string) {
	t.Helper()
	staff, err := createTestStaffDB(db, newTestStaff())
	require.NoError(t, err)
	token, err := generateTestStaffJWT(staff, "access", 15*time.Minute)
	require.NoError(t, err)
	return token, staff.ID
}

func authedJSON(t *testing.T, method, path, token string, payload interface{}) *http.Response {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	body, err := cloneResponseBody(resp)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body.Bytes(), out), "body: %s", body.String())
}

func TestCountBlanksEndpoint(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodPost, "/api/authoring/count-blanks", token, dto.StructureRequest{
		GroupType: "table_completion",
		Structure: json.RawMessage(tableStructure),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count dto.BlankCountResponse
	decodeJSON(t, resp, &count)
	assert.Equal(t, 2, count.BlankCount)
	assert.True(t, count.CanGenerate)
}

func TestCountBlanksEndpoint_NotReady(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodPost, "/api/authoring/count-blanks", token, dto.StructureRequest{
		GroupType: "table_completion",
		Structure: json.RawMessage(`{"title":"","headers":["Day"],"rows":[["Monday <input>"]]}`),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count dto.BlankCountResponse
	decodeJSON(t, resp, &count)
	assert.False(t, count.CanGenerate)
	assert.NotEmpty(t, count.Reason)
}

func TestDeriveEndpoint(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodPost, "/api/authoring/derive", token, dto.StructureRequest{
		GroupType: "table_completion",
		Structure: json.RawMessage(tableStructure),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var derived dto.DeriveResponse
	decodeJSON(t, resp, &derived)
	require.Len(t, derived.Questions, 2)
	for i, q := range derived.Questions {
		assert.Equal(t, i+1, q.Order)
		assert.Equal(t, 1, q.Points)
		assert.NotEmpty(t, q.TempID)
		assert.Empty(t, q.CorrectAnswerText)
	}
}

func TestDeriveEndpoint_UnknownGroupType(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodPost, "/api/authoring/derive", token, dto.StructureRequest{
		GroupType: "matching_headings",
		Structure: json.RawMessage(`{}`),
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPreviewEndpoint(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodPost, "/api/authoring/preview", token, dto.StructureRequest{
		GroupType: "summary_completion",
		Structure: json.RawMessage(summaryStructure),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var preview dto.PreviewResponse
	decodeJSON(t, resp, &preview)
	assert.Equal(t, "Glacier formation", preview.Title)
	require.NotEmpty(t, preview.Rows)

	var blankNumbers []int
	for _, row := range preview.Rows {
		for _, span := range row.Spans {
			if span.IsBlank {
				blankNumbers = append(blankNumbers, span.Number)
			}
		}
	}
	assert.Equal(t, []int{1, 2}, blankNumbers)
}

// TestAuthoringWorkflow walks the whole two-phase flow over HTTP:
// passage, empty group, blocked save, real save, revision, delete.
func TestAuthoringWorkflow(t *testing.T) {
	token, staffID := authorToken(t)

	// Phase one: a passage and an empty group derived from a structure.
	resp := authedJSON(t, http.MethodPost, "/api/passages/", token, dto.PassageRequest{
		Title:   "Glaciers of the Southern Alps",
		Content: "Glaciers form wherever snowfall outpaces melt for decades at a stretch.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var passage dto.PassageResponse
	decodeJSON(t, resp, &passage)
	require.NotEmpty(t, passage.ID)

	resp = authedJSON(t, http.MethodPost, "/api/groups/", token, dto.CreateGroupRequest{
		PassageID: passage.ID,
		Title:     "Questions 1-2: Glacier formation",
		GroupType: "summary_completion",
		Structure: json.RawMessage(summaryStructure),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var group dto.GroupResponse
	decodeJSON(t, resp, &group)
	require.NotEmpty(t, group.ID)
	assert.Equal(t, 2, group.BlankCount)
	assert.Empty(t, group.Questions)

	// Saving with a blank answer must be refused.
	blocked := dto.SaveGroupRequest{
		Title:     group.Title,
		Structure: json.RawMessage(summaryStructure),
		Questions: []dto.QuestionPayload{
			{Position: 1, QuestionText: "Snow compacts into ice over ___ years", CorrectAnswerText: "thousands of"},
			{Position: 2, QuestionText: "and flows ___ downhill", CorrectAnswerText: "   "},
		},
	}
	resp = authedJSON(t, http.MethodPut, "/api/groups/"+group.ID, token, blocked)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	// A complete save succeeds; sparse out-of-order positions come back
	// renumbered densely from one.
	complete := dto.SaveGroupRequest{
		Title:     group.Title,
		Structure: json.RawMessage(summaryStructure),
		Questions: []dto.QuestionPayload{
			{Position: 7, QuestionText: "and flows ___ downhill", CorrectAnswerText: "slowly"},
			{Position: 3, QuestionText: "Snow compacts into ice over ___ years", CorrectAnswerText: "thousands of"},
		},
	}
	resp = authedJSON(t, http.MethodPut, "/api/groups/"+group.ID, token, complete)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var saved dto.GroupResponse
	decodeJSON(t, resp, &saved)
	require.Len(t, saved.Questions, 2)
	assert.Equal(t, 1, saved.Questions[0].Position)
	assert.Equal(t, "thousands of", saved.Questions[0].CorrectAnswerText)
	assert.Equal(t, 2, saved.Questions[1].Position)
	assert.Equal(t, "slowly", saved.Questions[1].CorrectAnswerText)

	// Each successful save records a revision attributed to the saver.
	resp = authedJSON(t, http.MethodGet, "/api/groups/"+group.ID+"/revisions", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var revisions []dto.RevisionResponse
	decodeJSON(t, resp, &revisions)
	require.Len(t, revisions, 1)
	assert.Equal(t, staffID, revisions[0].SavedBy)
	assert.Equal(t, 2, revisions[0].QuestionCount)

	resp = authedJSON(t, http.MethodGet, "/api/passages/"+passage.ID+"/groups", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summaries []dto.GroupSummaryResponse
	decodeJSON(t, resp, &summaries)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].QuestionCount)

	// The group_type filter excludes non-matching groups.
	resp = authedJSON(t, http.MethodGet, "/api/passages/"+passage.ID+"/groups?group_type=form_completion", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var filtered []dto.GroupSummaryResponse
	decodeJSON(t, resp, &filtered)
	assert.Empty(t, filtered)

	resp = authedJSON(t, http.MethodDelete, "/api/groups/"+group.ID, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = authedJSON(t, http.MethodGet, "/api/groups/"+group.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSaveGroup_EmptyQuestionsBlocked(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodPost, "/api/groups/", token, dto.CreateGroupRequest{
		PassageID: seededPassageID,
		Title:     "Questions 1-2: Water cycle",
		GroupType: "summary_completion",
		Structure: json.RawMessage(summaryStructure),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var group dto.GroupResponse
	decodeJSON(t, resp, &group)

	resp = authedJSON(t, http.MethodPut, "/api/groups/"+group.ID, token, dto.SaveGroupRequest{
		Title:     group.Title,
		Structure: json.RawMessage(summaryStructure),
		Questions: []dto.QuestionPayload{},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestCreateGroup_PassageNotFound(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodPost, "/api/groups/", token, dto.CreateGroupRequest{
		PassageID: util.NewULID(),
		Title:     "Questions on a missing passage",
		GroupType: "table_completion",
		Structure: json.RawMessage(tableStructure),
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetGroup_InvalidIDParam(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodGet, "/api/groups/not-a-ulid", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetGroup_Caching(t *testing.T) {
	token, _ := authorToken(t)

	resp := authedJSON(t, http.MethodPost, "/api/groups/", token, dto.CreateGroupRequest{
		PassageID: seededPassageID,
		Title:     "Questions 1-2: Opening hours",
		GroupType: "table_completion",
		Structure: json.RawMessage(tableStructure),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var group dto.GroupResponse
	decodeJSON(t, resp, &group)

	cacheKey := fmt.Sprintf("bandbooster:authoring:group:%s", group.ID)
	clearRedisCacheKey(redisClient, cacheKey)

	// First read misses and populates, second read is served from cache;
	// both must agree.
	first := authedJSON(t, http.MethodGet, "/api/groups/"+group.ID, token, nil)
	require.Equal(t, http.StatusOK, first.StatusCode)
	firstBody, err := cloneResponseBody(first)
	require.NoError(t, err)

	second := authedJSON(t, http.MethodGet, "/api/groups/"+group.ID, token, nil)
	require.Equal(t, http.StatusOK, second.StatusCode)
	secondBody, err := cloneResponseBody(second)
	require.NoError(t, err)

	assert.JSONEq(t, firstBody.String(), secondBody.String())

	// A save invalidates the cached entry.
	resp = authedJSON(t, http.MethodPut, "/api/groups/"+group.ID, token, dto.SaveGroupRequest{
		Title:     group.Title,
		Structure: json.RawMessage(tableStructure),
		Questions: []dto.QuestionPayload{
			{Position: 1, QuestionText: "Monday: 9am to ___", CorrectAnswerText: "5pm"},
			{Position: 2, QuestionText: "Sunday: ___ to 4pm", CorrectAnswerText: "10am"},
		},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	exists, err := redisClient.Exists(context.Background(), cacheKey).Result()
	require.NoError(t, err)
	assert.Zero(t, exists, "cache entry should be invalidated after save")
}

func TestUploadImage(t *testing.T) {
	token, _ := authorToken(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("image", "diagram.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/authoring/uploads", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var upload dto.UploadResponse
	decodeJSON(t, resp, &upload)
	assert.Contains(t, upload.URL, "/uploads/")
}
