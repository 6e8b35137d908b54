package handler_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/careerkit/cvmatch/internal/pkg/errcode"
)

func postExtractForm(t *testing.T, router http.Handler, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	form := url.Values{}
	for key, value := range fields {
		form.Set(key, value)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func postExtractFile(t *testing.T, router http.Handler, role, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("role", role))
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/documents/extract", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestExtractFromText(t *testing.T) {
	router := setupRouter(t, routerOptions{})

	resp := postExtractForm(t, router, map[string]string{
		"role": "resume",
		"text": "Senior Backend Engineer with Go and Kubernetes experience",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Code uint32 `json:"code"`
		Data struct {
			Role           string `json:"role"`
			Text           string `json:"text"`
			NormalizedText string `json:"normalized_text"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, uint32(0), envelope.Code)
	require.Equal(t, "resume", envelope.Data.Role)
	require.Contains(t, envelope.Data.Text, "Senior Backend Engineer")
	require.Contains(t, envelope.Data.NormalizedText, "kubernetes")
	require.NotContains(t, envelope.Data.NormalizedText, "with")
}

func TestExtractFromTxtUpload(t *testing.T) {
	router := setupRouter(t, routerOptions{})

	resp := postExtractFile(t, router, "job_description", "posting.txt", []byte("Hiring a platform engineer for cloud infrastructure"))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Code uint32 `json:"code"`
		Data struct {
			Role           string `json:"role"`
			NormalizedText string `json:"normalized_text"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, uint32(0), envelope.Code)
	require.Equal(t, "job_description", envelope.Data.Role)
	require.Contains(t, envelope.Data.NormalizedText, "platform")
}

func TestExtractRejectsBadRole(t *testing.T) {
	router := setupRouter(t, routerOptions{})

	resp := postExtractForm(t, router, map[string]string{
		"role": "cover_letter",
		"text": "some text",
	})
	var envelope struct {
		Code uint32 `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, uint32(errcode.ErrInvalid), envelope.Code)
}

func TestExtractRejectsUnsupportedExtension(t *testing.T) {
	router := setupRouter(t, routerOptions{})

	resp := postExtractFile(t, router, "resume", "resume.exe", []byte("binary"))
	var envelope struct {
		Code uint32 `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, uint32(errcode.ErrInvalidFile), envelope.Code)
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	router := setupRouter(t, routerOptions{})

	resp := postExtractFile(t, router, "resume", "resume.pdf", []byte("not a pdf at all"))
	var envelope struct {
		Code uint32 `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, uint32(errcode.ErrExtractionFailed), envelope.Code)
}

func TestExtractRequiresFileOrText(t *testing.T) {
	router := setupRouter(t, routerOptions{})

	resp := postExtractForm(t, router, map[string]string{"role": "resume"})
	var envelope struct {
		Code uint32 `json:"code"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Equal(t, uint32(errcode.ErrInvalid), envelope.Code)
}
