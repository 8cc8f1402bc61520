package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type historyQuery struct {
	QuestionType string `form:"question_type" binding:"omitempty,question_type"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
}

type loginBody struct {
	Email string `json:"email" binding:"required,email"`
}

func init() {
	gin.SetMode(gin.TestMode)
	Setup()
}

func newContext(method, target, body, contentType string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		c.Request.Header.Set("Content-Type", contentType)
	}
	return c
}

func TestBindQueryCatalogTag(t *testing.T) {
	var q historyQuery
	fields := BindQuery(newContext(http.MethodGet, "/?question_type=RHYTHM_HARMONY&page=2", "", ""), &q)
	require.Nil(t, fields)
	assert.Equal(t, 2, q.Page)

	fields = BindQuery(newContext(http.MethodGet, "/?question_type=dance", "", ""), &q)
	require.NotNil(t, fields)
	assert.Equal(t, "question_type must be a known question type", fields["question_type"])
}

func TestBindJSON(t *testing.T) {
	var body loginBody
	fields := Bind(newContext(http.MethodPost, "/", `{"email":"nope"}`, "application/json"), &body)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "email")

	fields = Bind(newContext(http.MethodPost, "/", `{`, "application/json"), &body)
	assert.Contains(t, fields, "detail")
}

func TestBindForm(t *testing.T) {
	var form struct {
		AnswerTypes []string `form:"answer_types" binding:"omitempty,dive,answer_type"`
	}
	c := newContext(http.MethodPost, "/", "answer_types=O%2FX", "application/x-www-form-urlencoded")
	require.Nil(t, BindForm(c, &form))
	assert.Equal(t, []string{"O/X"}, form.AnswerTypes)
}
