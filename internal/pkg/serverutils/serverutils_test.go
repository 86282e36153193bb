package serverutils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cognimed-be/internal/entity"
	"cognimed-be/internal/pkg/apperror"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/me", JwtMiddleware, func(ctx *fiber.Ctx) error {
		actor, _ := CurrentActor(ctx)
		return ctx.JSON(fiber.Map{"username": actor.Username, "kind": actor.Kind})
	})
	app.Get("/doctors", JwtMiddleware, DoctorOnly, func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNoContent)
	})
	app.Get("/missing", func(ctx *fiber.Ctx) error {
		return apperror.NotFound("Post not found")
	})
	return app
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	actor := entity.Actor{Kind: entity.ActorDoctor, Id: uuid.New(), Username: "drhouse"}
	token, err := IssueToken(actor, time.Minute)
	require.NoError(t, err)

	parsed, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, actor, parsed)

	expired, err := IssueToken(actor, -time.Minute)
	require.NoError(t, err)
	_, err = ParseToken(expired)
	assert.Error(t, err)
}

func TestJwtMiddleware(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	app := newTestApp()

	patient := entity.Actor{Kind: entity.ActorUser, Id: uuid.New(), Username: "jane"}
	doctor := entity.Actor{Kind: entity.ActorDoctor, Id: uuid.New(), Username: "drhouse"}
	patientToken, _ := IssueToken(patient, time.Minute)
	doctorToken, _ := IssueToken(doctor, time.Minute)

	tests := []struct {
		name   string
		path   string
		header string
		want   int
	}{
		{"no header", "/me", "", http.StatusUnauthorized},
		{"garbage token", "/me", "Bearer nope", http.StatusUnauthorized},
		{"valid patient", "/me", "Bearer " + patientToken, http.StatusOK},
		{"patient on doctor route", "/doctors", "Bearer " + patientToken, http.StatusForbidden},
		{"doctor on doctor route", "/doctors", "Bearer " + doctorToken, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestErrorHandlerMiddleware(t *testing.T) {
	app := newTestApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	var out Response[any]
	require.NoError(t, json.Unmarshal(body, &out))
	assert.False(t, out.Success)
	assert.Equal(t, 404, out.Code)
	assert.Equal(t, "Post not found", out.Message)
}

func TestValidateRequest(t *testing.T) {
	type req struct {
		Text string `validate:"required,min=1,max=500"`
	}

	assert.NoError(t, ValidateRequest(req{Text: "hello"}))

	err := ValidateRequest(req{})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindValidation))
	assert.Contains(t, err.Error(), "Text failed on 'required'")
}
