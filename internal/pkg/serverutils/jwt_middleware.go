package serverutils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"cognimed-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const actorLocalKey = "actor"

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// IssueToken signs an HS256 token carrying sub, is_doctor, id and exp.
func IssueToken(actor entity.Actor, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":       actor.Username,
		"is_doctor": actor.IsDoctor(),
		"id":        actor.Id.String(),
		"exp":       time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(jwtSecret())
}

// ParseToken validates tokenStr and resolves the actor it was issued to.
func ParseToken(tokenStr string) (entity.Actor, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return entity.Actor{}, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return entity.Actor{}, fmt.Errorf("invalid claims")
	}

	username, _ := claims["sub"].(string)
	idStr, _ := claims["id"].(string)
	isDoctor, _ := claims["is_doctor"].(bool)
	id, err := uuid.Parse(idStr)
	if username == "" || err != nil {
		return entity.Actor{}, fmt.Errorf("could not validate credentials")
	}

	kind := entity.ActorUser
	if isDoctor {
		kind = entity.ActorDoctor
	}
	return entity.Actor{Kind: kind, Id: id, Username: username}, nil
}

func JwtMiddleware(ctx *fiber.Ctx) error {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || !strings.EqualFold(authHeader[:7], "Bearer ") {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing token"})
	}

	actor, err := ParseToken(authHeader[7:])
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Could not validate credentials"})
	}

	ctx.Locals(actorLocalKey, actor)
	return ctx.Next()
}

// DoctorOnly must run after JwtMiddleware.
func DoctorOnly(ctx *fiber.Ctx) error {
	actor, ok := CurrentActor(ctx)
	if !ok || !actor.IsDoctor() {
		return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse(fiber.StatusForbidden, "Doctor access required"))
	}
	return ctx.Next()
}

func CurrentActor(ctx *fiber.Ctx) (entity.Actor, bool) {
	actor, ok := ctx.Locals(actorLocalKey).(entity.Actor)
	return actor, ok
}
