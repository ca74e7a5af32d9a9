package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const rejoinKeyLifetime = time.Hour * 2

// ReconnectJWT signs rejoin keys naming a room code.
type ReconnectJWT struct {
	jwtSecret string
	now       func() time.Time
}

func NewReconnectJWT(jwtSecret string) *ReconnectJWT {
	return &ReconnectJWT{jwtSecret: jwtSecret, now: time.Now}
}

func (r ReconnectJWT) GenerateRejoinKey(roomCode string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"roomCode": roomCode,
		"exp":      jwt.NewNumericDate(r.now().Add(rejoinKeyLifetime)),
	})
	return token.SignedString([]byte(r.jwtSecret))
}

// RoomCodeFromRejoinKey returns the signed room code, or "" for an invalid
// or expired key.
func (r ReconnectJWT) RoomCodeFromRejoinKey(tokenString string) string {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(r.jwtSecret), nil
	})
	if err != nil {
		return ""
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		roomCode, _ := claims["roomCode"].(string)
		return roomCode
	}
	return ""
}
