package sessions

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	jwt "github.com/dgrijalva/jwt-go"
	"github.com/gomodule/redigo/redis"

	"openfeed/pkg/common"
	"openfeed/pkg/logger"
)

const sessionTTL = 90 * 24 * time.Hour

type (
	sessionKey string

	// Session is the authenticated wallet session: the connected wallet
	// address plus the selected publishing profile.
	Session struct {
		Address   string `json:"address"`
		ProfileId string `json:"profileId"`
		Handle    string `json:"handle"`
	}

	Manager struct {
		secret []byte
		redis  redis.Conn
	}

	jwtClaims struct {
		Session Session `json:"session"`
		jwt.StandardClaims
	}
)

const SessionKey sessionKey = "authenticatedSession"

var ErrNoAuth = errors.New("sessions: no session found")

func NewSessionManager(secret string, conn redis.Conn) *Manager {
	return &Manager{
		secret: []byte(secret),
		redis:  conn,
	}
}

// SessionFromToken returns the wallet session if the JWT is valid and the
// session is still registered in Redis.
func (sm *Manager) SessionFromToken(authHeader string) (*Session, error) {
	if authHeader == "" {
		return nil, errors.New("sessions: auth header not found")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	token, err := jwt.ParseWithClaims(tokenString, &jwtClaims{},
		func(token *jwt.Token) (interface{}, error) {
			return []byte(sm.secret), nil
		})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtClaims)
	if !ok {
		return nil, errors.New("sessions: can't cast token to claim")
	}
	if !token.Valid {
		return nil, errors.New("sessions: token is not valid")
	}

	if _, redisErr := sm.CheckRedis(claims.Session.Address, claims.Id); redisErr != nil {
		return nil, fmt.Errorf("sessions/manager: Redis session is not valid: %v", redisErr)
	}

	return &claims.Session, nil
}

// CleanupSessions removes the wallet's expired sessions.
func (sm *Manager) CleanupSessions(address string) error {
	stored, err := redis.StringMap(sm.redis.Do("HGETALL", address))
	if err != nil {
		log.Println("sessions/manager: can't HGETALL wallet sessions from Redis:", err)
		return err
	}

	nowTs := time.Now().Unix()
	for sessId, exp := range stored {
		expTs, _ := strconv.ParseInt(exp, 10, 64)
		if nowTs > expTs {
			sm.redis.Do("HDEL", address, sessId)
			log.Printf("sessions/manager: session %s removed (expired at %s)\n", sessId, exp)
		}
	}

	return nil
}

func (sm *Manager) CheckRedis(address, sessionId string) (bool, error) {
	expirationData, err := redis.Bytes(sm.redis.Do("HGET", address, sessionId))
	if err != nil {
		log.Println("sessions/manager: can't HGET from Redis:", err)
		return false, err
	}

	expiredTs, _ := strconv.ParseInt(string(expirationData), 10, 64)
	nowTs := time.Now().Unix()
	if nowTs > expiredTs {
		return false, errors.New("session has been expired")
	}

	// Prolongate session expiration time if it expires in less than 24
	// hours because we don't want to kick off the active user.
	if expiredTs-nowTs < int64(time.Duration(24*time.Hour).Seconds()) {
		newExpDate := time.Now().Add(sessionTTL).Unix()
		err := sm.AddToRedis(address, sessionId, newExpDate)
		if err != nil {
			log.Println("sessions/manager: failed add to Redis", err)
			return false, err
		}
	}

	return true, nil
}

func (sm *Manager) AddToRedis(address, sessionId string, exp int64) error {
	_, err := sm.redis.Do("HSET", address, sessionId, exp)
	if err != nil {
		return fmt.Errorf("sessions/manager: failed HSET to Redis: %v", err)
	}
	return nil
}

func (sm *Manager) CreateToken(s *Session) (string, error) {
	sessionID := common.RandStringRunes(10)
	data := jwtClaims{
		Session: *s,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(sessionTTL).Unix(),
			IssuedAt:  time.Now().Unix(),
			Id:        sessionID,
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, data).SignedString(sm.secret)
	if err != nil {
		return "", err
	}

	if redisErr := sm.AddToRedis(s.Address, sessionID, data.ExpiresAt); redisErr != nil {
		log.Println("sessions/manager: failed add to redis", redisErr)
		return ``, redisErr
	}

	return token, nil
}

func GetAuthSession(ctx context.Context) (*Session, error) {
	s, ok := ctx.Value(SessionKey).(*Session)
	if !ok || s == nil {
		return nil, ErrNoAuth
	}
	return s, nil
}

// CheckAuthentication is the canonical auth predicate for mutating
// actions: a live session carrying both a wallet address and a selected
// profile. Session presence alone is not enough. When the check fails the
// reason is surfaced as the user-facing prompt.
func (sm *Manager) CheckAuthentication(ctx context.Context, action string) bool {
	s, err := GetAuthSession(ctx)
	if err != nil || s.Address == "" {
		logger.Log(ctx).Infof("please connect your wallet to %s", action)
		return false
	}
	if s.ProfileId == "" {
		logger.Log(ctx).Infof("please select a profile to %s", action)
		return false
	}
	return true
}
