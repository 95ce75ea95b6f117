package api

import (
	"context"
	"fmt"
	"net/http"

	"openfeed/pkg/common"
	"openfeed/pkg/logger"
	"openfeed/pkg/profile"
	"openfeed/pkg/sessions"
	"openfeed/pkg/wallet"
)

type (
	ProfileRepo interface {
		Exists(string) bool
		GetByAddress(context.Context, string) (*profile.Profile, error)
		Add(*profile.Profile) (string, error)
	}

	SessionManager interface {
		CreateToken(*sessions.Session) (string, error)
		CleanupSessions(address string) error
	}

	AuthHandler struct {
		Repo           ProfileRepo
		SessionManager SessionManager
	}

	// HttpLogin is a signature login: the wallet signs the supplied
	// message to prove control of the address.
	HttpLogin struct {
		Address   string `json:"address"`
		PublicKey string `json:"publicKey"`
		Message   string `json:"message"`
		Signature string `json:"signature"`
		Handle    string `json:"handle,omitempty"`
	}
)

func NewAuthHandler(r ProfileRepo, sm SessionManager) *AuthHandler {
	return &AuthHandler{
		Repo:           r,
		SessionManager: sm,
	}
}

func (ah AuthHandler) LogIn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	login := new(HttpLogin)
	err := common.ParseReqBody(r.Body, login)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't parse request body as login: %v", err)
		common.WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}

	if err := wallet.VerifySignature(login.Address, login.Message, login.PublicKey, login.Signature); err != nil {
		logger.Log(r.Context()).Errorf("signature check failed for address `%s`: %v", login.Address, err)
		common.WriteMsg(w, "invalid wallet signature", http.StatusUnauthorized)
		return
	}

	prof, err := ah.Repo.GetByAddress(r.Context(), login.Address)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't get profile for address `%s`: %v", login.Address, err)
		common.WriteMsg(w, "profile not found", http.StatusNotFound)
		return
	}

	// Remove expired wallet sessions if there are any
	if err := ah.SessionManager.CleanupSessions(login.Address); err != nil {
		logger.Log(r.Context()).Errorf("profile/handlers: can't cleanup sessions for `%s`, %v", login.Address, err)
		common.WriteMsg(w, "failed managing wallet sessions", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	ah.sendToken(w, prof)
}

func (ah AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	login := new(HttpLogin)
	err := common.ParseReqBody(r.Body, login)
	if err != nil {
		logger.Log(r.Context()).Errorf("can't parse request body as login: %v", err)
		common.WriteMsg(w, "bad request format", http.StatusBadRequest)
		return
	}

	if err := wallet.VerifySignature(login.Address, login.Message, login.PublicKey, login.Signature); err != nil {
		logger.Log(r.Context()).Errorf("signature check failed for address `%s`: %v", login.Address, err)
		common.WriteMsg(w, "invalid wallet signature", http.StatusUnauthorized)
		return
	}

	if ah.Repo.Exists(login.Address) {
		msg := fmt.Sprintf(`profile for "%s" already exists`, login.Address)
		logger.Log(r.Context()).Error(msg)
		common.WriteMsg(w, msg, http.StatusConflict)
		return
	}

	prof := &profile.Profile{
		Address: login.Address,
		Handle:  login.Handle,
		// Id is handled below
	}
	id, err := ah.Repo.Add(prof)
	if err != nil {
		common.WriteMsg(w, "can't add profile", http.StatusInternalServerError)
		return
	}
	prof.Id = id

	w.WriteHeader(http.StatusCreated)
	ah.sendToken(w, prof)
}

func (ah *AuthHandler) sendToken(w http.ResponseWriter, prof *profile.Profile) {
	token, err := ah.SessionManager.CreateToken(&sessions.Session{
		Address:   prof.Address,
		ProfileId: prof.Id,
		Handle:    prof.Handle,
	})
	if err != nil {
		logger.Log(context.Background()).Errorf("can't create JWT token from session: %v", err)
		common.WriteMsg(w, "wallet authentication failed", http.StatusInternalServerError)
		return
	}

	tk := struct {
		Token string `json:"token"`
	}{token}
	common.WriteRespJSON(w, tk)
}
