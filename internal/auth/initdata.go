// Package auth verifies caller credentials: the signed Telegram mini-app
// init-data payload, and short-lived session tokens minted from it.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	dErrors "vetblood/pkg/domain-errors"
	"vetblood/pkg/domain"
)

// telegramUser is the user object embedded in the init-data payload.
type telegramUser struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Username  string `json:"username"`
}

// InitData is the parsed, verified mini-app payload.
type InitData struct {
	TelegramID domain.TelegramID
	FirstName  string
	LastName   string
	Username   string
	AuthDate   int64
}

// VerifyInitData checks the HMAC-SHA256 signature of a Telegram init-data
// query string and returns the embedded identity.
//
// Signature scheme (Telegram Web App spec): the data-check string is the
// sorted key=value pairs joined by newlines, excluding the hash field; the
// key is HMAC-SHA256("WebAppData", botToken).
func VerifyInitData(initData, botToken string) (InitData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return InitData{}, dErrors.New(dErrors.CodeUnauthorized, "malformed init data")
	}

	supplied := values.Get("hash")
	if supplied == "" {
		return InitData{}, dErrors.New(dErrors.CodeUnauthorized, "init data missing hash")
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(supplied)
	if err != nil || !hmac.Equal(expected, got) {
		return InitData{}, dErrors.New(dErrors.CodeUnauthorized, "invalid init data signature")
	}

	return parseInitDataFields(values)
}

func parseInitDataFields(values url.Values) (InitData, error) {
	var user telegramUser
	if raw := values.Get("user"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return InitData{}, dErrors.New(dErrors.CodeUnauthorized, "malformed user field in init data")
		}
	}
	if user.ID == 0 {
		return InitData{}, dErrors.New(dErrors.CodeUnauthorized, "init data missing user id")
	}

	out := InitData{
		TelegramID: domain.TelegramID(user.ID),
		FirstName:  user.FirstName,
		LastName:   user.LastName,
		Username:   user.Username,
	}
	if ad := values.Get("auth_date"); ad != "" {
		// auth_date is a unix timestamp; a malformed one is treated as absent
		if ts, err := strconv.ParseInt(ad, 10, 64); err == nil {
			out.AuthDate = ts
		}
	}
	return out, nil
}

// SignInitData produces a valid hash for a set of init-data fields. Used by
// tests and the local development tooling to mint payloads the verifier
// accepts.
func SignInitData(values url.Values, botToken string) string {
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(pairs, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}
