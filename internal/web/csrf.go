package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// csrf — токен = HMAC(secret, sessionID|intent); без состояния на сервере
type csrf struct {
	secret []byte
}

func (x csrf) token(sessionID, intent string) string {
	mac := hmac.New(sha256.New, x.secret)
	mac.Write([]byte(sessionID))
	mac.Write([]byte{'|'})
	mac.Write([]byte(intent))
	return hex.EncodeToString(mac.Sum(nil))
}

func (x csrf) valid(sessionID, intent, token string) bool {
	if sessionID == "" || token == "" {
		return false
	}
	return hmac.Equal([]byte(x.token(sessionID, intent)), []byte(token))
}
