package email

import (
	"errors"
	"net"
	"strings"
)

// SMTPDiag contiene información de diagnóstico de un error SMTP.
type SMTPDiag struct {
	Code      string // auth|tls|dial|timeout|rate_limited|invalid_recipient|rejected|network|unknown
	Temporary bool   // si el error es transitorio
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// DiagnoseSMTP clasifica un error de envío.
func DiagnoseSMTP(err error) SMTPDiag {
	if err == nil {
		return SMTPDiag{Code: "unknown"}
	}
	s := strings.ToLower(err.Error())

	var ne net.Error
	isNet := errors.As(err, &ne)

	// timeouts
	if isNet && ne.Timeout() || strings.Contains(s, "timeout") {
		return SMTPDiag{Code: "timeout", Temporary: true}
	}

	// dial/conn/dns
	if containsAny(s, "connection refused", "connectex:", "no such host", "dial tcp") {
		return SMTPDiag{Code: "dial", Temporary: true}
	}

	// tls/handshake/cert
	if strings.Contains(s, "x509:") ||
		strings.Contains(s, "tls") && containsAny(s, "handshake", "certificate") {
		return SMTPDiag{Code: "tls"}
	}

	// credenciales
	if containsAny(s, "5.7.8", "535", "username and password not accepted", "authentication failed") ||
		strings.Contains(s, "auth") && strings.Contains(s, "failed") {
		return SMTPDiag{Code: "auth"}
	}

	// throttling (4.x.x)
	if containsAny(s, "4.7.0", "rate limit", "try again later", "temporarily unavailable", "451", "421") {
		return SMTPDiag{Code: "rate_limited", Temporary: true}
	}

	if containsAny(s, "5.1.1", "user unknown", "mailbox not found") {
		return SMTPDiag{Code: "invalid_recipient"}
	}

	// políticas/DMARC/SPF
	if containsAny(s, "5.7.1", "message rejected", "policy", "dmarc", "spf") {
		return SMTPDiag{Code: "rejected"}
	}

	if isNet {
		return SMTPDiag{Code: "network", Temporary: true}
	}
	return SMTPDiag{Code: "unknown"}
}
