package common

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP attempts to determine the real client IP address from the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); ip != "" {
		parts := strings.Split(ip, ",")
		if len(parts) > 0 {
			candidate := strings.TrimSpace(parts[0])
			if candidate != "" {
				return candidate
			}
		}
		return strings.TrimSpace(ip)
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

// TerminalHeader identifies the calling POS terminal for logging and rate limiting.
const TerminalHeader = "X-Terminal-ID"

// CashierHeader carries the cashier operating the terminal.
const CashierHeader = "X-Cashier-ID"

// TerminalKey returns the terminal header, falling back to the client IP.
func TerminalKey(r *http.Request) string {
	if r == nil {
		return ""
	}
	if terminal := strings.TrimSpace(r.Header.Get(TerminalHeader)); terminal != "" {
		return "terminal:" + terminal
	}
	return "ip:" + ClientIP(r)
}
