package logger

import "go.uber.org/zap"

// Common field constructors, so keys stay consistent across packages.

func RequestID(id string) zap.Field { return zap.String("request_id", id) }
func UserID(id string) zap.Field    { return zap.String("user_id", id) }
func Provider(id string) zap.Field  { return zap.String("provider", id) }
func Component(c string) zap.Field  { return zap.String("component", c) }
func Method(m string) zap.Field     { return zap.String("method", m) }
func Path(p string) zap.Field       { return zap.String("path", p) }
func Status(code int) zap.Field     { return zap.Int("status", code) }
func ClientIP(ip string) zap.Field  { return zap.String("client_ip", ip) }
