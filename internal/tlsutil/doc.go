// Package tlsutil 提供集中式 TLS 配置，
// 为出站 HTTP 客户端（Gemini API、远程图片下载）提供安全加固的 TLS 设置（TLS 1.2+，仅 AEAD 密码套件）。
package tlsutil
