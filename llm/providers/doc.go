// Copyright 2026 PromptLens Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 providers 提供具体 Provider 实现共享的 HTTP 辅助能力，gemini 子包依赖
本包完成错误映射与响应处理。

# 核心类型

  - GeminiConfig — Gemini Provider 配置（BaseURL、Model、Timeout、Temperature、MaxOutputTokens）
  - ErrorBody — 从错误响应体提取的 message / status / retryDelay

# 核心函数

  - MapHTTPError — 将 HTTP 状态码映射为 types.Error（429 限流、5xx 暂时故障、其余为客户端错误）
  - ReadErrorBody / ReadErrorMessage — 解析 JSON 错误响应，失败回退为原始文本
  - ParseRetryAfter — 解析 Retry-After 头（秒数或 HTTP 日期）
  - ErrorFromResponse — 组合以上函数，把非 2xx 响应转换为带等待提示的错误
  - NetworkError — 包装传输层错误
*/
package providers
