// Copyright 2026 PromptLens Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
# 概述

包 gemini 提供 Google Gemini 模型的图片描述 Provider。该包直接对接
Gemini REST API（generativelanguage.googleapis.com），自行处理请求构建、
响应解析与错误映射。

# 核心结构体

  - GeminiProvider — 持有 http.Client 与 GeminiConfig，实现 llm.VisionProvider；
    使用 x-goog-api-key 请求头认证，凭证由调度器按次传入
  - geminiRequest / geminiResponse — Gemini 原生请求/响应结构
  - geminiContent / geminiPart — 指令文本与 inlineData 图片分片

# 构造函数

  - NewGeminiProvider(cfg, logger) — 创建实例，默认模型 gemini-2.5-flash

# 错误语义

  - 429 → RATE_LIMITED，Retry-After 头与 RetryInfo.retryDelay 取较大者
  - 5xx → SERVER_TRANSIENT
  - 其他非 2xx → CLIENT_ERROR，消息取自 error.message
  - 传输失败 → NETWORK_ERROR
  - 2xx 但无法解析或没有文本 → EMPTY_RESPONSE
*/
package gemini
