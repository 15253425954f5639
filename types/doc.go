// Copyright 2026 PromptLens Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package types 提供 PromptLens 各包共享的类型定义。

# 概述

types 不依赖任何内部包，llm、vision、postprocess、pipeline 通过它交换
请求、结果与错误。

# 核心类型

  - GenerationOptions — 单批生成参数（数量、字数上限、风格、画幅、输出格式）
  - GenerationRequest — 图片字节与生成参数
  - PromptResult — 单轮结果，附带图片信号与使用的凭证标识
  - StructuredPrompt — 结构化输出（prompt、title、keywords）
  - AnalyzerSignals / CopySpace — 抠图、棋盘格与留白检测结果
  - Error / ErrorCode — 结构化错误，携带 HTTP 状态、Retryable 与 RetryAfter

# 错误工具

NewError 与 With* 系列构造错误，AsError、GetErrorCode、IsCode 与
IsRetryable 用于在调用链上判断错误类别。
*/
package types
