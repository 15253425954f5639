// Copyright 2026 PromptLens Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
包 postprocess 对模型返回的原始文本进行确定性改写，使其符合提示词的领域规则。

# 概述

改写由一组按固定顺序执行的 [Rewriter] 组成，串成 [Chain]。每个改写器只接收
文本与共享的 [Context]（图片分析信号 + 字符预算），互相之间没有隐藏耦合。
任何一个改写器返回错误或 panic 时，该阶段原样透传输入，不会让整条链失败。

# 默认阶段

  - FirstLine        — 只保留第一行非空文本，去掉 "Prompt:" 前缀与包裹引号
  - StripCopySpace   — 删除 copy space / negative space 及方位修饰语
  - WhiteBackground  — 透明/抠图背景改写为白底，并追加 "isolated on white background"
  - Clamp            — 按字符预算截断，尽量保留单词边界

# 预算工具

  - [AddSuffixSafely] — 在预算内追加短语，幂等
  - [ClampToMaxChars] — 硬截断到预算，超过 60% 位置的空格处优先断开

字符数一律按 rune 计算。
*/
package postprocess
