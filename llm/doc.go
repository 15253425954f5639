// 版权所有 2026 PromptLens Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 llm 提供面向图片描述模型的调用层：凭证池、请求调度与 Provider 抽象。

# 概述

调用方只面对 [RequestScheduler.GenerateOnce]，调度器负责在多个 API Key
之间轮换、处理限流与暂时故障，并在全部尝试用尽后返回
ALL_CREDENTIALS_EXHAUSTED 错误。

# 核心接口

  - [VisionProvider]：单次上游调用，凭证按次传入
  - [Clock]：时间源，测试中替换为可控实现

# 核心类型

  - [CredentialPool]：按顺序轮换凭证，维护冷却期与全局最小调用间隔
  - [CredentialState]：单个凭证的失败次数与冷却截止时间
  - [RequestScheduler]：最多 Len()*AttemptsPerCredential 次尝试的重试循环
  - [VisionRequest] / [Generation]：请求与成功结果

# 冷却规则

连续失败 n 次的凭证冷却 min(cap, base*n)，成功后清零。
所有凭证都在冷却时，Select 等到最早恢复的那一个。

# 相关子包

  - llm/retry：失败分类与等待时长策略
  - llm/providers：HTTP 错误映射等共享辅助
  - llm/providers/gemini：Gemini generateContent 实现
*/
package llm
