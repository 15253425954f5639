// 版权所有 2026 PromptLens Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 metrics 提供基于 Prometheus 的指标采集能力，覆盖凭证调度、
生成流水线与远程图片下载三个维度。

# 概述

本包通过 Collector 统一注册和记录 Prometheus 指标。指标通过
promauto.With 注册到调用方传入的 Registerer，测试中可以使用独立的
Registry，CLI 则注册到默认 registry 并通过 /metrics 暴露。

# 核心类型

  - Collector：指标收集器，持有 Counter、Histogram、Gauge 等
    Prometheus 指标。所有记录方法对 nil 接收者安全。

# 主要能力

  - 调度器指标：按 provider/credential/outcome/status 统计上游尝试、
    尝试耗时、凭证冷却次数、各类等待时长与预算耗尽次数。
  - 流水线指标：每轮生成的状态与耗时、最终 prompt 长度、分析器信号。
  - 图片下载指标：下载次数（状态码归类为 2xx/4xx/5xx）与图片大小。
*/
package metrics
