// 版权所有 2026 PromptLens Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 server 管理 Prometheus 指标 HTTP 服务器的生命周期。

# 核心类型

  - Manager：封装 net/http.Server 与 net.Listener，提供
    Start/Run/Shutdown 等生命周期方法。
  - Config：监听地址、读写超时与优雅关闭超时。
  - MetricsHandler：在指定 Gatherer 上暴露 /metrics 与 /healthz。

Run 适合放进 errgroup：ctx 结束时优雅关闭并返回 nil，
监听失败或服务异常退出时返回错误。
*/
package server
