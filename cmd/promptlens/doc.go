// Copyright 2026 PromptLens Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package main 提供 promptlens 命令行程序。

子命令：

  - generate：读取本地图片或 URL，按 -n 轮生成提示词，每轮完成即输出
  - analyze：只输出图片的留白、抠图与棋盘格信号
  - version / help

配置按 默认值 → --config 指定的 YAML → PROMPTLENS_* 环境变量 叠加。
设置 PROMPTLENS_METRICS_ADDR 后，生成期间会在该地址暴露 Prometheus /metrics；
指标服务器与生成任务由同一个 errgroup 管理，任务结束时一起退出。
构建时可通过 ldflags 注入 Version、BuildTime、GitCommit。
*/
package main
