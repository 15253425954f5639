// Package config 提供 PromptLens 的配置加载。
//
// 配置按 默认值 → YAML 文件 → 环境变量（前缀 PROMPTLENS）的顺序叠加，
// 各子配置直接复用 llm、pipeline、vision 等包导出的配置结构。
package config
