// Copyright 2026 PromptLens Authors. All rights reserved.
// Use of this source code is governed by the project license.

/*
Package pipeline 把图片转换为一批提示词。

一次 Run 只解码和压缩图片一次，随后按 NumPrompts 顺序执行若干轮：
每轮通过 Generator（通常是 llm.RequestScheduler）获取模型输出，
重新分析图片信号，再交给 postprocess 改写链得到最终文本。
轮次之间有固定间隔，任一轮失败都会中止整批并返回已完成的结果。

结构化输出模式下，模型返回的 JSON 记录由 ParseStructured 解析，
无法解析时退化为纯文本处理。
*/
package pipeline
